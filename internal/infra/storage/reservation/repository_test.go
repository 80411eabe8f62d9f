package reservation

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

var baseTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewRepository(db), mock, func() { _ = db.Close() }
}

func reservationRow() *sqlmock.Rows {
	return sqlmock.NewRows(reservationColumns).AddRow(
		int64(7),
		int64(3),
		int64(42),
		baseTime,
		baseTime.Add(2*time.Hour),
		"hourly",
		"1000.00",
		"training",
		nil,
		"pending",
		"pending",
		baseTime.Add(-time.Hour),
		nil,
		nil,
		nil,
		nil,
		baseTime.Add(-2*time.Hour),
		baseTime.Add(-2*time.Hour),
	)
}

func TestRepository_Create(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	res := &domain.Reservation{
		FacilityID:    3,
		UserID:        42,
		StartTime:     baseTime,
		EndTime:       baseTime.Add(time.Hour),
		BookingType:   domain.BookingHourly,
		TotalAmount:   types.NewMoney(500),
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
		PaymentDueAt:  baseTime,
		CreatedAt:     baseTime.Add(-time.Hour),
		UpdatedAt:     baseTime.Add(-time.Hour),
	}

	created, err := repo.Create(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_ExclusionViolation(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnError(&pq.Error{Code: "23P01", Message: "conflicting key value violates exclusion constraint"})

	_, err := repo.Create(context.Background(), &domain.Reservation{})
	assert.True(t, errors.Is(err, ErrSlotNotAvailable))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_SerializationFailureIsKept(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnError(&pq.Error{Code: "40001"})

	_, err := repo.Create(context.Background(), &domain.Reservation{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExecQuery))

	var pqErr *pq.Error
	require.True(t, errors.As(err, &pqErr))
	assert.Equal(t, pq.ErrorCode("40001"), pqErr.Code)
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, facility_id")).
		WithArgs(int64(7)).
		WillReturnRows(reservationRow())

	res, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.UserID)
	assert.Equal(t, domain.BookingHourly, res.BookingType)
	assert.Equal(t, types.NewMoney(1000), res.TotalAmount)
	assert.Nil(t, res.PricingOptionID)
	assert.Nil(t, res.PaymentSlipRef)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, facility_id")).
		WillReturnRows(sqlmock.NewRows(reservationColumns))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestRepository_GetByIDForUpdate_LocksInsideTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	wrapped := dbmetrics.Wrap(db, nil)
	repo := NewRepository(wrapped)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM reservations WHERE id = \$1 FOR UPDATE`).
		WillReturnRows(reservationRow())
	mock.ExpectCommit()

	tx, err := wrapped.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	_, err = repo.GetByIDForUpdate(dbmetrics.WithTx(context.Background(), tx), 7)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListBlockingByFacility(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	exclude := int64(5)
	mock.ExpectQuery(`SELECT .* FROM reservations WHERE facility_id = \$1 AND status IN \(\$2,\$3,\$4\) AND start_time < \$5 AND end_time > \$6 AND id <> \$7 ORDER BY start_time ASC`).
		WithArgs(int64(3), "pending", "confirmed", "in_use", baseTime.Add(2*time.Hour), baseTime, exclude).
		WillReturnRows(reservationRow())

	list, err := repo.ListBlockingByFacility(context.Background(), 3, baseTime, baseTime.Add(2*time.Hour), &exclude)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Cancel_NotFound(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Cancel(context.Background(), 1, nil, baseTime)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestRepository_UpdateWindow_ExclusionViolation(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET end_time = $1, payment_due_at = $2, start_time = $3, total_amount = $4, updated_at = $5 WHERE id = $6")).
		WillReturnError(&pq.Error{Code: "23P01"})

	err := repo.UpdateWindow(context.Background(), 1, baseTime, baseTime.Add(time.Hour), types.NewMoney(10), baseTime, baseTime)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestRepository_UpdateWindow_SetsPaymentDueAt(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	due := baseTime.Add(-30 * time.Minute)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET end_time = $1, payment_due_at = $2, start_time = $3, total_amount = $4, updated_at = $5 WHERE id = $6")).
		WithArgs(baseTime.Add(time.Hour), due, baseTime, types.NewMoney(10), baseTime.Add(-time.Hour), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateWindow(context.Background(), 1, baseTime, baseTime.Add(time.Hour), types.NewMoney(10), due, baseTime.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByUser(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	status := domain.StatusPending
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE user_id = $1 AND status = $2 ORDER BY start_time ASC, id ASC")).
		WithArgs(int64(42), "pending").
		WillReturnRows(reservationRow())

	list, err := repo.ListByUser(context.Background(), 42, &status)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(42), list[0].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByFacility(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE facility_id = $1 ORDER BY start_time ASC, id ASC")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(reservationColumns))

	list, err := repo.ListByFacility(context.Background(), 3, nil)
	require.NoError(t, err)
	assert.Empty(t, list)

	uploaded := domain.PaymentUploaded
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE facility_id = $1 AND payment_status = $2 ORDER BY start_time ASC, id ASC")).
		WithArgs(int64(3), "uploaded").
		WillReturnError(errors.New("connection refused"))

	_, err = repo.ListByFacility(context.Background(), 3, &uploaded)
	assert.ErrorIs(t, err, ErrExecQuery)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ExpireUnpaid(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE reservations SET status = $1, updated_at = $2 WHERE status = $3 AND payment_status IN ($4,$5) AND payment_due_at <= $6 RETURNING id")).
		WithArgs("expired", baseTime, "pending", "pending", "uploaded", baseTime).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(4)))

	ids, err := repo.ExpireUnpaid(context.Background(), baseTime)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_AddHistory(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservation_history")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))

	h := &domain.ReservationHistory{ReservationID: 7, Action: domain.HistoryCancel, CreatedAt: baseTime}
	require.NoError(t, repo.AddHistory(context.Background(), h))
	assert.Equal(t, int64(100), h.ID)
}
