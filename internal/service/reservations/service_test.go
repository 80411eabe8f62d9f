package reservations

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-FacilityBooking/internal/integrations/events"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/availability"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/pricing"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/reservations/models"
	"github.com/m04kA/SMC-FacilityBooking/pkg/clock"
	"github.com/m04kA/SMC-FacilityBooking/pkg/logger"
	"github.com/m04kA/SMC-FacilityBooking/pkg/ptr"
	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

const ownerID = int64(7)

var now = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]string, 0, len(p.events))
	for _, e := range p.events {
		result = append(result, e.Type)
	}
	return result
}

type fixture struct {
	db        *memory.DB
	service   *Service
	clock     *clock.Fixed
	publisher *recordingPublisher
	facility  domain.Facility
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := memory.New()
	clk := clock.NewFixed(now)
	pub := &recordingPublisher{}
	log := logger.Nop()

	svc := NewService(
		db.Reservations(),
		db.Facilities(),
		availability.NewChecker(db.Reservations(), log),
		pricing.NewEngine(),
		db,
		pub,
		nil,
		log,
	).WithTimeProvider(clk)

	f := db.Facilities().Seed(domain.Facility{
		Name:       "Hall A",
		HourlyRate: types.NewMoney(500),
		Capacity:   40,
	})

	return &fixture{db: db, service: svc, clock: clk, publisher: pub, facility: f}
}

func (f *fixture) seed(t *testing.T, facilityID int64, start time.Time, hours int, status domain.ReservationStatus, payment domain.PaymentStatus) *domain.Reservation {
	t.Helper()
	res, err := f.db.Reservations().Create(context.Background(), &domain.Reservation{
		FacilityID:    facilityID,
		UserID:        ownerID,
		StartTime:     start,
		EndTime:       start.Add(time.Duration(hours) * time.Hour),
		BookingType:   domain.BookingHourly,
		TotalAmount:   types.NewMoney(500 * float64(hours)),
		Status:        status,
		PaymentStatus: payment,
		PaymentDueAt:  start,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) get(t *testing.T, id int64) *domain.Reservation {
	t.Helper()
	res, err := f.db.Reservations().GetByID(context.Background(), id)
	require.NoError(t, err)
	return res
}

func TestService_Cancel_RefundTiers(t *testing.T) {
	tests := []struct {
		lead     time.Duration
		fraction float64
		refund   types.Money
	}{
		{30 * time.Hour, 1.00, types.NewMoney(1000)},
		{18 * time.Hour, 0.75, types.NewMoney(750)},
		{9 * time.Hour, 0.50, types.NewMoney(500)},
		{3 * time.Hour, 0.25, types.NewMoney(250)},
		{1 * time.Hour, 0.00, 0},
	}

	for _, tt := range tests {
		t.Run(tt.lead.String(), func(t *testing.T) {
			f := newFixture(t)
			res := f.seed(t, f.facility.ID, now.Add(tt.lead), 2, domain.StatusConfirmed, domain.PaymentVerified)

			result, err := f.service.Cancel(context.Background(), &models.CancelRequest{
				ReservationID: res.ID,
				UserID:        ownerID,
				Reason:        "plans changed",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.fraction, result.RefundFraction)
			assert.Equal(t, tt.refund, result.RefundAmount)

			stored := f.get(t, res.ID)
			assert.Equal(t, domain.StatusCancelled, stored.Status)
			require.NotNil(t, stored.CancelledAt)
			assert.Equal(t, now, *stored.CancelledAt)
			assert.Equal(t, "plans changed", ptr.Value(stored.CancellationReason))
		})
	}
}

func TestService_Cancel_UnpaidHasNoRefundAmount(t *testing.T) {
	f := newFixture(t)
	res := f.seed(t, f.facility.ID, now.Add(48*time.Hour), 2, domain.StatusPending, domain.PaymentPending)

	result, err := f.service.Cancel(context.Background(), &models.CancelRequest{ReservationID: res.ID, UserID: ownerID})
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.RefundFraction)
	assert.Equal(t, types.Money(0), result.RefundAmount)

	history := f.db.Reservations().History(context.Background(), res.ID)
	require.Len(t, history, 1)
	assert.Equal(t, domain.HistoryCancel, history[0].Action)
	assert.Equal(t, []string{events.TypeReservationCancelled}, f.publisher.types())
}

func TestService_Cancel_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.seed(t, f.facility.ID, now.Add(48*time.Hour), 2, domain.StatusConfirmed, domain.PaymentVerified)
	_, err := f.service.Cancel(ctx, &models.CancelRequest{ReservationID: res.ID, UserID: ownerID + 1})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, err, domain.ErrForbiddenOperation)

	_, err = f.service.Cancel(ctx, &models.CancelRequest{ReservationID: 999, UserID: ownerID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	done := f.seed(t, f.facility.ID, now.Add(72*time.Hour), 1, domain.StatusCompleted, domain.PaymentVerified)
	_, err = f.service.Cancel(ctx, &models.CancelRequest{ReservationID: done.ID, UserID: ownerID})
	assert.ErrorIs(t, err, ErrTooLateToModify)

	assert.Equal(t, domain.StatusConfirmed, f.get(t, res.ID).Status)
	assert.Empty(t, f.publisher.types())
}

func TestService_Reschedule(t *testing.T) {
	f := newFixture(t)
	res := f.seed(t, f.facility.ID, now.Add(24*time.Hour), 2, domain.StatusConfirmed, domain.PaymentVerified)

	newStart := now.Add(30 * time.Hour)
	result, err := f.service.Reschedule(context.Background(), &models.RescheduleRequest{
		ReservationID: res.ID,
		UserID:        ownerID,
		NewStart:      newStart,
		NewEnd:        newStart.Add(2*time.Hour + 15*time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, types.NewMoney(250), result.CostDifference)
	assert.Equal(t, types.NewMoney(1250), result.NewTotal)

	stored := f.get(t, res.ID)
	assert.Equal(t, newStart, stored.StartTime)
	assert.Equal(t, types.NewMoney(1250), stored.TotalAmount)
	assert.Equal(t, res.PaymentDueAt, stored.PaymentDueAt)
	assert.Equal(t, []string{events.TypeReservationRescheduled}, f.publisher.types())
}

func TestService_Reschedule_RecapsPaymentDue(t *testing.T) {
	f := newFixture(t)
	f.service.WithPaymentGrace(2 * time.Hour)
	res := f.seed(t, f.facility.ID, now.Add(24*time.Hour), 1, domain.StatusPending, domain.PaymentPending)
	ctx := context.Background()
	f.clock.Advance(10 * time.Minute)

	earlier := now.Add(time.Hour)
	_, err := f.service.Reschedule(ctx, &models.RescheduleRequest{
		ReservationID: res.ID,
		UserID:        ownerID,
		NewStart:      earlier,
		NewEnd:        earlier.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, earlier, f.get(t, res.ID).PaymentDueAt)

	later := now.Add(30 * time.Hour)
	_, err = f.service.Reschedule(ctx, &models.RescheduleRequest{
		ReservationID: res.ID,
		UserID:        ownerID,
		NewStart:      later,
		NewEnd:        later.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, now.Add(2*time.Hour), f.get(t, res.ID).PaymentDueAt)
}

func TestService_Reschedule_IntoConfirmedWindow(t *testing.T) {
	f := newFixture(t)
	res := f.seed(t, f.facility.ID, now.Add(24*time.Hour), 2, domain.StatusPending, domain.PaymentPending)
	other := f.seed(t, f.facility.ID, now.Add(30*time.Hour), 2, domain.StatusConfirmed, domain.PaymentVerified)

	_, err := f.service.Reschedule(context.Background(), &models.RescheduleRequest{
		ReservationID: res.ID,
		UserID:        ownerID,
		NewStart:      other.StartTime.Add(time.Hour),
		NewEnd:        other.EndTime.Add(time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)

	stored := f.get(t, res.ID)
	assert.Equal(t, res.StartTime, stored.StartTime)
	assert.Equal(t, res.EndTime, stored.EndTime)
	assert.Equal(t, res.TotalAmount, stored.TotalAmount)
	assert.Empty(t, f.db.Reservations().History(context.Background(), res.ID))
}

func TestService_Reschedule_InvalidWindow(t *testing.T) {
	f := newFixture(t)
	res := f.seed(t, f.facility.ID, now.Add(24*time.Hour), 2, domain.StatusPending, domain.PaymentPending)
	ctx := context.Background()

	_, err := f.service.Reschedule(ctx, &models.RescheduleRequest{
		ReservationID: res.ID,
		UserID:        ownerID,
		NewStart:      now.Add(-time.Hour),
		NewEnd:        now.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrStartInPast)
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)

	_, err = f.service.Reschedule(ctx, &models.RescheduleRequest{
		ReservationID: res.ID,
		UserID:        ownerID,
		NewStart:      now.Add(5 * time.Hour),
		NewEnd:        now.Add(4 * time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestService_Reschedule_FacilityClosed(t *testing.T) {
	f := newFixture(t)
	closed := f.db.Facilities().Seed(domain.Facility{
		Name:             "Hall B",
		HourlyRate:       types.NewMoney(300),
		IsClosedForEvent: true,
		ClosureEndDate:   ptr.Ptr(now.Add(72 * time.Hour)),
	})
	res := f.seed(t, closed.ID, now.Add(96*time.Hour), 1, domain.StatusPending, domain.PaymentPending)

	_, err := f.service.Reschedule(context.Background(), &models.RescheduleRequest{
		ReservationID: res.ID,
		UserID:        ownerID,
		NewStart:      now.Add(24 * time.Hour),
		NewEnd:        now.Add(25 * time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrFacilityClosed)
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
}

func TestService_Extend_ChecksOnlyDelta(t *testing.T) {
	f := newFixture(t)
	other := f.db.Facilities().Seed(domain.Facility{Name: "Hall C", HourlyRate: types.NewMoney(200)})

	start := now.Add(24 * time.Hour)
	res := f.seed(t, f.facility.ID, start, 2, domain.StatusConfirmed, domain.PaymentVerified)
	f.seed(t, other.ID, start.Add(2*time.Hour), 2, domain.StatusConfirmed, domain.PaymentVerified)

	result, err := f.service.Extend(context.Background(), &models.ExtendRequest{
		ReservationID: res.ID,
		UserID:        ownerID,
		NewEnd:        start.Add(4 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, types.NewMoney(1000), result.AdditionalCost)
	assert.Equal(t, types.NewMoney(2000), result.NewTotal)

	stored := f.get(t, res.ID)
	assert.Equal(t, start, stored.StartTime)
	assert.Equal(t, start.Add(4*time.Hour), stored.EndTime)
	assert.Equal(t, []string{events.TypeReservationExtended}, f.publisher.types())
}

func TestService_Extend_TailConflict(t *testing.T) {
	f := newFixture(t)
	start := now.Add(24 * time.Hour)
	res := f.seed(t, f.facility.ID, start, 2, domain.StatusInUse, domain.PaymentVerified)
	f.seed(t, f.facility.ID, start.Add(3*time.Hour), 1, domain.StatusPending, domain.PaymentPending)

	_, err := f.service.Extend(context.Background(), &models.ExtendRequest{
		ReservationID: res.ID,
		UserID:        ownerID,
		NewEnd:        start.Add(4 * time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	assert.Equal(t, start.Add(2*time.Hour), f.get(t, res.ID).EndTime)
}

func TestService_Extend_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := now.Add(24 * time.Hour)

	pending := f.seed(t, f.facility.ID, start, 2, domain.StatusPending, domain.PaymentPending)
	_, err := f.service.Extend(ctx, &models.ExtendRequest{ReservationID: pending.ID, UserID: ownerID, NewEnd: start.Add(3 * time.Hour)})
	assert.ErrorIs(t, err, ErrCannotExtend)

	confirmed := f.seed(t, f.facility.ID, start.Add(10*time.Hour), 2, domain.StatusConfirmed, domain.PaymentVerified)
	_, err = f.service.Extend(ctx, &models.ExtendRequest{ReservationID: confirmed.ID, UserID: ownerID, NewEnd: confirmed.EndTime})
	assert.ErrorIs(t, err, ErrEndNotLater)
}

func TestService_StartUsage(t *testing.T) {
	f := newFixture(t)
	res := f.seed(t, f.facility.ID, now.Add(time.Hour), 2, domain.StatusConfirmed, domain.PaymentVerified)

	resp, err := f.service.StartUsage(context.Background(), res.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusInUse), resp.Status)

	stored := f.get(t, res.ID)
	require.NotNil(t, stored.UsageStartedAt)
	assert.Equal(t, now, *stored.UsageStartedAt)

	_, err = f.service.Cancel(context.Background(), &models.CancelRequest{ReservationID: res.ID, UserID: ownerID})
	assert.ErrorIs(t, err, ErrTooLateToModify)

	_, err = f.service.StartUsage(context.Background(), res.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestService_GetByID(t *testing.T) {
	f := newFixture(t)
	res := f.seed(t, f.facility.ID, now.Add(time.Hour), 1, domain.StatusPending, domain.PaymentPending)

	resp, err := f.service.GetByID(context.Background(), res.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, resp.ID)

	_, err = f.service.GetByID(context.Background(), res.ID, ownerID+1)
	assert.ErrorIs(t, err, ErrNotOwner)
}

type readOnlyCountingTx struct {
	*memory.DB
	readOnly int
}

func (tx *readOnlyCountingTx) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.readOnly++
	return tx.DB.DoReadOnly(ctx, fn)
}

func TestService_GetByID_ReadOnlyTx(t *testing.T) {
	f := newFixture(t)
	res := f.seed(t, f.facility.ID, now.Add(time.Hour), 1, domain.StatusPending, domain.PaymentPending)

	tx := &readOnlyCountingTx{DB: f.db}
	log := logger.Nop()
	svc := NewService(
		f.db.Reservations(),
		f.db.Facilities(),
		availability.NewChecker(f.db.Reservations(), log),
		pricing.NewEngine(),
		tx,
		nil,
		nil,
		log,
	)

	_, err := svc.GetByID(context.Background(), res.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, 1, tx.readOnly)

	_, err = svc.GetByID(context.Background(), 999, ownerID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_ListUserReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	second := f.seed(t, f.facility.ID, now.Add(10*time.Hour), 1, domain.StatusConfirmed, domain.PaymentVerified)
	first := f.seed(t, f.facility.ID, now.Add(5*time.Hour), 1, domain.StatusPending, domain.PaymentPending)

	list, err := f.service.ListUserReservations(ctx, ownerID, "")
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, first.ID, list.Reservations[0].ID)
	assert.Equal(t, second.ID, list.Reservations[1].ID)

	list, err = f.service.ListUserReservations(ctx, ownerID, string(domain.StatusConfirmed))
	require.NoError(t, err)
	require.Len(t, list.Reservations, 1)
	assert.Equal(t, second.ID, list.Reservations[0].ID)

	list, err = f.service.ListUserReservations(ctx, ownerID+1, "")
	require.NoError(t, err)
	assert.Zero(t, list.Total)
	assert.NotNil(t, list.Reservations)

	_, err = f.service.ListUserReservations(ctx, ownerID, "archived")
	assert.ErrorIs(t, err, ErrInvalidStatusFilter)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_ListFacilityReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, f.facility.ID, now.Add(5*time.Hour), 1, domain.StatusPending, domain.PaymentPending)
	uploaded := f.seed(t, f.facility.ID, now.Add(8*time.Hour), 1, domain.StatusPending, domain.PaymentUploaded)

	list, err := f.service.ListFacilityReservations(ctx, f.facility.ID, string(domain.PaymentUploaded))
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, uploaded.ID, list.Reservations[0].ID)

	list, err = f.service.ListFacilityReservations(ctx, f.facility.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)

	_, err = f.service.ListFacilityReservations(ctx, f.facility.ID, "refunded")
	assert.ErrorIs(t, err, ErrInvalidStatusFilter)
}
