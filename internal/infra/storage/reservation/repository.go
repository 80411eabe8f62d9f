package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-FacilityBooking/pkg/psqlbuilder"
	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

const (
	tableReservations = "reservations"
	tableHistory      = "reservation_history"
)

var reservationColumns = []string{
	"id",
	"facility_id",
	"user_id",
	"start_time",
	"end_time",
	"booking_type",
	"total_amount",
	"purpose",
	"pricing_option_id",
	"status",
	"payment_status",
	"payment_due_at",
	"payment_slip_ref",
	"usage_started_at",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Repository репозиторий для работы с бронированиями площадок
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Пересечение с другим блокирующим бронированием отсекается exclusion constraint (23P01 -> ErrSlotNotAvailable)
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableReservations).
		Columns(
			"facility_id",
			"user_id",
			"start_time",
			"end_time",
			"booking_type",
			"total_amount",
			"purpose",
			"pricing_option_id",
			"status",
			"payment_status",
			"payment_due_at",
			"created_at",
			"updated_at",
		).
		Values(
			res.FacilityID,
			res.UserID,
			res.StartTime,
			res.EndTime,
			res.BookingType,
			res.TotalAmount,
			res.Purpose,
			res.PricingOptionID,
			res.Status,
			res.PaymentStatus,
			res.PaymentDueAt,
			res.CreatedAt,
			res.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&res.ID); err != nil {
		return nil, execError(ErrExecQuery, "Create - execute insert", err)
	}

	return res, nil
}

// GetByID получает бронирование по ID без блокировки
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.getByID(ctx, id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) getByID(ctx context.Context, id int64, lock bool) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableReservations).
		Where(squirrel.Eq{"id": id})

	if lock {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return res, nil
}

// ListBlockingByFacility возвращает блокирующие бронирования площадки, пересекающие окно [start, end)
// excludeID исключает само изменяемое бронирование
// Внутри транзакции найденные строки блокируются (FOR UPDATE)
func (r *Repository) ListBlockingByFacility(ctx context.Context, facilityID int64, start, end time.Time, excludeID *int64) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	blocking := make([]string, len(domain.BlockingStatuses))
	for i, s := range domain.BlockingStatuses {
		blocking[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableReservations).
		Where(squirrel.Eq{"facility_id": facilityID}).
		Where(squirrel.Eq{"status": blocking}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start}).
		OrderBy("start_time ASC")

	if excludeID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *excludeID})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListBlockingByFacility - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, execError(ErrExecQuery, "ListBlockingByFacility - execute query", err)
	}
	defer rows.Close()

	result := make([]*domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListBlockingByFacility - scan row: %w", ErrScanRow, err)
		}
		result = append(result, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBlockingByFacility - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// ListByUser возвращает бронирования пользователя, опционально по статусу
func (r *Repository) ListByUser(ctx context.Context, userID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableReservations).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("start_time ASC", "id ASC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*status)})
	}

	return r.list(ctx, "ListByUser", selectBuilder)
}

// ListByFacility возвращает бронирования площадки, опционально по статусу оплаты
func (r *Repository) ListByFacility(ctx context.Context, facilityID int64, paymentStatus *domain.PaymentStatus) ([]*domain.Reservation, error) {
	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableReservations).
		Where(squirrel.Eq{"facility_id": facilityID}).
		OrderBy("start_time ASC", "id ASC")

	if paymentStatus != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"payment_status": string(*paymentStatus)})
	}

	return r.list(ctx, "ListByFacility", selectBuilder)
}

func (r *Repository) list(ctx context.Context, op string, selectBuilder squirrel.SelectBuilder) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, execError(ErrExecQuery, op+" - execute query", err)
	}
	defer rows.Close()

	result := make([]*domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		result = append(result, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return result, nil
}

// UpdateWindow меняет окно, стоимость и срок оплаты бронирования (перенос, продление)
func (r *Repository) UpdateWindow(ctx context.Context, id int64, start, end time.Time, amount types.Money, paymentDueAt, updatedAt time.Time) error {
	return r.update(ctx, "UpdateWindow", id, map[string]interface{}{
		"start_time":     start,
		"end_time":       end,
		"total_amount":   amount,
		"payment_due_at": paymentDueAt,
		"updated_at":     updatedAt,
	})
}

// Cancel отменяет бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason *string, cancelledAt time.Time) error {
	return r.update(ctx, "Cancel", id, map[string]interface{}{
		"status":              domain.StatusCancelled,
		"cancellation_reason": reason,
		"cancelled_at":        cancelledAt,
		"updated_at":          cancelledAt,
	})
}

// StartUsage переводит бронирование в in_use и фиксирует время начала использования
func (r *Repository) StartUsage(ctx context.Context, id int64, startedAt time.Time) error {
	return r.update(ctx, "StartUsage", id, map[string]interface{}{
		"status":           domain.StatusInUse,
		"usage_started_at": startedAt,
		"updated_at":       startedAt,
	})
}

// AttachPaymentSlip сохраняет ссылку на квитанцию и переводит оплату в uploaded
func (r *Repository) AttachPaymentSlip(ctx context.Context, id int64, ref string, updatedAt time.Time) error {
	return r.update(ctx, "AttachPaymentSlip", id, map[string]interface{}{
		"payment_slip_ref": ref,
		"payment_status":   domain.PaymentUploaded,
		"updated_at":       updatedAt,
	})
}

// VerifyPayment подтверждает оплату и бронирование
func (r *Repository) VerifyPayment(ctx context.Context, id int64, updatedAt time.Time) error {
	return r.update(ctx, "VerifyPayment", id, map[string]interface{}{
		"payment_status": domain.PaymentVerified,
		"status":         domain.StatusConfirmed,
		"updated_at":     updatedAt,
	})
}

// ExpireUnpaid одним запросом переводит в expired все неоплаченные бронирования с истёкшим сроком оплаты
// Повторный вызов ничего не меняет
func (r *Repository) ExpireUnpaid(ctx context.Context, now time.Time) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	paymentStatuses := make([]string, len(domain.ExpirablePaymentStatuses))
	for i, s := range domain.ExpirablePaymentStatuses {
		paymentStatuses[i] = string(s)
	}

	query, args, err := psqlbuilder.Update(tableReservations).
		Set("status", domain.StatusExpired).
		Set("updated_at", now).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where(squirrel.Eq{"payment_status": paymentStatuses}).
		Where(squirrel.LtOrEq{"payment_due_at": now}).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ExpireUnpaid - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, execError(ErrExecQuery, "ExpireUnpaid - execute update", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ExpireUnpaid - scan id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ExpireUnpaid - rows error: %w", ErrScanRow, err)
	}

	return ids, nil
}

// AddHistory записывает событие жизненного цикла в reservation_history
func (r *Repository) AddHistory(ctx context.Context, h *domain.ReservationHistory) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableHistory).
		Columns(
			"reservation_id",
			"action",
			"actor_user_id",
			"reason",
			"old_start",
			"old_end",
			"new_start",
			"new_end",
			"old_amount",
			"new_amount",
			"created_at",
		).
		Values(
			h.ReservationID,
			h.Action,
			h.ActorUserID,
			h.Reason,
			h.OldStart,
			h.OldEnd,
			h.NewStart,
			h.NewEnd,
			h.OldAmount,
			h.NewAmount,
			h.CreatedAt,
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AddHistory - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&h.ID); err != nil {
		return execError(ErrExecQuery, "AddHistory - execute insert", err)
	}

	return nil
}

func (r *Repository) update(ctx context.Context, op string, id int64, values map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableReservations).
		SetMap(values).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return execError(ErrExecQuery, op+" - execute update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var res domain.Reservation

	err := row.Scan(
		&res.ID,
		&res.FacilityID,
		&res.UserID,
		&res.StartTime,
		&res.EndTime,
		&res.BookingType,
		&res.TotalAmount,
		&res.Purpose,
		&res.PricingOptionID,
		&res.Status,
		&res.PaymentStatus,
		&res.PaymentDueAt,
		&res.PaymentSlipRef,
		&res.UsageStartedAt,
		&res.CancellationReason,
		&res.CancelledAt,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &res, nil
}
