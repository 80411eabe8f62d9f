package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

// ReservationRepository бронирования в памяти
// Пересечения блокирующих бронирований отсекаются так же, как exclusion constraint в PostgreSQL
type ReservationRepository struct {
	db *DB
}

// Create сохраняет новое бронирование
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	var err error
	r.db.locked(ctx, func() {
		if res.Status.IsBlocking() && r.conflicts(res.FacilityID, res.StartTime, res.EndTime, 0) {
			err = reservation.ErrSlotNotAvailable
			return
		}
		r.db.nextReservationID++
		res.ID = r.db.nextReservationID
		r.db.reservations[res.ID] = *res
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetByID получает бронирование по ID
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var (
		res domain.Reservation
		ok  bool
	)
	r.db.locked(ctx, func() {
		res, ok = r.db.reservations[id]
	})
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	return &res, nil
}

// GetByIDForUpdate получает бронирование по ID
func (r *ReservationRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.GetByID(ctx, id)
}

// ListBlockingByFacility возвращает блокирующие бронирования площадки, пересекающие [start, end)
func (r *ReservationRepository) ListBlockingByFacility(ctx context.Context, facilityID int64, start, end time.Time, excludeID *int64) ([]*domain.Reservation, error) {
	result := make([]*domain.Reservation, 0)
	r.db.locked(ctx, func() {
		for _, res := range r.db.reservations {
			if res.FacilityID != facilityID || !res.IsBlocking() {
				continue
			}
			if excludeID != nil && res.ID == *excludeID {
				continue
			}
			if !res.Overlaps(start, end) {
				continue
			}
			res := res
			result = append(result, &res)
		}
	})
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result, nil
}

// ListByUser возвращает бронирования пользователя, опционально по статусу
func (r *ReservationRepository) ListByUser(ctx context.Context, userID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	return r.filter(ctx, func(res *domain.Reservation) bool {
		return res.UserID == userID && (status == nil || res.Status == *status)
	}), nil
}

// ListByFacility возвращает бронирования площадки, опционально по статусу оплаты
func (r *ReservationRepository) ListByFacility(ctx context.Context, facilityID int64, paymentStatus *domain.PaymentStatus) ([]*domain.Reservation, error) {
	return r.filter(ctx, func(res *domain.Reservation) bool {
		return res.FacilityID == facilityID && (paymentStatus == nil || res.PaymentStatus == *paymentStatus)
	}), nil
}

func (r *ReservationRepository) filter(ctx context.Context, match func(res *domain.Reservation) bool) []*domain.Reservation {
	result := make([]*domain.Reservation, 0)
	r.db.locked(ctx, func() {
		for _, res := range r.db.reservations {
			res := res
			if match(&res) {
				result = append(result, &res)
			}
		}
	})
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartTime.Equal(result[j].StartTime) {
			return result[i].ID < result[j].ID
		}
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result
}

// UpdateWindow меняет окно, стоимость и срок оплаты бронирования
func (r *ReservationRepository) UpdateWindow(ctx context.Context, id int64, start, end time.Time, amount types.Money, paymentDueAt, updatedAt time.Time) error {
	return r.mutate(ctx, id, func(res *domain.Reservation) error {
		if res.IsBlocking() && r.conflicts(res.FacilityID, start, end, id) {
			return reservation.ErrSlotNotAvailable
		}
		res.StartTime = start
		res.EndTime = end
		res.TotalAmount = amount
		res.PaymentDueAt = paymentDueAt
		res.UpdatedAt = updatedAt
		return nil
	})
}

// Cancel отменяет бронирование
func (r *ReservationRepository) Cancel(ctx context.Context, id int64, reason *string, cancelledAt time.Time) error {
	return r.mutate(ctx, id, func(res *domain.Reservation) error {
		at := cancelledAt
		res.Status = domain.StatusCancelled
		res.CancellationReason = reason
		res.CancelledAt = &at
		res.UpdatedAt = cancelledAt
		return nil
	})
}

// StartUsage переводит бронирование в in_use
func (r *ReservationRepository) StartUsage(ctx context.Context, id int64, startedAt time.Time) error {
	return r.mutate(ctx, id, func(res *domain.Reservation) error {
		at := startedAt
		res.Status = domain.StatusInUse
		res.UsageStartedAt = &at
		res.UpdatedAt = startedAt
		return nil
	})
}

// AttachPaymentSlip сохраняет ссылку на квитанцию
func (r *ReservationRepository) AttachPaymentSlip(ctx context.Context, id int64, ref string, updatedAt time.Time) error {
	return r.mutate(ctx, id, func(res *domain.Reservation) error {
		slip := ref
		res.PaymentSlipRef = &slip
		res.PaymentStatus = domain.PaymentUploaded
		res.UpdatedAt = updatedAt
		return nil
	})
}

// VerifyPayment подтверждает оплату и бронирование
func (r *ReservationRepository) VerifyPayment(ctx context.Context, id int64, updatedAt time.Time) error {
	return r.mutate(ctx, id, func(res *domain.Reservation) error {
		res.PaymentStatus = domain.PaymentVerified
		res.Status = domain.StatusConfirmed
		res.UpdatedAt = updatedAt
		return nil
	})
}

// ExpireUnpaid переводит в expired неоплаченные бронирования с истёкшим сроком оплаты
func (r *ReservationRepository) ExpireUnpaid(ctx context.Context, now time.Time) ([]int64, error) {
	ids := make([]int64, 0)
	r.db.locked(ctx, func() {
		for id, res := range r.db.reservations {
			if res.Status != domain.StatusPending {
				continue
			}
			if res.PaymentStatus != domain.PaymentPending && res.PaymentStatus != domain.PaymentUploaded {
				continue
			}
			if now.Before(res.PaymentDueAt) {
				continue
			}
			res.Status = domain.StatusExpired
			res.UpdatedAt = now
			r.db.reservations[id] = res
			ids = append(ids, id)
		}
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// AddHistory записывает событие жизненного цикла
func (r *ReservationRepository) AddHistory(ctx context.Context, h *domain.ReservationHistory) error {
	r.db.locked(ctx, func() {
		r.db.nextHistoryID++
		h.ID = r.db.nextHistoryID
		r.db.history = append(r.db.history, *h)
	})
	return nil
}

// History возвращает записи истории бронирования
func (r *ReservationRepository) History(ctx context.Context, reservationID int64) []domain.ReservationHistory {
	result := make([]domain.ReservationHistory, 0)
	r.db.locked(ctx, func() {
		for _, h := range r.db.history {
			if h.ReservationID == reservationID {
				result = append(result, h)
			}
		}
	})
	return result
}

func (r *ReservationRepository) mutate(ctx context.Context, id int64, fn func(res *domain.Reservation) error) error {
	var err error
	r.db.locked(ctx, func() {
		res, ok := r.db.reservations[id]
		if !ok {
			err = reservation.ErrReservationNotFound
			return
		}
		if err = fn(&res); err != nil {
			return
		}
		r.db.reservations[id] = res
	})
	return err
}

// conflicts вызывается под мьютексом
func (r *ReservationRepository) conflicts(facilityID int64, start, end time.Time, excludeID int64) bool {
	for _, other := range r.db.reservations {
		if other.ID == excludeID || other.FacilityID != facilityID || !other.IsBlocking() {
			continue
		}
		if other.Overlaps(start, end) {
			return true
		}
	}
	return false
}
