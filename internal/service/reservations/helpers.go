package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	facilityRepo "github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/facility"
	reservationRepo "github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-FacilityBooking/internal/integrations/events"
)

// Исходы операций для метрик
const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// paymentDueFor пересчитывает срок оплаты для нового начала окна
// Срок не может быть позже начала, у неактивных бронирований он не меняется
func (s *Service) paymentDueFor(res *domain.Reservation, newStart time.Time) time.Time {
	if res.Status != domain.StatusPending {
		return res.PaymentDueAt
	}
	return domain.PaymentDueAt(res.CreatedAt, newStart, s.paymentGrace)
}

// lockOwned блокирует строку бронирования и проверяет владельца
func (s *Service) lockOwned(ctx context.Context, op string, reservationID, userID int64) (*domain.Reservation, error) {
	res, err := s.reservationRepo.GetByIDForUpdate(ctx, reservationID)
	if err != nil {
		return nil, s.repoError(op, err)
	}
	if !res.IsOwnedBy(userID) {
		return nil, ErrNotOwner
	}
	return res, nil
}

// lockFacility блокирует строку площадки - точку сериализации изменений её бронирований
func (s *Service) lockFacility(ctx context.Context, op string, facilityID int64) (*domain.Facility, error) {
	f, err := s.facilityRepo.GetByIDForUpdate(ctx, facilityID)
	if err != nil {
		return nil, s.repoError(op, err)
	}
	return f, nil
}

// ensureAvailable проверяет закрытие площадки и пересечения окна
func (s *Service) ensureAvailable(ctx context.Context, f *domain.Facility, res *domain.Reservation, start, end time.Time) error {
	if f.IsClosedFor(start) {
		return domain.ErrFacilityClosed
	}

	ok, err := s.checker.IsAvailable(ctx, f.ID, start, end, &res.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSlotUnavailable
	}
	return nil
}

// repoError переводит ошибки репозиториев в категории домена
// Исходная ошибка остаётся в цепочке для повторов сериализуемой транзакции
func (s *Service) repoError(op string, err error) error {
	switch {
	case errors.Is(err, reservationRepo.ErrReservationNotFound):
		return ErrReservationNotFound
	case errors.Is(err, facilityRepo.ErrFacilityNotFound):
		return ErrFacilityNotFound
	case errors.Is(err, reservationRepo.ErrSlotNotAvailable):
		return ErrSlotUnavailable
	}
	return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
}

// txError оборачивает ошибки менеджера транзакций, не относящиеся к категориям домена
func txError(op string, err error) error {
	if domain.IsCategorized(err) {
		return err
	}
	return fmt.Errorf("%w: %s - transaction error: %w", ErrInternal, op, err)
}

func (s *Service) logFailure(ctx context.Context, op string, reservationID int64, err error) {
	log := s.logger.WithContext(ctx)
	if errors.Is(err, domain.ErrPersistenceFailure) {
		log.Error("%s: reservation=%d failed: %v", op, reservationID, err)
		return
	}
	log.Warn("%s: reservation=%d rejected: %v", op, reservationID, err)
}

func (s *Service) record(op string, err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case err == nil:
		s.metrics.IncLifecycleOperation(op, outcomeSuccess)
	case errors.Is(err, domain.ErrPersistenceFailure):
		s.metrics.IncLifecycleOperation(op, outcomeError)
	default:
		s.metrics.IncLifecycleOperation(op, outcomeRejected)
	}
}

// publish отправляет событие после коммита; ошибка публикации не влияет на результат операции
func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithContext(ctx).Warn("publish %s for reservation=%d failed: %v", event.Type, event.ReservationID, err)
	}
}

func optionFor(f *domain.Facility, optionID *int64) *domain.PricingOption {
	if optionID == nil {
		return nil
	}
	opt, ok := f.FindPricingOption(*optionID)
	if !ok {
		return nil
	}
	return opt
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
