package reservations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/internal/integrations/events"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/reservations/models"
	"github.com/m04kA/SMC-FacilityBooking/pkg/clock"
	"github.com/m04kA/SMC-FacilityBooking/pkg/ptr"
	"github.com/m04kA/SMC-FacilityBooking/pkg/tracing"
	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

var tracer = tracing.Tracer("github.com/m04kA/SMC-FacilityBooking/internal/service/reservations")

// Названия операций для метрик
const (
	opCancel     = "cancel"
	opReschedule = "reschedule"
	opExtend     = "extend"
	opStartUsage = "start_usage"
)

// Service менеджер жизненного цикла бронирований
// Каждая изменяющая операция выполняется в сериализуемой транзакции:
// блокировка бронирования, блокировка площадки, повторная проверка доступности, запись
type Service struct {
	reservationRepo ReservationRepository
	facilityRepo    FacilityRepository
	checker         AvailabilityChecker
	pricing         PricingEngine
	txManager       TransactionManager
	publisher       EventPublisher
	metrics         Metrics
	timeProvider    TimeProvider
	paymentGrace    time.Duration
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	facilityRepo FacilityRepository,
	checker AvailabilityChecker,
	pricing PricingEngine,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		facilityRepo:    facilityRepo,
		checker:         checker,
		pricing:         pricing,
		txManager:       txManager,
		publisher:       publisher,
		metrics:         metrics,
		timeProvider:    clock.Real{},
		paymentGrace:    domain.DefaultPaymentGrace,
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// WithPaymentGrace задаёт окно оплаты, по которому пересчитывается срок при переносе
func (s *Service) WithPaymentGrace(grace time.Duration) *Service {
	if grace > 0 {
		s.paymentGrace = grace
	}
	return s
}

// GetByID получает бронирование по ID
// Пользователь может видеть только своё бронирование
func (s *Service) GetByID(ctx context.Context, reservationID, userID int64) (*models.ReservationResponse, error) {
	log := s.logger.WithContext(ctx)
	log.Info("GetByID: fetching reservation id=%d for user=%d", reservationID, userID)

	var res *domain.Reservation
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		res, err = s.reservationRepo.GetByID(txCtx, reservationID)
		if err != nil {
			return s.repoError("GetByID", err)
		}
		return nil
	})
	if err != nil {
		err = txError("GetByID", err)
		s.logFailure(ctx, "GetByID", reservationID, err)
		return nil, err
	}

	if !res.IsOwnedBy(userID) {
		log.Warn("GetByID: access denied for user=%d to reservation id=%d", userID, reservationID)
		return nil, ErrNotOwner
	}

	return models.FromDomainReservation(res), nil
}

// ListUserReservations возвращает бронирования пользователя
// status пустой - без фильтра
func (s *Service) ListUserReservations(ctx context.Context, userID int64, status string) (*models.ReservationList, error) {
	log := s.logger.WithContext(ctx)
	log.Info("ListUserReservations: user=%d status=%q", userID, status)

	var filter *domain.ReservationStatus
	if status != "" {
		st := domain.ReservationStatus(status)
		if !st.IsValid() {
			return nil, ErrInvalidStatusFilter
		}
		filter = &st
	}

	var list []*domain.Reservation
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		list, err = s.reservationRepo.ListByUser(txCtx, userID, filter)
		if err != nil {
			return s.repoError("ListUserReservations", err)
		}
		return nil
	})
	if err != nil {
		err = txError("ListUserReservations", err)
		log.Error("ListUserReservations: user=%d failed: %v", userID, err)
		return nil, err
	}

	return models.FromDomainReservations(list), nil
}

// ListFacilityReservations возвращает бронирования площадки (администратор)
// paymentStatus пустой - без фильтра; "uploaded" даёт очередь квитанций на проверку
func (s *Service) ListFacilityReservations(ctx context.Context, facilityID int64, paymentStatus string) (*models.ReservationList, error) {
	log := s.logger.WithContext(ctx)
	log.Info("ListFacilityReservations: facility=%d payment status=%q", facilityID, paymentStatus)

	var filter *domain.PaymentStatus
	if paymentStatus != "" {
		ps := domain.PaymentStatus(paymentStatus)
		if !ps.IsValid() {
			return nil, ErrInvalidStatusFilter
		}
		filter = &ps
	}

	var list []*domain.Reservation
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		list, err = s.reservationRepo.ListByFacility(txCtx, facilityID, filter)
		if err != nil {
			return s.repoError("ListFacilityReservations", err)
		}
		return nil
	})
	if err != nil {
		err = txError("ListFacilityReservations", err)
		log.Error("ListFacilityReservations: facility=%d failed: %v", facilityID, err)
		return nil, err
	}

	return models.FromDomainReservations(list), nil
}

// Cancel отменяет бронирование владельцем
// Доля возврата зависит от времени до начала: >=24ч 100%, >=12ч 75%, >=6ч 50%, >=2ч 25%, иначе 0
func (s *Service) Cancel(ctx context.Context, req *models.CancelRequest) (result *models.CancelResult, err error) {
	ctx, span := tracer.Start(ctx, "reservations.Cancel", trace.WithAttributes(
		attribute.Int64("reservation.id", req.ReservationID),
		attribute.Int64("user.id", req.UserID),
	))
	defer func() {
		tracing.Finish(span, err)
		s.record(opCancel, err)
	}()

	s.logger.WithContext(ctx).Info("Cancel: reservation=%d user=%d", req.ReservationID, req.UserID)

	if len(req.Reason) > domain.MaxReasonLength {
		return nil, ErrReasonTooLong
	}

	var cancelled *domain.Reservation

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		now := s.timeProvider.Now()

		res, err := s.lockOwned(txCtx, "Cancel", req.ReservationID, req.UserID)
		if err != nil {
			return err
		}
		if !res.CanBeModified() {
			return ErrTooLateToModify
		}
		if _, err := s.lockFacility(txCtx, "Cancel", res.FacilityID); err != nil {
			return err
		}
		if err := res.TransitionTo(domain.StatusCancelled); err != nil {
			return err
		}

		fraction := domain.RefundFraction(res.StartTime.Sub(now))
		refund := types.Money(0)
		if res.PaymentStatus.HasPaid() {
			refund = res.TotalAmount.Mul(fraction)
		}

		reason := optionalString(req.Reason)
		if err := s.reservationRepo.Cancel(txCtx, res.ID, reason, now); err != nil {
			return s.repoError("Cancel", err)
		}

		if err := s.reservationRepo.AddHistory(txCtx, &domain.ReservationHistory{
			ReservationID: res.ID,
			Action:        domain.HistoryCancel,
			ActorUserID:   ptr.Ptr(req.UserID),
			Reason:        reason,
			OldStart:      ptr.Ptr(res.StartTime),
			OldEnd:        ptr.Ptr(res.EndTime),
			OldAmount:     ptr.Ptr(res.TotalAmount),
			CreatedAt:     now,
		}); err != nil {
			return s.repoError("Cancel", err)
		}

		cancelled = res
		result = &models.CancelResult{
			RefundFraction: fraction,
			RefundAmount:   refund,
			Message:        fmt.Sprintf("Reservation cancelled, refund %.0f%% (%s)", fraction*100, refund),
		}
		return nil
	})

	if err != nil {
		err = txError("Cancel", err)
		s.logFailure(ctx, "Cancel", req.ReservationID, err)
		return nil, err
	}

	s.logger.WithContext(ctx).Info("Cancel: reservation=%d cancelled, refund fraction=%.2f amount=%s",
		cancelled.ID, result.RefundFraction, result.RefundAmount)

	s.publish(ctx, events.Event{
		Type:          events.TypeReservationCancelled,
		ReservationID: cancelled.ID,
		FacilityID:    cancelled.FacilityID,
		UserID:        cancelled.UserID,
		Data: events.CancelledData{
			RefundFraction: result.RefundFraction,
			RefundAmount:   result.RefundAmount,
			Reason:         req.Reason,
		},
	})

	return result, nil
}

// Reschedule переносит бронирование на новое окно
// Доступность проверяется без учёта самого бронирования; при конфликте бронирование не меняется
func (s *Service) Reschedule(ctx context.Context, req *models.RescheduleRequest) (result *models.RescheduleResult, err error) {
	ctx, span := tracer.Start(ctx, "reservations.Reschedule", trace.WithAttributes(
		attribute.Int64("reservation.id", req.ReservationID),
		attribute.Int64("user.id", req.UserID),
	))
	defer func() {
		tracing.Finish(span, err)
		s.record(opReschedule, err)
	}()

	s.logger.WithContext(ctx).Info("Reschedule: reservation=%d user=%d new window=[%s,%s)", req.ReservationID, req.UserID,
		req.NewStart.Format(domain.TimeLayout), req.NewEnd.Format(domain.TimeLayout))

	if err := domain.ValidateWindow(req.NewStart, req.NewEnd); err != nil {
		return nil, err
	}
	if len(req.Reason) > domain.MaxReasonLength {
		return nil, ErrReasonTooLong
	}

	var (
		before *domain.Reservation
		total  types.Money
	)

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		now := s.timeProvider.Now()

		if !req.NewStart.After(now) {
			return ErrStartInPast
		}

		res, err := s.lockOwned(txCtx, "Reschedule", req.ReservationID, req.UserID)
		if err != nil {
			return err
		}
		if !res.CanBeModified() {
			return ErrTooLateToModify
		}

		facility, err := s.lockFacility(txCtx, "Reschedule", res.FacilityID)
		if err != nil {
			return err
		}

		if err := s.ensureAvailable(txCtx, facility, res, req.NewStart, req.NewEnd); err != nil {
			return err
		}

		newCost, err := s.pricing.ComputeCost(facility, req.NewStart, req.NewEnd, res.BookingType, optionFor(facility, res.PricingOptionID))
		if err != nil {
			return err
		}

		dueAt := s.paymentDueFor(res, req.NewStart)
		if err := s.reservationRepo.UpdateWindow(txCtx, res.ID, req.NewStart, req.NewEnd, newCost, dueAt, now); err != nil {
			return s.repoError("Reschedule", err)
		}

		if err := s.reservationRepo.AddHistory(txCtx, &domain.ReservationHistory{
			ReservationID: res.ID,
			Action:        domain.HistoryReschedule,
			ActorUserID:   ptr.Ptr(req.UserID),
			Reason:        optionalString(req.Reason),
			OldStart:      ptr.Ptr(res.StartTime),
			OldEnd:        ptr.Ptr(res.EndTime),
			NewStart:      ptr.Ptr(req.NewStart),
			NewEnd:        ptr.Ptr(req.NewEnd),
			OldAmount:     ptr.Ptr(res.TotalAmount),
			NewAmount:     ptr.Ptr(newCost),
			CreatedAt:     now,
		}); err != nil {
			return s.repoError("Reschedule", err)
		}

		before = res
		total = newCost
		return nil
	})

	if err != nil {
		err = txError("Reschedule", err)
		s.logFailure(ctx, "Reschedule", req.ReservationID, err)
		return nil, err
	}

	diff := total - before.TotalAmount
	result = &models.RescheduleResult{
		CostDifference: diff,
		NewTotal:       total,
		Message:        fmt.Sprintf("Reservation rescheduled, cost difference %s", diff),
	}

	s.logger.WithContext(ctx).Info("Reschedule: reservation=%d moved, cost difference=%s", before.ID, diff)

	s.publish(ctx, events.Event{
		Type:          events.TypeReservationRescheduled,
		ReservationID: before.ID,
		FacilityID:    before.FacilityID,
		UserID:        before.UserID,
		Data: events.WindowChangedData{
			OldStart:   before.StartTime,
			OldEnd:     before.EndTime,
			NewStart:   req.NewStart,
			NewEnd:     req.NewEnd,
			Difference: diff,
		},
	})

	return result, nil
}

// Extend продлевает подтверждённое или используемое бронирование
// Проверяется только добавляемый отрезок [end, newEnd)
func (s *Service) Extend(ctx context.Context, req *models.ExtendRequest) (result *models.ExtendResult, err error) {
	ctx, span := tracer.Start(ctx, "reservations.Extend", trace.WithAttributes(
		attribute.Int64("reservation.id", req.ReservationID),
		attribute.Int64("user.id", req.UserID),
	))
	defer func() {
		tracing.Finish(span, err)
		s.record(opExtend, err)
	}()

	s.logger.WithContext(ctx).Info("Extend: reservation=%d user=%d new end=%s", req.ReservationID, req.UserID, req.NewEnd.Format(domain.TimeLayout))

	if req.NewEnd.IsZero() {
		return nil, domain.ErrWindowOrder
	}
	if len(req.Reason) > domain.MaxReasonLength {
		return nil, ErrReasonTooLong
	}

	var (
		before     *domain.Reservation
		additional types.Money
	)

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		now := s.timeProvider.Now()

		res, err := s.lockOwned(txCtx, "Extend", req.ReservationID, req.UserID)
		if err != nil {
			return err
		}
		if !res.CanBeExtended() {
			return ErrCannotExtend
		}
		if !req.NewEnd.After(res.EndTime) {
			return ErrEndNotLater
		}

		facility, err := s.lockFacility(txCtx, "Extend", res.FacilityID)
		if err != nil {
			return err
		}

		if err := s.ensureAvailable(txCtx, facility, res, res.EndTime, req.NewEnd); err != nil {
			return err
		}

		newCost, err := s.pricing.ComputeCost(facility, res.StartTime, req.NewEnd, res.BookingType, optionFor(facility, res.PricingOptionID))
		if err != nil {
			return err
		}

		extra := (newCost - res.TotalAmount).ClampZero()
		newTotal := res.TotalAmount + extra

		if err := s.reservationRepo.UpdateWindow(txCtx, res.ID, res.StartTime, req.NewEnd, newTotal, res.PaymentDueAt, now); err != nil {
			return s.repoError("Extend", err)
		}

		if err := s.reservationRepo.AddHistory(txCtx, &domain.ReservationHistory{
			ReservationID: res.ID,
			Action:        domain.HistoryExtend,
			ActorUserID:   ptr.Ptr(req.UserID),
			Reason:        optionalString(req.Reason),
			OldStart:      ptr.Ptr(res.StartTime),
			OldEnd:        ptr.Ptr(res.EndTime),
			NewStart:      ptr.Ptr(res.StartTime),
			NewEnd:        ptr.Ptr(req.NewEnd),
			OldAmount:     ptr.Ptr(res.TotalAmount),
			NewAmount:     ptr.Ptr(newTotal),
			CreatedAt:     now,
		}); err != nil {
			return s.repoError("Extend", err)
		}

		before = res
		additional = extra
		return nil
	})

	if err != nil {
		err = txError("Extend", err)
		s.logFailure(ctx, "Extend", req.ReservationID, err)
		return nil, err
	}

	result = &models.ExtendResult{
		AdditionalCost: additional,
		NewTotal:       before.TotalAmount + additional,
		Message:        fmt.Sprintf("Reservation extended, additional cost %s", additional),
	}

	s.logger.WithContext(ctx).Info("Extend: reservation=%d extended until %s, additional cost=%s",
		before.ID, req.NewEnd.Format(domain.TimeLayout), additional)

	s.publish(ctx, events.Event{
		Type:          events.TypeReservationExtended,
		ReservationID: before.ID,
		FacilityID:    before.FacilityID,
		UserID:        before.UserID,
		Data: events.WindowChangedData{
			OldStart:   before.StartTime,
			OldEnd:     before.EndTime,
			NewStart:   before.StartTime,
			NewEnd:     req.NewEnd,
			Difference: additional,
		},
	})

	return result, nil
}

// StartUsage отмечает начало использования площадки (администратор)
func (s *Service) StartUsage(ctx context.Context, reservationID, actorID int64) (result *models.ReservationResponse, err error) {
	ctx, span := tracer.Start(ctx, "reservations.StartUsage", trace.WithAttributes(
		attribute.Int64("reservation.id", reservationID),
		attribute.Int64("actor.id", actorID),
	))
	defer func() {
		tracing.Finish(span, err)
		s.record(opStartUsage, err)
	}()

	s.logger.WithContext(ctx).Info("StartUsage: reservation=%d actor=%d", reservationID, actorID)

	var updated *domain.Reservation

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		now := s.timeProvider.Now()

		res, err := s.reservationRepo.GetByIDForUpdate(txCtx, reservationID)
		if err != nil {
			return s.repoError("StartUsage", err)
		}
		if _, err := s.lockFacility(txCtx, "StartUsage", res.FacilityID); err != nil {
			return err
		}
		if err := res.TransitionTo(domain.StatusInUse); err != nil {
			return err
		}

		if err := s.reservationRepo.StartUsage(txCtx, res.ID, now); err != nil {
			return s.repoError("StartUsage", err)
		}

		if err := s.reservationRepo.AddHistory(txCtx, &domain.ReservationHistory{
			ReservationID: res.ID,
			Action:        domain.HistoryStartUsage,
			ActorUserID:   ptr.Ptr(actorID),
			CreatedAt:     now,
		}); err != nil {
			return s.repoError("StartUsage", err)
		}

		res.UsageStartedAt = ptr.Ptr(now)
		res.UpdatedAt = now
		updated = res
		return nil
	})

	if err != nil {
		err = txError("StartUsage", err)
		s.logFailure(ctx, "StartUsage", reservationID, err)
		return nil, err
	}

	s.logger.WithContext(ctx).Info("StartUsage: reservation=%d is in use", updated.ID)

	s.publish(ctx, events.Event{
		Type:          events.TypeReservationInUse,
		ReservationID: updated.ID,
		FacilityID:    updated.FacilityID,
		UserID:        updated.UserID,
	})

	return models.FromDomainReservation(updated), nil
}
