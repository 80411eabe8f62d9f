package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	facilityRepo "github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/facility"
	reservationRepo "github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-FacilityBooking/internal/integrations/events"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/reservations/models"
	"github.com/m04kA/SMC-FacilityBooking/pkg/clock"
	"github.com/m04kA/SMC-FacilityBooking/pkg/tracing"
)

const operation = "create"

var tracer = tracing.Tracer("github.com/m04kA/SMC-FacilityBooking/internal/usecase/create_reservation")

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	facilityRepo    FacilityRepository
	checker         AvailabilityChecker
	pricing         PricingEngine
	txManager       TransactionManager
	publisher       EventPublisher
	metrics         Metrics
	paymentGrace    time.Duration
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	facilityRepo FacilityRepository,
	checker AvailabilityChecker,
	pricing PricingEngine,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	paymentGrace time.Duration,
	logger Logger,
) *UseCase {
	if paymentGrace <= 0 {
		paymentGrace = domain.DefaultPaymentGrace
	}
	return &UseCase{
		reservationRepo: reservationRepo,
		facilityRepo:    facilityRepo,
		checker:         checker,
		pricing:         pricing,
		txManager:       txManager,
		publisher:       publisher,
		metrics:         metrics,
		paymentGrace:    paymentGrace,
		timeProvider:    clock.Real{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования
// Использует сериализуемую транзакцию с блокировкой строки площадки для предотвращения гонки данных
func (uc *UseCase) Execute(ctx context.Context, req *Request) (result *models.ReservationResponse, err error) {
	ctx, span := tracer.Start(ctx, "create_reservation.Execute", trace.WithAttributes(
		attribute.Int64("facility.id", req.FacilityID),
		attribute.Int64("user.id", req.UserID),
	))
	defer func() {
		tracing.Finish(span, err)
		uc.record(err)
	}()

	uc.logger.Info("CreateReservation: user=%d, facility=%d, window=[%s,%s), type=%s",
		req.UserID, req.FacilityID, req.StartTime.Format(domain.TimeLayout), req.EndTime.Format(domain.TimeLayout), req.BookingType)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	var created *domain.Reservation

	// 2. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		now := uc.timeProvider.Now()

		// 2.1. Окно должно начинаться в будущем
		if err := validateStart(req.StartTime, now); err != nil {
			return err
		}

		// 2.2. Блокируем площадку - точка сериализации бронирований площадки
		facility, err := uc.facilityRepo.GetByIDForUpdate(txCtx, req.FacilityID)
		if err != nil {
			if errors.Is(err, facilityRepo.ErrFacilityNotFound) {
				return ErrFacilityNotFound
			}
			return fmt.Errorf("%w: failed to lock facility: %w", ErrInternal, err)
		}

		// 2.3. Площадка закрыта на мероприятие
		if facility.IsClosedFor(req.StartTime) {
			return domain.ErrFacilityClosed
		}

		option, err := resolvePricingOption(facility, req.PricingOptionID)
		if err != nil {
			return err
		}

		// 2.4. Проверяем пересечения с заблокированными строками
		available, err := uc.checker.IsAvailable(txCtx, facility.ID, req.StartTime, req.EndTime, nil)
		if err != nil {
			return err
		}
		if !available {
			return ErrSlotNotAvailable
		}

		// 2.5. Считаем стоимость
		amount, err := uc.pricing.ComputeCost(facility, req.StartTime, req.EndTime, req.BookingType, option)
		if err != nil {
			return err
		}

		// 2.6. Сохраняем бронирование
		reservation, err := uc.reservationRepo.Create(txCtx, &domain.Reservation{
			FacilityID:      facility.ID,
			UserID:          req.UserID,
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			BookingType:     req.BookingType,
			TotalAmount:     amount,
			Purpose:         req.Purpose,
			PricingOptionID: req.PricingOptionID,
			Status:          domain.StatusPending,
			PaymentStatus:   domain.PaymentPending,
			PaymentDueAt:    domain.PaymentDueAt(now, req.StartTime, uc.paymentGrace),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			if errors.Is(err, reservationRepo.ErrSlotNotAvailable) {
				return ErrSlotNotAvailable
			}
			return fmt.Errorf("%w: failed to create reservation: %w", ErrInternal, err)
		}

		created = reservation
		return nil
	})

	if err != nil {
		if !domain.IsCategorized(err) {
			err = fmt.Errorf("%w: transaction error: %w", ErrInternal, err)
		}
		if errors.Is(err, domain.ErrPersistenceFailure) {
			uc.logger.Error("CreateReservation: failed: %v", err)
		} else {
			uc.logger.Warn("CreateReservation: rejected: %v", err)
		}
		return nil, err
	}

	uc.logger.Info("CreateReservation: successfully created reservation id=%d, amount=%s, payment due at %s",
		created.ID, created.TotalAmount, created.PaymentDueAt.Format(domain.TimeLayout))

	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, events.Event{
			Type:          events.TypeReservationCreated,
			ReservationID: created.ID,
			FacilityID:    created.FacilityID,
			UserID:        created.UserID,
			Data: events.CreatedData{
				StartTime:    created.StartTime,
				EndTime:      created.EndTime,
				TotalAmount:  created.TotalAmount,
				PaymentDueAt: created.PaymentDueAt,
			},
		}); err != nil {
			uc.logger.Warn("CreateReservation: publish event for reservation id=%d failed: %v", created.ID, err)
		}
	}

	return models.FromDomainReservation(created), nil
}

func (uc *UseCase) record(err error) {
	if uc.metrics == nil {
		return
	}
	switch {
	case err == nil:
		uc.metrics.IncLifecycleOperation(operation, "success")
	case errors.Is(err, domain.ErrPersistenceFailure):
		uc.metrics.IncLifecycleOperation(operation, "error")
	default:
		uc.metrics.IncLifecycleOperation(operation, "rejected")
	}
}
