package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/internal/infra/blobstore"
	reservationRepo "github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-FacilityBooking/internal/integrations/events"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/payments/models"
	"github.com/m04kA/SMC-FacilityBooking/pkg/clock"
	"github.com/m04kA/SMC-FacilityBooking/pkg/ptr"
	"github.com/m04kA/SMC-FacilityBooking/pkg/tracing"
)

var tracer = tracing.Tracer("github.com/m04kA/SMC-FacilityBooking/internal/service/payments")

const (
	opUpload = "payment_upload"
	opVerify = "payment_verify"
	opExpire = "expire"

	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// Service менеджер жизненного цикла оплаты: окно оплаты, квитанции, подтверждение и истечение
type Service struct {
	reservationRepo ReservationRepository
	blobs           BlobStore
	txManager       TransactionManager
	publisher       EventPublisher
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса оплаты
func NewService(
	reservationRepo ReservationRepository,
	blobs BlobStore,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		blobs:           blobs,
		txManager:       txManager,
		publisher:       publisher,
		metrics:         metrics,
		timeProvider:    clock.Real{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetGracePeriodStatus возвращает состояние окна оплаты бронирования
func (s *Service) GetGracePeriodStatus(ctx context.Context, reservationID, userID int64) (*models.GracePeriodStatus, error) {
	var res *domain.Reservation
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		res, err = s.getOwned(txCtx, "GetGracePeriodStatus", reservationID, userID)
		return err
	})
	if err != nil {
		return nil, txError("GetGracePeriodStatus", err)
	}

	now := s.timeProvider.Now()
	status := &models.GracePeriodStatus{
		ReservationID: res.ID,
		PaymentStatus: string(res.PaymentStatus),
		Eligible:      checkEligible(res, now) == nil,
		ExpiresAt:     res.PaymentDueAt,
	}
	if status.Eligible {
		status.TimeRemaining = res.PaymentDueAt.Sub(now)
		status.TimeRemainingSeconds = int64(status.TimeRemaining / time.Second)
	}

	return status, nil
}

// SubmitPaymentSlip сохраняет файл квитанции и прикрепляет ссылку к бронированию
// Файл не сохраняется, если окно оплаты уже закрыто; при ошибке записи ссылки файл удаляется
func (s *Service) SubmitPaymentSlip(ctx context.Context, req *models.SubmitSlipRequest) (*models.PaymentResult, error) {
	if req.Content == nil {
		return nil, ErrEmptySlip
	}

	res, err := s.getOwned(ctx, "SubmitPaymentSlip", req.ReservationID, req.UserID)
	if err != nil {
		return nil, err
	}
	if err := checkEligible(res, s.timeProvider.Now()); err != nil {
		s.logger.WithContext(ctx).Warn("SubmitPaymentSlip: reservation=%d rejected: %v", res.ID, err)
		return nil, err
	}

	ref, err := s.blobs.Store(ctx, req.Filename, req.Content)
	if err != nil {
		if errors.Is(err, blobstore.ErrTooLarge) {
			return nil, ErrSlipTooLarge
		}
		s.logger.WithContext(ctx).Error("SubmitPaymentSlip: failed to store slip for reservation=%d: %v", res.ID, err)
		return nil, fmt.Errorf("%w: SubmitPaymentSlip - store slip: %w", ErrInternal, err)
	}

	result, err := s.UploadPaymentSlip(ctx, req.ReservationID, req.UserID, ref)
	if err != nil {
		if delErr := s.blobs.Delete(ctx, ref); delErr != nil {
			s.logger.WithContext(ctx).Error("SubmitPaymentSlip: failed to remove orphan slip %s: %v", ref, delErr)
		}
		return nil, err
	}

	return result, nil
}

// UploadPaymentSlip прикрепляет ссылку на квитанцию, пока окно оплаты открыто
func (s *Service) UploadPaymentSlip(ctx context.Context, reservationID, userID int64, ref string) (result *models.PaymentResult, err error) {
	ctx, span := tracer.Start(ctx, "payments.UploadPaymentSlip", trace.WithAttributes(
		attribute.Int64("reservation.id", reservationID),
		attribute.Int64("user.id", userID),
	))
	defer func() {
		tracing.Finish(span, err)
		s.record(opUpload, err)
	}()

	s.logger.WithContext(ctx).Info("UploadPaymentSlip: reservation=%d user=%d", reservationID, userID)

	var updated *domain.Reservation

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		now := s.timeProvider.Now()

		res, err := s.reservationRepo.GetByIDForUpdate(txCtx, reservationID)
		if err != nil {
			return repoError("UploadPaymentSlip", err)
		}
		if !res.IsOwnedBy(userID) {
			return ErrNotOwner
		}
		if err := checkEligible(res, now); err != nil {
			return err
		}

		if err := s.reservationRepo.AttachPaymentSlip(txCtx, res.ID, ref, now); err != nil {
			return repoError("UploadPaymentSlip", err)
		}

		res.PaymentSlipRef = ptr.Ptr(ref)
		res.PaymentStatus = domain.PaymentUploaded
		updated = res
		return nil
	})

	if err != nil {
		err = txError("UploadPaymentSlip", err)
		s.logFailure(ctx, "UploadPaymentSlip", reservationID, err)
		return nil, err
	}

	s.logger.WithContext(ctx).Info("UploadPaymentSlip: reservation=%d slip attached", updated.ID)

	s.publish(ctx, events.Event{
		Type:          events.TypePaymentUploaded,
		ReservationID: updated.ID,
		FacilityID:    updated.FacilityID,
		UserID:        updated.UserID,
		Data:          events.PaymentData{SlipRef: ref},
	})

	return toResult(updated, "Payment slip uploaded, awaiting verification"), nil
}

// VerifyPayment подтверждает оплату администратором: uploaded -> verified, pending -> confirmed
func (s *Service) VerifyPayment(ctx context.Context, reservationID, actorID int64) (result *models.PaymentResult, err error) {
	ctx, span := tracer.Start(ctx, "payments.VerifyPayment", trace.WithAttributes(
		attribute.Int64("reservation.id", reservationID),
		attribute.Int64("actor.id", actorID),
	))
	defer func() {
		tracing.Finish(span, err)
		s.record(opVerify, err)
	}()

	s.logger.WithContext(ctx).Info("VerifyPayment: reservation=%d actor=%d", reservationID, actorID)

	var updated *domain.Reservation

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		now := s.timeProvider.Now()

		res, err := s.reservationRepo.GetByIDForUpdate(txCtx, reservationID)
		if err != nil {
			return repoError("VerifyPayment", err)
		}
		if res.PaymentStatus != domain.PaymentUploaded {
			return ErrSlipNotUploaded
		}
		if err := res.TransitionTo(domain.StatusConfirmed); err != nil {
			return err
		}

		if err := s.reservationRepo.VerifyPayment(txCtx, res.ID, now); err != nil {
			return repoError("VerifyPayment", err)
		}

		if err := s.reservationRepo.AddHistory(txCtx, &domain.ReservationHistory{
			ReservationID: res.ID,
			Action:        domain.HistoryVerify,
			ActorUserID:   ptr.Ptr(actorID),
			CreatedAt:     now,
		}); err != nil {
			return repoError("VerifyPayment", err)
		}

		res.PaymentStatus = domain.PaymentVerified
		res.UpdatedAt = now
		updated = res
		return nil
	})

	if err != nil {
		err = txError("VerifyPayment", err)
		s.logFailure(ctx, "VerifyPayment", reservationID, err)
		return nil, err
	}

	s.logger.WithContext(ctx).Info("VerifyPayment: reservation=%d confirmed", updated.ID)

	s.publish(ctx, events.Event{
		Type:          events.TypePaymentVerified,
		ReservationID: updated.ID,
		FacilityID:    updated.FacilityID,
		UserID:        updated.UserID,
		Data:          events.PaymentData{SlipRef: ptr.Value(updated.PaymentSlipRef)},
	})

	return toResult(updated, "Payment verified, reservation confirmed"), nil
}

// ExpireUnpaid переводит в expired ожидающие оплаты бронирования с истёкшим сроком
// Повторный вызов без новых просроченных бронирований ничего не меняет
func (s *Service) ExpireUnpaid(ctx context.Context) (count int, err error) {
	ctx, span := tracer.Start(ctx, "payments.ExpireUnpaid")
	defer func() {
		span.SetAttributes(attribute.Int("expired.count", count))
		tracing.Finish(span, err)
		s.record(opExpire, err)
	}()

	var expired []int64

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		now := s.timeProvider.Now()

		ids, err := s.reservationRepo.ExpireUnpaid(txCtx, now)
		if err != nil {
			return repoError("ExpireUnpaid", err)
		}

		for _, id := range ids {
			if err := s.reservationRepo.AddHistory(txCtx, &domain.ReservationHistory{
				ReservationID: id,
				Action:        domain.HistoryExpire,
				Reason:        ptr.Ptr("payment grace period elapsed"),
				CreatedAt:     now,
			}); err != nil {
				return repoError("ExpireUnpaid", err)
			}
		}

		expired = ids
		return nil
	})

	if err != nil {
		err = txError("ExpireUnpaid", err)
		s.logger.WithContext(ctx).Error("ExpireUnpaid: sweep failed: %v", err)
		return 0, err
	}

	if len(expired) == 0 {
		return 0, nil
	}

	s.logger.WithContext(ctx).Info("ExpireUnpaid: expired %d reservations: %v", len(expired), expired)
	if s.metrics != nil {
		s.metrics.AddExpired(len(expired))
	}

	for _, id := range expired {
		s.publish(ctx, events.Event{
			Type:          events.TypeReservationExpired,
			ReservationID: id,
		})
	}

	return len(expired), nil
}

func (s *Service) getOwned(ctx context.Context, op string, reservationID, userID int64) (*domain.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		err = repoError(op, err)
		s.logFailure(ctx, op, reservationID, err)
		return nil, err
	}
	if !res.IsOwnedBy(userID) {
		s.logger.WithContext(ctx).Warn("%s: access denied for user=%d to reservation id=%d", op, userID, reservationID)
		return nil, ErrNotOwner
	}
	return res, nil
}

// checkEligible проверяет, что окно оплаты открыто
// Истёкшее бронирование или пропущенный срок дают ErrWindowClosed раньше проверки статуса
func checkEligible(res *domain.Reservation, now time.Time) error {
	if res.Status == domain.StatusExpired || !now.Before(res.PaymentDueAt) {
		return ErrWindowClosed
	}
	if res.Status != domain.StatusPending {
		return ErrReservationInactive
	}
	if !res.IsPaymentEligible(now) {
		return ErrWindowClosed
	}
	return nil
}

func toResult(res *domain.Reservation, message string) *models.PaymentResult {
	return &models.PaymentResult{
		ReservationID:  res.ID,
		Status:         string(res.Status),
		PaymentStatus:  string(res.PaymentStatus),
		PaymentSlipRef: res.PaymentSlipRef,
		Message:        message,
	}
}

func repoError(op string, err error) error {
	if errors.Is(err, reservationRepo.ErrReservationNotFound) {
		return ErrReservationNotFound
	}
	return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
}

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

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithContext(ctx).Warn("publish %s for reservation=%d failed: %v", event.Type, event.ReservationID, err)
	}
}
