package upload_payment_slip

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-FacilityBooking/internal/api/handlers"
	"github.com/m04kA/SMC-FacilityBooking/internal/api/middleware"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/payments"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/payments/models"
)

// FormField имя поля multipart формы с файлом квитанции
const FormField = "slip"

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgMissingFile          = "файл квитанции не передан"
	msgTooLarge             = "файл квитанции слишком большой"
	msgNotFound             = "бронирование не найдено"
	msgForbidden            = "доступ запрещен"
	msgWindowClosed         = "срок оплаты истёк или квитанция уже загружена"
	msgInactive             = "бронирование не ожидает оплату"
)

type Handler struct {
	service        PaymentService
	maxUploadBytes int64
	logger         Logger
}

func NewHandler(service PaymentService, maxUploadBytes int64, logger Logger) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Handle POST /api/v1/reservations/{reservationId}/payment/slip
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := handlers.PathInt64(r, "reservationId")
	if err != nil {
		h.logger.Warn("POST /reservations/{id}/payment/slip - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile(FormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.logger.Warn("POST /reservations/{id}/payment/slip - Payload too large: reservation_id=%d", reservationID)
			handlers.RespondError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		h.logger.Warn("POST /reservations/{id}/payment/slip - Missing file: %v", err)
		handlers.RespondBadRequest(w, msgMissingFile)
		return
	}
	defer file.Close()

	result, err := h.service.SubmitPaymentSlip(r.Context(), &models.SubmitSlipRequest{
		ReservationID: reservationID,
		UserID:        userID,
		Filename:      header.Filename,
		Content:       file,
	})
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrReservationNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, payments.ErrNotOwner):
			h.logger.Warn("POST /reservations/{id}/payment/slip - Access denied: reservation_id=%d, user_id=%d",
				reservationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, payments.ErrWindowClosed):
			h.logger.Warn("POST /reservations/{id}/payment/slip - Payment window closed: reservation_id=%d", reservationID)
			handlers.RespondError(w, http.StatusGone, msgWindowClosed)

		case errors.Is(err, payments.ErrReservationInactive):
			handlers.RespondForbidden(w, msgInactive)

		case errors.Is(err, payments.ErrSlipTooLarge):
			handlers.RespondError(w, http.StatusRequestEntityTooLarge, msgTooLarge)

		case errors.Is(err, payments.ErrEmptySlip):
			handlers.RespondBadRequest(w, msgMissingFile)

		default:
			h.logger.Error("POST /reservations/{id}/payment/slip - Failed to submit slip: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondCategoryError(w, err)
		}
		return
	}

	h.logger.Info("POST /reservations/{id}/payment/slip - Slip uploaded: reservation_id=%d, user_id=%d", reservationID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
