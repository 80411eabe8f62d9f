package verify_payment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-FacilityBooking/internal/api/handlers"
	"github.com/m04kA/SMC-FacilityBooking/internal/api/middleware"
	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/payments"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgNotFound             = "бронирование не найдено"
	msgSlipNotUploaded      = "квитанция об оплате не загружена"
	msgInvalidTransition    = "бронирование нельзя подтвердить"
)

type Handler struct {
	service PaymentService
	logger  Logger
}

func NewHandler(service PaymentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations/{reservationId}/payment/verify
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := handlers.PathInt64(r, "reservationId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.VerifyPayment(r.Context(), reservationID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrReservationNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, payments.ErrSlipNotUploaded):
			h.logger.Warn("POST /reservations/{id}/payment/verify - Slip not uploaded: reservation_id=%d", reservationID)
			handlers.RespondForbidden(w, msgSlipNotUploaded)

		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("POST /reservations/{id}/payment/verify - Invalid transition: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondForbidden(w, msgInvalidTransition)

		default:
			h.logger.Error("POST /reservations/{id}/payment/verify - Failed to verify payment: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondCategoryError(w, err)
		}
		return
	}

	h.logger.Info("POST /reservations/{id}/payment/verify - Payment verified: reservation_id=%d, actor_id=%d",
		reservationID, actorID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
