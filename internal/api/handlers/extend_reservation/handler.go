package extend_reservation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-FacilityBooking/internal/api/handlers"
	"github.com/m04kA/SMC-FacilityBooking/internal/api/middleware"
	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/reservations"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidTime          = "некорректный формат времени, ожидается RFC3339"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgNotFound             = "бронирование не найдено"
	msgForbidden            = "доступ запрещен"
	msgCannotExtend         = "продлить можно только подтверждённое или текущее бронирование"
	msgSlotNotAvailable     = "продление пересекается с другим бронированием"
	msgFacilityClosed       = "площадка закрыта на мероприятие"
	msgEndNotLater          = "новое окончание должно быть позже текущего"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/reservations/{reservationId}/extend
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := handlers.PathInt64(r, "reservationId")
	if err != nil {
		h.logger.Warn("PATCH /reservations/{id}/extend - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /reservations/{id}/extend - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ExtendReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /reservations/{id}/extend - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest(reservationID, userID)
	if err != nil {
		h.logger.Warn("PATCH /reservations/{id}/extend - Invalid newEndTime: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.service.Extend(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("PATCH /reservations/{id}/extend - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrNotOwner):
			h.logger.Warn("PATCH /reservations/{id}/extend - Access denied: reservation_id=%d, user_id=%d",
				reservationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrCannotExtend):
			h.logger.Warn("PATCH /reservations/{id}/extend - Cannot extend: reservation_id=%d", reservationID)
			handlers.RespondForbidden(w, msgCannotExtend)

		case errors.Is(err, domain.ErrFacilityClosed):
			handlers.RespondError(w, http.StatusConflict, msgFacilityClosed)

		case errors.Is(err, domain.ErrSlotUnavailable):
			h.logger.Warn("PATCH /reservations/{id}/extend - Slot not available: reservation_id=%d", reservationID)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, domain.ErrInvalidWindow):
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgEndNotLater)

		default:
			h.logger.Error("PATCH /reservations/{id}/extend - Failed to extend reservation: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondCategoryError(w, err)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id}/extend - Reservation extended successfully: reservation_id=%d, additional=%s",
		reservationID, result.AdditionalCost)
	handlers.RespondJSON(w, http.StatusOK, result)
}
