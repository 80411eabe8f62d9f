package list_user_reservations

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-FacilityBooking/internal/api/handlers"
	"github.com/m04kA/SMC-FacilityBooking/internal/api/middleware"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/reservations"
)

// StatusParam query-параметр фильтра по статусу бронирования
const StatusParam = "status"

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgInvalidStatus = "неизвестный статус бронирования"
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

// Handle GET /api/v1/users/me/reservations?status=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /users/me/reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	status := r.URL.Query().Get(StatusParam)

	list, err := h.service.ListUserReservations(r.Context(), userID, status)
	if err != nil {
		if errors.Is(err, reservations.ErrInvalidStatusFilter) {
			h.logger.Warn("GET /users/me/reservations - Invalid status filter: %q", status)
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		h.logger.Error("GET /users/me/reservations - Failed to list reservations: user_id=%d, error=%v", userID, err)
		handlers.RespondCategoryError(w, err)
		return
	}

	h.logger.Info("GET /users/me/reservations - Reservations listed: user_id=%d, total=%d", userID, list.Total)
	handlers.RespondJSON(w, http.StatusOK, list)
}
