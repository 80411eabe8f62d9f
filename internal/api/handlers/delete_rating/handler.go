package delete_rating

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-FacilityBooking/internal/api/handlers"
	"github.com/m04kA/SMC-FacilityBooking/internal/api/middleware"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/ratings"
)

const (
	msgInvalidFacilityID = "некорректный ID площадки"
	msgInvalidRatingID   = "некорректный ID оценки"
	msgMissingUserID     = "отсутствует ID пользователя"
	msgNotFound          = "оценка не найдена"
	msgForbidden         = "можно удалить только свою оценку"
)

type Handler struct {
	service RatingService
	logger  Logger
}

func NewHandler(service RatingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/facilities/{facilityId}/ratings/{ratingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	facilityID, err := handlers.PathInt64(r, "facilityId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	ratingID, err := handlers.PathInt64(r, "ratingId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidRatingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := h.service.DeleteRating(r.Context(), facilityID, ratingID, userID); err != nil {
		switch {
		case errors.Is(err, ratings.ErrRatingNotFound), errors.Is(err, ratings.ErrFacilityNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, ratings.ErrNotOwner):
			h.logger.Warn("DELETE /facilities/{id}/ratings/{ratingId} - Access denied: rating_id=%d, user_id=%d",
				ratingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("DELETE /facilities/{id}/ratings/{ratingId} - Failed to delete rating: rating_id=%d, error=%v",
				ratingID, err)
			handlers.RespondCategoryError(w, err)
		}
		return
	}

	h.logger.Info("DELETE /facilities/{id}/ratings/{ratingId} - Rating deleted: facility_id=%d, rating_id=%d",
		facilityID, ratingID)
	w.WriteHeader(http.StatusNoContent)
}
