package moderate_rating

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

// Handle DELETE /api/v1/admin/facilities/{facilityId}/ratings/{ratingId}
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

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := h.service.ModerateRating(r.Context(), facilityID, ratingID, actorID); err != nil {
		if errors.Is(err, ratings.ErrRatingNotFound) || errors.Is(err, ratings.ErrFacilityNotFound) {
			h.logger.Warn("DELETE /admin/facilities/{id}/ratings/{ratingId} - Rating not found: facility_id=%d, rating_id=%d",
				facilityID, ratingID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("DELETE /admin/facilities/{id}/ratings/{ratingId} - Failed to moderate rating: rating_id=%d, error=%v",
			ratingID, err)
		handlers.RespondCategoryError(w, err)
		return
	}

	h.logger.Info("DELETE /admin/facilities/{id}/ratings/{ratingId} - Rating removed by admin: facility_id=%d, rating_id=%d, actor_id=%d",
		facilityID, ratingID, actorID)
	w.WriteHeader(http.StatusNoContent)
}
