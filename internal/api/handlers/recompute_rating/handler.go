package recompute_rating

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-FacilityBooking/internal/api/handlers"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/ratings"
)

const (
	msgInvalidFacilityID = "некорректный ID площадки"
	msgFacilityNotFound  = "площадка не найдена"
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

// Handle POST /api/v1/facilities/{facilityId}/ratings/recompute
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	facilityID, err := handlers.PathInt64(r, "facilityId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	summary, err := h.service.Recompute(r.Context(), facilityID)
	if err != nil {
		if errors.Is(err, ratings.ErrFacilityNotFound) {
			handlers.RespondNotFound(w, msgFacilityNotFound)
			return
		}
		h.logger.Error("POST /facilities/{id}/ratings/recompute - Failed to recompute: facility_id=%d, error=%v", facilityID, err)
		handlers.RespondCategoryError(w, err)
		return
	}

	h.logger.Info("POST /facilities/{id}/ratings/recompute - Summary recomputed: facility_id=%d, average=%.2f, total=%d",
		facilityID, summary.AverageRating, summary.TotalRatings)
	handlers.RespondJSON(w, http.StatusOK, summary)
}
