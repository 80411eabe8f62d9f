package add_rating

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-FacilityBooking/internal/api/handlers"
	"github.com/m04kA/SMC-FacilityBooking/internal/api/middleware"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/ratings"
)

const (
	msgInvalidFacilityID  = "некорректный ID площадки"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgFacilityNotFound   = "площадка не найдена"
	msgInvalidRating      = "оценка должна быть от 1 до 5"
	msgCommentTooLong     = "слишком длинный комментарий"
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

// Handle POST /api/v1/facilities/{facilityId}/ratings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	facilityID, err := handlers.PathInt64(r, "facilityId")
	if err != nil {
		h.logger.Warn("POST /facilities/{id}/ratings - Invalid facility ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req AddRatingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /facilities/{id}/ratings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	rating, err := h.service.AddRating(r.Context(), req.ToServiceRequest(facilityID, userID))
	if err != nil {
		switch {
		case errors.Is(err, ratings.ErrFacilityNotFound):
			handlers.RespondNotFound(w, msgFacilityNotFound)

		case errors.Is(err, ratings.ErrInvalidRating):
			handlers.RespondBadRequest(w, msgInvalidRating)

		case errors.Is(err, ratings.ErrCommentTooLong):
			handlers.RespondBadRequest(w, msgCommentTooLong)

		default:
			h.logger.Error("POST /facilities/{id}/ratings - Failed to add rating: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondCategoryError(w, err)
		}
		return
	}

	h.logger.Info("POST /facilities/{id}/ratings - Rating added: facility_id=%d, rating_id=%d, user_id=%d",
		facilityID, rating.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, rating)
}
