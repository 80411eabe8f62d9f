package add_rating

import (
	"context"

	"github.com/m04kA/SMC-FacilityBooking/internal/service/ratings/models"
)

type RatingService interface {
	AddRating(ctx context.Context, req *models.AddRatingRequest) (*models.RatingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
