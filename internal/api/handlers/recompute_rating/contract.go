package recompute_rating

import (
	"context"

	"github.com/m04kA/SMC-FacilityBooking/internal/service/ratings/models"
)

type RatingService interface {
	Recompute(ctx context.Context, facilityID int64) (*models.SummaryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
