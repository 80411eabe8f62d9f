package moderate_rating

import (
	"context"
)

type RatingService interface {
	ModerateRating(ctx context.Context, facilityID, ratingID, actorID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
