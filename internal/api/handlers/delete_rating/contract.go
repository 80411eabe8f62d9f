package delete_rating

import (
	"context"
)

type RatingService interface {
	DeleteRating(ctx context.Context, facilityID, ratingID, userID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
