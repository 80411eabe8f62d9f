package domain

import "time"

// Rating is a user's score for a facility
type Rating struct {
	ID         int64
	FacilityID int64
	UserID     int64
	Rating     int
	Comment    *string
	CreatedAt  time.Time
	DeletedAt  *time.Time
}

// IsDeleted reports whether the rating was soft-deleted
func (r *Rating) IsDeleted() bool {
	return r.DeletedAt != nil
}

// IsValidRatingValue reports whether v is within 1..5
func IsValidRatingValue(v int) bool {
	return v >= MinRating && v <= MaxRating
}
