package models

import (
	"strconv"
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

// AddRatingRequest новая оценка площадки
type AddRatingRequest struct {
	FacilityID int64
	UserID     int64
	Rating     int
	Comment    *string
}

// RatingResponse оценка для API
type RatingResponse struct {
	ID         int64     `json:"id"`
	FacilityID int64     `json:"facilityId"`
	UserID     int64     `json:"userId"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SummaryResponse агрегат оценок площадки
type SummaryResponse struct {
	FacilityID    int64          `json:"facilityId"`
	AverageRating float64        `json:"averageRating"`
	TotalRatings  int            `json:"totalRatings"`
	Breakdown     map[string]int `json:"ratingBreakdown"`
}

// FromDomainRating конвертирует domain модель в response
func FromDomainRating(r *domain.Rating) *RatingResponse {
	return &RatingResponse{
		ID:         r.ID,
		FacilityID: r.FacilityID,
		UserID:     r.UserID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

// FromDomainSummary конвертирует агрегат в response
func FromDomainSummary(facilityID int64, s domain.RatingSummary) *SummaryResponse {
	breakdown := make(map[string]int, len(s.Breakdown))
	for k, v := range s.Breakdown {
		breakdown[strconv.Itoa(k)] = v
	}
	return &SummaryResponse{
		FacilityID:    facilityID,
		AverageRating: s.AverageRating,
		TotalRatings:  s.TotalRatings,
		Breakdown:     breakdown,
	}
}
