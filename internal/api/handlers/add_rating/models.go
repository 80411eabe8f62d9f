package add_rating

import (
	"github.com/m04kA/SMC-FacilityBooking/internal/service/ratings/models"
)

// AddRatingRequest HTTP request model
type AddRatingRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *AddRatingRequest) ToServiceRequest(facilityID, userID int64) *models.AddRatingRequest {
	return &models.AddRatingRequest{
		FacilityID: facilityID,
		UserID:     userID,
		Rating:     r.Rating,
		Comment:    r.Comment,
	}
}
