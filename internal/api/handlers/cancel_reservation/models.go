package cancel_reservation

import (
	"github.com/m04kA/SMC-FacilityBooking/internal/service/reservations/models"
)

// CancelReservationRequest HTTP request model
type CancelReservationRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelReservationRequest) ToServiceRequest(reservationID, userID int64) *models.CancelRequest {
	reason := ""
	if r.Reason != nil {
		reason = *r.Reason
	}

	return &models.CancelRequest{
		ReservationID: reservationID,
		UserID:        userID,
		Reason:        reason,
	}
}
