package extend_reservation

import (
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/reservations/models"
)

// ExtendReservationRequest HTTP request model
type ExtendReservationRequest struct {
	NewEndTime string  `json:"newEndTime"` // RFC3339
	Reason     *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *ExtendReservationRequest) ToServiceRequest(reservationID, userID int64) (*models.ExtendRequest, error) {
	end, err := time.Parse(domain.TimeLayout, r.NewEndTime)
	if err != nil {
		return nil, err
	}

	req := &models.ExtendRequest{
		ReservationID: reservationID,
		UserID:        userID,
		NewEnd:        end,
	}
	if r.Reason != nil {
		req.Reason = *r.Reason
	}
	return req, nil
}
