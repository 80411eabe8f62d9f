package reschedule_reservation

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/reservations/models"
)

// RescheduleReservationRequest HTTP request model
type RescheduleReservationRequest struct {
	NewStartTime string  `json:"newStartTime"` // RFC3339
	NewEndTime   string  `json:"newEndTime"`   // RFC3339
	Reason       *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *RescheduleReservationRequest) ToServiceRequest(reservationID, userID int64) (*models.RescheduleRequest, error) {
	start, err := time.Parse(domain.TimeLayout, r.NewStartTime)
	if err != nil {
		return nil, fmt.Errorf("newStartTime: %w", err)
	}
	end, err := time.Parse(domain.TimeLayout, r.NewEndTime)
	if err != nil {
		return nil, fmt.Errorf("newEndTime: %w", err)
	}

	req := &models.RescheduleRequest{
		ReservationID: reservationID,
		UserID:        userID,
		NewStart:      start,
		NewEnd:        end,
	}
	if r.Reason != nil {
		req.Reason = *r.Reason
	}
	return req, nil
}
