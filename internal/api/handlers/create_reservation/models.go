package create_reservation

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	createReservation "github.com/m04kA/SMC-FacilityBooking/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	FacilityID      int64  `json:"facilityId"`
	StartTime       string `json:"startTime"` // RFC3339
	EndTime         string `json:"endTime"`   // RFC3339
	BookingType     string `json:"bookingType"`
	Purpose         string `json:"purpose"`
	PricingOptionID *int64 `json:"pricingOptionId,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(userID int64) (*createReservation.Request, error) {
	start, err := time.Parse(domain.TimeLayout, r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}
	end, err := time.Parse(domain.TimeLayout, r.EndTime)
	if err != nil {
		return nil, fmt.Errorf("endTime: %w", err)
	}

	bookingType := domain.BookingType(r.BookingType)
	if bookingType == "" {
		bookingType = domain.BookingHourly
	}

	return &createReservation.Request{
		UserID:          userID,
		FacilityID:      r.FacilityID,
		StartTime:       start,
		EndTime:         end,
		BookingType:     bookingType,
		Purpose:         r.Purpose,
		PricingOptionID: r.PricingOptionID,
	}, nil
}
