package create_reservation

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.FacilityID <= 0 {
		return fmt.Errorf("%w: facilityID must be positive", ErrInvalidInput)
	}

	if !req.BookingType.IsValid() {
		return fmt.Errorf("%w: unknown booking type %q", ErrInvalidInput, req.BookingType)
	}

	if len(req.Purpose) > domain.MaxPurposeLength {
		return fmt.Errorf("%w: purpose is longer than %d characters", ErrInvalidInput, domain.MaxPurposeLength)
	}

	if req.PricingOptionID != nil && *req.PricingOptionID <= 0 {
		return fmt.Errorf("%w: pricingOptionID must be positive", ErrInvalidInput)
	}

	return domain.ValidateWindow(req.StartTime, req.EndTime)
}

// validateStart проверяет, что окно начинается в будущем
func validateStart(start, now time.Time) error {
	if !start.After(now) {
		return ErrStartInPast
	}
	return nil
}

// resolvePricingOption находит ценовую опцию среди опций площадки
func resolvePricingOption(facility *domain.Facility, optionID *int64) (*domain.PricingOption, error) {
	if optionID == nil {
		return nil, nil
	}
	option, ok := facility.FindPricingOption(*optionID)
	if !ok {
		return nil, ErrPricingOptionNotFound
	}
	return option, nil
}
