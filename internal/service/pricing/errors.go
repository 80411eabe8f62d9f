package pricing

import (
	"fmt"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

var (
	// ErrUnknownBookingType возвращается для неизвестного типа бронирования
	ErrUnknownBookingType = fmt.Errorf("%w: pricing: unknown booking type", domain.ErrInvalidInput)

	// ErrForeignPricingOption возвращается, когда опция принадлежит другой площадке
	ErrForeignPricingOption = fmt.Errorf("%w: pricing: option belongs to another facility", domain.ErrInvalidInput)
)
