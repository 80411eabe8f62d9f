package check_availability

import (
	"fmt"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

var (
	// ErrFacilityNotFound возвращается, когда площадка не найдена
	ErrFacilityNotFound = fmt.Errorf("%w: check_availability: facility not found", domain.ErrNotFound)

	// ErrPricingOptionNotFound возвращается, когда ценовая опция не принадлежит площадке
	ErrPricingOptionNotFound = fmt.Errorf("%w: check_availability: pricing option not found for facility", domain.ErrNotFound)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: check_availability: invalid input data", domain.ErrInvalidInput)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = fmt.Errorf("%w: check_availability: internal error", domain.ErrPersistenceFailure)
)
