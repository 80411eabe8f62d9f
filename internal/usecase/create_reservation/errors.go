package create_reservation

import (
	"fmt"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

var (
	// ErrFacilityNotFound возвращается, когда площадка не найдена
	ErrFacilityNotFound = fmt.Errorf("%w: create_reservation: facility not found", domain.ErrNotFound)

	// ErrPricingOptionNotFound возвращается, когда ценовая опция не принадлежит площадке
	ErrPricingOptionNotFound = fmt.Errorf("%w: create_reservation: pricing option not found for facility", domain.ErrNotFound)

	// ErrStartInPast возвращается, когда окно начинается не в будущем
	ErrStartInPast = fmt.Errorf("%w: create_reservation: start must be in the future", domain.ErrInvalidWindow)

	// ErrSlotNotAvailable возвращается, когда окно пересекается с другим бронированием
	ErrSlotNotAvailable = fmt.Errorf("%w: create_reservation: slot is not available", domain.ErrSlotUnavailable)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: create_reservation: invalid input data", domain.ErrInvalidInput)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = fmt.Errorf("%w: create_reservation: internal error", domain.ErrPersistenceFailure)
)
