package ratings

import (
	"fmt"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

var (
	// ErrFacilityNotFound возвращается, когда площадка не найдена
	ErrFacilityNotFound = fmt.Errorf("%w: facility not found", domain.ErrNotFound)

	// ErrRatingNotFound возвращается, когда оценка не найдена или уже удалена
	ErrRatingNotFound = fmt.Errorf("%w: rating not found", domain.ErrNotFound)

	// ErrNotOwner возвращается при удалении чужой оценки
	ErrNotOwner = fmt.Errorf("%w: rating belongs to another user", domain.ErrForbiddenOperation)

	// ErrInvalidRating возвращается для значения вне диапазона 1..5
	ErrInvalidRating = fmt.Errorf("%w: rating must be between %d and %d", domain.ErrInvalidInput, domain.MinRating, domain.MaxRating)

	// ErrCommentTooLong возвращается при слишком длинном комментарии
	ErrCommentTooLong = fmt.Errorf("%w: comment is too long", domain.ErrInvalidInput)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = fmt.Errorf("%w: ratings: internal error", domain.ErrPersistenceFailure)
)
