package reservations

import (
	"fmt"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = fmt.Errorf("%w: reservation not found", domain.ErrNotFound)

	// ErrFacilityNotFound возвращается, когда площадка бронирования не найдена
	ErrFacilityNotFound = fmt.Errorf("%w: facility not found", domain.ErrNotFound)

	// ErrNotOwner возвращается, когда бронирование принадлежит другому пользователю
	ErrNotOwner = fmt.Errorf("%w: reservation belongs to another user", domain.ErrForbiddenOperation)

	// ErrTooLateToModify возвращается для бронирования, которое уже нельзя отменить или перенести
	ErrTooLateToModify = fmt.Errorf("%w: reservation can no longer be modified", domain.ErrForbiddenOperation)

	// ErrCannotExtend возвращается, когда продление недоступно в текущем статусе
	ErrCannotExtend = fmt.Errorf("%w: only confirmed or in-use reservations can be extended", domain.ErrForbiddenOperation)

	// ErrStartInPast возвращается, когда новое окно начинается не в будущем
	ErrStartInPast = fmt.Errorf("%w: new start must be in the future", domain.ErrInvalidWindow)

	// ErrEndNotLater возвращается, когда новое окончание не позже текущего
	ErrEndNotLater = fmt.Errorf("%w: new end must be after current end", domain.ErrInvalidWindow)

	// ErrInvalidStatusFilter возвращается при неизвестном статусе в фильтре списка
	ErrInvalidStatusFilter = fmt.Errorf("%w: unknown status filter", domain.ErrInvalidInput)

	// ErrReasonTooLong возвращается при слишком длинной причине
	ErrReasonTooLong = fmt.Errorf("%w: reason is too long", domain.ErrInvalidInput)

	// ErrSlotUnavailable возвращается, когда окно пересекается с другим бронированием
	ErrSlotUnavailable = fmt.Errorf("%w: window overlaps another reservation", domain.ErrSlotUnavailable)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = fmt.Errorf("%w: reservations: internal error", domain.ErrPersistenceFailure)
)
