package payments

import (
	"fmt"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = fmt.Errorf("%w: reservation not found", domain.ErrNotFound)

	// ErrNotOwner возвращается, когда бронирование принадлежит другому пользователю
	ErrNotOwner = fmt.Errorf("%w: reservation belongs to another user", domain.ErrForbiddenOperation)

	// ErrWindowClosed возвращается, когда срок оплаты истёк или квитанция уже загружена
	ErrWindowClosed = fmt.Errorf("%w: payment is no longer accepted", domain.ErrPaymentWindowClosed)

	// ErrReservationInactive возвращается для бронирования, которое больше не ожидает оплату
	ErrReservationInactive = fmt.Errorf("%w: reservation is not awaiting payment", domain.ErrForbiddenOperation)

	// ErrSlipNotUploaded возвращается при подтверждении оплаты без квитанции
	ErrSlipNotUploaded = fmt.Errorf("%w: payment slip is not uploaded", domain.ErrForbiddenOperation)

	// ErrEmptySlip возвращается, когда файл квитанции не передан
	ErrEmptySlip = fmt.Errorf("%w: payment slip is empty", domain.ErrInvalidInput)

	// ErrSlipTooLarge возвращается, когда файл квитанции превышает лимит
	ErrSlipTooLarge = fmt.Errorf("%w: payment slip is too large", domain.ErrInvalidInput)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = fmt.Errorf("%w: payments: internal error", domain.ErrPersistenceFailure)
)
