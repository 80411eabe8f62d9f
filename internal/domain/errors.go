package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the lifecycle managers matches
// exactly one of them via errors.Is. ErrInvalidInput covers malformed
// requests that are not about the booking window.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbiddenOperation  = errors.New("forbidden operation")
	ErrInvalidWindow       = errors.New("invalid window")
	ErrSlotUnavailable     = errors.New("slot unavailable")
	ErrPaymentWindowClosed = errors.New("payment window closed")
	ErrPersistenceFailure  = errors.New("persistence failure")
	ErrInvalidInput        = errors.New("invalid input")
)

// Specific reasons shared across layers.
var (
	ErrInvalidTransition = fmt.Errorf("%w: status transition not allowed", ErrForbiddenOperation)
	ErrFacilityClosed    = fmt.Errorf("%w: facility closed for event", ErrSlotUnavailable)
	ErrWindowOrder       = fmt.Errorf("%w: start must be before end", ErrInvalidWindow)
)

var categories = []error{
	ErrNotFound,
	ErrForbiddenOperation,
	ErrInvalidWindow,
	ErrSlotUnavailable,
	ErrPaymentWindowClosed,
	ErrPersistenceFailure,
	ErrInvalidInput,
}

// IsCategorized reports whether err already belongs to one of the categories.
func IsCategorized(err error) bool {
	for _, c := range categories {
		if errors.Is(err, c) {
			return true
		}
	}
	return false
}
