package domain

import "time"

// Default business settings
const (
	DefaultPaymentGrace  = 60 * time.Minute
	DefaultSweepInterval = time.Minute
)

// Validation limits
const (
	MaxPurposeLength = 500
	MaxReasonLength  = 500
	MaxCommentLength = 1000
	MinRating        = 1
	MaxRating        = 5
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
	TimeLayout = time.RFC3339
)

// BlockingStatuses lists the statuses that occupy a facility window.
var BlockingStatuses = []ReservationStatus{
	StatusPending,
	StatusConfirmed,
	StatusInUse,
}

// TerminalStatuses lists the statuses a reservation never leaves.
var TerminalStatuses = []ReservationStatus{
	StatusCompleted,
	StatusCancelled,
	StatusExpired,
}

// ExpirablePaymentStatuses lists payment states that still allow expiry.
var ExpirablePaymentStatuses = []PaymentStatus{
	PaymentPending,
	PaymentUploaded,
}
