package domain

import (
	"time"

	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusInUse     ReservationStatus = "in_use"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusExpired   ReservationStatus = "expired"
)

// IsValid reports whether s is a known status
func (s ReservationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInUse, StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// IsBlocking reports whether a reservation in this status occupies its window
func (s ReservationStatus) IsBlocking() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusInUse
}

// IsTerminal reports whether the status is final
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusExpired
}

// PaymentStatus represents the state of the offline payment
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentUploaded PaymentStatus = "uploaded"
	PaymentVerified PaymentStatus = "verified"
)

// IsValid reports whether s is a known payment status
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentUploaded, PaymentVerified:
		return true
	}
	return false
}

// HasPaid reports whether the user has submitted a payment slip
func (s PaymentStatus) HasPaid() bool {
	return s == PaymentUploaded || s == PaymentVerified
}

// BookingType selects how a window is billed
type BookingType string

const (
	BookingHourly BookingType = "hourly"
	BookingDaily  BookingType = "daily"
)

// IsValid reports whether t is a known booking type
func (t BookingType) IsValid() bool {
	return t == BookingHourly || t == BookingDaily
}

// Reservation represents a booking of a facility for the half-open window [StartTime, EndTime)
type Reservation struct {
	ID              int64
	FacilityID      int64
	UserID          int64
	StartTime       time.Time
	EndTime         time.Time
	BookingType     BookingType
	TotalAmount     types.Money
	Purpose         string
	PricingOptionID *int64

	Status         ReservationStatus
	PaymentStatus  PaymentStatus
	PaymentDueAt   time.Time
	PaymentSlipRef *string
	UsageStartedAt *time.Time

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOwnedBy reports whether the reservation belongs to userID
func (r *Reservation) IsOwnedBy(userID int64) bool {
	return r.UserID == userID
}

// IsBlocking reports whether the reservation occupies its window
func (r *Reservation) IsBlocking() bool {
	return r.Status.IsBlocking()
}

// Overlaps reports whether [start, end) intersects the reservation window
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return Overlaps(r.StartTime, r.EndTime, start, end)
}

// CanBeModified reports whether the owner may still cancel or reschedule
func (r *Reservation) CanBeModified() bool {
	return (r.Status == StatusPending || r.Status == StatusConfirmed) && r.UsageStartedAt == nil
}

// CanBeExtended reports whether the end of the window may be moved forward
func (r *Reservation) CanBeExtended() bool {
	return r.Status == StatusConfirmed || r.Status == StatusInUse
}

// IsPaymentEligible reports whether a payment slip can still be accepted at now
func (r *Reservation) IsPaymentEligible(now time.Time) bool {
	return r.PaymentStatus == PaymentPending && now.Before(r.PaymentDueAt)
}

// Overlaps reports whether the half-open windows [aStart, aEnd) and [bStart, bEnd) intersect
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ValidateWindow checks start < end
func ValidateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return ErrWindowOrder
	}
	return nil
}

// PaymentDueAt returns the payment deadline: createdAt + grace, capped at the start of the window
func PaymentDueAt(createdAt, start time.Time, grace time.Duration) time.Time {
	due := createdAt.Add(grace)
	if start.Before(due) {
		return start
	}
	return due
}
