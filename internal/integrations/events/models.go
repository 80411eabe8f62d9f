package events

import (
	"time"

	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

// Типы событий жизненного цикла
const (
	TypeReservationCreated     = "reservation.created"
	TypeReservationCancelled   = "reservation.cancelled"
	TypeReservationRescheduled = "reservation.rescheduled"
	TypeReservationExtended    = "reservation.extended"
	TypeReservationExpired     = "reservation.expired"
	TypeReservationInUse       = "reservation.in_use"
	TypePaymentUploaded        = "payment.uploaded"
	TypePaymentVerified        = "payment.verified"
)

// Event событие, публикуемое в RabbitMQ (routing key = Type)
type Event struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`
	OccurredAt    time.Time   `json:"occurred_at"`
	ReservationID int64       `json:"reservation_id"`
	FacilityID    int64       `json:"facility_id,omitempty"`
	UserID        int64       `json:"user_id,omitempty"`
	Data          interface{} `json:"data,omitempty"`
}

// CancelledData данные отмены: запрос на возврат средств
type CancelledData struct {
	RefundFraction float64     `json:"refund_fraction"`
	RefundAmount   types.Money `json:"refund_amount"`
	Reason         string      `json:"reason,omitempty"`
}

// WindowChangedData данные переноса или продления
type WindowChangedData struct {
	OldStart   time.Time   `json:"old_start"`
	OldEnd     time.Time   `json:"old_end"`
	NewStart   time.Time   `json:"new_start"`
	NewEnd     time.Time   `json:"new_end"`
	Difference types.Money `json:"difference"`
}

// CreatedData данные нового бронирования
type CreatedData struct {
	StartTime    time.Time   `json:"start_time"`
	EndTime      time.Time   `json:"end_time"`
	TotalAmount  types.Money `json:"total_amount"`
	PaymentDueAt time.Time   `json:"payment_due_at"`
}

// PaymentData данные об оплате
type PaymentData struct {
	SlipRef string `json:"slip_ref,omitempty"`
}
