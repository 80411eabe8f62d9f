package models

import (
	"io"
	"time"
)

// GracePeriodStatus состояние окна оплаты
type GracePeriodStatus struct {
	ReservationID        int64         `json:"reservationId"`
	PaymentStatus        string        `json:"paymentStatus"`
	Eligible             bool          `json:"eligible"`
	ExpiresAt            time.Time     `json:"expiresAt"`
	TimeRemaining        time.Duration `json:"-"`
	TimeRemainingSeconds int64         `json:"timeRemainingSeconds"`
}

// SubmitSlipRequest загрузка файла квитанции
type SubmitSlipRequest struct {
	ReservationID int64
	UserID        int64
	Filename      string
	Content       io.Reader
}

// PaymentResult результат операции оплаты
type PaymentResult struct {
	ReservationID  int64   `json:"reservationId"`
	Status         string  `json:"status"`
	PaymentStatus  string  `json:"paymentStatus"`
	PaymentSlipRef *string `json:"paymentSlipRef,omitempty"`
	Message        string  `json:"message"`
}
