package verify_payment

import (
	"context"

	"github.com/m04kA/SMC-FacilityBooking/internal/service/payments/models"
)

type PaymentService interface {
	VerifyPayment(ctx context.Context, reservationID, actorID int64) (*models.PaymentResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
