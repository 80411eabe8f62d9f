package upload_payment_slip

import (
	"context"

	"github.com/m04kA/SMC-FacilityBooking/internal/service/payments/models"
)

type PaymentService interface {
	SubmitPaymentSlip(ctx context.Context, req *models.SubmitSlipRequest) (*models.PaymentResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
