package get_payment_status

import (
	"context"

	"github.com/m04kA/SMC-FacilityBooking/internal/service/payments/models"
)

type PaymentService interface {
	GetGracePeriodStatus(ctx context.Context, reservationID, userID int64) (*models.GracePeriodStatus, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
