package extend_reservation

import (
	"context"

	"github.com/m04kA/SMC-FacilityBooking/internal/service/reservations/models"
)

type ReservationService interface {
	Extend(ctx context.Context, req *models.ExtendRequest) (*models.ExtendResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
