package check_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

// FacilityReader чтение площадки (через кэш)
type FacilityReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
}

// AvailabilityChecker поиск пересекающихся бронирований
type AvailabilityChecker interface {
	Conflicts(ctx context.Context, facilityID int64, start, end time.Time, excludeID *int64) ([]*domain.Reservation, error)
}

// PricingEngine расчёт стоимости окна
type PricingEngine interface {
	ComputeCost(facility *domain.Facility, start, end time.Time, bookingType domain.BookingType, option *domain.PricingOption) (types.Money, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
