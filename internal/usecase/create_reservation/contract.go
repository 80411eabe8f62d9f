package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/internal/integrations/events"
	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
}

// FacilityRepository интерфейс репозитория площадок
type FacilityRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Facility, error)
}

// AvailabilityChecker проверка пересечений окон
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, facilityID int64, start, end time.Time, excludeID *int64) (bool, error)
}

// PricingEngine расчёт стоимости окна
type PricingEngine interface {
	ComputeCost(facility *domain.Facility, start, end time.Time, bookingType domain.BookingType, option *domain.PricingOption) (types.Money, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher публикация событий жизненного цикла
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Metrics счётчики исходов операций
type Metrics interface {
	IncLifecycleOperation(operation, outcome string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
