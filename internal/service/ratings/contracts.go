package ratings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

// RatingRepository интерфейс репозитория оценок
type RatingRepository interface {
	Create(ctx context.Context, rating *domain.Rating) (*domain.Rating, error)
	GetByID(ctx context.Context, id int64) (*domain.Rating, error)
	SoftDelete(ctx context.Context, id int64, deletedAt time.Time) error
	ListActiveValues(ctx context.Context, facilityID int64) ([]int, error)
}

// FacilityRepository интерфейс репозитория площадок
type FacilityRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Facility, error)
	UpdateRatingSummary(ctx context.Context, id int64, summary domain.RatingSummary, updatedAt time.Time) error
}

// FacilityCache сброс закэшированной площадки после пересчёта
type FacilityCache interface {
	Invalidate(ctx context.Context, id int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
