package payments

import (
	"context"
	"io"
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/internal/integrations/events"
	"github.com/m04kA/SMC-FacilityBooking/pkg/logger"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error)
	AttachPaymentSlip(ctx context.Context, id int64, ref string, updatedAt time.Time) error
	VerifyPayment(ctx context.Context, id int64, updatedAt time.Time) error
	ExpireUnpaid(ctx context.Context, now time.Time) ([]int64, error)
	AddHistory(ctx context.Context, h *domain.ReservationHistory) error
}

// BlobStore хранилище файлов квитанций
type BlobStore interface {
	Store(ctx context.Context, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher публикация событий оплаты
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Metrics счётчики операций оплаты
type Metrics interface {
	IncLifecycleOperation(operation, outcome string)
	AddExpired(count int)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
// WithContext добавляет trace_id/span_id текущего спана
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
	WithContext(ctx context.Context) *logger.Logger
}
