package facility

import (
	"context"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

// Source первичный источник площадок (репозиторий)
type Source interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
