package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

// Checker решает, свободно ли окно площадки
// Конфликт: start < other.end && other.start < end среди pending/confirmed/in_use
// Внутри транзакции чтение блокирует найденные строки
type Checker struct {
	repo   ReservationRepository
	logger Logger
}

// NewChecker создает проверку доступности
func NewChecker(repo ReservationRepository, logger Logger) *Checker {
	return &Checker{repo: repo, logger: logger}
}

// IsAvailable сообщает, свободно ли окно [start, end) на площадке
// excludeID исключает из проверки само изменяемое бронирование
func (c *Checker) IsAvailable(ctx context.Context, facilityID int64, start, end time.Time, excludeID *int64) (bool, error) {
	conflicts, err := c.Conflicts(ctx, facilityID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// Conflicts возвращает бронирования, пересекающие окно
func (c *Checker) Conflicts(ctx context.Context, facilityID int64, start, end time.Time, excludeID *int64) ([]*domain.Reservation, error) {
	if err := domain.ValidateWindow(start, end); err != nil {
		return nil, err
	}

	candidates, err := c.repo.ListBlockingByFacility(ctx, facilityID, start, end, excludeID)
	if err != nil {
		c.logger.Error("IsAvailable: facility=%d repository error: %v", facilityID, err)
		return nil, fmt.Errorf("%w: IsAvailable - repository error: %w", ErrInternal, err)
	}

	// Источник может вернуть лишние строки
	conflicts := make([]*domain.Reservation, 0, len(candidates))
	for _, other := range candidates {
		if !other.IsBlocking() || (excludeID != nil && other.ID == *excludeID) {
			continue
		}
		if other.Overlaps(start, end) {
			conflicts = append(conflicts, other)
		}
	}

	if len(conflicts) > 0 {
		c.logger.Info("IsAvailable: facility=%d window=[%s,%s) has %d conflict(s)",
			facilityID, start.Format(domain.TimeLayout), end.Format(domain.TimeLayout), len(conflicts))
	}

	return conflicts, nil
}
