package reservation

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// SQLSTATE нарушения exclusion constraint (пересечение окон бронирования)
const codeExclusionViolation = "23P01"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrSlotNotAvailable возвращается, когда окно пересекается с другим бронированием
	ErrSlotNotAvailable = errors.New("reservation.repository: slot not available")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")
)

// execError классифицирует ошибку драйвера
// Исходная ошибка сохраняется в цепочке, чтобы менеджер транзакций мог распознать конфликт сериализации
func execError(sentinel error, op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeExclusionViolation {
		return fmt.Errorf("%w: %s: %v", ErrSlotNotAvailable, op, err)
	}
	return fmt.Errorf("%w: %s: %w", sentinel, op, err)
}
