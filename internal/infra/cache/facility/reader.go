package facility

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

const keyPrefix = "facility:"

// CachedReader читает площадки через Redis
// Ошибки Redis не ломают чтение: при недоступности кеша данные берутся из источника
type CachedReader struct {
	source Source
	client redis.Cmdable
	ttl    time.Duration
	logger Logger
}

// NewCachedReader создает читатель площадок с кешем
func NewCachedReader(source Source, client redis.Cmdable, ttl time.Duration, logger Logger) *CachedReader {
	return &CachedReader{
		source: source,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Key ключ записи площадки в Redis
func Key(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

// GetByID получает площадку из кеша, при промахе загружает из источника и кладёт в кеш
func (c *CachedReader) GetByID(ctx context.Context, id int64) (*domain.Facility, error) {
	key := Key(id)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var f domain.Facility
		if jsonErr := json.Unmarshal(raw, &f); jsonErr == nil {
			return &f, nil
		}
		c.logger.Warn("facility cache: corrupted entry key=%s, reloading", key)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("facility cache: get key=%s failed: %v", key, err)
	}

	f, err := c.source.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.store(ctx, key, f); err != nil {
		c.logger.Warn("facility cache: %v", err)
	}

	return f, nil
}

// Invalidate удаляет запись площадки из кеша
func (c *CachedReader) Invalidate(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, Key(id)).Err(); err != nil {
		return fmt.Errorf("%w: facility=%d: %v", ErrInvalidate, id, err)
	}
	return nil
}

func (c *CachedReader) store(ctx context.Context, key string, f *domain.Facility) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set key=%s failed: %w", key, err)
	}
	return nil
}
