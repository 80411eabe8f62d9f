package expiry

import (
	"context"
	"time"
)

// Expirer переводит просроченные неоплаченные бронирования в expired
type Expirer interface {
	ExpireUnpaid(ctx context.Context) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Sweeper периодически запускает истечение неоплаченных бронирований
type Sweeper struct {
	expirer  Expirer
	interval time.Duration
	timeout  time.Duration
	logger   Logger
}

// NewSweeper создает воркер с заданным интервалом
// Длительность одного прохода ограничена интервалом
func NewSweeper(expirer Expirer, interval time.Duration, logger Logger) *Sweeper {
	return &Sweeper{
		expirer:  expirer,
		interval: interval,
		timeout:  interval,
		logger:   logger,
	}
}

// Run выполняет проходы до отмены контекста
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("Expiry sweeper started, interval=%s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	count, err := s.expirer.ExpireUnpaid(sweepCtx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("Expiry sweeper: pass failed: %v", err)
		return
	}
	if count > 0 {
		s.logger.Info("Expiry sweeper: expired %d reservation(s)", count)
	}
}
