package clock

import (
	"sync"
	"time"
)

// Real реальный провайдер времени для production
type Real struct{}

// Now возвращает текущее время в UTC
func (Real) Now() time.Time {
	return time.Now().UTC()
}

// Fixed управляемый провайдер времени для тестов
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed создает провайдер, всегда возвращающий t
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

// Now возвращает зафиксированное время
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set устанавливает текущее время
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance сдвигает текущее время на d
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}
