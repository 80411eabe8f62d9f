package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]ReservationStatus{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusInUse},
		{StatusConfirmed, StatusInUse},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
		{StatusInUse, StatusCompleted},
		{StatusPending, StatusExpired},
		{StatusConfirmed, StatusExpired},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]ReservationStatus{
		{StatusInUse, StatusCancelled},
		{StatusPending, StatusCompleted},
		{StatusCancelled, StatusPending},
		{StatusExpired, StatusConfirmed},
		{StatusCompleted, StatusInUse},
		{StatusConfirmed, StatusPending},
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	for _, terminal := range TerminalStatuses {
		assert.Empty(t, transitions[terminal])
	}
}

func TestReservation_TransitionTo(t *testing.T) {
	r := &Reservation{Status: StatusCancelled}
	err := r.TransitionTo(StatusConfirmed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.True(t, errors.Is(err, ErrForbiddenOperation))
	assert.Equal(t, StatusCancelled, r.Status)

	r.Status = StatusPending
	require.NoError(t, r.TransitionTo(StatusConfirmed))
	assert.Equal(t, StatusConfirmed, r.Status)
}

func TestRefundFraction(t *testing.T) {
	tests := []struct {
		lead time.Duration
		want float64
	}{
		{30 * time.Hour, 1.00},
		{24 * time.Hour, 1.00},
		{18 * time.Hour, 0.75},
		{12 * time.Hour, 0.75},
		{9 * time.Hour, 0.50},
		{3 * time.Hour, 0.25},
		{2 * time.Hour, 0.25},
		{time.Hour, 0},
		{-time.Hour, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RefundFraction(tt.lead), "lead=%s", tt.lead)
	}
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	h := time.Hour

	assert.True(t, Overlaps(base, base.Add(2*h), base.Add(h), base.Add(3*h)))
	assert.True(t, Overlaps(base, base.Add(3*h), base.Add(h), base.Add(2*h)))
	// смежные окна не пересекаются
	assert.False(t, Overlaps(base, base.Add(h), base.Add(h), base.Add(2*h)))
	assert.False(t, Overlaps(base.Add(h), base.Add(2*h), base, base.Add(h)))
}

func TestPaymentDueAt(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, created.Add(time.Hour), PaymentDueAt(created, created.Add(48*time.Hour), time.Hour))
	assert.Equal(t, created.Add(30*time.Minute), PaymentDueAt(created, created.Add(30*time.Minute), time.Hour))
}

func TestFacility_IsClosedFor(t *testing.T) {
	closureEnd := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	open := &Facility{}
	assert.False(t, open.IsClosedFor(closureEnd))

	untilFurtherNotice := &Facility{IsClosedForEvent: true}
	assert.True(t, untilFurtherNotice.IsClosedFor(closureEnd.AddDate(1, 0, 0)))

	bounded := &Facility{IsClosedForEvent: true, ClosureEndDate: &closureEnd}
	assert.True(t, bounded.IsClosedFor(closureEnd.Add(-time.Minute)))
	assert.False(t, bounded.IsClosedFor(closureEnd))
}

func TestValidateWindow(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateWindow(start, start.Add(time.Minute)))
	assert.True(t, errors.Is(ValidateWindow(start, start), ErrInvalidWindow))
	assert.True(t, errors.Is(ValidateWindow(start.Add(time.Hour), start), ErrInvalidWindow))
}

func TestIsCategorized(t *testing.T) {
	assert.True(t, IsCategorized(ErrFacilityClosed))
	assert.True(t, IsCategorized(fmt.Errorf("wrapped: %w", ErrNotFound)))
	assert.False(t, IsCategorized(errors.New("driver: bad connection")))
	assert.False(t, IsCategorized(nil))
}
