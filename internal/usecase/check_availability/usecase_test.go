package check_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/availability"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/pricing"
	"github.com/m04kA/SMC-FacilityBooking/pkg/logger"
	"github.com/m04kA/SMC-FacilityBooking/pkg/ptr"
	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

var start = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func TestUseCase_Execute(t *testing.T) {
	db := memory.New()
	log := logger.Nop()
	uc := NewUseCase(db.Facilities(), availability.NewChecker(db.Reservations(), log), pricing.NewEngine(), log)
	ctx := context.Background()

	open := db.Facilities().Seed(domain.Facility{Name: "Hall", HourlyRate: types.NewMoney(1000)})
	closed := db.Facilities().Seed(domain.Facility{Name: "Closed", HourlyRate: types.NewMoney(1000), IsClosedForEvent: true})

	_, err := db.Reservations().Create(ctx, &domain.Reservation{
		FacilityID:    open.ID,
		UserID:        1,
		StartTime:     start,
		EndTime:       start.Add(2 * time.Hour),
		BookingType:   domain.BookingHourly,
		Status:        domain.StatusConfirmed,
		PaymentStatus: domain.PaymentVerified,
	})
	require.NoError(t, err)

	t.Run("daily estimate", func(t *testing.T) {
		resp, err := uc.Execute(ctx, &Request{
			FacilityID:  open.ID,
			StartTime:   start.Add(24 * time.Hour),
			EndTime:     start.Add(72 * time.Hour),
			BookingType: domain.BookingDaily,
		})
		require.NoError(t, err)
		assert.True(t, resp.Available)
		require.NotNil(t, resp.EstimatedCost)
		assert.Equal(t, types.NewMoney(3000), *resp.EstimatedCost)
	})

	t.Run("conflict", func(t *testing.T) {
		resp, err := uc.Execute(ctx, &Request{FacilityID: open.ID, StartTime: start.Add(time.Hour), EndTime: start.Add(3 * time.Hour)})
		require.NoError(t, err)
		assert.False(t, resp.Available)
		assert.Equal(t, ReasonConflict, resp.Reason)
		require.Len(t, resp.Conflicts, 1)
		assert.Nil(t, resp.EstimatedCost)
	})

	t.Run("closed", func(t *testing.T) {
		resp, err := uc.Execute(ctx, &Request{FacilityID: closed.ID, StartTime: start, EndTime: start.Add(time.Hour)})
		require.NoError(t, err)
		assert.False(t, resp.Available)
		assert.Equal(t, ReasonFacilityClosed, resp.Reason)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := uc.Execute(ctx, &Request{FacilityID: 404, StartTime: start, EndTime: start.Add(time.Hour)})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = uc.Execute(ctx, &Request{FacilityID: open.ID, StartTime: start, EndTime: start})
		assert.ErrorIs(t, err, domain.ErrInvalidWindow)

		_, err = uc.Execute(ctx, &Request{
			FacilityID:      open.ID,
			StartTime:       start.Add(5 * time.Hour),
			EndTime:         start.Add(6 * time.Hour),
			PricingOptionID: ptr.Ptr(int64(77)),
		})
		assert.ErrorIs(t, err, ErrPricingOptionNotFound)
	})
}
