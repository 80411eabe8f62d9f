package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-FacilityBooking/pkg/logger"
	"github.com/m04kA/SMC-FacilityBooking/pkg/ptr"
	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

var base = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *memory.ReservationRepository, facilityID int64, from, to time.Time, status domain.ReservationStatus) *domain.Reservation {
	t.Helper()
	res, err := repo.Create(context.Background(), &domain.Reservation{
		FacilityID:    facilityID,
		UserID:        1,
		StartTime:     from,
		EndTime:       to,
		BookingType:   domain.BookingHourly,
		TotalAmount:   types.NewMoney(100),
		Status:        status,
		PaymentStatus: domain.PaymentPending,
		PaymentDueAt:  from,
	})
	require.NoError(t, err)
	return res
}

func TestChecker_IsAvailable(t *testing.T) {
	db := memory.New()
	repo := db.Reservations()
	checker := NewChecker(repo, logger.Nop())
	ctx := context.Background()

	existing := seed(t, repo, 1, base, base.Add(2*time.Hour), domain.StatusConfirmed)

	tests := []struct {
		name      string
		facility  int64
		start     time.Time
		end       time.Time
		excludeID *int64
		want      bool
	}{
		{"overlap", 1, base.Add(time.Hour), base.Add(3 * time.Hour), nil, false},
		{"inside", 1, base.Add(30 * time.Minute), base.Add(time.Hour), nil, false},
		{"adjacent after", 1, base.Add(2 * time.Hour), base.Add(3 * time.Hour), nil, true},
		{"adjacent before", 1, base.Add(-time.Hour), base, nil, true},
		{"other facility", 2, base, base.Add(2 * time.Hour), nil, true},
		{"excluding itself", 1, base, base.Add(3 * time.Hour), ptr.Ptr(existing.ID), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := checker.IsAvailable(ctx, tt.facility, tt.start, tt.end, tt.excludeID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestChecker_TerminalStatusesDoNotBlock(t *testing.T) {
	db := memory.New()
	repo := db.Reservations()
	checker := NewChecker(repo, logger.Nop())

	for _, status := range domain.TerminalStatuses {
		seed(t, repo, 1, base, base.Add(time.Hour), status)
	}

	ok, err := checker.IsAvailable(context.Background(), 1, base, base.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChecker_InvalidWindow(t *testing.T) {
	checker := NewChecker(memory.New().Reservations(), logger.Nop())

	_, err := checker.IsAvailable(context.Background(), 1, base, base, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

type repoMock struct {
	mock.Mock
}

func (m *repoMock) ListBlockingByFacility(ctx context.Context, facilityID int64, start, end time.Time, excludeID *int64) ([]*domain.Reservation, error) {
	args := m.Called(ctx, facilityID, start, end, excludeID)
	if list := args.Get(0); list != nil {
		return list.([]*domain.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestChecker_RepositoryErrorIsPersistenceFailure(t *testing.T) {
	repo := &repoMock{}
	repo.On("ListBlockingByFacility", mock.Anything, int64(1), base, base.Add(time.Hour), (*int64)(nil)).
		Return(nil, errors.New("connection reset"))

	_, err := NewChecker(repo, logger.Nop()).IsAvailable(context.Background(), 1, base, base.Add(time.Hour), nil)
	assert.ErrorIs(t, err, domain.ErrPersistenceFailure)
	repo.AssertExpectations(t)
}
