package facility

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

type sourceMock struct {
	mock.Mock
}

func (m *sourceMock) GetByID(ctx context.Context, id int64) (*domain.Facility, error) {
	args := m.Called(ctx, id)
	if f := args.Get(0); f != nil {
		return f.(*domain.Facility), args.Error(1)
	}
	return nil, args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func sampleFacility() *domain.Facility {
	return &domain.Facility{
		ID:         3,
		Name:       "Court A",
		HourlyRate: types.NewMoney(500),
		Rating:     domain.EmptyRatingSummary(),
	}
}

func TestCachedReader_MissLoadsAndStores(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	source := &sourceMock{}
	ctx := context.Background()
	f := sampleFacility()
	raw, err := json.Marshal(f)
	require.NoError(t, err)

	redisMock.ExpectGet("facility:3").RedisNil()
	source.On("GetByID", ctx, int64(3)).Return(f, nil).Once()
	redisMock.ExpectSet("facility:3", raw, time.Minute).SetVal("OK")

	got, err := NewCachedReader(source, client, time.Minute, nopLogger{}).GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Court A", got.Name)
	assert.NoError(t, redisMock.ExpectationsWereMet())
	source.AssertExpectations(t)
}

func TestCachedReader_Hit(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	source := &sourceMock{}
	raw, err := json.Marshal(sampleFacility())
	require.NoError(t, err)

	redisMock.ExpectGet("facility:3").SetVal(string(raw))

	got, err := NewCachedReader(source, client, time.Minute, nopLogger{}).GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, types.NewMoney(500), got.HourlyRate)
	assert.Equal(t, 0, got.Rating.Breakdown[5])
	source.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCachedReader_RedisDownFallsBackToSource(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	source := &sourceMock{}
	ctx := context.Background()
	f := sampleFacility()
	raw, err := json.Marshal(f)
	require.NoError(t, err)

	redisMock.ExpectGet("facility:3").SetErr(errors.New("connection refused"))
	source.On("GetByID", ctx, int64(3)).Return(f, nil)
	redisMock.ExpectSet("facility:3", raw, time.Minute).SetErr(errors.New("connection refused"))

	got, err := NewCachedReader(source, client, time.Minute, nopLogger{}).GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
}

func TestCachedReader_Invalidate(t *testing.T) {
	client, redisMock := redismock.NewClientMock()

	redisMock.ExpectDel("facility:3").SetVal(1)
	require.NoError(t, NewCachedReader(&sourceMock{}, client, time.Minute, nopLogger{}).Invalidate(context.Background(), 3))

	redisMock.ExpectDel("facility:3").SetErr(errors.New("timeout"))
	err := NewCachedReader(&sourceMock{}, client, time.Minute, nopLogger{}).Invalidate(context.Background(), 3)
	assert.ErrorIs(t, err, ErrInvalidate)
}
