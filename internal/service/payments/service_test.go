package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/internal/infra/blobstore"
	"github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-FacilityBooking/internal/integrations/events"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/payments/models"
	"github.com/m04kA/SMC-FacilityBooking/pkg/clock"
	"github.com/m04kA/SMC-FacilityBooking/pkg/logger"
	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

const ownerID = int64(3)

var now = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db      *memory.DB
	dir     string
	clock   *clock.Fixed
	service *Service
	seeded  int
}

func newFixture(t *testing.T, wrap func(*memory.ReservationRepository) ReservationRepository) *fixture {
	t.Helper()

	db := memory.New()
	var repo ReservationRepository = db.Reservations()
	if wrap != nil {
		repo = wrap(db.Reservations())
	}

	dir := t.TempDir()
	blobs, err := blobstore.NewFileStore(dir, 1024)
	require.NoError(t, err)

	clk := clock.NewFixed(now)
	svc := NewService(repo, blobs, db, events.NoopPublisher{}, nil, logger.Nop()).WithTimeProvider(clk)

	return &fixture{db: db, dir: dir, clock: clk, service: svc}
}

func (f *fixture) seed(t *testing.T, status domain.ReservationStatus, payment domain.PaymentStatus, dueIn time.Duration) *domain.Reservation {
	t.Helper()
	start := now.Add(48*time.Hour + time.Duration(f.seeded)*3*time.Hour)
	f.seeded++
	res, err := f.db.Reservations().Create(context.Background(), &domain.Reservation{
		FacilityID:    1,
		UserID:        ownerID,
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		BookingType:   domain.BookingHourly,
		TotalAmount:   types.NewMoney(500),
		Status:        status,
		PaymentStatus: payment,
		PaymentDueAt:  now.Add(dueIn),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) get(t *testing.T, id int64) *domain.Reservation {
	t.Helper()
	res, err := f.db.Reservations().GetByID(context.Background(), id)
	require.NoError(t, err)
	return res
}

func (f *fixture) blobCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	return len(entries)
}

func TestService_GetGracePeriodStatus(t *testing.T) {
	f := newFixture(t, nil)
	res := f.seed(t, domain.StatusPending, domain.PaymentPending, 30*time.Minute)

	status, err := f.service.GetGracePeriodStatus(context.Background(), res.ID, ownerID)
	require.NoError(t, err)
	assert.True(t, status.Eligible)
	assert.Equal(t, now.Add(30*time.Minute), status.ExpiresAt)
	assert.Equal(t, 30*time.Minute, status.TimeRemaining)
	assert.Equal(t, int64(1800), status.TimeRemainingSeconds)

	f.clock.Advance(31 * time.Minute)
	status, err = f.service.GetGracePeriodStatus(context.Background(), res.ID, ownerID)
	require.NoError(t, err)
	assert.False(t, status.Eligible)
	assert.Zero(t, status.TimeRemaining)

	_, err = f.service.GetGracePeriodStatus(context.Background(), res.ID, ownerID+1)
	assert.ErrorIs(t, err, ErrNotOwner)
}

type readOnlyCountingTx struct {
	*memory.DB
	readOnly int
}

func (tx *readOnlyCountingTx) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.readOnly++
	return tx.DB.DoReadOnly(ctx, fn)
}

func TestService_GetGracePeriodStatus_ReadOnlyTx(t *testing.T) {
	f := newFixture(t, nil)
	res := f.seed(t, domain.StatusPending, domain.PaymentPending, time.Hour)

	tx := &readOnlyCountingTx{DB: f.db}
	blobs, err := blobstore.NewFileStore(t.TempDir(), 1024)
	require.NoError(t, err)
	svc := NewService(f.db.Reservations(), blobs, tx, events.NoopPublisher{}, nil, logger.Nop()).WithTimeProvider(f.clock)

	_, err = svc.GetGracePeriodStatus(context.Background(), res.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, 1, tx.readOnly)
}

func TestService_SubmitPaymentSlip(t *testing.T) {
	f := newFixture(t, nil)
	res := f.seed(t, domain.StatusPending, domain.PaymentPending, time.Hour)

	result, err := f.service.SubmitPaymentSlip(context.Background(), &models.SubmitSlipRequest{
		ReservationID: res.ID,
		UserID:        ownerID,
		Filename:      "slip.PNG",
		Content:       strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.PaymentUploaded), result.PaymentStatus)
	require.NotNil(t, result.PaymentSlipRef)
	assert.True(t, strings.HasSuffix(*result.PaymentSlipRef, ".png"))

	stored := f.get(t, res.ID)
	assert.Equal(t, domain.PaymentUploaded, stored.PaymentStatus)
	assert.Equal(t, result.PaymentSlipRef, stored.PaymentSlipRef)
	assert.Equal(t, 1, f.blobCount(t))
}

func TestService_SubmitPaymentSlip_AfterDeadline(t *testing.T) {
	f := newFixture(t, nil)
	res := f.seed(t, domain.StatusPending, domain.PaymentPending, time.Hour)
	f.clock.Advance(time.Hour)

	_, err := f.service.SubmitPaymentSlip(context.Background(), &models.SubmitSlipRequest{
		ReservationID: res.ID,
		UserID:        ownerID,
		Filename:      "slip.pdf",
		Content:       strings.NewReader("late"),
	})
	assert.ErrorIs(t, err, domain.ErrPaymentWindowClosed)

	stored := f.get(t, res.ID)
	assert.Nil(t, stored.PaymentSlipRef)
	assert.Equal(t, domain.PaymentPending, stored.PaymentStatus)
	assert.Zero(t, f.blobCount(t))
}

func TestService_SubmitPaymentSlip_AfterSweep(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	res := f.seed(t, domain.StatusPending, domain.PaymentPending, time.Hour)
	f.clock.Advance(2 * time.Hour)

	count, err := f.service.ExpireUnpaid(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	_, err = f.service.SubmitPaymentSlip(ctx, &models.SubmitSlipRequest{
		ReservationID: res.ID,
		UserID:        ownerID,
		Filename:      "slip.pdf",
		Content:       strings.NewReader("late"),
	})
	assert.ErrorIs(t, err, domain.ErrPaymentWindowClosed)
	assert.ErrorIs(t, err, ErrWindowClosed)
	assert.Zero(t, f.blobCount(t))

	_, err = f.service.UploadPaymentSlip(ctx, res.ID, ownerID, "slip/x")
	assert.ErrorIs(t, err, ErrWindowClosed)
	assert.Equal(t, domain.StatusExpired, f.get(t, res.ID).Status)
}

func TestService_UploadPaymentSlip_Rejections(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	uploaded := f.seed(t, domain.StatusPending, domain.PaymentUploaded, time.Hour)
	_, err := f.service.UploadPaymentSlip(ctx, uploaded.ID, ownerID, "slip/x")
	assert.ErrorIs(t, err, domain.ErrPaymentWindowClosed)

	cancelled := f.seed(t, domain.StatusCancelled, domain.PaymentPending, time.Hour)
	_, err = f.service.UploadPaymentSlip(ctx, cancelled.ID, ownerID, "slip/x")
	assert.ErrorIs(t, err, ErrReservationInactive)

	expired := f.seed(t, domain.StatusExpired, domain.PaymentPending, time.Hour)
	_, err = f.service.UploadPaymentSlip(ctx, expired.ID, ownerID, "slip/x")
	assert.ErrorIs(t, err, ErrWindowClosed)

	_, err = f.service.UploadPaymentSlip(ctx, 404, ownerID, "slip/x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type failingAttachRepo struct {
	*memory.ReservationRepository
}

func (failingAttachRepo) AttachPaymentSlip(context.Context, int64, string, time.Time) error {
	return errors.New("connection reset")
}

func TestService_SubmitPaymentSlip_RemovesBlobOnFailure(t *testing.T) {
	f := newFixture(t, func(repo *memory.ReservationRepository) ReservationRepository {
		return failingAttachRepo{repo}
	})
	res := f.seed(t, domain.StatusPending, domain.PaymentPending, time.Hour)

	_, err := f.service.SubmitPaymentSlip(context.Background(), &models.SubmitSlipRequest{
		ReservationID: res.ID,
		UserID:        ownerID,
		Filename:      "slip.jpg",
		Content:       strings.NewReader("jpg-bytes"),
	})
	assert.ErrorIs(t, err, domain.ErrPersistenceFailure)
	assert.Zero(t, f.blobCount(t))
}

func TestService_SubmitPaymentSlip_TooLarge(t *testing.T) {
	f := newFixture(t, nil)
	res := f.seed(t, domain.StatusPending, domain.PaymentPending, time.Hour)

	_, err := f.service.SubmitPaymentSlip(context.Background(), &models.SubmitSlipRequest{
		ReservationID: res.ID,
		UserID:        ownerID,
		Filename:      "slip.png",
		Content:       strings.NewReader(strings.Repeat("x", 2048)),
	})
	assert.ErrorIs(t, err, ErrSlipTooLarge)
	assert.Zero(t, f.blobCount(t))
}

func TestService_VerifyPayment(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res := f.seed(t, domain.StatusPending, domain.PaymentPending, time.Hour)
	_, err := f.service.VerifyPayment(ctx, res.ID, 1)
	assert.ErrorIs(t, err, ErrSlipNotUploaded)

	_, err = f.service.UploadPaymentSlip(ctx, res.ID, ownerID, "slip/ref")
	require.NoError(t, err)

	result, err := f.service.VerifyPayment(ctx, res.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), result.Status)
	assert.Equal(t, string(domain.PaymentVerified), result.PaymentStatus)

	stored := f.get(t, res.ID)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
	assert.Equal(t, domain.PaymentVerified, stored.PaymentStatus)

	history := f.db.Reservations().History(ctx, res.ID)
	require.Len(t, history, 1)
	assert.Equal(t, domain.HistoryVerify, history[0].Action)
}

func TestService_ExpireUnpaid_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	unpaid := f.seed(t, domain.StatusPending, domain.PaymentPending, 10*time.Minute)
	uploaded := f.seed(t, domain.StatusPending, domain.PaymentUploaded, 10*time.Minute)
	later := f.seed(t, domain.StatusPending, domain.PaymentPending, 2*time.Hour)
	confirmed := f.seed(t, domain.StatusConfirmed, domain.PaymentVerified, 10*time.Minute)

	f.clock.Advance(10 * time.Minute)

	count, err := f.service.ExpireUnpaid(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = f.service.ExpireUnpaid(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.Equal(t, domain.StatusExpired, f.get(t, unpaid.ID).Status)
	assert.Equal(t, domain.StatusExpired, f.get(t, uploaded.ID).Status)
	assert.Equal(t, domain.StatusPending, f.get(t, later.ID).Status)
	assert.Equal(t, domain.StatusConfirmed, f.get(t, confirmed.ID).Status)
	assert.Len(t, f.db.Reservations().History(ctx, unpaid.ID), 1)
}

func TestService_VerifyPayment_LogsCarryTraceID(t *testing.T) {
	f := newFixture(t, nil)
	res := f.seed(t, domain.StatusPending, domain.PaymentUploaded, time.Hour)

	var buf bytes.Buffer
	log, err := logger.NewWithWriter(&buf, "info")
	require.NoError(t, err)
	blobs, err := blobstore.NewFileStore(t.TempDir(), 1024)
	require.NoError(t, err)
	svc := NewService(f.db.Reservations(), blobs, f.db, events.NoopPublisher{}, nil, log).WithTimeProvider(f.clock)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	_, err = svc.VerifyPayment(ctx, res.ID, 1)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"], line)
	}
}
