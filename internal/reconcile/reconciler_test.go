package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cinetix/internal/data/entity"
	"cinetix/internal/ledger"
	"cinetix/internal/payment"
	"cinetix/internal/queue"
)

// pollResult is one scripted answer from the fake provider.
type pollResult struct {
	status entity.PaymentStatus
	err    error
}

type fakeGateway struct {
	script []pollResult
	calls  int
}

func (g *fakeGateway) CreateCheckoutSession(context.Context, payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	panic("not used")
}

func (g *fakeGateway) GetStatus(context.Context, string) (entity.PaymentStatus, error) {
	idx := g.calls
	if idx >= len(g.script) {
		idx = len(g.script) - 1
	}
	g.calls++
	res := g.script[idx]
	return res.status, res.err
}

type fakeSeats struct {
	confirmSeats []string
	confirmErr   error
	confirmed    int
	released     int
}

func (s *fakeSeats) Confirm(context.Context, uuid.UUID, uuid.UUID) ([]string, error) {
	s.confirmed++
	return s.confirmSeats, s.confirmErr
}

func (s *fakeSeats) Release(context.Context, uuid.UUID, uuid.UUID) error {
	s.released++
	return nil
}

type fakeBookings struct {
	statuses []entity.BookingStatus
	stale    []*entity.Booking
}

func (b *fakeBookings) UpdateStatus(_ context.Context, _ uuid.UUID, status entity.BookingStatus) error {
	b.statuses = append(b.statuses, status)
	return nil
}

func (b *fakeBookings) FindStalePending(context.Context, time.Time) ([]*entity.Booking, error) {
	return b.stale, nil
}

type fakeSessions struct {
	sessions map[string]*entity.PaymentSession
	statuses []entity.PaymentStatus
}

func (s *fakeSessions) FindBySessionID(_ context.Context, sessionID string) (*entity.PaymentSession, error) {
	return s.sessions[sessionID], nil
}

func (s *fakeSessions) UpdateStatus(_ context.Context, _ string, status entity.PaymentStatus) error {
	s.statuses = append(s.statuses, status)
	return nil
}

type fixture struct {
	gateway  *fakeGateway
	seats    *fakeSeats
	bookings *fakeBookings
	sessions *fakeSessions
	rec      *Reconciler
	booking  *entity.Booking
	session  *entity.PaymentSession
}

func newFixture(t *testing.T, script ...pollResult) *fixture {
	t.Helper()

	f := &fixture{
		gateway:  &fakeGateway{script: script},
		seats:    &fakeSeats{confirmSeats: []string{"A1", "A2"}},
		bookings: &fakeBookings{},
		sessions: &fakeSessions{},
	}
	// url "" makes the publisher a no-op.
	events := queue.NewPublisher("", zap.NewNop())
	f.rec = newReconciler(f, events)

	f.booking = &entity.Booking{
		Base:        entity.Base{ID: uuid.New()},
		OrderID:     "BOOK-20260831-120000-0001",
		UserID:      uuid.New(),
		ShowID:      uuid.New(),
		Seats:       []string{"A1", "A2"},
		TotalAmount: 24,
		Status:      entity.BookingStatusPendingPayment,
	}
	f.session = &entity.PaymentSession{
		Base:      entity.Base{ID: uuid.New()},
		SessionID: "stub_" + uuid.NewString(),
		BookingID: f.booking.ID,
		Status:    entity.PaymentStatusInitiated,
	}
	f.booking.PaymentSessionID = &f.session.SessionID
	f.sessions.sessions = map[string]*entity.PaymentSession{f.session.SessionID: f.session}
	return f
}

func newReconciler(f *fixture, events *queue.Publisher) *Reconciler {
	return New(f.gateway, f.seats, f.bookings, f.sessions, events, 5, time.Millisecond, zap.NewNop())
}

func TestResolveConfirmsOnPaid(t *testing.T) {
	f := newFixture(t,
		pollResult{status: entity.PaymentStatusInitiated},
		pollResult{status: entity.PaymentStatusInitiated},
		pollResult{status: entity.PaymentStatusPaid},
	)

	status, err := f.rec.Resolve(context.Background(), f.booking, f.session)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, status)
	assert.Equal(t, 3, f.gateway.calls)
	assert.Equal(t, 1, f.seats.confirmed)
	assert.Equal(t, []entity.BookingStatus{entity.BookingStatusConfirmed}, f.bookings.statuses)
	assert.Equal(t, []entity.PaymentStatus{entity.PaymentStatusPaid}, f.sessions.statuses)
}

func TestResolveStopsAfterAttemptBudget(t *testing.T) {
	f := newFixture(t, pollResult{status: entity.PaymentStatusInitiated})

	status, err := f.rec.Resolve(context.Background(), f.booking, f.session)
	require.ErrorIs(t, err, ErrReconcileTimeout)

	// Budget exhaustion mutates nothing: a later webhook can still settle.
	assert.Equal(t, entity.BookingStatusPendingPayment, status)
	assert.Equal(t, 5, f.gateway.calls)
	assert.Empty(t, f.bookings.statuses)
	assert.Empty(t, f.sessions.statuses)
	assert.Zero(t, f.seats.confirmed)
	assert.Zero(t, f.seats.released)
}

func TestResolveTransportErrorsConsumeAttempts(t *testing.T) {
	dialErr := errors.New("connection refused")
	f := newFixture(t,
		pollResult{err: dialErr},
		pollResult{err: dialErr},
		pollResult{status: entity.PaymentStatusPaid},
	)

	status, err := f.rec.Resolve(context.Background(), f.booking, f.session)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, status)
	assert.Equal(t, 3, f.gateway.calls)
}

func TestResolveExpiresBookingOnFailedPayment(t *testing.T) {
	f := newFixture(t, pollResult{status: entity.PaymentStatusFailed})

	status, err := f.rec.Resolve(context.Background(), f.booking, f.session)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusExpired, status)
	assert.Equal(t, 1, f.seats.released)
	assert.Equal(t, []entity.BookingStatus{entity.BookingStatusExpired}, f.bookings.statuses)
	assert.Equal(t, []entity.PaymentStatus{entity.PaymentStatusFailed}, f.sessions.statuses)
}

func TestResolveDetectsCaptureConflict(t *testing.T) {
	f := newFixture(t, pollResult{status: entity.PaymentStatusPaid})
	f.seats.confirmSeats = nil
	f.seats.confirmErr = ledger.ErrHoldExpired

	status, err := f.rec.Resolve(context.Background(), f.booking, f.session)
	require.ErrorIs(t, err, ErrPaymentCaptureConflict)
	assert.Equal(t, entity.BookingStatusCancelled, status)

	// The payment stays recorded as paid so the refund trail is intact.
	assert.Equal(t, []entity.PaymentStatus{entity.PaymentStatusPaid}, f.sessions.statuses)
	assert.Equal(t, []entity.BookingStatus{entity.BookingStatusCancelled}, f.bookings.statuses)
}

func TestApplyStatusIsIdempotent(t *testing.T) {
	f := newFixture(t)

	status, err := f.rec.ApplyStatus(context.Background(), f.booking, f.session, entity.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, status)

	status, err = f.rec.ApplyStatus(context.Background(), f.booking, f.session, entity.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, status)
	assert.Equal(t, 1, f.seats.confirmed)
	assert.Equal(t, []entity.BookingStatus{entity.BookingStatusConfirmed}, f.bookings.statuses)
}

func TestApplyStatusExpiresOnFailedWebhook(t *testing.T) {
	f := newFixture(t)

	status, err := f.rec.ApplyStatus(context.Background(), f.booking, f.session, entity.PaymentStatusFailed)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusExpired, status)
	assert.Equal(t, 1, f.seats.released)
}

func TestSweepStaleExpiresPendingBookings(t *testing.T) {
	f := newFixture(t, pollResult{status: entity.PaymentStatusExpired})
	f.bookings.stale = []*entity.Booking{f.booking}

	f.rec.sweepStale(context.Background(), 10*time.Minute)

	assert.Equal(t, 1, f.gateway.calls)
	assert.Equal(t, 1, f.seats.released)
	assert.Equal(t, []entity.BookingStatus{entity.BookingStatusExpired}, f.bookings.statuses)
	assert.Equal(t, []entity.PaymentStatus{entity.PaymentStatusExpired}, f.sessions.statuses)
}

func TestSweepStaleEscalatesCapturedPayment(t *testing.T) {
	f := newFixture(t, pollResult{status: entity.PaymentStatusPaid})
	f.seats.confirmErr = ledger.ErrHoldExpired
	f.bookings.stale = []*entity.Booking{f.booking}

	f.rec.sweepStale(context.Background(), 10*time.Minute)

	// A payment captured while nobody was polling becomes a capture
	// conflict, never a silent expiry.
	assert.Equal(t, 1, f.gateway.calls)
	assert.Equal(t, []entity.BookingStatus{entity.BookingStatusCancelled}, f.bookings.statuses)
	assert.Equal(t, []entity.PaymentStatus{entity.PaymentStatusPaid}, f.sessions.statuses)
	assert.Zero(t, f.seats.released)
}

func TestSweepStaleLeavesIndeterminateBookingsPending(t *testing.T) {
	f := newFixture(t, pollResult{status: entity.PaymentStatusInitiated})
	f.bookings.stale = []*entity.Booking{f.booking}

	f.rec.sweepStale(context.Background(), 10*time.Minute)
	assert.Equal(t, 1, f.gateway.calls)
	assert.Empty(t, f.bookings.statuses)
	assert.Zero(t, f.seats.released)

	// A transport error is no more definitive than a pending answer.
	f = newFixture(t, pollResult{err: errors.New("gateway 503")})
	f.bookings.stale = []*entity.Booking{f.booking}

	f.rec.sweepStale(context.Background(), 10*time.Minute)
	assert.Empty(t, f.bookings.statuses)
	assert.Empty(t, f.sessions.statuses)
	assert.Zero(t, f.seats.released)
}
