package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cinetix/internal/data/entity"
	"cinetix/internal/data/repository"
	"cinetix/internal/dto/request"
	"cinetix/internal/ledger"
	"cinetix/internal/payment"
	"cinetix/internal/queue"
	"cinetix/internal/reconcile"
)

// In-memory stand-ins for the postgres repositories, enough to run the
// whole hold -> pay -> confirm -> cancel pipeline in process.

type fakeUsers struct{ users map[uuid.UUID]*entity.User }

func (f *fakeUsers) Create(_ context.Context, user *entity.User) error {
	f.users[user.ID] = user
	return nil
}
func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return f.users[id], nil
}
func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

type fakeMovies struct{ movies map[uuid.UUID]*entity.Movie }

func (f *fakeMovies) Create(_ context.Context, movie *entity.Movie) error {
	f.movies[movie.ID] = movie
	return nil
}
func (f *fakeMovies) FindByID(_ context.Context, id uuid.UUID) (*entity.Movie, error) {
	return f.movies[id], nil
}
func (f *fakeMovies) FindAll(context.Context) ([]*entity.Movie, error) { return nil, nil }
func (f *fakeMovies) Update(_ context.Context, movie *entity.Movie) error {
	f.movies[movie.ID] = movie
	return nil
}
func (f *fakeMovies) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.movies, id)
	return nil
}
func (f *fakeMovies) Count(context.Context) (int64, error) { return int64(len(f.movies)), nil }

type fakeTheaters struct{ theaters map[uuid.UUID]*entity.Theater }

func (f *fakeTheaters) Create(_ context.Context, theater *entity.Theater) error {
	f.theaters[theater.ID] = theater
	return nil
}
func (f *fakeTheaters) FindByID(_ context.Context, id uuid.UUID) (*entity.Theater, error) {
	return f.theaters[id], nil
}
func (f *fakeTheaters) FindAll(context.Context) ([]*entity.Theater, error) { return nil, nil }
func (f *fakeTheaters) Update(_ context.Context, theater *entity.Theater) error {
	f.theaters[theater.ID] = theater
	return nil
}
func (f *fakeTheaters) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.theaters, id)
	return nil
}
func (f *fakeTheaters) Count(context.Context) (int64, error) { return int64(len(f.theaters)), nil }

type fakeShows struct{ shows map[uuid.UUID]*entity.Show }

func (f *fakeShows) Create(_ context.Context, show *entity.Show) error {
	f.shows[show.ID] = show
	return nil
}
func (f *fakeShows) FindByID(_ context.Context, id uuid.UUID) (*entity.Show, error) {
	return f.shows[id], nil
}
func (f *fakeShows) FindAll(context.Context, repository.ShowFilter) ([]*entity.Show, error) {
	return nil, nil
}
func (f *fakeShows) Update(_ context.Context, show *entity.Show) error {
	f.shows[show.ID] = show
	return nil
}
func (f *fakeShows) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.shows, id)
	return nil
}
func (f *fakeShows) Count(context.Context) (int64, error) { return int64(len(f.shows)), nil }

type fakeBookings struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking
}

func (f *fakeBookings) Create(_ context.Context, booking *entity.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *booking
	f.bookings[booking.ID] = &clone
	return nil
}
func (f *fakeBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking, ok := f.bookings[id]; ok {
		clone := *booking
		return &clone, nil
	}
	return nil, nil
}
func (f *fakeBookings) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Booking
	for _, booking := range f.bookings {
		if booking.UserID == userID {
			clone := *booking
			out = append(out, &clone)
		}
	}
	return out, nil
}
func (f *fakeBookings) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, booking := range f.bookings {
		if booking.UserID == userID {
			n++
		}
	}
	return n, nil
}
func (f *fakeBookings) FindAll(context.Context) ([]*entity.Booking, error) { return nil, nil }
func (f *fakeBookings) UpdateStatus(_ context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking, ok := f.bookings[bookingID]; ok {
		booking.Status = status
	}
	return nil
}
func (f *fakeBookings) FindStalePending(context.Context, time.Time) ([]*entity.Booking, error) {
	return nil, nil
}
func (f *fakeBookings) CountByStatus(_ context.Context, status entity.BookingStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, booking := range f.bookings {
		if booking.Status == status {
			n++
		}
	}
	return n, nil
}
func (f *fakeBookings) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.bookings)), nil
}
func (f *fakeBookings) RevenueByStatus(_ context.Context, status entity.BookingStatus) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum float64
	for _, booking := range f.bookings {
		if booking.Status == status {
			sum += booking.TotalAmount
		}
	}
	return sum, nil
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*entity.PaymentSession
}

func (f *fakeSessions) Create(_ context.Context, session *entity.PaymentSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.SessionID] = session
	return nil
}
func (f *fakeSessions) FindBySessionID(_ context.Context, sessionID string) (*entity.PaymentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if session, ok := f.sessions[sessionID]; ok {
		clone := *session
		return &clone, nil
	}
	return nil, nil
}
func (f *fakeSessions) UpdateStatus(_ context.Context, sessionID string, status entity.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if session, ok := f.sessions[sessionID]; ok {
		session.Status = status
	}
	return nil
}

// seatTable is an in-memory ledger.SeatStore.
type seatTable struct {
	mu    sync.Mutex
	seats map[uuid.UUID]map[string]entity.SeatState
}

func newSeatTable() *seatTable {
	return &seatTable{seats: make(map[uuid.UUID]map[string]entity.SeatState)}
}

func (t *seatTable) show(showID uuid.UUID) map[string]entity.SeatState {
	if _, ok := t.seats[showID]; !ok {
		t.seats[showID] = make(map[string]entity.SeatState)
	}
	return t.seats[showID]
}

func (t *seatTable) StatesForShow(_ context.Context, showID uuid.UUID) ([]entity.SeatState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var states []entity.SeatState
	for _, state := range t.show(showID) {
		states = append(states, state)
	}
	return states, nil
}

func (t *seatTable) StatesForSeats(_ context.Context, showID uuid.UUID, seatNumbers []string) ([]entity.SeatState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var states []entity.SeatState
	for _, seatNumber := range seatNumbers {
		if state, ok := t.show(showID)[seatNumber]; ok {
			states = append(states, state)
		}
	}
	return states, nil
}

func (t *seatTable) CreateHolds(_ context.Context, states []entity.SeatState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, state := range states {
		t.show(state.ShowID)[state.SeatNumber] = state
	}
	return nil
}

func (t *seatTable) MarkBooked(_ context.Context, showID, heldBy uuid.UUID, now time.Time) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var booked []string
	for seatNumber, state := range t.show(showID) {
		if state.Status != entity.SeatHeld || state.HeldBy != heldBy || state.HoldExpired(now) {
			continue
		}
		state.Status = entity.SeatBooked
		state.HoldExpiresAt = nil
		t.show(showID)[seatNumber] = state
		booked = append(booked, seatNumber)
	}
	return booked, nil
}

func (t *seatTable) remove(showID, heldBy uuid.UUID, status entity.SeatStatus) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var released []string
	for seatNumber, state := range t.show(showID) {
		if state.Status == status && state.HeldBy == heldBy {
			delete(t.show(showID), seatNumber)
			released = append(released, seatNumber)
		}
	}
	return released
}

func (t *seatTable) ReleaseHolds(_ context.Context, showID, heldBy uuid.UUID) ([]string, error) {
	return t.remove(showID, heldBy, entity.SeatHeld), nil
}

func (t *seatTable) ReleaseBooked(_ context.Context, showID, heldBy uuid.UUID) ([]string, error) {
	return t.remove(showID, heldBy, entity.SeatBooked), nil
}

func (t *seatTable) ExpiredHolds(_ context.Context, now time.Time) ([]entity.SeatState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var expired []entity.SeatState
	for _, seats := range t.seats {
		for _, state := range seats {
			if state.HoldExpired(now) {
				expired = append(expired, state)
			}
		}
	}
	return expired, nil
}

type bookingFixture struct {
	repo     *repository.Repository
	seats    *ledger.Ledger
	gateway  *payment.StubGateway
	bookings BookingService
	payments PaymentService

	show  *entity.Show
	userA *entity.User
	userB *entity.User
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	log := zap.NewNop()

	repo := &repository.Repository{
		User:           &fakeUsers{users: make(map[uuid.UUID]*entity.User)},
		Movie:          &fakeMovies{movies: make(map[uuid.UUID]*entity.Movie)},
		Theater:        &fakeTheaters{theaters: make(map[uuid.UUID]*entity.Theater)},
		Show:           &fakeShows{shows: make(map[uuid.UUID]*entity.Show)},
		Booking:        &fakeBookings{bookings: make(map[uuid.UUID]*entity.Booking)},
		PaymentSession: &fakeSessions{sessions: make(map[string]*entity.PaymentSession)},
	}

	seats := ledger.New(newSeatTable(), 2*time.Minute, log)
	gateway := payment.NewStubGateway()
	events := queue.NewPublisher("", log)
	reconciler := reconcile.New(gateway, seats, repo.Booking, repo.PaymentSession, events, 5, time.Millisecond, log)

	f := &bookingFixture{
		repo:     repo,
		seats:    seats,
		gateway:  gateway,
		bookings: NewBookingService(repo, seats, gateway, log),
		payments: NewPaymentService(repo, reconciler, log),
	}

	ctx := context.Background()
	movie := &entity.Movie{Base: entity.NewBase(), Title: "Arrival", Genre: "Sci-Fi", Duration: 116, ReleaseDate: "2016-11-11"}
	require.NoError(t, repo.Movie.Create(ctx, movie))

	theater := &entity.Theater{
		Base: entity.NewBase(), Name: "Downtown", Location: "Main St",
		Screens: []entity.Screen{{
			ScreenNumber: 1,
			SeatLayout:   entity.SeatLayout{Rows: []string{"A", "B"}, SeatsPerRow: 4},
		}},
	}
	require.NoError(t, repo.Theater.Create(ctx, theater))

	f.show = &entity.Show{
		Base: entity.NewBase(), MovieID: movie.ID, TheaterID: theater.ID,
		ScreenNumber: 1, ShowDate: "2026-09-01", StartTime: "19:30", EndTime: "21:30", Price: 12,
	}
	require.NoError(t, repo.Show.Create(ctx, f.show))

	f.userA = &entity.User{Base: entity.NewBase(), Email: "a@example.com", Name: "Ann", Role: "user"}
	f.userB = &entity.User{Base: entity.NewBase(), Email: "b@example.com", Name: "Ben", Role: "user"}
	require.NoError(t, repo.User.Create(ctx, f.userA))
	require.NoError(t, repo.User.Create(ctx, f.userB))
	return f
}

func TestBookingPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)

	// Hold A1+A2 at 12.00 each.
	checkout, err := f.bookings.CreateBooking(ctx, f.userA.ID, &request.BookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"A1", "A2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 24.0, checkout.Booking.TotalAmount)
	assert.Equal(t, string(entity.BookingStatusPendingPayment), checkout.Booking.Status)
	assert.NotEmpty(t, checkout.CheckoutURL)

	// A second client racing for A2 loses and learns which seat blocked it.
	_, err = f.bookings.CreateBooking(ctx, f.userB.ID, &request.BookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"A2"},
	})
	var conflict *ledger.SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"A2"}, conflict.Seats)

	// Payment settles, seats become booked, booking confirmed.
	f.gateway.MarkStatus(checkout.SessionID, entity.PaymentStatusPaid)
	status, err := f.payments.CheckStatus(ctx, f.userA.ID, "user", checkout.SessionID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusConfirmed), status.BookingStatus)
	assert.Equal(t, string(entity.PaymentStatusPaid), status.PaymentStatus)

	snapshot, err := f.seats.Snapshot(ctx, f.show.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SeatBooked, snapshot["A1"])
	assert.Equal(t, entity.SeatBooked, snapshot["A2"])

	// Cancel returns the seats to the pool.
	cancelled, err := f.bookings.CancelBooking(ctx, f.userA.ID, checkout.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusCancelled), cancelled.Status)

	snapshot, err = f.seats.Snapshot(ctx, f.show.ID)
	require.NoError(t, err)
	assert.Empty(t, snapshot)

	// The loser can now take A2.
	_, err = f.bookings.CreateBooking(ctx, f.userB.ID, &request.BookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"A2"},
	})
	require.NoError(t, err)
}

func TestGetCheckoutReturnsOpenSession(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)

	checkout, err := f.bookings.CreateBooking(ctx, f.userA.ID, &request.BookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"B1"},
	})
	require.NoError(t, err)

	// The owner can re-fetch the session while payment is pending.
	again, err := f.bookings.GetCheckout(ctx, f.userA.ID, checkout.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, checkout.SessionID, again.SessionID)
	assert.Equal(t, checkout.CheckoutURL, again.CheckoutURL)

	// Another user cannot.
	_, err = f.bookings.GetCheckout(ctx, f.userB.ID, checkout.Booking.ID)
	require.ErrorIs(t, err, ErrForbidden)

	// A settled booking no longer has an open session.
	f.gateway.MarkStatus(checkout.SessionID, entity.PaymentStatusPaid)
	_, err = f.payments.CheckStatus(ctx, f.userA.ID, "user", checkout.SessionID)
	require.NoError(t, err)
	_, err = f.bookings.GetCheckout(ctx, f.userA.ID, checkout.Booking.ID)
	require.ErrorIs(t, err, ErrPaymentSettled)
}

func TestCreateBookingRejectsUnknownSeat(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)

	_, err := f.bookings.CreateBooking(ctx, f.userA.ID, &request.BookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"A1", "Z9"},
	})
	require.ErrorIs(t, err, ErrUnknownSeats)

	// The failed request must not have held the valid seat.
	snapshot, err := f.seats.Snapshot(ctx, f.show.ID)
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}

func TestFailedPaymentExpiresBookingAndFreesSeats(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)

	checkout, err := f.bookings.CreateBooking(ctx, f.userA.ID, &request.BookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"B1"},
	})
	require.NoError(t, err)

	f.gateway.MarkStatus(checkout.SessionID, entity.PaymentStatusFailed)
	status, err := f.payments.CheckStatus(ctx, f.userA.ID, "user", checkout.SessionID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusExpired), status.BookingStatus)

	snapshot, err := f.seats.Snapshot(ctx, f.show.ID)
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}

func TestPendingPaymentTimesOutWithoutMutation(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)

	checkout, err := f.bookings.CreateBooking(ctx, f.userA.ID, &request.BookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"B2"},
	})
	require.NoError(t, err)

	// Stub session stays initiated, so the polling budget runs out.
	status, err := f.payments.CheckStatus(ctx, f.userA.ID, "user", checkout.SessionID)
	require.ErrorIs(t, err, reconcile.ErrReconcileTimeout)
	assert.Equal(t, string(entity.BookingStatusPendingPayment), status.BookingStatus)

	// Seats stay held for the original booking.
	snapshot, err := f.seats.Snapshot(ctx, f.show.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SeatHeld, snapshot["B2"])
}

func TestWebhookConfirmsBooking(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)

	checkout, err := f.bookings.CreateBooking(ctx, f.userA.ID, &request.BookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"A3"},
	})
	require.NoError(t, err)

	err = f.payments.HandleWebhook(ctx, &request.PaymentWebhookRequest{
		SessionID: checkout.SessionID,
		Status:    "paid",
	})
	require.NoError(t, err)

	booking, err := f.bookings.GetBooking(ctx, f.userA.ID, "user", checkout.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusConfirmed), booking.Status)
}

func TestBookingAccessControl(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)

	checkout, err := f.bookings.CreateBooking(ctx, f.userA.ID, &request.BookingRequest{
		ShowID: f.show.ID.String(),
		Seats:  []string{"A4"},
	})
	require.NoError(t, err)

	_, err = f.bookings.GetBooking(ctx, f.userB.ID, "user", checkout.Booking.ID)
	require.ErrorIs(t, err, ErrForbidden)

	// Admins can read any booking.
	_, err = f.bookings.GetBooking(ctx, f.userB.ID, "admin", checkout.Booking.ID)
	require.NoError(t, err)

	// Pending bookings cannot be cancelled by anyone.
	_, err = f.bookings.CancelBooking(ctx, f.userA.ID, checkout.Booking.ID)
	require.ErrorIs(t, err, ErrNotCancellable)
}
