package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cinetix/internal/data/entity"
)

// memStore is an in-memory SeatStore with the same contract as the
// postgres repository: only held and booked seats have entries.
type memStore struct {
	mu    sync.Mutex
	seats map[uuid.UUID]map[string]entity.SeatState
}

func newMemStore() *memStore {
	return &memStore{seats: make(map[uuid.UUID]map[string]entity.SeatState)}
}

func (s *memStore) show(showID uuid.UUID) map[string]entity.SeatState {
	if _, ok := s.seats[showID]; !ok {
		s.seats[showID] = make(map[string]entity.SeatState)
	}
	return s.seats[showID]
}

func (s *memStore) StatesForShow(_ context.Context, showID uuid.UUID) ([]entity.SeatState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var states []entity.SeatState
	for _, state := range s.show(showID) {
		states = append(states, state)
	}
	return states, nil
}

func (s *memStore) StatesForSeats(_ context.Context, showID uuid.UUID, seatNumbers []string) ([]entity.SeatState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var states []entity.SeatState
	for _, seatNumber := range seatNumbers {
		if state, ok := s.show(showID)[seatNumber]; ok {
			states = append(states, state)
		}
	}
	return states, nil
}

func (s *memStore) CreateHolds(_ context.Context, states []entity.SeatState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, state := range states {
		s.show(state.ShowID)[state.SeatNumber] = state
	}
	return nil
}

func (s *memStore) MarkBooked(_ context.Context, showID, heldBy uuid.UUID, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var booked []string
	for seatNumber, state := range s.show(showID) {
		if state.Status != entity.SeatHeld || state.HeldBy != heldBy || state.HoldExpired(now) {
			continue
		}
		state.Status = entity.SeatBooked
		state.HoldExpiresAt = nil
		state.UpdatedAt = now
		s.show(showID)[seatNumber] = state
		booked = append(booked, seatNumber)
	}
	return booked, nil
}

func (s *memStore) release(showID, heldBy uuid.UUID, status entity.SeatStatus) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var released []string
	for seatNumber, state := range s.show(showID) {
		if state.Status != status || state.HeldBy != heldBy {
			continue
		}
		delete(s.show(showID), seatNumber)
		released = append(released, seatNumber)
	}
	return released
}

func (s *memStore) ReleaseHolds(_ context.Context, showID, heldBy uuid.UUID) ([]string, error) {
	return s.release(showID, heldBy, entity.SeatHeld), nil
}

func (s *memStore) ReleaseBooked(_ context.Context, showID, heldBy uuid.UUID) ([]string, error) {
	return s.release(showID, heldBy, entity.SeatBooked), nil
}

func (s *memStore) ExpiredHolds(_ context.Context, now time.Time) ([]entity.SeatState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []entity.SeatState
	for _, seats := range s.seats {
		for _, state := range seats {
			if state.HoldExpired(now) {
				expired = append(expired, state)
			}
		}
	}
	return expired, nil
}

// recordSink captures emitted deltas in order.
type recordSink struct {
	mu     sync.Mutex
	deltas []Delta
}

func (s *recordSink) SeatsChanged(delta Delta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deltas = append(s.deltas, delta)
}

func (s *recordSink) all() []Delta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Delta(nil), s.deltas...)
}

func newTestLedger(t *testing.T, ttl time.Duration) (*Ledger, *memStore, *recordSink) {
	t.Helper()
	store := newMemStore()
	sink := &recordSink{}
	return New(store, ttl, zap.NewNop(), sink), store, sink
}

func TestTryHoldIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	l, _, sink := newTestLedger(t, time.Minute)
	showID := uuid.New()

	first := uuid.New()
	require.NoError(t, l.TryHold(ctx, showID, []string{"A1", "A2"}, first))

	second := uuid.New()
	err := l.TryHold(ctx, showID, []string{"A2", "A3"}, second)
	var conflict *SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"A2"}, conflict.Seats)

	// A3 must not have been held as a side effect of the failed request.
	snapshot, err := l.Snapshot(ctx, showID)
	require.NoError(t, err)
	assert.NotContains(t, snapshot, "A3")
	assert.Equal(t, entity.SeatHeld, snapshot["A1"])
	assert.Equal(t, entity.SeatHeld, snapshot["A2"])

	deltas := sink.all()
	require.Len(t, deltas, 1)
	assert.Equal(t, []string{"A1", "A2"}, deltas[0].SeatNumbers)
	assert.Equal(t, entity.SeatHeld, deltas[0].Status)
}

func TestConfirmPromotesHeldSeats(t *testing.T) {
	ctx := context.Background()
	l, _, sink := newTestLedger(t, time.Minute)
	showID := uuid.New()
	bookingID := uuid.New()

	require.NoError(t, l.TryHold(ctx, showID, []string{"B1", "B2"}, bookingID))

	seats, err := l.Confirm(ctx, showID, bookingID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B1", "B2"}, seats)

	snapshot, err := l.Snapshot(ctx, showID)
	require.NoError(t, err)
	assert.Equal(t, entity.SeatBooked, snapshot["B1"])
	assert.Equal(t, entity.SeatBooked, snapshot["B2"])

	deltas := sink.all()
	require.Len(t, deltas, 2)
	assert.Equal(t, entity.SeatBooked, deltas[1].Status)
}

func TestConfirmFailsAfterHoldExpires(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t, time.Minute)
	showID := uuid.New()
	bookingID := uuid.New()

	base := time.Now()
	l.now = func() time.Time { return base }
	require.NoError(t, l.TryHold(ctx, showID, []string{"C1"}, bookingID))

	l.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err := l.Confirm(ctx, showID, bookingID)
	require.ErrorIs(t, err, ErrHoldExpired)

	// The expired hold counts as available for everyone else.
	snapshot, err := l.Snapshot(ctx, showID)
	require.NoError(t, err)
	assert.NotContains(t, snapshot, "C1")

	other := uuid.New()
	require.NoError(t, l.TryHold(ctx, showID, []string{"C1"}, other))
}

func TestReleaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	l, _, sink := newTestLedger(t, time.Minute)
	showID := uuid.New()
	bookingID := uuid.New()

	require.NoError(t, l.TryHold(ctx, showID, []string{"D1", "D2"}, bookingID))
	_, err := l.Confirm(ctx, showID, bookingID)
	require.NoError(t, err)

	require.NoError(t, l.Release(ctx, showID, bookingID))
	require.NoError(t, l.Release(ctx, showID, bookingID))

	snapshot, err := l.Snapshot(ctx, showID)
	require.NoError(t, err)
	assert.Empty(t, snapshot)

	// hold, book, one release. The retry must not emit a second delta.
	deltas := sink.all()
	require.Len(t, deltas, 3)
	assert.Equal(t, entity.SeatAvailable, deltas[2].Status)
	assert.Equal(t, []string{"D1", "D2"}, deltas[2].SeatNumbers)
}

func TestSweepEmitsOneDeltaPerExpiredBooking(t *testing.T) {
	ctx := context.Background()
	l, _, sink := newTestLedger(t, time.Minute)
	showID := uuid.New()

	base := time.Now()
	l.now = func() time.Time { return base }

	first, second, live := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, l.TryHold(ctx, showID, []string{"E1", "E2"}, first))
	require.NoError(t, l.TryHold(ctx, showID, []string{"E3"}, second))

	l.now = func() time.Time { return base.Add(90 * time.Second) }
	require.NoError(t, l.TryHold(ctx, showID, []string{"E4"}, live))

	l.now = func() time.Time { return base.Add(2 * time.Minute) }
	require.NoError(t, l.SweepExpired(ctx))

	var released []Delta
	for _, delta := range sink.all() {
		if delta.Status == entity.SeatAvailable {
			released = append(released, delta)
		}
	}
	require.Len(t, released, 2)

	snapshot, err := l.Snapshot(ctx, showID)
	require.NoError(t, err)
	assert.Equal(t, map[string]entity.SeatStatus{"E4": entity.SeatHeld}, snapshot)
}

func TestConcurrentHoldsNeverOverlap(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t, time.Minute)
	showID := uuid.New()

	seatPool := make([]string, 12)
	for i := range seatPool {
		seatPool[i] = fmt.Sprintf("A%d", i+1)
	}

	type result struct {
		bookingID uuid.UUID
		seats     []string
	}
	results := make(chan result, 50)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(n)))
			want := make([]string, 0, 3)
			for _, idx := range rng.Perm(len(seatPool))[:3] {
				want = append(want, seatPool[idx])
			}
			bookingID := uuid.New()
			if err := l.TryHold(ctx, showID, want, bookingID); err == nil {
				results <- result{bookingID: bookingID, seats: want}
			} else {
				var conflict *SeatConflictError
				assert.True(t, errors.As(err, &conflict))
			}
		}(i)
	}
	wg.Wait()
	close(results)

	owners := make(map[string]uuid.UUID)
	for res := range results {
		for _, seatNumber := range res.seats {
			prev, taken := owners[seatNumber]
			assert.False(t, taken, "seat %s won by both %s and %s", seatNumber, prev, res.bookingID)
			owners[seatNumber] = res.bookingID
		}
	}
	assert.NotEmpty(t, owners)
}
