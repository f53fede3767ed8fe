package seatmap

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
	"cinetix/internal/ledger"
)

// replayStore is a single-show in-memory SeatStore, just enough ledger
// backing to drive a real mutation sequence.
type replayStore struct {
	mu    sync.Mutex
	seats map[string]entity.SeatState
}

func (s *replayStore) StatesForShow(context.Context, uuid.UUID) ([]entity.SeatState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	states := make([]entity.SeatState, 0, len(s.seats))
	for _, state := range s.seats {
		states = append(states, state)
	}
	return states, nil
}

func (s *replayStore) StatesForSeats(_ context.Context, _ uuid.UUID, seatNumbers []string) ([]entity.SeatState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var states []entity.SeatState
	for _, seatNumber := range seatNumbers {
		if state, ok := s.seats[seatNumber]; ok {
			states = append(states, state)
		}
	}
	return states, nil
}

func (s *replayStore) CreateHolds(_ context.Context, states []entity.SeatState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, state := range states {
		s.seats[state.SeatNumber] = state
	}
	return nil
}

func (s *replayStore) MarkBooked(_ context.Context, _ uuid.UUID, heldBy uuid.UUID, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var booked []string
	for seatNumber, state := range s.seats {
		if state.Status != entity.SeatHeld || state.HeldBy != heldBy || state.HoldExpired(now) {
			continue
		}
		state.Status = entity.SeatBooked
		state.HoldExpiresAt = nil
		s.seats[seatNumber] = state
		booked = append(booked, seatNumber)
	}
	return booked, nil
}

func (s *replayStore) ReleaseHolds(_ context.Context, _ uuid.UUID, heldBy uuid.UUID) ([]string, error) {
	return s.release(heldBy, entity.SeatHeld), nil
}

func (s *replayStore) ReleaseBooked(_ context.Context, _ uuid.UUID, heldBy uuid.UUID) ([]string, error) {
	return s.release(heldBy, entity.SeatBooked), nil
}

func (s *replayStore) release(heldBy uuid.UUID, status entity.SeatStatus) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var released []string
	for seatNumber, state := range s.seats {
		if state.Status != status || state.HeldBy != heldBy {
			continue
		}
		delete(s.seats, seatNumber)
		released = append(released, seatNumber)
	}
	return released
}

func (s *replayStore) ExpiredHolds(context.Context, time.Time) ([]entity.SeatState, error) {
	return nil, nil
}

type replaySink struct {
	mu     sync.Mutex
	deltas []ledger.Delta
}

func (s *replaySink) SeatsChanged(delta ledger.Delta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deltas = append(s.deltas, delta)
}

// A view fed every delta of a mutation sequence, in commit order, must
// land on the same seat statuses as a fresh snapshot taken at the end.
func TestDeltaReplayMatchesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := &replayStore{seats: make(map[string]entity.SeatState)}
	sink := &replaySink{}
	l := ledger.New(store, time.Minute, zap.NewNop(), sink)

	showID := uuid.New()
	first, second := uuid.New(), uuid.New()

	require.NoError(t, l.TryHold(ctx, showID, []string{"B1"}, first))
	require.NoError(t, l.TryHold(ctx, showID, []string{"B2"}, second))
	_, err := l.Confirm(ctx, showID, second)
	require.NoError(t, err)
	require.NoError(t, l.Release(ctx, showID, first))

	view := NewView(nil, 12)
	for _, delta := range sink.deltas {
		view.ApplyDelta(delta)
	}

	snapshot, err := l.Snapshot(ctx, showID)
	require.NoError(t, err)
	for _, seatNumber := range []string{"B1", "B2", "B3"} {
		want := entity.SeatAvailable
		if status, ok := snapshot[seatNumber]; ok {
			want = status
		}
		assert.Equal(t, want, view.Status(seatNumber), seatNumber)
	}
	assert.Equal(t, entity.SeatAvailable, view.Status("B1"))
	assert.Equal(t, entity.SeatBooked, view.Status("B2"))
}
