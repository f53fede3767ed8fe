package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cinetix/internal/data/entity"
)

// Delta is one coalesced seat-status change for a show. All listed seats
// moved to Status in a single ledger commit.
type Delta struct {
	ShowID      uuid.UUID
	SeatNumbers []string
	Status      entity.SeatStatus
}

// EventSink receives committed deltas. Emission happens while the show lock
// is still held, so sinks must never block.
type EventSink interface {
	SeatsChanged(delta Delta)
}

// SeatStore is the durable backing for seat state. Only held and booked
// seats have rows; an available seat is the absence of a row.
type SeatStore interface {
	StatesForShow(ctx context.Context, showID uuid.UUID) ([]entity.SeatState, error)
	StatesForSeats(ctx context.Context, showID uuid.UUID, seatNumbers []string) ([]entity.SeatState, error)
	CreateHolds(ctx context.Context, states []entity.SeatState) error
	MarkBooked(ctx context.Context, showID, heldBy uuid.UUID, now time.Time) ([]string, error)
	ReleaseHolds(ctx context.Context, showID, heldBy uuid.UUID) ([]string, error)
	ReleaseBooked(ctx context.Context, showID, heldBy uuid.UUID) ([]string, error)
	ExpiredHolds(ctx context.Context, now time.Time) ([]entity.SeatState, error)
}

// Ledger is the single authority for seat state transitions. Every mutation
// for a show runs under that show's mutex, so holds are all-or-nothing and
// two bookings can never end up holding the same seat.
type Ledger struct {
	store SeatStore
	sinks []EventSink
	log   *zap.Logger
	ttl   time.Duration
	now   func() time.Time

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func New(store SeatStore, holdTTL time.Duration, log *zap.Logger, sinks ...EventSink) *Ledger {
	return &Ledger{
		store: store,
		sinks: sinks,
		log:   log.With(zap.String("component", "seat_ledger")),
		ttl:   holdTTL,
		now:   time.Now,
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (l *Ledger) showLock(showID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[showID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[showID] = lock
	}
	return lock
}

func (l *Ledger) emit(delta Delta) {
	for _, sink := range l.sinks {
		sink.SeatsChanged(delta)
	}
}

// Snapshot returns the current status of every non-available seat in the
// show. Holds whose TTL already passed are reported as available, i.e.
// omitted, even if the sweeper has not reclaimed them yet.
func (l *Ledger) Snapshot(ctx context.Context, showID uuid.UUID) (map[string]entity.SeatStatus, error) {
	lock := l.showLock(showID)
	lock.Lock()
	defer lock.Unlock()

	states, err := l.store.StatesForShow(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("snapshot show %s: %w", showID, err)
	}

	now := l.now()
	snapshot := make(map[string]entity.SeatStatus, len(states))
	for _, state := range states {
		if state.HoldExpired(now) {
			continue
		}
		snapshot[state.SeatNumber] = state.Status
	}
	return snapshot, nil
}

// TryHold places a hold on every requested seat or on none of them. On
// conflict it returns a SeatConflictError listing the seats that blocked
// the hold. A hold that previously expired counts as available and is
// overwritten in place.
func (l *Ledger) TryHold(ctx context.Context, showID uuid.UUID, seatNumbers []string, bookingID uuid.UUID) error {
	if len(seatNumbers) == 0 {
		return fmt.Errorf("hold for booking %s: no seats requested", bookingID)
	}

	lock := l.showLock(showID)
	lock.Lock()
	defer lock.Unlock()

	states, err := l.store.StatesForSeats(ctx, showID, seatNumbers)
	if err != nil {
		return fmt.Errorf("hold for booking %s: %w", bookingID, err)
	}

	now := l.now()
	var conflicts []string
	for _, state := range states {
		if state.HoldExpired(now) {
			continue
		}
		conflicts = append(conflicts, state.SeatNumber)
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return &SeatConflictError{Seats: conflicts}
	}

	expiresAt := now.Add(l.ttl)
	holds := make([]entity.SeatState, 0, len(seatNumbers))
	for _, seatNumber := range seatNumbers {
		holds = append(holds, entity.SeatState{
			ShowID:        showID,
			SeatNumber:    seatNumber,
			Status:        entity.SeatHeld,
			HeldBy:        bookingID,
			HoldExpiresAt: &expiresAt,
			UpdatedAt:     now,
		})
	}
	if err := l.store.CreateHolds(ctx, holds); err != nil {
		return fmt.Errorf("hold for booking %s: %w", bookingID, err)
	}

	l.log.Debug("seats held",
		zap.String("show_id", showID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.Strings("seats", seatNumbers))
	l.emit(Delta{ShowID: showID, SeatNumbers: seatNumbers, Status: entity.SeatHeld})
	return nil
}

// Confirm promotes the booking's held seats to booked. It fails with
// ErrHoldExpired when the hold is gone, either expired and reclaimed or
// never placed; in that case nothing is mutated.
func (l *Ledger) Confirm(ctx context.Context, showID, bookingID uuid.UUID) ([]string, error) {
	lock := l.showLock(showID)
	lock.Lock()
	defer lock.Unlock()

	seats, err := l.store.MarkBooked(ctx, showID, bookingID, l.now())
	if err != nil {
		return nil, fmt.Errorf("confirm booking %s: %w", bookingID, err)
	}
	if len(seats) == 0 {
		return nil, ErrHoldExpired
	}

	sort.Strings(seats)
	l.log.Info("seats booked",
		zap.String("show_id", showID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.Strings("seats", seats))
	l.emit(Delta{ShowID: showID, SeatNumbers: seats, Status: entity.SeatBooked})
	return seats, nil
}

// Release returns all of the booking's seats, held or booked, to available.
// Releasing a booking that holds nothing is a no-op, so retries are safe.
func (l *Ledger) Release(ctx context.Context, showID, bookingID uuid.UUID) error {
	lock := l.showLock(showID)
	lock.Lock()
	defer lock.Unlock()

	held, err := l.store.ReleaseHolds(ctx, showID, bookingID)
	if err != nil {
		return fmt.Errorf("release booking %s: %w", bookingID, err)
	}
	booked, err := l.store.ReleaseBooked(ctx, showID, bookingID)
	if err != nil {
		return fmt.Errorf("release booking %s: %w", bookingID, err)
	}

	released := append(held, booked...)
	if len(released) == 0 {
		return nil
	}

	sort.Strings(released)
	l.log.Info("seats released",
		zap.String("show_id", showID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.Strings("seats", released))
	l.emit(Delta{ShowID: showID, SeatNumbers: released, Status: entity.SeatAvailable})
	return nil
}

// SweepExpired reclaims every hold whose TTL passed, one delta per expired
// booking. A hold confirmed between the scan and the release is left alone
// because ReleaseHolds only deletes rows still in held status.
func (l *Ledger) SweepExpired(ctx context.Context) error {
	expired, err := l.store.ExpiredHolds(ctx, l.now())
	if err != nil {
		return fmt.Errorf("sweep expired holds: %w", err)
	}
	if len(expired) == 0 {
		return nil
	}

	type holdKey struct {
		showID    uuid.UUID
		bookingID uuid.UUID
	}
	groups := make(map[holdKey]struct{})
	order := make([]holdKey, 0)
	for _, state := range expired {
		key := holdKey{showID: state.ShowID, bookingID: state.HeldBy}
		if _, ok := groups[key]; ok {
			continue
		}
		groups[key] = struct{}{}
		order = append(order, key)
	}

	for _, key := range order {
		if err := l.releaseExpired(ctx, key.showID, key.bookingID); err != nil {
			l.log.Error("failed to reclaim expired hold",
				zap.String("show_id", key.showID.String()),
				zap.String("booking_id", key.bookingID.String()),
				zap.Error(err))
		}
	}
	return nil
}

func (l *Ledger) releaseExpired(ctx context.Context, showID, bookingID uuid.UUID) error {
	lock := l.showLock(showID)
	lock.Lock()
	defer lock.Unlock()

	seats, err := l.store.ReleaseHolds(ctx, showID, bookingID)
	if err != nil {
		return err
	}
	if len(seats) == 0 {
		return nil
	}

	sort.Strings(seats)
	l.log.Info("expired hold reclaimed",
		zap.String("show_id", showID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.Strings("seats", seats))
	l.emit(Delta{ShowID: showID, SeatNumbers: seats, Status: entity.SeatAvailable})
	return nil
}

// RunSweeper reclaims expired holds on a fixed interval until ctx is done.
func (l *Ledger) RunSweeper(ctx context.Context, interval time.Duration) {
	l.log.Info("hold sweeper started", zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.log.Info("hold sweeper stopped")
			return
		case <-ticker.C:
			if err := l.SweepExpired(ctx); err != nil {
				l.log.Error("hold sweep failed", zap.Error(err))
			}
		}
	}
}
