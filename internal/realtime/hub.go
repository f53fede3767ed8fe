package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cinetix/internal/ledger"
)

const subscriberBuffer = 32

// Hub fans seat deltas out to the subscribers of each show. Delivery is
// best effort: a subscriber whose buffer is full misses the delta and is
// expected to recover by fetching a fresh snapshot.
type Hub struct {
	log *zap.Logger

	mu    sync.RWMutex
	shows map[uuid.UUID]map[chan ledger.Delta]struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:   log.With(zap.String("component", "realtime_hub")),
		shows: make(map[uuid.UUID]map[chan ledger.Delta]struct{}),
	}
}

// Subscribe registers a listener for one show. The returned channel carries
// deltas in commit order and is closed when ctx is done.
func (h *Hub) Subscribe(ctx context.Context, showID uuid.UUID) <-chan ledger.Delta {
	ch := make(chan ledger.Delta, subscriberBuffer)

	h.mu.Lock()
	if _, ok := h.shows[showID]; !ok {
		h.shows[showID] = make(map[chan ledger.Delta]struct{})
	}
	h.shows[showID][ch] = struct{}{}
	count := len(h.shows[showID])
	h.mu.Unlock()

	h.log.Debug("subscriber joined",
		zap.String("show_id", showID.String()),
		zap.Int("subscribers", count))

	go func() {
		<-ctx.Done()
		h.unsubscribe(showID, ch)
	}()
	return ch
}

func (h *Hub) unsubscribe(showID uuid.UUID, ch chan ledger.Delta) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.shows[showID]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(h.shows, showID)
	}
}

// SeatsChanged implements ledger.EventSink. It runs inside the ledger's
// show lock, so sends never block; a full subscriber drops the delta.
func (h *Hub) SeatsChanged(delta ledger.Delta) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.shows[delta.ShowID] {
		select {
		case ch <- delta:
		default:
			h.log.Warn("subscriber buffer full, delta dropped",
				zap.String("show_id", delta.ShowID.String()),
				zap.Strings("seats", delta.SeatNumbers))
		}
	}
}

// Subscribers reports the listener count for a show.
func (h *Hub) Subscribers(showID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.shows[showID])
}
