package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cinetix/internal/data/entity"
	"cinetix/internal/ledger"
)

func TestHubDeliversDeltasInOrder(t *testing.T) {
	hub := NewHub(zap.NewNop())
	showID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := hub.Subscribe(ctx, showID)

	hub.SeatsChanged(ledger.Delta{ShowID: showID, SeatNumbers: []string{"A1", "A2"}, Status: entity.SeatHeld})
	hub.SeatsChanged(ledger.Delta{ShowID: showID, SeatNumbers: []string{"A1", "A2"}, Status: entity.SeatBooked})

	first := <-ch
	assert.Equal(t, entity.SeatHeld, first.Status)
	assert.Equal(t, []string{"A1", "A2"}, first.SeatNumbers)

	second := <-ch
	assert.Equal(t, entity.SeatBooked, second.Status)
}

func TestHubScopesDeltasToShow(t *testing.T) {
	hub := NewHub(zap.NewNop())
	showA, showB := uuid.New(), uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	chA := hub.Subscribe(ctx, showA)
	chB := hub.Subscribe(ctx, showB)

	hub.SeatsChanged(ledger.Delta{ShowID: showA, SeatNumbers: []string{"B1"}, Status: entity.SeatHeld})

	select {
	case delta := <-chA:
		assert.Equal(t, showA, delta.ShowID)
	case <-time.After(time.Second):
		t.Fatal("show A subscriber received nothing")
	}

	select {
	case delta := <-chB:
		t.Fatalf("show B subscriber received delta for %s", delta.ShowID)
	default:
	}
}

func TestHubClosesChannelOnCancel(t *testing.T) {
	hub := NewHub(zap.NewNop())
	showID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	ch := hub.Subscribe(ctx, showID)
	require.Equal(t, 1, hub.Subscribers(showID))

	cancel()
	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	assert.Eventually(t, func() bool {
		return hub.Subscribers(showID) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewHub(zap.NewNop())
	showID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := hub.Subscribe(ctx, showID)

	// Overfill the buffer without draining. Publish must never block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.SeatsChanged(ledger.Delta{ShowID: showID, SeatNumbers: []string{"C1"}, Status: entity.SeatHeld})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	assert.Len(t, ch, subscriberBuffer)
}
