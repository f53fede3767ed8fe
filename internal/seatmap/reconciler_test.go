package seatmap

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"cinetix/internal/data/entity"
	"cinetix/internal/ledger"
)

func TestToggleSkipsTakenSeats(t *testing.T) {
	view := NewView(map[string]entity.SeatStatus{
		"A1": entity.SeatBooked,
		"A2": entity.SeatHeld,
	}, 12)

	assert.False(t, view.Toggle("A1"))
	assert.False(t, view.Toggle("A2"))
	assert.True(t, view.Toggle("A3"))
	assert.Equal(t, []string{"A3"}, view.Selected())

	// Toggling again deselects.
	assert.True(t, view.Toggle("A3"))
	assert.Empty(t, view.Selected())
}

func TestTotalFollowsSelection(t *testing.T) {
	view := NewView(nil, 12)
	view.Toggle("A1")
	view.Toggle("A2")
	assert.Equal(t, 24.0, view.Total())

	view.Toggle("A1")
	assert.Equal(t, 12.0, view.Total())
}

func TestDeltaDeselectsConflictingSeat(t *testing.T) {
	view := NewView(nil, 12)
	view.Toggle("B1")
	view.Toggle("B2")

	showID := uuid.New()
	view.ApplyDelta(ledger.Delta{ShowID: showID, SeatNumbers: []string{"B2"}, Status: entity.SeatHeld})

	assert.Equal(t, []string{"B1"}, view.Selected())
	assert.Equal(t, entity.SeatHeld, view.Status("B2"))
	assert.Equal(t, []string{"B2"}, view.TakeConflicts())
	assert.Empty(t, view.TakeConflicts())
}

func TestDeltaReplayIsIdempotent(t *testing.T) {
	view := NewView(nil, 12)
	view.Toggle("C1")

	showID := uuid.New()
	delta := ledger.Delta{ShowID: showID, SeatNumbers: []string{"C1"}, Status: entity.SeatBooked}
	view.ApplyDelta(delta)
	view.ApplyDelta(delta)

	assert.Equal(t, entity.SeatBooked, view.Status("C1"))
	assert.Equal(t, []string{"C1"}, view.TakeConflicts())
}

func TestAvailableDeltaFreesSeat(t *testing.T) {
	view := NewView(map[string]entity.SeatStatus{"D1": entity.SeatHeld}, 12)
	assert.False(t, view.Toggle("D1"))

	showID := uuid.New()
	view.ApplyDelta(ledger.Delta{ShowID: showID, SeatNumbers: []string{"D1"}, Status: entity.SeatAvailable})

	assert.Equal(t, entity.SeatAvailable, view.Status("D1"))
	assert.True(t, view.Toggle("D1"))
}

func TestResetSnapshotKeepsSurvivingSelection(t *testing.T) {
	view := NewView(nil, 12)
	view.Toggle("E1")
	view.Toggle("E2")

	view.ResetSnapshot(map[string]entity.SeatStatus{"E2": entity.SeatBooked})

	assert.Equal(t, []string{"E1"}, view.Selected())
	assert.Equal(t, []string{"E2"}, view.TakeConflicts())
}
