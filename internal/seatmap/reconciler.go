// Package seatmap maintains a client-side view of a show's seat map by
// merging the server snapshot, the live delta stream, and the user's local
// selection. It backs the seat picker; the seat ledger remains the only
// authority, so everything here is advisory until a hold succeeds.
package seatmap

import (
	"sort"

	"cinetix/internal/data/entity"
	"cinetix/internal/ledger"
)

// View is a reconciled seat map for one show.
type View struct {
	price float64

	status    map[string]entity.SeatStatus
	selected  map[string]struct{}
	conflicts []string
}

// NewView builds a view from a snapshot. Seats absent from the snapshot
// are available.
func NewView(snapshot map[string]entity.SeatStatus, price float64) *View {
	status := make(map[string]entity.SeatStatus, len(snapshot))
	for seatNumber, seatStatus := range snapshot {
		status[seatNumber] = seatStatus
	}
	return &View{
		price:    price,
		status:   status,
		selected: make(map[string]struct{}),
	}
}

// ApplyDelta merges one broadcast delta. A seat that leaves available
// while selected is deselected and recorded as a conflict for the UI to
// surface. Deltas are idempotent, so replays after a reconnect are safe.
func (v *View) ApplyDelta(delta ledger.Delta) {
	for _, seatNumber := range delta.SeatNumbers {
		if delta.Status == entity.SeatAvailable {
			delete(v.status, seatNumber)
			continue
		}
		v.status[seatNumber] = delta.Status
		if _, ok := v.selected[seatNumber]; ok {
			delete(v.selected, seatNumber)
			v.conflicts = append(v.conflicts, seatNumber)
		}
	}
}

// ResetSnapshot replaces the status layer with a fresh snapshot, keeping
// whatever part of the selection is still available. Used after a stream
// gap when deltas may have been missed.
func (v *View) ResetSnapshot(snapshot map[string]entity.SeatStatus) {
	v.status = make(map[string]entity.SeatStatus, len(snapshot))
	for seatNumber, seatStatus := range snapshot {
		v.status[seatNumber] = seatStatus
	}
	for seatNumber := range v.selected {
		if _, taken := v.status[seatNumber]; taken {
			delete(v.selected, seatNumber)
			v.conflicts = append(v.conflicts, seatNumber)
		}
	}
}

// Toggle flips the local selection of a seat. Selecting a seat that is
// held or booked is a no-op and reports false.
func (v *View) Toggle(seatNumber string) bool {
	if _, ok := v.selected[seatNumber]; ok {
		delete(v.selected, seatNumber)
		return true
	}
	if _, taken := v.status[seatNumber]; taken {
		return false
	}
	v.selected[seatNumber] = struct{}{}
	return true
}

// Status reports the effective state of one seat, folding the local
// selection on top of the server state.
func (v *View) Status(seatNumber string) entity.SeatStatus {
	if seatStatus, ok := v.status[seatNumber]; ok {
		return seatStatus
	}
	return entity.SeatAvailable
}

// Selected returns the current selection in seat-number order.
func (v *View) Selected() []string {
	seats := make([]string, 0, len(v.selected))
	for seatNumber := range v.selected {
		seats = append(seats, seatNumber)
	}
	sort.Strings(seats)
	return seats
}

// IsSelected reports whether the seat is part of the local selection.
func (v *View) IsSelected(seatNumber string) bool {
	_, ok := v.selected[seatNumber]
	return ok
}

// Total is the price of the current selection.
func (v *View) Total() float64 {
	return float64(len(v.selected)) * v.price
}

// TakeConflicts drains the seats that were deselected because someone
// else took them. Each conflict is reported once.
func (v *View) TakeConflicts() []string {
	conflicts := v.conflicts
	v.conflicts = nil
	sort.Strings(conflicts)
	return conflicts
}
