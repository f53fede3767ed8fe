package entity

import (
	"time"

	"github.com/google/uuid"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatHeld      SeatStatus = "held"
	SeatBooked    SeatStatus = "booked"
)

// SeatState is one non-available seat of a show. Availability is the absence
// of a row; only the ledger writes these.
type SeatState struct {
	ShowID        uuid.UUID  `db:"show_id"`
	SeatNumber    string     `db:"seat_number"`
	Status        SeatStatus `db:"status"`
	HeldBy        uuid.UUID  `db:"held_by"` // booking id owning the hold or the booked seat
	HoldExpiresAt *time.Time `db:"hold_expires_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// HoldExpired reports whether this row is a hold whose TTL has lapsed.
func (s SeatState) HoldExpired(now time.Time) bool {
	return s.Status == SeatHeld && s.HoldExpiresAt != nil && !s.HoldExpiresAt.After(now)
}
