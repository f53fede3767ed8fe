package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHoldExpired is returned by Confirm when the booking's hold already
// expired or was released. Distinct from NotFound so callers can tell "the
// seats were reassigned" apart from "no such booking".
var ErrHoldExpired = errors.New("hold expired or released")

// SeatConflictError is returned by TryHold when one or more requested seats
// are not available. The hold fails as a unit; Seats lists the blocking
// subset so the caller can re-select.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats not available: %s", strings.Join(e.Seats, ", "))
}
