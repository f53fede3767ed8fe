package usecase

import "errors"

// Sentinel errors the handlers map to HTTP statuses with errors.Is. Seat
// conflicts carry their own type, ledger.SeatConflictError, so the blocking
// seats reach the client.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("not allowed")
	ErrUnknownSeats       = errors.New("seat not in screen layout")
	ErrNotCancellable     = errors.New("booking cannot be cancelled")
	ErrPaymentSettled     = errors.New("booking payment already settled")
	ErrScreenInUse        = errors.New("screen has scheduled shows")
)
