package entity

import (
	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "initiated"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusExpired   PaymentStatus = "expired"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Terminal reports whether the processor will never change this status again.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusExpired || s == PaymentStatusFailed
}

// PaymentSession tracks one external checkout session for a booking.
type PaymentSession struct {
	Base
	SessionID   string        `db:"session_id"` // processor's id, external reference
	BookingID   uuid.UUID     `db:"booking_id"`
	UserID      uuid.UUID     `db:"user_id"`
	Amount      float64       `db:"amount"`
	Currency    string        `db:"currency"`
	Status      PaymentStatus `db:"status"`
	CheckoutURL string        `db:"checkout_url"`
}
