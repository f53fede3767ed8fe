package entity

import (
	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "pending_payment"
	BookingStatusConfirmed      BookingStatus = "confirmed"
	BookingStatusCancelled      BookingStatus = "cancelled"
	BookingStatusExpired        BookingStatus = "expired"
)

type Booking struct {
	Base
	OrderID          string        `db:"order_id"`
	UserID           uuid.UUID     `db:"user_id"`
	ShowID           uuid.UUID     `db:"show_id"`
	Seats            []string      `db:"seats"`
	TotalAmount      float64       `db:"total_amount"`
	Status           BookingStatus `db:"status"`
	PaymentSessionID *string       `db:"payment_session_id"`
}
