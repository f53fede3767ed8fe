package queue

// Queue names. Both are durable; consumers treat messages as at-least-once.
const (
	BookingConfirmedQueue = "booking.confirmed"
	PaymentConflictQueue  = "payment.capture_conflict"
)

// BookingConfirmedEvent is published after a booking reaches confirmed.
type BookingConfirmedEvent struct {
	BookingID   string   `json:"booking_id"`
	OrderID     string   `json:"order_id"`
	UserID      string   `json:"user_id"`
	ShowID      string   `json:"show_id"`
	MovieTitle  string   `json:"movie_title"`
	Seats       []string `json:"seats"`
	TotalAmount float64  `json:"total_amount"`
	ConfirmedAt string   `json:"confirmed_at"`
}

// PaymentConflictEvent records a payment captured for a hold that had
// already expired. These need manual follow-up (refund or re-seat).
type PaymentConflictEvent struct {
	BookingID  string  `json:"booking_id"`
	OrderID    string  `json:"order_id"`
	UserID     string  `json:"user_id"`
	ShowID     string  `json:"show_id"`
	SessionID  string  `json:"session_id"`
	Amount     float64 `json:"amount"`
	DetectedAt string  `json:"detected_at"`
}
