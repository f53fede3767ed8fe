package response

import (
	"time"

	"cinetix/internal/data/entity"
)

type BookingResponse struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	ShowID      string    `json:"show_id"`
	Seats       []string  `json:"seats"`
	TotalAmount float64   `json:"total_amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`

	MovieTitle  string `json:"movie_title,omitempty"`
	TheaterName string `json:"theater_name,omitempty"`
	ShowDate    string `json:"show_date,omitempty"`
	StartTime   string `json:"start_time,omitempty"`
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:          booking.ID.String(),
		OrderID:     booking.OrderID,
		ShowID:      booking.ShowID.String(),
		Seats:       booking.Seats,
		TotalAmount: booking.TotalAmount,
		Status:      string(booking.Status),
		CreatedAt:   booking.CreatedAt,
	}
}

type CheckoutResponse struct {
	Booking     BookingResponse `json:"booking"`
	SessionID   string          `json:"session_id"`
	CheckoutURL string          `json:"checkout_url"`
	ExpiresAt   time.Time       `json:"expires_at,omitzero"`
}

type PaymentStatusResponse struct {
	SessionID     string `json:"session_id"`
	PaymentStatus string `json:"payment_status"`
	BookingID     string `json:"booking_id"`
	BookingStatus string `json:"booking_status"`
}
