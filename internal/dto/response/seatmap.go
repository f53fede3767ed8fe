package response

import "cinetix/internal/data/entity"

type SeatResponse struct {
	SeatNumber string `json:"seat_number"`
	Status     string `json:"status"`
}

// SeatMapResponse is the full seat grid for one show, row by row in
// layout order.
type SeatMapResponse struct {
	ShowID    string           `json:"show_id"`
	Price     float64          `json:"price"`
	Rows      [][]SeatResponse `json:"rows"`
	Available int              `json:"available"`
}

// SeatUpdateEvent is one server-sent event on the seat stream. All listed
// seats changed to Status in a single transition.
type SeatUpdateEvent struct {
	Type   string   `json:"type"`
	ShowID string   `json:"show_id"`
	Seats  []string `json:"seats"`
	Status string   `json:"status"`
}

func NewSeatUpdateEvent(showID string, seats []string, status entity.SeatStatus) SeatUpdateEvent {
	return SeatUpdateEvent{
		Type:   "seat_update",
		ShowID: showID,
		Seats:  seats,
		Status: string(status),
	}
}
