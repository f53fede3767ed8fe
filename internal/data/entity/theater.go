package entity

import "strconv"

// SeatLayout describes the seat grid of one screen. Seat numbers are derived
// positions: row letter + 1-based column, e.g. "A1".
type SeatLayout struct {
	Rows        []string `json:"rows"`
	SeatsPerRow int      `json:"seats_per_row"`
}

// SeatNumbers expands the layout into the ordered seat grid, row by row.
func (l SeatLayout) SeatNumbers() [][]string {
	grid := make([][]string, 0, len(l.Rows))
	for _, row := range l.Rows {
		rowSeats := make([]string, 0, l.SeatsPerRow)
		for i := 1; i <= l.SeatsPerRow; i++ {
			rowSeats = append(rowSeats, row+strconv.Itoa(i))
		}
		grid = append(grid, rowSeats)
	}
	return grid
}

// Contains reports whether seatNumber is a valid position in this layout.
func (l SeatLayout) Contains(seatNumber string) bool {
	for _, row := range l.Rows {
		if len(seatNumber) <= len(row) || seatNumber[:len(row)] != row {
			continue
		}
		col, err := strconv.Atoi(seatNumber[len(row):])
		if err != nil {
			continue
		}
		if col >= 1 && col <= l.SeatsPerRow {
			return true
		}
	}
	return false
}

type Screen struct {
	ScreenNumber int        `json:"screen_number"`
	SeatLayout   SeatLayout `json:"seat_layout"`
}

type Theater struct {
	Base
	Name     string   `db:"name"`
	Location string   `db:"location"`
	Screens  []Screen `db:"screens"` // stored as jsonb
}

// Screen returns the screen with the given number, or nil.
func (t *Theater) Screen(number int) *Screen {
	for i := range t.Screens {
		if t.Screens[i].ScreenNumber == number {
			return &t.Screens[i]
		}
	}
	return nil
}
