package entity

import (
	"github.com/google/uuid"
)

type Show struct {
	Base
	MovieID      uuid.UUID `db:"movie_id"`
	TheaterID    uuid.UUID `db:"theater_id"`
	ScreenNumber int       `db:"screen_number"`
	ShowDate     string    `db:"show_date"`  // YYYY-MM-DD
	StartTime    string    `db:"start_time"` // HH:MM
	EndTime      string    `db:"end_time"`   // HH:MM
	Price        float64   `db:"price"`
}
