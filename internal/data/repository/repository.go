package repository

import (
	"cinetix/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User           UserRepository
	Movie          MovieRepository
	Theater        TheaterRepository
	Show           ShowRepository
	SeatState      SeatStateRepository
	Booking        BookingRepository
	PaymentSession PaymentSessionRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:           NewUserRepository(db, log),
		Movie:          NewMovieRepository(db, log),
		Theater:        NewTheaterRepository(db, log),
		Show:           NewShowRepository(db, log),
		SeatState:      NewSeatStateRepository(db, log),
		Booking:        NewBookingRepository(db, log),
		PaymentSession: NewPaymentSessionRepository(db, log),
	}
}
