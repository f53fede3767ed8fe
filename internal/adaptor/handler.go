package adaptor

import (
	"go.uber.org/zap"

	"cinetix/internal/realtime"
	"cinetix/internal/usecase"
)

type Handler struct {
	Auth    *AuthHandler
	Movie   *MovieHandler
	Theater *TheaterHandler
	Show    *ShowHandler
	Booking *BookingHandler
	Payment *PaymentHandler
	Admin   *AdminHandler
}

func NewHandler(service *usecase.Service, hub *realtime.Hub, webhookKey string, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		Movie:   NewMovieHandler(service.Movie, log),
		Theater: NewTheaterHandler(service.Theater, log),
		Show:    NewShowHandler(service.Show, service.SeatMap, hub, log),
		Booking: NewBookingHandler(service.Booking, log),
		Payment: NewPaymentHandler(service.Payment, webhookKey, log),
		Admin:   NewAdminHandler(service.Booking, service.Admin, log),
	}
}
