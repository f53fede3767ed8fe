package wire

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cinetix/internal/adaptor"
	"cinetix/pkg/middleware"
	"cinetix/pkg/utils"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT.Secret, log))

		r.Post("/", bookingHandler.CreateBooking)
		r.Get("/my", bookingHandler.GetMyBookings)
		r.Get("/{id}", bookingHandler.GetBooking)
		r.Post("/{id}/checkout", bookingHandler.GetCheckout)
		r.Post("/{id}/cancel", bookingHandler.CancelBooking)
	})
}
