package wire

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cinetix/internal/adaptor"
	"cinetix/pkg/middleware"
	"cinetix/pkg/utils"
)

// wireCatalog mounts the browse surface plus the admin management routes
// for movies, theaters and shows.
func wireCatalog(
	r chi.Router,
	handler *adaptor.Handler,
	config *utils.Config,
	log *zap.Logger,
) {
	// Public browse routes
	r.Get("/api/movies", handler.Movie.GetMovies)
	r.Get("/api/movies/{id}", handler.Movie.GetMovieByID)
	r.Get("/api/theaters", handler.Theater.GetTheaters)
	r.Get("/api/theaters/{id}", handler.Theater.GetTheaterByID)
	r.Get("/api/shows", handler.Show.GetShows)
	r.Get("/api/shows/{id}", handler.Show.GetShowByID)

	// Seat map and its live stream are public so clients can browse seats
	// before logging in.
	r.Get("/api/shows/{id}/seats", handler.Show.GetSeatMap)
	r.Get("/api/shows/{id}/seats/stream", handler.Show.StreamSeats)

	// Admin routes
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT.Secret, log))
		r.Use(middleware.Admin(log))

		r.Post("/movies", handler.Movie.CreateMovie)
		r.Put("/movies/{id}", handler.Movie.UpdateMovie)
		r.Delete("/movies/{id}", handler.Movie.DeleteMovie)

		r.Post("/theaters", handler.Theater.CreateTheater)
		r.Put("/theaters/{id}", handler.Theater.UpdateTheater)
		r.Delete("/theaters/{id}", handler.Theater.DeleteTheater)

		r.Post("/shows", handler.Show.CreateShow)
		r.Put("/shows/{id}", handler.Show.UpdateShow)
		r.Delete("/shows/{id}", handler.Show.DeleteShow)

		r.Get("/bookings", handler.Admin.GetAllBookings)
		r.Get("/analytics", handler.Admin.GetAnalytics)
	})
}
