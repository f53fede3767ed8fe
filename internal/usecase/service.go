package usecase

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cinetix/internal/data/repository"
	"cinetix/internal/ledger"
	"cinetix/internal/payment"
	"cinetix/internal/reconcile"
	"cinetix/pkg/utils"
)

type Service struct {
	Auth    AuthService
	Movie   MovieService
	Theater TheaterService
	Show    ShowService
	SeatMap SeatMapService
	Booking BookingService
	Payment PaymentService
	Admin   AdminService
}

func NewService(
	repo *repository.Repository,
	seats *ledger.Ledger,
	gateway payment.Gateway,
	reconciler *reconcile.Reconciler,
	cache *redis.Client,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth:    NewAuthService(repo, config, log),
		Movie:   NewMovieService(repo, log),
		Theater: NewTheaterService(repo, log),
		Show:    NewShowService(repo, log),
		SeatMap: NewSeatMapService(repo, seats, cache, log),
		Booking: NewBookingService(repo, seats, gateway, log),
		Payment: NewPaymentService(repo, reconciler, log),
		Admin:   NewAdminService(repo, log),
	}
}
