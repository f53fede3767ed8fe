package wire

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cinetix/internal/adaptor"
	"cinetix/internal/data/repository"
	"cinetix/internal/ledger"
	"cinetix/internal/payment"
	"cinetix/internal/realtime"
	"cinetix/internal/reconcile"
	"cinetix/internal/usecase"
	"cinetix/pkg/middleware"
	"cinetix/pkg/utils"
)

// App holds the wired application.
type App struct {
	Router *chi.Mux
}

// Wiring builds the service and handler graph and mounts all routes.
func Wiring(
	repo *repository.Repository,
	seats *ledger.Ledger,
	hub *realtime.Hub,
	gateway payment.Gateway,
	reconciler *reconcile.Reconciler,
	cache *redis.Client,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, seats, gateway, reconciler, cache, config, logger)
	handler := adaptor.NewHandler(service, hub, config.Payment.WebhookKey, logger)

	router := setupRouter(handler, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(handler *adaptor.Handler, config *utils.Config, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireAuth(r, handler.Auth, config, logger)
	wireCatalog(r, handler, config, logger)
	wireBooking(r, handler.Booking, config, logger)
	wirePayment(r, handler.Payment, config, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
