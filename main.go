package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cinetix/cmd"
	"cinetix/internal/data/repository"
	"cinetix/internal/ledger"
	"cinetix/internal/payment"
	"cinetix/internal/queue"
	"cinetix/internal/realtime"
	"cinetix/internal/reconcile"
	"cinetix/internal/usecase"
	"cinetix/internal/wire"
	"cinetix/pkg/database"
	"cinetix/pkg/utils"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Redis is optional; a nil client just disables seat map caching.
	cache := database.InitRedis(config.Redis)

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Seat authority with its realtime fan-out and cache invalidation.
	hub := realtime.NewHub(logger)
	invalidator := usecase.NewSeatMapInvalidator(cache, logger)
	seats := ledger.New(repos.SeatState, config.Hold.TTL, logger, hub, invalidator)

	// Payment gateway and the reconciliation loop behind it.
	gateway := payment.NewGateway(config.Payment, logger)
	events := queue.NewPublisher(config.AMQP.URL, logger)
	defer events.Close()

	reconciler := reconcile.New(
		gateway,
		seats,
		repos.Booking,
		repos.PaymentSession,
		events,
		config.Reconcile.MaxAttempts,
		config.Reconcile.Interval,
		logger,
	).WithMovieTitles(func(ctx context.Context, showID uuid.UUID) string {
		show, err := repos.Show.FindByID(ctx, showID)
		if err != nil || show == nil {
			return ""
		}
		movie, err := repos.Movie.FindByID(ctx, show.MovieID)
		if err != nil || movie == nil {
			return ""
		}
		return movie.Title
	})

	// Wire all dependencies
	app := wire.Wiring(repos, seats, hub, gateway, reconciler, cache, config, logger)

	// Background loops: expired hold sweeper, stale booking sweeper and
	// the audit trail consumer.
	go seats.RunSweeper(ctx, config.Hold.SweepInterval)
	go reconciler.RunExpirySweeper(ctx, config.Hold.SweepInterval, config.Hold.TTL+5*time.Minute)
	if config.AMQP.URL != "" {
		go queue.NewAuditConsumer(config.AMQP.URL, logger).Run(ctx)
	}

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Fatal("HTTP server error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
