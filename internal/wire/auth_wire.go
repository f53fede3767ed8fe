package wire

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cinetix/internal/adaptor"
	"cinetix/pkg/middleware"
	"cinetix/pkg/utils"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// Public routes
	r.Post("/api/register", authHandler.Register)
	r.Post("/api/login", authHandler.Login)

	// Protected routes
	r.With(middleware.Auth(config.JWT.Secret, log)).Get("/api/profile", authHandler.Profile)
}
