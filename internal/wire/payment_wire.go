package wire

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cinetix/internal/adaptor"
	"cinetix/pkg/middleware"
	"cinetix/pkg/utils"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.With(middleware.Auth(config.JWT.Secret, log)).
		Get("/api/payments/status/{session_id}", paymentHandler.CheckStatus)

	// Provider callback, authenticated by shared key instead of JWT.
	r.Post("/api/webhook/payments", paymentHandler.Webhook)
}
