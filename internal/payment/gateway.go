package payment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cinetix/internal/data/entity"
	"cinetix/pkg/utils"
)

// CheckoutRequest describes one payment to collect.
type CheckoutRequest struct {
	OrderID       string
	Amount        float64
	Currency      string
	CustomerEmail string
	Description   string
}

// CheckoutSession is the provider-side session the customer completes.
type CheckoutSession struct {
	SessionID   string
	CheckoutURL string
	ExpiresAt   time.Time
}

// Gateway abstracts the payment provider. GetStatus separates the payment
// outcome from transport failures: a declined or expired payment is a
// status, not an error; an error means the provider could not be asked.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetStatus(ctx context.Context, sessionID string) (entity.PaymentStatus, error)
}

// NewGateway selects the provider from config. Anything other than stripe
// falls back to the in-memory stub so the service still runs end to end
// without provider credentials.
func NewGateway(config utils.PaymentConfig, log *zap.Logger) Gateway {
	if config.Provider == "stripe" && config.APIKey != "" {
		log.Info("payment gateway: stripe", zap.String("base_url", config.APIBaseURL))
		return NewStripeGateway(config)
	}
	log.Info("payment gateway: stub (no provider credentials)")
	return NewStubGateway()
}
