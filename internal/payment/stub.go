package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cinetix/internal/data/entity"
)

// StubGateway is an in-memory provider for development and tests. Every
// session starts initiated; MarkStatus moves it, standing in for the
// customer completing or abandoning checkout.
type StubGateway struct {
	mu       sync.Mutex
	sessions map[string]entity.PaymentStatus
}

func NewStubGateway() *StubGateway {
	return &StubGateway{sessions: make(map[string]entity.PaymentStatus)}
}

func (g *StubGateway) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	sessionID := "stub_" + uuid.NewString()

	g.mu.Lock()
	g.sessions[sessionID] = entity.PaymentStatusInitiated
	g.mu.Unlock()

	return &CheckoutSession{
		SessionID:   sessionID,
		CheckoutURL: "https://checkout.local/stub/" + sessionID,
		ExpiresAt:   time.Now().Add(30 * time.Minute),
	}, nil
}

func (g *StubGateway) GetStatus(_ context.Context, sessionID string) (entity.PaymentStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	status, ok := g.sessions[sessionID]
	if !ok {
		return "", fmt.Errorf("stub gateway: unknown session %s", sessionID)
	}
	return status, nil
}

// MarkStatus forces a session outcome.
func (g *StubGateway) MarkStatus(sessionID string, status entity.PaymentStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[sessionID] = status
}
