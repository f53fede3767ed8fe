package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cinetix/internal/data/entity"
	"cinetix/pkg/utils"
)

const defaultStripeBaseURL = "https://api.stripe.com"

// StripeGateway collects payments through Stripe Checkout sessions.
type StripeGateway struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewStripeGateway(config utils.PaymentConfig) *StripeGateway {
	baseURL := config.APIBaseURL
	if baseURL == "" {
		baseURL = defaultStripeBaseURL
	}
	return &StripeGateway{
		apiKey:  config.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type stripeSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`         // open, complete, expired
	PaymentStatus string `json:"payment_status"` // paid, unpaid, no_payment_required
	ExpiresAt     int64  `json:"expires_at"`
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", req.OrderID)
	form.Set("customer_email", req.CustomerEmail)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(req.Currency))
	form.Set("line_items[0][price_data][product_data][name]", req.Description)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(int64(req.Amount*100), 10))
	form.Set("success_url", "https://checkout.local/success?session_id={CHECKOUT_SESSION_ID}")
	form.Set("cancel_url", "https://checkout.local/cancel")

	session, err := g.do(ctx, http.MethodPost, "/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{
		SessionID:   session.ID,
		CheckoutURL: session.URL,
		ExpiresAt:   time.Unix(session.ExpiresAt, 0),
	}, nil
}

func (g *StripeGateway) GetStatus(ctx context.Context, sessionID string) (entity.PaymentStatus, error) {
	session, err := g.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return "", err
	}

	switch {
	case session.PaymentStatus == "paid":
		return entity.PaymentStatusPaid, nil
	case session.Status == "expired":
		return entity.PaymentStatusExpired, nil
	case session.Status == "complete":
		// Complete but unpaid means the attempt was rejected.
		return entity.PaymentStatusFailed, nil
	default:
		return entity.PaymentStatusInitiated, nil
	}
}

func (g *StripeGateway) do(ctx context.Context, method, path string, body io.Reader) (*stripeSession, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build stripe request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	if method == http.MethodPost {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call stripe %s: %w", path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read stripe response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr stripeError
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("stripe %s: %s (%s)", path, apiErr.Error.Message, apiErr.Error.Type)
		}
		return nil, fmt.Errorf("stripe %s: unexpected status %d", path, resp.StatusCode)
	}

	var session stripeSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode stripe session: %w", err)
	}
	return &session, nil
}
