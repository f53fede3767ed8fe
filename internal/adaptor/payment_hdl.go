package adaptor

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cinetix/internal/dto/request"
	"cinetix/internal/reconcile"
	"cinetix/internal/usecase"
	"cinetix/pkg/utils"
)

const webhookSignatureHeader = "X-Webhook-Key"

type PaymentHandler struct {
	service    usecase.PaymentService
	webhookKey string
	log        *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, webhookKey string, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:    service,
		webhookKey: webhookKey,
		log:        log,
	}
}

// CheckStatus handles GET /api/payments/status/{session_id}. A session
// still pending after the attempt budget answers 202 with the latest known
// state; a capture conflict answers 409 with the cancelled booking.
func (h *PaymentHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}
	role, _ := utils.GetRoleFromContext(r.Context())

	status, err := h.service.CheckStatus(r.Context(), userID, role, chi.URLParam(r, "session_id"))
	switch {
	case errors.Is(err, reconcile.ErrReconcileTimeout):
		utils.ResponseJSON(w, http.StatusAccepted, true, "Payment still pending, check again later", status, nil)
	case errors.Is(err, reconcile.ErrPaymentCaptureConflict):
		utils.ResponseJSON(w, http.StatusConflict, false, "Payment captured after the seat hold expired; booking cancelled for refund", status, nil)
	case err != nil:
		writeServiceError(w, h.log, err, "check payment status")
	default:
		utils.ResponseSuccess(w, "Payment status retrieved", status)
	}
}

// Webhook handles POST /api/webhook/payments. Callers authenticate with a
// shared key header; settlement itself is idempotent so provider retries
// are harmless.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.webhookKey == "" || subtle.ConstantTimeCompare([]byte(r.Header.Get(webhookSignatureHeader)), []byte(h.webhookKey)) != 1 {
		h.log.Warn("webhook rejected, bad signature key")
		utils.ResponseUnauthorized(w, "Invalid webhook signature")
		return
	}

	var req request.PaymentWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	if err := h.service.HandleWebhook(r.Context(), &req); err != nil {
		writeServiceError(w, h.log, err, "payment webhook")
		return
	}
	utils.ResponseSuccess(w, "Webhook processed", nil)
}
