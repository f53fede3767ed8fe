package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cinetix/internal/data/entity"
	"cinetix/internal/data/repository"
	"cinetix/internal/dto/request"
	"cinetix/internal/dto/response"
	"cinetix/internal/reconcile"
)

type PaymentService interface {
	// CheckStatus resolves a checkout session for its owner, polling the
	// provider until it settles or the attempt budget runs out.
	CheckStatus(ctx context.Context, userID uuid.UUID, role, sessionID string) (*response.PaymentStatusResponse, error)
	// HandleWebhook settles a booking from a provider callback.
	HandleWebhook(ctx context.Context, req *request.PaymentWebhookRequest) error
}

type paymentService struct {
	repo       *repository.Repository
	reconciler *reconcile.Reconciler
	log        *zap.Logger
}

func NewPaymentService(repo *repository.Repository, reconciler *reconcile.Reconciler, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:       repo,
		reconciler: reconciler,
		log:        log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) CheckStatus(ctx context.Context, userID uuid.UUID, role, sessionID string) (*response.PaymentStatusResponse, error) {
	booking, session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID && role != "admin" {
		return nil, ErrForbidden
	}

	// Already settled sessions answer from the database without touching
	// the provider.
	if booking.Status != entity.BookingStatusPendingPayment {
		return statusResponse(booking, session), nil
	}

	_, err = s.reconciler.Resolve(ctx, booking, session)
	if err != nil && !errors.Is(err, reconcile.ErrReconcileTimeout) && !errors.Is(err, reconcile.ErrPaymentCaptureConflict) {
		return nil, fmt.Errorf("resolve payment %s: %w", sessionID, err)
	}
	// Timeout and capture conflict still carry a meaningful state for the
	// client; pass the sentinel up alongside it.
	return statusResponse(booking, session), err
}

func (s *paymentService) HandleWebhook(ctx context.Context, req *request.PaymentWebhookRequest) error {
	booking, session, err := s.findSession(ctx, req.SessionID)
	if err != nil {
		return err
	}

	status, err := s.reconciler.ApplyStatus(ctx, booking, session, entity.PaymentStatus(req.Status))
	if err != nil && !errors.Is(err, reconcile.ErrPaymentCaptureConflict) {
		return fmt.Errorf("apply webhook for %s: %w", req.SessionID, err)
	}
	s.log.Info("Webhook processed",
		zap.String("session_id", req.SessionID),
		zap.String("payment_status", req.Status),
		zap.String("booking_status", string(status)))
	return err
}

func (s *paymentService) findSession(ctx context.Context, sessionID string) (*entity.Booking, *entity.PaymentSession, error) {
	session, err := s.repo.PaymentSession.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("find payment session: %w", err)
	}
	if session == nil {
		return nil, nil, ErrNotFound
	}

	booking, err := s.repo.Booking.FindByID(ctx, session.BookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, nil, ErrNotFound
	}
	return booking, session, nil
}

func statusResponse(booking *entity.Booking, session *entity.PaymentSession) *response.PaymentStatusResponse {
	return &response.PaymentStatusResponse{
		SessionID:     session.SessionID,
		PaymentStatus: string(session.Status),
		BookingID:     booking.ID.String(),
		BookingStatus: string(booking.Status),
	}
}
