package repository

import (
	"context"
	"fmt"

	"cinetix/internal/data/entity"
	"cinetix/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentSessionRepository interface {
	Create(ctx context.Context, session *entity.PaymentSession) error
	FindBySessionID(ctx context.Context, sessionID string) (*entity.PaymentSession, error)
	UpdateStatus(ctx context.Context, sessionID string, status entity.PaymentStatus) error
}

type paymentSessionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentSessionRepository(db database.PgxIface, log *zap.Logger) PaymentSessionRepository {
	return &paymentSessionRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment_session")),
	}
}

func (r *paymentSessionRepository) Create(ctx context.Context, session *entity.PaymentSession) error {
	query := `
		INSERT INTO payment_sessions (id, session_id, booking_id, user_id, amount, currency, status, checkout_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.SessionID,
		session.BookingID,
		session.UserID,
		session.Amount,
		session.Currency,
		session.Status,
		session.CheckoutURL,
		session.CreatedAt,
		session.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment session",
			zap.Error(err),
			zap.String("session_id", session.SessionID),
			zap.String("booking_id", session.BookingID.String()),
		)
		return fmt.Errorf("create payment session %s: %w", session.SessionID, err)
	}

	return nil
}

func (r *paymentSessionRepository) FindBySessionID(ctx context.Context, sessionID string) (*entity.PaymentSession, error) {
	query := `
		SELECT id, session_id, booking_id, user_id, amount, currency, status, checkout_url, created_at, updated_at
		FROM payment_sessions
		WHERE session_id = $1
	`

	var session entity.PaymentSession
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.SessionID,
		&session.BookingID,
		&session.UserID,
		&session.Amount,
		&session.Currency,
		&session.Status,
		&session.CheckoutURL,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment session",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return nil, fmt.Errorf("find payment session %s: %w", sessionID, err)
	}

	return &session, nil
}

func (r *paymentSessionRepository) UpdateStatus(ctx context.Context, sessionID string, status entity.PaymentStatus) error {
	query := `UPDATE payment_sessions SET status = $2, updated_at = NOW() WHERE session_id = $1`

	result, err := r.db.Exec(ctx, query, sessionID, status)
	if err != nil {
		r.log.Error("Failed to update payment session status",
			zap.Error(err),
			zap.String("session_id", sessionID),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update payment session %s status to %s: %w", sessionID, string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("payment session %s not found", sessionID)
	}

	return nil
}
