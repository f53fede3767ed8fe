package repository

import (
	"context"
	"fmt"
	"time"

	"cinetix/internal/data/entity"
	"cinetix/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindAll(ctx context.Context) ([]*entity.Booking, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error

	// Business queries
	FindStalePending(ctx context.Context, olderThan time.Time) ([]*entity.Booking, error)
	CountByStatus(ctx context.Context, status entity.BookingStatus) (int64, error)
	Count(ctx context.Context) (int64, error)
	RevenueByStatus(ctx context.Context, status entity.BookingStatus) (float64, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, order_id, user_id, show_id, seats, total_amount, status, payment_session_id, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.OrderID,
		booking.UserID,
		booking.ShowID,
		booking.Seats,
		booking.TotalAmount,
		booking.Status,
		booking.PaymentSessionID,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("order_id", booking.OrderID),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.OrderID, err)
	}

	return nil
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.OrderID,
		&booking.UserID,
		&booking.ShowID,
		&booking.Seats,
		&booking.TotalAmount,
		&booking.Status,
		&booking.PaymentSessionID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindAll(ctx context.Context) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find bookings", zap.Error(err))
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, bookingID, status)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", bookingID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}

// FindStalePending lists pending_payment bookings created before olderThan,
// candidates for the expiry sweep.
func (r *bookingRepository) FindStalePending(ctx context.Context, olderThan time.Time) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, entity.BookingStatusPendingPayment, olderThan)
	if err != nil {
		r.log.Error("Failed to find stale pending bookings", zap.Error(err))
		return nil, fmt.Errorf("find stale pending bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *bookingRepository) CountByStatus(ctx context.Context, status entity.BookingStatus) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count bookings by status %s: %w", string(status), err)
	}
	return count, nil
}

func (r *bookingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) RevenueByStatus(ctx context.Context, status entity.BookingStatus) (float64, error) {
	var revenue float64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM bookings WHERE status = $1`, status).Scan(&revenue)
	if err != nil {
		return 0, fmt.Errorf("sum revenue by status %s: %w", string(status), err)
	}
	return revenue, nil
}

func collectBookings(rows pgx.Rows) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}
