package repository

import (
	"context"
	"fmt"
	"time"

	"cinetix/internal/data/entity"
	"cinetix/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeatStateRepository persists the ledger's held/booked rows. Available seats
// have no row. Serialization of mutations is the ledger's job; this layer is
// plain storage.
type SeatStateRepository interface {
	StatesForShow(ctx context.Context, showID uuid.UUID) ([]entity.SeatState, error)
	StatesForSeats(ctx context.Context, showID uuid.UUID, seatNumbers []string) ([]entity.SeatState, error)
	CreateHolds(ctx context.Context, states []entity.SeatState) error
	MarkBooked(ctx context.Context, showID, bookingID uuid.UUID, now time.Time) ([]string, error)
	ReleaseHolds(ctx context.Context, showID, bookingID uuid.UUID) ([]string, error)
	ReleaseBooked(ctx context.Context, showID, bookingID uuid.UUID) ([]string, error)
	ExpiredHolds(ctx context.Context, now time.Time) ([]entity.SeatState, error)
}

type seatStateRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatStateRepository(db database.PgxIface, log *zap.Logger) SeatStateRepository {
	return &seatStateRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat_state")),
	}
}

func (r *seatStateRepository) StatesForShow(ctx context.Context, showID uuid.UUID) ([]entity.SeatState, error) {
	query := `
		SELECT show_id, seat_number, status, held_by, hold_expires_at, updated_at
		FROM seat_states
		WHERE show_id = $1
		ORDER BY seat_number
	`

	rows, err := r.db.Query(ctx, query, showID)
	if err != nil {
		r.log.Error("Failed to find seat states by show",
			zap.Error(err),
			zap.String("show_id", showID.String()),
		)
		return nil, fmt.Errorf("find seat states for show %s: %w", showID.String(), err)
	}
	defer rows.Close()

	return scanSeatStates(rows)
}

func (r *seatStateRepository) StatesForSeats(ctx context.Context, showID uuid.UUID, seatNumbers []string) ([]entity.SeatState, error) {
	if len(seatNumbers) == 0 {
		return []entity.SeatState{}, nil
	}

	query := `
		SELECT show_id, seat_number, status, held_by, hold_expires_at, updated_at
		FROM seat_states
		WHERE show_id = $1 AND seat_number = ANY($2)
	`

	rows, err := r.db.Query(ctx, query, showID, seatNumbers)
	if err != nil {
		r.log.Error("Failed to find seat states",
			zap.Error(err),
			zap.String("show_id", showID.String()),
			zap.Int("seat_count", len(seatNumbers)),
		)
		return nil, fmt.Errorf("find seat states for show %s: %w", showID.String(), err)
	}
	defer rows.Close()

	return scanSeatStates(rows)
}

// CreateHolds upserts held rows. Overwriting is safe only because the ledger
// verified under the show lock that any existing row is an expired hold.
func (r *seatStateRepository) CreateHolds(ctx context.Context, states []entity.SeatState) error {
	if len(states) == 0 {
		return nil
	}

	query := `INSERT INTO seat_states (show_id, seat_number, status, held_by, hold_expires_at, updated_at) VALUES `
	args := []interface{}{}

	for i, st := range states {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			i*6+1, i*6+2, i*6+3, i*6+4, i*6+5, i*6+6)

		args = append(args,
			st.ShowID,
			st.SeatNumber,
			st.Status,
			st.HeldBy,
			st.HoldExpiresAt,
			st.UpdatedAt,
		)
	}

	query += `
		ON CONFLICT (show_id, seat_number) DO UPDATE
		SET status = EXCLUDED.status, held_by = EXCLUDED.held_by,
		    hold_expires_at = EXCLUDED.hold_expires_at, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to create holds",
			zap.Error(err),
			zap.Int("count", len(states)),
		)
		return fmt.Errorf("create holds: %w", err)
	}

	return nil
}

func (r *seatStateRepository) MarkBooked(ctx context.Context, showID, bookingID uuid.UUID, now time.Time) ([]string, error) {
	query := `
		UPDATE seat_states
		SET status = $4, hold_expires_at = NULL, updated_at = $3
		WHERE show_id = $1 AND held_by = $2 AND status = $5 AND hold_expires_at > $3
		RETURNING seat_number
	`

	rows, err := r.db.Query(ctx, query, showID, bookingID, now, entity.SeatBooked, entity.SeatHeld)
	if err != nil {
		r.log.Error("Failed to mark seats booked",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("mark seats booked for booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	return scanSeatNumbers(rows)
}

func (r *seatStateRepository) ReleaseHolds(ctx context.Context, showID, bookingID uuid.UUID) ([]string, error) {
	query := `
		DELETE FROM seat_states
		WHERE show_id = $1 AND held_by = $2 AND status = $3
		RETURNING seat_number
	`

	rows, err := r.db.Query(ctx, query, showID, bookingID, entity.SeatHeld)
	if err != nil {
		r.log.Error("Failed to release holds",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("release holds for booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	return scanSeatNumbers(rows)
}

func (r *seatStateRepository) ReleaseBooked(ctx context.Context, showID, bookingID uuid.UUID) ([]string, error) {
	query := `
		DELETE FROM seat_states
		WHERE show_id = $1 AND held_by = $2 AND status = $3
		RETURNING seat_number
	`

	rows, err := r.db.Query(ctx, query, showID, bookingID, entity.SeatBooked)
	if err != nil {
		r.log.Error("Failed to release booked seats",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("release booked seats for booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	return scanSeatNumbers(rows)
}

func (r *seatStateRepository) ExpiredHolds(ctx context.Context, now time.Time) ([]entity.SeatState, error) {
	query := `
		SELECT show_id, seat_number, status, held_by, hold_expires_at, updated_at
		FROM seat_states
		WHERE status = $1 AND hold_expires_at <= $2
		ORDER BY show_id, held_by
	`

	rows, err := r.db.Query(ctx, query, entity.SeatHeld, now)
	if err != nil {
		r.log.Error("Failed to find expired holds", zap.Error(err))
		return nil, fmt.Errorf("find expired holds: %w", err)
	}
	defer rows.Close()

	return scanSeatStates(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
}

func scanSeatStates(rows rowScanner) ([]entity.SeatState, error) {
	var states []entity.SeatState
	for rows.Next() {
		var st entity.SeatState
		err := rows.Scan(
			&st.ShowID,
			&st.SeatNumber,
			&st.Status,
			&st.HeldBy,
			&st.HoldExpiresAt,
			&st.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan seat state row: %w", err)
		}
		states = append(states, st)
	}
	return states, nil
}

func scanSeatNumbers(rows rowScanner) ([]string, error) {
	var seats []string
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, fmt.Errorf("scan seat number row: %w", err)
		}
		seats = append(seats, seat)
	}
	return seats, nil
}
