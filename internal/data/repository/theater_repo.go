package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"cinetix/internal/data/entity"
	"cinetix/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TheaterRepository interface {
	Create(ctx context.Context, theater *entity.Theater) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Theater, error)
	FindAll(ctx context.Context) ([]*entity.Theater, error)
	Update(ctx context.Context, theater *entity.Theater) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type theaterRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTheaterRepository(db database.PgxIface, log *zap.Logger) TheaterRepository {
	return &theaterRepository{
		db:  db,
		log: log.With(zap.String("repository", "theater")),
	}
}

func (r *theaterRepository) Create(ctx context.Context, theater *entity.Theater) error {
	screens, err := json.Marshal(theater.Screens)
	if err != nil {
		return fmt.Errorf("marshal screens: %w", err)
	}

	query := `
		INSERT INTO theaters (id, name, location, screens, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.Exec(ctx, query,
		theater.ID,
		theater.Name,
		theater.Location,
		screens,
		theater.CreatedAt,
		theater.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create theater",
			zap.Error(err),
			zap.String("name", theater.Name),
		)
		return fmt.Errorf("create theater %s: %w", theater.Name, err)
	}

	return nil
}

func (r *theaterRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Theater, error) {
	query := `
		SELECT id, name, location, screens, created_at, updated_at
		FROM theaters
		WHERE id = $1
	`

	var theater entity.Theater
	var screens []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&theater.ID,
		&theater.Name,
		&theater.Location,
		&screens,
		&theater.CreatedAt,
		&theater.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find theater by ID",
			zap.Error(err),
			zap.String("theater_id", id.String()),
		)
		return nil, fmt.Errorf("find theater by ID %s: %w", id.String(), err)
	}

	if err := json.Unmarshal(screens, &theater.Screens); err != nil {
		return nil, fmt.Errorf("unmarshal screens for theater %s: %w", id.String(), err)
	}

	return &theater, nil
}

func (r *theaterRepository) FindAll(ctx context.Context) ([]*entity.Theater, error) {
	query := `
		SELECT id, name, location, screens, created_at, updated_at
		FROM theaters
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find theaters", zap.Error(err))
		return nil, fmt.Errorf("find theaters: %w", err)
	}
	defer rows.Close()

	var theaters []*entity.Theater
	for rows.Next() {
		var theater entity.Theater
		var screens []byte
		err := rows.Scan(
			&theater.ID,
			&theater.Name,
			&theater.Location,
			&screens,
			&theater.CreatedAt,
			&theater.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan theater row", zap.Error(err))
			return nil, fmt.Errorf("scan theater row: %w", err)
		}
		if err := json.Unmarshal(screens, &theater.Screens); err != nil {
			return nil, fmt.Errorf("unmarshal screens: %w", err)
		}
		theaters = append(theaters, &theater)
	}

	return theaters, nil
}

func (r *theaterRepository) Update(ctx context.Context, theater *entity.Theater) error {
	screens, err := json.Marshal(theater.Screens)
	if err != nil {
		return fmt.Errorf("marshal screens: %w", err)
	}

	query := `
		UPDATE theaters
		SET name = $2, location = $3, screens = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		theater.ID,
		theater.Name,
		theater.Location,
		screens,
		theater.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update theater",
			zap.Error(err),
			zap.String("theater_id", theater.ID.String()),
		)
		return fmt.Errorf("update theater %s: %w", theater.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("theater %s not found", theater.ID.String())
	}

	return nil
}

func (r *theaterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM theaters WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete theater",
			zap.Error(err),
			zap.String("theater_id", id.String()),
		)
		return fmt.Errorf("delete theater %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("theater %s not found", id.String())
	}

	return nil
}

func (r *theaterRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM theaters`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count theaters: %w", err)
	}
	return count, nil
}
