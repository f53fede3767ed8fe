package repository

import (
	"context"
	"fmt"

	"cinetix/internal/data/entity"
	"cinetix/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ShowFilter narrows FindAll; zero values mean "any".
type ShowFilter struct {
	MovieID   uuid.UUID
	TheaterID uuid.UUID
	Date      string
}

type ShowRepository interface {
	Create(ctx context.Context, show *entity.Show) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Show, error)
	FindAll(ctx context.Context, filter ShowFilter) ([]*entity.Show, error)
	Update(ctx context.Context, show *entity.Show) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type showRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewShowRepository(db database.PgxIface, log *zap.Logger) ShowRepository {
	return &showRepository{
		db:  db,
		log: log.With(zap.String("repository", "show")),
	}
}

func (r *showRepository) Create(ctx context.Context, show *entity.Show) error {
	query := `
		INSERT INTO shows (id, movie_id, theater_id, screen_number, show_date, start_time, end_time, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		show.ID,
		show.MovieID,
		show.TheaterID,
		show.ScreenNumber,
		show.ShowDate,
		show.StartTime,
		show.EndTime,
		show.Price,
		show.CreatedAt,
		show.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create show",
			zap.Error(err),
			zap.String("movie_id", show.MovieID.String()),
		)
		return fmt.Errorf("create show: %w", err)
	}

	return nil
}

func (r *showRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Show, error) {
	query := `
		SELECT id, movie_id, theater_id, screen_number, show_date, start_time, end_time, price, created_at, updated_at
		FROM shows
		WHERE id = $1
	`

	var show entity.Show
	err := r.db.QueryRow(ctx, query, id).Scan(
		&show.ID,
		&show.MovieID,
		&show.TheaterID,
		&show.ScreenNumber,
		&show.ShowDate,
		&show.StartTime,
		&show.EndTime,
		&show.Price,
		&show.CreatedAt,
		&show.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find show by ID",
			zap.Error(err),
			zap.String("show_id", id.String()),
		)
		return nil, fmt.Errorf("find show by ID %s: %w", id.String(), err)
	}

	return &show, nil
}

func (r *showRepository) FindAll(ctx context.Context, filter ShowFilter) ([]*entity.Show, error) {
	query := `
		SELECT id, movie_id, theater_id, screen_number, show_date, start_time, end_time, price, created_at, updated_at
		FROM shows
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.MovieID != uuid.Nil {
		args = append(args, filter.MovieID)
		query += fmt.Sprintf(" AND movie_id = $%d", len(args))
	}
	if filter.TheaterID != uuid.Nil {
		args = append(args, filter.TheaterID)
		query += fmt.Sprintf(" AND theater_id = $%d", len(args))
	}
	if filter.Date != "" {
		args = append(args, filter.Date)
		query += fmt.Sprintf(" AND show_date = $%d", len(args))
	}

	query += " ORDER BY show_date, start_time"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find shows", zap.Error(err))
		return nil, fmt.Errorf("find shows: %w", err)
	}
	defer rows.Close()

	var shows []*entity.Show
	for rows.Next() {
		var show entity.Show
		err := rows.Scan(
			&show.ID,
			&show.MovieID,
			&show.TheaterID,
			&show.ScreenNumber,
			&show.ShowDate,
			&show.StartTime,
			&show.EndTime,
			&show.Price,
			&show.CreatedAt,
			&show.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan show row", zap.Error(err))
			return nil, fmt.Errorf("scan show row: %w", err)
		}
		shows = append(shows, &show)
	}

	return shows, nil
}

func (r *showRepository) Update(ctx context.Context, show *entity.Show) error {
	query := `
		UPDATE shows
		SET movie_id = $2, theater_id = $3, screen_number = $4, show_date = $5,
		    start_time = $6, end_time = $7, price = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		show.ID,
		show.MovieID,
		show.TheaterID,
		show.ScreenNumber,
		show.ShowDate,
		show.StartTime,
		show.EndTime,
		show.Price,
		show.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update show",
			zap.Error(err),
			zap.String("show_id", show.ID.String()),
		)
		return fmt.Errorf("update show %s: %w", show.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("show %s not found", show.ID.String())
	}

	return nil
}

func (r *showRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM shows WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete show",
			zap.Error(err),
			zap.String("show_id", id.String()),
		)
		return fmt.Errorf("delete show %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("show %s not found", id.String())
	}

	return nil
}

func (r *showRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM shows`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count shows: %w", err)
	}
	return count, nil
}
