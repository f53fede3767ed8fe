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

type MovieRepository interface {
	Create(ctx context.Context, movie *entity.Movie) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Movie, error)
	FindAll(ctx context.Context) ([]*entity.Movie, error)
	Update(ctx context.Context, movie *entity.Movie) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type movieRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewMovieRepository(db database.PgxIface, log *zap.Logger) MovieRepository {
	return &movieRepository{
		db:  db,
		log: log.With(zap.String("repository", "movie")),
	}
}

func (r *movieRepository) Create(ctx context.Context, movie *entity.Movie) error {
	query := `
		INSERT INTO movies (id, title, description, genre, duration, rating, poster_url, backdrop_url, release_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		movie.ID,
		movie.Title,
		movie.Description,
		movie.Genre,
		movie.Duration,
		movie.Rating,
		movie.PosterURL,
		movie.BackdropURL,
		movie.ReleaseDate,
		movie.CreatedAt,
		movie.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create movie",
			zap.Error(err),
			zap.String("title", movie.Title),
		)
		return fmt.Errorf("create movie %s: %w", movie.Title, err)
	}

	return nil
}

func (r *movieRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Movie, error) {
	query := `
		SELECT id, title, description, genre, duration, rating, poster_url, backdrop_url, release_date, created_at, updated_at
		FROM movies
		WHERE id = $1
	`

	var movie entity.Movie
	err := r.db.QueryRow(ctx, query, id).Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.Genre,
		&movie.Duration,
		&movie.Rating,
		&movie.PosterURL,
		&movie.BackdropURL,
		&movie.ReleaseDate,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find movie by ID",
			zap.Error(err),
			zap.String("movie_id", id.String()),
		)
		return nil, fmt.Errorf("find movie by ID %s: %w", id.String(), err)
	}

	return &movie, nil
}

func (r *movieRepository) FindAll(ctx context.Context) ([]*entity.Movie, error) {
	query := `
		SELECT id, title, description, genre, duration, rating, poster_url, backdrop_url, release_date, created_at, updated_at
		FROM movies
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find movies", zap.Error(err))
		return nil, fmt.Errorf("find movies: %w", err)
	}
	defer rows.Close()

	var movies []*entity.Movie
	for rows.Next() {
		var movie entity.Movie
		err := rows.Scan(
			&movie.ID,
			&movie.Title,
			&movie.Description,
			&movie.Genre,
			&movie.Duration,
			&movie.Rating,
			&movie.PosterURL,
			&movie.BackdropURL,
			&movie.ReleaseDate,
			&movie.CreatedAt,
			&movie.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan movie row", zap.Error(err))
			return nil, fmt.Errorf("scan movie row: %w", err)
		}
		movies = append(movies, &movie)
	}

	return movies, nil
}

func (r *movieRepository) Update(ctx context.Context, movie *entity.Movie) error {
	query := `
		UPDATE movies
		SET title = $2, description = $3, genre = $4, duration = $5, rating = $6,
		    poster_url = $7, backdrop_url = $8, release_date = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		movie.ID,
		movie.Title,
		movie.Description,
		movie.Genre,
		movie.Duration,
		movie.Rating,
		movie.PosterURL,
		movie.BackdropURL,
		movie.ReleaseDate,
		movie.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update movie",
			zap.Error(err),
			zap.String("movie_id", movie.ID.String()),
		)
		return fmt.Errorf("update movie %s: %w", movie.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("movie %s not found", movie.ID.String())
	}

	return nil
}

func (r *movieRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM movies WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete movie",
			zap.Error(err),
			zap.String("movie_id", id.String()),
		)
		return fmt.Errorf("delete movie %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("movie %s not found", id.String())
	}

	return nil
}

func (r *movieRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM movies`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return count, nil
}
