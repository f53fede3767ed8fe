package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cinetix/internal/data/entity"
	"cinetix/internal/data/repository"
	"cinetix/internal/dto/request"
	"cinetix/internal/dto/response"
	"cinetix/pkg/utils"
)

type MovieService interface {
	GetMovies(ctx context.Context) ([]response.MovieResponse, error)
	GetMovieByID(ctx context.Context, movieID string) (*response.MovieResponse, error)
	CreateMovie(ctx context.Context, req *request.MovieRequest) (*response.MovieResponse, error)
	UpdateMovie(ctx context.Context, movieID string, req *request.MovieUpdateRequest) (*response.MovieResponse, error)
	DeleteMovie(ctx context.Context, movieID string) error
}

type movieService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewMovieService(repo *repository.Repository, log *zap.Logger) MovieService {
	return &movieService{
		repo: repo,
		log:  log.With(zap.String("service", "movie")),
	}
}

func (s *movieService) GetMovies(ctx context.Context) ([]response.MovieResponse, error) {
	movies, err := s.repo.Movie.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to get movies", zap.Error(err))
		return nil, fmt.Errorf("get movies: %w", err)
	}

	responses := make([]response.MovieResponse, len(movies))
	for i, movie := range movies {
		responses[i] = response.MovieToResponse(movie)
	}
	return responses, nil
}

func (s *movieService) GetMovieByID(ctx context.Context, movieID string) (*response.MovieResponse, error) {
	movie, err := s.findMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	resp := response.MovieToResponse(movie)
	return &resp, nil
}

func (s *movieService) CreateMovie(ctx context.Context, req *request.MovieRequest) (*response.MovieResponse, error) {
	movie := &entity.Movie{
		Base:        entity.NewBase(),
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Duration:    req.Duration,
		Rating:      req.Rating,
		PosterURL:   req.PosterURL,
		BackdropURL: req.BackdropURL,
		ReleaseDate: req.ReleaseDate,
	}
	if err := s.repo.Movie.Create(ctx, movie); err != nil {
		s.log.Error("Failed to create movie", zap.Error(err))
		return nil, fmt.Errorf("create movie: %w", err)
	}

	s.log.Info("Movie created", zap.String("movie_id", movie.ID.String()), zap.String("title", movie.Title))
	resp := response.MovieToResponse(movie)
	return &resp, nil
}

func (s *movieService) UpdateMovie(ctx context.Context, movieID string, req *request.MovieUpdateRequest) (*response.MovieResponse, error) {
	movie, err := s.findMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		movie.Title = *req.Title
	}
	if req.Description != nil {
		movie.Description = *req.Description
	}
	if req.Genre != nil {
		movie.Genre = *req.Genre
	}
	if req.Duration != nil {
		movie.Duration = *req.Duration
	}
	if req.Rating != nil {
		movie.Rating = *req.Rating
	}
	if req.PosterURL != nil {
		movie.PosterURL = *req.PosterURL
	}
	if req.BackdropURL != nil {
		movie.BackdropURL = *req.BackdropURL
	}
	if req.ReleaseDate != nil {
		movie.ReleaseDate = *req.ReleaseDate
	}

	movie.Touch()
	if err := s.repo.Movie.Update(ctx, movie); err != nil {
		s.log.Error("Failed to update movie", zap.Error(err))
		return nil, fmt.Errorf("update movie: %w", err)
	}

	resp := response.MovieToResponse(movie)
	return &resp, nil
}

func (s *movieService) DeleteMovie(ctx context.Context, movieID string) error {
	movie, err := s.findMovie(ctx, movieID)
	if err != nil {
		return err
	}
	if err := s.repo.Movie.Delete(ctx, movie.ID); err != nil {
		s.log.Error("Failed to delete movie", zap.Error(err))
		return fmt.Errorf("delete movie: %w", err)
	}
	s.log.Info("Movie deleted", zap.String("movie_id", movieID))
	return nil
}

func (s *movieService) findMovie(ctx context.Context, movieID string) (*entity.Movie, error) {
	id, err := utils.ParseUUID(movieID)
	if err != nil {
		return nil, ErrNotFound
	}
	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find movie: %w", err)
	}
	if movie == nil {
		return nil, ErrNotFound
	}
	return movie, nil
}
