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

// ShowFilter narrows show listings; zero values match everything.
type ShowFilter struct {
	MovieID   string
	TheaterID string
	Date      string
}

type ShowService interface {
	GetShows(ctx context.Context, filter ShowFilter) ([]response.ShowResponse, error)
	GetShowByID(ctx context.Context, showID string) (*response.ShowResponse, error)
	CreateShow(ctx context.Context, req *request.ShowRequest) (*response.ShowResponse, error)
	UpdateShow(ctx context.Context, showID string, req *request.ShowRequest) (*response.ShowResponse, error)
	DeleteShow(ctx context.Context, showID string) error
}

type showService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewShowService(repo *repository.Repository, log *zap.Logger) ShowService {
	return &showService{
		repo: repo,
		log:  log.With(zap.String("service", "show")),
	}
}

func (s *showService) GetShows(ctx context.Context, filter ShowFilter) ([]response.ShowResponse, error) {
	repoFilter := repository.ShowFilter{Date: filter.Date}
	if filter.MovieID != "" {
		id, err := utils.ParseUUID(filter.MovieID)
		if err != nil {
			return nil, ErrNotFound
		}
		repoFilter.MovieID = id
	}
	if filter.TheaterID != "" {
		id, err := utils.ParseUUID(filter.TheaterID)
		if err != nil {
			return nil, ErrNotFound
		}
		repoFilter.TheaterID = id
	}

	shows, err := s.repo.Show.FindAll(ctx, repoFilter)
	if err != nil {
		s.log.Error("Failed to get shows", zap.Error(err))
		return nil, fmt.Errorf("get shows: %w", err)
	}

	responses := make([]response.ShowResponse, len(shows))
	for i, show := range shows {
		responses[i] = s.enrich(ctx, show)
	}
	return responses, nil
}

func (s *showService) GetShowByID(ctx context.Context, showID string) (*response.ShowResponse, error) {
	show, err := s.findShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	resp := s.enrich(ctx, show)
	return &resp, nil
}

func (s *showService) CreateShow(ctx context.Context, req *request.ShowRequest) (*response.ShowResponse, error) {
	show, err := s.showFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Show.Create(ctx, show); err != nil {
		s.log.Error("Failed to create show", zap.Error(err))
		return nil, fmt.Errorf("create show: %w", err)
	}

	s.log.Info("Show created",
		zap.String("show_id", show.ID.String()),
		zap.String("movie_id", show.MovieID.String()),
		zap.String("show_date", show.ShowDate))
	resp := s.enrich(ctx, show)
	return &resp, nil
}

func (s *showService) UpdateShow(ctx context.Context, showID string, req *request.ShowRequest) (*response.ShowResponse, error) {
	existing, err := s.findShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	show, err := s.showFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	show.Base = existing.Base
	show.Touch()

	if err := s.repo.Show.Update(ctx, show); err != nil {
		s.log.Error("Failed to update show", zap.Error(err))
		return nil, fmt.Errorf("update show: %w", err)
	}
	resp := s.enrich(ctx, show)
	return &resp, nil
}

func (s *showService) DeleteShow(ctx context.Context, showID string) error {
	show, err := s.findShow(ctx, showID)
	if err != nil {
		return err
	}
	if err := s.repo.Show.Delete(ctx, show.ID); err != nil {
		s.log.Error("Failed to delete show", zap.Error(err))
		return fmt.Errorf("delete show: %w", err)
	}
	s.log.Info("Show deleted", zap.String("show_id", showID))
	return nil
}

func (s *showService) showFromRequest(ctx context.Context, req *request.ShowRequest) (*entity.Show, error) {
	movieID, err := utils.ParseUUID(req.MovieID)
	if err != nil {
		return nil, ErrNotFound
	}
	theaterID, err := utils.ParseUUID(req.TheaterID)
	if err != nil {
		return nil, ErrNotFound
	}

	movie, err := s.repo.Movie.FindByID(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("find movie: %w", err)
	}
	if movie == nil {
		return nil, fmt.Errorf("movie %s: %w", req.MovieID, ErrNotFound)
	}

	theater, err := s.repo.Theater.FindByID(ctx, theaterID)
	if err != nil {
		return nil, fmt.Errorf("find theater: %w", err)
	}
	if theater == nil {
		return nil, fmt.Errorf("theater %s: %w", req.TheaterID, ErrNotFound)
	}
	if theater.Screen(req.ScreenNumber) == nil {
		return nil, fmt.Errorf("screen %d: %w", req.ScreenNumber, ErrNotFound)
	}

	return &entity.Show{
		Base:         entity.NewBase(),
		MovieID:      movieID,
		TheaterID:    theaterID,
		ScreenNumber: req.ScreenNumber,
		ShowDate:     req.ShowDate,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Price:        req.Price,
	}, nil
}

func (s *showService) findShow(ctx context.Context, showID string) (*entity.Show, error) {
	id, err := utils.ParseUUID(showID)
	if err != nil {
		return nil, ErrNotFound
	}
	show, err := s.repo.Show.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find show: %w", err)
	}
	if show == nil {
		return nil, ErrNotFound
	}
	return show, nil
}

// enrich attaches movie and theater names for listing responses. Lookups
// that fail leave the fields blank rather than failing the request.
func (s *showService) enrich(ctx context.Context, show *entity.Show) response.ShowResponse {
	resp := response.ShowToResponse(show)
	if movie, err := s.repo.Movie.FindByID(ctx, show.MovieID); err == nil && movie != nil {
		resp.MovieTitle = movie.Title
	}
	if theater, err := s.repo.Theater.FindByID(ctx, show.TheaterID); err == nil && theater != nil {
		resp.TheaterName = theater.Name
	}
	return resp
}
