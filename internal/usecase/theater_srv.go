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

type TheaterService interface {
	GetTheaters(ctx context.Context) ([]response.TheaterResponse, error)
	GetTheaterByID(ctx context.Context, theaterID string) (*response.TheaterResponse, error)
	CreateTheater(ctx context.Context, req *request.TheaterRequest) (*response.TheaterResponse, error)
	UpdateTheater(ctx context.Context, theaterID string, req *request.TheaterRequest) (*response.TheaterResponse, error)
	DeleteTheater(ctx context.Context, theaterID string) error
}

type theaterService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewTheaterService(repo *repository.Repository, log *zap.Logger) TheaterService {
	return &theaterService{
		repo: repo,
		log:  log.With(zap.String("service", "theater")),
	}
}

func (s *theaterService) GetTheaters(ctx context.Context) ([]response.TheaterResponse, error) {
	theaters, err := s.repo.Theater.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to get theaters", zap.Error(err))
		return nil, fmt.Errorf("get theaters: %w", err)
	}

	responses := make([]response.TheaterResponse, len(theaters))
	for i, theater := range theaters {
		responses[i] = response.TheaterToResponse(theater)
	}
	return responses, nil
}

func (s *theaterService) GetTheaterByID(ctx context.Context, theaterID string) (*response.TheaterResponse, error) {
	theater, err := s.findTheater(ctx, theaterID)
	if err != nil {
		return nil, err
	}
	resp := response.TheaterToResponse(theater)
	return &resp, nil
}

func (s *theaterService) CreateTheater(ctx context.Context, req *request.TheaterRequest) (*response.TheaterResponse, error) {
	theater := &entity.Theater{
		Base:     entity.NewBase(),
		Name:     req.Name,
		Location: req.Location,
		Screens:  screensFromRequest(req.Screens),
	}
	if err := s.repo.Theater.Create(ctx, theater); err != nil {
		s.log.Error("Failed to create theater", zap.Error(err))
		return nil, fmt.Errorf("create theater: %w", err)
	}

	s.log.Info("Theater created", zap.String("theater_id", theater.ID.String()), zap.String("name", theater.Name))
	resp := response.TheaterToResponse(theater)
	return &resp, nil
}

func (s *theaterService) UpdateTheater(ctx context.Context, theaterID string, req *request.TheaterRequest) (*response.TheaterResponse, error) {
	theater, err := s.findTheater(ctx, theaterID)
	if err != nil {
		return nil, err
	}

	// Changing a layout under scheduled shows would orphan sold seats.
	shows, err := s.repo.Show.FindAll(ctx, repository.ShowFilter{TheaterID: theater.ID})
	if err != nil {
		return nil, fmt.Errorf("check theater shows: %w", err)
	}
	if len(shows) > 0 && layoutChanged(theater.Screens, req.Screens) {
		return nil, ErrScreenInUse
	}

	theater.Name = req.Name
	theater.Location = req.Location
	theater.Screens = screensFromRequest(req.Screens)
	theater.Touch()
	if err := s.repo.Theater.Update(ctx, theater); err != nil {
		s.log.Error("Failed to update theater", zap.Error(err))
		return nil, fmt.Errorf("update theater: %w", err)
	}

	resp := response.TheaterToResponse(theater)
	return &resp, nil
}

func (s *theaterService) DeleteTheater(ctx context.Context, theaterID string) error {
	theater, err := s.findTheater(ctx, theaterID)
	if err != nil {
		return err
	}

	shows, err := s.repo.Show.FindAll(ctx, repository.ShowFilter{TheaterID: theater.ID})
	if err != nil {
		return fmt.Errorf("check theater shows: %w", err)
	}
	if len(shows) > 0 {
		return ErrScreenInUse
	}

	if err := s.repo.Theater.Delete(ctx, theater.ID); err != nil {
		s.log.Error("Failed to delete theater", zap.Error(err))
		return fmt.Errorf("delete theater: %w", err)
	}
	s.log.Info("Theater deleted", zap.String("theater_id", theaterID))
	return nil
}

func (s *theaterService) findTheater(ctx context.Context, theaterID string) (*entity.Theater, error) {
	id, err := utils.ParseUUID(theaterID)
	if err != nil {
		return nil, ErrNotFound
	}
	theater, err := s.repo.Theater.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find theater: %w", err)
	}
	if theater == nil {
		return nil, ErrNotFound
	}
	return theater, nil
}

func screensFromRequest(reqs []request.ScreenRequest) []entity.Screen {
	screens := make([]entity.Screen, len(reqs))
	for i, screen := range reqs {
		screens[i] = entity.Screen{
			ScreenNumber: screen.ScreenNumber,
			SeatLayout: entity.SeatLayout{
				Rows:        screen.Rows,
				SeatsPerRow: screen.SeatsPerRow,
			},
		}
	}
	return screens
}

func layoutChanged(current []entity.Screen, reqs []request.ScreenRequest) bool {
	if len(current) != len(reqs) {
		return true
	}
	byNumber := make(map[int]entity.Screen, len(current))
	for _, screen := range current {
		byNumber[screen.ScreenNumber] = screen
	}
	for _, req := range reqs {
		screen, ok := byNumber[req.ScreenNumber]
		if !ok || screen.SeatLayout.SeatsPerRow != req.SeatsPerRow || len(screen.SeatLayout.Rows) != len(req.Rows) {
			return true
		}
		for i, row := range req.Rows {
			if screen.SeatLayout.Rows[i] != row {
				return true
			}
		}
	}
	return false
}
