package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cinetix/internal/data/entity"
	"cinetix/internal/data/repository"
	"cinetix/internal/dto/response"
	"cinetix/internal/ledger"
	"cinetix/pkg/utils"
)

const seatMapCacheTTL = 30 * time.Second

// SeatSnapshotter is the read side of the seat ledger.
type SeatSnapshotter interface {
	Snapshot(ctx context.Context, showID uuid.UUID) (map[string]entity.SeatStatus, error)
}

type SeatMapService interface {
	GetSeatMap(ctx context.Context, showID string) (*response.SeatMapResponse, error)
}

type seatMapService struct {
	repo  *repository.Repository
	seats SeatSnapshotter
	cache *redis.Client // nil disables caching
	log   *zap.Logger
}

func NewSeatMapService(repo *repository.Repository, seats SeatSnapshotter, cache *redis.Client, log *zap.Logger) SeatMapService {
	return &seatMapService{
		repo:  repo,
		seats: seats,
		cache: cache,
		log:   log.With(zap.String("service", "seatmap")),
	}
}

func seatMapCacheKey(showID string) string {
	return "seatmap:" + showID
}

// GetSeatMap renders the full seat grid for a show from the screen layout
// plus the ledger snapshot. Cached briefly in redis; any seat transition
// for the show drops the cache entry.
func (s *seatMapService) GetSeatMap(ctx context.Context, showID string) (*response.SeatMapResponse, error) {
	id, err := utils.ParseUUID(showID)
	if err != nil {
		return nil, ErrNotFound
	}

	if cached := s.fromCache(ctx, showID); cached != nil {
		return cached, nil
	}

	show, err := s.repo.Show.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find show: %w", err)
	}
	if show == nil {
		return nil, ErrNotFound
	}

	theater, err := s.repo.Theater.FindByID(ctx, show.TheaterID)
	if err != nil {
		return nil, fmt.Errorf("find theater: %w", err)
	}
	if theater == nil {
		return nil, ErrNotFound
	}
	screen := theater.Screen(show.ScreenNumber)
	if screen == nil {
		return nil, ErrNotFound
	}

	snapshot, err := s.seats.Snapshot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("seat snapshot: %w", err)
	}

	grid := screen.SeatLayout.SeatNumbers()
	rows := make([][]response.SeatResponse, len(grid))
	available := 0
	for i, rowSeats := range grid {
		rows[i] = make([]response.SeatResponse, len(rowSeats))
		for j, seatNumber := range rowSeats {
			status, taken := snapshot[seatNumber]
			if !taken {
				status = entity.SeatAvailable
				available++
			}
			rows[i][j] = response.SeatResponse{SeatNumber: seatNumber, Status: string(status)}
		}
	}

	resp := &response.SeatMapResponse{
		ShowID:    showID,
		Price:     show.Price,
		Rows:      rows,
		Available: available,
	}
	s.toCache(ctx, showID, resp)
	return resp, nil
}

func (s *seatMapService) fromCache(ctx context.Context, showID string) *response.SeatMapResponse {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, seatMapCacheKey(showID)).Bytes()
	if err != nil {
		return nil
	}
	var resp response.SeatMapResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil
	}
	return &resp
}

func (s *seatMapService) toCache(ctx context.Context, showID string, resp *response.SeatMapResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, seatMapCacheKey(showID), payload, seatMapCacheTTL).Err(); err != nil {
		s.log.Warn("seat map cache write failed", zap.Error(err))
	}
}

// SeatMapInvalidator drops the cached grid whenever the ledger commits a
// seat transition for the show. It runs under the show lock, so the DEL
// gets a short deadline of its own.
type SeatMapInvalidator struct {
	cache *redis.Client
	log   *zap.Logger
}

func NewSeatMapInvalidator(cache *redis.Client, log *zap.Logger) *SeatMapInvalidator {
	return &SeatMapInvalidator{
		cache: cache,
		log:   log.With(zap.String("service", "seatmap_cache")),
	}
}

func (i *SeatMapInvalidator) SeatsChanged(delta ledger.Delta) {
	if i.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := i.cache.Del(ctx, seatMapCacheKey(delta.ShowID.String())).Err(); err != nil {
		i.log.Warn("seat map cache invalidation failed",
			zap.String("show_id", delta.ShowID.String()), zap.Error(err))
	}
}
