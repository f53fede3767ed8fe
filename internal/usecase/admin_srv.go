package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cinetix/internal/data/entity"
	"cinetix/internal/data/repository"
	"cinetix/internal/dto/response"
)

type AdminService interface {
	GetAnalytics(ctx context.Context) (*response.AnalyticsResponse, error)
}

type adminService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAdminService(repo *repository.Repository, log *zap.Logger) AdminService {
	return &adminService{
		repo: repo,
		log:  log.With(zap.String("service", "admin")),
	}
}

func (s *adminService) GetAnalytics(ctx context.Context) (*response.AnalyticsResponse, error) {
	analytics := &response.AnalyticsResponse{}

	var err error
	if analytics.TotalMovies, err = s.repo.Movie.Count(ctx); err != nil {
		return nil, fmt.Errorf("count movies: %w", err)
	}
	if analytics.TotalTheaters, err = s.repo.Theater.Count(ctx); err != nil {
		return nil, fmt.Errorf("count theaters: %w", err)
	}
	if analytics.TotalShows, err = s.repo.Show.Count(ctx); err != nil {
		return nil, fmt.Errorf("count shows: %w", err)
	}
	if analytics.TotalBookings, err = s.repo.Booking.Count(ctx); err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	if analytics.ConfirmedBookings, err = s.repo.Booking.CountByStatus(ctx, entity.BookingStatusConfirmed); err != nil {
		return nil, fmt.Errorf("count confirmed bookings: %w", err)
	}
	if analytics.PendingBookings, err = s.repo.Booking.CountByStatus(ctx, entity.BookingStatusPendingPayment); err != nil {
		return nil, fmt.Errorf("count pending bookings: %w", err)
	}
	if analytics.CancelledBookings, err = s.repo.Booking.CountByStatus(ctx, entity.BookingStatusCancelled); err != nil {
		return nil, fmt.Errorf("count cancelled bookings: %w", err)
	}
	if analytics.ExpiredBookings, err = s.repo.Booking.CountByStatus(ctx, entity.BookingStatusExpired); err != nil {
		return nil, fmt.Errorf("count expired bookings: %w", err)
	}
	if analytics.TotalRevenue, err = s.repo.Booking.RevenueByStatus(ctx, entity.BookingStatusConfirmed); err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}

	return analytics, nil
}
