package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cinetix/internal/data/entity"
	"cinetix/internal/data/repository"
	"cinetix/internal/dto/request"
	"cinetix/internal/dto/response"
	"cinetix/internal/payment"
	"cinetix/pkg/utils"
)

// SeatHolder is the write side of the seat ledger the booking flow drives.
type SeatHolder interface {
	TryHold(ctx context.Context, showID uuid.UUID, seatNumbers []string, bookingID uuid.UUID) error
	Release(ctx context.Context, showID, bookingID uuid.UUID) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req *request.BookingRequest) (*response.CheckoutResponse, error)
	GetCheckout(ctx context.Context, userID uuid.UUID, bookingID string) (*response.CheckoutResponse, error)
	GetBooking(ctx context.Context, userID uuid.UUID, role, bookingID string) (*response.BookingResponse, error)
	ListUserBookings(ctx context.Context, userID uuid.UUID, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	CancelBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error)
	ListAllBookings(ctx context.Context) ([]response.BookingResponse, error)
}

type bookingService struct {
	repo    *repository.Repository
	seats   SeatHolder
	gateway payment.Gateway
	log     *zap.Logger
}

func NewBookingService(repo *repository.Repository, seats SeatHolder, gateway payment.Gateway, log *zap.Logger) BookingService {
	return &bookingService{
		repo:    repo,
		seats:   seats,
		gateway: gateway,
		log:     log.With(zap.String("service", "booking")),
	}
}

// CreateBooking runs the hold pipeline: validate the seats against the
// screen layout, take an atomic hold, open a checkout session, then persist
// the booking in pending_payment. A hold whose checkout or persistence
// fails is released immediately, nothing is left behind.
func (s *bookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *request.BookingRequest) (*response.CheckoutResponse, error) {
	showID, err := utils.ParseUUID(req.ShowID)
	if err != nil {
		return nil, ErrNotFound
	}

	show, err := s.repo.Show.FindByID(ctx, showID)
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
	for _, seatNumber := range req.Seats {
		if !screen.SeatLayout.Contains(seatNumber) {
			return nil, fmt.Errorf("seat %s: %w", seatNumber, ErrUnknownSeats)
		}
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	movie, err := s.repo.Movie.FindByID(ctx, show.MovieID)
	if err != nil {
		return nil, fmt.Errorf("find movie: %w", err)
	}

	booking := &entity.Booking{
		Base:        entity.NewBase(),
		OrderID:     utils.GenerateOrderID(),
		UserID:      userID,
		ShowID:      showID,
		Seats:       req.Seats,
		TotalAmount: float64(len(req.Seats)) * show.Price,
		Status:      entity.BookingStatusPendingPayment,
	}

	// The hold owns the seats from here until payment settles or the TTL
	// reclaims them. SeatConflictError passes through untouched so the
	// handler can report the blocking seats.
	if err := s.seats.TryHold(ctx, showID, req.Seats, booking.ID); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("%d seat(s), %s %s", len(req.Seats), show.ShowDate, show.StartTime)
	if movie != nil {
		description = fmt.Sprintf("%s, %s", movie.Title, description)
	}
	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		OrderID:       booking.OrderID,
		Amount:        booking.TotalAmount,
		Currency:      "USD",
		CustomerEmail: user.Email,
		Description:   description,
	})
	if err != nil {
		s.abortHold(ctx, booking)
		s.log.Error("Failed to open checkout session", zap.Error(err), zap.String("order_id", booking.OrderID))
		return nil, fmt.Errorf("open checkout session: %w", err)
	}

	booking.PaymentSessionID = &session.SessionID
	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		s.abortHold(ctx, booking)
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	record := &entity.PaymentSession{
		Base:        entity.NewBase(),
		SessionID:   session.SessionID,
		BookingID:   booking.ID,
		UserID:      userID,
		Amount:      booking.TotalAmount,
		Currency:    "USD",
		Status:      entity.PaymentStatusInitiated,
		CheckoutURL: session.CheckoutURL,
	}
	if err := s.repo.PaymentSession.Create(ctx, record); err != nil {
		s.log.Error("Failed to persist payment session",
			zap.Error(err), zap.String("session_id", session.SessionID))
		return nil, fmt.Errorf("persist payment session: %w", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_id", booking.OrderID),
		zap.String("show_id", req.ShowID),
		zap.Strings("seats", req.Seats),
		zap.Float64("total_amount", booking.TotalAmount))

	return &response.CheckoutResponse{
		Booking:     response.BookingToResponse(booking),
		SessionID:   session.SessionID,
		CheckoutURL: session.CheckoutURL,
		ExpiresAt:   session.ExpiresAt,
	}, nil
}

func (s *bookingService) abortHold(ctx context.Context, booking *entity.Booking) {
	if err := s.seats.Release(ctx, booking.ShowID, booking.ID); err != nil {
		s.log.Error("Failed to release aborted hold",
			zap.Error(err), zap.String("booking_id", booking.ID.String()))
	}
}

// GetCheckout re-returns the open checkout session for a pending booking,
// for clients that lost the URL mid-flow. Settled bookings answer with
// ErrPaymentSettled so the client checks status instead.
func (s *bookingService) GetCheckout(ctx context.Context, userID uuid.UUID, bookingID string) (*response.CheckoutResponse, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrForbidden
	}
	if booking.Status != entity.BookingStatusPendingPayment || booking.PaymentSessionID == nil {
		return nil, fmt.Errorf("status %s: %w", booking.Status, ErrPaymentSettled)
	}

	session, err := s.repo.PaymentSession.FindBySessionID(ctx, *booking.PaymentSessionID)
	if err != nil {
		return nil, fmt.Errorf("find payment session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}

	return &response.CheckoutResponse{
		Booking:     response.BookingToResponse(booking),
		SessionID:   session.SessionID,
		CheckoutURL: session.CheckoutURL,
	}, nil
}

// GetBooking returns one booking to its owner, or to an admin.
func (s *bookingService) GetBooking(ctx context.Context, userID uuid.UUID, role, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID && role != "admin" {
		return nil, ErrForbidden
	}
	resp := s.enrich(ctx, booking)
	return &resp, nil
}

func (s *bookingService) ListUserBookings(ctx context.Context, userID uuid.UUID, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindByUserID(ctx, userID, page.Limit(), page.Offset())
	if err != nil {
		s.log.Error("Failed to list bookings", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	total, err := s.repo.Booking.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	responses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		responses[i] = s.enrich(ctx, booking)
	}
	return response.NewPaginatedResponse(responses, page.Page, page.Limit(), total), nil
}

// CancelBooking releases a confirmed booking's seats and marks it
// cancelled. Only the owner may cancel, and only from confirmed; pending
// bookings settle through payment reconciliation instead.
func (s *bookingService) CancelBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrForbidden
	}
	if booking.Status != entity.BookingStatusConfirmed {
		return nil, fmt.Errorf("status %s: %w", booking.Status, ErrNotCancellable)
	}

	if err := s.seats.Release(ctx, booking.ShowID, booking.ID); err != nil {
		return nil, fmt.Errorf("release seats: %w", err)
	}
	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusCancelled); err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	booking.Status = entity.BookingStatusCancelled

	s.log.Info("Booking cancelled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_id", booking.OrderID),
		zap.Strings("seats", booking.Seats))
	resp := s.enrich(ctx, booking)
	return &resp, nil
}

func (s *bookingService) ListAllBookings(ctx context.Context) ([]response.BookingResponse, error) {
	bookings, err := s.repo.Booking.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list all bookings", zap.Error(err))
		return nil, fmt.Errorf("list all bookings: %w", err)
	}
	responses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		responses[i] = s.enrich(ctx, booking)
	}
	return responses, nil
}

func (s *bookingService) findBooking(ctx context.Context, bookingID string) (*entity.Booking, error) {
	id, err := utils.ParseUUID(bookingID)
	if err != nil {
		return nil, ErrNotFound
	}
	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	return booking, nil
}

// enrich attaches show context to a booking response. Failed lookups leave
// the extra fields blank.
func (s *bookingService) enrich(ctx context.Context, booking *entity.Booking) response.BookingResponse {
	resp := response.BookingToResponse(booking)
	show, err := s.repo.Show.FindByID(ctx, booking.ShowID)
	if err != nil || show == nil {
		return resp
	}
	resp.ShowDate = show.ShowDate
	resp.StartTime = show.StartTime
	if movie, err := s.repo.Movie.FindByID(ctx, show.MovieID); err == nil && movie != nil {
		resp.MovieTitle = movie.Title
	}
	if theater, err := s.repo.Theater.FindByID(ctx, show.TheaterID); err == nil && theater != nil {
		resp.TheaterName = theater.Name
	}
	return resp
}
