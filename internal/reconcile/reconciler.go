package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cinetix/internal/data/entity"
	"cinetix/internal/ledger"
	"cinetix/internal/payment"
	"cinetix/internal/queue"
)

// ErrReconcileTimeout means the polling budget ran out while the provider
// still reported the payment as in flight. Nothing was mutated; the
// webhook or the next status poll can still settle the booking.
var ErrReconcileTimeout = errors.New("payment still pending after polling budget")

// ErrPaymentCaptureConflict means the provider captured the payment but
// the seat hold had already expired, so the seats could not be granted.
// The booking is cancelled and the conflict is published for manual
// follow-up (refund or re-seat).
var ErrPaymentCaptureConflict = errors.New("payment captured after hold expired")

// SeatLedger is the slice of the seat ledger the reconciler drives.
type SeatLedger interface {
	Confirm(ctx context.Context, showID, bookingID uuid.UUID) ([]string, error)
	Release(ctx context.Context, showID, bookingID uuid.UUID) error
}

// BookingStore persists booking lifecycle transitions.
type BookingStore interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus) error
	FindStalePending(ctx context.Context, olderThan time.Time) ([]*entity.Booking, error)
}

// SessionStore persists payment session outcomes.
type SessionStore interface {
	FindBySessionID(ctx context.Context, sessionID string) (*entity.PaymentSession, error)
	UpdateStatus(ctx context.Context, sessionID string, status entity.PaymentStatus) error
}

// Reconciler settles pending bookings against the payment provider. It is
// the only component that moves a booking out of pending_payment, whether
// driven by the client status poll, the provider webhook, or the stale
// booking sweep.
type Reconciler struct {
	gateway     payment.Gateway
	seats       SeatLedger
	bookings    BookingStore
	sessions    SessionStore
	events      *queue.Publisher
	log         *zap.Logger
	maxAttempts int
	interval    time.Duration
	now         func() time.Time

	// movieTitle enriches confirmation events; nil leaves the title blank.
	movieTitle func(ctx context.Context, showID uuid.UUID) string
}

func New(
	gateway payment.Gateway,
	seats SeatLedger,
	bookings BookingStore,
	sessions SessionStore,
	events *queue.Publisher,
	maxAttempts int,
	interval time.Duration,
	log *zap.Logger,
) *Reconciler {
	return &Reconciler{
		gateway:     gateway,
		seats:       seats,
		bookings:    bookings,
		sessions:    sessions,
		events:      events,
		log:         log.With(zap.String("component", "payment_reconciler")),
		maxAttempts: maxAttempts,
		interval:    interval,
		now:         time.Now,
	}
}

// WithMovieTitles sets the lookup used to enrich confirmation events.
func (r *Reconciler) WithMovieTitles(lookup func(ctx context.Context, showID uuid.UUID) string) *Reconciler {
	r.movieTitle = lookup
	return r
}

// Resolve polls the provider until the session settles or the attempt
// budget runs out. Transport errors consume an attempt like a pending
// answer does; only a definitive provider status mutates the booking.
func (r *Reconciler) Resolve(ctx context.Context, booking *entity.Booking, session *entity.PaymentSession) (entity.BookingStatus, error) {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		status, err := r.gateway.GetStatus(ctx, session.SessionID)
		if err != nil {
			r.log.Warn("provider status check failed",
				zap.String("session_id", session.SessionID),
				zap.Int("attempt", attempt),
				zap.Error(err))
		} else {
			switch status {
			case entity.PaymentStatusPaid:
				return r.settlePaid(ctx, booking, session)
			case entity.PaymentStatusExpired, entity.PaymentStatusFailed:
				return r.settleUnpaid(ctx, booking, session, status)
			}
		}

		if attempt == r.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return booking.Status, ctx.Err()
		case <-time.After(r.interval):
		}
	}
	return booking.Status, ErrReconcileTimeout
}

// ApplyStatus settles a booking from an authoritative provider outcome,
// e.g. a webhook. Safe to call more than once: a booking already out of
// pending_payment is returned as is, and a non-terminal status is a no-op.
func (r *Reconciler) ApplyStatus(ctx context.Context, booking *entity.Booking, session *entity.PaymentSession, status entity.PaymentStatus) (entity.BookingStatus, error) {
	if booking.Status != entity.BookingStatusPendingPayment {
		return booking.Status, nil
	}
	switch status {
	case entity.PaymentStatusPaid:
		return r.settlePaid(ctx, booking, session)
	case entity.PaymentStatusExpired, entity.PaymentStatusFailed:
		return r.settleUnpaid(ctx, booking, session, status)
	default:
		return booking.Status, nil
	}
}

func (r *Reconciler) settlePaid(ctx context.Context, booking *entity.Booking, session *entity.PaymentSession) (entity.BookingStatus, error) {
	if !session.Status.Terminal() {
		if err := r.sessions.UpdateStatus(ctx, session.SessionID, entity.PaymentStatusPaid); err != nil {
			return booking.Status, fmt.Errorf("record payment for booking %s: %w", booking.ID, err)
		}
		session.Status = entity.PaymentStatusPaid
	}

	seats, err := r.seats.Confirm(ctx, booking.ShowID, booking.ID)
	if errors.Is(err, ledger.ErrHoldExpired) {
		return r.captureConflict(ctx, booking, session)
	}
	if err != nil {
		return booking.Status, fmt.Errorf("confirm seats for booking %s: %w", booking.ID, err)
	}

	if err := r.bookings.UpdateStatus(ctx, booking.ID, entity.BookingStatusConfirmed); err != nil {
		return booking.Status, fmt.Errorf("confirm booking %s: %w", booking.ID, err)
	}
	booking.Status = entity.BookingStatusConfirmed

	var title string
	if r.movieTitle != nil {
		title = r.movieTitle(ctx, booking.ShowID)
	}
	r.log.Info("booking confirmed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_id", booking.OrderID),
		zap.Strings("seats", seats))
	_ = r.events.BookingConfirmed(ctx, queue.BookingConfirmedEvent{
		BookingID:   booking.ID.String(),
		OrderID:     booking.OrderID,
		UserID:      booking.UserID.String(),
		ShowID:      booking.ShowID.String(),
		MovieTitle:  title,
		Seats:       seats,
		TotalAmount: booking.TotalAmount,
		ConfirmedAt: r.now().UTC().Format(time.RFC3339),
	})
	return entity.BookingStatusConfirmed, nil
}

func (r *Reconciler) captureConflict(ctx context.Context, booking *entity.Booking, session *entity.PaymentSession) (entity.BookingStatus, error) {
	if err := r.bookings.UpdateStatus(ctx, booking.ID, entity.BookingStatusCancelled); err != nil {
		return booking.Status, fmt.Errorf("cancel conflicted booking %s: %w", booking.ID, err)
	}
	booking.Status = entity.BookingStatusCancelled

	r.log.Error("payment captured after hold expired",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_id", booking.OrderID),
		zap.String("session_id", session.SessionID),
		zap.Float64("amount", booking.TotalAmount))
	_ = r.events.PaymentConflict(ctx, queue.PaymentConflictEvent{
		BookingID:  booking.ID.String(),
		OrderID:    booking.OrderID,
		UserID:     booking.UserID.String(),
		ShowID:     booking.ShowID.String(),
		SessionID:  session.SessionID,
		Amount:     booking.TotalAmount,
		DetectedAt: r.now().UTC().Format(time.RFC3339),
	})
	return entity.BookingStatusCancelled, ErrPaymentCaptureConflict
}

func (r *Reconciler) settleUnpaid(ctx context.Context, booking *entity.Booking, session *entity.PaymentSession, status entity.PaymentStatus) (entity.BookingStatus, error) {
	if err := r.sessions.UpdateStatus(ctx, session.SessionID, status); err != nil {
		return booking.Status, fmt.Errorf("record payment outcome for booking %s: %w", booking.ID, err)
	}
	session.Status = status
	if err := r.seats.Release(ctx, booking.ShowID, booking.ID); err != nil {
		return booking.Status, fmt.Errorf("release seats for booking %s: %w", booking.ID, err)
	}
	if err := r.bookings.UpdateStatus(ctx, booking.ID, entity.BookingStatusExpired); err != nil {
		return booking.Status, fmt.Errorf("expire booking %s: %w", booking.ID, err)
	}
	booking.Status = entity.BookingStatusExpired

	r.log.Info("booking expired, payment not completed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("payment_status", string(status)))
	return entity.BookingStatusExpired, nil
}

// RunExpirySweeper settles bookings stuck in pending_payment well past the
// hold TTL, asking the provider for the final word on each one.
func (r *Reconciler) RunExpirySweeper(ctx context.Context, interval, staleAfter time.Duration) {
	r.log.Info("booking expiry sweeper started",
		zap.Duration("interval", interval),
		zap.Duration("stale_after", staleAfter))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("booking expiry sweeper stopped")
			return
		case <-ticker.C:
			r.sweepStale(ctx, staleAfter)
		}
	}
}

func (r *Reconciler) sweepStale(ctx context.Context, staleAfter time.Duration) {
	stale, err := r.bookings.FindStalePending(ctx, r.now().Add(-staleAfter))
	if err != nil {
		r.log.Error("stale booking scan failed", zap.Error(err))
		return
	}

	for _, booking := range stale {
		r.sweepBooking(ctx, booking)
	}
}

// sweepBooking settles one abandoned pending booking. The provider is
// consulted first: a payment captured while nobody was polling has to
// surface as a capture conflict, not vanish into an expiry. Without a
// definitive provider answer the booking stays pending for the next sweep.
func (r *Reconciler) sweepBooking(ctx context.Context, booking *entity.Booking) {
	if booking.PaymentSessionID == nil {
		// No checkout session was ever opened, there is no provider to ask.
		if err := r.seats.Release(ctx, booking.ShowID, booking.ID); err != nil {
			r.log.Error("failed to release stale booking seats",
				zap.String("booking_id", booking.ID.String()), zap.Error(err))
			return
		}
		if err := r.bookings.UpdateStatus(ctx, booking.ID, entity.BookingStatusExpired); err != nil {
			r.log.Error("failed to expire stale booking",
				zap.String("booking_id", booking.ID.String()), zap.Error(err))
			return
		}
		booking.Status = entity.BookingStatusExpired
		r.log.Info("stale booking expired, no payment session",
			zap.String("booking_id", booking.ID.String()),
			zap.String("order_id", booking.OrderID))
		return
	}

	session, err := r.sessions.FindBySessionID(ctx, *booking.PaymentSessionID)
	if err != nil {
		r.log.Error("failed to load stale booking session",
			zap.String("booking_id", booking.ID.String()), zap.Error(err))
		return
	}
	if session == nil {
		r.log.Error("stale booking references a missing session",
			zap.String("booking_id", booking.ID.String()),
			zap.String("session_id", *booking.PaymentSessionID))
		return
	}

	status, err := r.gateway.GetStatus(ctx, session.SessionID)
	if err != nil {
		r.log.Warn("provider unreachable, stale booking left pending",
			zap.String("booking_id", booking.ID.String()),
			zap.String("session_id", session.SessionID),
			zap.Error(err))
		return
	}

	result, err := r.ApplyStatus(ctx, booking, session, status)
	if err != nil && !errors.Is(err, ErrPaymentCaptureConflict) {
		r.log.Error("failed to settle stale booking",
			zap.String("booking_id", booking.ID.String()), zap.Error(err))
		return
	}
	if result == entity.BookingStatusPendingPayment {
		r.log.Info("stale booking still pending at provider",
			zap.String("booking_id", booking.ID.String()),
			zap.String("session_id", session.SessionID))
		return
	}
	r.log.Info("stale booking settled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_id", booking.OrderID),
		zap.String("status", string(result)))
}
