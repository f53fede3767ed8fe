package adaptor

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"cinetix/internal/ledger"
	"cinetix/internal/reconcile"
	"cinetix/internal/usecase"
	"cinetix/pkg/utils"
)

// writeServiceError maps service errors to HTTP responses. Seat conflicts
// and capture conflicts carry structured detail; everything unexpected
// collapses to a 500 without leaking internals.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, op string) {
	var conflict *ledger.SeatConflictError
	switch {
	case errors.As(err, &conflict):
		utils.ResponseConflict(w, "Some seats are no longer available", map[string]any{
			"conflicting_seats": conflict.Seats,
		})
	case errors.Is(err, reconcile.ErrPaymentCaptureConflict):
		utils.ResponseConflict(w, "Payment was captured but the seat hold expired; the booking was cancelled for follow-up", nil)
	case errors.Is(err, reconcile.ErrReconcileTimeout):
		utils.ResponseJSON(w, http.StatusAccepted, true, "Payment still pending, check again later", nil, nil)
	case errors.Is(err, usecase.ErrNotFound):
		utils.ResponseNotFound(w, "Resource not found")
	case errors.Is(err, usecase.ErrForbidden):
		utils.ResponseForbidden(w, "You do not have access to this resource")
	case errors.Is(err, usecase.ErrInvalidCredentials):
		utils.ResponseUnauthorized(w, "Invalid email or password")
	case errors.Is(err, usecase.ErrEmailTaken):
		utils.ResponseConflict(w, "Email already registered", nil)
	case errors.Is(err, usecase.ErrUnknownSeats):
		utils.ResponseBadRequest(w, "One or more seats do not exist for this screen", nil)
	case errors.Is(err, usecase.ErrNotCancellable):
		utils.ResponseConflict(w, "Only confirmed bookings can be cancelled", nil)
	case errors.Is(err, usecase.ErrPaymentSettled):
		utils.ResponseConflict(w, "Booking payment is already settled", nil)
	case errors.Is(err, usecase.ErrScreenInUse):
		utils.ResponseConflict(w, "Theater has scheduled shows", nil)
	default:
		log.Error("Unhandled service error", zap.String("op", op), zap.Error(err))
		utils.ResponseInternalError(w, "Something went wrong")
	}
}
