package adaptor

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cinetix/internal/dto/request"
	"cinetix/internal/usecase"
	"cinetix/pkg/utils"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// CreateBooking handles POST /api/bookings. On success the booking is
// already in pending payment with its seats held, and the response carries
// the checkout session the client should redirect to.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	var req request.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	checkout, err := h.service.CreateBooking(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create booking")
		return
	}
	utils.ResponseCreated(w, "Booking created", checkout)
}

// GetCheckout handles POST /api/bookings/{id}/checkout, re-issuing the
// checkout session of a booking still pending payment.
func (h *BookingHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	checkout, err := h.service.GetCheckout(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get checkout")
		return
	}
	utils.ResponseSuccess(w, "Checkout session retrieved", checkout)
}

// GetMyBookings handles GET /api/bookings/my with page and per_page query
// parameters.
func (h *BookingHandler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	page := request.PaginatedRequest{
		Page:    utils.ParseInt(r.URL.Query().Get("page"), 1),
		PerPage: utils.ParseInt(r.URL.Query().Get("per_page"), 10),
	}

	bookings, err := h.service.ListUserBookings(r.Context(), userID, &page)
	if err != nil {
		writeServiceError(w, h.log, err, "list bookings")
		return
	}
	utils.ResponseSuccess(w, "Bookings retrieved", bookings)
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}
	role, _ := utils.GetRoleFromContext(r.Context())

	booking, err := h.service.GetBooking(r.Context(), userID, role, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get booking")
		return
	}
	utils.ResponseSuccess(w, "Booking retrieved", booking)
}

// CancelBooking handles POST /api/bookings/{id}/cancel. Only the owner of
// a confirmed booking may cancel; the seats go back to available.
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	booking, err := h.service.CancelBooking(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "cancel booking")
		return
	}
	utils.ResponseSuccess(w, "Booking cancelled", booking)
}
