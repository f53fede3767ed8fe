package adaptor

import (
	"net/http"

	"go.uber.org/zap"

	"cinetix/internal/usecase"
	"cinetix/pkg/utils"
)

type AdminHandler struct {
	bookings usecase.BookingService
	admin    usecase.AdminService
	log      *zap.Logger
}

func NewAdminHandler(bookings usecase.BookingService, admin usecase.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		bookings: bookings,
		admin:    admin,
		log:      log,
	}
}

// GetAllBookings handles GET /api/admin/bookings
func (h *AdminHandler) GetAllBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListAllBookings(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "list all bookings")
		return
	}
	utils.ResponseSuccess(w, "Bookings retrieved", bookings)
}

// GetAnalytics handles GET /api/admin/analytics
func (h *AdminHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.admin.GetAnalytics(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "get analytics")
		return
	}
	utils.ResponseSuccess(w, "Analytics retrieved", analytics)
}
