package response

// AnalyticsResponse summarizes platform activity for the admin dashboard.
type AnalyticsResponse struct {
	TotalMovies       int64   `json:"total_movies"`
	TotalTheaters     int64   `json:"total_theaters"`
	TotalShows        int64   `json:"total_shows"`
	TotalBookings     int64   `json:"total_bookings"`
	ConfirmedBookings int64   `json:"confirmed_bookings"`
	PendingBookings   int64   `json:"pending_bookings"`
	CancelledBookings int64   `json:"cancelled_bookings"`
	ExpiredBookings   int64   `json:"expired_bookings"`
	TotalRevenue      float64 `json:"total_revenue"`
}
