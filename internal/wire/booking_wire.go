package wire

import (
	"parking-booking/internal/adaptor"
	"parking-booking/pkg/middleware"
	"parking-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/availability - Check spot availability for a window
	r.Get("/api/availability", bookingHandler.CheckAvailability)

	// ==================== PROTECTED ROUTES (require identity) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))

		// POST /api/bookings - Create new booking with automatic spot assignment
		r.Post("/api/bookings", bookingHandler.CreateBooking)

		// PUT /api/bookings/{id}/cancel - Cancel own booking before it starts
		r.Put("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)

		// GET /api/user/bookings - View own booking history
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)

		// GET /api/user/bookings/stats - Aggregate stats for own bookings
		r.Get("/api/user/bookings/stats", bookingHandler.GetUserBookingStats)
	})
}
