package wire

import (
	"parking-booking/internal/adaptor"
	"parking-booking/pkg/middleware"
	"parking-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAnalytics(
	r chi.Router,
	analyticsHandler *adaptor.AnalyticsHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== COMPANY ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))
		r.Use(middleware.RequireRole(utils.RoleCompany, log))

		// GET /api/analytics/company/summary - Monthly summary across owned lots
		r.Get("/api/analytics/company/summary", analyticsHandler.GetCompanySummary)

		// GET /api/analytics/company/revenue-chart - Monthly revenue chart points
		r.Get("/api/analytics/company/revenue-chart", analyticsHandler.GetRevenueChart)

		// GET /api/analytics/company/occupancy/live - Current occupancy snapshot
		r.Get("/api/analytics/company/occupancy/live", analyticsHandler.GetLiveOccupancy)

		// GET /api/company/bookings - Booking history across owned lots
		r.Get("/api/company/bookings", analyticsHandler.GetCompanyBookings)
	})
}
