package wire

import (
	"parking-booking/internal/adaptor"
	"parking-booking/pkg/middleware"
	"parking-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireLot(
	r chi.Router,
	lotHandler *adaptor.LotHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/parking-lots - List parking lots (anyone can browse)
	r.Get("/api/parking-lots", lotHandler.GetLots)

	// GET /api/parking-lots/search - Search by name, location and price (public)
	r.Get("/api/parking-lots/search", lotHandler.SearchLots)

	// GET /api/parking-lots/{id} - Parking lot details (public)
	r.Get("/api/parking-lots/{id}", lotHandler.GetLot)

	// ==================== COMPANY ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))
		r.Use(middleware.RequireRole(utils.RoleCompany, log))

		// GET /api/company/parking-lots - Lots owned by the caller
		r.Get("/api/company/parking-lots", lotHandler.GetMyLots)

		// Company lot management endpoints
		r.Post("/api/parking-lots", lotHandler.CreateLot)        // POST /api/parking-lots
		r.Put("/api/parking-lots/{id}", lotHandler.UpdateLot)    // PUT /api/parking-lots/{id}
		r.Delete("/api/parking-lots/{id}", lotHandler.DeleteLot) // DELETE /api/parking-lots/{id}
	})
}
