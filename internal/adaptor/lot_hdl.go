package adaptor

import (
	"encoding/json"
	"net/http"

	"parking-booking/internal/dto/request"
	"parking-booking/internal/usecase"
	"parking-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type LotHandler struct {
	service usecase.LotService
	log     *zap.Logger
}

func NewLotHandler(service usecase.LotService, log *zap.Logger) *LotHandler {
	return &LotHandler{
		service: service,
		log:     log.With(zap.String("handler", "lot")),
	}
}

// GetLots handles GET /api/parking-lots (public)
func (h *LotHandler) GetLots(w http.ResponseWriter, r *http.Request) {
	lots, err := h.service.GetLots(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list parking lots")
		return
	}

	utils.ResponseSuccess(w, "success", lots)
}

// GetMyLots handles GET /api/company/parking-lots (company only)
func (h *LotHandler) GetMyLots(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	lots, err := h.service.GetMyLots(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, h.log, err, "list own parking lots")
		return
	}

	utils.ResponseSuccess(w, "success", lots)
}

// SearchLots handles GET /api/parking-lots/search (public).
// Accepts query, location, minPrice and maxPrice; at least one is required.
func (h *LotHandler) SearchLots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.SearchLotsRequest{
		Query:    query.Get("query"),
		Location: query.Get("location"),
		MinPrice: utils.ParseFloat(query.Get("minPrice")),
		MaxPrice: utils.ParseFloat(query.Get("maxPrice")),
	}

	lots, err := h.service.SearchLots(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "search parking lots")
		return
	}

	utils.ResponseSuccess(w, "success", lots)
}

// GetLot handles GET /api/parking-lots/{id} (public)
func (h *LotHandler) GetLot(w http.ResponseWriter, r *http.Request) {
	lot, err := h.service.GetLot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get parking lot")
		return
	}

	utils.ResponseSuccess(w, "success", lot)
}

// CreateLot handles POST /api/parking-lots (company only)
func (h *LotHandler) CreateLot(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateParkingLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	lot, err := h.service.CreateLot(r.Context(), ownerID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create parking lot")
		return
	}

	utils.ResponseCreated(w, "success", lot)
}

// UpdateLot handles PUT /api/parking-lots/{id} (company only)
func (h *LotHandler) UpdateLot(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateParkingLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	lot, err := h.service.UpdateLot(r.Context(), ownerID, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update parking lot")
		return
	}

	utils.ResponseSuccess(w, "success", lot)
}

// DeleteLot handles DELETE /api/parking-lots/{id} (company only)
func (h *LotHandler) DeleteLot(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.DeleteLot(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete parking lot")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
