package adaptor

import (
	"net/http"
	"time"

	"parking-booking/internal/dto/request"
	"parking-booking/internal/usecase"
	"parking-booking/pkg/utils"

	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	service usecase.AnalyticsService
	log     *zap.Logger
}

func NewAnalyticsHandler(service usecase.AnalyticsService, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		log:     log.With(zap.String("handler", "analytics")),
	}
}

// GetCompanySummary handles GET /api/analytics/company/summary (company only).
// Defaults to the current month when month/year are omitted.
func (h *AnalyticsHandler) GetCompanySummary(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	now := time.Now().UTC()
	query := r.URL.Query()
	month := utils.ParseInt(query.Get("month"), int(now.Month()))
	year := utils.ParseInt(query.Get("year"), now.Year())

	summary, err := h.service.GetCompanySummary(r.Context(), ownerID, month, year)
	if err != nil {
		handleServiceError(w, h.log, err, "get company summary")
		return
	}

	utils.ResponseSuccess(w, "success", summary)
}

// GetRevenueChart handles GET /api/analytics/company/revenue-chart (company
// only). Returns monthly revenue/booking points, oldest first.
func (h *AnalyticsHandler) GetRevenueChart(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	months := utils.ParseInt(query.Get("months"), 12)
	year := utils.ParseInt(query.Get("year"), time.Now().UTC().Year())

	chart, err := h.service.GetRevenueChart(r.Context(), ownerID, months, year)
	if err != nil {
		handleServiceError(w, h.log, err, "get revenue chart")
		return
	}

	utils.ResponseSuccess(w, "success", chart)
}

// GetLiveOccupancy handles GET /api/analytics/company/occupancy/live
// (company only)
func (h *AnalyticsHandler) GetLiveOccupancy(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	occupancy, err := h.service.GetLiveOccupancy(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, h.log, err, "get live occupancy")
		return
	}

	utils.ResponseSuccess(w, "success", occupancy)
}

// GetCompanyBookings handles GET /api/company/bookings (company only)
func (h *AnalyticsHandler) GetCompanyBookings(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.HistoryRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("limit"), 10),
		},
		Status:        query.Get("status"),
		PaymentStatus: query.Get("paymentStatus"),
		TimeFilter:    query.Get("timeFilter"),
		StartDate:     query.Get("startDate"),
		EndDate:       query.Get("endDate"),
		LotID:         query.Get("lotId"),
	}

	bookings, err := h.service.GetCompanyBookings(r.Context(), ownerID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "get company bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}
