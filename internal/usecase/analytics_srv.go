package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"parking-booking/internal/data/repository"
	"parking-booking/internal/dto/request"
	"parking-booking/internal/dto/response"
	apperrors "parking-booking/pkg/errors"
	"parking-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AnalyticsService interface {
	GetCompanySummary(ctx context.Context, ownerID uuid.UUID, month, year int) (*response.CompanySummaryResponse, error)
	GetRevenueChart(ctx context.Context, ownerID uuid.UUID, months, year int) ([]response.RevenueChartPoint, error)
	GetLiveOccupancy(ctx context.Context, ownerID uuid.UUID) (*response.LiveOccupancyResponse, error)
	GetCompanyBookings(ctx context.Context, ownerID uuid.UUID, req *request.HistoryRequest) (*response.PaginatedResponse[response.BookingResponse], error)
}

type analyticsService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAnalyticsService(repo *repository.Repository, log *zap.Logger) AnalyticsService {
	return &analyticsService{
		repo: repo,
		log:  log.With(zap.String("service", "analytics")),
	}
}

func (s *analyticsService) GetCompanySummary(ctx context.Context, ownerID uuid.UUID, month, year int) (*response.CompanySummaryResponse, error) {
	now := time.Now().UTC()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return nil, apperrors.InvalidArgument("month must be between 1 and 12")
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)
	prevStart := monthStart.AddDate(0, -1, 0)
	prevEnd := monthStart.Add(-time.Nanosecond)

	lots, err := s.repo.Lot.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return &response.CompanySummaryResponse{}, nil
	}

	lotIDs := make([]uuid.UUID, len(lots))
	totalSpots := 0
	for i, lot := range lots {
		lotIDs[i] = lot.ID
		totalSpots += lot.TotalSpots
	}

	revenue, err := s.repo.Booking.SumRevenueByLotIDs(ctx, lotIDs, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	prevRevenue, err := s.repo.Booking.SumRevenueByLotIDs(ctx, lotIDs, prevStart, prevEnd)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.Booking.CountCreatedByLotIDs(ctx, lotIDs, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	prevBookings, err := s.repo.Booking.CountCreatedByLotIDs(ctx, lotIDs, prevStart, prevEnd)
	if err != nil {
		return nil, err
	}

	customers, err := s.repo.Booking.CountDistinctBookers(ctx, lotIDs, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	newCustomers, err := s.repo.Booking.CountNewBookers(ctx, lotIDs, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	occupied, err := s.repo.Booking.CountOccupiedByLotIDs(ctx, lotIDs, now)
	if err != nil {
		return nil, err
	}

	occupancyPct := 0
	if totalSpots > 0 {
		occupancyPct = int(math.Round(float64(occupied) / float64(totalSpots) * 100))
	}

	return &response.CompanySummaryResponse{
		Revenue: response.RevenueSummary{
			Total:            revenue,
			PreviousMonth:    prevRevenue,
			GrowthPercentage: growthPercentage(revenue, prevRevenue),
		},
		Bookings: response.BookingsSummary{
			Total:            bookings,
			PreviousMonth:    prevBookings,
			GrowthPercentage: growthPercentage(float64(bookings), float64(prevBookings)),
		},
		Customers: response.CustomersSummary{
			Total:              customers,
			NewCustomers:       newCustomers,
			ReturningCustomers: customers - newCustomers,
		},
		Occupancy: response.OccupancySummary{
			TotalSpots:          totalSpots,
			OccupiedSpots:       occupied,
			AvailableSpots:      int64(totalSpots) - occupied,
			OccupancyPercentage: occupancyPct,
		},
	}, nil
}

// GetRevenueChart returns one point per month, newest last, covering the
// trailing window that ends at the current month of the requested year.
func (s *analyticsService) GetRevenueChart(ctx context.Context, ownerID uuid.UUID, months, year int) ([]response.RevenueChartPoint, error) {
	now := time.Now().UTC()
	if year == 0 {
		year = now.Year()
	}
	if months < 1 || months > 24 {
		return nil, apperrors.InvalidArgument("months must be between 1 and 24")
	}

	lots, err := s.repo.Lot.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return []response.RevenueChartPoint{}, nil
	}

	lotIDs := make([]uuid.UUID, len(lots))
	for i, lot := range lots {
		lotIDs[i] = lot.ID
	}

	anchor := time.Date(year, now.Month(), 1, 0, 0, 0, 0, time.UTC)
	chart := make([]response.RevenueChartPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		monthStart := anchor.AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

		revenue, err := s.repo.Booking.SumRevenueByLotIDs(ctx, lotIDs, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}
		bookings, err := s.repo.Booking.CountCreatedByLotIDs(ctx, lotIDs, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}

		chart = append(chart, response.RevenueChartPoint{
			Month:    monthStart.Format("Jan"),
			Revenue:  revenue,
			Bookings: bookings,
		})
	}

	return chart, nil
}

// GetLiveOccupancy reports which spots are physically occupied right now
// across the company's lots, with the currently running bookings. Computed
// from the bookings table, never from the advisory counter.
func (s *analyticsService) GetLiveOccupancy(ctx context.Context, ownerID uuid.UUID) (*response.LiveOccupancyResponse, error) {
	now := time.Now().UTC()

	lots, err := s.repo.Lot.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return &response.LiveOccupancyResponse{
			ByLot:          []response.LotOccupancy{},
			ActiveBookings: []response.ActiveBookingInfo{},
			LastUpdated:    now,
		}, nil
	}

	lotIDs := make([]uuid.UUID, len(lots))
	lotNames := make(map[uuid.UUID]string, len(lots))
	totalSpots := 0
	for i, lot := range lots {
		lotIDs[i] = lot.ID
		lotNames[lot.ID] = lot.Name
		totalSpots += lot.TotalSpots
	}

	active, err := s.repo.Booking.FindActiveByLotIDs(ctx, lotIDs, now)
	if err != nil {
		return nil, err
	}

	occupiedPerLot := make(map[uuid.UUID]int, len(lots))
	activeInfos := make([]response.ActiveBookingInfo, len(active))
	for i, booking := range active {
		occupiedPerLot[booking.LotID]++
		remaining := booking.EndTime.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		activeInfos[i] = response.ActiveBookingInfo{
			SpotNumber: booking.SpotNumber,
			LotName:    lotNames[booking.LotID],
			StartTime:  booking.StartTime,
			EndTime:    booking.EndTime,
			TimeRemaining: fmt.Sprintf("%dh %dm",
				int(remaining.Hours()), int(remaining.Minutes())%60),
		}
	}

	byLot := make([]response.LotOccupancy, len(lots))
	for i, lot := range lots {
		occupied := occupiedPerLot[lot.ID]
		pct := 0
		if lot.TotalSpots > 0 {
			pct = int(math.Round(float64(occupied) / float64(lot.TotalSpots) * 100))
		}
		byLot[i] = response.LotOccupancy{
			LotID:               lot.ID.String(),
			Name:                lot.Name,
			TotalSpots:          lot.TotalSpots,
			OccupiedSpots:       occupied,
			AvailableSpots:      lot.TotalSpots - occupied,
			OccupancyPercentage: pct,
		}
	}

	occupied := len(active)
	occupancyPct := 0
	if totalSpots > 0 {
		occupancyPct = int(math.Round(float64(occupied) / float64(totalSpots) * 100))
	}

	return &response.LiveOccupancyResponse{
		Overview: response.OccupancySummary{
			TotalSpots:          totalSpots,
			OccupiedSpots:       int64(occupied),
			AvailableSpots:      int64(totalSpots - occupied),
			OccupancyPercentage: occupancyPct,
		},
		ByLot:          byLot,
		ActiveBookings: activeInfos,
		LastUpdated:    now,
	}, nil
}

func (s *analyticsService) GetCompanyBookings(ctx context.Context, ownerID uuid.UUID, req *request.HistoryRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.InvalidArgument(utils.FormatValidationErrors(errs))
	}

	lots, err := s.repo.Lot.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	lotIDs := make([]uuid.UUID, 0, len(lots))
	for _, lot := range lots {
		lotIDs = append(lotIDs, lot.ID)
	}

	if req.LotID != "" {
		// Narrowing to one lot only works if the company owns it.
		wanted, err := uuid.Parse(req.LotID)
		if err != nil {
			return nil, apperrors.InvalidArgument("invalid lot ID")
		}
		owned := false
		for _, id := range lotIDs {
			if id == wanted {
				owned = true
				break
			}
		}
		if !owned {
			return nil, apperrors.Forbidden("parking lot is not owned by this company")
		}
		lotIDs = []uuid.UUID{wanted}
	}

	if len(lotIDs) == 0 {
		return response.NewPaginatedResponse([]response.BookingResponse{}, req.Page, req.Limit(), 0), nil
	}

	filter, err := historyFilterFromRequest(req)
	if err != nil {
		return nil, err
	}
	// Company views see cancelled bookings unless a status filter says
	// otherwise.
	filter.IncludeCancelled = true

	bookings, err := s.repo.Booking.FindByLotIDs(ctx, lotIDs, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Booking.CountByLotIDs(ctx, lotIDs, filter)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	items := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		items[i] = response.BookingToResponse(booking, now)
	}

	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}

func growthPercentage(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return math.Round((current-previous)/previous*100*100) / 100
}
