package usecase

import (
	"context"
	"testing"
	"time"

	"parking-booking/internal/data/entity"
	"parking-booking/internal/dto/request"
	"parking-booking/internal/dto/response"
	apperrors "parking-booking/pkg/errors"
	"parking-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func addAnalyticsBooking(mem *memBookingRepo, lotID uuid.UUID, booker uuid.UUID, createdAt time.Time, amount float64, paid bool) {
	b := &entity.Booking{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: createdAt, UpdatedAt: createdAt},
		LotID:      lotID,
		SpotNumber: 1,
		StartTime:  createdAt.Add(time.Hour),
		EndTime:    createdAt.Add(3 * time.Hour),
		BookerID:   booker,
		Payment: entity.Payment{
			Reference: utils.GeneratePaymentReference(),
			Amount:    amount,
			Status:    entity.PaymentStatusPending,
		},
		Status: entity.BookingStatusBooked,
	}
	if paid {
		b.Payment.Status = entity.PaymentStatusSuccess
		paidAt := createdAt
		b.Payment.PaidAt = &paidAt
	}
	mem.mu.Lock()
	mem.put(b)
	mem.mu.Unlock()
}

func TestGetCompanySummary(t *testing.T) {
	repo := newMemRepository()
	svc := NewAnalyticsService(repo, zap.NewNop())
	ctx := context.Background()

	lot := seedLot(t, repo, 10, 5)
	mem := repo.Booking.(*memBookingRepo)

	month := 6
	year := 2026
	inMonth := time.Date(year, time.Month(month), 10, 12, 0, 0, 0, time.UTC)
	prevMonth := inMonth.AddDate(0, -1, 0)

	returning := uuid.New()
	addAnalyticsBooking(mem, lot.ID, returning, prevMonth, 100, true) // previous month
	addAnalyticsBooking(mem, lot.ID, returning, inMonth, 120, true)   // returning customer
	addAnalyticsBooking(mem, lot.ID, uuid.New(), inMonth, 80, true)   // new customer
	addAnalyticsBooking(mem, lot.ID, uuid.New(), inMonth, 60, false)  // unpaid, counts as booking only

	summary, err := svc.GetCompanySummary(ctx, lot.OwnerID, month, year)
	require.NoError(t, err)

	assert.Equal(t, 200.0, summary.Revenue.Total, "only paid bookings contribute revenue")
	assert.Equal(t, 100.0, summary.Revenue.PreviousMonth)
	assert.Equal(t, 100.0, summary.Revenue.GrowthPercentage)

	assert.EqualValues(t, 3, summary.Bookings.Total)
	assert.EqualValues(t, 1, summary.Bookings.PreviousMonth)
	assert.Equal(t, 200.0, summary.Bookings.GrowthPercentage)

	assert.EqualValues(t, 3, summary.Customers.Total)
	assert.EqualValues(t, 2, summary.Customers.NewCustomers)
	assert.EqualValues(t, 1, summary.Customers.ReturningCustomers)

	assert.Equal(t, 10, summary.Occupancy.TotalSpots)
}

func TestGetCompanySummaryEdges(t *testing.T) {
	repo := newMemRepository()
	svc := NewAnalyticsService(repo, zap.NewNop())
	ctx := context.Background()

	t.Run("no lots yields empty summary", func(t *testing.T) {
		summary, err := svc.GetCompanySummary(ctx, uuid.New(), 6, 2026)
		require.NoError(t, err)
		assert.Zero(t, summary.Revenue.Total)
		assert.Zero(t, summary.Occupancy.TotalSpots)
	})

	t.Run("invalid month", func(t *testing.T) {
		lot := seedLot(t, repo, 5, 4)
		_, err := svc.GetCompanySummary(ctx, lot.OwnerID, 13, 2026)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeInvalidArgument))
	})

	t.Run("zero growth when previous month is empty", func(t *testing.T) {
		lot := seedLot(t, repo, 5, 4)
		mem := repo.Booking.(*memBookingRepo)
		addAnalyticsBooking(mem, lot.ID, uuid.New(), time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC), 50, true)

		summary, err := svc.GetCompanySummary(ctx, lot.OwnerID, 6, 2026)
		require.NoError(t, err)
		assert.Equal(t, 0.0, summary.Revenue.GrowthPercentage)
	})
}

func TestGetCompanyBookings(t *testing.T) {
	repo := newMemRepository()
	svc := NewAnalyticsService(repo, zap.NewNop())
	ctx := context.Background()

	lot := seedLot(t, repo, 10, 5)
	otherLot := seedLot(t, repo, 10, 5)
	mem := repo.Booking.(*memBookingRepo)

	now := time.Now().UTC().Truncate(time.Second)
	addAnalyticsBooking(mem, lot.ID, uuid.New(), now, 50, true)
	addAnalyticsBooking(mem, lot.ID, uuid.New(), now, 50, false)
	addAnalyticsBooking(mem, otherLot.ID, uuid.New(), now, 50, true)

	baseReq := func() *request.HistoryRequest {
		return &request.HistoryRequest{
			PaginatedRequest: request.PaginatedRequest{Page: 1, PerPage: 10},
		}
	}

	t.Run("scoped to owned lots", func(t *testing.T) {
		resp, err := svc.GetCompanyBookings(ctx, lot.OwnerID, baseReq())
		require.NoError(t, err)
		assert.Len(t, resp.Data, 2)
	})

	t.Run("narrowed to one owned lot", func(t *testing.T) {
		req := baseReq()
		req.LotID = lot.ID.String()
		resp, err := svc.GetCompanyBookings(ctx, lot.OwnerID, req)
		require.NoError(t, err)
		assert.Len(t, resp.Data, 2)
	})

	t.Run("foreign lot is forbidden", func(t *testing.T) {
		req := baseReq()
		req.LotID = otherLot.ID.String()
		_, err := svc.GetCompanyBookings(ctx, lot.OwnerID, req)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
	})

	t.Run("payment status filter", func(t *testing.T) {
		req := baseReq()
		req.PaymentStatus = string(entity.PaymentStatusSuccess)
		resp, err := svc.GetCompanyBookings(ctx, lot.OwnerID, req)
		require.NoError(t, err)
		assert.Len(t, resp.Data, 1)
	})

	t.Run("company with no lots sees an empty page", func(t *testing.T) {
		resp, err := svc.GetCompanyBookings(ctx, uuid.New(), baseReq())
		require.NoError(t, err)
		assert.Empty(t, resp.Data)
		assert.EqualValues(t, 0, resp.Pagination.Total)
	})
}

func TestGetRevenueChart(t *testing.T) {
	repo := newMemRepository()
	svc := NewAnalyticsService(repo, zap.NewNop())
	ctx := context.Background()

	lot := seedLot(t, repo, 10, 5)
	mem := repo.Booking.(*memBookingRepo)

	now := time.Now().UTC()
	curMonth := time.Date(now.Year(), now.Month(), 1, 12, 0, 0, 0, time.UTC)
	prevMonth := curMonth.AddDate(0, -1, 0)

	addAnalyticsBooking(mem, lot.ID, uuid.New(), curMonth, 120, true)
	addAnalyticsBooking(mem, lot.ID, uuid.New(), curMonth, 60, false) // unpaid, booking count only
	addAnalyticsBooking(mem, lot.ID, uuid.New(), prevMonth, 100, true)

	chart, err := svc.GetRevenueChart(ctx, lot.OwnerID, 3, now.Year())
	require.NoError(t, err)
	require.Len(t, chart, 3)

	// Oldest first; the trailing month carries no data.
	assert.Equal(t, curMonth.AddDate(0, -2, 0).Format("Jan"), chart[0].Month)
	assert.Equal(t, 0.0, chart[0].Revenue)
	assert.EqualValues(t, 0, chart[0].Bookings)

	assert.Equal(t, prevMonth.Format("Jan"), chart[1].Month)
	assert.Equal(t, 100.0, chart[1].Revenue)
	assert.EqualValues(t, 1, chart[1].Bookings)

	assert.Equal(t, curMonth.Format("Jan"), chart[2].Month)
	assert.Equal(t, 120.0, chart[2].Revenue, "only paid bookings contribute revenue")
	assert.EqualValues(t, 2, chart[2].Bookings)
}

func TestGetRevenueChartEdges(t *testing.T) {
	repo := newMemRepository()
	svc := NewAnalyticsService(repo, zap.NewNop())
	ctx := context.Background()

	t.Run("no lots", func(t *testing.T) {
		chart, err := svc.GetRevenueChart(ctx, uuid.New(), 12, 0)
		require.NoError(t, err)
		assert.Empty(t, chart)
	})

	t.Run("window out of range", func(t *testing.T) {
		lot := seedLot(t, repo, 5, 5)
		_, err := svc.GetRevenueChart(ctx, lot.OwnerID, 25, 0)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeInvalidArgument))
	})
}

func TestGetLiveOccupancy(t *testing.T) {
	repo := newMemRepository()
	svc := NewAnalyticsService(repo, zap.NewNop())
	ctx := context.Background()

	garage := seedLot(t, repo, 4, 10)
	deck := &entity.ParkingLot{
		Base:           entity.Base{ID: uuid.New(), CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()},
		Name:           "Harbor Deck",
		Location:       "Main Quay",
		TotalSpots:     2,
		AvailableSpots: 2,
		HourlyRate:     5,
		OwnerID:        garage.OwnerID,
	}
	require.NoError(t, repo.Lot.Create(ctx, deck))

	mem := repo.Booking.(*memBookingRepo)
	now := time.Now().UTC()
	seedBookingDirect(mem, garage.ID, 1, now.Add(-time.Hour), now.Add(time.Hour))   // running
	seedBookingDirect(mem, deck.ID, 1, now.Add(-time.Hour), now.Add(2*time.Hour))   // running
	seedBookingDirect(mem, garage.ID, 2, now.Add(2*time.Hour), now.Add(4*time.Hour)) // upcoming, not occupying

	occupancy, err := svc.GetLiveOccupancy(ctx, garage.OwnerID)
	require.NoError(t, err)

	assert.Equal(t, 6, occupancy.Overview.TotalSpots)
	assert.EqualValues(t, 2, occupancy.Overview.OccupiedSpots)
	assert.EqualValues(t, 4, occupancy.Overview.AvailableSpots)
	assert.Equal(t, 33, occupancy.Overview.OccupancyPercentage)

	require.Len(t, occupancy.ByLot, 2)
	perLot := make(map[string]response.LotOccupancy, 2)
	for _, lo := range occupancy.ByLot {
		perLot[lo.Name] = lo
	}
	assert.Equal(t, 1, perLot["Central Garage"].OccupiedSpots)
	assert.Equal(t, 3, perLot["Central Garage"].AvailableSpots)
	assert.Equal(t, 25, perLot["Central Garage"].OccupancyPercentage)
	assert.Equal(t, 1, perLot["Harbor Deck"].OccupiedSpots)
	assert.Equal(t, 50, perLot["Harbor Deck"].OccupancyPercentage)

	// Running bookings are listed, soonest to end first.
	require.Len(t, occupancy.ActiveBookings, 2)
	assert.Equal(t, "Central Garage", occupancy.ActiveBookings[0].LotName)
	assert.Equal(t, "Harbor Deck", occupancy.ActiveBookings[1].LotName)
	assert.NotEmpty(t, occupancy.ActiveBookings[0].TimeRemaining)
	assert.False(t, occupancy.LastUpdated.IsZero())
}

func TestGetLiveOccupancyNoLots(t *testing.T) {
	repo := newMemRepository()
	svc := NewAnalyticsService(repo, zap.NewNop())

	occupancy, err := svc.GetLiveOccupancy(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, occupancy.Overview.TotalSpots)
	assert.Empty(t, occupancy.ByLot)
	assert.Empty(t, occupancy.ActiveBookings)
	assert.False(t, occupancy.LastUpdated.IsZero())
}
