package response

import "time"

type RevenueSummary struct {
	Total            float64 `json:"total"`
	PreviousMonth    float64 `json:"previous_month"`
	GrowthPercentage float64 `json:"growth_percentage"`
}

type BookingsSummary struct {
	Total            int64   `json:"total"`
	PreviousMonth    int64   `json:"previous_month"`
	GrowthPercentage float64 `json:"growth_percentage"`
}

type CustomersSummary struct {
	Total              int64 `json:"total"`
	NewCustomers       int64 `json:"new_customers"`
	ReturningCustomers int64 `json:"returning_customers"`
}

type OccupancySummary struct {
	TotalSpots          int   `json:"total_spots"`
	OccupiedSpots       int64 `json:"occupied_spots"`
	AvailableSpots      int64 `json:"available_spots"`
	OccupancyPercentage int   `json:"occupancy_percentage"`
}

type CompanySummaryResponse struct {
	Revenue   RevenueSummary   `json:"revenue"`
	Bookings  BookingsSummary  `json:"bookings"`
	Customers CustomersSummary `json:"customers"`
	Occupancy OccupancySummary `json:"occupancy"`
}

type RevenueChartPoint struct {
	Month    string  `json:"month"`
	Revenue  float64 `json:"revenue"`
	Bookings int64   `json:"bookings"`
}

type LotOccupancy struct {
	LotID               string `json:"lot_id"`
	Name                string `json:"name"`
	TotalSpots          int    `json:"total_spots"`
	OccupiedSpots       int    `json:"occupied_spots"`
	AvailableSpots      int    `json:"available_spots"`
	OccupancyPercentage int    `json:"occupancy_percentage"`
}

type ActiveBookingInfo struct {
	SpotNumber    int       `json:"spot_number"`
	LotName       string    `json:"lot_name"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	TimeRemaining string    `json:"time_remaining"`
}

type LiveOccupancyResponse struct {
	Overview       OccupancySummary    `json:"overview"`
	ByLot          []LotOccupancy      `json:"by_lot"`
	ActiveBookings []ActiveBookingInfo `json:"active_bookings"`
	LastUpdated    time.Time           `json:"last_updated"`
}
