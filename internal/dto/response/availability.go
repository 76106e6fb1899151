package response

type AvailabilityResponse struct {
	Available       bool    `json:"available"`
	AvailableSpots  int     `json:"available_spots"`
	TotalSpots      int     `json:"total_spots"`
	DurationInHours int     `json:"duration_in_hours"`
	HourlyRate      float64 `json:"hourly_rate"`
	TotalCost       float64 `json:"total_cost"`
	LotName         string  `json:"lot_name"`
	Location        string  `json:"location"`
}
