package request

type CreateParkingLotRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=100"`
	Location   string  `json:"location" validate:"required,min=1,max=200"`
	TotalSpots int     `json:"total_spots" validate:"required,min=1"`
	HourlyRate float64 `json:"hourly_rate" validate:"gte=0"`
}

// SearchLotsRequest carries the public lot search criteria. MinPrice and
// MaxPrice are pointers so "0" and "absent" stay distinguishable.
type SearchLotsRequest struct {
	Query    string   `json:"query" validate:"omitempty,max=200"`
	Location string   `json:"location" validate:"omitempty,max=200"`
	MinPrice *float64 `json:"min_price" validate:"omitempty,gte=0"`
	MaxPrice *float64 `json:"max_price" validate:"omitempty,gte=0"`
}

type UpdateParkingLotRequest struct {
	Name       string  `json:"name" validate:"omitempty,min=1,max=100"`
	Location   string  `json:"location" validate:"omitempty,min=1,max=200"`
	TotalSpots int     `json:"total_spots" validate:"omitempty,min=1"`
	HourlyRate float64 `json:"hourly_rate" validate:"gte=0"`
}
