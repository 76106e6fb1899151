package request

type VehicleDetailsRequest struct {
	LicensePlate string `json:"license_plate" validate:"required,min=2,max=16"`
	Model        string `json:"model" validate:"required,min=1,max=64"`
	Color        string `json:"color" validate:"required,min=2,max=32"`
}

type CreateBookingRequest struct {
	LotID     string                 `json:"lot_id" validate:"required,uuid4"`
	StartTime string                 `json:"start_time" validate:"required"`
	EndTime   string                 `json:"end_time" validate:"required"`
	Vehicle   *VehicleDetailsRequest `json:"vehicle,omitempty"`
}

type AvailabilityRequest struct {
	LotID     string `json:"lot_id" validate:"required,uuid4"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// HistoryRequest filters the booking history listing. Cancelled bookings are
// hidden unless explicitly requested.
type HistoryRequest struct {
	PaginatedRequest
	Status           string `json:"status" validate:"omitempty,oneof=booked cancelled completed"`
	PaymentStatus    string `json:"payment_status" validate:"omitempty,oneof=pending success failed"`
	IncludeCancelled bool   `json:"include_cancelled"`
	TimeFilter       string `json:"time_filter" validate:"omitempty,oneof=past upcoming"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	// LotID narrows company history to one owned lot.
	LotID string `json:"lot_id" validate:"omitempty,uuid4"`
}
