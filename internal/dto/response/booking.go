package response

import (
	"time"

	"parking-booking/internal/data/entity"
)

type PaymentResponse struct {
	Reference string               `json:"reference"`
	Amount    float64              `json:"amount"`
	Status    entity.PaymentStatus `json:"status"`
	PaidAt    *time.Time           `json:"paid_at,omitempty"`
}

type VehicleResponse struct {
	ID           string `json:"id"`
	LicensePlate string `json:"license_plate"`
	Model        string `json:"model"`
	Color        string `json:"color"`
}

type BookingResponse struct {
	ID         string               `json:"id"`
	LotID      string               `json:"lot_id"`
	LotName    string               `json:"lot_name,omitempty"`
	Location   string               `json:"location,omitempty"`
	SpotNumber int                  `json:"spot_number"`
	StartTime  time.Time            `json:"start_time"`
	EndTime    time.Time            `json:"end_time"`
	BookerID   string               `json:"booker_id"`
	Status     entity.BookingStatus `json:"status"`
	TimeStatus entity.TimeStatus    `json:"time_status"`
	Payment    *PaymentResponse     `json:"payment,omitempty"`
	Vehicle    *VehicleResponse     `json:"vehicle,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

type CreateBookingResponse struct {
	Booking          BookingResponse `json:"booking"`
	AssignedSpot     int             `json:"assigned_spot"`
	PaymentReference string          `json:"payment_reference,omitempty"`
}

type UserBookingStatsResponse struct {
	TotalBookings    int64   `json:"total_bookings"`
	PaidBookings     int64   `json:"paid_bookings"`
	UpcomingBookings int64   `json:"upcoming_bookings"`
	TotalSpent       float64 `json:"total_spent"`
}

// BookingToResponse converts an entity using one now snapshot so a page of
// results is classified consistently.
func BookingToResponse(b *entity.Booking, now time.Time) BookingResponse {
	resp := BookingResponse{
		ID:         b.ID.String(),
		LotID:      b.LotID.String(),
		SpotNumber: b.SpotNumber,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		BookerID:   b.BookerID.String(),
		Status:     b.Status,
		TimeStatus: b.TimeStatusAt(now),
		CreatedAt:  b.CreatedAt,
	}

	if b.Payment.Reference != "" {
		resp.Payment = &PaymentResponse{
			Reference: b.Payment.Reference,
			Amount:    b.Payment.Amount,
			Status:    b.Payment.Status,
			PaidAt:    b.Payment.PaidAt,
		}
	}

	return resp
}

func VehicleToResponse(v *entity.VehicleDetails) *VehicleResponse {
	if v == nil {
		return nil
	}
	return &VehicleResponse{
		ID:           v.ID.String(),
		LicensePlate: v.LicensePlate,
		Model:        v.Model,
		Color:        v.Color,
	}
}
