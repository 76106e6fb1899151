package response

import (
	"time"

	"parking-booking/internal/data/entity"
)

type ParkingLotResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	// AvailableSpots is an advisory display value; authoritative
	// availability comes from the availability endpoint.
	TotalSpots     int       `json:"total_spots"`
	AvailableSpots int       `json:"available_spots"`
	HourlyRate     float64   `json:"hourly_rate"`
	OwnerID        string    `json:"owner_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func ParkingLotToResponse(lot *entity.ParkingLot) ParkingLotResponse {
	return ParkingLotResponse{
		ID:             lot.ID.String(),
		Name:           lot.Name,
		Location:       lot.Location,
		TotalSpots:     lot.TotalSpots,
		AvailableSpots: lot.AvailableSpots,
		HourlyRate:     lot.HourlyRate,
		OwnerID:        lot.OwnerID.String(),
		CreatedAt:      lot.CreatedAt,
	}
}
