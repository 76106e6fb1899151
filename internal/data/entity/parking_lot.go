package entity

import (
	"github.com/google/uuid"
)

// ParkingLot describes a lot with TotalSpots numbered spaces (1..TotalSpots).
//
// AvailableSpots is an advisory display counter only. Spot allocation is
// always computed from live booking overlap queries, never from this field.
type ParkingLot struct {
	Base
	Name           string    `db:"name"`
	Location       string    `db:"location"`
	TotalSpots     int       `db:"total_spots"`
	AvailableSpots int       `db:"available_spots"`
	HourlyRate     float64   `db:"hourly_rate"`
	OwnerID        uuid.UUID `db:"owner_id"`
}

// ClampAvailable re-clamps the advisory counter after a TotalSpots edit.
func (p *ParkingLot) ClampAvailable() {
	if p.AvailableSpots > p.TotalSpots {
		p.AvailableSpots = p.TotalSpots
	}
	if p.AvailableSpots < 0 {
		p.AvailableSpots = 0
	}
}
