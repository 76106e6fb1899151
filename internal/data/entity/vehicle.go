package entity

import (
	"github.com/google/uuid"
)

// VehicleDetails is immutable once created and owned 1:1 by the booking that
// references it.
type VehicleDetails struct {
	BaseSimple
	LicensePlate string    `db:"license_plate"`
	Model        string    `db:"model"`
	Color        string    `db:"color"`
	OwnerID      uuid.UUID `db:"owner_id"`
}
