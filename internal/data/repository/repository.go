package repository

import (
	"parking-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Lot     ParkingLotRepository
	Booking BookingRepository
	Vehicle VehicleRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Lot:     NewParkingLotRepository(db, log),
		Booking: NewBookingRepository(db, log),
		Vehicle: NewVehicleRepository(db, log),
	}
}
