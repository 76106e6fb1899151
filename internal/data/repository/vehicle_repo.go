package repository

import (
	"context"
	"fmt"

	"parking-booking/internal/data/entity"
	"parking-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// VehicleRepository persists vehicle details. Records are immutable once
// created, so there is no update path.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *entity.VehicleDetails) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.VehicleDetails, error)
}

type vehicleRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewVehicleRepository(db database.PgxIface, log *zap.Logger) VehicleRepository {
	return &vehicleRepository{
		db:  db,
		log: log.With(zap.String("repository", "vehicle")),
	}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *entity.VehicleDetails) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO vehicle_details (id, license_plate, model, color, owner_id, created_at)
		VALUES ($1, UPPER($2), $3, $4, $5, $6)
	`,
		vehicle.ID,
		vehicle.LicensePlate,
		vehicle.Model,
		vehicle.Color,
		vehicle.OwnerID,
		vehicle.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create vehicle details",
			zap.Error(err),
			zap.String("owner_id", vehicle.OwnerID.String()),
		)
		return fmt.Errorf("create vehicle details: %w", err)
	}

	return nil
}

func (r *vehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.VehicleDetails, error) {
	var v entity.VehicleDetails
	err := r.db.QueryRow(ctx, `
		SELECT id, license_plate, model, color, owner_id, created_at
		FROM vehicle_details WHERE id = $1
	`, id).Scan(
		&v.ID,
		&v.LicensePlate,
		&v.Model,
		&v.Color,
		&v.OwnerID,
		&v.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find vehicle details",
			zap.Error(err),
			zap.String("vehicle_id", id.String()),
		)
		return nil, fmt.Errorf("find vehicle details %s: %w", id.String(), err)
	}

	return &v, nil
}
