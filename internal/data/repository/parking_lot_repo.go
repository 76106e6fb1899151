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

// LotSearchFilter narrows the public lot search. A zero filter matches
// nothing useful, so the service requires at least one criterion.
type LotSearchFilter struct {
	Query    string // matches name or location, case-insensitive
	Location string
	MinPrice *float64
	MaxPrice *float64
}

type ParkingLotRepository interface {
	Create(ctx context.Context, lot *entity.ParkingLot) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ParkingLot, error)
	FindAll(ctx context.Context) ([]*entity.ParkingLot, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entity.ParkingLot, error)
	Search(ctx context.Context, filter LotSearchFilter) ([]*entity.ParkingLot, error)
	Update(ctx context.Context, lot *entity.ParkingLot) error
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateAvailableSpots refreshes the advisory display counter. It is
	// never consulted during allocation.
	UpdateAvailableSpots(ctx context.Context, id uuid.UUID, available int) error
}

type parkingLotRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewParkingLotRepository(db database.PgxIface, log *zap.Logger) ParkingLotRepository {
	return &parkingLotRepository{
		db:  db,
		log: log.With(zap.String("repository", "parking_lot")),
	}
}

const lotColumns = `id, name, location, total_spots, available_spots, hourly_rate, owner_id, created_at, updated_at`

func scanLot(row pgx.Row) (*entity.ParkingLot, error) {
	var lot entity.ParkingLot
	err := row.Scan(
		&lot.ID,
		&lot.Name,
		&lot.Location,
		&lot.TotalSpots,
		&lot.AvailableSpots,
		&lot.HourlyRate,
		&lot.OwnerID,
		&lot.CreatedAt,
		&lot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *parkingLotRepository) Create(ctx context.Context, lot *entity.ParkingLot) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO parking_lots (id, name, location, total_spots, available_spots, hourly_rate, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		lot.ID,
		lot.Name,
		lot.Location,
		lot.TotalSpots,
		lot.AvailableSpots,
		lot.HourlyRate,
		lot.OwnerID,
		lot.CreatedAt,
		lot.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create parking lot",
			zap.Error(err),
			zap.String("name", lot.Name),
			zap.String("owner_id", lot.OwnerID.String()),
		)
		return fmt.Errorf("create parking lot %s: %w", lot.Name, err)
	}

	return nil
}

func (r *parkingLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ParkingLot, error) {
	lot, err := scanLot(r.db.QueryRow(ctx, `SELECT `+lotColumns+` FROM parking_lots WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find parking lot by ID",
			zap.Error(err),
			zap.String("lot_id", id.String()),
		)
		return nil, fmt.Errorf("find parking lot by ID %s: %w", id.String(), err)
	}

	return lot, nil
}

func (r *parkingLotRepository) FindAll(ctx context.Context) ([]*entity.ParkingLot, error) {
	rows, err := r.db.Query(ctx, `SELECT `+lotColumns+` FROM parking_lots ORDER BY created_at DESC`)
	if err != nil {
		r.log.Error("Failed to list parking lots", zap.Error(err))
		return nil, fmt.Errorf("list parking lots: %w", err)
	}
	defer rows.Close()

	var lots []*entity.ParkingLot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			r.log.Error("Failed to scan parking lot row", zap.Error(err))
			return nil, fmt.Errorf("scan parking lot row: %w", err)
		}
		lots = append(lots, lot)
	}

	return lots, rows.Err()
}

func (r *parkingLotRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entity.ParkingLot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+lotColumns+` FROM parking_lots WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		r.log.Error("Failed to find parking lots by owner",
			zap.Error(err),
			zap.String("owner_id", ownerID.String()),
		)
		return nil, fmt.Errorf("find parking lots by owner %s: %w", ownerID.String(), err)
	}
	defer rows.Close()

	var lots []*entity.ParkingLot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			r.log.Error("Failed to scan parking lot row", zap.Error(err))
			return nil, fmt.Errorf("scan parking lot row: %w", err)
		}
		lots = append(lots, lot)
	}

	return lots, rows.Err()
}

func (r *parkingLotRepository) Search(ctx context.Context, filter LotSearchFilter) ([]*entity.ParkingLot, error) {
	clause := ""
	var args []any
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		clause += fmt.Sprintf(" AND (name ILIKE $%d OR location ILIKE $%d)", len(args), len(args))
	} else if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		clause += fmt.Sprintf(" AND location ILIKE $%d", len(args))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		clause += fmt.Sprintf(" AND hourly_rate >= $%d", len(args))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		clause += fmt.Sprintf(" AND hourly_rate <= $%d", len(args))
	}

	// Cheapest first.
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT `+lotColumns+` FROM parking_lots WHERE TRUE%s ORDER BY hourly_rate ASC`, clause),
		args...)
	if err != nil {
		r.log.Error("Failed to search parking lots", zap.Error(err), zap.String("query", filter.Query))
		return nil, fmt.Errorf("search parking lots: %w", err)
	}
	defer rows.Close()

	var lots []*entity.ParkingLot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			r.log.Error("Failed to scan parking lot row", zap.Error(err))
			return nil, fmt.Errorf("scan parking lot row: %w", err)
		}
		lots = append(lots, lot)
	}

	return lots, rows.Err()
}

func (r *parkingLotRepository) Update(ctx context.Context, lot *entity.ParkingLot) error {
	result, err := r.db.Exec(ctx, `
		UPDATE parking_lots
		SET name = $2, location = $3, total_spots = $4, available_spots = $5,
		    hourly_rate = $6, updated_at = $7
		WHERE id = $1
	`,
		lot.ID,
		lot.Name,
		lot.Location,
		lot.TotalSpots,
		lot.AvailableSpots,
		lot.HourlyRate,
		lot.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update parking lot",
			zap.Error(err),
			zap.String("lot_id", lot.ID.String()),
		)
		return fmt.Errorf("update parking lot %s: %w", lot.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("parking lot %s not found", lot.ID.String())
	}

	return nil
}

func (r *parkingLotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM parking_lots WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete parking lot",
			zap.Error(err),
			zap.String("lot_id", id.String()),
		)
		return fmt.Errorf("delete parking lot %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("parking lot %s not found", id.String())
	}

	r.log.Info("Parking lot deleted", zap.String("lot_id", id.String()))
	return nil
}

func (r *parkingLotRepository) UpdateAvailableSpots(ctx context.Context, id uuid.UUID, available int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE parking_lots SET available_spots = $2, updated_at = NOW() WHERE id = $1`, id, available)
	if err != nil {
		r.log.Error("Failed to update available spots counter",
			zap.Error(err),
			zap.String("lot_id", id.String()),
		)
		return fmt.Errorf("update available spots for lot %s: %w", id.String(), err)
	}
	return nil
}
