package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parking-booking/internal/data/entity"
	"parking-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrSpotTaken is returned when the check-and-reserve transaction finds the
// candidate spot occupied by the time the insert runs. The caller re-runs
// allocation.
var ErrSpotTaken = errors.New("spot already taken for the requested range")

// HistoryFilter narrows booking history queries.
type HistoryFilter struct {
	Status           entity.BookingStatus
	PaymentStatus    entity.PaymentStatus
	IncludeCancelled bool
	TimeFilter       string // "past" or "upcoming"
	From             *time.Time
	To               *time.Time
}

type BookingRepository interface {
	// CreateIfSpotFree inserts the booking inside a transaction that holds
	// the per-lot advisory lock and re-checks the overlap invariant first.
	// Returns ErrSpotTaken if the spot was claimed by a concurrent request.
	CreateIfSpotFree(ctx context.Context, booking *entity.Booking) error
	HasOverlap(ctx context.Context, lotID uuid.UUID, spotNumber int, rng entity.TimeRange) (bool, error)

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByPaymentReference(ctx context.Context, reference string) (*entity.Booking, error)
	FindByBookerID(ctx context.Context, bookerID uuid.UUID, filter HistoryFilter, limit, offset int) ([]*entity.Booking, error)
	CountByBookerID(ctx context.Context, bookerID uuid.UUID, filter HistoryFilter) (int64, error)
	FindByLotIDs(ctx context.Context, lotIDs []uuid.UUID, filter HistoryFilter, limit, offset int) ([]*entity.Booking, error)
	CountByLotIDs(ctx context.Context, lotIDs []uuid.UUID, filter HistoryFilter) (int64, error)

	// Lifecycle updates, guarded in SQL so they compose with concurrent
	// allocation on the same snapshot.
	Cancel(ctx context.Context, id uuid.UUID, now time.Time) error
	SetPaymentSuccess(ctx context.Context, reference string, paidAt time.Time) (bool, error)
	SetPaymentFailed(ctx context.Context, reference string) (bool, error)

	// Analytics queries
	HasActiveBookings(ctx context.Context, lotID uuid.UUID, now time.Time) (bool, error)
	FindActiveByLotIDs(ctx context.Context, lotIDs []uuid.UUID, now time.Time) ([]*entity.Booking, error)
	CountOccupiedByLotIDs(ctx context.Context, lotIDs []uuid.UUID, now time.Time) (int64, error)
	SumRevenueByLotIDs(ctx context.Context, lotIDs []uuid.UUID, from, to time.Time) (float64, error)
	CountCreatedByLotIDs(ctx context.Context, lotIDs []uuid.UUID, from, to time.Time) (int64, error)
	CountDistinctBookers(ctx context.Context, lotIDs []uuid.UUID, from, to time.Time) (int64, error)
	CountNewBookers(ctx context.Context, lotIDs []uuid.UUID, from, to time.Time) (int64, error)
	CountPaidByBookerID(ctx context.Context, bookerID uuid.UUID) (int64, error)
	CountUpcomingPaidByBookerID(ctx context.Context, bookerID uuid.UUID, now time.Time) (int64, error)
	SumSpentByBookerID(ctx context.Context, bookerID uuid.UUID) (float64, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, lot_id, spot_number, start_time, end_time, booker_id, vehicle_id,
		payment_reference, payment_amount, payment_status, paid_at, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.LotID,
		&b.SpotNumber,
		&b.StartTime,
		&b.EndTime,
		&b.BookerID,
		&b.VehicleID,
		&b.Payment.Reference,
		&b.Payment.Amount,
		&b.Payment.Status,
		&b.Payment.PaidAt,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// overlapCondition matches bookings whose half-open [start_time, end_time)
// intersects [$start, $end). Only status=booked rows count against the
// invariant; cancelled and completed bookings free the spot.
const overlapExistsQuery = `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE lot_id = $1 AND spot_number = $2 AND status = 'booked'
			  AND start_time < $4 AND end_time > $3
		)
	`

func (r *bookingRepository) HasOverlap(ctx context.Context, lotID uuid.UUID, spotNumber int, rng entity.TimeRange) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, overlapExistsQuery, lotID, spotNumber, rng.Start, rng.End).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check overlap",
			zap.Error(err),
			zap.String("lot_id", lotID.String()),
			zap.Int("spot_number", spotNumber),
		)
		return false, fmt.Errorf("check overlap for lot %s spot %d: %w", lotID.String(), spotNumber, err)
	}
	return exists, nil
}

func (r *bookingRepository) CreateIfSpotFree(ctx context.Context, booking *entity.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reserve transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize check-and-reserve per lot. The advisory lock is released at
	// commit/rollback, so a concurrent cancel or insert on the same lot
	// cannot interleave with the overlap re-check below.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, booking.LotID); err != nil {
		return fmt.Errorf("acquire lot lock %s: %w", booking.LotID.String(), err)
	}

	var exists bool
	err = tx.QueryRow(ctx, overlapExistsQuery,
		booking.LotID, booking.SpotNumber, booking.StartTime, booking.EndTime,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("re-check overlap for lot %s spot %d: %w", booking.LotID.String(), booking.SpotNumber, err)
	}
	if exists {
		return ErrSpotTaken
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (id, lot_id, spot_number, start_time, end_time, booker_id, vehicle_id,
			payment_reference, payment_amount, payment_status, paid_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		booking.ID,
		booking.LotID,
		booking.SpotNumber,
		booking.StartTime,
		booking.EndTime,
		booking.BookerID,
		booking.VehicleID,
		booking.Payment.Reference,
		booking.Payment.Amount,
		booking.Payment.Status,
		booking.Payment.PaidAt,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert booking",
			zap.Error(err),
			zap.String("lot_id", booking.LotID.String()),
			zap.Int("spot_number", booking.SpotNumber),
		)
		return fmt.Errorf("insert booking %s: %w", booking.ID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking %s: %w", booking.ID.String(), err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByPaymentReference(ctx context.Context, reference string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_reference = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, reference))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by payment reference",
			zap.Error(err),
			zap.String("reference", reference),
		)
		return nil, fmt.Errorf("find booking by payment reference %s: %w", reference, err)
	}

	return booking, nil
}

// historyConditions builds the WHERE tail shared by the history list and
// count queries. args already holds the leading scope argument(s).
func historyConditions(filter HistoryFilter, args []any) (string, []any) {
	clause := ""
	if filter.Status != "" {
		args = append(args, filter.Status)
		clause += fmt.Sprintf(" AND status = $%d", len(args))
	} else if !filter.IncludeCancelled {
		clause += " AND status <> 'cancelled'"
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		clause += fmt.Sprintf(" AND payment_status = $%d", len(args))
	}
	if filter.From != nil && filter.To != nil {
		args = append(args, *filter.From, *filter.To)
		clause += fmt.Sprintf(" AND start_time >= $%d AND start_time <= $%d", len(args)-1, len(args))
	}
	switch filter.TimeFilter {
	case "past":
		args = append(args, time.Now().UTC())
		clause += fmt.Sprintf(" AND end_time < $%d", len(args))
	case "upcoming":
		args = append(args, time.Now().UTC())
		clause += fmt.Sprintf(" AND start_time > $%d", len(args))
	}
	return clause, args
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func (r *bookingRepository) FindByBookerID(ctx context.Context, bookerID uuid.UUID, filter HistoryFilter, limit, offset int) ([]*entity.Booking, error) {
	args := []any{bookerID}
	clause, args := historyConditions(filter, args)

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT `+bookingColumns+` FROM bookings WHERE booker_id = $1%s
		ORDER BY start_time DESC LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args))

	bookings, err := r.queryBookings(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find bookings by booker ID",
			zap.Error(err),
			zap.String("booker_id", bookerID.String()),
		)
		return nil, fmt.Errorf("find bookings by booker ID %s: %w", bookerID.String(), err)
	}
	return bookings, nil
}

func (r *bookingRepository) CountByBookerID(ctx context.Context, bookerID uuid.UUID, filter HistoryFilter) (int64, error) {
	args := []any{bookerID}
	clause, args := historyConditions(filter, args)

	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE booker_id = $1`+clause, args...).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by booker ID",
			zap.Error(err),
			zap.String("booker_id", bookerID.String()),
		)
		return 0, fmt.Errorf("count bookings by booker ID %s: %w", bookerID.String(), err)
	}
	return count, nil
}

func (r *bookingRepository) FindByLotIDs(ctx context.Context, lotIDs []uuid.UUID, filter HistoryFilter, limit, offset int) ([]*entity.Booking, error) {
	args := []any{lotIDs}
	clause, args := historyConditions(filter, args)

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT `+bookingColumns+` FROM bookings WHERE lot_id = ANY($1)%s
		ORDER BY start_time DESC LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args))

	bookings, err := r.queryBookings(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find bookings by lot IDs", zap.Error(err), zap.Int("lots", len(lotIDs)))
		return nil, fmt.Errorf("find bookings by lot IDs: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) CountByLotIDs(ctx context.Context, lotIDs []uuid.UUID, filter HistoryFilter) (int64, error) {
	args := []any{lotIDs}
	clause, args := historyConditions(filter, args)

	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE lot_id = ANY($1)`+clause, args...).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by lot IDs", zap.Error(err), zap.Int("lots", len(lotIDs)))
		return 0, fmt.Errorf("count bookings by lot IDs: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) Cancel(ctx context.Context, id uuid.UUID, now time.Time) error {
	// The status and start-time guards repeat in SQL so a concurrent
	// allocator transaction observes either the old or new status, never a
	// half-applied cancellation.
	result, err := r.db.Exec(ctx, `
		UPDATE bookings SET status = 'cancelled', updated_at = $3
		WHERE id = $1 AND status = 'booked' AND start_time > $2
	`, id, now, now)
	if err != nil {
		r.log.Error("Failed to cancel booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("cancel booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s is not cancellable", id.String())
	}

	r.log.Info("Booking cancelled", zap.String("booking_id", id.String()))
	return nil
}

func (r *bookingRepository) SetPaymentSuccess(ctx context.Context, reference string, paidAt time.Time) (bool, error) {
	// Matches pending and failed: a late success event overrides an earlier
	// failure. A replayed success affects zero rows and keeps the original
	// paid_at.
	result, err := r.db.Exec(ctx, `
		UPDATE bookings SET payment_status = 'success', paid_at = $2, updated_at = $2
		WHERE payment_reference = $1 AND payment_status IN ('pending', 'failed')
	`, reference, paidAt)
	if err != nil {
		r.log.Error("Failed to mark payment success",
			zap.Error(err),
			zap.String("reference", reference),
		)
		return false, fmt.Errorf("mark payment success %s: %w", reference, err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) SetPaymentFailed(ctx context.Context, reference string) (bool, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE bookings SET payment_status = 'failed', updated_at = NOW()
		WHERE payment_reference = $1 AND payment_status = 'pending'
	`, reference)
	if err != nil {
		r.log.Error("Failed to mark payment failed",
			zap.Error(err),
			zap.String("reference", reference),
		)
		return false, fmt.Errorf("mark payment failed %s: %w", reference, err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) HasActiveBookings(ctx context.Context, lotID uuid.UUID, now time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE lot_id = $1 AND status = 'booked' AND end_time > $2
		)
	`, lotID, now).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check active bookings",
			zap.Error(err),
			zap.String("lot_id", lotID.String()),
		)
		return false, fmt.Errorf("check active bookings for lot %s: %w", lotID.String(), err)
	}
	return exists, nil
}

func (r *bookingRepository) CountOccupiedByLotIDs(ctx context.Context, lotIDs []uuid.UUID, now time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE lot_id = ANY($1) AND status = 'booked'
		  AND start_time <= $2 AND end_time > $2
	`, lotIDs, now).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count occupied spots", zap.Error(err), zap.Int("lots", len(lotIDs)))
		return 0, fmt.Errorf("count occupied spots: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) FindActiveByLotIDs(ctx context.Context, lotIDs []uuid.UUID, now time.Time) ([]*entity.Booking, error) {
	bookings, err := r.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE lot_id = ANY($1) AND status = 'booked'
		  AND start_time <= $2 AND end_time > $2
		ORDER BY end_time ASC`, lotIDs, now)
	if err != nil {
		r.log.Error("Failed to find active bookings", zap.Error(err), zap.Int("lots", len(lotIDs)))
		return nil, fmt.Errorf("find active bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) SumRevenueByLotIDs(ctx context.Context, lotIDs []uuid.UUID, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(payment_amount), 0) FROM bookings
		WHERE lot_id = ANY($1) AND payment_status = 'success'
		  AND paid_at >= $2 AND paid_at <= $3
	`, lotIDs, from, to).Scan(&total)
	if err != nil {
		r.log.Error("Failed to sum revenue", zap.Error(err), zap.Int("lots", len(lotIDs)))
		return 0, fmt.Errorf("sum revenue: %w", err)
	}
	return total, nil
}

func (r *bookingRepository) CountCreatedByLotIDs(ctx context.Context, lotIDs []uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE lot_id = ANY($1) AND created_at >= $2 AND created_at <= $3
	`, lotIDs, from, to).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count created bookings", zap.Error(err), zap.Int("lots", len(lotIDs)))
		return 0, fmt.Errorf("count created bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) CountDistinctBookers(ctx context.Context, lotIDs []uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT booker_id) FROM bookings
		WHERE lot_id = ANY($1) AND created_at >= $2 AND created_at <= $3
	`, lotIDs, from, to).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count distinct bookers", zap.Error(err), zap.Int("lots", len(lotIDs)))
		return 0, fmt.Errorf("count distinct bookers: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) CountNewBookers(ctx context.Context, lotIDs []uuid.UUID, from, to time.Time) (int64, error) {
	// First-time bookers in the period: no booking on these lots before it.
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT b.booker_id) FROM bookings b
		WHERE b.lot_id = ANY($1) AND b.created_at >= $2 AND b.created_at <= $3
		  AND NOT EXISTS (
			SELECT 1 FROM bookings p
			WHERE p.lot_id = ANY($1) AND p.booker_id = b.booker_id AND p.created_at < $2
		  )
	`, lotIDs, from, to).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count new bookers", zap.Error(err), zap.Int("lots", len(lotIDs)))
		return 0, fmt.Errorf("count new bookers: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) CountPaidByBookerID(ctx context.Context, bookerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM bookings WHERE booker_id = $1 AND payment_status = 'success'
	`, bookerID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count paid bookings",
			zap.Error(err),
			zap.String("booker_id", bookerID.String()),
		)
		return 0, fmt.Errorf("count paid bookings for %s: %w", bookerID.String(), err)
	}
	return count, nil
}

func (r *bookingRepository) CountUpcomingPaidByBookerID(ctx context.Context, bookerID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE booker_id = $1 AND payment_status = 'success' AND start_time > $2
	`, bookerID, now).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count upcoming paid bookings",
			zap.Error(err),
			zap.String("booker_id", bookerID.String()),
		)
		return 0, fmt.Errorf("count upcoming paid bookings for %s: %w", bookerID.String(), err)
	}
	return count, nil
}

func (r *bookingRepository) SumSpentByBookerID(ctx context.Context, bookerID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(payment_amount), 0) FROM bookings
		WHERE booker_id = $1 AND payment_status = 'success'
	`, bookerID).Scan(&total)
	if err != nil {
		r.log.Error("Failed to sum booker spend",
			zap.Error(err),
			zap.String("booker_id", bookerID.String()),
		)
		return 0, fmt.Errorf("sum spend for %s: %w", bookerID.String(), err)
	}
	return total, nil
}
