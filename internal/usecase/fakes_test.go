package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"parking-booking/internal/data/entity"
	"parking-booking/internal/data/repository"

	"github.com/google/uuid"
)

// In-memory repository fakes. memBookingRepo serializes CreateIfSpotFree
// behind a mutex and re-checks the overlap invariant inside the critical
// section, mirroring what the per-lot advisory lock gives the real store.

type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[uuid.UUID]*entity.Booking)}
}

func (m *memBookingRepo) put(b *entity.Booking) {
	copied := *b
	m.bookings[b.ID] = &copied
}

func (m *memBookingRepo) overlapLocked(lotID uuid.UUID, spot int, rng entity.TimeRange) bool {
	for _, b := range m.bookings {
		if b.LotID == lotID && b.SpotNumber == spot && b.Status == entity.BookingStatusBooked && b.Range().Overlaps(rng) {
			return true
		}
	}
	return false
}

func (m *memBookingRepo) CreateIfSpotFree(ctx context.Context, booking *entity.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.overlapLocked(booking.LotID, booking.SpotNumber, booking.Range()) {
		return repository.ErrSpotTaken
	}
	m.put(booking)
	return nil
}

func (m *memBookingRepo) HasOverlap(ctx context.Context, lotID uuid.UUID, spotNumber int, rng entity.TimeRange) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlapLocked(lotID, spotNumber, rng), nil
}

func (m *memBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (m *memBookingRepo) FindByPaymentReference(ctx context.Context, reference string) (*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.Payment.Reference == reference {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func matchesFilter(b *entity.Booking, filter repository.HistoryFilter, now time.Time) bool {
	if filter.Status != "" {
		if b.Status != filter.Status {
			return false
		}
	} else if !filter.IncludeCancelled && b.Status == entity.BookingStatusCancelled {
		return false
	}
	if filter.PaymentStatus != "" && b.Payment.Status != filter.PaymentStatus {
		return false
	}
	if filter.From != nil && filter.To != nil {
		if b.StartTime.Before(*filter.From) || b.StartTime.After(*filter.To) {
			return false
		}
	}
	switch filter.TimeFilter {
	case "past":
		if !b.EndTime.Before(now) {
			return false
		}
	case "upcoming":
		if !b.StartTime.After(now) {
			return false
		}
	}
	return true
}

func (m *memBookingRepo) collect(match func(*entity.Booking) bool) []*entity.Booking {
	var out []*entity.Booking
	for _, b := range m.bookings {
		if match(b) {
			copied := *b
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out
}

func paginate(bookings []*entity.Booking, limit, offset int) []*entity.Booking {
	if offset >= len(bookings) {
		return nil
	}
	end := offset + limit
	if end > len(bookings) {
		end = len(bookings)
	}
	return bookings[offset:end]
}

func (m *memBookingRepo) FindByBookerID(ctx context.Context, bookerID uuid.UUID, filter repository.HistoryFilter, limit, offset int) ([]*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	matched := m.collect(func(b *entity.Booking) bool {
		return b.BookerID == bookerID && matchesFilter(b, filter, now)
	})
	return paginate(matched, limit, offset), nil
}

func (m *memBookingRepo) CountByBookerID(ctx context.Context, bookerID uuid.UUID, filter repository.HistoryFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	matched := m.collect(func(b *entity.Booking) bool {
		return b.BookerID == bookerID && matchesFilter(b, filter, now)
	})
	return int64(len(matched)), nil
}

func containsLot(lotIDs []uuid.UUID, lotID uuid.UUID) bool {
	for _, id := range lotIDs {
		if id == lotID {
			return true
		}
	}
	return false
}

func (m *memBookingRepo) FindByLotIDs(ctx context.Context, lotIDs []uuid.UUID, filter repository.HistoryFilter, limit, offset int) ([]*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	matched := m.collect(func(b *entity.Booking) bool {
		return containsLot(lotIDs, b.LotID) && matchesFilter(b, filter, now)
	})
	return paginate(matched, limit, offset), nil
}

func (m *memBookingRepo) CountByLotIDs(ctx context.Context, lotIDs []uuid.UUID, filter repository.HistoryFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	matched := m.collect(func(b *entity.Booking) bool {
		return containsLot(lotIDs, b.LotID) && matchesFilter(b, filter, now)
	})
	return int64(len(matched)), nil
}

func (m *memBookingRepo) Cancel(ctx context.Context, id uuid.UUID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != entity.BookingStatusBooked || !b.StartTime.After(now) {
		return fmt.Errorf("booking %s is not cancellable", id.String())
	}
	b.Status = entity.BookingStatusCancelled
	b.UpdatedAt = now
	return nil
}

func (m *memBookingRepo) SetPaymentSuccess(ctx context.Context, reference string, paidAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.Payment.Reference == reference && b.Payment.Status != entity.PaymentStatusSuccess {
			b.Payment.Status = entity.PaymentStatusSuccess
			paid := paidAt
			b.Payment.PaidAt = &paid
			return true, nil
		}
	}
	return false, nil
}

func (m *memBookingRepo) SetPaymentFailed(ctx context.Context, reference string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.Payment.Reference == reference && b.Payment.Status == entity.PaymentStatusPending {
			b.Payment.Status = entity.PaymentStatusFailed
			return true, nil
		}
	}
	return false, nil
}

func (m *memBookingRepo) HasActiveBookings(ctx context.Context, lotID uuid.UUID, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.LotID == lotID && b.Status == entity.BookingStatusBooked && b.EndTime.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memBookingRepo) FindActiveByLotIDs(ctx context.Context, lotIDs []uuid.UUID, now time.Time) ([]*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Booking
	for _, b := range m.bookings {
		if containsLot(lotIDs, b.LotID) && b.Status == entity.BookingStatusBooked &&
			!b.StartTime.After(now) && b.EndTime.After(now) {
			copied := *b
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndTime.Before(out[j].EndTime) })
	return out, nil
}

func (m *memBookingRepo) CountOccupiedByLotIDs(ctx context.Context, lotIDs []uuid.UUID, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, b := range m.bookings {
		if containsLot(lotIDs, b.LotID) && b.Status == entity.BookingStatusBooked &&
			!b.StartTime.After(now) && b.EndTime.After(now) {
			count++
		}
	}
	return count, nil
}

func (m *memBookingRepo) SumRevenueByLotIDs(ctx context.Context, lotIDs []uuid.UUID, from, to time.Time) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, b := range m.bookings {
		if containsLot(lotIDs, b.LotID) && b.Payment.Status == entity.PaymentStatusSuccess &&
			b.Payment.PaidAt != nil && !b.Payment.PaidAt.Before(from) && !b.Payment.PaidAt.After(to) {
			total += b.Payment.Amount
		}
	}
	return total, nil
}

func (m *memBookingRepo) CountCreatedByLotIDs(ctx context.Context, lotIDs []uuid.UUID, from, to time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, b := range m.bookings {
		if containsLot(lotIDs, b.LotID) && !b.CreatedAt.Before(from) && !b.CreatedAt.After(to) {
			count++
		}
	}
	return count, nil
}

func (m *memBookingRepo) CountDistinctBookers(ctx context.Context, lotIDs []uuid.UUID, from, to time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	for _, b := range m.bookings {
		if containsLot(lotIDs, b.LotID) && !b.CreatedAt.Before(from) && !b.CreatedAt.After(to) {
			seen[b.BookerID] = true
		}
	}
	return int64(len(seen)), nil
}

func (m *memBookingRepo) CountNewBookers(ctx context.Context, lotIDs []uuid.UUID, from, to time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inPeriod := make(map[uuid.UUID]bool)
	before := make(map[uuid.UUID]bool)
	for _, b := range m.bookings {
		if !containsLot(lotIDs, b.LotID) {
			continue
		}
		if b.CreatedAt.Before(from) {
			before[b.BookerID] = true
		} else if !b.CreatedAt.After(to) {
			inPeriod[b.BookerID] = true
		}
	}
	var count int64
	for booker := range inPeriod {
		if !before[booker] {
			count++
		}
	}
	return count, nil
}

func (m *memBookingRepo) CountPaidByBookerID(ctx context.Context, bookerID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, b := range m.bookings {
		if b.BookerID == bookerID && b.Payment.Status == entity.PaymentStatusSuccess {
			count++
		}
	}
	return count, nil
}

func (m *memBookingRepo) CountUpcomingPaidByBookerID(ctx context.Context, bookerID uuid.UUID, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, b := range m.bookings {
		if b.BookerID == bookerID && b.Payment.Status == entity.PaymentStatusSuccess && b.StartTime.After(now) {
			count++
		}
	}
	return count, nil
}

func (m *memBookingRepo) SumSpentByBookerID(ctx context.Context, bookerID uuid.UUID) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, b := range m.bookings {
		if b.BookerID == bookerID && b.Payment.Status == entity.PaymentStatusSuccess {
			total += b.Payment.Amount
		}
	}
	return total, nil
}

type memLotRepo struct {
	mu   sync.Mutex
	lots map[uuid.UUID]*entity.ParkingLot
}

func newMemLotRepo() *memLotRepo {
	return &memLotRepo{lots: make(map[uuid.UUID]*entity.ParkingLot)}
}

func (m *memLotRepo) Create(ctx context.Context, lot *entity.ParkingLot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *lot
	m.lots[lot.ID] = &copied
	return nil
}

func (m *memLotRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.ParkingLot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lot, ok := m.lots[id]
	if !ok {
		return nil, nil
	}
	copied := *lot
	return &copied, nil
}

func (m *memLotRepo) FindAll(ctx context.Context) ([]*entity.ParkingLot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.ParkingLot
	for _, lot := range m.lots {
		copied := *lot
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memLotRepo) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entity.ParkingLot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.ParkingLot
	for _, lot := range m.lots {
		if lot.OwnerID == ownerID {
			copied := *lot
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memLotRepo) Search(ctx context.Context, filter repository.LotSearchFilter) ([]*entity.ParkingLot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matches := func(lot *entity.ParkingLot) bool {
		if filter.Query != "" {
			q := strings.ToLower(filter.Query)
			if !strings.Contains(strings.ToLower(lot.Name), q) &&
				!strings.Contains(strings.ToLower(lot.Location), q) {
				return false
			}
		} else if filter.Location != "" {
			if !strings.Contains(strings.ToLower(lot.Location), strings.ToLower(filter.Location)) {
				return false
			}
		}
		if filter.MinPrice != nil && lot.HourlyRate < *filter.MinPrice {
			return false
		}
		if filter.MaxPrice != nil && lot.HourlyRate > *filter.MaxPrice {
			return false
		}
		return true
	}
	var out []*entity.ParkingLot
	for _, lot := range m.lots {
		if matches(lot) {
			copied := *lot
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HourlyRate < out[j].HourlyRate })
	return out, nil
}

func (m *memLotRepo) Update(ctx context.Context, lot *entity.ParkingLot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *lot
	m.lots[lot.ID] = &copied
	return nil
}

func (m *memLotRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lots, id)
	return nil
}

func (m *memLotRepo) UpdateAvailableSpots(ctx context.Context, id uuid.UUID, available int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lot, ok := m.lots[id]; ok {
		lot.AvailableSpots = available
	}
	return nil
}

type memVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[uuid.UUID]*entity.VehicleDetails
}

func newMemVehicleRepo() *memVehicleRepo {
	return &memVehicleRepo{vehicles: make(map[uuid.UUID]*entity.VehicleDetails)}
}

func (m *memVehicleRepo) Create(ctx context.Context, vehicle *entity.VehicleDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *vehicle
	m.vehicles[vehicle.ID] = &copied
	return nil
}

func (m *memVehicleRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.VehicleDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, nil
	}
	copied := *vehicle
	return &copied, nil
}

func newMemRepository() *repository.Repository {
	return &repository.Repository{
		Lot:     newMemLotRepo(),
		Booking: newMemBookingRepo(),
		Vehicle: newMemVehicleRepo(),
	}
}
