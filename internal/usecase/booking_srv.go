package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parking-booking/internal/data/entity"
	"parking-booking/internal/data/repository"
	"parking-booking/internal/dto/request"
	"parking-booking/internal/dto/response"
	apperrors "parking-booking/pkg/errors"
	"parking-booking/pkg/utils"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, bookerID uuid.UUID, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error)
	CheckAvailability(ctx context.Context, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error)
	CancelBooking(ctx context.Context, actorID uuid.UUID, bookingID string) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, bookerID uuid.UUID, req *request.HistoryRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetUserBookingStats(ctx context.Context, bookerID uuid.UUID) (*response.UserBookingStatsResponse, error)
}

type bookingService struct {
	repo              *repository.Repository
	allocationRetries int
	availabilityCache *gocache.Cache
	availabilityTTL   time.Duration
	log               *zap.Logger
}

func NewBookingService(repo *repository.Repository, config *utils.Config, log *zap.Logger) BookingService {
	retries := config.Booking.AllocationRetries
	if retries < 1 {
		retries = 1
	}

	ttl := config.Cache.AvailabilityTTL
	return &bookingService{
		repo:              repo,
		allocationRetries: retries,
		availabilityCache: gocache.New(ttl, 2*ttl),
		availabilityTTL:   ttl,
		log:               log.With(zap.String("service", "booking")),
	}
}

// findAvailableSpot scans spot numbers 1..totalSpots in ascending order and
// returns the first with no overlapping booked reservation. The lowest free
// spot always wins, so allocation is deterministic. Returns 0 when the lot
// is full for some part of the range.
func (s *bookingService) findAvailableSpot(ctx context.Context, lotID uuid.UUID, rng entity.TimeRange, totalSpots int) (int, error) {
	for spot := 1; spot <= totalSpots; spot++ {
		taken, err := s.repo.Booking.HasOverlap(ctx, lotID, spot, rng)
		if err != nil {
			return 0, err
		}
		if !taken {
			return spot, nil
		}
	}
	return 0, nil
}

// countAvailableSpots runs the same per-spot check as findAvailableSpot
// across the whole lot, so count > 0 exactly when findAvailableSpot finds
// one.
func (s *bookingService) countAvailableSpots(ctx context.Context, lotID uuid.UUID, rng entity.TimeRange, totalSpots int) (int, error) {
	available := 0
	for spot := 1; spot <= totalSpots; spot++ {
		taken, err := s.repo.Booking.HasOverlap(ctx, lotID, spot, rng)
		if err != nil {
			return 0, err
		}
		if !taken {
			available++
		}
	}
	return available, nil
}

func (s *bookingService) parseRange(startTime, endTime string) (entity.TimeRange, error) {
	start, err := utils.ParseTime(startTime)
	if err != nil {
		return entity.TimeRange{}, apperrors.InvalidArgument("invalid start time")
	}
	end, err := utils.ParseTime(endTime)
	if err != nil {
		return entity.TimeRange{}, apperrors.InvalidArgument("invalid end time")
	}

	rng := entity.NewTimeRange(start, end)
	if err := rng.Validate(); err != nil {
		return entity.TimeRange{}, apperrors.InvalidArgument(err.Error())
	}
	return rng, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, bookerID uuid.UUID, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, apperrors.InvalidArgument(utils.FormatValidationErrors(errs))
	}

	lotID, err := uuid.Parse(req.LotID)
	if err != nil {
		return nil, apperrors.InvalidArgument("invalid lot ID")
	}

	rng, err := s.parseRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	lot, err := s.repo.Lot.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, apperrors.NotFound("parking lot")
	}

	amount := float64(rng.Hours()) * lot.HourlyRate

	// The vehicle row is persisted only after a spot is secured, so a full
	// lot or an exhausted retry loop leaves nothing behind.
	var vehicleID *uuid.UUID
	var vehicle *entity.VehicleDetails
	if req.Vehicle != nil {
		vehicle = &entity.VehicleDetails{
			BaseSimple: entity.BaseSimple{
				ID:        uuid.New(),
				CreatedAt: time.Now().UTC(),
			},
			LicensePlate: req.Vehicle.LicensePlate,
			Model:        req.Vehicle.Model,
			Color:        req.Vehicle.Color,
			OwnerID:      bookerID,
		}
		vehicleID = &vehicle.ID
	}

	// Find-then-create is a check-then-act race: a concurrent request can
	// claim the candidate spot between the scan and the insert. The store
	// re-checks under the per-lot lock; on a lost race we re-scan, a small
	// bounded number of times.
	var booking *entity.Booking
	for attempt := 1; attempt <= s.allocationRetries; attempt++ {
		spot, err := s.findAvailableSpot(ctx, lotID, rng, lot.TotalSpots)
		if err != nil {
			return nil, err
		}
		if spot == 0 {
			return nil, apperrors.Conflict("no spots available for the selected time period")
		}

		now := time.Now().UTC()
		candidate := &entity.Booking{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			LotID:      lotID,
			SpotNumber: spot,
			StartTime:  rng.Start,
			EndTime:    rng.End,
			BookerID:   bookerID,
			VehicleID:  vehicleID,
			Payment: entity.Payment{
				Reference: utils.GeneratePaymentReference(),
				Amount:    amount,
				Status:    entity.PaymentStatusPending,
			},
			Status: entity.BookingStatusBooked,
		}

		err = s.repo.Booking.CreateIfSpotFree(ctx, candidate)
		if err == nil {
			booking = candidate
			break
		}
		if errors.Is(err, repository.ErrSpotTaken) {
			s.log.Debug("Lost allocation race, retrying",
				zap.String("lot_id", lotID.String()),
				zap.Int("spot_number", spot),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return nil, err
	}

	if booking == nil {
		return nil, apperrors.Conflict("could not reserve a spot, please retry")
	}

	if vehicle != nil {
		if err := s.repo.Vehicle.Create(ctx, vehicle); err != nil {
			return nil, err
		}
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("lot_id", lotID.String()),
		zap.Int("spot_number", booking.SpotNumber),
		zap.String("booker_id", bookerID.String()),
		zap.Float64("amount", amount),
	)

	s.refreshAdvisoryCounter(ctx, lot)

	resp := response.BookingToResponse(booking, time.Now().UTC())
	resp.LotName = lot.Name
	resp.Location = lot.Location
	resp.Vehicle = response.VehicleToResponse(vehicle)

	return &response.CreateBookingResponse{
		Booking:          resp,
		AssignedSpot:     booking.SpotNumber,
		PaymentReference: booking.Payment.Reference,
	}, nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.InvalidArgument(utils.FormatValidationErrors(errs))
	}

	lotID, err := uuid.Parse(req.LotID)
	if err != nil {
		return nil, apperrors.InvalidArgument("invalid lot ID")
	}

	rng, err := s.parseRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	if !rng.Start.After(time.Now().UTC()) {
		return nil, apperrors.InvalidArgument("start time cannot be in the past")
	}

	// Cached responses are advisory only; allocation always recomputes from
	// live overlap queries.
	cacheKey := fmt.Sprintf("%s|%d|%d", lotID, rng.Start.Unix(), rng.End.Unix())
	if cached, found := s.availabilityCache.Get(cacheKey); found {
		return cached.(*response.AvailabilityResponse), nil
	}

	lot, err := s.repo.Lot.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, apperrors.NotFound("parking lot")
	}

	available, err := s.countAvailableSpots(ctx, lotID, rng, lot.TotalSpots)
	if err != nil {
		return nil, err
	}

	hours := rng.Hours()
	resp := &response.AvailabilityResponse{
		Available:       available > 0,
		AvailableSpots:  available,
		TotalSpots:      lot.TotalSpots,
		DurationInHours: hours,
		HourlyRate:      lot.HourlyRate,
		TotalCost:       float64(hours) * lot.HourlyRate,
		LotName:         lot.Name,
		Location:        lot.Location,
	}

	s.availabilityCache.Set(cacheKey, resp, s.availabilityTTL)

	return resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actorID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperrors.InvalidArgument("invalid booking ID")
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking")
	}

	now := time.Now().UTC()
	if err := booking.CancellableBy(actorID, now); err != nil {
		switch {
		case errors.Is(err, entity.ErrNotBooker):
			return nil, apperrors.Forbidden("not authorized to cancel this booking")
		default:
			return nil, apperrors.InvalidState(err.Error())
		}
	}

	// The SQL guard repeats the checks, so a concurrent state change loses
	// the race cleanly instead of cancelling twice.
	if err := s.repo.Booking.Cancel(ctx, id, now); err != nil {
		return nil, apperrors.InvalidState("booking is no longer cancellable")
	}

	booking.Status = entity.BookingStatusCancelled

	s.log.Info("Booking cancelled",
		zap.String("booking_id", id.String()),
		zap.String("actor_id", actorID.String()),
	)

	if lot, lotErr := s.repo.Lot.FindByID(ctx, booking.LotID); lotErr == nil && lot != nil {
		s.refreshAdvisoryCounter(ctx, lot)
	}

	resp := response.BookingToResponse(booking, now)
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, bookerID uuid.UUID, req *request.HistoryRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.InvalidArgument(utils.FormatValidationErrors(errs))
	}

	filter, err := historyFilterFromRequest(req)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.Booking.FindByBookerID(ctx, bookerID, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Booking.CountByBookerID(ctx, bookerID, filter)
	if err != nil {
		return nil, err
	}

	// One snapshot for the whole page, so no two rows disagree on what
	// "now" means.
	now := time.Now().UTC()
	items := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		items[i] = response.BookingToResponse(booking, now)

		if lot, err := s.repo.Lot.FindByID(ctx, booking.LotID); err == nil && lot != nil {
			items[i].LotName = lot.Name
			items[i].Location = lot.Location
		}
		if booking.VehicleID != nil {
			if vehicle, err := s.repo.Vehicle.FindByID(ctx, *booking.VehicleID); err == nil {
				items[i].Vehicle = response.VehicleToResponse(vehicle)
			}
		}
	}

	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}

func (s *bookingService) GetUserBookingStats(ctx context.Context, bookerID uuid.UUID) (*response.UserBookingStatsResponse, error) {
	total, err := s.repo.Booking.CountByBookerID(ctx, bookerID, repository.HistoryFilter{IncludeCancelled: true})
	if err != nil {
		return nil, err
	}

	paid, err := s.repo.Booking.CountPaidByBookerID(ctx, bookerID)
	if err != nil {
		return nil, err
	}

	upcoming, err := s.repo.Booking.CountUpcomingPaidByBookerID(ctx, bookerID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	spent, err := s.repo.Booking.SumSpentByBookerID(ctx, bookerID)
	if err != nil {
		return nil, err
	}

	return &response.UserBookingStatsResponse{
		TotalBookings:    total,
		PaidBookings:     paid,
		UpcomingBookings: upcoming,
		TotalSpent:       spent,
	}, nil
}

// refreshAdvisoryCounter recomputes the display-only available counter from
// live occupancy. Best effort: failures are logged, never surfaced, and the
// counter is never read during allocation.
func (s *bookingService) refreshAdvisoryCounter(ctx context.Context, lot *entity.ParkingLot) {
	occupied, err := s.repo.Booking.CountOccupiedByLotIDs(ctx, []uuid.UUID{lot.ID}, time.Now().UTC())
	if err != nil {
		s.log.Warn("Failed to refresh advisory counter", zap.Error(err), zap.String("lot_id", lot.ID.String()))
		return
	}

	available := lot.TotalSpots - int(occupied)
	if available < 0 {
		available = 0
	}
	if err := s.repo.Lot.UpdateAvailableSpots(ctx, lot.ID, available); err != nil {
		s.log.Warn("Failed to store advisory counter", zap.Error(err), zap.String("lot_id", lot.ID.String()))
	}
}

func historyFilterFromRequest(req *request.HistoryRequest) (repository.HistoryFilter, error) {
	filter := repository.HistoryFilter{
		Status:           entity.BookingStatus(req.Status),
		PaymentStatus:    entity.PaymentStatus(req.PaymentStatus),
		IncludeCancelled: req.IncludeCancelled,
		TimeFilter:       req.TimeFilter,
	}

	if req.StartDate != "" && req.EndDate != "" {
		from, err := utils.ParseTime(req.StartDate)
		if err != nil {
			return filter, apperrors.InvalidArgument("invalid start date")
		}
		to, err := utils.ParseTime(req.EndDate)
		if err != nil {
			return filter, apperrors.InvalidArgument("invalid end date")
		}
		filter.From = &from
		filter.To = &to
	}

	return filter, nil
}
