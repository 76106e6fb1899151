package usecase

import (
	"context"
	"time"

	"parking-booking/internal/data/entity"
	"parking-booking/internal/data/repository"
	"parking-booking/internal/dto/request"
	"parking-booking/internal/dto/response"
	apperrors "parking-booking/pkg/errors"
	"parking-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LotService interface {
	CreateLot(ctx context.Context, ownerID uuid.UUID, req *request.CreateParkingLotRequest) (*response.ParkingLotResponse, error)
	GetLots(ctx context.Context) ([]response.ParkingLotResponse, error)
	SearchLots(ctx context.Context, req *request.SearchLotsRequest) ([]response.ParkingLotResponse, error)
	GetMyLots(ctx context.Context, ownerID uuid.UUID) ([]response.ParkingLotResponse, error)
	GetLot(ctx context.Context, lotID string) (*response.ParkingLotResponse, error)
	UpdateLot(ctx context.Context, ownerID uuid.UUID, lotID string, req *request.UpdateParkingLotRequest) (*response.ParkingLotResponse, error)
	DeleteLot(ctx context.Context, ownerID uuid.UUID, lotID string) error
}

type lotService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewLotService(repo *repository.Repository, log *zap.Logger) LotService {
	return &lotService{
		repo: repo,
		log:  log.With(zap.String("service", "lot")),
	}
}

func (s *lotService) CreateLot(ctx context.Context, ownerID uuid.UUID, req *request.CreateParkingLotRequest) (*response.ParkingLotResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.InvalidArgument(utils.FormatValidationErrors(errs))
	}

	now := time.Now().UTC()
	lot := &entity.ParkingLot{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:     req.Name,
		Location: req.Location,
		// A new lot starts with the advisory counter full.
		TotalSpots:     req.TotalSpots,
		AvailableSpots: req.TotalSpots,
		HourlyRate:     req.HourlyRate,
		OwnerID:        ownerID,
	}

	if err := s.repo.Lot.Create(ctx, lot); err != nil {
		return nil, err
	}

	s.log.Info("Parking lot created",
		zap.String("lot_id", lot.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.Int("total_spots", lot.TotalSpots),
	)

	resp := response.ParkingLotToResponse(lot)
	return &resp, nil
}

func (s *lotService) GetLots(ctx context.Context) ([]response.ParkingLotResponse, error) {
	lots, err := s.repo.Lot.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]response.ParkingLotResponse, len(lots))
	for i, lot := range lots {
		responses[i] = response.ParkingLotToResponse(lot)
	}
	return responses, nil
}

func (s *lotService) SearchLots(ctx context.Context, req *request.SearchLotsRequest) ([]response.ParkingLotResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.InvalidArgument(utils.FormatValidationErrors(errs))
	}
	if req.Query == "" && req.Location == "" && req.MinPrice == nil && req.MaxPrice == nil {
		return nil, apperrors.InvalidArgument("provide at least one search criteria (query, location, minPrice, or maxPrice)")
	}

	lots, err := s.repo.Lot.Search(ctx, repository.LotSearchFilter{
		Query:    req.Query,
		Location: req.Location,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]response.ParkingLotResponse, len(lots))
	for i, lot := range lots {
		responses[i] = response.ParkingLotToResponse(lot)
	}
	return responses, nil
}

func (s *lotService) GetMyLots(ctx context.Context, ownerID uuid.UUID) ([]response.ParkingLotResponse, error) {
	lots, err := s.repo.Lot.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	responses := make([]response.ParkingLotResponse, len(lots))
	for i, lot := range lots {
		responses[i] = response.ParkingLotToResponse(lot)
	}
	return responses, nil
}

func (s *lotService) GetLot(ctx context.Context, lotID string) (*response.ParkingLotResponse, error) {
	id, err := uuid.Parse(lotID)
	if err != nil {
		return nil, apperrors.InvalidArgument("invalid lot ID")
	}

	lot, err := s.repo.Lot.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, apperrors.NotFound("parking lot")
	}

	resp := response.ParkingLotToResponse(lot)
	return &resp, nil
}

func (s *lotService) UpdateLot(ctx context.Context, ownerID uuid.UUID, lotID string, req *request.UpdateParkingLotRequest) (*response.ParkingLotResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperrors.InvalidArgument(utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(lotID)
	if err != nil {
		return nil, apperrors.InvalidArgument("invalid lot ID")
	}

	lot, err := s.repo.Lot.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, apperrors.NotFound("parking lot")
	}
	if lot.OwnerID != ownerID {
		return nil, apperrors.Forbidden("not authorized to update this parking lot")
	}

	if req.Name != "" {
		lot.Name = req.Name
	}
	if req.Location != "" {
		lot.Location = req.Location
	}
	if req.TotalSpots > 0 {
		// Shrinking totalSpots does not touch existing bookings above the
		// new limit; only the advisory counter is re-clamped.
		lot.TotalSpots = req.TotalSpots
	}
	if req.HourlyRate > 0 {
		lot.HourlyRate = req.HourlyRate
	}
	lot.ClampAvailable()
	lot.UpdatedAt = time.Now().UTC()

	if err := s.repo.Lot.Update(ctx, lot); err != nil {
		return nil, err
	}

	s.log.Info("Parking lot updated", zap.String("lot_id", id.String()))

	resp := response.ParkingLotToResponse(lot)
	return &resp, nil
}

func (s *lotService) DeleteLot(ctx context.Context, ownerID uuid.UUID, lotID string) error {
	id, err := uuid.Parse(lotID)
	if err != nil {
		return apperrors.InvalidArgument("invalid lot ID")
	}

	lot, err := s.repo.Lot.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if lot == nil {
		return apperrors.NotFound("parking lot")
	}
	if lot.OwnerID != ownerID {
		return apperrors.Forbidden("not authorized to delete this parking lot")
	}

	// Never orphan live bookings silently.
	active, err := s.repo.Booking.HasActiveBookings(ctx, id, time.Now().UTC())
	if err != nil {
		return err
	}
	if active {
		return apperrors.Conflict("parking lot has active bookings")
	}

	if err := s.repo.Lot.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("Parking lot deleted",
		zap.String("lot_id", id.String()),
		zap.String("owner_id", ownerID.String()),
	)
	return nil
}
