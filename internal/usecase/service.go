package usecase

import (
	"parking-booking/internal/data/repository"
	"parking-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Booking   BookingService
	Payment   PaymentService
	Lot       LotService
	Analytics AnalyticsService
}

func NewService(repo *repository.Repository, config *utils.Config, logger *zap.Logger) *Service {
	return &Service{
		Booking:   NewBookingService(repo, config, logger),
		Payment:   NewPaymentService(repo, logger),
		Lot:       NewLotService(repo, logger),
		Analytics: NewAnalyticsService(repo, logger),
	}
}
