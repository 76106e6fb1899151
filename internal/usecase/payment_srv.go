package usecase

import (
	"context"
	"time"

	"parking-booking/internal/data/repository"
	"parking-booking/internal/dto/response"
	apperrors "parking-booking/pkg/errors"

	"go.uber.org/zap"
)

// Webhook event kinds delivered by the payment provider.
const (
	EventChargeSuccess = "charge.success"
	EventChargeFailed  = "charge.failed"
)

type PaymentService interface {
	// HandleWebhookEvent reconciles a signature-verified provider event with
	// the booking holding the payment reference. Transitions are idempotent:
	// duplicate and out-of-order deliveries never error.
	HandleWebhookEvent(ctx context.Context, eventKind, reference string) error
	VerifyPayment(ctx context.Context, reference string) (*response.BookingResponse, error)
}

type paymentService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewPaymentService(repo *repository.Repository, log *zap.Logger) PaymentService {
	return &paymentService{
		repo: repo,
		log:  log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) HandleWebhookEvent(ctx context.Context, eventKind, reference string) error {
	switch eventKind {
	case EventChargeSuccess:
		booking, err := s.repo.Booking.FindByPaymentReference(ctx, reference)
		if err != nil {
			return err
		}
		if booking == nil {
			return apperrors.NotFound("booking")
		}

		changed, err := s.repo.Booking.SetPaymentSuccess(ctx, reference, time.Now().UTC())
		if err != nil {
			return err
		}
		if changed {
			s.log.Info("Payment confirmed",
				zap.String("reference", reference),
				zap.String("booking_id", booking.ID.String()),
			)
		} else {
			s.log.Info("Duplicate success event ignored", zap.String("reference", reference))
		}

	case EventChargeFailed:
		// Missing bookings are tolerated silently; the provider expects 200
		// regardless to stop retries.
		changed, err := s.repo.Booking.SetPaymentFailed(ctx, reference)
		if err != nil {
			return err
		}
		if changed {
			s.log.Info("Payment failed", zap.String("reference", reference))
		} else {
			s.log.Info("Failure event without pending payment ignored", zap.String("reference", reference))
		}

	default:
		s.log.Debug("Unhandled webhook event", zap.String("event", eventKind))
	}

	return nil
}

func (s *paymentService) VerifyPayment(ctx context.Context, reference string) (*response.BookingResponse, error) {
	booking, err := s.repo.Booking.FindByPaymentReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking")
	}

	resp := response.BookingToResponse(booking, time.Now().UTC())

	if lot, err := s.repo.Lot.FindByID(ctx, booking.LotID); err == nil && lot != nil {
		resp.LotName = lot.Name
		resp.Location = lot.Location
	}
	if booking.VehicleID != nil {
		if vehicle, err := s.repo.Vehicle.FindByID(ctx, *booking.VehicleID); err == nil {
			resp.Vehicle = response.VehicleToResponse(vehicle)
		}
	}

	return &resp, nil
}
