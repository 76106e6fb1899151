package usecase

import (
	"context"
	"testing"
	"time"

	"parking-booking/internal/data/entity"
	apperrors "parking-booking/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleWebhookChargeSuccess(t *testing.T) {
	repo := newMemRepository()
	svc := NewPaymentService(repo, zap.NewNop())
	lot := seedLot(t, repo, 2, 10)
	ctx := context.Background()

	start := time.Now().UTC().Add(24 * time.Hour)
	booking := seedBooking(t, repo, lot.ID, 1, start, start.Add(2*time.Hour))
	reference := booking.Payment.Reference

	require.NoError(t, svc.HandleWebhookEvent(ctx, EventChargeSuccess, reference))

	stored, err := repo.Booking.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusSuccess, stored.Payment.Status)
	require.NotNil(t, stored.Payment.PaidAt)

	// Provider retries deliver the same event again. No error, no change.
	firstPaidAt := *stored.Payment.PaidAt
	require.NoError(t, svc.HandleWebhookEvent(ctx, EventChargeSuccess, reference))

	stored, err = repo.Booking.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, firstPaidAt, *stored.Payment.PaidAt, "replay keeps the original paid timestamp")
}

func TestHandleWebhookChargeFailed(t *testing.T) {
	repo := newMemRepository()
	svc := NewPaymentService(repo, zap.NewNop())
	lot := seedLot(t, repo, 2, 10)
	ctx := context.Background()

	start := time.Now().UTC().Add(24 * time.Hour)
	booking := seedBooking(t, repo, lot.ID, 1, start, start.Add(2*time.Hour))

	require.NoError(t, svc.HandleWebhookEvent(ctx, EventChargeFailed, booking.Payment.Reference))

	stored, err := repo.Booking.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusFailed, stored.Payment.Status)

	// A late failure after success must not clobber the terminal state.
	other := seedBooking(t, repo, lot.ID, 2, start, start.Add(2*time.Hour))
	require.NoError(t, svc.HandleWebhookEvent(ctx, EventChargeSuccess, other.Payment.Reference))
	require.NoError(t, svc.HandleWebhookEvent(ctx, EventChargeFailed, other.Payment.Reference))

	stored, err = repo.Booking.FindByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusSuccess, stored.Payment.Status)
}

func TestHandleWebhookSuccessAfterFailure(t *testing.T) {
	repo := newMemRepository()
	svc := NewPaymentService(repo, zap.NewNop())
	lot := seedLot(t, repo, 2, 10)
	ctx := context.Background()

	start := time.Now().UTC().Add(24 * time.Hour)
	booking := seedBooking(t, repo, lot.ID, 1, start, start.Add(2*time.Hour))
	reference := booking.Payment.Reference

	// The provider can confirm a charge after delivering a failure event
	// for it. Success overrides the earlier failure.
	require.NoError(t, svc.HandleWebhookEvent(ctx, EventChargeFailed, reference))
	require.NoError(t, svc.HandleWebhookEvent(ctx, EventChargeSuccess, reference))

	stored, err := repo.Booking.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusSuccess, stored.Payment.Status)
	require.NotNil(t, stored.Payment.PaidAt)
}

func TestHandleWebhookUnknownReference(t *testing.T) {
	repo := newMemRepository()
	svc := NewPaymentService(repo, zap.NewNop())
	ctx := context.Background()

	err := svc.HandleWebhookEvent(ctx, EventChargeSuccess, "PAY-1700000000000-missing00")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	// Failure events for unknown references are tolerated silently.
	assert.NoError(t, svc.HandleWebhookEvent(ctx, EventChargeFailed, "PAY-1700000000000-missing00"))
}

func TestHandleWebhookUnknownEventKind(t *testing.T) {
	repo := newMemRepository()
	svc := NewPaymentService(repo, zap.NewNop())

	assert.NoError(t, svc.HandleWebhookEvent(context.Background(), "transfer.success", "PAY-1700000000000-abc123def"))
}

func TestVerifyPayment(t *testing.T) {
	repo := newMemRepository()
	svc := NewPaymentService(repo, zap.NewNop())
	lot := seedLot(t, repo, 2, 10)
	ctx := context.Background()

	start := time.Now().UTC().Add(24 * time.Hour)
	booking := seedBooking(t, repo, lot.ID, 1, start, start.Add(2*time.Hour))

	resp, err := svc.VerifyPayment(ctx, booking.Payment.Reference)
	require.NoError(t, err)
	require.NotNil(t, resp.Payment)
	assert.Equal(t, entity.PaymentStatusPending, resp.Payment.Status)
	assert.Equal(t, lot.Name, resp.LotName)

	_, err = svc.VerifyPayment(ctx, "PAY-1700000000000-missing00")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}
