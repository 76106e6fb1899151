package wire

import (
	"parking-booking/internal/adaptor"
	"parking-booking/pkg/middleware"
	"parking-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== WEBHOOK ROUTE (signature verified) ====================
	// The provider authenticates itself with an HMAC signature over the raw
	// body, not with user identity.
	r.Group(func(r chi.Router) {
		r.Use(middleware.WebhookSignature(config.Payment.SecretKey, log))

		// POST /api/payments/webhook - Payment provider event delivery
		r.Post("/api/payments/webhook", paymentHandler.HandleWebhook)
	})

	// ==================== PROTECTED ROUTES (require identity) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))

		// GET /api/payments/verify/{reference} - Check payment state by reference
		r.Get("/api/payments/verify/{reference}", paymentHandler.VerifyPayment)
	})
}
