package adaptor

import (
	"encoding/json"
	"net/http"

	"parking-booking/internal/usecase"
	apperrors "parking-booking/pkg/errors"
	"parking-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// webhookPayload is the provider's event envelope. Signature verification
// over the raw body happens in middleware before this handler runs.
type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

// HandleWebhook handles POST /api/payments/webhook. The provider retries on
// any non-200, so every verified delivery is acknowledged, matched or not.
func (h *PaymentHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.log.Warn("Webhook with malformed body", zap.Error(err))
		utils.ResponseSuccess(w, "success", nil)
		return
	}

	err := h.service.HandleWebhookEvent(r.Context(), payload.Event, payload.Data.Reference)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeNotFound) {
			h.log.Info("Webhook for unknown payment reference",
				zap.String("event", payload.Event),
				zap.String("reference", payload.Data.Reference),
			)
			utils.ResponseSuccess(w, "success", nil)
			return
		}

		h.log.Error("Failed to reconcile webhook event",
			zap.Error(err),
			zap.String("event", payload.Event),
		)
		// Acknowledge anyway so a transient storage failure does not turn
		// into a retry storm; the provider's verification endpoint is the
		// fallback path.
		utils.ResponseSuccess(w, "success", nil)
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// VerifyPayment handles GET /api/payments/verify/{reference} (protected)
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		utils.ResponseBadRequest(w, "Payment reference is required", nil)
		return
	}

	booking, err := h.service.VerifyPayment(r.Context(), reference)
	if err != nil {
		handleServiceError(w, h.log, err, "verify payment")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}
