package adaptor

import (
	"net/http"

	"parking-booking/internal/usecase"
	apperrors "parking-booking/pkg/errors"
	"parking-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Booking   *BookingHandler
	Payment   *PaymentHandler
	Lot       *LotHandler
	Analytics *AnalyticsHandler
}

func NewHandler(service *usecase.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Booking:   NewBookingHandler(service.Booking, logger),
		Payment:   NewPaymentHandler(service.Payment, logger),
		Lot:       NewLotHandler(service.Lot, logger),
		Analytics: NewAnalyticsHandler(service.Analytics, logger),
	}
}

// handleServiceError maps a service failure onto the response envelope.
// Internal errors are logged with their cause but leave the client with an
// opaque message.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	appErr := apperrors.AsAppError(err)

	if appErr.Code == apperrors.CodeInternal {
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation),
		)
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	log.Warn(operation+" failed",
		zap.Error(err),
		zap.String("operation", operation),
		zap.String("code", appErr.Code),
	)
	utils.ResponseError(w, appErr.HTTPStatus, appErr.Message)
}
