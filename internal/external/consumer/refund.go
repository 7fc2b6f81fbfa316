package consumer

import (
	"context"
	"net/http"

	"bikeshare/internal/external/service"
	apperrors "bikeshare/pkg/errors"
	"bikeshare/pkg/kafka"
	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"
)

// RefundHandler cancels gateway charges named by charge.refund_requested
// events. Other event types on the topic are acknowledged and ignored.
type RefundHandler struct {
	charges service.ChargeService
	log     *logger.Logger
}

func NewRefundHandler(charges service.ChargeService, log *logger.Logger) *RefundHandler {
	return &RefundHandler{
		charges: charges,
		log:     log.Component("refund-consumer"),
	}
}

func (h *RefundHandler) Handle(ctx context.Context, msg kafka.Message) error {
	if msg.Headers[kafka.HeaderEventType] != model.EventChargeRefundRequested {
		return nil
	}

	var event model.RefundRequestedEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode refund event", err)
	}
	if event.GatewayChargeID == nil {
		return kafka.NewPermanentError("refund event has no gateway charge id", nil)
	}

	charge, err := h.charges.Refund(ctx, &event)
	if err != nil {
		if apperrors.AsAppError(err).StatusCode() < http.StatusInternalServerError {
			return kafka.NewPermanentError("refund rejected", err)
		}
		return kafka.NewTransientError("refund failed", err)
	}

	h.log.Info("Refund applied",
		"gateway_charge_id", charge.ID,
		"rental_charge_id", event.ChargeID,
		"status", charge.Status,
		"correlation_id", msg.Headers[kafka.HeaderCorrelationID],
	)
	return nil
}
