package events

import (
	"context"
	"strconv"

	"bikeshare/pkg/kafka"
	"bikeshare/pkg/model"
)

const Source = "rental-service"

// Emitter turns rental outcomes into messages on the rental events topic.
// Messages are keyed by cyclist so one cyclist's events stay ordered.
type Emitter struct {
	publisher kafka.Publisher
}

func NewEmitter(publisher kafka.Publisher) *Emitter {
	return &Emitter{publisher: publisher}
}

func (e *Emitter) RefundRequested(ctx context.Context, event model.RefundRequestedEvent, correlationID string) error {
	return e.publish(ctx, model.EventChargeRefundRequested, event.CyclistID, event, correlationID)
}

func (e *Emitter) RentalStarted(ctx context.Context, event model.RentalEvent, correlationID string) error {
	return e.publish(ctx, model.EventRentalStarted, event.CyclistID, event, correlationID)
}

func (e *Emitter) RentalFinished(ctx context.Context, event model.RentalEvent, correlationID string) error {
	return e.publish(ctx, model.EventRentalFinished, event.CyclistID, event, correlationID)
}

func (e *Emitter) publish(ctx context.Context, eventType string, cyclistID int64, value any, correlationID string) error {
	msg, err := kafka.NewMessage().
		WithKey(strconv.FormatInt(cyclistID, 10)).
		WithValue(value).
		WithEventType(eventType).
		WithSchemaVersion(model.EventSchemaVersion).
		WithSource(Source).
		WithCorrelationID(correlationID).
		Build()
	if err != nil {
		return err
	}
	return e.publisher.Publish(ctx, msg)
}
