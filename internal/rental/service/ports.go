package service

import (
	"context"

	"bikeshare/pkg/model"
)

// EquipmentGateway is the part of the equipment service the rental flows
// command. *client.EquipmentClient satisfies it.
type EquipmentGateway interface {
	BikeAtLock(ctx context.Context, lockID int64) (*model.Bicycle, error)
	Unlock(ctx context.Context, lockID, bikeID int64) error
	Lock(ctx context.Context, lockID, bikeID int64) error
	Bicycle(ctx context.Context, bikeID int64) (*model.Bicycle, error)
}

// PaymentGateway is satisfied by *client.PaymentClient.
type PaymentGateway interface {
	Charge(ctx context.Context, amount float64, cyclistID int64) (*model.Charge, error)
	Enqueue(ctx context.Context, amount float64, cyclistID int64) (*model.Charge, error)
}

// Notifier is satisfied by *client.NotificationClient.
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// EventEmitter is satisfied by *events.Emitter.
type EventEmitter interface {
	RefundRequested(ctx context.Context, event model.RefundRequestedEvent, correlationID string) error
	RentalStarted(ctx context.Context, event model.RentalEvent, correlationID string) error
	RentalFinished(ctx context.Context, event model.RentalEvent, correlationID string) error
}
