package model

import "time"

// Event types published on the rental events topic.
const (
	EventRentalStarted         = "rental.started"
	EventRentalFinished        = "rental.finished"
	EventChargeRefundRequested = "charge.refund_requested"
)

const EventSchemaVersion = "1"

// RefundRequestedEvent asks the gateway to reverse a charge that a failed
// rental flow already collected.
type RefundRequestedEvent struct {
	ChargeID        int64     `json:"cobranca"`
	GatewayChargeID *int64    `json:"cobrancaGateway,omitempty"`
	CyclistID       int64     `json:"ciclista"`
	Amount          float64   `json:"valor"`
	Reason          string    `json:"motivo"`
	RequestedAt     time.Time `json:"horaSolicitacao"`
}

type RentalEvent struct {
	RentalID    int64        `json:"aluguel"`
	CyclistID   int64        `json:"ciclista"`
	BicycleID   int64        `json:"bicicleta"`
	LockID      int64        `json:"tranca"`
	Status      RentalStatus `json:"status"`
	TotalAmount float64      `json:"valorTotal,omitempty"`
	OccurredAt  time.Time    `json:"horaEvento"`
}
