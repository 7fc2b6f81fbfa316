package model

import "time"

type RentalStatus string

const (
	RentalInProgress RentalStatus = "EM_ANDAMENTO"
	RentalFinished   RentalStatus = "FINALIZADO"
)

func (s RentalStatus) IsActive() bool {
	switch s {
	case RentalInProgress:
		return true
	case RentalFinished:
		return false
	default:
		return false
	}
}

type Rental struct {
	ID            int64        `json:"id" bson:"_id"`
	CyclistID     int64        `json:"ciclista" bson:"ciclista"`
	StartLockID   int64        `json:"trancaInicio" bson:"trancaInicio"`
	BicycleID     int64        `json:"bicicleta" bson:"bicicleta"`
	StartTime     time.Time    `json:"horaInicio" bson:"horaInicio"`
	EndLockID     *int64       `json:"trancaFim,omitempty" bson:"trancaFim,omitempty"`
	EndTime       *time.Time   `json:"horaFim,omitempty" bson:"horaFim,omitempty"`
	ChargeID      int64        `json:"cobranca" bson:"cobranca"`
	ExtraChargeID *int64       `json:"cobrancaExtra,omitempty" bson:"cobrancaExtra,omitempty"`
	Status        RentalStatus `json:"status" bson:"status"`
}

// CheckoutRequest starts a rental at the lock holding the bicycle.
type CheckoutRequest struct {
	CyclistID   int64 `json:"ciclista" validate:"required,gt=0"`
	StartLockID int64 `json:"trancaInicio" validate:"required,gt=0"`
}

type ReturnRequest struct {
	LockID    int64 `json:"idTranca" validate:"required,gt=0"`
	BicycleID int64 `json:"idBicicleta" validate:"required,gt=0"`
}

// ReturnReceipt is the result of a return: the finished rental plus the
// amounts billed.
type ReturnReceipt struct {
	Rental       *Rental `json:"aluguel"`
	TotalAmount  float64 `json:"valorTotal"`
	TotalMinutes int64   `json:"tempoTotal"`
	ExtraFee     float64 `json:"taxaExtra"`
}
