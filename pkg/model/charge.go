package model

import "time"

type ChargeStatus string

const (
	ChargePending   ChargeStatus = "PENDENTE"
	ChargePaid      ChargeStatus = "PAGA"
	ChargeFailed    ChargeStatus = "FALHA"
	ChargeCancelled ChargeStatus = "CANCELADA"
)

func (s ChargeStatus) Valid() bool {
	switch s {
	case ChargePending, ChargePaid, ChargeFailed, ChargeCancelled:
		return true
	default:
		return false
	}
}

// IsFinal reports whether the charge has left the queue.
func (s ChargeStatus) IsFinal() bool {
	switch s {
	case ChargePaid, ChargeFailed, ChargeCancelled:
		return true
	case ChargePending:
		return false
	default:
		return false
	}
}

type ChargeKind string

const (
	ChargeInitialRental ChargeKind = "ALUGUEL_INICIAL"
	ChargeExtraFee      ChargeKind = "TAXA_EXTRA"
)

type Charge struct {
	ID                    int64        `json:"id" bson:"_id"`
	Amount                float64      `json:"valor" bson:"valor"`
	CyclistID             int64        `json:"ciclista" bson:"ciclista"`
	Status                ChargeStatus `json:"status" bson:"status"`
	RequestedAt           time.Time    `json:"horaSolicitacao" bson:"horaSolicitacao"`
	FinalizedAt           *time.Time   `json:"horaFinalizacao,omitempty" bson:"horaFinalizacao,omitempty"`
	Kind                  ChargeKind   `json:"tipo,omitempty" bson:"tipo,omitempty"`
	GatewayID             *int64       `json:"cobrancaGateway,omitempty" bson:"cobrancaGateway,omitempty"`
	ReconciliationPending bool         `json:"reconciliacaoPendente,omitempty" bson:"reconciliacaoPendente,omitempty"`
}

// ChargeRequest is the body accepted by the gateway's charge and queue
// endpoints. Status lets a caller force an outcome; it defaults to PAGA.
type ChargeRequest struct {
	Amount    float64      `json:"valor" validate:"required"`
	CyclistID int64        `json:"ciclista" validate:"required,gt=0"`
	Status    ChargeStatus `json:"status,omitempty" validate:"omitempty,charge_status"`
}
