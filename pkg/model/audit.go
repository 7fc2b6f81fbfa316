package model

import "time"

type AuditAction string

const (
	AuditJoinBicycle     AuditAction = "INTEGRAR_BICICLETA"
	AuditWithdrawBicycle AuditAction = "RETIRAR_BICICLETA"
	AuditJoinLock        AuditAction = "INTEGRAR_TRANCA"
	AuditWithdrawLock    AuditAction = "RETIRAR_TRANCA"
)

func (a AuditAction) IsWithdrawal() bool {
	switch a {
	case AuditWithdrawBicycle, AuditWithdrawLock:
		return true
	case AuditJoinBicycle, AuditJoinLock:
		return false
	default:
		return false
	}
}

type EquipmentType string

const (
	EquipmentBicycle EquipmentType = "BICICLETA"
	EquipmentLock    EquipmentType = "TRANCA"
)

func (t EquipmentType) Valid() bool {
	switch t {
	case EquipmentBicycle, EquipmentLock:
		return true
	default:
		return false
	}
}

// WithdrawalAction is the audit action that withdraws this kind of equipment.
func (t EquipmentType) WithdrawalAction() AuditAction {
	if t == EquipmentLock {
		return AuditWithdrawLock
	}
	return AuditWithdrawBicycle
}

// AuditRecord is append-only.
type AuditRecord struct {
	ID              int64          `json:"id" bson:"_id"`
	Action          AuditAction    `json:"tipo_acao" bson:"tipo_acao"`
	EquipmentType   EquipmentType  `json:"tipo_equipamento" bson:"tipo_equipamento"`
	EquipmentID     int64          `json:"id_equipamento" bson:"id_equipamento"`
	EquipmentNumber int64          `json:"numero_equipamento" bson:"numero_equipamento"`
	TechnicianID    int64          `json:"id_funcionario" bson:"id_funcionario"`
	LockID          *int64         `json:"id_tranca,omitempty" bson:"id_tranca,omitempty"`
	TotemID         *int64         `json:"id_totem,omitempty" bson:"id_totem,omitempty"`
	TargetStatus    string         `json:"status_destino,omitempty" bson:"status_destino,omitempty"`
	Details         map[string]any `json:"detalhes,omitempty" bson:"detalhes,omitempty"`
	Timestamp       time.Time      `json:"data_hora" bson:"data_hora"`
}

type AuditFilter struct {
	TechnicianID  int64
	EquipmentType EquipmentType
	EquipmentID   int64
	Action        AuditAction
	TargetStatus  string
}
