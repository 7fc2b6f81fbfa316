package model

type CyclistStatus string

const (
	CyclistActive               CyclistStatus = "ATIVO"
	CyclistInactive             CyclistStatus = "INATIVO"
	CyclistAwaitingConfirmation CyclistStatus = "AGUARDANDO_CONFIRMACAO"
)

func (s CyclistStatus) CanRent() bool {
	switch s {
	case CyclistActive:
		return true
	case CyclistInactive, CyclistAwaitingConfirmation:
		return false
	default:
		return false
	}
}

// Cyclist is the part of a cyclist's profile the rental flow reads.
// Registration lives elsewhere.
type Cyclist struct {
	ID     int64         `json:"id" bson:"_id"`
	Name   string        `json:"nome" bson:"nome"`
	Email  string        `json:"email" bson:"email"`
	Status CyclistStatus `json:"status" bson:"status"`
}
