package model

import "time"

type CardValidationRequest struct {
	Number string `json:"numeroCartao" validate:"required"`
	Holder string `json:"nomePortador" validate:"required,min=1,max=100"`
	Expiry string `json:"validade" validate:"required"`
	CVV    string `json:"cvv" validate:"required"`
}

// CardValidation is the stored outcome of a validation. The number is kept
// masked and the CVV is never stored.
type CardValidation struct {
	ID          int64     `json:"id" bson:"_id"`
	Number      string    `json:"numeroCartao" bson:"numeroCartao"`
	Holder      string    `json:"nomePortador" bson:"nomePortador"`
	Expiry      string    `json:"validade" bson:"validade"`
	Valid       bool      `json:"valido" bson:"valido"`
	ValidatedAt time.Time `json:"dataValidacao" bson:"dataValidacao"`
	Message     string    `json:"mensagem" bson:"mensagem"`
}
