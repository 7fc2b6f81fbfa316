package model

import "time"

type EmailRequest struct {
	To      string `json:"destinatario" validate:"required,email"`
	Subject string `json:"assunto" validate:"required,min=1,max=200"`
	Body    string `json:"corpo" validate:"required,min=1"`
}

type Email struct {
	ID      int64      `json:"id" bson:"_id"`
	To      string     `json:"destinatario" bson:"destinatario"`
	Subject string     `json:"assunto" bson:"assunto"`
	Body    string     `json:"corpo" bson:"corpo"`
	Sent    bool       `json:"enviado" bson:"enviado"`
	SentAt  *time.Time `json:"data_envio,omitempty" bson:"data_envio,omitempty"`
}
