package model

type Totem struct {
	ID          int64  `json:"id" bson:"_id"`
	Location    string `json:"localizacao" bson:"localizacao" validate:"required,min=1,max=200"`
	Description string `json:"descricao,omitempty" bson:"descricao,omitempty" validate:"omitempty,max=500"`
}

type TotemUpdate struct {
	Location    string  `json:"localizacao,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"descricao,omitempty" validate:"omitempty,max=500"`
}
