package validators

import "go.mongodb.org/mongo-driver/bson"

var GatewayChargeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "valor", "ciclista", "status", "horaSolicitacao"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":      integer,
			"ciclista": integer,

			"valor": bson.M{
				"bsonType": bson.A{"double", "int", "long", "decimal"},
			},

			"status": chargeStatus,

			"horaSolicitacao": bson.M{"bsonType": "date"},
			"horaFinalizacao": bson.M{"bsonType": "date"},
		},
	},
}

var EmailValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "destinatario", "assunto", "corpo", "enviado"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": integer,

			"destinatario": bson.M{
				"bsonType":  "string",
				"minLength": 3,
			},

			"assunto": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"corpo": bson.M{
				"bsonType": "string",
			},

			"enviado":    bson.M{"bsonType": "bool"},
			"data_envio": bson.M{"bsonType": "date"},
		},
	},
}

// CardValidationValidator rejects any document carrying a cvv field.
var CardValidationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "numeroCartao", "valido", "dataValidacao"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": integer,

			"numeroCartao": bson.M{
				"bsonType": "string",
				"pattern":  "^\\**[0-9]{0,4}$",
			},

			"valido":        bson.M{"bsonType": "bool"},
			"dataValidacao": bson.M{"bsonType": "date"},
			"mensagem":      bson.M{"bsonType": "string"},
		},

		"not": bson.M{"required": []string{"cvv"}},
	},
}
