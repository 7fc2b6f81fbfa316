package validators

import "go.mongodb.org/mongo-driver/bson"

var chargeStatus = bson.M{"enum": []string{"PENDENTE", "PAGA", "FALHA", "CANCELADA"}}

var RentalValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "ciclista", "trancaInicio", "bicicleta", "horaInicio", "cobranca", "status"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":           integer,
			"ciclista":      integer,
			"trancaInicio":  integer,
			"bicicleta":     integer,
			"cobranca":      integer,
			"trancaFim":     integer,
			"cobrancaExtra": integer,

			"horaInicio": bson.M{"bsonType": "date"},
			"horaFim":    bson.M{"bsonType": "date"},

			"status": bson.M{
				"enum": []string{"EM_ANDAMENTO", "FINALIZADO"},
			},
		},
	},
}

var ChargeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "valor", "ciclista", "status", "horaSolicitacao"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":             integer,
			"ciclista":        integer,
			"cobrancaGateway": integer,

			"valor": bson.M{
				"bsonType": bson.A{"double", "int", "long", "decimal"},
			},

			"status": chargeStatus,

			"tipo": bson.M{
				"enum": []string{"ALUGUEL_INICIAL", "TAXA_EXTRA"},
			},

			"horaSolicitacao": bson.M{"bsonType": "date"},
			"horaFinalizacao": bson.M{"bsonType": "date"},

			"reconciliacaoPendente": bson.M{"bsonType": "bool"},
		},
	},
}

var CyclistValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "status"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": integer,

			"email": bson.M{
				"bsonType": "string",
			},

			"status": bson.M{
				"enum": []string{"ATIVO", "INATIVO", "AGUARDANDO_CONFIRMACAO"},
			},
		},
	},
}

var RentalLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "owner", "expires_at", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": integer,

			"owner": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"expires_at": bson.M{"bsonType": "date"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
