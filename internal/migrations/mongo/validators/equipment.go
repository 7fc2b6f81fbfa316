package validators

import "go.mongodb.org/mongo-driver/bson"

var integer = bson.M{"bsonType": bson.A{"int", "long"}}

var BicycleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "marca", "modelo", "ano", "numero", "status"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": integer,

			"marca": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"modelo": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"ano": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{4}$",
			},

			"numero": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  1,
			},

			"status": bson.M{
				"enum": []string{"NOVA", "DISPONIVEL", "EM_USO", "APOSENTADA", "REPARO_SOLICITADO", "EM_REPARO"},
			},
		},
	},
}

var LockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "numero", "localizacao", "anoDeFabricacao", "modelo", "status"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": integer,

			"numero": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  1,
			},

			"localizacao": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"anoDeFabricacao": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{4}$",
			},

			"modelo": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"status": bson.M{
				"enum": []string{"NOVA", "LIVRE", "OCUPADA", "APOSENTADA", "EM_REPARO", "REPARO_SOLICITADO"},
			},

			"bicicleta": integer,
			"totem":     integer,
		},
	},
}

var TotemValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "localizacao"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": integer,

			"localizacao": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"descricao": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},
		},
	},
}

var AuditValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "tipo_acao", "tipo_equipamento", "id_equipamento", "id_funcionario", "data_hora"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":            integer,
			"id_equipamento": integer,
			"id_funcionario": integer,

			"tipo_acao": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"tipo_equipamento": bson.M{
				"enum": []string{"BICICLETA", "TRANCA"},
			},

			"data_hora": bson.M{
				"bsonType": "date",
			},
		},
	},
}
