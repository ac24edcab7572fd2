package validators

import "go.mongodb.org/mongo-driver/bson"

var OrganizationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "active", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 120,
			},

			"document": bson.M{
				"bsonType": "string",
				"pattern":  `^([0-9]{11,14})?$`,
			},

			"contact_phone": bson.M{
				"bsonType": "string",
				"pattern":  `^(\+[1-9][0-9]{6,14})?$`,
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var DeliveryTypeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"organization_id", "name", "duration_minutes", "active", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"organization_id": objectIDString,

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"duration_minutes": intRange(1, 1440),

			"lunch_start_minute": intRange(0, 1439),

			"lunch_end_minute": intRange(1, 1440),

			"active": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

// objectIDString matches a reference stored as ObjectID hex.
var objectIDString = bson.M{
	"bsonType":  "string",
	"minLength": 24,
	"maxLength": 24,
}

// intRange accepts both int32 and int64 encodings of a Go int.
func intRange(minimum, maximum int) bson.M {
	return bson.M{
		"bsonType": bson.A{"int", "long"},
		"minimum":  minimum,
		"maximum":  maximum,
	}
}
