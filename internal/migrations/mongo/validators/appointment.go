package validators

import "go.mongodb.org/mongo-driver/bson"

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"organization_id",
			"delivery_type_id",
			"date",
			"duration_minutes",
			"status",
			"supplier_name",
			"created_at",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"organization_id": objectIDString,

			"delivery_type_id": objectIDString,

			"date": bson.M{
				"bsonType": "date",
			},

			"duration_minutes": intRange(1, 1440),

			"status": bson.M{
				"enum": bson.A{
					"PENDING_CONFIRMATION",
					"CONFIRMED",
					"RESCHEDULE_REQUESTED",
					"RESCHEDULE_CONFIRMED",
					"CANCELLATION_REQUESTED",
					"CANCELLED",
					"COMPLETED",
				},
			},

			"requested_date": bson.M{
				"bsonType": "date",
			},

			"supplier_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 120,
			},

			"supplier_phone": bson.M{
				"bsonType": "string",
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"cancellation_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 300,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var AppointmentLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "expires_at", "created_at"},
		"additionalProperties": false,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"expires_at": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
