package validators

import "go.mongodb.org/mongo-driver/bson"

var WeeklyRuleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"organization_id", "delivery_type_id", "week_day", "start_minute", "end_minute", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"organization_id": objectIDString,

			// Empty for organization defaults.
			"delivery_type_id": bson.M{
				"bsonType": "string",
				"pattern":  `^([0-9a-f]{24})?$`,
			},

			"week_day": intRange(0, 6),

			"start_minute": intRange(0, 1438),

			"end_minute": intRange(1, 1439),

			"created_at": bson.M{
				"bsonType": "date",
			},

			"deleted_at": bson.M{
				"bsonType": bson.A{"date", "null"},
			},
		},
	},
}

var OverrideValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"organization_id", "delivery_type_id", "date", "kind", "whole_day", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"organization_id": objectIDString,

			"delivery_type_id": objectIDString,

			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`,
			},

			"kind": bson.M{
				"enum": bson.A{"ADD", "BLOCK"},
			},

			"start_minute": intRange(0, 1439),

			"end_minute": intRange(1, 1440),

			"whole_day": bson.M{
				"bsonType": "bool",
			},

			"reason": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

// WeeklyRuleGuardValidator covers the per owner and weekday documents that
// rule writes bump inside their transaction.
var WeeklyRuleGuardValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"organization_id", "delivery_type_id", "week_day", "version", "updated_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"organization_id": objectIDString,

			"delivery_type_id": bson.M{
				"bsonType": "string",
				"pattern":  `^([0-9a-f]{24})?$`,
			},

			"week_day": intRange(0, 6),

			"version": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  1,
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
