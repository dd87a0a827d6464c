package validators

import "go.mongodb.org/mongo-driver/bson"

const (
	datePattern = `^\d{4}-\d{2}-\d{2}$`
	timePattern = `^([01]\d|2[0-3]):[0-5]\d$`
)

var WorkingIntervalValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"worker_id",
			"date",
			"start_time",
			"end_time",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"worker_id": objectIDString,

			"date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
