package validators

import (
	"slotbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"worker_id",
			"branch_id",
			"service_id",
			"datetime",
			"customer_name",
			"customer_phone",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"worker_id":  objectIDString,
			"branch_id":  objectIDString,
			"service_id": objectIDString,

			"datetime": bson.M{
				"bsonType": "date",
			},

			"customer_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 40,
			},

			"customer_phone": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 20,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     model.AppointmentStatuses,
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
