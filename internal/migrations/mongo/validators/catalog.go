package validators

import "go.mongodb.org/mongo-driver/bson"

var objectIDString = bson.M{
	"bsonType":  "string",
	"minLength": 24,
	"maxLength": 24,
}

var WorkerValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "branch_id", "position_id"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "objectId"},
			"name":        bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
			"branch_id":   objectIDString,
			"position_id": objectIDString,
			"email":       bson.M{"bsonType": "string"},
		},
	},
}

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "branch_id", "duration_minutes"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "objectId"},
			"name":      bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
			"branch_id": objectIDString,
			"duration_minutes": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  1440,
			},
		},
	},
}

var PositionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "branch_id"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "objectId"},
			"name":      bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
			"branch_id": objectIDString,
		},
	},
}

var BranchValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "business_id"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":             bson.M{"bsonType": "objectId"},
			"name":            bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
			"business_id":     objectIDString,
			"locality":        bson.M{"bsonType": "string"},
			"address":         bson.M{"bsonType": "string"},
			"phone_number":    bson.M{"bsonType": "string"},
			"start_work_hour": bson.M{"bsonType": "string"},
			"end_work_hour":   bson.M{"bsonType": "string"},
		},
	},
}

var ServiceCostValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"position_id", "service_id", "price"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "objectId"},
			"position_id": objectIDString,
			"service_id":  objectIDString,
			"price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},
		},
	},
}
