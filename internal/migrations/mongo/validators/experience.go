package validators

import "go.mongodb.org/mongo-driver/bson"

var ExperienceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"title",
			"location",
			"description",
			"price",
			"available_dates",
			"available_times",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 200,
			},

			"location": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"image": bson.M{
				"bsonType": "string",
			},

			"description": bson.M{
				"bsonType":  "string",
				"minLength": 10,
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"about": bson.M{
				"bsonType": "string",
			},

			"available_dates": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"available_times": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"slots": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"date", "time", "booked", "capacity"},
					"properties": bson.M{
						"date": bson.M{
							"bsonType": "string",
						},
						"time": bson.M{
							"bsonType": "string",
						},
						"booked": bson.M{
							"bsonType": "int",
							"minimum":  0,
						},
						"capacity": bson.M{
							"bsonType": "int",
							"minimum":  1,
						},
					},
				},
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
