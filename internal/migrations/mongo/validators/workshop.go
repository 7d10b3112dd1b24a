package validators

import "go.mongodb.org/mongo-driver/bson"

// WorkshopValidator rejects any write that would leave places negative,
// which backs the conditional decrement used for seat holds.
var WorkshopValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"artisan_id", "title", "places", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"artisan_id":   bson.M{"bsonType": "string", "minLength": 1},
			"title":        bson.M{"bsonType": "string", "minLength": 2, "maxLength": 200},
			"description":  bson.M{"bsonType": "string", "maxLength": 5000},
			"price":        bson.M{"bsonType": bson.A{"double", "int", "long"}, "minimum": 0},
			"category":     bson.M{"bsonType": "string"},
			"location":     bson.M{"bsonType": "string"},
			"date":         bson.M{"bsonType": "date"},
			"booking_time": bson.M{"bsonType": "string"},
			"duration":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
			"places":       bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
			"created_at":   bson.M{"bsonType": "date"},
			"updated_at":   bson.M{"bsonType": "date"},
		},
	},
}
