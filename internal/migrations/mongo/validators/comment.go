package validators

import "go.mongodb.org/mongo-driver/bson"

var CommentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"workshop_id", "user_id", "text", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "objectId"},
			"workshop_id": bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"user_id":     bson.M{"bsonType": "string", "minLength": 1},
			"text":        bson.M{"bsonType": "string", "minLength": 1, "maxLength": 1000},
			"created_at":  bson.M{"bsonType": "date"},
			"updated_at":  bson.M{"bsonType": "date"},
		},
	},
}
