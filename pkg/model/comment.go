package model

import "time"

type Comment struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty"`
	WorkshopID string    `json:"workshop_id" bson:"workshop_id" validate:"required,mongodb"`
	UserID     string    `json:"user_id" bson:"user_id" validate:"required"`
	Text       string    `json:"text" bson:"text" validate:"required,min=1,max=1000"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

type CommentInput struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}
