package model

import "time"

type Workshop struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	ArtisanID   string    `json:"artisan_id" bson:"artisan_id" validate:"required"`
	Title       string    `json:"title" bson:"title" validate:"required,min=2,max=200"`
	Description string    `json:"description" bson:"description" validate:"max=5000"`
	Price       float64   `json:"price" bson:"price" validate:"gte=0"`
	Category    string    `json:"category" bson:"category" validate:"max=100"`
	Location    string    `json:"location" bson:"location" validate:"max=200"`
	Date        time.Time `json:"date" bson:"date"`
	BookingTime string    `json:"booking_time" bson:"booking_time" validate:"omitempty,max=50"`
	Duration    int       `json:"duration" bson:"duration" validate:"gte=0"`
	Places      int       `json:"places" bson:"places" validate:"gte=0"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// WorkshopUpdate never carries places; seats only move through holds and the
// update-places adjustment.
type WorkshopUpdate struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *float64   `json:"price,omitempty" validate:"omitempty,gte=0"`
	Category    *string    `json:"category,omitempty" validate:"omitempty,max=100"`
	Location    *string    `json:"location,omitempty" validate:"omitempty,max=200"`
	Date        *time.Time `json:"date,omitempty"`
	BookingTime *string    `json:"booking_time,omitempty" validate:"omitempty,max=50"`
	Duration    *int       `json:"duration,omitempty" validate:"omitempty,gte=0"`
}

// PlacesAdjustment subtracts Places seats from the workshop; a negative value
// adds seats back.
type PlacesAdjustment struct {
	Places *int `json:"places" validate:"required,min=-100000,max=100000"`
}

type WorkshopSummary struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Price    float64   `json:"price"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
}

func (w *Workshop) Summary() *WorkshopSummary {
	return &WorkshopSummary{
		ID:       w.ID,
		Title:    w.Title,
		Price:    w.Price,
		Date:     w.Date,
		Location: w.Location,
	}
}
