package model

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusExpired   BookingStatus = "expired"
	StatusCancelled BookingStatus = "cancelled"
)

// IsTerminal reports whether no further transition is possible.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusExpired || s == StatusCancelled
}

// ReleasesSeats reports whether entering s gives the held seats back to the
// workshop.
func (s BookingStatus) ReleasesSeats() bool {
	return s == StatusExpired || s == StatusCancelled
}

// Booking is a time-limited claim on workshop seats. Seats are deducted from
// the workshop when the booking is created and returned exactly once if it
// leaves pending for expired or cancelled.
type Booking struct {
	ID         string        `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     string        `json:"user_id" bson:"user_id" validate:"required"`
	WorkshopID string        `json:"workshop_id" bson:"workshop_id" validate:"required,mongodb"`
	Quantity   int           `json:"quantity" bson:"quantity" validate:"required,min=1,max=100"`
	Status     BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed expired cancelled"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at"`
	ExpiresAt  time.Time     `json:"expires_at" bson:"expires_at" validate:"required,gtfield=CreatedAt"`
	SettledAt  *time.Time    `json:"settled_at,omitempty" bson:"settled_at,omitempty"`

	Workshop *WorkshopSummary `json:"workshop,omitempty" bson:"-"`
}

// HoldRequest and ConfirmRequest keep the camelCase field names the
// storefront already sends.
type HoldRequest struct {
	WorkshopID string `json:"workshopId" validate:"required,mongodb"`
	Quantity   *int   `json:"quantity,omitempty" validate:"omitempty,min=1,max=100"`
}

type ConfirmRequest struct {
	BookingIDs []string `json:"bookingIds" validate:"required,min=1,max=50,dive,mongodb"`
}

type ConfirmOutcome string

const (
	OutcomeConfirmed ConfirmOutcome = "confirmed"
	OutcomeExpired   ConfirmOutcome = "expired"
	OutcomeSkipped   ConfirmOutcome = "skipped"
	OutcomeNotFound  ConfirmOutcome = "not_found"
)

type ConfirmResult struct {
	BookingID string         `json:"booking_id"`
	Outcome   ConfirmOutcome `json:"outcome"`
	Status    BookingStatus  `json:"status,omitempty"`
}
