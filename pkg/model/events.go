package model

import "time"

const (
	EventBookingHeld      = "booking.held"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingExpired   = "booking.expired"
	EventBookingCancelled = "booking.cancelled"

	EventPaymentSucceeded = "payment.succeeded"
)

type BookingEvent struct {
	Type       string        `json:"type"`
	BookingID  string        `json:"booking_id"`
	UserID     string        `json:"user_id"`
	WorkshopID string        `json:"workshop_id"`
	Quantity   int           `json:"quantity"`
	Status     BookingStatus `json:"status"`
	ExpiresAt  time.Time     `json:"expires_at"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		UserID:     b.UserID,
		WorkshopID: b.WorkshopID,
		Quantity:   b.Quantity,
		Status:     b.Status,
		ExpiresAt:  b.ExpiresAt,
		OccurredAt: at,
	}
}

// PaymentSucceeded is emitted by the payments service once a checkout
// covering one or more holds has been captured.
type PaymentSucceeded struct {
	PaymentID  string   `json:"payment_id"`
	UserID     string   `json:"user_id"`
	BookingIDs []string `json:"booking_ids"`
}
