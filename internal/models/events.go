package models

import "time"

// NATS Event Types
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// BookingCreatedEvent represents a booking creation event. It carries the
// session's directory key (date, type) so consumers can invalidate the
// affected cache entry without a lookup.
type BookingCreatedEvent struct {
	BookingID    int64     `json:"booking_id"`
	SessionID    int64     `json:"session_id"`
	SessionDate  string    `json:"session_date"`
	SessionType  string    `json:"session_type"`
	Participants int       `json:"participants"`
	Timestamp    time.Time `json:"timestamp"`
}

// BookingCancelledEvent represents a booking cancellation event
type BookingCancelledEvent struct {
	BookingID   int64     `json:"booking_id"`
	SessionID   int64     `json:"session_id"`
	SessionDate string    `json:"session_date"`
	SessionType string    `json:"session_type"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}
