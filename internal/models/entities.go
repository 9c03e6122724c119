package models

import "time"

// Session types as the backend reports them.
const (
	SessionPublic  = "Public"
	SessionPrivate = "Private"
)

// Coach represents the coach assigned to a session
type Coach struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Bio         string `json:"bio"`
}

// Court represents the tennis court a session takes place on
type Court struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	PhotoURL string `json:"photoUrl"`
}

// Session represents a bookable time slot. Sessions are owned by the
// backend; the gateway never mutates one, it only computes previews.
type Session struct {
	ID                  int64  `json:"id"`
	Coach               Coach  `json:"coach"`
	Date                string `json:"date"` // YYYY-MM-DD
	StartTime           string `json:"startTime"`
	EndTime             string `json:"endTime"`
	Court               Court  `json:"tennisField"`
	MaxParticipants     int    `json:"maxParticipants"`
	CurrentParticipants int    `json:"currentParticipants"`
	PricePerPerson      int64  `json:"pricePerPerson"`
	Description         string `json:"description"`
	Type                string `json:"type"`
	Status              string `json:"status"`
}

// Remaining returns the number of open spots. Private sessions are
// single-occupancy: any existing participant makes them full, on top of
// the numeric capacity check.
func (s *Session) Remaining() int {
	if s.Type == SessionPrivate && s.CurrentParticipants > 0 {
		return 0
	}
	r := s.MaxParticipants - s.CurrentParticipants
	if r < 0 {
		return 0
	}
	return r
}

// IsFull reports whether no further participants can be booked.
func (s *Session) IsFull() bool {
	return s.Remaining() == 0
}

// Booking represents a participant's claim on a session, created by the
// backend on submission.
type Booking struct {
	ID           int64    `json:"id"`
	SessionID    int64    `json:"sessionId"`
	Session      *Session `json:"session,omitempty"`
	Coach        Coach    `json:"coach"`
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	Participants int      `json:"participants"`
	Status       string   `json:"status"`
	TotalPrice   int64    `json:"totalPrice"`
}

// Booking statuses reported by the backend.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// User represents the authenticated account
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
