// Package booking turns a user's intent — "book N participants into
// session S" — into either an accepted booking handed off to payment or a
// clearly attributed rejection. The local capacity math is only a hint to
// stop obviously futile submissions; the backend's answer is the only
// thing treated as truth.
package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"courtbook/internal/logger"
	"courtbook/internal/metrics"
	"courtbook/internal/models"
	"courtbook/internal/upstream"
)

// MaxPartySize is the fixed per-booking participant cap.
const MaxPartySize = 4

// State is the negotiation's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateEditing
	StateSubmitting
	StateAccepted
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateAccepted:
		return "accepted"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Local validation errors. These never reach the network layer.
var (
	ErrNoSession       = errors.New("no session selected")
	ErrSessionFull     = errors.New("session is full")
	ErrPartyTooSmall   = errors.New("at least one participant is required")
	ErrPartyTooLarge   = errors.New("participant count exceeds available spots")
	ErrSubmitInFlight  = errors.New("a submission is already in flight")
	ErrAlreadyAccepted = errors.New("booking was already accepted")
)

// Backend submits booking intents. *upstream.Client satisfies it.
type Backend interface {
	CreateBooking(ctx context.Context, sessionID int64, participants int) (*upstream.CreateBookingResult, error)
}

// Invalidator drops a session-directory key after availability changed.
type Invalidator interface {
	Invalidate(date, sessionType string)
}

// Publisher emits booking events. Publishing is best-effort.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// Outcome is an accepted negotiation: the backend's booking id and total
// next to the local preview that preceded it.
type Outcome struct {
	BookingID      int64
	Status         string
	PreviewTotal   int64
	ConfirmedTotal int64
}

// Negotiation is one booking dialog instance.
type Negotiation struct {
	backend Backend
	dir     Invalidator
	events  Publisher

	mu           sync.Mutex
	state        State
	session      models.Session
	participants int
	reason       string
	outcome      *Outcome
}

func NewNegotiation(backend Backend, dir Invalidator, events Publisher) *Negotiation {
	return &Negotiation{backend: backend, dir: dir, events: events, state: StateIdle}
}

// Open starts editing against the chosen session with one participant. A
// dialog whose submission is still in flight cannot be reopened: the
// pending answer would land on the new session's state.
func (n *Negotiation) Open(s models.Session) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	n.session = s
	n.participants = 1
	n.state = StateEditing
	n.reason = ""
	n.outcome = nil
	return nil
}

// SetParticipants validates and records the participant count. Allowed
// while editing and after a rejection, which re-enters editing.
func (n *Negotiation) SetParticipants(p int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case StateIdle:
		return ErrNoSession
	case StateSubmitting:
		return ErrSubmitInFlight
	case StateAccepted:
		return ErrAlreadyAccepted
	}

	if err := n.validateLocked(p); err != nil {
		return err
	}

	n.participants = p
	if n.state == StateRejected {
		n.state = StateEditing
		n.reason = ""
	}
	return nil
}

// validateLocked enforces the editing invariants: at least one
// participant, no more than min(remaining capacity, MaxPartySize), and
// nothing at all once the session is full. The Private single-occupancy
// rule is part of Session.Remaining.
func (n *Negotiation) validateLocked(p int) error {
	remaining := n.session.Remaining()
	if remaining == 0 {
		return ErrSessionFull
	}
	if p < 1 {
		return ErrPartyTooSmall
	}
	limit := remaining
	if limit > MaxPartySize {
		limit = MaxPartySize
	}
	if p > limit {
		return ErrPartyTooLarge
	}
	return nil
}

// Preview is the optimistic local total. It is display-only and never
// written back to the session.
func (n *Negotiation) Preview() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.session.PricePerPerson * int64(n.participants)
}

// Remaining is the locally computed open-spot count for the session.
func (n *Negotiation) Remaining() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.session.Remaining()
}

func (n *Negotiation) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Reason is the attributed message of the last rejection.
func (n *Negotiation) Reason() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.reason
}

// Outcome returns the accepted result, if any.
func (n *Negotiation) Outcome() *Outcome {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.outcome
}

// Submit sends the booking intent. Exactly one upstream call per confirm:
// a second Submit while one is in flight fails on state alone. On accept
// the directory key for the session is invalidated and a booking.created
// event is published; on rejection the negotiation returns to editing
// with the backend's reason and nothing is retried automatically.
func (n *Negotiation) Submit(ctx context.Context) (*Outcome, error) {
	n.mu.Lock()
	switch n.state {
	case StateIdle:
		n.mu.Unlock()
		return nil, ErrNoSession
	case StateSubmitting:
		n.mu.Unlock()
		return nil, ErrSubmitInFlight
	case StateAccepted:
		n.mu.Unlock()
		return nil, ErrAlreadyAccepted
	}

	if err := n.validateLocked(n.participants); err != nil {
		metrics.BookingOutcomes.WithLabelValues("invalid").Inc()
		n.mu.Unlock()
		return nil, err
	}

	session := n.session
	participants := n.participants
	preview := session.PricePerPerson * int64(participants)
	n.state = StateSubmitting
	n.mu.Unlock()

	result, err := n.backend.CreateBooking(ctx, session.ID, participants)

	n.mu.Lock()
	if err != nil {
		n.state = StateRejected
		n.reason = rejectionReason(err)
		n.mu.Unlock()
		metrics.BookingOutcomes.WithLabelValues("rejected").Inc()
		return nil, err
	}

	out := &Outcome{
		BookingID:      result.BookingID,
		Status:         result.Status,
		PreviewTotal:   preview,
		ConfirmedTotal: result.TotalPrice,
	}
	n.state = StateAccepted
	n.outcome = out
	n.mu.Unlock()

	metrics.BookingOutcomes.WithLabelValues("accepted").Inc()

	if out.ConfirmedTotal != 0 && out.ConfirmedTotal != out.PreviewTotal {
		// Pricing logic diverged from the backend; the confirmed value wins.
		logger.WithContext(ctx).Warn("Preview total differs from confirmed total",
			"booking_id", out.BookingID,
			"preview", out.PreviewTotal,
			"confirmed", out.ConfirmedTotal)
	}

	// Availability changed server-side; both the typed listing and the
	// unfiltered one for that date are now wrong.
	if n.dir != nil {
		n.dir.Invalidate(session.Date, session.Type)
		n.dir.Invalidate(session.Date, "")
	}

	if n.events != nil {
		event := models.BookingCreatedEvent{
			BookingID:    out.BookingID,
			SessionID:    session.ID,
			SessionDate:  session.Date,
			SessionType:  session.Type,
			Participants: participants,
			Timestamp:    time.Now(),
		}
		if err := n.events.Publish(models.EventBookingCreated, event); err != nil {
			logger.WithContext(ctx).Error("Failed to publish booking created event",
				"error", err,
				"booking_id", out.BookingID,
				"event_type", models.EventBookingCreated)
		}
	}

	return out, nil
}

// rejectionReason extracts the human-readable message the backend
// attributed to the failure, or describes the transport error.
func rejectionReason(err error) string {
	if be, ok := upstream.AsError(err); ok {
		return be.Message
	}
	return err.Error()
}
