// Package consumers keeps a gateway instance's session directory in step
// with the rest of the fleet: every booking.created / booking.cancelled
// event drops the affected cache keys, so availability shown by one
// instance reflects bookings accepted by another.
package consumers

import (
	"encoding/json"
	"log/slog"

	"github.com/nats-io/stan.go"

	"courtbook/internal/directory"
	"courtbook/internal/messaging"
	"courtbook/internal/models"
)

type Listener struct {
	nats *messaging.NATSClient
	dir  *directory.Directory
	subs []stan.Subscription
}

func NewListener(nats *messaging.NATSClient, dir *directory.Directory) *Listener {
	return &Listener{nats: nats, dir: dir}
}

func (l *Listener) Start() error {
	sub, err := l.nats.Subscribe(models.EventBookingCreated, l.HandleBookingCreated)
	if err != nil {
		return err
	}
	if sub != nil {
		l.subs = append(l.subs, sub)
	}

	sub, err = l.nats.Subscribe(models.EventBookingCancelled, l.HandleBookingCancelled)
	if err != nil {
		return err
	}
	if sub != nil {
		l.subs = append(l.subs, sub)
	}

	return nil
}

func (l *Listener) HandleBookingCreated(m *stan.Msg) {
	var event models.BookingCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking created event", "error", err)
		return
	}

	l.invalidate(event.SessionDate, event.SessionType)
	slog.Info("Invalidated directory after booking created",
		"booking_id", event.BookingID,
		"session_date", event.SessionDate,
		"session_type", event.SessionType)

	m.Ack()
}

func (l *Listener) HandleBookingCancelled(m *stan.Msg) {
	var event models.BookingCancelledEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking cancelled event", "error", err)
		return
	}

	l.invalidate(event.SessionDate, event.SessionType)
	slog.Info("Invalidated directory after booking cancelled",
		"booking_id", event.BookingID,
		"session_date", event.SessionDate,
		"session_type", event.SessionType)

	m.Ack()
}

// invalidate drops the typed key and the unfiltered key for the date; a
// booking on a Public session changes what both listings would show.
func (l *Listener) invalidate(date, sessionType string) {
	if date == "" {
		return
	}
	l.dir.Invalidate(date, sessionType)
	l.dir.Invalidate(date, "")
}

func (l *Listener) Stop() {
	for _, sub := range l.subs {
		if err := sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}
	l.subs = nil
}
