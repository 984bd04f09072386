// Package notify delivers storefront events (new orders, contact forms) to
// outside systems: an HTTP webhook, a Kafka topic, or both.
package notify

import (
	"context"
	"errors"
	"time"
)

const (
	EventOrderCreated   = "order.created"
	EventOrderWebhook   = "order.webhook"
	EventContactCreated = "contact.created"
	EventOrderStatus    = "order.status_changed"
)

// Event is the envelope sent to every notifier.
type Event struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func NewEvent(typ, id string, payload any) Event {
	return Event{Type: typ, ID: id, OccurredAt: time.Now().UTC(), Payload: payload}
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev Event) error

func (f NotifierFunc) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }
