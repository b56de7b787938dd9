package events

import (
	"context"
	"time"
)

const (
	TypeOrderPlaced           = "order.placed"
	TypeOrderStatusChanged    = "order.status_changed"
	TypeNotificationBroadcast = "notification.broadcast"
)

// Event is the envelope written to the broker.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// Publisher delivers domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, ev Event) error
	Close() error
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, Event) error { return nil }
func (Noop) Close() error                                 { return nil }
