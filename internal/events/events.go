// Package events publishes sizing analytics events.
package events

import (
	"context"
	"time"
)

// EventTypeSizeResolved is carried in the event_type message header.
const EventTypeSizeResolved = "sizing.resolved"

// SizeResolved is emitted after a successful size resolution.
type SizeResolved struct {
	EventID      string             `json:"event_id"`
	RequestID    string             `json:"request_id,omitempty"`
	Table        string             `json:"table"`
	Label        string             `json:"label"`
	Fit          string             `json:"fit"`
	Distance     float64            `json:"distance"`
	Unit         string             `json:"unit"`
	Measurements map[string]float64 `json:"measurements"`
	OccurredAt   time.Time          `json:"occurred_at"`
}

// Publisher defines the event publication contract.
type Publisher interface {
	Publish(ctx context.Context, event SizeResolved) error
}

// NoopPublisher discards events.
type NoopPublisher struct{}

// Publish performs no action.
func (NoopPublisher) Publish(context.Context, SizeResolved) error { return nil }
