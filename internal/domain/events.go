package domain

import (
	"context"

	"marketbill/internal/core/id"
)

// Event types written to the outbox.
const (
	EventInvoiceMaterialized = "InvoiceMaterialized"
	EventBillingRunCompleted = "BillingRunCompleted"
)

// Event is a domain event published inside the producing transaction.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// EventPublisher stores events for asynchronous delivery.
// Publish must join the transaction carried by ctx.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NopPublisher drops all events.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(context.Context, ...Event) error { return nil }
