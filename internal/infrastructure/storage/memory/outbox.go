package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketbill/internal/core/id"
	"marketbill/internal/domain"
)

// OutboxRecord is a published event kept by the store.
type OutboxRecord struct {
	ID            id.ID
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       json.RawMessage
	CreatedAt     time.Time
}

// Publisher implements domain.EventPublisher. Events roll back with the transaction.
type Publisher struct {
	store *Store
}

var _ domain.EventPublisher = (*Publisher)(nil)

// Publisher returns the event publisher of the store.
func (s *Store) Publisher() *Publisher {
	return &Publisher{store: s}
}

// Publish appends events to the outbox.
func (p *Publisher) Publish(ctx context.Context, events ...domain.Event) error {
	records := make([]OutboxRecord, 0, len(events))
	for _, e := range events {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", e.EventType, err)
		}
		records = append(records, OutboxRecord{
			ID:            id.New(),
			AggregateType: e.AggregateType,
			AggregateID:   e.AggregateID,
			EventType:     e.EventType,
			Payload:       payload,
			CreatedAt:     time.Now().UTC(),
		})
	}
	return p.store.write(func(st *state) error {
		st.outbox = append(st.outbox, records...)
		return nil
	})
}

// Events returns published events, optionally filtered by type.
func (p *Publisher) Events(eventType string) []OutboxRecord {
	var out []OutboxRecord
	p.store.read(func(st *state) {
		for _, r := range st.outbox {
			if eventType == "" || r.EventType == eventType {
				out = append(out, r)
			}
		}
	})
	return out
}
