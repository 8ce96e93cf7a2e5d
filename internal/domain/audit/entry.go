// Package audit records domain events as queryable audit rows.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// Entry is one audited domain event
type Entry struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateType string
	AggregateID   uuid.UUID
	ActorID       uuid.UUID
	Payload       []byte
	OccurredAt    time.Time
	CreatedAt     time.Time
}

// NewEntry snapshots a domain event. The full event is serialized so the
// trail keeps fields the row columns do not model.
func NewEntry(event shared.DomainEvent) (*Entry, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, shared.NewDomainError("EVENT_SERIALIZATION", "Failed to serialize domain event: "+err.Error())
	}

	return &Entry{
		ID:            uuid.New(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		ActorID:       event.ActorID(),
		Payload:       payload,
		OccurredAt:    event.OccurredAt(),
		CreatedAt:     time.Now(),
	}, nil
}

// Repository persists audit entries
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
	FindByAggregate(ctx context.Context, aggregateType string, aggregateID uuid.UUID) ([]Entry, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Entry, int64, error)
}
