// Package audit subscribes to domain events and exposes the resulting
// audit trail for querying.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/domain/shared"
)

// Recorder persists every published domain event as an audit entry. It
// subscribes to all event types; a failed write is logged but never fails
// the operation that raised the event.
type Recorder struct {
	repo   audit.Repository
	logger *zap.Logger
}

// NewRecorder creates a new audit Recorder
func NewRecorder(repo audit.Repository, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Handle records one domain event
func (r *Recorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	entry, err := audit.NewEntry(event)
	if err != nil {
		r.logger.Error("Failed to snapshot domain event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
		return err
	}
	if err := r.repo.Save(ctx, entry); err != nil {
		r.logger.Error("Failed to persist audit entry",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Error(err))
		return err
	}
	return nil
}

// EventTypes returns nil: the recorder receives every event
func (r *Recorder) EventTypes() []string {
	return nil
}

// EntryDTO is the API representation of an audit entry
type EntryDTO struct {
	ID            uuid.UUID       `json:"id"`
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	ActorID       uuid.UUID       `json:"actor_id"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// QueryService serves the audit trail
type QueryService struct {
	repo   audit.Repository
	logger *zap.Logger
}

// NewQueryService creates a new audit QueryService
func NewQueryService(repo audit.Repository, logger *zap.Logger) *QueryService {
	return &QueryService{repo: repo, logger: logger}
}

// List returns audit entries matching the filter. Event type, aggregate
// type and actor are passed through filter.Filters.
func (s *QueryService) List(ctx context.Context, filter shared.Filter) ([]EntryDTO, int64, error) {
	entries, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list audit entries", zap.Error(err))
		return nil, 0, shared.NewDomainError("INTERNAL_ERROR", "Failed to list audit entries")
	}

	dtos := make([]EntryDTO, len(entries))
	for i := range entries {
		dtos[i] = toEntryDTO(&entries[i])
	}
	return dtos, total, nil
}

// AggregateHistory lists the full trail for one aggregate, oldest first
func (s *QueryService) AggregateHistory(ctx context.Context, aggregateType string, aggregateID uuid.UUID) ([]EntryDTO, error) {
	entries, err := s.repo.FindByAggregate(ctx, aggregateType, aggregateID)
	if err != nil {
		s.logger.Error("Failed to load aggregate history",
			zap.String("aggregate_type", aggregateType),
			zap.String("aggregate_id", aggregateID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load aggregate history")
	}

	dtos := make([]EntryDTO, len(entries))
	for i := range entries {
		dtos[i] = toEntryDTO(&entries[i])
	}
	return dtos, nil
}

func toEntryDTO(e *audit.Entry) EntryDTO {
	return EntryDTO{
		ID:            e.ID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		ActorID:       e.ActorID,
		Payload:       json.RawMessage(e.Payload),
		OccurredAt:    e.OccurredAt,
	}
}
