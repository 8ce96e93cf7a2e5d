package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/audit"
)

// AuditLogModel is the persistence model for one audited domain event.
// Rows are append-only.
type AuditLogModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	EventID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	EventType     string    `gorm:"type:varchar(100);not null;index"`
	AggregateType string    `gorm:"type:varchar(100);not null;index:idx_audit_aggregate"`
	AggregateID   uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_aggregate"`
	ActorID       uuid.UUID `gorm:"type:uuid;index"`
	Payload       []byte    `gorm:"type:jsonb;not null"`
	OccurredAt    time.Time `gorm:"not null;index"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain audit Entry.
func (m *AuditLogModel) ToDomain() *audit.Entry {
	return &audit.Entry{
		ID:            m.ID,
		EventID:       m.EventID,
		EventType:     m.EventType,
		AggregateType: m.AggregateType,
		AggregateID:   m.AggregateID,
		ActorID:       m.ActorID,
		Payload:       m.Payload,
		OccurredAt:    m.OccurredAt,
		CreatedAt:     m.CreatedAt,
	}
}

// AuditLogModelFromDomain creates a new persistence model from a domain audit Entry.
func AuditLogModelFromDomain(e *audit.Entry) *AuditLogModel {
	return &AuditLogModel{
		ID:            e.ID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		ActorID:       e.ActorID,
		Payload:       e.Payload,
		OccurredAt:    e.OccurredAt,
		CreatedAt:     e.CreatedAt,
	}
}
