package receiving

import (
	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// Aggregate type constant for GRPODocument
const AggregateTypeGRPO = "GRPODocument"

// GRPO event type constants
const (
	EventTypeGRPOCreated       = "grpo.created"
	EventTypeGRPOSubmitted     = "grpo.submitted"
	EventTypeGRPOApproved      = "grpo.approved"
	EventTypeGRPORejected      = "grpo.rejected"
	EventTypeGRPOReopened      = "grpo.reopened"
	EventTypeGRPOPosted        = "grpo.posted"
	EventTypeGRPOPostingFailed = "grpo.posting_failed"
)

// GRPOCreatedEvent is raised when a goods receipt is created
type GRPOCreatedEvent struct {
	shared.BaseDomainEvent
	GRPOID         uuid.UUID `json:"grpo_id"`
	DocumentNumber string    `json:"document_number"`
	PONumber       string    `json:"po_number"`
	WarehouseCode  string    `json:"warehouse_code"`
}

// NewGRPOCreatedEvent creates a new GRPOCreatedEvent
func NewGRPOCreatedEvent(d *GRPODocument) *GRPOCreatedEvent {
	return &GRPOCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGRPOCreated, AggregateTypeGRPO, d.ID, d.CreatedBy),
		GRPOID:          d.ID,
		DocumentNumber:  d.DocumentNumber,
		PONumber:        d.PONumber,
		WarehouseCode:   d.WarehouseCode,
	}
}

// EventType returns the event type name
func (e *GRPOCreatedEvent) EventType() string {
	return EventTypeGRPOCreated
}

// GRPOSubmittedEvent is raised when a receipt is submitted for QC
type GRPOSubmittedEvent struct {
	shared.BaseDomainEvent
	GRPOID         uuid.UUID `json:"grpo_id"`
	DocumentNumber string    `json:"document_number"`
	ItemCount      int       `json:"item_count"`
}

// NewGRPOSubmittedEvent creates a new GRPOSubmittedEvent
func NewGRPOSubmittedEvent(d *GRPODocument) *GRPOSubmittedEvent {
	return &GRPOSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGRPOSubmitted, AggregateTypeGRPO, d.ID, d.CreatedBy),
		GRPOID:          d.ID,
		DocumentNumber:  d.DocumentNumber,
		ItemCount:       len(d.Items),
	}
}

// EventType returns the event type name
func (e *GRPOSubmittedEvent) EventType() string {
	return EventTypeGRPOSubmitted
}

// GRPOApprovedEvent is raised when QC approves a receipt
type GRPOApprovedEvent struct {
	shared.BaseDomainEvent
	GRPOID         uuid.UUID `json:"grpo_id"`
	DocumentNumber string    `json:"document_number"`
	ApproverName   string    `json:"approver_name"`
}

// NewGRPOApprovedEvent creates a new GRPOApprovedEvent
func NewGRPOApprovedEvent(d *GRPODocument) *GRPOApprovedEvent {
	var approverID uuid.UUID
	if d.QCApproverID != nil {
		approverID = *d.QCApproverID
	}
	return &GRPOApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGRPOApproved, AggregateTypeGRPO, d.ID, approverID),
		GRPOID:          d.ID,
		DocumentNumber:  d.DocumentNumber,
		ApproverName:    d.QCApproverName,
	}
}

// EventType returns the event type name
func (e *GRPOApprovedEvent) EventType() string {
	return EventTypeGRPOApproved
}

// GRPORejectedEvent is raised when QC rejects a receipt
type GRPORejectedEvent struct {
	shared.BaseDomainEvent
	GRPOID         uuid.UUID `json:"grpo_id"`
	DocumentNumber string    `json:"document_number"`
	Reason         string    `json:"reason"`
}

// NewGRPORejectedEvent creates a new GRPORejectedEvent
func NewGRPORejectedEvent(d *GRPODocument) *GRPORejectedEvent {
	var approverID uuid.UUID
	if d.QCApproverID != nil {
		approverID = *d.QCApproverID
	}
	return &GRPORejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGRPORejected, AggregateTypeGRPO, d.ID, approverID),
		GRPOID:          d.ID,
		DocumentNumber:  d.DocumentNumber,
		Reason:          d.QCNotes,
	}
}

// EventType returns the event type name
func (e *GRPORejectedEvent) EventType() string {
	return EventTypeGRPORejected
}

// GRPOReopenedEvent is raised when a rejected receipt returns to draft
type GRPOReopenedEvent struct {
	shared.BaseDomainEvent
	GRPOID         uuid.UUID `json:"grpo_id"`
	DocumentNumber string    `json:"document_number"`
}

// NewGRPOReopenedEvent creates a new GRPOReopenedEvent
func NewGRPOReopenedEvent(d *GRPODocument) *GRPOReopenedEvent {
	return &GRPOReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGRPOReopened, AggregateTypeGRPO, d.ID, d.CreatedBy),
		GRPOID:          d.ID,
		DocumentNumber:  d.DocumentNumber,
	}
}

// EventType returns the event type name
func (e *GRPOReopenedEvent) EventType() string {
	return EventTypeGRPOReopened
}

// GRPOPostedEvent is raised when SAP accepts the receipt
type GRPOPostedEvent struct {
	shared.BaseDomainEvent
	GRPOID         uuid.UUID `json:"grpo_id"`
	DocumentNumber string    `json:"document_number"`
	SAPDocNumber   string    `json:"sap_doc_number"`
}

// NewGRPOPostedEvent creates a new GRPOPostedEvent
func NewGRPOPostedEvent(d *GRPODocument) *GRPOPostedEvent {
	return &GRPOPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGRPOPosted, AggregateTypeGRPO, d.ID, d.CreatedBy),
		GRPOID:          d.ID,
		DocumentNumber:  d.DocumentNumber,
		SAPDocNumber:    d.SAPDocNumber,
	}
}

// EventType returns the event type name
func (e *GRPOPostedEvent) EventType() string {
	return EventTypeGRPOPosted
}

// GRPOPostingFailedEvent is raised when a posting attempt fails
type GRPOPostingFailedEvent struct {
	shared.BaseDomainEvent
	GRPOID         uuid.UUID `json:"grpo_id"`
	DocumentNumber string    `json:"document_number"`
	Error          string    `json:"error"`
}

// NewGRPOPostingFailedEvent creates a new GRPOPostingFailedEvent
func NewGRPOPostingFailedEvent(d *GRPODocument, errMsg string) *GRPOPostingFailedEvent {
	return &GRPOPostingFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGRPOPostingFailed, AggregateTypeGRPO, d.ID, d.CreatedBy),
		GRPOID:          d.ID,
		DocumentNumber:  d.DocumentNumber,
		Error:           errMsg,
	}
}

// EventType returns the event type name
func (e *GRPOPostingFailedEvent) EventType() string {
	return EventTypeGRPOPostingFailed
}
