package picking

import (
	"github.com/wms/backend/internal/domain/shared"
)

const AggregateTypePickList = "PickList"

// Event types
const (
	EventTypePickListCreated       = "picklist.created"
	EventTypePickListSubmitted     = "picklist.submitted"
	EventTypePickListApproved      = "picklist.approved"
	EventTypePickListRejected      = "picklist.rejected"
	EventTypePickListReopened      = "picklist.reopened"
	EventTypePickListPosted        = "picklist.posted"
	EventTypePickListPostingFailed = "picklist.posting_failed"
)

// PickListCreatedEvent fires when a draft pick list is created
type PickListCreatedEvent struct {
	shared.BaseDomainEvent
	PickNumber  string `json:"pick_number"`
	OrderEntry  int    `json:"order_entry"`
	OrderNumber int    `json:"order_number"`
	CardCode    string `json:"card_code"`
}

func NewPickListCreatedEvent(p *PickList) *PickListCreatedEvent {
	return &PickListCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePickListCreated, AggregateTypePickList, p.ID, p.CreatedBy),
		PickNumber:      p.PickNumber,
		OrderEntry:      p.OrderEntry,
		OrderNumber:     p.OrderNumber,
		CardCode:        p.CardCode,
	}
}

func (e *PickListCreatedEvent) EventType() string { return EventTypePickListCreated }

// PickListSubmittedEvent fires when a pick list enters QC review
type PickListSubmittedEvent struct {
	shared.BaseDomainEvent
	PickNumber string `json:"pick_number"`
	LineCount  int    `json:"line_count"`
}

func NewPickListSubmittedEvent(p *PickList) *PickListSubmittedEvent {
	return &PickListSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePickListSubmitted, AggregateTypePickList, p.ID, p.CreatedBy),
		PickNumber:      p.PickNumber,
		LineCount:       len(p.Lines),
	}
}

func (e *PickListSubmittedEvent) EventType() string { return EventTypePickListSubmitted }

// PickListApprovedEvent fires when QC approves a pick list
type PickListApprovedEvent struct {
	shared.BaseDomainEvent
	PickNumber   string `json:"pick_number"`
	ApproverName string `json:"approver_name"`
}

func NewPickListApprovedEvent(p *PickList) *PickListApprovedEvent {
	actor := p.CreatedBy
	if p.QCApproverID != nil {
		actor = *p.QCApproverID
	}
	return &PickListApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePickListApproved, AggregateTypePickList, p.ID, actor),
		PickNumber:      p.PickNumber,
		ApproverName:    p.QCApproverName,
	}
}

func (e *PickListApprovedEvent) EventType() string { return EventTypePickListApproved }

// PickListRejectedEvent fires when QC rejects a pick list
type PickListRejectedEvent struct {
	shared.BaseDomainEvent
	PickNumber string `json:"pick_number"`
	Reason     string `json:"reason"`
}

func NewPickListRejectedEvent(p *PickList) *PickListRejectedEvent {
	actor := p.CreatedBy
	if p.QCApproverID != nil {
		actor = *p.QCApproverID
	}
	return &PickListRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePickListRejected, AggregateTypePickList, p.ID, actor),
		PickNumber:      p.PickNumber,
		Reason:          p.QCNotes,
	}
}

func (e *PickListRejectedEvent) EventType() string { return EventTypePickListRejected }

// PickListReopenedEvent fires when a rejected pick list returns to draft
type PickListReopenedEvent struct {
	shared.BaseDomainEvent
	PickNumber string `json:"pick_number"`
}

func NewPickListReopenedEvent(p *PickList) *PickListReopenedEvent {
	return &PickListReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePickListReopened, AggregateTypePickList, p.ID, p.CreatedBy),
		PickNumber:      p.PickNumber,
	}
}

func (e *PickListReopenedEvent) EventType() string { return EventTypePickListReopened }

// PickListPostedEvent fires when SAP accepts the pick list
type PickListPostedEvent struct {
	shared.BaseDomainEvent
	PickNumber       string `json:"pick_number"`
	SAPAbsoluteEntry int    `json:"sap_absolute_entry"`
}

func NewPickListPostedEvent(p *PickList) *PickListPostedEvent {
	return &PickListPostedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypePickListPosted, AggregateTypePickList, p.ID, p.CreatedBy),
		PickNumber:       p.PickNumber,
		SAPAbsoluteEntry: p.SAPAbsoluteEntry,
	}
}

func (e *PickListPostedEvent) EventType() string { return EventTypePickListPosted }

// PickListPostingFailedEvent fires when an SAP posting attempt fails
type PickListPostingFailedEvent struct {
	shared.BaseDomainEvent
	PickNumber string `json:"pick_number"`
	Error      string `json:"error"`
}

func NewPickListPostingFailedEvent(p *PickList, errMsg string) *PickListPostingFailedEvent {
	return &PickListPostingFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePickListPostingFailed, AggregateTypePickList, p.ID, p.CreatedBy),
		PickNumber:      p.PickNumber,
		Error:           errMsg,
	}
}

func (e *PickListPostingFailedEvent) EventType() string { return EventTypePickListPostingFailed }
