package transfer

import (
	"github.com/wms/backend/internal/domain/shared"
)

const AggregateTypeTransfer = "SerialItemTransfer"

// Event types
const (
	EventTypeTransferCreated       = "transfer.created"
	EventTypeTransferSubmitted     = "transfer.submitted"
	EventTypeTransferApproved      = "transfer.approved"
	EventTypeTransferRejected      = "transfer.rejected"
	EventTypeTransferReopened      = "transfer.reopened"
	EventTypeTransferPosted        = "transfer.posted"
	EventTypeTransferPostingFailed = "transfer.posting_failed"
)

// TransferCreatedEvent fires when a draft transfer is created
type TransferCreatedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string `json:"transfer_number"`
	FromWarehouse  string `json:"from_warehouse"`
	ToWarehouse    string `json:"to_warehouse"`
}

func NewTransferCreatedEvent(t *SerialItemTransfer) *TransferCreatedEvent {
	return &TransferCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCreated, AggregateTypeTransfer, t.ID, t.CreatedBy),
		TransferNumber:  t.TransferNumber,
		FromWarehouse:   t.FromWarehouse,
		ToWarehouse:     t.ToWarehouse,
	}
}

func (e *TransferCreatedEvent) EventType() string { return EventTypeTransferCreated }

// TransferSubmittedEvent fires when a transfer enters QC review
type TransferSubmittedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string `json:"transfer_number"`
	ItemCount      int    `json:"item_count"`
}

func NewTransferSubmittedEvent(t *SerialItemTransfer) *TransferSubmittedEvent {
	return &TransferSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferSubmitted, AggregateTypeTransfer, t.ID, t.CreatedBy),
		TransferNumber:  t.TransferNumber,
		ItemCount:       len(t.Items),
	}
}

func (e *TransferSubmittedEvent) EventType() string { return EventTypeTransferSubmitted }

// TransferApprovedEvent fires when QC approves a transfer
type TransferApprovedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string `json:"transfer_number"`
	ApproverName   string `json:"approver_name"`
}

func NewTransferApprovedEvent(t *SerialItemTransfer) *TransferApprovedEvent {
	actor := t.CreatedBy
	if t.QCApproverID != nil {
		actor = *t.QCApproverID
	}
	return &TransferApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferApproved, AggregateTypeTransfer, t.ID, actor),
		TransferNumber:  t.TransferNumber,
		ApproverName:    t.QCApproverName,
	}
}

func (e *TransferApprovedEvent) EventType() string { return EventTypeTransferApproved }

// TransferRejectedEvent fires when QC rejects a transfer
type TransferRejectedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string `json:"transfer_number"`
	Reason         string `json:"reason"`
}

func NewTransferRejectedEvent(t *SerialItemTransfer) *TransferRejectedEvent {
	actor := t.CreatedBy
	if t.QCApproverID != nil {
		actor = *t.QCApproverID
	}
	return &TransferRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferRejected, AggregateTypeTransfer, t.ID, actor),
		TransferNumber:  t.TransferNumber,
		Reason:          t.QCNotes,
	}
}

func (e *TransferRejectedEvent) EventType() string { return EventTypeTransferRejected }

// TransferReopenedEvent fires when a rejected transfer returns to draft
type TransferReopenedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string `json:"transfer_number"`
}

func NewTransferReopenedEvent(t *SerialItemTransfer) *TransferReopenedEvent {
	return &TransferReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferReopened, AggregateTypeTransfer, t.ID, t.CreatedBy),
		TransferNumber:  t.TransferNumber,
	}
}

func (e *TransferReopenedEvent) EventType() string { return EventTypeTransferReopened }

// TransferPostedEvent fires when SAP accepts the stock transfer
type TransferPostedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string `json:"transfer_number"`
	SAPDocNumber   string `json:"sap_doc_number"`
}

func NewTransferPostedEvent(t *SerialItemTransfer) *TransferPostedEvent {
	return &TransferPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferPosted, AggregateTypeTransfer, t.ID, t.CreatedBy),
		TransferNumber:  t.TransferNumber,
		SAPDocNumber:    t.SAPDocNumber,
	}
}

func (e *TransferPostedEvent) EventType() string { return EventTypeTransferPosted }

// TransferPostingFailedEvent fires when an SAP posting attempt fails
type TransferPostingFailedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string `json:"transfer_number"`
	Error          string `json:"error"`
}

func NewTransferPostingFailedEvent(t *SerialItemTransfer, errMsg string) *TransferPostingFailedEvent {
	return &TransferPostingFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferPostingFailed, AggregateTypeTransfer, t.ID, t.CreatedBy),
		TransferNumber:  t.TransferNumber,
		Error:           errMsg,
	}
}

func (e *TransferPostingFailedEvent) EventType() string { return EventTypeTransferPostingFailed }
