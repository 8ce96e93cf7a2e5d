package invoicing

import (
	"github.com/wms/backend/internal/domain/shared"
)

const AggregateTypeInvoice = "SalesOrderInvoice"

// Event types
const (
	EventTypeInvoiceCreated       = "invoice.created"
	EventTypeInvoiceValidated     = "invoice.validated"
	EventTypeInvoicePosted        = "invoice.posted"
	EventTypeInvoicePostingFailed = "invoice.posting_failed"
)

// InvoiceCreatedEvent fires when a draft invoice is created from a sales order
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	SONumber      int    `json:"so_number"`
	CardCode      string `json:"card_code"`
}

func NewInvoiceCreatedEvent(inv *SalesOrderInvoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID, inv.CreatedBy),
		InvoiceNumber:   inv.InvoiceNumber,
		SONumber:        inv.SONumber,
		CardCode:        inv.CardCode,
	}
}

func (e *InvoiceCreatedEvent) EventType() string { return EventTypeInvoiceCreated }

// InvoiceValidatedEvent fires when all lines are validated
type InvoiceValidatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	LineCount     int    `json:"line_count"`
}

func NewInvoiceValidatedEvent(inv *SalesOrderInvoice) *InvoiceValidatedEvent {
	return &InvoiceValidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceValidated, AggregateTypeInvoice, inv.ID, inv.CreatedBy),
		InvoiceNumber:   inv.InvoiceNumber,
		LineCount:       len(inv.Lines),
	}
}

func (e *InvoiceValidatedEvent) EventType() string { return EventTypeInvoiceValidated }

// InvoicePostedEvent fires when SAP accepts the invoice or draft
type InvoicePostedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	SAPDocNumber  string `json:"sap_doc_number"`
	PostedAsDraft bool   `json:"posted_as_draft"`
}

func NewInvoicePostedEvent(inv *SalesOrderInvoice) *InvoicePostedEvent {
	return &InvoicePostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePosted, AggregateTypeInvoice, inv.ID, inv.CreatedBy),
		InvoiceNumber:   inv.InvoiceNumber,
		SAPDocNumber:    inv.SAPDocNumber,
		PostedAsDraft:   inv.PostedAsDraft,
	}
}

func (e *InvoicePostedEvent) EventType() string { return EventTypeInvoicePosted }

// InvoicePostingFailedEvent fires when an SAP posting attempt fails
type InvoicePostingFailedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	Error         string `json:"error"`
}

func NewInvoicePostingFailedEvent(inv *SalesOrderInvoice, errMsg string) *InvoicePostingFailedEvent {
	return &InvoicePostingFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePostingFailed, AggregateTypeInvoice, inv.ID, inv.CreatedBy),
		InvoiceNumber:   inv.InvoiceNumber,
		Error:           errMsg,
	}
}

func (e *InvoicePostingFailedEvent) EventType() string { return EventTypeInvoicePostingFailed }
