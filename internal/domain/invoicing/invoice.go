// Package invoicing contains the sales-order invoicing bounded context.
// An invoice is drafted from an open SAP sales order, validated by scanning
// serials against the picked stock, and posted to SAP as an Invoices
// document (or as a Draft awaiting approval).
package invoicing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// InvoiceStatus is the lifecycle of a sales order invoice. Unlike warehouse
// documents, invoices skip QC: scanning serials is the validation step.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusValidated InvoiceStatus = "validated"
	InvoiceStatusPosted    InvoiceStatus = "posted"
	InvoiceStatusFailed    InvoiceStatus = "failed"
)

func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusValidated, InvoiceStatusPosted, InvoiceStatusFailed:
		return true
	}
	return false
}

func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether the transition is allowed
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusValidated
	case InvoiceStatusValidated:
		return target == InvoiceStatusPosted || target == InvoiceStatusFailed
	case InvoiceStatusFailed:
		return target == InvoiceStatusValidated
	case InvoiceStatusPosted:
		return false
	}
	return false
}

// IsEditable returns true while lines and serials may still change
func (s InvoiceStatus) IsEditable() bool {
	return s == InvoiceStatusDraft
}

// InvoiceSerial is one scanned serial backing an invoice line
type InvoiceSerial struct {
	ID           uuid.UUID
	LineID       uuid.UUID
	SerialNumber string
	CreatedAt    time.Time
}

// InvoiceLine copies one open sales order row onto the invoice
type InvoiceLine struct {
	ID                uuid.UUID
	InvoiceID         uuid.UUID
	BaseLineNumber    int // LineNum on the sales order
	ItemCode          string
	ItemDescription   string
	OrderedQuantity   decimal.Decimal // open quantity on the order line
	ValidatedQuantity decimal.Decimal
	WarehouseCode     string
	SerialManaged     bool
	Serials           []InvoiceSerial
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasSerial returns true if the serial was already scanned for this line
func (l *InvoiceLine) HasSerial(serial string) bool {
	for _, s := range l.Serials {
		if s.SerialNumber == serial {
			return true
		}
	}
	return false
}

// SalesOrderInvoice is the aggregate root for invoicing operations. The
// customer fields are copied from the sales order header at creation time.
type SalesOrderInvoice struct {
	shared.OwnedAggregateRoot
	InvoiceNumber   string
	SONumber        int // sales order DocNum
	SOSeries        int // sales order numbering series
	SOEntry         int // sales order DocEntry
	CardCode        string
	CardName        string
	Address         string
	UserSign        int
	BusinessPlaceID int
	Status          InvoiceStatus
	Comments        string
	SAPDocNumber    string
	SAPDocEntry     int
	PostedAsDraft   bool
	PostingError    string
	CreatedByName   string
	Lines           []InvoiceLine
}

// NewSalesOrderInvoice drafts an invoice against an open sales order
func NewSalesOrderInvoice(invoiceNumber string, soNumber, soSeries, soEntry int, cardCode, cardName, address string, userSign, businessPlaceID int, createdBy uuid.UUID, createdByName string) (*SalesOrderInvoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Invoice number cannot be empty")
	}
	if soEntry <= 0 {
		return nil, shared.NewDomainError("INVALID_ORDER", "Sales order entry is required")
	}
	if strings.TrimSpace(cardCode) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer code cannot be empty")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CREATOR", "Creator ID cannot be empty")
	}

	inv := &SalesOrderInvoice{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(createdBy),
		InvoiceNumber:      invoiceNumber,
		SONumber:           soNumber,
		SOSeries:           soSeries,
		SOEntry:            soEntry,
		CardCode:           strings.TrimSpace(cardCode),
		CardName:           cardName,
		Address:            address,
		UserSign:           userSign,
		BusinessPlaceID:    businessPlaceID,
		Status:             InvoiceStatusDraft,
		CreatedByName:      createdByName,
		Lines:              make([]InvoiceLine, 0),
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// AddLine copies an open order row onto the invoice with nothing validated yet
func (inv *SalesOrderInvoice) AddLine(baseLineNumber int, itemCode, itemDescription string, openQuantity decimal.Decimal, warehouseCode string, serialManaged bool) (*InvoiceLine, error) {
	if !inv.Status.IsEditable() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Can only add lines in draft status")
	}
	if baseLineNumber < 0 {
		return nil, shared.NewDomainError("INVALID_LINE", "Base line number cannot be negative")
	}
	itemCode = strings.TrimSpace(itemCode)
	if itemCode == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item code cannot be empty")
	}
	if openQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Open quantity must be positive")
	}
	for _, line := range inv.Lines {
		if line.BaseLineNumber == baseLineNumber {
			return nil, shared.NewDomainError("DUPLICATE_LINE", fmt.Sprintf("Order line %d is already on this invoice", baseLineNumber))
		}
	}

	now := time.Now()
	line := InvoiceLine{
		ID:                uuid.New(),
		InvoiceID:         inv.ID,
		BaseLineNumber:    baseLineNumber,
		ItemCode:          itemCode,
		ItemDescription:   itemDescription,
		OrderedQuantity:   openQuantity,
		ValidatedQuantity: decimal.Zero,
		WarehouseCode:     warehouseCode,
		SerialManaged:     serialManaged,
		Serials:           make([]InvoiceSerial, 0),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	inv.Lines = append(inv.Lines, line)
	inv.UpdatedAt = now
	inv.IncrementVersion()

	return &inv.Lines[len(inv.Lines)-1], nil
}

// HasSerial returns true if the serial is scanned anywhere on this invoice
func (inv *SalesOrderInvoice) HasSerial(serial string) bool {
	for i := range inv.Lines {
		if inv.Lines[i].HasSerial(serial) {
			return true
		}
	}
	return false
}

// AddLineSerial records one scanned serial. The serial count becomes the
// validated quantity for the line.
func (inv *SalesOrderInvoice) AddLineSerial(lineID uuid.UUID, serial string) error {
	if !inv.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only scan serials in draft status")
	}
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return shared.NewDomainError("INVALID_SERIAL", "Serial number cannot be empty")
	}
	line := inv.FindLine(lineID)
	if line == nil {
		return shared.NewDomainError("LINE_NOT_FOUND", "Line not found on this invoice")
	}
	if !line.SerialManaged {
		return shared.NewDomainError("NOT_SERIAL_MANAGED", fmt.Sprintf("Item %s is not serial managed", line.ItemCode))
	}
	if inv.HasSerial(serial) {
		return shared.ErrSerialDuplicate
	}
	validated := decimal.NewFromInt(int64(len(line.Serials) + 1))
	if validated.GreaterThan(line.OrderedQuantity) {
		return shared.NewDomainError("QUANTITY_EXCEEDED", fmt.Sprintf("Line for item %s is limited to %s units", line.ItemCode, line.OrderedQuantity))
	}

	now := time.Now()
	line.Serials = append(line.Serials, InvoiceSerial{
		ID:           uuid.New(),
		LineID:       line.ID,
		SerialNumber: serial,
		CreatedAt:    now,
	})
	line.ValidatedQuantity = validated
	line.UpdatedAt = now
	inv.UpdatedAt = now
	inv.IncrementVersion()

	return nil
}

// RemoveLineSerial undoes a scan
func (inv *SalesOrderInvoice) RemoveLineSerial(lineID uuid.UUID, serial string) error {
	if !inv.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only scan serials in draft status")
	}
	line := inv.FindLine(lineID)
	if line == nil {
		return shared.NewDomainError("LINE_NOT_FOUND", "Line not found on this invoice")
	}

	for i, s := range line.Serials {
		if s.SerialNumber == serial {
			line.Serials = append(line.Serials[:i], line.Serials[i+1:]...)
			line.ValidatedQuantity = decimal.NewFromInt(int64(len(line.Serials)))
			line.UpdatedAt = time.Now()
			inv.UpdatedAt = line.UpdatedAt
			inv.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("SERIAL_NOT_FOUND", "Serial not scanned on this line")
}

// SetValidatedQuantity records the checked amount for a non-serial line
func (inv *SalesOrderInvoice) SetValidatedQuantity(lineID uuid.UUID, quantity decimal.Decimal) error {
	if !inv.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only validate quantities in draft status")
	}
	line := inv.FindLine(lineID)
	if line == nil {
		return shared.NewDomainError("LINE_NOT_FOUND", "Line not found on this invoice")
	}
	if line.SerialManaged {
		return shared.NewDomainError("SERIAL_MANAGED", "Serial managed lines are validated by scanning serials")
	}
	if quantity.LessThan(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Validated quantity cannot be negative")
	}
	if quantity.GreaterThan(line.OrderedQuantity) {
		return shared.NewDomainError("QUANTITY_EXCEEDED", fmt.Sprintf("Validated quantity %s exceeds open quantity %s", quantity, line.OrderedQuantity))
	}

	line.ValidatedQuantity = quantity
	line.UpdatedAt = time.Now()
	inv.UpdatedAt = line.UpdatedAt
	inv.IncrementVersion()

	return nil
}

// Validate freezes the invoice once every line has a validated quantity
func (inv *SalesOrderInvoice) Validate() error {
	if !inv.Status.CanTransitionTo(InvoiceStatusValidated) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to validated", inv.Status))
	}
	if len(inv.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot validate an invoice with no lines")
	}
	for _, line := range inv.Lines {
		if line.ValidatedQuantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("NOTHING_VALIDATED", fmt.Sprintf("Nothing validated for item %s", line.ItemCode))
		}
		if line.SerialManaged && !line.ValidatedQuantity.Equal(decimal.NewFromInt(int64(len(line.Serials)))) {
			return shared.NewDomainError("SERIALS_INCOMPLETE", fmt.Sprintf("Item %s requires %s serials, has %d", line.ItemCode, line.ValidatedQuantity, len(line.Serials)))
		}
	}

	inv.Status = InvoiceStatusValidated
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceValidatedEvent(inv))

	return nil
}

// CanPost returns nil when the invoice is ready for SAP posting
func (inv *SalesOrderInvoice) CanPost() error {
	if inv.Status != InvoiceStatusValidated {
		return shared.NewDomainError("INVALID_STATUS", "Only validated invoices can be posted")
	}
	return nil
}

// MarkPosted records the SAP invoice (or draft) created for this document
func (inv *SalesOrderInvoice) MarkPosted(sapDocNumber string, sapDocEntry int, asDraft bool) error {
	if !inv.Status.CanTransitionTo(InvoiceStatusPosted) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to posted", inv.Status))
	}

	inv.Status = InvoiceStatusPosted
	inv.SAPDocNumber = sapDocNumber
	inv.SAPDocEntry = sapDocEntry
	inv.PostedAsDraft = asDraft
	inv.PostingError = ""
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoicePostedEvent(inv))

	return nil
}

// RecordPostingFailure keeps the invoice validated while a retry is pending
func (inv *SalesOrderInvoice) RecordPostingFailure(errMsg string) {
	inv.PostingError = errMsg
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoicePostingFailedEvent(inv, errMsg))
}

// MarkPostingFailed parks the invoice in failed after retries are exhausted
func (inv *SalesOrderInvoice) MarkPostingFailed(errMsg string) error {
	if !inv.Status.CanTransitionTo(InvoiceStatusFailed) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to failed", inv.Status))
	}

	inv.Status = InvoiceStatusFailed
	inv.PostingError = errMsg
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoicePostingFailedEvent(inv, errMsg))

	return nil
}

// ResetForRetry returns a failed invoice to validated for another attempt
func (inv *SalesOrderInvoice) ResetForRetry() error {
	if !inv.Status.CanTransitionTo(InvoiceStatusValidated) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot retry from %s", inv.Status))
	}

	inv.Status = InvoiceStatusValidated
	inv.PostingError = ""
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return nil
}

// FindLine returns the line with the given ID, or nil
func (inv *SalesOrderInvoice) FindLine(lineID uuid.UUID) *InvoiceLine {
	for i := range inv.Lines {
		if inv.Lines[i].ID == lineID {
			return &inv.Lines[i]
		}
	}
	return nil
}

// FindLineByItemCode returns the first line for the item, or nil. Serial
// scans arrive with an item code resolved from SAP rather than a line ID.
func (inv *SalesOrderInvoice) FindLineByItemCode(itemCode string) *InvoiceLine {
	for i := range inv.Lines {
		if inv.Lines[i].ItemCode == itemCode {
			return &inv.Lines[i]
		}
	}
	return nil
}

// TotalValidatedQuantity sums validated quantities across lines
func (inv *SalesOrderInvoice) TotalValidatedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, line := range inv.Lines {
		total = total.Add(line.ValidatedQuantity)
	}
	return total
}
