// Package picking contains the pick list bounded context. A pick list is
// built against an open SAP sales order, records picked quantities and
// serials per order line, and is posted to SAP as a PickLists document.
package picking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// PickedSerial is one serial number picked for a line. SystemNumber is the
// SAP-internal serial identifier required on the PickLists payload.
type PickedSerial struct {
	ID           uuid.UUID
	LineID       uuid.UUID
	SerialNumber string
	SystemNumber int
	CreatedAt    time.Time
}

// PickListLine mirrors one open sales order row
type PickListLine struct {
	ID              uuid.UUID
	PickListID      uuid.UUID
	OrderRowID      int // LineNum on the sales order
	ItemCode        string
	ItemDescription string
	OrderedQuantity decimal.Decimal // open quantity on the order line
	PickedQuantity  decimal.Decimal
	WarehouseCode   string
	SerialManaged   bool
	Serials         []PickedSerial
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasSerial returns true if the serial was already picked for this line
func (l *PickListLine) HasSerial(serial string) bool {
	for _, s := range l.Serials {
		if s.SerialNumber == serial {
			return true
		}
	}
	return false
}

// IsFullyPicked returns true when picked quantity covers the open quantity
func (l *PickListLine) IsFullyPicked() bool {
	return l.PickedQuantity.GreaterThanOrEqual(l.OrderedQuantity)
}

// PickList is the aggregate root for picking operations
type PickList struct {
	shared.OwnedAggregateRoot
	PickNumber       string
	OrderEntry       int // sales order DocEntry
	OrderNumber      int // sales order DocNum
	CardCode         string
	CardName         string
	WarehouseCode    string
	Status           shared.DocumentStatus
	Remarks          string
	QCApproverID     *uuid.UUID
	QCApproverName   string
	QCApprovedAt     *time.Time
	QCNotes          string
	SAPAbsoluteEntry int
	PostingError     string
	CreatedByName    string
	Lines            []PickListLine
}

// NewPickList creates a draft pick list against an open sales order
func NewPickList(pickNumber string, orderEntry, orderNumber int, cardCode, cardName, warehouseCode string, createdBy uuid.UUID, createdByName string) (*PickList, error) {
	if pickNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Pick number cannot be empty")
	}
	if orderEntry <= 0 {
		return nil, shared.NewDomainError("INVALID_ORDER", "Sales order entry is required")
	}
	if strings.TrimSpace(cardCode) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer code cannot be empty")
	}
	if strings.TrimSpace(warehouseCode) == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse code cannot be empty")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CREATOR", "Creator ID cannot be empty")
	}

	pl := &PickList{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(createdBy),
		PickNumber:         pickNumber,
		OrderEntry:         orderEntry,
		OrderNumber:        orderNumber,
		CardCode:           strings.TrimSpace(cardCode),
		CardName:           cardName,
		WarehouseCode:      strings.TrimSpace(warehouseCode),
		Status:             shared.DocumentStatusDraft,
		CreatedByName:      createdByName,
		Lines:              make([]PickListLine, 0),
	}

	pl.AddDomainEvent(NewPickListCreatedEvent(pl))

	return pl, nil
}

// AddLine copies an open order row onto the pick list
func (p *PickList) AddLine(orderRowID int, itemCode, itemDescription string, openQuantity decimal.Decimal, warehouseCode string, serialManaged bool) (*PickListLine, error) {
	if !p.Status.IsEditable() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Can only add lines in draft status")
	}
	if orderRowID < 0 {
		return nil, shared.NewDomainError("INVALID_LINE", "Order row ID cannot be negative")
	}
	itemCode = strings.TrimSpace(itemCode)
	if itemCode == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item code cannot be empty")
	}
	if openQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Open quantity must be positive")
	}
	for _, line := range p.Lines {
		if line.OrderRowID == orderRowID {
			return nil, shared.NewDomainError("DUPLICATE_LINE", fmt.Sprintf("Order row %d is already on this pick list", orderRowID))
		}
	}
	if warehouseCode == "" {
		warehouseCode = p.WarehouseCode
	}

	now := time.Now()
	line := PickListLine{
		ID:              uuid.New(),
		PickListID:      p.ID,
		OrderRowID:      orderRowID,
		ItemCode:        itemCode,
		ItemDescription: itemDescription,
		OrderedQuantity: openQuantity,
		PickedQuantity:  decimal.Zero,
		WarehouseCode:   warehouseCode,
		SerialManaged:   serialManaged,
		Serials:         make([]PickedSerial, 0),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	p.Lines = append(p.Lines, line)
	p.UpdatedAt = now
	p.IncrementVersion()

	return &p.Lines[len(p.Lines)-1], nil
}

// SetPickedQuantity records the picked amount for a non-serial line
func (p *PickList) SetPickedQuantity(lineID uuid.UUID, quantity decimal.Decimal) error {
	if !p.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only pick in draft status")
	}
	line := p.FindLine(lineID)
	if line == nil {
		return shared.NewDomainError("LINE_NOT_FOUND", "Line not found on this pick list")
	}
	if line.SerialManaged {
		return shared.NewDomainError("SERIAL_MANAGED", "Serial managed lines are picked by serial number")
	}
	if quantity.LessThan(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Picked quantity cannot be negative")
	}
	if quantity.GreaterThan(line.OrderedQuantity) {
		return shared.NewDomainError("QUANTITY_EXCEEDED", fmt.Sprintf("Picked quantity %s exceeds open quantity %s", quantity, line.OrderedQuantity))
	}

	line.PickedQuantity = quantity
	line.UpdatedAt = time.Now()
	p.UpdatedAt = line.UpdatedAt
	p.IncrementVersion()

	return nil
}

// HasSerial returns true if the serial is picked anywhere on this list
func (p *PickList) HasSerial(serial string) bool {
	for i := range p.Lines {
		if p.Lines[i].HasSerial(serial) {
			return true
		}
	}
	return false
}

// AddLineSerial picks one serialized unit for a line. The system number is
// resolved against SAP by the caller before the pick is recorded.
func (p *PickList) AddLineSerial(lineID uuid.UUID, serial string, systemNumber int) error {
	if !p.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only pick in draft status")
	}
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return shared.NewDomainError("INVALID_SERIAL", "Serial number cannot be empty")
	}
	line := p.FindLine(lineID)
	if line == nil {
		return shared.NewDomainError("LINE_NOT_FOUND", "Line not found on this pick list")
	}
	if !line.SerialManaged {
		return shared.NewDomainError("NOT_SERIAL_MANAGED", fmt.Sprintf("Item %s is not serial managed", line.ItemCode))
	}
	if p.HasSerial(serial) {
		return shared.ErrSerialDuplicate
	}
	picked := decimal.NewFromInt(int64(len(line.Serials) + 1))
	if picked.GreaterThan(line.OrderedQuantity) {
		return shared.NewDomainError("QUANTITY_EXCEEDED", fmt.Sprintf("Line for item %s is limited to %s units", line.ItemCode, line.OrderedQuantity))
	}

	now := time.Now()
	line.Serials = append(line.Serials, PickedSerial{
		ID:           uuid.New(),
		LineID:       line.ID,
		SerialNumber: serial,
		SystemNumber: systemNumber,
		CreatedAt:    now,
	})
	line.PickedQuantity = picked
	line.UpdatedAt = now
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// RemoveLineSerial undoes a serial pick
func (p *PickList) RemoveLineSerial(lineID uuid.UUID, serial string) error {
	if !p.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only pick in draft status")
	}
	line := p.FindLine(lineID)
	if line == nil {
		return shared.NewDomainError("LINE_NOT_FOUND", "Line not found on this pick list")
	}

	for i, s := range line.Serials {
		if s.SerialNumber == serial {
			line.Serials = append(line.Serials[:i], line.Serials[i+1:]...)
			line.PickedQuantity = decimal.NewFromInt(int64(len(line.Serials)))
			line.UpdatedAt = time.Now()
			p.UpdatedAt = line.UpdatedAt
			p.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("SERIAL_NOT_FOUND", "Serial not picked on this line")
}

// RemoveLine removes an order row from the draft
func (p *PickList) RemoveLine(lineID uuid.UUID) error {
	if !p.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only remove lines in draft status")
	}

	for i, line := range p.Lines {
		if line.ID == lineID {
			p.Lines = append(p.Lines[:i], p.Lines[i+1:]...)
			p.UpdatedAt = time.Now()
			p.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Line not found on this pick list")
}

// Submit moves the pick list into QC review. Every line must have a pick,
// and serial lines must carry one serial per picked unit.
func (p *PickList) Submit() error {
	if !p.Status.CanTransitionTo(shared.DocumentStatusSubmitted) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to submitted", p.Status))
	}
	if len(p.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot submit a pick list with no lines")
	}
	for _, line := range p.Lines {
		if line.PickedQuantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("NOTHING_PICKED", fmt.Sprintf("Nothing picked for item %s", line.ItemCode))
		}
		if line.SerialManaged && !line.PickedQuantity.Equal(decimal.NewFromInt(int64(len(line.Serials)))) {
			return shared.NewDomainError("SERIALS_INCOMPLETE", fmt.Sprintf("Item %s requires %s serials, has %d", line.ItemCode, line.PickedQuantity, len(line.Serials)))
		}
	}

	p.Status = shared.DocumentStatusSubmitted
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPickListSubmittedEvent(p))

	return nil
}

// Approve records QC approval
func (p *PickList) Approve(approverID uuid.UUID, approverName, notes string) error {
	if !p.Status.CanTransitionTo(shared.DocumentStatusQCApproved) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to qc_approved", p.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	now := time.Now()
	p.Status = shared.DocumentStatusQCApproved
	p.QCApproverID = &approverID
	p.QCApproverName = approverName
	p.QCApprovedAt = &now
	p.QCNotes = notes
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPickListApprovedEvent(p))

	return nil
}

// Reject records QC rejection. A reason is mandatory.
func (p *PickList) Reject(approverID uuid.UUID, approverName, reason string) error {
	if !p.Status.CanTransitionTo(shared.DocumentStatusRejected) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to rejected", p.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	p.Status = shared.DocumentStatusRejected
	p.QCApproverID = &approverID
	p.QCApproverName = approverName
	p.QCApprovedAt = &now
	p.QCNotes = reason
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPickListRejectedEvent(p))

	return nil
}

// Reopen returns a rejected pick list to draft
func (p *PickList) Reopen() error {
	if !p.Status.CanTransitionTo(shared.DocumentStatusDraft) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot reopen from %s", p.Status))
	}

	p.Status = shared.DocumentStatusDraft
	p.QCApproverID = nil
	p.QCApproverName = ""
	p.QCApprovedAt = nil
	p.QCNotes = ""
	p.PostingError = ""
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPickListReopenedEvent(p))

	return nil
}

// CanPost returns nil when the pick list is ready for SAP posting
func (p *PickList) CanPost() error {
	if p.Status != shared.DocumentStatusQCApproved {
		return shared.NewDomainError("INVALID_STATUS", "Only approved pick lists can be posted")
	}
	return nil
}

// MarkPosted records the SAP pick list created for this document
func (p *PickList) MarkPosted(absoluteEntry int) error {
	if !p.Status.CanTransitionTo(shared.DocumentStatusPosted) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to posted", p.Status))
	}

	p.Status = shared.DocumentStatusPosted
	p.SAPAbsoluteEntry = absoluteEntry
	p.PostingError = ""
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPickListPostedEvent(p))

	return nil
}

// RecordPostingFailure keeps the pick list approved while a retry is pending
func (p *PickList) RecordPostingFailure(errMsg string) {
	p.PostingError = errMsg
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPickListPostingFailedEvent(p, errMsg))
}

// FindLine returns the line with the given ID, or nil
func (p *PickList) FindLine(lineID uuid.UUID) *PickListLine {
	for i := range p.Lines {
		if p.Lines[i].ID == lineID {
			return &p.Lines[i]
		}
	}
	return nil
}

// TotalPickedQuantity sums picked quantities across lines
func (p *PickList) TotalPickedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, line := range p.Lines {
		total = total.Add(line.PickedQuantity)
	}
	return total
}
