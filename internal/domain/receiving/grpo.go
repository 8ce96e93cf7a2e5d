// Package receiving contains the goods receipt (GRPO) bounded context.
// A GRPO document records stock received against a purchase order, passes
// QC approval, and is posted to SAP as a PurchaseDeliveryNotes document.
package receiving

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// GRPOItemSerial is one serialized unit on a receipt line
type GRPOItemSerial struct {
	ID                 uuid.UUID
	GRPOItemID         uuid.UUID
	SerialNumber       string
	ManufacturerSerial string
	CreatedAt          time.Time
}

// GRPOItem represents a line item on a goods receipt
type GRPOItem struct {
	ID               uuid.UUID
	GRPOID           uuid.UUID
	ItemCode         string
	ItemDescription  string
	UnitOfMeasure    string
	POLineNumber     int
	OrderedQuantity  decimal.Decimal
	ReceivedQuantity decimal.Decimal
	BinLocation      string
	SerialManaged    bool
	BatchManaged     bool
	BatchNumber      string
	Serials          []GRPOItemSerial
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewGRPOItem creates a new receipt line
func NewGRPOItem(grpoID uuid.UUID, itemCode, itemDescription, uom string, poLineNumber int, orderedQty, receivedQty decimal.Decimal) *GRPOItem {
	now := time.Now()
	return &GRPOItem{
		ID:               uuid.New(),
		GRPOID:           grpoID,
		ItemCode:         itemCode,
		ItemDescription:  itemDescription,
		UnitOfMeasure:    uom,
		POLineNumber:     poLineNumber,
		OrderedQuantity:  orderedQty,
		ReceivedQuantity: receivedQty,
		Serials:          make([]GRPOItemSerial, 0),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// HasSerial returns true if the serial is already recorded on this line
func (i *GRPOItem) HasSerial(serial string) bool {
	for _, s := range i.Serials {
		if s.SerialNumber == serial {
			return true
		}
	}
	return false
}

// SerialsComplete returns true when every received unit has a serial
func (i *GRPOItem) SerialsComplete() bool {
	if !i.SerialManaged {
		return true
	}
	return decimal.NewFromInt(int64(len(i.Serials))).Equal(i.ReceivedQuantity)
}

// GRPODocument represents a goods receipt against a purchase order.
// It is the aggregate root for receiving operations.
type GRPODocument struct {
	shared.OwnedAggregateRoot
	DocumentNumber string
	PONumber       string
	POEntry        int // SAP DocEntry of the base purchase order, 0 when unreferenced
	CardCode       string
	CardName       string
	WarehouseCode  string
	Status         shared.DocumentStatus
	Remarks        string
	QCApproverID   *uuid.UUID
	QCApproverName string
	QCApprovedAt   *time.Time
	QCNotes        string
	SAPDocNumber   string
	SAPDocEntry    int
	PostingError   string
	CreatedByName  string
	Items          []GRPOItem
}

// NewGRPODocument creates a draft goods receipt
func NewGRPODocument(documentNumber, poNumber string, poEntry int, cardCode, cardName, warehouseCode string, createdBy uuid.UUID, createdByName string) (*GRPODocument, error) {
	if documentNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}
	if strings.TrimSpace(poNumber) == "" {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "Purchase order number cannot be empty")
	}
	if strings.TrimSpace(cardCode) == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier code cannot be empty")
	}
	if strings.TrimSpace(warehouseCode) == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse code cannot be empty")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CREATOR", "Creator ID cannot be empty")
	}

	doc := &GRPODocument{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(createdBy),
		DocumentNumber:     documentNumber,
		PONumber:           strings.TrimSpace(poNumber),
		POEntry:            poEntry,
		CardCode:           strings.TrimSpace(cardCode),
		CardName:           strings.TrimSpace(cardName),
		WarehouseCode:      strings.TrimSpace(warehouseCode),
		Status:             shared.DocumentStatusDraft,
		CreatedByName:      createdByName,
		Items:              make([]GRPOItem, 0),
	}

	doc.AddDomainEvent(NewGRPOCreatedEvent(doc))

	return doc, nil
}

// UpdateHeader changes mutable header fields while the document is a draft
func (d *GRPODocument) UpdateHeader(cardName, remarks string) error {
	if !d.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only update header in draft status")
	}
	d.CardName = strings.TrimSpace(cardName)
	d.Remarks = remarks
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// AddItem adds a receipt line to the draft
func (d *GRPODocument) AddItem(itemCode, itemDescription, uom string, poLineNumber int, orderedQty, receivedQty decimal.Decimal, binLocation string, serialManaged, batchManaged bool, batchNumber string) (*GRPOItem, error) {
	if !d.Status.IsEditable() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Can only add items in draft status")
	}
	if strings.TrimSpace(itemCode) == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item code cannot be empty")
	}
	if receivedQty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}
	if orderedQty.GreaterThan(decimal.Zero) && receivedQty.GreaterThan(orderedQty) {
		return nil, shared.NewDomainError("QUANTITY_EXCEEDS_ORDER", fmt.Sprintf("Received quantity %s exceeds ordered quantity %s", receivedQty, orderedQty))
	}
	if serialManaged && batchManaged {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item cannot be both serial and batch managed")
	}
	if batchManaged && strings.TrimSpace(batchNumber) == "" {
		return nil, shared.NewDomainError("BATCH_REQUIRED", "Batch number is required for batch managed items")
	}

	for _, item := range d.Items {
		if item.ItemCode == itemCode && item.POLineNumber == poLineNumber {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", "Item already exists on this receipt for the same PO line")
		}
	}

	item := NewGRPOItem(d.ID, strings.TrimSpace(itemCode), itemDescription, uom, poLineNumber, orderedQty, receivedQty)
	item.BinLocation = strings.TrimSpace(binLocation)
	item.SerialManaged = serialManaged
	item.BatchManaged = batchManaged
	item.BatchNumber = strings.TrimSpace(batchNumber)

	d.Items = append(d.Items, *item)
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	return &d.Items[len(d.Items)-1], nil
}

// UpdateItemQuantity changes the received quantity on a draft line
func (d *GRPODocument) UpdateItemQuantity(itemID uuid.UUID, receivedQty decimal.Decimal) error {
	if !d.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only update items in draft status")
	}
	if receivedQty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}

	for i := range d.Items {
		if d.Items[i].ID == itemID {
			item := &d.Items[i]
			if item.OrderedQuantity.GreaterThan(decimal.Zero) && receivedQty.GreaterThan(item.OrderedQuantity) {
				return shared.NewDomainError("QUANTITY_EXCEEDS_ORDER", fmt.Sprintf("Received quantity %s exceeds ordered quantity %s", receivedQty, item.OrderedQuantity))
			}
			if item.SerialManaged && decimal.NewFromInt(int64(len(item.Serials))).GreaterThan(receivedQty) {
				return shared.NewDomainError("INVALID_QUANTITY", "Received quantity cannot be below the number of recorded serials")
			}
			item.ReceivedQuantity = receivedQty
			item.UpdatedAt = time.Now()
			d.UpdatedAt = time.Now()
			d.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Item not found on this receipt")
}

// RemoveItem removes a line from the draft
func (d *GRPODocument) RemoveItem(itemID uuid.UUID) error {
	if !d.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only remove items in draft status")
	}

	for i, item := range d.Items {
		if item.ID == itemID {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			d.UpdatedAt = time.Now()
			d.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Item not found on this receipt")
}

// AddItemSerial records a validated serial on a serial-managed line.
// Serials must be unique across the whole document.
func (d *GRPODocument) AddItemSerial(itemID uuid.UUID, serial, manufacturerSerial string) error {
	if !d.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only record serials in draft status")
	}
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return shared.NewDomainError("INVALID_SERIAL", "Serial number cannot be empty")
	}

	for i := range d.Items {
		if d.Items[i].HasSerial(serial) {
			return shared.ErrSerialDuplicate
		}
	}

	for i := range d.Items {
		if d.Items[i].ID == itemID {
			item := &d.Items[i]
			if !item.SerialManaged {
				return shared.NewDomainError("NOT_SERIAL_MANAGED", "Item is not serial managed")
			}
			if decimal.NewFromInt(int64(len(item.Serials) + 1)).GreaterThan(item.ReceivedQuantity) {
				return shared.NewDomainError("TOO_MANY_SERIALS", "Serial count cannot exceed received quantity")
			}
			if manufacturerSerial == "" {
				manufacturerSerial = serial
			}
			item.Serials = append(item.Serials, GRPOItemSerial{
				ID:                 uuid.New(),
				GRPOItemID:         item.ID,
				SerialNumber:       serial,
				ManufacturerSerial: strings.TrimSpace(manufacturerSerial),
				CreatedAt:          time.Now(),
			})
			item.UpdatedAt = time.Now()
			d.UpdatedAt = time.Now()
			d.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Item not found on this receipt")
}

// RemoveItemSerial removes a recorded serial from a draft line
func (d *GRPODocument) RemoveItemSerial(itemID uuid.UUID, serial string) error {
	if !d.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only modify serials in draft status")
	}

	for i := range d.Items {
		if d.Items[i].ID != itemID {
			continue
		}
		item := &d.Items[i]
		for j, s := range item.Serials {
			if s.SerialNumber == serial {
				item.Serials = append(item.Serials[:j], item.Serials[j+1:]...)
				item.UpdatedAt = time.Now()
				d.UpdatedAt = time.Now()
				d.IncrementVersion()
				return nil
			}
		}
		return shared.NewDomainError("SERIAL_NOT_FOUND", "Serial not recorded on this item")
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Item not found on this receipt")
}

// Submit moves the draft into QC review
func (d *GRPODocument) Submit() error {
	if !d.Status.CanTransitionTo(shared.DocumentStatusSubmitted) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to submitted", d.Status))
	}
	if len(d.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot submit a receipt with no items")
	}
	for _, item := range d.Items {
		if !item.SerialsComplete() {
			return shared.NewDomainError("SERIALS_INCOMPLETE", fmt.Sprintf("Item %s requires %s serials, has %d", item.ItemCode, item.ReceivedQuantity, len(item.Serials)))
		}
		if item.BatchManaged && item.BatchNumber == "" {
			return shared.NewDomainError("BATCH_REQUIRED", fmt.Sprintf("Item %s requires a batch number", item.ItemCode))
		}
	}

	d.Status = shared.DocumentStatusSubmitted
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewGRPOSubmittedEvent(d))

	return nil
}

// Approve records QC approval on a submitted receipt
func (d *GRPODocument) Approve(approverID uuid.UUID, approverName, notes string) error {
	if !d.Status.CanTransitionTo(shared.DocumentStatusQCApproved) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to qc_approved", d.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	now := time.Now()
	d.Status = shared.DocumentStatusQCApproved
	d.QCApproverID = &approverID
	d.QCApproverName = approverName
	d.QCApprovedAt = &now
	d.QCNotes = notes
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewGRPOApprovedEvent(d))

	return nil
}

// Reject records QC rejection. A reason is mandatory.
func (d *GRPODocument) Reject(approverID uuid.UUID, approverName, reason string) error {
	if !d.Status.CanTransitionTo(shared.DocumentStatusRejected) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to rejected", d.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	d.Status = shared.DocumentStatusRejected
	d.QCApproverID = &approverID
	d.QCApproverName = approverName
	d.QCApprovedAt = &now
	d.QCNotes = reason
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewGRPORejectedEvent(d))

	return nil
}

// Reopen returns a rejected receipt to draft for correction
func (d *GRPODocument) Reopen() error {
	if !d.Status.CanTransitionTo(shared.DocumentStatusDraft) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot reopen from %s", d.Status))
	}

	d.Status = shared.DocumentStatusDraft
	d.QCApproverID = nil
	d.QCApproverName = ""
	d.QCApprovedAt = nil
	d.QCNotes = ""
	d.PostingError = ""
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewGRPOReopenedEvent(d))

	return nil
}

// CanPost returns nil when the receipt is ready for SAP posting
func (d *GRPODocument) CanPost() error {
	if d.Status != shared.DocumentStatusQCApproved {
		return shared.NewDomainError("INVALID_STATUS", "Only approved receipts can be posted")
	}
	return nil
}

// MarkPosted records the SAP document created for this receipt
func (d *GRPODocument) MarkPosted(sapDocNumber string, sapDocEntry int) error {
	if !d.Status.CanTransitionTo(shared.DocumentStatusPosted) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to posted", d.Status))
	}

	d.Status = shared.DocumentStatusPosted
	d.SAPDocNumber = sapDocNumber
	d.SAPDocEntry = sapDocEntry
	d.PostingError = ""
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewGRPOPostedEvent(d))

	return nil
}

// RecordPostingFailure keeps the receipt approved and retryable while
// recording why the last posting attempt failed
func (d *GRPODocument) RecordPostingFailure(errMsg string) {
	d.PostingError = errMsg
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewGRPOPostingFailedEvent(d, errMsg))
}

// TotalReceivedQuantity sums received quantity across lines
func (d *GRPODocument) TotalReceivedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.ReceivedQuantity)
	}
	return total
}

// FindItem returns the line with the given ID, or nil
func (d *GRPODocument) FindItem(itemID uuid.UUID) *GRPOItem {
	for i := range d.Items {
		if d.Items[i].ID == itemID {
			return &d.Items[i]
		}
	}
	return nil
}
