// Package transfer contains the serial item transfer bounded context.
// A transfer moves serialized (or plain) stock between warehouses, passes
// QC approval, and is posted to SAP as a StockTransfers document.
package transfer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// ItemValidationStatus tracks whether an item passed ERP stock validation
type ItemValidationStatus string

const (
	ItemValidationPending   ItemValidationStatus = "pending"
	ItemValidationValidated ItemValidationStatus = "validated"
	ItemValidationFailed    ItemValidationStatus = "failed"
)

// ItemQCStatus tracks per-item QC review
type ItemQCStatus string

const (
	ItemQCPending  ItemQCStatus = "pending"
	ItemQCApproved ItemQCStatus = "approved"
	ItemQCRejected ItemQCStatus = "rejected"
)

// TransferItem is one transferred unit (serial managed) or quantity
// (non serial managed) on a transfer.
type TransferItem struct {
	ID               uuid.UUID
	TransferID       uuid.UUID
	ItemCode         string
	ItemDescription  string
	SerialNumber     string // empty for non serial managed items
	Quantity         decimal.Decimal
	SerialManaged    bool
	ValidationStatus ItemValidationStatus
	ValidationError  string
	QCStatus         ItemQCStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsValidated returns true when the item passed stock validation
func (i *TransferItem) IsValidated() bool {
	return i.ValidationStatus == ItemValidationValidated
}

// SerialItemTransfer represents a warehouse-to-warehouse transfer.
// It is the aggregate root for transfer operations.
type SerialItemTransfer struct {
	shared.OwnedAggregateRoot
	TransferNumber string
	FromWarehouse  string
	ToWarehouse    string
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
	Items          []TransferItem
}

// NewSerialItemTransfer creates a draft transfer between two distinct warehouses
func NewSerialItemTransfer(transferNumber, fromWarehouse, toWarehouse string, createdBy uuid.UUID, createdByName string) (*SerialItemTransfer, error) {
	fromWarehouse = strings.TrimSpace(fromWarehouse)
	toWarehouse = strings.TrimSpace(toWarehouse)

	if transferNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Transfer number cannot be empty")
	}
	if fromWarehouse == "" || toWarehouse == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Both warehouses are required")
	}
	if fromWarehouse == toWarehouse {
		return nil, shared.NewDomainError("SAME_WAREHOUSE", "Source and destination warehouses must differ")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CREATOR", "Creator ID cannot be empty")
	}

	tr := &SerialItemTransfer{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(createdBy),
		TransferNumber:     transferNumber,
		FromWarehouse:      fromWarehouse,
		ToWarehouse:        toWarehouse,
		Status:             shared.DocumentStatusDraft,
		CreatedByName:      createdByName,
		Items:              make([]TransferItem, 0),
	}

	tr.AddDomainEvent(NewTransferCreatedEvent(tr))

	return tr, nil
}

// HasSerial returns true if the serial is already on this transfer
func (t *SerialItemTransfer) HasSerial(serial string) bool {
	for _, item := range t.Items {
		if item.SerialManaged && item.SerialNumber == serial {
			return true
		}
	}
	return false
}

// AddSerialItem records one serialized unit. Validation is performed by the
// caller against SAP before the item is added; the outcome travels with the
// item so failed validations block submission.
func (t *SerialItemTransfer) AddSerialItem(itemCode, itemDescription, serial string, validation ItemValidationStatus, validationError string) (*TransferItem, error) {
	if !t.Status.IsEditable() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Can only add items in draft status")
	}
	itemCode = strings.TrimSpace(itemCode)
	serial = strings.TrimSpace(serial)
	if itemCode == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item code cannot be empty")
	}
	if serial == "" {
		return nil, shared.NewDomainError("INVALID_SERIAL", "Serial number cannot be empty")
	}
	if t.HasSerial(serial) {
		return nil, shared.ErrSerialDuplicate
	}

	now := time.Now()
	item := TransferItem{
		ID:               uuid.New(),
		TransferID:       t.ID,
		ItemCode:         itemCode,
		ItemDescription:  itemDescription,
		SerialNumber:     serial,
		Quantity:         decimal.NewFromInt(1),
		SerialManaged:    true,
		ValidationStatus: validation,
		ValidationError:  validationError,
		QCStatus:         ItemQCPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	t.Items = append(t.Items, item)
	t.UpdatedAt = now
	t.IncrementVersion()

	return &t.Items[len(t.Items)-1], nil
}

// AddNonSerialItem records a plain quantity of an item that is not managed
// by serial numbers. Stock checks happen in the caller; quantity caps at the
// reported on-hand stock.
func (t *SerialItemTransfer) AddNonSerialItem(itemCode, itemDescription string, quantity decimal.Decimal, validation ItemValidationStatus, validationError string) (*TransferItem, error) {
	if !t.Status.IsEditable() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Can only add items in draft status")
	}
	itemCode = strings.TrimSpace(itemCode)
	if itemCode == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item code cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	for _, item := range t.Items {
		if !item.SerialManaged && item.ItemCode == itemCode {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", "Item already on this transfer; adjust its quantity instead")
		}
	}

	now := time.Now()
	item := TransferItem{
		ID:               uuid.New(),
		TransferID:       t.ID,
		ItemCode:         itemCode,
		ItemDescription:  itemDescription,
		Quantity:         quantity,
		SerialManaged:    false,
		ValidationStatus: validation,
		ValidationError:  validationError,
		QCStatus:         ItemQCPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	t.Items = append(t.Items, item)
	t.UpdatedAt = now
	t.IncrementVersion()

	return &t.Items[len(t.Items)-1], nil
}

// RemoveItem removes a line from the draft
func (t *SerialItemTransfer) RemoveItem(itemID uuid.UUID) error {
	if !t.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only remove items in draft status")
	}

	for i, item := range t.Items {
		if item.ID == itemID {
			t.Items = append(t.Items[:i], t.Items[i+1:]...)
			t.UpdatedAt = time.Now()
			t.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Item not found on this transfer")
}

// Submit moves the draft into QC review. Items that failed validation must
// be removed or revalidated first.
func (t *SerialItemTransfer) Submit() error {
	if !t.Status.CanTransitionTo(shared.DocumentStatusSubmitted) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to submitted", t.Status))
	}
	if len(t.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot submit a transfer with no items")
	}
	for _, item := range t.Items {
		if item.ValidationStatus == ItemValidationFailed {
			return shared.NewDomainError("VALIDATION_FAILED", fmt.Sprintf("Item %s failed stock validation: %s", item.ItemCode, item.ValidationError))
		}
	}

	t.Status = shared.DocumentStatusSubmitted
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferSubmittedEvent(t))

	return nil
}

// Approve records QC approval and marks every item approved
func (t *SerialItemTransfer) Approve(approverID uuid.UUID, approverName, notes string) error {
	if !t.Status.CanTransitionTo(shared.DocumentStatusQCApproved) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to qc_approved", t.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	now := time.Now()
	t.Status = shared.DocumentStatusQCApproved
	t.QCApproverID = &approverID
	t.QCApproverName = approverName
	t.QCApprovedAt = &now
	t.QCNotes = notes
	for i := range t.Items {
		t.Items[i].QCStatus = ItemQCApproved
		t.Items[i].UpdatedAt = now
	}
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferApprovedEvent(t))

	return nil
}

// Reject records QC rejection. A reason is mandatory.
func (t *SerialItemTransfer) Reject(approverID uuid.UUID, approverName, reason string) error {
	if !t.Status.CanTransitionTo(shared.DocumentStatusRejected) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to rejected", t.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	t.Status = shared.DocumentStatusRejected
	t.QCApproverID = &approverID
	t.QCApproverName = approverName
	t.QCApprovedAt = &now
	t.QCNotes = reason
	for i := range t.Items {
		t.Items[i].QCStatus = ItemQCRejected
		t.Items[i].UpdatedAt = now
	}
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferRejectedEvent(t))

	return nil
}

// Reopen returns a rejected transfer to draft for correction
func (t *SerialItemTransfer) Reopen() error {
	if !t.Status.CanTransitionTo(shared.DocumentStatusDraft) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot reopen from %s", t.Status))
	}

	now := time.Now()
	t.Status = shared.DocumentStatusDraft
	t.QCApproverID = nil
	t.QCApproverName = ""
	t.QCApprovedAt = nil
	t.QCNotes = ""
	t.PostingError = ""
	for i := range t.Items {
		t.Items[i].QCStatus = ItemQCPending
		t.Items[i].UpdatedAt = now
	}
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferReopenedEvent(t))

	return nil
}

// CanPost returns nil when the transfer is ready for SAP posting
func (t *SerialItemTransfer) CanPost() error {
	if t.Status != shared.DocumentStatusQCApproved {
		return shared.NewDomainError("INVALID_STATUS", "Only approved transfers can be posted")
	}
	for _, item := range t.Items {
		if !item.IsValidated() {
			return shared.NewDomainError("VALIDATION_INCOMPLETE", fmt.Sprintf("Item %s has not passed stock validation", item.ItemCode))
		}
		if item.QCStatus != ItemQCApproved {
			return shared.NewDomainError("QC_INCOMPLETE", fmt.Sprintf("Item %s is not QC approved", item.ItemCode))
		}
	}
	return nil
}

// MarkPosted records the SAP document created for this transfer
func (t *SerialItemTransfer) MarkPosted(sapDocNumber string, sapDocEntry int) error {
	if !t.Status.CanTransitionTo(shared.DocumentStatusPosted) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition from %s to posted", t.Status))
	}

	t.Status = shared.DocumentStatusPosted
	t.SAPDocNumber = sapDocNumber
	t.SAPDocEntry = sapDocEntry
	t.PostingError = ""
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferPostedEvent(t))

	return nil
}

// RecordPostingFailure keeps the transfer approved while a retry is pending
func (t *SerialItemTransfer) RecordPostingFailure(errMsg string) {
	t.PostingError = errMsg
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferPostingFailedEvent(t, errMsg))
}

// MarkPostingFailed rejects the transfer after retries are exhausted so the
// stock can be corrected and resubmitted. Items fall back to pending QC.
func (t *SerialItemTransfer) MarkPostingFailed(errMsg string) error {
	if t.Status != shared.DocumentStatusQCApproved {
		return shared.NewDomainError("INVALID_STATUS", "Only approved transfers can fail posting")
	}

	now := time.Now()
	t.Status = shared.DocumentStatusRejected
	t.QCNotes = "SAP B1 posting failed: " + errMsg
	t.PostingError = errMsg
	for i := range t.Items {
		t.Items[i].QCStatus = ItemQCPending
		t.Items[i].UpdatedAt = now
	}
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransferPostingFailedEvent(t, errMsg))

	return nil
}

// SerialsByItem groups serialized items by item code in insertion order,
// matching how transfer lines are laid out on the SAP payload.
func (t *SerialItemTransfer) SerialsByItem() ([]string, map[string][]TransferItem) {
	order := make([]string, 0)
	groups := make(map[string][]TransferItem)
	for _, item := range t.Items {
		if !item.SerialManaged {
			continue
		}
		if _, seen := groups[item.ItemCode]; !seen {
			order = append(order, item.ItemCode)
		}
		groups[item.ItemCode] = append(groups[item.ItemCode], item)
	}
	return order, groups
}

// NonSerialItems returns the plain quantity lines
func (t *SerialItemTransfer) NonSerialItems() []TransferItem {
	items := make([]TransferItem, 0)
	for _, item := range t.Items {
		if !item.SerialManaged {
			items = append(items, item)
		}
	}
	return items
}

// IsEmpty returns true when the transfer has no items
func (t *SerialItemTransfer) IsEmpty() bool {
	return len(t.Items) == 0
}
