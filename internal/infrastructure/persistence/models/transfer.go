package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/transfer"
)

// SerialItemTransferModel is the persistence model for the SerialItemTransfer
// aggregate root.
type SerialItemTransferModel struct {
	OwnedAggregateModel
	TransferNumber string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	FromWarehouse  string                `gorm:"type:varchar(8);not null;index"`
	ToWarehouse    string                `gorm:"type:varchar(8);not null;index"`
	Status         shared.DocumentStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Remarks        string                `gorm:"type:text"`
	QCApproverID   *uuid.UUID            `gorm:"type:uuid"`
	QCApproverName string                `gorm:"type:varchar(200)"`
	QCApprovedAt   *time.Time
	QCNotes        string              `gorm:"type:text"`
	SAPDocNumber   string              `gorm:"type:varchar(50)"`
	SAPDocEntry    int                 `gorm:"not null;default:0"`
	PostingError   string              `gorm:"type:text"`
	CreatedByName  string              `gorm:"type:varchar(200)"`
	Items          []TransferItemModel `gorm:"foreignKey:TransferID;references:ID"`
}

// TableName returns the table name for GORM
func (SerialItemTransferModel) TableName() string {
	return "serial_item_transfers"
}

// ToDomain converts the persistence model to a domain SerialItemTransfer entity.
func (m *SerialItemTransferModel) ToDomain() *transfer.SerialItemTransfer {
	t := &transfer.SerialItemTransfer{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		TransferNumber:     m.TransferNumber,
		FromWarehouse:      m.FromWarehouse,
		ToWarehouse:        m.ToWarehouse,
		Status:             m.Status,
		Remarks:            m.Remarks,
		QCApproverID:       m.QCApproverID,
		QCApproverName:     m.QCApproverName,
		QCApprovedAt:       m.QCApprovedAt,
		QCNotes:            m.QCNotes,
		SAPDocNumber:       m.SAPDocNumber,
		SAPDocEntry:        m.SAPDocEntry,
		PostingError:       m.PostingError,
		CreatedByName:      m.CreatedByName,
		Items:              make([]transfer.TransferItem, len(m.Items)),
	}
	for i, item := range m.Items {
		t.Items[i] = *item.ToDomain()
	}
	return t
}

// FromDomain populates the persistence model from a domain SerialItemTransfer entity.
func (m *SerialItemTransferModel) FromDomain(t *transfer.SerialItemTransfer) {
	m.FromDomainOwnedAggregateRoot(t.OwnedAggregateRoot)
	m.TransferNumber = t.TransferNumber
	m.FromWarehouse = t.FromWarehouse
	m.ToWarehouse = t.ToWarehouse
	m.Status = t.Status
	m.Remarks = t.Remarks
	m.QCApproverID = t.QCApproverID
	m.QCApproverName = t.QCApproverName
	m.QCApprovedAt = t.QCApprovedAt
	m.QCNotes = t.QCNotes
	m.SAPDocNumber = t.SAPDocNumber
	m.SAPDocEntry = t.SAPDocEntry
	m.PostingError = t.PostingError
	m.CreatedByName = t.CreatedByName
	m.Items = make([]TransferItemModel, len(t.Items))
	for i, item := range t.Items {
		m.Items[i] = *TransferItemModelFromDomain(&item)
	}
}

// SerialItemTransferModelFromDomain creates a new persistence model from a
// domain SerialItemTransfer entity.
func SerialItemTransferModelFromDomain(t *transfer.SerialItemTransfer) *SerialItemTransferModel {
	m := &SerialItemTransferModel{}
	m.FromDomain(t)
	return m
}

// TransferItemModel is the persistence model for one transferred unit.
type TransferItemModel struct {
	ID               uuid.UUID                     `gorm:"type:uuid;primary_key"`
	TransferID       uuid.UUID                     `gorm:"type:uuid;not null;index"`
	ItemCode         string                        `gorm:"type:varchar(50);not null"`
	ItemDescription  string                        `gorm:"type:varchar(200)"`
	SerialNumber     string                        `gorm:"type:varchar(100);index"`
	Quantity         decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:1"`
	SerialManaged    bool                          `gorm:"not null;default:false"`
	ValidationStatus transfer.ItemValidationStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	ValidationError  string                        `gorm:"type:text"`
	QCStatus         transfer.ItemQCStatus         `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt        time.Time                     `gorm:"not null"`
	UpdatedAt        time.Time                     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransferItemModel) TableName() string {
	return "transfer_items"
}

// ToDomain converts the persistence model to a domain TransferItem entity.
func (m *TransferItemModel) ToDomain() *transfer.TransferItem {
	return &transfer.TransferItem{
		ID:               m.ID,
		TransferID:       m.TransferID,
		ItemCode:         m.ItemCode,
		ItemDescription:  m.ItemDescription,
		SerialNumber:     m.SerialNumber,
		Quantity:         m.Quantity,
		SerialManaged:    m.SerialManaged,
		ValidationStatus: m.ValidationStatus,
		ValidationError:  m.ValidationError,
		QCStatus:         m.QCStatus,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// TransferItemModelFromDomain creates a new persistence model from a domain
// TransferItem entity.
func TransferItemModelFromDomain(item *transfer.TransferItem) *TransferItemModel {
	return &TransferItemModel{
		ID:               item.ID,
		TransferID:       item.TransferID,
		ItemCode:         item.ItemCode,
		ItemDescription:  item.ItemDescription,
		SerialNumber:     item.SerialNumber,
		Quantity:         item.Quantity,
		SerialManaged:    item.SerialManaged,
		ValidationStatus: item.ValidationStatus,
		ValidationError:  item.ValidationError,
		QCStatus:         item.QCStatus,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}
