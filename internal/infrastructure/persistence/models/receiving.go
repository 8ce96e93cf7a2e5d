package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/receiving"
	"github.com/wms/backend/internal/domain/shared"
)

// GRPODocumentModel is the persistence model for the GRPODocument aggregate root.
type GRPODocumentModel struct {
	OwnedAggregateModel
	DocumentNumber string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	PONumber       string                `gorm:"type:varchar(50);not null;index"`
	POEntry        int                   `gorm:"not null;default:0"`
	CardCode       string                `gorm:"type:varchar(50);not null"`
	CardName       string                `gorm:"type:varchar(200)"`
	WarehouseCode  string                `gorm:"type:varchar(8);not null;index"`
	Status         shared.DocumentStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Remarks        string                `gorm:"type:text"`
	QCApproverID   *uuid.UUID            `gorm:"type:uuid"`
	QCApproverName string                `gorm:"type:varchar(200)"`
	QCApprovedAt   *time.Time
	QCNotes        string          `gorm:"type:text"`
	SAPDocNumber   string          `gorm:"type:varchar(50)"`
	SAPDocEntry    int             `gorm:"not null;default:0"`
	PostingError   string          `gorm:"type:text"`
	CreatedByName  string          `gorm:"type:varchar(200)"`
	Items          []GRPOItemModel `gorm:"foreignKey:GRPOID;references:ID"`
}

// TableName returns the table name for GORM
func (GRPODocumentModel) TableName() string {
	return "grpo_documents"
}

// ToDomain converts the persistence model to a domain GRPODocument entity.
func (m *GRPODocumentModel) ToDomain() *receiving.GRPODocument {
	doc := &receiving.GRPODocument{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		DocumentNumber:     m.DocumentNumber,
		PONumber:           m.PONumber,
		POEntry:            m.POEntry,
		CardCode:           m.CardCode,
		CardName:           m.CardName,
		WarehouseCode:      m.WarehouseCode,
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
		Items:              make([]receiving.GRPOItem, len(m.Items)),
	}
	for i, item := range m.Items {
		doc.Items[i] = *item.ToDomain()
	}
	return doc
}

// FromDomain populates the persistence model from a domain GRPODocument entity.
func (m *GRPODocumentModel) FromDomain(doc *receiving.GRPODocument) {
	m.FromDomainOwnedAggregateRoot(doc.OwnedAggregateRoot)
	m.DocumentNumber = doc.DocumentNumber
	m.PONumber = doc.PONumber
	m.POEntry = doc.POEntry
	m.CardCode = doc.CardCode
	m.CardName = doc.CardName
	m.WarehouseCode = doc.WarehouseCode
	m.Status = doc.Status
	m.Remarks = doc.Remarks
	m.QCApproverID = doc.QCApproverID
	m.QCApproverName = doc.QCApproverName
	m.QCApprovedAt = doc.QCApprovedAt
	m.QCNotes = doc.QCNotes
	m.SAPDocNumber = doc.SAPDocNumber
	m.SAPDocEntry = doc.SAPDocEntry
	m.PostingError = doc.PostingError
	m.CreatedByName = doc.CreatedByName
	m.Items = make([]GRPOItemModel, len(doc.Items))
	for i, item := range doc.Items {
		m.Items[i] = *GRPOItemModelFromDomain(&item)
	}
}

// GRPODocumentModelFromDomain creates a new persistence model from a domain GRPODocument entity.
func GRPODocumentModelFromDomain(doc *receiving.GRPODocument) *GRPODocumentModel {
	m := &GRPODocumentModel{}
	m.FromDomain(doc)
	return m
}

// GRPOItemModel is the persistence model for a receipt line.
type GRPOItemModel struct {
	ID               uuid.UUID             `gorm:"type:uuid;primary_key"`
	GRPOID           uuid.UUID             `gorm:"type:uuid;not null;index"`
	ItemCode         string                `gorm:"type:varchar(50);not null"`
	ItemDescription  string                `gorm:"type:varchar(200)"`
	UnitOfMeasure    string                `gorm:"type:varchar(20)"`
	POLineNumber     int                   `gorm:"not null;default:0"`
	OrderedQuantity  decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	ReceivedQuantity decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	BinLocation      string                `gorm:"type:varchar(50)"`
	SerialManaged    bool                  `gorm:"not null;default:false"`
	BatchManaged     bool                  `gorm:"not null;default:false"`
	BatchNumber      string                `gorm:"type:varchar(50)"`
	Serials          []GRPOItemSerialModel `gorm:"foreignKey:GRPOItemID;references:ID"`
	CreatedAt        time.Time             `gorm:"not null"`
	UpdatedAt        time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GRPOItemModel) TableName() string {
	return "grpo_items"
}

// ToDomain converts the persistence model to a domain GRPOItem entity.
func (m *GRPOItemModel) ToDomain() *receiving.GRPOItem {
	item := &receiving.GRPOItem{
		ID:               m.ID,
		GRPOID:           m.GRPOID,
		ItemCode:         m.ItemCode,
		ItemDescription:  m.ItemDescription,
		UnitOfMeasure:    m.UnitOfMeasure,
		POLineNumber:     m.POLineNumber,
		OrderedQuantity:  m.OrderedQuantity,
		ReceivedQuantity: m.ReceivedQuantity,
		BinLocation:      m.BinLocation,
		SerialManaged:    m.SerialManaged,
		BatchManaged:     m.BatchManaged,
		BatchNumber:      m.BatchNumber,
		Serials:          make([]receiving.GRPOItemSerial, len(m.Serials)),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	for i, s := range m.Serials {
		item.Serials[i] = receiving.GRPOItemSerial{
			ID:                 s.ID,
			GRPOItemID:         s.GRPOItemID,
			SerialNumber:       s.SerialNumber,
			ManufacturerSerial: s.ManufacturerSerial,
			CreatedAt:          s.CreatedAt,
		}
	}
	return item
}

// GRPOItemModelFromDomain creates a new persistence model from a domain GRPOItem entity.
func GRPOItemModelFromDomain(item *receiving.GRPOItem) *GRPOItemModel {
	m := &GRPOItemModel{
		ID:               item.ID,
		GRPOID:           item.GRPOID,
		ItemCode:         item.ItemCode,
		ItemDescription:  item.ItemDescription,
		UnitOfMeasure:    item.UnitOfMeasure,
		POLineNumber:     item.POLineNumber,
		OrderedQuantity:  item.OrderedQuantity,
		ReceivedQuantity: item.ReceivedQuantity,
		BinLocation:      item.BinLocation,
		SerialManaged:    item.SerialManaged,
		BatchManaged:     item.BatchManaged,
		BatchNumber:      item.BatchNumber,
		Serials:          make([]GRPOItemSerialModel, len(item.Serials)),
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
	for i, s := range item.Serials {
		m.Serials[i] = GRPOItemSerialModel{
			ID:                 s.ID,
			GRPOItemID:         s.GRPOItemID,
			SerialNumber:       s.SerialNumber,
			ManufacturerSerial: s.ManufacturerSerial,
			CreatedAt:          s.CreatedAt,
		}
	}
	return m
}

// GRPOItemSerialModel is the persistence model for one serialized unit
// received on a line.
type GRPOItemSerialModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key"`
	GRPOItemID         uuid.UUID `gorm:"type:uuid;not null;index"`
	SerialNumber       string    `gorm:"type:varchar(100);not null;index"`
	ManufacturerSerial string    `gorm:"type:varchar(100)"`
	CreatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GRPOItemSerialModel) TableName() string {
	return "grpo_item_serials"
}

// GRPOAttachmentModel is the persistence model for a delivery note attachment.
type GRPOAttachmentModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	GRPOID      uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName    string    `gorm:"type:varchar(255);not null"`
	ContentType string    `gorm:"type:varchar(100);not null"`
	SizeBytes   int64     `gorm:"not null"`
	StorageKey  string    `gorm:"type:varchar(500);not null"`
	UploadedBy  uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GRPOAttachmentModel) TableName() string {
	return "grpo_attachments"
}

// ToDomain converts the persistence model to a domain Attachment entity.
func (m *GRPOAttachmentModel) ToDomain() *receiving.Attachment {
	return &receiving.Attachment{
		ID:          m.ID,
		GRPOID:      m.GRPOID,
		FileName:    m.FileName,
		ContentType: m.ContentType,
		SizeBytes:   m.SizeBytes,
		StorageKey:  m.StorageKey,
		UploadedBy:  m.UploadedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// GRPOAttachmentModelFromDomain creates a new persistence model from a domain Attachment entity.
func GRPOAttachmentModelFromDomain(a *receiving.Attachment) *GRPOAttachmentModel {
	return &GRPOAttachmentModel{
		ID:          a.ID,
		GRPOID:      a.GRPOID,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		StorageKey:  a.StorageKey,
		UploadedBy:  a.UploadedBy,
		CreatedAt:   a.CreatedAt,
	}
}
