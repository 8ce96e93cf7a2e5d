package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/invoicing"
)

// SalesOrderInvoiceModel is the persistence model for the SalesOrderInvoice
// aggregate root.
type SalesOrderInvoiceModel struct {
	OwnedAggregateModel
	InvoiceNumber   string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	SONumber        int                     `gorm:"not null;default:0"`
	SOSeries        int                     `gorm:"not null;default:0"`
	SOEntry         int                     `gorm:"not null;index"`
	CardCode        string                  `gorm:"type:varchar(50);not null"`
	CardName        string                  `gorm:"type:varchar(200)"`
	Address         string                  `gorm:"type:text"`
	UserSign        int                     `gorm:"not null;default:0"`
	BusinessPlaceID int                     `gorm:"not null;default:0"`
	Status          invoicing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Comments        string                  `gorm:"type:text"`
	SAPDocNumber    string                  `gorm:"type:varchar(50)"`
	SAPDocEntry     int                     `gorm:"not null;default:0"`
	PostedAsDraft   bool                    `gorm:"not null;default:false"`
	PostingError    string                  `gorm:"type:text"`
	CreatedByName   string                  `gorm:"type:varchar(200)"`
	Lines           []InvoiceLineModel      `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesOrderInvoiceModel) TableName() string {
	return "so_invoice_documents"
}

// ToDomain converts the persistence model to a domain SalesOrderInvoice entity.
func (m *SalesOrderInvoiceModel) ToDomain() *invoicing.SalesOrderInvoice {
	inv := &invoicing.SalesOrderInvoice{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		InvoiceNumber:      m.InvoiceNumber,
		SONumber:           m.SONumber,
		SOSeries:           m.SOSeries,
		SOEntry:            m.SOEntry,
		CardCode:           m.CardCode,
		CardName:           m.CardName,
		Address:            m.Address,
		UserSign:           m.UserSign,
		BusinessPlaceID:    m.BusinessPlaceID,
		Status:             m.Status,
		Comments:           m.Comments,
		SAPDocNumber:       m.SAPDocNumber,
		SAPDocEntry:        m.SAPDocEntry,
		PostedAsDraft:      m.PostedAsDraft,
		PostingError:       m.PostingError,
		CreatedByName:      m.CreatedByName,
		Lines:              make([]invoicing.InvoiceLine, len(m.Lines)),
	}
	for i, line := range m.Lines {
		inv.Lines[i] = *line.ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain SalesOrderInvoice entity.
func (m *SalesOrderInvoiceModel) FromDomain(inv *invoicing.SalesOrderInvoice) {
	m.FromDomainOwnedAggregateRoot(inv.OwnedAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.SONumber = inv.SONumber
	m.SOSeries = inv.SOSeries
	m.SOEntry = inv.SOEntry
	m.CardCode = inv.CardCode
	m.CardName = inv.CardName
	m.Address = inv.Address
	m.UserSign = inv.UserSign
	m.BusinessPlaceID = inv.BusinessPlaceID
	m.Status = inv.Status
	m.Comments = inv.Comments
	m.SAPDocNumber = inv.SAPDocNumber
	m.SAPDocEntry = inv.SAPDocEntry
	m.PostedAsDraft = inv.PostedAsDraft
	m.PostingError = inv.PostingError
	m.CreatedByName = inv.CreatedByName
	m.Lines = make([]InvoiceLineModel, len(inv.Lines))
	for i, line := range inv.Lines {
		m.Lines[i] = *InvoiceLineModelFromDomain(&line)
	}
}

// SalesOrderInvoiceModelFromDomain creates a new persistence model from a
// domain SalesOrderInvoice entity.
func SalesOrderInvoiceModelFromDomain(inv *invoicing.SalesOrderInvoice) *SalesOrderInvoiceModel {
	m := &SalesOrderInvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceLineModel is the persistence model for one invoice line.
type InvoiceLineModel struct {
	ID                uuid.UUID            `gorm:"type:uuid;primary_key"`
	InvoiceID         uuid.UUID            `gorm:"type:uuid;not null;index"`
	BaseLineNumber    int                  `gorm:"not null;default:0"`
	ItemCode          string               `gorm:"type:varchar(50);not null"`
	ItemDescription   string               `gorm:"type:varchar(200)"`
	OrderedQuantity   decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	ValidatedQuantity decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	WarehouseCode     string               `gorm:"type:varchar(8)"`
	SerialManaged     bool                 `gorm:"not null;default:false"`
	Serials           []InvoiceSerialModel `gorm:"foreignKey:LineID;references:ID"`
	CreatedAt         time.Time            `gorm:"not null"`
	UpdatedAt         time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "so_invoice_lines"
}

// ToDomain converts the persistence model to a domain InvoiceLine entity.
func (m *InvoiceLineModel) ToDomain() *invoicing.InvoiceLine {
	line := &invoicing.InvoiceLine{
		ID:                m.ID,
		InvoiceID:         m.InvoiceID,
		BaseLineNumber:    m.BaseLineNumber,
		ItemCode:          m.ItemCode,
		ItemDescription:   m.ItemDescription,
		OrderedQuantity:   m.OrderedQuantity,
		ValidatedQuantity: m.ValidatedQuantity,
		WarehouseCode:     m.WarehouseCode,
		SerialManaged:     m.SerialManaged,
		Serials:           make([]invoicing.InvoiceSerial, len(m.Serials)),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	for i, s := range m.Serials {
		line.Serials[i] = invoicing.InvoiceSerial{
			ID:           s.ID,
			LineID:       s.LineID,
			SerialNumber: s.SerialNumber,
			CreatedAt:    s.CreatedAt,
		}
	}
	return line
}

// InvoiceLineModelFromDomain creates a new persistence model from a domain
// InvoiceLine entity.
func InvoiceLineModelFromDomain(line *invoicing.InvoiceLine) *InvoiceLineModel {
	m := &InvoiceLineModel{
		ID:                line.ID,
		InvoiceID:         line.InvoiceID,
		BaseLineNumber:    line.BaseLineNumber,
		ItemCode:          line.ItemCode,
		ItemDescription:   line.ItemDescription,
		OrderedQuantity:   line.OrderedQuantity,
		ValidatedQuantity: line.ValidatedQuantity,
		WarehouseCode:     line.WarehouseCode,
		SerialManaged:     line.SerialManaged,
		Serials:           make([]InvoiceSerialModel, len(line.Serials)),
		CreatedAt:         line.CreatedAt,
		UpdatedAt:         line.UpdatedAt,
	}
	for i, s := range line.Serials {
		m.Serials[i] = InvoiceSerialModel{
			ID:           s.ID,
			LineID:       s.LineID,
			SerialNumber: s.SerialNumber,
			CreatedAt:    s.CreatedAt,
		}
	}
	return m
}

// InvoiceSerialModel is the persistence model for one scanned serial.
type InvoiceSerialModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	LineID       uuid.UUID `gorm:"type:uuid;not null;index"`
	SerialNumber string    `gorm:"type:varchar(100);not null;index"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceSerialModel) TableName() string {
	return "so_invoice_serials"
}
