package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/picking"
	"github.com/wms/backend/internal/domain/shared"
)

// PickListModel is the persistence model for the PickList aggregate root.
type PickListModel struct {
	OwnedAggregateModel
	PickNumber     string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderEntry     int                   `gorm:"not null;index"`
	OrderNumber    int                   `gorm:"not null;default:0"`
	CardCode       string                `gorm:"type:varchar(50);not null"`
	CardName       string                `gorm:"type:varchar(200)"`
	WarehouseCode  string                `gorm:"type:varchar(8);not null;index"`
	Status         shared.DocumentStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Remarks        string                `gorm:"type:text"`
	QCApproverID   *uuid.UUID            `gorm:"type:uuid"`
	QCApproverName string                `gorm:"type:varchar(200)"`
	QCApprovedAt   *time.Time
	QCNotes          string              `gorm:"type:text"`
	SAPAbsoluteEntry int                 `gorm:"not null;default:0"`
	PostingError     string              `gorm:"type:text"`
	CreatedByName    string              `gorm:"type:varchar(200)"`
	Lines            []PickListLineModel `gorm:"foreignKey:PickListID;references:ID"`
}

// TableName returns the table name for GORM
func (PickListModel) TableName() string {
	return "pick_lists"
}

// ToDomain converts the persistence model to a domain PickList entity.
func (m *PickListModel) ToDomain() *picking.PickList {
	p := &picking.PickList{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		PickNumber:         m.PickNumber,
		OrderEntry:         m.OrderEntry,
		OrderNumber:        m.OrderNumber,
		CardCode:           m.CardCode,
		CardName:           m.CardName,
		WarehouseCode:      m.WarehouseCode,
		Status:             m.Status,
		Remarks:            m.Remarks,
		QCApproverID:       m.QCApproverID,
		QCApproverName:     m.QCApproverName,
		QCApprovedAt:       m.QCApprovedAt,
		QCNotes:            m.QCNotes,
		SAPAbsoluteEntry:   m.SAPAbsoluteEntry,
		PostingError:       m.PostingError,
		CreatedByName:      m.CreatedByName,
		Lines:              make([]picking.PickListLine, len(m.Lines)),
	}
	for i, line := range m.Lines {
		p.Lines[i] = *line.ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain PickList entity.
func (m *PickListModel) FromDomain(p *picking.PickList) {
	m.FromDomainOwnedAggregateRoot(p.OwnedAggregateRoot)
	m.PickNumber = p.PickNumber
	m.OrderEntry = p.OrderEntry
	m.OrderNumber = p.OrderNumber
	m.CardCode = p.CardCode
	m.CardName = p.CardName
	m.WarehouseCode = p.WarehouseCode
	m.Status = p.Status
	m.Remarks = p.Remarks
	m.QCApproverID = p.QCApproverID
	m.QCApproverName = p.QCApproverName
	m.QCApprovedAt = p.QCApprovedAt
	m.QCNotes = p.QCNotes
	m.SAPAbsoluteEntry = p.SAPAbsoluteEntry
	m.PostingError = p.PostingError
	m.CreatedByName = p.CreatedByName
	m.Lines = make([]PickListLineModel, len(p.Lines))
	for i, line := range p.Lines {
		m.Lines[i] = *PickListLineModelFromDomain(&line)
	}
}

// PickListModelFromDomain creates a new persistence model from a domain PickList entity.
func PickListModelFromDomain(p *picking.PickList) *PickListModel {
	m := &PickListModel{}
	m.FromDomain(p)
	return m
}

// PickListLineModel is the persistence model for one pick list line.
type PickListLineModel struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key"`
	PickListID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	OrderRowID      int                 `gorm:"not null;default:0"`
	ItemCode        string              `gorm:"type:varchar(50);not null"`
	ItemDescription string              `gorm:"type:varchar(200)"`
	OrderedQuantity decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	PickedQuantity  decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	WarehouseCode   string              `gorm:"type:varchar(8)"`
	SerialManaged   bool                `gorm:"not null;default:false"`
	Serials         []PickedSerialModel `gorm:"foreignKey:LineID;references:ID"`
	CreatedAt       time.Time           `gorm:"not null"`
	UpdatedAt       time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PickListLineModel) TableName() string {
	return "pick_list_lines"
}

// ToDomain converts the persistence model to a domain PickListLine entity.
func (m *PickListLineModel) ToDomain() *picking.PickListLine {
	line := &picking.PickListLine{
		ID:              m.ID,
		PickListID:      m.PickListID,
		OrderRowID:      m.OrderRowID,
		ItemCode:        m.ItemCode,
		ItemDescription: m.ItemDescription,
		OrderedQuantity: m.OrderedQuantity,
		PickedQuantity:  m.PickedQuantity,
		WarehouseCode:   m.WarehouseCode,
		SerialManaged:   m.SerialManaged,
		Serials:         make([]picking.PickedSerial, len(m.Serials)),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	for i, s := range m.Serials {
		line.Serials[i] = picking.PickedSerial{
			ID:           s.ID,
			LineID:       s.LineID,
			SerialNumber: s.SerialNumber,
			SystemNumber: s.SystemNumber,
			CreatedAt:    s.CreatedAt,
		}
	}
	return line
}

// PickListLineModelFromDomain creates a new persistence model from a domain
// PickListLine entity.
func PickListLineModelFromDomain(line *picking.PickListLine) *PickListLineModel {
	m := &PickListLineModel{
		ID:              line.ID,
		PickListID:      line.PickListID,
		OrderRowID:      line.OrderRowID,
		ItemCode:        line.ItemCode,
		ItemDescription: line.ItemDescription,
		OrderedQuantity: line.OrderedQuantity,
		PickedQuantity:  line.PickedQuantity,
		WarehouseCode:   line.WarehouseCode,
		SerialManaged:   line.SerialManaged,
		Serials:         make([]PickedSerialModel, len(line.Serials)),
		CreatedAt:       line.CreatedAt,
		UpdatedAt:       line.UpdatedAt,
	}
	for i, s := range line.Serials {
		m.Serials[i] = PickedSerialModel{
			ID:           s.ID,
			LineID:       s.LineID,
			SerialNumber: s.SerialNumber,
			SystemNumber: s.SystemNumber,
			CreatedAt:    s.CreatedAt,
		}
	}
	return m
}

// PickedSerialModel is the persistence model for one picked serial number.
type PickedSerialModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	LineID       uuid.UUID `gorm:"type:uuid;not null;index"`
	SerialNumber string    `gorm:"type:varchar(100);not null;index"`
	SystemNumber int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PickedSerialModel) TableName() string {
	return "pick_list_serials"
}
