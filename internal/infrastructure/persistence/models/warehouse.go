package models

import (
	"github.com/wms/backend/internal/domain/warehouse"
)

// WarehouseModel is the persistence model for the Warehouse aggregate root.
type WarehouseModel struct {
	AggregateModel
	Code            string `gorm:"type:varchar(8);not null;uniqueIndex"`
	Name            string `gorm:"type:varchar(200);not null"`
	BusinessPlaceID int    `gorm:"not null;default:0"`
	Active          bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (WarehouseModel) TableName() string {
	return "warehouses"
}

// ToDomain converts the persistence model to a domain Warehouse entity.
func (m *WarehouseModel) ToDomain() *warehouse.Warehouse {
	return &warehouse.Warehouse{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		BusinessPlaceID:   m.BusinessPlaceID,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Warehouse entity.
func (m *WarehouseModel) FromDomain(w *warehouse.Warehouse) {
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	m.Code = w.Code
	m.Name = w.Name
	m.BusinessPlaceID = w.BusinessPlaceID
	m.Active = w.Active
}

// WarehouseModelFromDomain creates a new persistence model from a domain Warehouse entity.
func WarehouseModelFromDomain(w *warehouse.Warehouse) *WarehouseModel {
	m := &WarehouseModel{}
	m.FromDomain(w)
	return m
}
