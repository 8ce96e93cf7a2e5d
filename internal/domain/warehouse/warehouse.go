// Package warehouse contains warehouse master data. Warehouse codes mirror
// the SAP B1 warehouse table and carry the business place ID stamped on
// posted documents.
package warehouse

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// Warehouse represents a physical warehouse known to SAP
type Warehouse struct {
	shared.BaseAggregateRoot
	Code            string
	Name            string
	BusinessPlaceID int // BPLID used on Service Layer payloads
	Active          bool
}

// NewWarehouse creates a new active warehouse
func NewWarehouse(code, name string, businessPlaceID int) (*Warehouse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE_CODE", "Warehouse code cannot be empty")
	}
	if len(code) > 8 {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE_CODE", "Warehouse code cannot exceed 8 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE_NAME", "Warehouse name cannot be empty")
	}
	if businessPlaceID < 0 {
		return nil, shared.NewDomainError("INVALID_BUSINESS_PLACE", "Business place ID cannot be negative")
	}

	return &Warehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              strings.TrimSpace(name),
		BusinessPlaceID:   businessPlaceID,
		Active:            true,
	}, nil
}

// Update changes the warehouse name and business place
func (w *Warehouse) Update(name string, businessPlaceID int) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_WAREHOUSE_NAME", "Warehouse name cannot be empty")
	}
	if businessPlaceID < 0 {
		return shared.NewDomainError("INVALID_BUSINESS_PLACE", "Business place ID cannot be negative")
	}
	w.Name = strings.TrimSpace(name)
	w.BusinessPlaceID = businessPlaceID
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

// Activate re-enables the warehouse for new documents
func (w *Warehouse) Activate() {
	w.Active = true
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

// Deactivate blocks the warehouse from new documents
func (w *Warehouse) Deactivate() {
	w.Active = false
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

// Repository defines the interface for warehouse persistence
type Repository interface {
	// FindByID retrieves a warehouse by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	// FindByCode retrieves a warehouse by its SAP code
	FindByCode(ctx context.Context, code string) (*Warehouse, error)
	// FindAll retrieves warehouses matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Warehouse, int64, error)
	// Save persists a warehouse (insert or update)
	Save(ctx context.Context, warehouse *Warehouse) error
	// Delete removes a warehouse by ID
	Delete(ctx context.Context, id uuid.UUID) error
	// ExistsByCode checks whether a warehouse code is taken
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
