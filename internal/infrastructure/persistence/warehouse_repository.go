package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/warehouse"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormWarehouseRepository implements warehouse.Repository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID retrieves a warehouse by ID
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*warehouse.Warehouse, error) {
	var model models.WarehouseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode retrieves a warehouse by its SAP code
func (r *GormWarehouseRepository) FindByCode(ctx context.Context, code string) (*warehouse.Warehouse, error) {
	var model models.WarehouseModel
	code = strings.TrimSpace(code)
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll retrieves warehouses matching the filter
func (r *GormWarehouseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]warehouse.Warehouse, int64, error) {
	var warehouseModels []models.WarehouseModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.WarehouseModel{})

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", active)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndOrder(query, filter, WarehouseSortFields)
	if err := query.Find(&warehouseModels).Error; err != nil {
		return nil, 0, err
	}

	warehouses := make([]warehouse.Warehouse, len(warehouseModels))
	for i, model := range warehouseModels {
		warehouses[i] = *model.ToDomain()
	}
	return warehouses, total, nil
}

// Save persists a warehouse (insert or update)
func (r *GormWarehouseRepository) Save(ctx context.Context, w *warehouse.Warehouse) error {
	model := models.WarehouseModelFromDomain(w)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a warehouse by ID
func (r *GormWarehouseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.WarehouseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByCode checks whether a warehouse code is taken
func (r *GormWarehouseRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	code = strings.TrimSpace(code)
	err := r.db.WithContext(ctx).Model(&models.WarehouseModel{}).
		Where("code = ?", code).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormWarehouseRepository implements warehouse.Repository
var _ warehouse.Repository = (*GormWarehouseRepository)(nil)
