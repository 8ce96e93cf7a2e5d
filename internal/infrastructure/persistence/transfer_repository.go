package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/transfer"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormTransferRepository implements transfer.Repository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByID retrieves a transfer with its items
func (r *GormTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*transfer.SerialItemTransfer, error) {
	var model models.SerialItemTransferModel
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate retrieves a transfer with a row lock on the transfer row.
// Must run inside a transaction.
func (r *GormTransferRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*transfer.SerialItemTransfer, error) {
	var model models.SerialItemTransferModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("transfer_id = ?", id).
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber retrieves a transfer by its document number
func (r *GormTransferRepository) FindByNumber(ctx context.Context, transferNumber string) (*transfer.SerialItemTransfer, error) {
	var model models.SerialItemTransferModel
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "transfer_number = ?", transferNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll retrieves transfers matching the filter
func (r *GormTransferRepository) FindAll(ctx context.Context, filter shared.Filter) ([]transfer.SerialItemTransfer, int64, error) {
	var transferModels []models.SerialItemTransferModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.SerialItemTransferModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndOrder(query, filter, TransferSortFields)
	if err := query.Preload("Items").Find(&transferModels).Error; err != nil {
		return nil, 0, err
	}

	transfers := make([]transfer.SerialItemTransfer, len(transferModels))
	for i, model := range transferModels {
		transfers[i] = *model.ToDomain()
	}
	return transfers, total, nil
}

// Save persists a transfer and its items. Items removed from the aggregate
// are deleted.
func (r *GormTransferRepository) Save(ctx context.Context, t *transfer.SerialItemTransfer) error {
	model := models.SerialItemTransferModelFromDomain(t)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return err
		}

		itemIDs := make([]uuid.UUID, len(model.Items))
		for i, item := range model.Items {
			itemIDs[i] = item.ID
		}
		itemDelete := tx.Where("transfer_id = ?", model.ID)
		if len(itemIDs) > 0 {
			itemDelete = itemDelete.Where("id NOT IN ?", itemIDs)
		}
		if err := itemDelete.Delete(&models.TransferItemModel{}).Error; err != nil {
			return err
		}

		for i := range model.Items {
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a transfer with its items
func (r *GormTransferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transfer_id = ?", id).
			Delete(&models.TransferItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.SerialItemTransferModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// DeleteEmptyDraftsOlderThan removes abandoned drafts with no items
func (r *GormTransferRepository) DeleteEmptyDraftsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ?", shared.DocumentStatusDraft).
		Where("created_at < ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM transfer_items WHERE transfer_items.transfer_id = serial_item_transfers.id)").
		Delete(&models.SerialItemTransferModel{})
	return result.RowsAffected, result.Error
}

func (r *GormTransferRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("transfer_number ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "created_by":
			query = query.Where("created_by = ?", value)
		case "reviewer_id":
			query = query.Where("created_by = ? OR status = ?", value, shared.DocumentStatusSubmitted)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "from_warehouse":
			query = query.Where("from_warehouse = ?", value)
		case "to_warehouse":
			query = query.Where("to_warehouse = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormTransferRepository implements transfer.Repository
var _ transfer.Repository = (*GormTransferRepository)(nil)
