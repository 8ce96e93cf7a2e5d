package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wms/backend/internal/domain/receiving"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormGRPORepository implements receiving.GRPORepository using GORM
type GormGRPORepository struct {
	db *gorm.DB
}

// NewGormGRPORepository creates a new GormGRPORepository
func NewGormGRPORepository(db *gorm.DB) *GormGRPORepository {
	return &GormGRPORepository{db: db}
}

// FindByID retrieves a receipt with its items and serials
func (r *GormGRPORepository) FindByID(ctx context.Context, id uuid.UUID) (*receiving.GRPODocument, error) {
	var model models.GRPODocumentModel
	err := r.db.WithContext(ctx).
		Preload("Items.Serials").
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

// FindByIDForUpdate retrieves a receipt with a row lock on the document row.
// Must run inside a transaction.
func (r *GormGRPORepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*receiving.GRPODocument, error) {
	var model models.GRPODocumentModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	// Children are loaded after the lock is taken. The row lock on the
	// document serializes writers, so the read is consistent.
	if err := r.db.WithContext(ctx).
		Preload("Serials").
		Where("grpo_id = ?", id).
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber retrieves a receipt by its document number
func (r *GormGRPORepository) FindByNumber(ctx context.Context, documentNumber string) (*receiving.GRPODocument, error) {
	var model models.GRPODocumentModel
	err := r.db.WithContext(ctx).
		Preload("Items.Serials").
		Preload("Items").
		First(&model, "document_number = ?", documentNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll retrieves receipts matching the filter
func (r *GormGRPORepository) FindAll(ctx context.Context, filter shared.Filter) ([]receiving.GRPODocument, int64, error) {
	var docModels []models.GRPODocumentModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.GRPODocumentModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndOrder(query, filter, GRPOSortFields)
	if err := query.Preload("Items.Serials").Preload("Items").Find(&docModels).Error; err != nil {
		return nil, 0, err
	}

	docs := make([]receiving.GRPODocument, len(docModels))
	for i, model := range docModels {
		docs[i] = *model.ToDomain()
	}
	return docs, total, nil
}

// Save persists a receipt and its items. Items and serials removed from the
// aggregate are deleted.
func (r *GormGRPORepository) Save(ctx context.Context, doc *receiving.GRPODocument) error {
	model := models.GRPODocumentModelFromDomain(doc)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return err
		}

		itemIDs := make([]uuid.UUID, len(model.Items))
		for i, item := range model.Items {
			itemIDs[i] = item.ID
		}

		// Remove serials of items no longer on the document, then the items
		orphanItems := tx.Model(&models.GRPOItemModel{}).
			Select("id").Where("grpo_id = ?", model.ID)
		if len(itemIDs) > 0 {
			orphanItems = orphanItems.Where("id NOT IN ?", itemIDs)
		}
		if err := tx.Where("grpo_item_id IN (?)", orphanItems).
			Delete(&models.GRPOItemSerialModel{}).Error; err != nil {
			return err
		}
		itemDelete := tx.Where("grpo_id = ?", model.ID)
		if len(itemIDs) > 0 {
			itemDelete = itemDelete.Where("id NOT IN ?", itemIDs)
		}
		if err := itemDelete.Delete(&models.GRPOItemModel{}).Error; err != nil {
			return err
		}

		for i := range model.Items {
			item := &model.Items[i]
			if err := tx.Omit("Serials").Save(item).Error; err != nil {
				return err
			}

			serialIDs := make([]uuid.UUID, len(item.Serials))
			for j, s := range item.Serials {
				serialIDs[j] = s.ID
			}
			serialDelete := tx.Where("grpo_item_id = ?", item.ID)
			if len(serialIDs) > 0 {
				serialDelete = serialDelete.Where("id NOT IN ?", serialIDs)
			}
			if err := serialDelete.Delete(&models.GRPOItemSerialModel{}).Error; err != nil {
				return err
			}
			for j := range item.Serials {
				if err := tx.Save(&item.Serials[j]).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// Delete removes a draft receipt with its items and serials
func (r *GormGRPORepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		itemIDs := tx.Model(&models.GRPOItemModel{}).
			Select("id").Where("grpo_id = ?", id)
		if err := tx.Where("grpo_item_id IN (?)", itemIDs).
			Delete(&models.GRPOItemSerialModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("grpo_id = ?", id).
			Delete(&models.GRPOItemModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("grpo_id = ?", id).
			Delete(&models.GRPOAttachmentModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.GRPODocumentModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormGRPORepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("document_number ILIKE ? OR po_number ILIKE ? OR card_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
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
		case "warehouse_code":
			query = query.Where("warehouse_code = ?", value)
		case "card_code":
			query = query.Where("card_code = ?", value)
		case "po_number":
			query = query.Where("po_number = ?", value)
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

// Ensure GormGRPORepository implements GRPORepository
var _ receiving.GRPORepository = (*GormGRPORepository)(nil)
