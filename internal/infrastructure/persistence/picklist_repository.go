package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wms/backend/internal/domain/picking"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormPickListRepository implements picking.Repository using GORM
type GormPickListRepository struct {
	db *gorm.DB
}

// NewGormPickListRepository creates a new GormPickListRepository
func NewGormPickListRepository(db *gorm.DB) *GormPickListRepository {
	return &GormPickListRepository{db: db}
}

// FindByID retrieves a pick list with its lines and serials
func (r *GormPickListRepository) FindByID(ctx context.Context, id uuid.UUID) (*picking.PickList, error) {
	var model models.PickListModel
	err := r.db.WithContext(ctx).
		Preload("Lines.Serials").
		Preload("Lines").
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate retrieves a pick list with a row lock on the pick list
// row. Must run inside a transaction.
func (r *GormPickListRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*picking.PickList, error) {
	var model models.PickListModel
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
		Preload("Serials").
		Where("pick_list_id = ?", id).
		Find(&model.Lines).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber retrieves a pick list by its document number
func (r *GormPickListRepository) FindByNumber(ctx context.Context, pickNumber string) (*picking.PickList, error) {
	var model models.PickListModel
	err := r.db.WithContext(ctx).
		Preload("Lines.Serials").
		Preload("Lines").
		First(&model, "pick_number = ?", pickNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderEntry lists pick lists built against a sales order, newest first
func (r *GormPickListRepository) FindByOrderEntry(ctx context.Context, orderEntry int) ([]picking.PickList, error) {
	var pickModels []models.PickListModel
	err := r.db.WithContext(ctx).
		Preload("Lines.Serials").
		Preload("Lines").
		Where("order_entry = ?", orderEntry).
		Order("created_at DESC").
		Find(&pickModels).Error
	if err != nil {
		return nil, err
	}

	pickLists := make([]picking.PickList, len(pickModels))
	for i, model := range pickModels {
		pickLists[i] = *model.ToDomain()
	}
	return pickLists, nil
}

// FindAll retrieves pick lists matching the filter
func (r *GormPickListRepository) FindAll(ctx context.Context, filter shared.Filter) ([]picking.PickList, int64, error) {
	var pickModels []models.PickListModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.PickListModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndOrder(query, filter, PickListSortFields)
	if err := query.Preload("Lines.Serials").Preload("Lines").Find(&pickModels).Error; err != nil {
		return nil, 0, err
	}

	pickLists := make([]picking.PickList, len(pickModels))
	for i, model := range pickModels {
		pickLists[i] = *model.ToDomain()
	}
	return pickLists, total, nil
}

// Save persists a pick list and its lines. Lines and serials removed from
// the aggregate are deleted.
func (r *GormPickListRepository) Save(ctx context.Context, p *picking.PickList) error {
	model := models.PickListModelFromDomain(p)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(model).Error; err != nil {
			return err
		}

		lineIDs := make([]uuid.UUID, len(model.Lines))
		for i, line := range model.Lines {
			lineIDs[i] = line.ID
		}

		orphanLines := tx.Model(&models.PickListLineModel{}).
			Select("id").Where("pick_list_id = ?", model.ID)
		if len(lineIDs) > 0 {
			orphanLines = orphanLines.Where("id NOT IN ?", lineIDs)
		}
		if err := tx.Where("line_id IN (?)", orphanLines).
			Delete(&models.PickedSerialModel{}).Error; err != nil {
			return err
		}
		lineDelete := tx.Where("pick_list_id = ?", model.ID)
		if len(lineIDs) > 0 {
			lineDelete = lineDelete.Where("id NOT IN ?", lineIDs)
		}
		if err := lineDelete.Delete(&models.PickListLineModel{}).Error; err != nil {
			return err
		}

		for i := range model.Lines {
			line := &model.Lines[i]
			if err := tx.Omit("Serials").Save(line).Error; err != nil {
				return err
			}

			serialIDs := make([]uuid.UUID, len(line.Serials))
			for j, s := range line.Serials {
				serialIDs[j] = s.ID
			}
			serialDelete := tx.Where("line_id = ?", line.ID)
			if len(serialIDs) > 0 {
				serialDelete = serialDelete.Where("id NOT IN ?", serialIDs)
			}
			if err := serialDelete.Delete(&models.PickedSerialModel{}).Error; err != nil {
				return err
			}
			for j := range line.Serials {
				if err := tx.Save(&line.Serials[j]).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// Delete removes a pick list with its lines and serials
func (r *GormPickListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lineIDs := tx.Model(&models.PickListLineModel{}).
			Select("id").Where("pick_list_id = ?", id)
		if err := tx.Where("line_id IN (?)", lineIDs).
			Delete(&models.PickedSerialModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("pick_list_id = ?", id).
			Delete(&models.PickListLineModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.PickListModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormPickListRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("pick_number ILIKE ? OR card_name ILIKE ?",
			searchPattern, searchPattern)
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
		case "order_entry":
			query = query.Where("order_entry = ?", value)
		case "card_code":
			query = query.Where("card_code = ?", value)
		case "warehouse_code":
			query = query.Where("warehouse_code = ?", value)
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

// Ensure GormPickListRepository implements picking.Repository
var _ picking.Repository = (*GormPickListRepository)(nil)
