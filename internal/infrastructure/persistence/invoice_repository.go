package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wms/backend/internal/domain/invoicing"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormInvoiceRepository implements invoicing.Repository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID retrieves an invoice with its lines and serials
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.SalesOrderInvoice, error) {
	var model models.SalesOrderInvoiceModel
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

// FindByIDForUpdate retrieves an invoice with a row lock on the invoice row.
// Must run inside a transaction.
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*invoicing.SalesOrderInvoice, error) {
	var model models.SalesOrderInvoiceModel
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
		Where("invoice_id = ?", id).
		Find(&model.Lines).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber retrieves an invoice by its document number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*invoicing.SalesOrderInvoice, error) {
	var model models.SalesOrderInvoiceModel
	err := r.db.WithContext(ctx).
		Preload("Lines.Serials").
		Preload("Lines").
		First(&model, "invoice_number = ?", invoiceNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySOEntry lists invoices drafted against a sales order, newest first
func (r *GormInvoiceRepository) FindBySOEntry(ctx context.Context, soEntry int) ([]invoicing.SalesOrderInvoice, error) {
	var invoiceModels []models.SalesOrderInvoiceModel
	err := r.db.WithContext(ctx).
		Preload("Lines.Serials").
		Preload("Lines").
		Where("so_entry = ?", soEntry).
		Order("created_at DESC").
		Find(&invoiceModels).Error
	if err != nil {
		return nil, err
	}

	invoices := make([]invoicing.SalesOrderInvoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// FindAll retrieves invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoicing.SalesOrderInvoice, int64, error) {
	var invoiceModels []models.SalesOrderInvoiceModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.SalesOrderInvoiceModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndOrder(query, filter, InvoiceSortFields)
	if err := query.Preload("Lines.Serials").Preload("Lines").Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]invoicing.SalesOrderInvoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, total, nil
}

// Save persists an invoice and its lines. Lines and serials removed from
// the aggregate are deleted.
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoicing.SalesOrderInvoice) error {
	model := models.SalesOrderInvoiceModelFromDomain(inv)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(model).Error; err != nil {
			return err
		}

		lineIDs := make([]uuid.UUID, len(model.Lines))
		for i, line := range model.Lines {
			lineIDs[i] = line.ID
		}

		orphanLines := tx.Model(&models.InvoiceLineModel{}).
			Select("id").Where("invoice_id = ?", model.ID)
		if len(lineIDs) > 0 {
			orphanLines = orphanLines.Where("id NOT IN ?", lineIDs)
		}
		if err := tx.Where("line_id IN (?)", orphanLines).
			Delete(&models.InvoiceSerialModel{}).Error; err != nil {
			return err
		}
		lineDelete := tx.Where("invoice_id = ?", model.ID)
		if len(lineIDs) > 0 {
			lineDelete = lineDelete.Where("id NOT IN ?", lineIDs)
		}
		if err := lineDelete.Delete(&models.InvoiceLineModel{}).Error; err != nil {
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
			if err := serialDelete.Delete(&models.InvoiceSerialModel{}).Error; err != nil {
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

// Delete removes an invoice with its lines and serials
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lineIDs := tx.Model(&models.InvoiceLineModel{}).
			Select("id").Where("invoice_id = ?", id)
		if err := tx.Where("line_id IN (?)", lineIDs).
			Delete(&models.InvoiceSerialModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).
			Delete(&models.InvoiceLineModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.SalesOrderInvoiceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR card_name ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "created_by":
			query = query.Where("created_by = ?", value)
		case "reviewer_id":
			// Invoices have no QC review stage, reviewers keep creator scope
			query = query.Where("created_by = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "so_entry":
			query = query.Where("so_entry = ?", value)
		case "card_code":
			query = query.Where("card_code = ?", value)
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

// Ensure GormInvoiceRepository implements invoicing.Repository
var _ invoicing.Repository = (*GormInvoiceRepository)(nil)
