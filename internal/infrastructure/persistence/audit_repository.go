package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormAuditRepository implements audit.Repository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Save persists an audit entry. Saving the same event twice is a no-op;
// the bus may redeliver on handler errors.
func (r *GormAuditRepository) Save(ctx context.Context, entry *audit.Entry) error {
	model := models.AuditLogModelFromDomain(entry)
	result := r.db.WithContext(ctx).
		Where("event_id = ?", model.EventID).
		FirstOrCreate(model)
	return result.Error
}

// FindByAggregate lists entries for one aggregate, oldest first
func (r *GormAuditRepository) FindByAggregate(ctx context.Context, aggregateType string, aggregateID uuid.UUID) ([]audit.Entry, error) {
	var entryModels []models.AuditLogModel
	err := r.db.WithContext(ctx).
		Where("aggregate_type = ? AND aggregate_id = ?", aggregateType, aggregateID).
		Order("occurred_at ASC").
		Find(&entryModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// FindAll lists entries matching the filter, newest first by default
func (r *GormAuditRepository) FindAll(ctx context.Context, filter shared.Filter) ([]audit.Entry, int64, error) {
	var entryModels []models.AuditLogModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AuditLogModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndOrder(query, filter, AuditLogSortFields)
	if err := query.Find(&entryModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainEntries(entryModels), total, nil
}

func (r *GormAuditRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("event_type ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "event_type":
			query = query.Where("event_type = ?", value)
		case "aggregate_type":
			query = query.Where("aggregate_type = ?", value)
		case "aggregate_id":
			query = query.Where("aggregate_id = ?", value)
		case "actor_id":
			query = query.Where("actor_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("occurred_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("occurred_at <= ?", t)
			}
		}
	}

	return query
}

func toDomainEntries(entryModels []models.AuditLogModel) []audit.Entry {
	entries := make([]audit.Entry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries
}

// Ensure GormAuditRepository implements audit.Repository
var _ audit.Repository = (*GormAuditRepository)(nil)
