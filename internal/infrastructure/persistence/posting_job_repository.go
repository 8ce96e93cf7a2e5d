package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormPostingJobRepository implements sap.PostingJobRepository using GORM
type GormPostingJobRepository struct {
	db *gorm.DB
}

// NewGormPostingJobRepository creates a new GormPostingJobRepository
func NewGormPostingJobRepository(db *gorm.DB) *GormPostingJobRepository {
	return &GormPostingJobRepository{db: db}
}

// Save persists a new posting job
func (r *GormPostingJobRepository) Save(ctx context.Context, job *sap.PostingJob) error {
	model := models.PostingJobModelFromDomain(job)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID retrieves a single job by ID
func (r *GormPostingJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*sap.PostingJob, error) {
	var model models.PostingJobModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindDue retrieves pending jobs plus retrying jobs whose next_retry_at has
// passed, oldest first, up to the specified limit
func (r *GormPostingJobRepository) FindDue(ctx context.Context, before time.Time, limit int) ([]*sap.PostingJob, error) {
	var jobModels []models.PostingJobModel
	err := r.db.WithContext(ctx).
		Where("status = ?", sap.JobStatusPending).
		Or("status = ? AND next_retry_at <= ?", sap.JobStatusRetrying, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainJobs(jobModels), nil
}

// MarkProcessing atomically claims the given jobs for a worker and returns
// the claimed set. Rows locked by another worker are skipped rather than
// waited on, so competing workers never process the same job.
func (r *GormPostingJobRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*sap.PostingJob, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var claimed []models.PostingJobModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("id IN ?", ids).
			Where("status IN ?", []sap.JobStatus{sap.JobStatusPending, sap.JobStatusRetrying}).
			Find(&claimed).Error; err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}

		now := time.Now()
		claimedIDs := make([]uuid.UUID, len(claimed))
		for i := range claimed {
			claimedIDs[i] = claimed[i].ID
			claimed[i].Status = sap.JobStatusProcessing
			claimed[i].StartedAt = &now
			claimed[i].UpdatedAt = now
		}
		return tx.Model(&models.PostingJobModel{}).
			Where("id IN ?", claimedIDs).
			Updates(map[string]interface{}{
				"status":     sap.JobStatusProcessing,
				"started_at": now,
				"updated_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return toDomainJobs(claimed), nil
}

// Update updates an existing job
func (r *GormPostingJobRepository) Update(ctx context.Context, job *sap.PostingJob) error {
	model := models.PostingJobModelFromDomain(job)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindActiveByDocument returns the active job for a document, if any
func (r *GormPostingJobRepository) FindActiveByDocument(ctx context.Context, documentID uuid.UUID) (*sap.PostingJob, error) {
	var model models.PostingJobModel
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Where("status IN ?", []sap.JobStatus{sap.JobStatusPending, sap.JobStatusProcessing, sap.JobStatusRetrying}).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDocument lists all jobs ever enqueued for a document, newest first
func (r *GormPostingJobRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]*sap.PostingJob, error) {
	var jobModels []models.PostingJobModel
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at DESC").
		Find(&jobModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainJobs(jobModels), nil
}

// FindAll lists jobs with pagination and optional status/type filters
func (r *GormPostingJobRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*sap.PostingJob, int64, error) {
	var jobModels []models.PostingJobModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.PostingJobModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndOrder(query, filter, PostingJobSortFields)
	if err := query.Find(&jobModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainJobs(jobModels), total, nil
}

// CountByStatus returns the number of jobs per status
func (r *GormPostingJobRepository) CountByStatus(ctx context.Context) (map[sap.JobStatus]int64, error) {
	var rows []struct {
		Status sap.JobStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.PostingJobModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[sap.JobStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// DeleteCompletedOlderThan removes completed jobs older than the given time
func (r *GormPostingJobRepository) DeleteCompletedOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ?", sap.JobStatusCompleted).
		Where("completed_at < ?", before).
		Delete(&models.PostingJobModel{})
	return result.RowsAffected, result.Error
}

// RequeueStaleProcessing returns jobs stuck in processing since before the
// given time to retrying status. Recovers jobs orphaned by a worker crash.
func (r *GormPostingJobRepository) RequeueStaleProcessing(ctx context.Context, before time.Time) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.PostingJobModel{}).
		Where("status = ?", sap.JobStatusProcessing).
		Where("started_at < ?", before).
		Updates(map[string]interface{}{
			"status":        sap.JobStatusRetrying,
			"next_retry_at": now,
			"updated_at":    now,
		})
	return result.RowsAffected, result.Error
}

func (r *GormPostingJobRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("document_number ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "job_type":
			query = query.Where("job_type = ?", value)
		case "document_type":
			query = query.Where("document_type = ?", value)
		case "document_id":
			query = query.Where("document_id = ?", value)
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

func toDomainJobs(jobModels []models.PostingJobModel) []*sap.PostingJob {
	jobs := make([]*sap.PostingJob, len(jobModels))
	for i := range jobModels {
		jobs[i] = jobModels[i].ToDomain()
	}
	return jobs
}

// Ensure GormPostingJobRepository implements PostingJobRepository
var _ sap.PostingJobRepository = (*GormPostingJobRepository)(nil)
