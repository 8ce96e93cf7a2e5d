package posting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/shared"
)

// JobService manages the posting queue: inspection, manual retry of
// dead-lettered jobs, and cancellation of jobs that have not started.
type JobService struct {
	jobs   sap.PostingJobRepository
	scope  TransactionScope
	logger *zap.Logger
}

// NewJobService creates a new JobService
func NewJobService(jobs sap.PostingJobRepository, scope TransactionScope, logger *zap.Logger) *JobService {
	return &JobService{
		jobs:   jobs,
		scope:  scope,
		logger: logger,
	}
}

// JobDTO is the API representation of a posting job
type JobDTO struct {
	ID             uuid.UUID  `json:"id"`
	JobType        string     `json:"job_type"`
	DocumentType   string     `json:"document_type"`
	DocumentID     uuid.UUID  `json:"document_id"`
	DocumentNumber string     `json:"document_number"`
	Status         string     `json:"status"`
	RetryCount     int        `json:"retry_count"`
	MaxRetries     int        `json:"max_retries"`
	NextRetryAt    *time.Time `json:"next_retry_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	SAPDocNumber   string     `json:"sap_doc_number,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedBy      uuid.UUID  `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// QueueStats summarizes queue depth per status
type QueueStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Retrying   int64 `json:"retrying"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
	Cancelled  int64 `json:"cancelled"`
}

// List returns posting jobs matching the filter. Status and job type are
// passed through filter.Filters.
func (s *JobService) List(ctx context.Context, filter shared.Filter) ([]JobDTO, int64, error) {
	jobs, total, err := s.jobs.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list posting jobs", zap.Error(err))
		return nil, 0, shared.NewDomainError("INTERNAL_ERROR", "Failed to list posting jobs")
	}

	dtos := make([]JobDTO, len(jobs))
	for i, job := range jobs {
		dtos[i] = ToJobDTO(job)
	}
	return dtos, total, nil
}

// Get returns a single posting job
func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*JobDTO, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("JOB_NOT_FOUND", "Posting job not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find posting job")
	}
	dto := ToJobDTO(job)
	return &dto, nil
}

// DocumentHistory lists every job ever enqueued for a document, newest first
func (s *JobService) DocumentHistory(ctx context.Context, documentID uuid.UUID) ([]JobDTO, error) {
	jobs, err := s.jobs.FindByDocument(ctx, documentID)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load job history")
	}
	dtos := make([]JobDTO, len(jobs))
	for i, job := range jobs {
		dtos[i] = ToJobDTO(job)
	}
	return dtos, nil
}

// Stats returns queue depth per status
func (s *JobService) Stats(ctx context.Context) (*QueueStats, error) {
	counts, err := s.jobs.CountByStatus(ctx)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to compute queue stats")
	}
	return &QueueStats{
		Pending:    counts[sap.JobStatusPending],
		Processing: counts[sap.JobStatusProcessing],
		Retrying:   counts[sap.JobStatusRetrying],
		Completed:  counts[sap.JobStatusCompleted],
		Failed:     counts[sap.JobStatusFailed],
		Cancelled:  counts[sap.JobStatusCancelled],
	}, nil
}

// Retry requeues a dead-lettered job. The document is brought back into a
// postable state where its lifecycle allows it; a rejected transfer must be
// reopened and resubmitted instead, since rejection wiped its QC approval.
func (s *JobService) Retry(ctx context.Context, id uuid.UUID) (*JobDTO, error) {
	var dto JobDTO
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		job, err := repos.Jobs().FindByID(ctx, id)
		if err != nil {
			if err == shared.ErrNotFound {
				return shared.NewDomainError("JOB_NOT_FOUND", "Posting job not found")
			}
			return err
		}

		if job.DocumentType == sap.DocumentTypeInvoice {
			inv, err := repos.Invoices().FindByIDForUpdate(ctx, job.DocumentID)
			if err != nil {
				return err
			}
			if err := inv.CanPost(); err != nil {
				if resetErr := inv.ResetForRetry(); resetErr != nil {
					return resetErr
				}
				if err := repos.Invoices().Save(ctx, inv); err != nil {
					return err
				}
			}
		}

		if err := job.ResetForRetry(); err != nil {
			return shared.NewDomainError("INVALID_STATE", err.Error())
		}
		if err := repos.Jobs().Update(ctx, job); err != nil {
			return err
		}

		dto = ToJobDTO(job)
		return nil
	})
	if err != nil {
		if _, ok := err.(*shared.DomainError); ok {
			return nil, err
		}
		s.logger.Error("Failed to retry posting job", zap.String("job_id", id.String()), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to retry posting job")
	}

	s.logger.Info("Posting job requeued",
		zap.String("job_id", dto.ID.String()),
		zap.String("document_number", dto.DocumentNumber))

	return &dto, nil
}

// Cancel withdraws a job that has not started processing yet
func (s *JobService) Cancel(ctx context.Context, id uuid.UUID) (*JobDTO, error) {
	var dto JobDTO
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		job, err := repos.Jobs().FindByID(ctx, id)
		if err != nil {
			if err == shared.ErrNotFound {
				return shared.NewDomainError("JOB_NOT_FOUND", "Posting job not found")
			}
			return err
		}
		if err := job.Cancel(); err != nil {
			return shared.NewDomainError("INVALID_STATE", err.Error())
		}
		if err := repos.Jobs().Update(ctx, job); err != nil {
			return err
		}
		dto = ToJobDTO(job)
		return nil
	})
	if err != nil {
		if _, ok := err.(*shared.DomainError); ok {
			return nil, err
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to cancel posting job")
	}

	s.logger.Info("Posting job cancelled", zap.String("job_id", dto.ID.String()))

	return &dto, nil
}

func ToJobDTO(job *sap.PostingJob) JobDTO {
	return JobDTO{
		ID:             job.ID,
		JobType:        string(job.JobType),
		DocumentType:   job.DocumentType,
		DocumentID:     job.DocumentID,
		DocumentNumber: job.DocumentNumber,
		Status:         string(job.Status),
		RetryCount:     job.RetryCount,
		MaxRetries:     job.MaxRetries,
		NextRetryAt:    job.NextRetryAt,
		ErrorMessage:   job.ErrorMessage,
		SAPDocNumber:   job.SAPDocNumber,
		StartedAt:      job.StartedAt,
		CompletedAt:    job.CompletedAt,
		CreatedBy:      job.CreatedBy,
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
	}
}
