package sap

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// JobStatus represents the status of a posting job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusRetrying   JobStatus = "retrying"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// IsTerminal returns true when the job will never run again without a manual reset
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// JobType identifies which posting routine handles the job
type JobType string

const (
	JobTypeGoodsReceipt   JobType = "grpo_post"
	JobTypeSerialTransfer JobType = "serial_transfer"
	JobTypePickList       JobType = "pick_list_post"
	JobTypeInvoice        JobType = "so_invoice_post"
)

// IsValid returns true if the job type is known
func (t JobType) IsValid() bool {
	switch t {
	case JobTypeGoodsReceipt, JobTypeSerialTransfer, JobTypePickList, JobTypeInvoice:
		return true
	default:
		return false
	}
}

// Document types referenced by posting jobs
const (
	DocumentTypeGoodsReceipt   = "grpo"
	DocumentTypeSerialTransfer = "serial_item_transfer"
	DocumentTypePickList       = "pick_list"
	DocumentTypeInvoice        = "so_invoice"
)

// Retry configuration. Backoff doubles from the base delay and is capped,
// giving the schedule 30s, 60s, 120s, 240s, 300s, 300s, ...
const (
	DefaultMaxRetries = 3
	BaseRetryDelay    = 30 * time.Second
	MaxRetryDelay     = 300 * time.Second
)

// PostingJob is one queued attempt to push an approved document into SAP.
// The payload is a snapshot of the Service Layer document taken at enqueue
// time so the worker never re-reads mutable document state.
type PostingJob struct {
	ID             uuid.UUID
	JobType        JobType
	DocumentType   string
	DocumentID     uuid.UUID
	DocumentNumber string
	Payload        []byte
	Status         JobStatus
	RetryCount     int
	MaxRetries     int
	NextRetryAt    *time.Time
	ErrorMessage   string
	SAPDocNumber   string
	Result         []byte
	StartedAt      *time.Time
	CompletedAt    *time.Time
	CreatedBy      uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewPostingJob creates a pending posting job for a document
func NewPostingJob(jobType JobType, documentType string, documentID uuid.UUID, documentNumber string, payload []byte, createdBy uuid.UUID) (*PostingJob, error) {
	if !jobType.IsValid() {
		return nil, shared.NewDomainError("INVALID_JOB_TYPE", "Unknown posting job type")
	}
	if len(payload) == 0 {
		return nil, shared.ErrInvalidInput
	}
	now := time.Now()
	return &PostingJob{
		ID:             uuid.New(),
		JobType:        jobType,
		DocumentType:   documentType,
		DocumentID:     documentID,
		DocumentNumber: documentNumber,
		Payload:        payload,
		Status:         JobStatusPending,
		RetryCount:     0,
		MaxRetries:     DefaultMaxRetries,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Start marks the job as being processed
func (j *PostingJob) Start() error {
	if j.Status != JobStatusPending && j.Status != JobStatusRetrying {
		return errors.New("can only start pending or retrying jobs")
	}
	now := time.Now()
	j.Status = JobStatusProcessing
	j.StartedAt = &now
	j.UpdatedAt = now
	return nil
}

// Complete marks the job as successfully posted
func (j *PostingJob) Complete(sapDocNumber string, result []byte) {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.SAPDocNumber = sapDocNumber
	j.Result = result
	j.ErrorMessage = ""
	j.NextRetryAt = nil
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// Fail records a posting failure. The job is scheduled for retry with
// exponential backoff until MaxRetries is reached, after which it becomes
// a dead letter in failed status.
func (j *PostingJob) Fail(errMsg string) {
	j.RetryCount++
	j.ErrorMessage = errMsg
	now := time.Now()
	j.UpdatedAt = now

	if j.RetryCount >= j.MaxRetries {
		j.Status = JobStatusFailed
		j.NextRetryAt = nil
		j.CompletedAt = &now
		return
	}

	j.Status = JobStatusRetrying
	nextRetry := now.Add(j.retryDelay())
	j.NextRetryAt = &nextRetry
}

// retryDelay returns the capped exponential backoff for the current attempt
func (j *PostingJob) retryDelay() time.Duration {
	delay := BaseRetryDelay * time.Duration(1<<uint(j.RetryCount-1))
	if delay > MaxRetryDelay {
		delay = MaxRetryDelay
	}
	return delay
}

// FailPermanently dead-letters the job without consuming remaining retries.
// Used when SAP rejected the document outright and a retry cannot succeed.
func (j *PostingJob) FailPermanently(errMsg string) {
	now := time.Now()
	j.RetryCount = j.MaxRetries
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.NextRetryAt = nil
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// ResetForRetry requeues a dead-lettered job for another round of attempts
func (j *PostingJob) ResetForRetry() error {
	if j.Status != JobStatusFailed {
		return errors.New("can only retry failed jobs")
	}
	j.Status = JobStatusPending
	j.RetryCount = 0
	j.ErrorMessage = ""
	j.NextRetryAt = nil
	j.StartedAt = nil
	j.CompletedAt = nil
	j.UpdatedAt = time.Now()
	return nil
}

// Cancel withdraws a job that has not started yet
func (j *PostingJob) Cancel() error {
	if j.Status != JobStatusPending && j.Status != JobStatusRetrying {
		return errors.New("can only cancel jobs that have not started")
	}
	now := time.Now()
	j.Status = JobStatusCancelled
	j.NextRetryAt = nil
	j.CompletedAt = &now
	j.UpdatedAt = now
	return nil
}

// IsDead returns true when the job exhausted its retries
func (j *PostingJob) IsDead() bool {
	return j.Status == JobStatusFailed
}

// IsActive returns true while the job still occupies the queue for its document
func (j *PostingJob) IsActive() bool {
	return j.Status == JobStatusPending || j.Status == JobStatusProcessing || j.Status == JobStatusRetrying
}

// PostingJobRepository defines the interface for posting queue persistence
type PostingJobRepository interface {
	// Save persists a new posting job
	Save(ctx context.Context, job *PostingJob) error
	// FindByID retrieves a single job by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PostingJob, error)
	// FindDue retrieves pending jobs plus retrying jobs whose next_retry_at
	// has passed, oldest first, up to the specified limit
	FindDue(ctx context.Context, before time.Time, limit int) ([]*PostingJob, error)
	// MarkProcessing atomically claims the given jobs for a worker and
	// returns the claimed set. Jobs already claimed elsewhere are skipped.
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*PostingJob, error)
	// Update updates an existing job
	Update(ctx context.Context, job *PostingJob) error
	// FindActiveByDocument returns the active job for a document, if any
	FindActiveByDocument(ctx context.Context, documentID uuid.UUID) (*PostingJob, error)
	// FindByDocument lists all jobs ever enqueued for a document, newest first
	FindByDocument(ctx context.Context, documentID uuid.UUID) ([]*PostingJob, error)
	// FindAll lists jobs with pagination and optional status/type filters
	FindAll(ctx context.Context, filter shared.Filter) ([]*PostingJob, int64, error)
	// CountByStatus returns the number of jobs per status
	CountByStatus(ctx context.Context) (map[JobStatus]int64, error)
	// DeleteCompletedOlderThan removes completed jobs older than the given time
	DeleteCompletedOlderThan(ctx context.Context, before time.Time) (int64, error)
	// RequeueStaleProcessing returns jobs stuck in processing since before the
	// given time to retrying status. Recovers jobs orphaned by a worker crash.
	RequeueStaleProcessing(ctx context.Context, before time.Time) (int64, error)
}
