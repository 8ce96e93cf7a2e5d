package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/sap"
)

// PostingJobModel is the persistence model for one queued SAP posting job.
type PostingJobModel struct {
	ID             uuid.UUID     `gorm:"type:uuid;primary_key"`
	JobType        sap.JobType   `gorm:"type:varchar(30);not null;index"`
	DocumentType   string        `gorm:"type:varchar(30);not null"`
	DocumentID     uuid.UUID     `gorm:"type:uuid;not null;index"`
	DocumentNumber string        `gorm:"type:varchar(50);not null"`
	Payload        []byte        `gorm:"type:jsonb;not null"`
	Status         sap.JobStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	RetryCount     int           `gorm:"not null;default:0"`
	MaxRetries     int           `gorm:"not null;default:3"`
	NextRetryAt    *time.Time    `gorm:"index"`
	ErrorMessage   string        `gorm:"type:text"`
	SAPDocNumber   string        `gorm:"type:varchar(50)"`
	Result         []byte        `gorm:"type:jsonb"`
	StartedAt      *time.Time
	CompletedAt    *time.Time
	CreatedBy      uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt      time.Time `gorm:"not null;index"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PostingJobModel) TableName() string {
	return "posting_jobs"
}

// ToDomain converts the persistence model to a domain PostingJob entity.
func (m *PostingJobModel) ToDomain() *sap.PostingJob {
	return &sap.PostingJob{
		ID:             m.ID,
		JobType:        m.JobType,
		DocumentType:   m.DocumentType,
		DocumentID:     m.DocumentID,
		DocumentNumber: m.DocumentNumber,
		Payload:        m.Payload,
		Status:         m.Status,
		RetryCount:     m.RetryCount,
		MaxRetries:     m.MaxRetries,
		NextRetryAt:    m.NextRetryAt,
		ErrorMessage:   m.ErrorMessage,
		SAPDocNumber:   m.SAPDocNumber,
		Result:         m.Result,
		StartedAt:      m.StartedAt,
		CompletedAt:    m.CompletedAt,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain PostingJob entity.
func (m *PostingJobModel) FromDomain(job *sap.PostingJob) {
	m.ID = job.ID
	m.JobType = job.JobType
	m.DocumentType = job.DocumentType
	m.DocumentID = job.DocumentID
	m.DocumentNumber = job.DocumentNumber
	m.Payload = job.Payload
	m.Status = job.Status
	m.RetryCount = job.RetryCount
	m.MaxRetries = job.MaxRetries
	m.NextRetryAt = job.NextRetryAt
	m.ErrorMessage = job.ErrorMessage
	m.SAPDocNumber = job.SAPDocNumber
	m.Result = job.Result
	m.StartedAt = job.StartedAt
	m.CompletedAt = job.CompletedAt
	m.CreatedBy = job.CreatedBy
	m.CreatedAt = job.CreatedAt
	m.UpdatedAt = job.UpdatedAt
}

// PostingJobModelFromDomain creates a new persistence model from a domain
// PostingJob entity.
func PostingJobModelFromDomain(job *sap.PostingJob) *PostingJobModel {
	m := &PostingJobModel{}
	m.FromDomain(job)
	return m
}
