package receiving

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/receiving"
	"github.com/wms/backend/internal/domain/shared"
)

// ObjectStorageService defines the interface for object storage operations
// used by attachment uploads. Implemented by S3-compatible storage.
type ObjectStorageService interface {
	// Upload stores an object under the given key
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// GenerateDownloadURL generates a presigned URL for downloading a file.
	// Returns the download URL and expiration time.
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error
}

// AttachmentServiceConfig holds configuration for the attachment service
type AttachmentServiceConfig struct {
	// DownloadURLExpiry is the duration for which download URLs are valid
	DownloadURLExpiry time.Duration
	// MaxAttachmentsPerDocument caps delivery-note uploads per receipt
	MaxAttachmentsPerDocument int
}

// DefaultAttachmentServiceConfig returns the default configuration
func DefaultAttachmentServiceConfig() AttachmentServiceConfig {
	return AttachmentServiceConfig{
		DownloadURLExpiry:         1 * time.Hour,
		MaxAttachmentsPerDocument: 20,
	}
}

// UploadAttachmentInput carries an uploaded delivery-note file
type UploadAttachmentInput struct {
	FileName    string
	ContentType string
	Data        []byte
}

// AttachmentService handles delivery-note attachments on goods receipts
type AttachmentService struct {
	attachments receiving.AttachmentRepository
	grpos       receiving.GRPORepository
	storage     ObjectStorageService
	config      AttachmentServiceConfig
	logger      *zap.Logger
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(
	attachments receiving.AttachmentRepository,
	grpos receiving.GRPORepository,
	storage ObjectStorageService,
	logger *zap.Logger,
) *AttachmentService {
	return &AttachmentService{
		attachments: attachments,
		grpos:       grpos,
		storage:     storage,
		config:      DefaultAttachmentServiceConfig(),
		logger:      logger,
	}
}

// SetConfig sets the service configuration
func (s *AttachmentService) SetConfig(config AttachmentServiceConfig) {
	s.config = config
}

// Upload stores a delivery-note scan and records it against the receipt.
// The object is written to storage first; the metadata row only exists
// for objects that were stored.
func (s *AttachmentService) Upload(ctx context.Context, actor identity.Actor, grpoID uuid.UUID, input UploadAttachmentInput) (*AttachmentDTO, error) {
	doc, err := s.loadDocument(ctx, actor, grpoID)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(doc.CreatedBy) {
		return nil, shared.ErrForbidden
	}
	if int64(len(input.Data)) > receiving.MaxAttachmentSize {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "Attachment exceeds the 20 MB limit")
	}

	existing, err := s.attachments.FindByGRPO(ctx, grpoID)
	if err != nil {
		return nil, s.wrapError(err, "Failed to list attachments")
	}
	if len(existing) >= s.config.MaxAttachmentsPerDocument {
		return nil, shared.NewDomainError("ATTACHMENT_LIMIT_EXCEEDED",
			fmt.Sprintf("Maximum %d attachments per receipt allowed", s.config.MaxAttachmentsPerDocument))
	}

	storageKey := s.generateStorageKey(grpoID, input.FileName)

	attachment, err := receiving.NewAttachment(grpoID, input.FileName, input.ContentType,
		int64(len(input.Data)), storageKey, actor.ID)
	if err != nil {
		return nil, err
	}

	if err := s.storage.Upload(ctx, storageKey, input.Data, input.ContentType); err != nil {
		s.logger.Error("Attachment upload failed",
			zap.String("storage_key", storageKey), zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_FAILED", "Failed to store attachment")
	}

	if err := s.attachments.Save(ctx, attachment); err != nil {
		// Roll back the stored object so no orphan remains
		_ = s.storage.DeleteObject(ctx, storageKey)
		return nil, s.wrapError(err, "Failed to record attachment")
	}

	s.logger.Info("Attachment uploaded",
		zap.String("document_number", doc.DocumentNumber),
		zap.String("file_name", attachment.FileName))

	dto := s.withDownloadURL(ctx, attachment)
	return &dto, nil
}

// List returns attachments for a receipt with presigned download URLs
func (s *AttachmentService) List(ctx context.Context, actor identity.Actor, grpoID uuid.UUID) ([]AttachmentDTO, error) {
	if _, err := s.loadDocument(ctx, actor, grpoID); err != nil {
		return nil, err
	}

	attachments, err := s.attachments.FindByGRPO(ctx, grpoID)
	if err != nil {
		return nil, s.wrapError(err, "Failed to list attachments")
	}

	dtos := make([]AttachmentDTO, len(attachments))
	for i := range attachments {
		dtos[i] = s.withDownloadURL(ctx, &attachments[i])
	}
	return dtos, nil
}

// Download returns a presigned download URL for one attachment
func (s *AttachmentService) Download(ctx context.Context, actor identity.Actor, grpoID, attachmentID uuid.UUID) (string, error) {
	if _, err := s.loadDocument(ctx, actor, grpoID); err != nil {
		return "", err
	}

	attachment, err := s.loadAttachment(ctx, grpoID, attachmentID)
	if err != nil {
		return "", err
	}

	url, _, err := s.storage.GenerateDownloadURL(ctx, attachment.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to presign download",
			zap.String("storage_key", attachment.StorageKey), zap.Error(err))
		return "", shared.NewDomainError("DOWNLOAD_URL_FAILED", "Failed to generate download URL")
	}
	return url, nil
}

// Delete removes an attachment while the receipt is still a draft
func (s *AttachmentService) Delete(ctx context.Context, actor identity.Actor, grpoID, attachmentID uuid.UUID) error {
	doc, err := s.loadDocument(ctx, actor, grpoID)
	if err != nil {
		return err
	}
	if !actor.CanModify(doc.CreatedBy) {
		return shared.ErrForbidden
	}
	if !doc.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATUS", "Can only delete attachments on draft receipts")
	}

	attachment, err := s.loadAttachment(ctx, grpoID, attachmentID)
	if err != nil {
		return err
	}

	if err := s.attachments.Delete(ctx, attachmentID); err != nil {
		return s.wrapError(err, "Failed to delete attachment")
	}
	if err := s.storage.DeleteObject(ctx, attachment.StorageKey); err != nil {
		// Metadata is gone; the orphaned object is only a storage leak
		s.logger.Warn("Failed to delete stored object",
			zap.String("storage_key", attachment.StorageKey), zap.Error(err))
	}
	return nil
}

func (s *AttachmentService) loadDocument(ctx context.Context, actor identity.Actor, grpoID uuid.UUID) (*receiving.GRPODocument, error) {
	doc, err := s.grpos.FindByID(ctx, grpoID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("DOCUMENT_NOT_FOUND", "Goods receipt not found")
		}
		return nil, s.wrapError(err, "Failed to find goods receipt")
	}
	if !actor.CanSee(doc.CreatedBy, doc.Status.String()) {
		return nil, shared.ErrForbidden
	}
	return doc, nil
}

func (s *AttachmentService) loadAttachment(ctx context.Context, grpoID, attachmentID uuid.UUID) (*receiving.Attachment, error) {
	attachment, err := s.attachments.FindByID(ctx, attachmentID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("ATTACHMENT_NOT_FOUND", "Attachment not found")
		}
		return nil, s.wrapError(err, "Failed to find attachment")
	}
	if attachment.GRPOID != grpoID {
		return nil, shared.NewDomainError("ATTACHMENT_NOT_FOUND", "Attachment not found")
	}
	return attachment, nil
}

func (s *AttachmentService) withDownloadURL(ctx context.Context, attachment *receiving.Attachment) AttachmentDTO {
	url, _, err := s.storage.GenerateDownloadURL(ctx, attachment.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		url = ""
	}
	return toAttachmentDTO(attachment, url)
}

// generateStorageKey builds a collision-free object key that keeps the
// original extension for content-type sniffing on download
func (s *AttachmentService) generateStorageKey(grpoID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("grpo/%s/%s%s", grpoID, uuid.NewString(), ext)
}

func (s *AttachmentService) wrapError(err error, message string) error {
	if _, ok := err.(*shared.DomainError); ok {
		return err
	}
	s.logger.Error(message, zap.Error(err))
	return shared.NewDomainError("INTERNAL_ERROR", message)
}
