package receiving

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// Attachment is a delivery note scan or photo stored in object storage
// and linked to a goods receipt.
type Attachment struct {
	ID          uuid.UUID
	GRPOID      uuid.UUID
	FileName    string
	ContentType string
	SizeBytes   int64
	StorageKey  string
	UploadedBy  uuid.UUID
	CreatedAt   time.Time
}

// Content types accepted for delivery note uploads
var allowedAttachmentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
}

// MaxAttachmentSize caps uploads at 20 MB
const MaxAttachmentSize = 20 << 20

// NewAttachment creates an attachment record after the object is stored
func NewAttachment(grpoID uuid.UUID, fileName, contentType string, sizeBytes int64, storageKey string, uploadedBy uuid.UUID) (*Attachment, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if !allowedAttachmentTypes[contentType] {
		return nil, shared.NewDomainError("UNSUPPORTED_FILE_TYPE", "Only PDF and image attachments are allowed")
	}
	if sizeBytes <= 0 || sizeBytes > MaxAttachmentSize {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "Attachment exceeds the 20 MB limit")
	}
	if storageKey == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}

	return &Attachment{
		ID:          uuid.New(),
		GRPOID:      grpoID,
		FileName:    strings.TrimSpace(fileName),
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		StorageKey:  storageKey,
		UploadedBy:  uploadedBy,
		CreatedAt:   time.Now(),
	}, nil
}
