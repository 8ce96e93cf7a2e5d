package receiving

import (
	"context"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// GRPORepository defines the interface for goods receipt persistence
type GRPORepository interface {
	// FindByID retrieves a receipt with its items and serials
	FindByID(ctx context.Context, id uuid.UUID) (*GRPODocument, error)
	// FindByIDForUpdate retrieves a receipt with a row lock for
	// check-and-set status transitions. Must run inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*GRPODocument, error)
	// FindByNumber retrieves a receipt by its document number
	FindByNumber(ctx context.Context, documentNumber string) (*GRPODocument, error)
	// FindAll retrieves receipts matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]GRPODocument, int64, error)
	// Save persists a receipt and its items
	Save(ctx context.Context, doc *GRPODocument) error
	// Delete removes a draft receipt
	Delete(ctx context.Context, id uuid.UUID) error
}

// AttachmentRepository defines the interface for attachment metadata persistence
type AttachmentRepository interface {
	// Save persists an attachment record
	Save(ctx context.Context, attachment *Attachment) error
	// FindByID retrieves an attachment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Attachment, error)
	// FindByGRPO lists attachments for a receipt
	FindByGRPO(ctx context.Context, grpoID uuid.UUID) ([]Attachment, error)
	// Delete removes an attachment record
	Delete(ctx context.Context, id uuid.UUID) error
}
