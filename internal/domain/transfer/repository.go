package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// Repository persists serial item transfers
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SerialItemTransfer, error)

	// FindByIDForUpdate loads the transfer under a row lock so concurrent
	// status changes serialize. Must run inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*SerialItemTransfer, error)

	FindByNumber(ctx context.Context, transferNumber string) (*SerialItemTransfer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]SerialItemTransfer, int64, error)
	Save(ctx context.Context, t *SerialItemTransfer) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteEmptyDraftsOlderThan removes abandoned drafts with no items.
	// Returns the number of transfers removed.
	DeleteEmptyDraftsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
