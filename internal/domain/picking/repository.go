package picking

import (
	"context"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// Repository persists pick lists
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PickList, error)

	// FindByIDForUpdate loads the pick list under a row lock so concurrent
	// status changes serialize. Must run inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PickList, error)

	FindByNumber(ctx context.Context, pickNumber string) (*PickList, error)
	FindByOrderEntry(ctx context.Context, orderEntry int) ([]PickList, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PickList, int64, error)
	Save(ctx context.Context, p *PickList) error
	Delete(ctx context.Context, id uuid.UUID) error
}
