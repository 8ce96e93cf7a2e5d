package invoicing

import (
	"context"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// Repository persists sales order invoices
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrderInvoice, error)

	// FindByIDForUpdate loads the invoice under a row lock so concurrent
	// status changes serialize. Must run inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*SalesOrderInvoice, error)

	FindByNumber(ctx context.Context, invoiceNumber string) (*SalesOrderInvoice, error)
	FindBySOEntry(ctx context.Context, soEntry int) ([]SalesOrderInvoice, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]SalesOrderInvoice, int64, error)
	Save(ctx context.Context, inv *SalesOrderInvoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}
