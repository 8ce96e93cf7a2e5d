// Package posting contains the application services for the asynchronous
// SAP posting queue: building Service Layer payloads, enqueueing jobs for
// approved documents, and managing the queue (retry, cancel, stats).
package posting

import (
	"context"

	"github.com/wms/backend/internal/domain/invoicing"
	"github.com/wms/backend/internal/domain/numbering"
	"github.com/wms/backend/internal/domain/picking"
	"github.com/wms/backend/internal/domain/receiving"
	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/transfer"
)

// TransactionScope runs a function inside a single database transaction.
// Document services use it for check-and-set status transitions: the
// document row is locked, its status verified, and the posting job written
// atomically, so two concurrent approvals or posts cannot both succeed.
type TransactionScope interface {
	// Execute runs fn within a transaction. The transaction is rolled back
	// when fn returns an error and committed otherwise.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to the document and queue repositories scoped
// to the current transaction. All repositories share one underlying
// transaction.
type Repositories interface {
	// GoodsReceipts returns the GRPO repository bound to the transaction
	GoodsReceipts() receiving.GRPORepository
	// Transfers returns the serial transfer repository bound to the transaction
	Transfers() transfer.Repository
	// PickLists returns the pick list repository bound to the transaction
	PickLists() picking.Repository
	// Invoices returns the SO invoice repository bound to the transaction
	Invoices() invoicing.Repository
	// Jobs returns the posting job repository bound to the transaction
	Jobs() sap.PostingJobRepository
	// Series returns the number series repository bound to the transaction
	Series() numbering.SeriesRepository
}
