package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/wms/backend/internal/application/posting"
	"github.com/wms/backend/internal/domain/invoicing"
	"github.com/wms/backend/internal/domain/numbering"
	"github.com/wms/backend/internal/domain/picking"
	"github.com/wms/backend/internal/domain/receiving"
	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/transfer"
)

// GormTransactionScope implements posting.TransactionScope using GORM
// transactions. Document services use it for check-and-set status
// transitions and for allocating document numbers atomically with the
// document insert.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction. If the
// function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos posting.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within
// a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// GoodsReceipts returns the GRPO repository scoped to the current transaction
func (r *gormTransactionalRepositories) GoodsReceipts() receiving.GRPORepository {
	return NewGormGRPORepository(r.tx)
}

// Transfers returns the transfer repository scoped to the current transaction
func (r *gormTransactionalRepositories) Transfers() transfer.Repository {
	return NewGormTransferRepository(r.tx)
}

// PickLists returns the pick list repository scoped to the current transaction
func (r *gormTransactionalRepositories) PickLists() picking.Repository {
	return NewGormPickListRepository(r.tx)
}

// Invoices returns the invoice repository scoped to the current transaction
func (r *gormTransactionalRepositories) Invoices() invoicing.Repository {
	return NewGormInvoiceRepository(r.tx)
}

// Jobs returns the posting job repository scoped to the current transaction
func (r *gormTransactionalRepositories) Jobs() sap.PostingJobRepository {
	return NewGormPostingJobRepository(r.tx)
}

// Series returns the number series repository scoped to the current transaction
func (r *gormTransactionalRepositories) Series() numbering.SeriesRepository {
	return NewGormSeriesRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ posting.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements Repositories
var _ posting.Repositories = (*gormTransactionalRepositories)(nil)
