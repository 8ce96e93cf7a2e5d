package posting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/wms/backend/internal/domain/invoicing"
	"github.com/wms/backend/internal/domain/numbering"
	"github.com/wms/backend/internal/domain/picking"
	"github.com/wms/backend/internal/domain/receiving"
	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/transfer"
)

// ============================================================================
// Mocks
// ============================================================================

// MockPostingJobRepository is a mock implementation of sap.PostingJobRepository
type MockPostingJobRepository struct {
	mock.Mock
}

func (m *MockPostingJobRepository) Save(ctx context.Context, job *sap.PostingJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockPostingJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*sap.PostingJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sap.PostingJob), args.Error(1)
}

func (m *MockPostingJobRepository) FindDue(ctx context.Context, before time.Time, limit int) ([]*sap.PostingJob, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sap.PostingJob), args.Error(1)
}

func (m *MockPostingJobRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*sap.PostingJob, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sap.PostingJob), args.Error(1)
}

func (m *MockPostingJobRepository) Update(ctx context.Context, job *sap.PostingJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockPostingJobRepository) FindActiveByDocument(ctx context.Context, documentID uuid.UUID) (*sap.PostingJob, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sap.PostingJob), args.Error(1)
}

func (m *MockPostingJobRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]*sap.PostingJob, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sap.PostingJob), args.Error(1)
}

func (m *MockPostingJobRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*sap.PostingJob, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*sap.PostingJob), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostingJobRepository) CountByStatus(ctx context.Context) (map[sap.JobStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[sap.JobStatus]int64), args.Error(1)
}

func (m *MockPostingJobRepository) DeleteCompletedOlderThan(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostingJobRepository) RequeueStaleProcessing(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of invoicing.Repository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.SalesOrderInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.SalesOrderInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*invoicing.SalesOrderInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.SalesOrderInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*invoicing.SalesOrderInvoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.SalesOrderInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindBySOEntry(ctx context.Context, soEntry int) ([]invoicing.SalesOrderInvoice, error) {
	args := m.Called(ctx, soEntry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invoicing.SalesOrderInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoicing.SalesOrderInvoice, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]invoicing.SalesOrderInvoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *invoicing.SalesOrderInvoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ============================================================================
// Transaction scope test double
// ============================================================================

type stubRepositories struct {
	grpos     receiving.GRPORepository
	transfers transfer.Repository
	pickLists picking.Repository
	invoices  invoicing.Repository
	jobs      sap.PostingJobRepository
	series    numbering.SeriesRepository
}

func (r *stubRepositories) GoodsReceipts() receiving.GRPORepository { return r.grpos }
func (r *stubRepositories) Transfers() transfer.Repository          { return r.transfers }
func (r *stubRepositories) PickLists() picking.Repository           { return r.pickLists }
func (r *stubRepositories) Invoices() invoicing.Repository          { return r.invoices }
func (r *stubRepositories) Jobs() sap.PostingJobRepository          { return r.jobs }
func (r *stubRepositories) Series() numbering.SeriesRepository      { return r.series }

type stubScope struct {
	repos stubRepositories
}

func (s *stubScope) Execute(ctx context.Context, fn func(repos Repositories) error) error {
	return fn(&s.repos)
}
