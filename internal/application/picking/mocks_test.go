package picking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/wms/backend/internal/application/posting"
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

// MockPickListRepository is a mock implementation of picking.Repository
type MockPickListRepository struct {
	mock.Mock
}

func (m *MockPickListRepository) FindByID(ctx context.Context, id uuid.UUID) (*picking.PickList, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*picking.PickList), args.Error(1)
}

func (m *MockPickListRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*picking.PickList, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*picking.PickList), args.Error(1)
}

func (m *MockPickListRepository) FindByNumber(ctx context.Context, pickNumber string) (*picking.PickList, error) {
	args := m.Called(ctx, pickNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*picking.PickList), args.Error(1)
}

func (m *MockPickListRepository) FindByOrderEntry(ctx context.Context, orderEntry int) ([]picking.PickList, error) {
	args := m.Called(ctx, orderEntry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]picking.PickList), args.Error(1)
}

func (m *MockPickListRepository) FindAll(ctx context.Context, filter shared.Filter) ([]picking.PickList, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]picking.PickList), args.Get(1).(int64), args.Error(2)
}

func (m *MockPickListRepository) Save(ctx context.Context, p *picking.PickList) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPickListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockServiceLayer is a mock implementation of sap.ServiceLayer
type MockServiceLayer struct {
	mock.Mock
}

func (m *MockServiceLayer) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockServiceLayer) Offline() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockServiceLayer) ValidateSerial(ctx context.Context, warehouseCode, itemCode, serial string) (*sap.SerialValidation, error) {
	args := m.Called(ctx, warehouseCode, itemCode, serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sap.SerialValidation), args.Error(1)
}

func (m *MockServiceLayer) GetSerialSystemNumber(ctx context.Context, itemCode, serial string) (int, error) {
	args := m.Called(ctx, itemCode, serial)
	return args.Int(0), args.Error(1)
}

func (m *MockServiceLayer) CheckItemStock(ctx context.Context, warehouseCode, itemCode string) (*sap.ItemStock, error) {
	args := m.Called(ctx, warehouseCode, itemCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sap.ItemStock), args.Error(1)
}

func (m *MockServiceLayer) ListSalesOrderSeries(ctx context.Context) ([]sap.SalesOrderSeries, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sap.SalesOrderSeries), args.Error(1)
}

func (m *MockServiceLayer) FindSalesOrderEntry(ctx context.Context, orderNumber string, series int) (int, error) {
	args := m.Called(ctx, orderNumber, series)
	return args.Int(0), args.Error(1)
}

func (m *MockServiceLayer) GetSalesOrder(ctx context.Context, docEntry int) (*sap.SalesOrder, error) {
	args := m.Called(ctx, docEntry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sap.SalesOrder), args.Error(1)
}

func (m *MockServiceLayer) PostGoodsReceipt(ctx context.Context, doc *sap.GoodsReceiptDocument) (*sap.PostResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sap.PostResult), args.Error(1)
}

func (m *MockServiceLayer) PostStockTransfer(ctx context.Context, doc *sap.StockTransferDocument) (*sap.PostResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sap.PostResult), args.Error(1)
}

func (m *MockServiceLayer) PostPickList(ctx context.Context, doc *sap.PickListDocument) (*sap.PostResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sap.PostResult), args.Error(1)
}

func (m *MockServiceLayer) PostInvoice(ctx context.Context, doc *sap.InvoiceDocument) (*sap.PostResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sap.PostResult), args.Error(1)
}

func (m *MockServiceLayer) PostInvoiceDraft(ctx context.Context, doc *sap.DraftDocument) (*sap.PostResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sap.PostResult), args.Error(1)
}

// MockSeriesRepository is a mock implementation of numbering.SeriesRepository
type MockSeriesRepository struct {
	mock.Mock
}

func (m *MockSeriesRepository) Next(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockSeriesRepository) Get(ctx context.Context, name string) (*numbering.Series, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*numbering.Series), args.Error(1)
}

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

func (s *stubScope) Execute(ctx context.Context, fn func(repos posting.Repositories) error) error {
	return fn(&s.repos)
}
