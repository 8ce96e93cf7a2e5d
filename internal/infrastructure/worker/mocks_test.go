package worker

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

// MockServiceLayer is a mock implementation of sap.ServiceLayer
type MockServiceLayer struct {
	mock.Mock
	offline bool
}

func (m *MockServiceLayer) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockServiceLayer) Offline() bool {
	return m.offline
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

// MockJobRepository is a mock implementation of sap.PostingJobRepository
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Save(ctx context.Context, job *sap.PostingJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*sap.PostingJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sap.PostingJob), args.Error(1)
}

func (m *MockJobRepository) FindDue(ctx context.Context, before time.Time, limit int) ([]*sap.PostingJob, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sap.PostingJob), args.Error(1)
}

func (m *MockJobRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*sap.PostingJob, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sap.PostingJob), args.Error(1)
}

func (m *MockJobRepository) Update(ctx context.Context, job *sap.PostingJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) FindActiveByDocument(ctx context.Context, documentID uuid.UUID) (*sap.PostingJob, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sap.PostingJob), args.Error(1)
}

func (m *MockJobRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]*sap.PostingJob, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sap.PostingJob), args.Error(1)
}

func (m *MockJobRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*sap.PostingJob, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*sap.PostingJob), args.Get(1).(int64), args.Error(2)
}

func (m *MockJobRepository) CountByStatus(ctx context.Context) (map[sap.JobStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[sap.JobStatus]int64), args.Error(1)
}

func (m *MockJobRepository) DeleteCompletedOlderThan(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobRepository) RequeueStaleProcessing(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockGRPORepository is a mock implementation of receiving.GRPORepository
type MockGRPORepository struct {
	mock.Mock
}

func (m *MockGRPORepository) FindByID(ctx context.Context, id uuid.UUID) (*receiving.GRPODocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*receiving.GRPODocument), args.Error(1)
}

func (m *MockGRPORepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*receiving.GRPODocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*receiving.GRPODocument), args.Error(1)
}

func (m *MockGRPORepository) FindByNumber(ctx context.Context, documentNumber string) (*receiving.GRPODocument, error) {
	args := m.Called(ctx, documentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*receiving.GRPODocument), args.Error(1)
}

func (m *MockGRPORepository) FindAll(ctx context.Context, filter shared.Filter) ([]receiving.GRPODocument, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]receiving.GRPODocument), args.Get(1).(int64), args.Error(2)
}

func (m *MockGRPORepository) Save(ctx context.Context, doc *receiving.GRPODocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockGRPORepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTransferRepository is a mock implementation of transfer.Repository
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*transfer.SerialItemTransfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.SerialItemTransfer), args.Error(1)
}

func (m *MockTransferRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*transfer.SerialItemTransfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.SerialItemTransfer), args.Error(1)
}

func (m *MockTransferRepository) FindByNumber(ctx context.Context, transferNumber string) (*transfer.SerialItemTransfer, error) {
	args := m.Called(ctx, transferNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.SerialItemTransfer), args.Error(1)
}

func (m *MockTransferRepository) FindAll(ctx context.Context, filter shared.Filter) ([]transfer.SerialItemTransfer, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]transfer.SerialItemTransfer), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransferRepository) Save(ctx context.Context, t *transfer.SerialItemTransfer) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTransferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTransferRepository) DeleteEmptyDraftsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

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

func (s *stubScope) Execute(ctx context.Context, fn func(repos posting.Repositories) error) error {
	return fn(&s.repos)
}
