package receiving

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
	"github.com/wms/backend/internal/domain/warehouse"
)

// ============================================================================
// Mocks
// ============================================================================

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

// MockAttachmentRepository is a mock implementation of receiving.AttachmentRepository
type MockAttachmentRepository struct {
	mock.Mock
}

func (m *MockAttachmentRepository) Save(ctx context.Context, attachment *receiving.Attachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *MockAttachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*receiving.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*receiving.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) FindByGRPO(ctx context.Context, grpoID uuid.UUID) ([]receiving.Attachment, error) {
	args := m.Called(ctx, grpoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]receiving.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockWarehouseRepository is a mock implementation of warehouse.Repository
type MockWarehouseRepository struct {
	mock.Mock
}

func (m *MockWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*warehouse.Warehouse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*warehouse.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) FindByCode(ctx context.Context, code string) (*warehouse.Warehouse, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*warehouse.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]warehouse.Warehouse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]warehouse.Warehouse), args.Get(1).(int64), args.Error(2)
}

func (m *MockWarehouseRepository) Save(ctx context.Context, wh *warehouse.Warehouse) error {
	args := m.Called(ctx, wh)
	return args.Error(0)
}

func (m *MockWarehouseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWarehouseRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
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

// MockObjectStorageService is a mock implementation of ObjectStorageService
type MockObjectStorageService struct {
	mock.Mock
}

func (m *MockObjectStorageService) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	args := m.Called(ctx, storageKey, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStorageService) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorageService) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
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

// stubRepositories hands the mocks out through the posting.Repositories port
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

// stubScope runs the unit of work directly against the mocks
type stubScope struct {
	repos stubRepositories
}

func (s *stubScope) Execute(ctx context.Context, fn func(repos posting.Repositories) error) error {
	return fn(&s.repos)
}
