package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/numbering"
	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/transfer"
	"github.com/wms/backend/internal/domain/warehouse"
)

// ============================================================================
// Helpers
// ============================================================================

type transferTestEnv struct {
	service      *Service
	repo         *MockTransferRepository
	warehouses   *MockWarehouseRepository
	serviceLayer *MockServiceLayer
	series       *MockSeriesRepository
	jobs         *MockPostingJobRepository
}

func newTransferTestEnv() *transferTestEnv {
	repo := new(MockTransferRepository)
	warehouses := new(MockWarehouseRepository)
	serviceLayer := new(MockServiceLayer)
	series := new(MockSeriesRepository)
	jobs := new(MockPostingJobRepository)

	scope := &stubScope{repos: stubRepositories{
		transfers: repo,
		jobs:      jobs,
		series:    series,
	}}

	return &transferTestEnv{
		service:      NewService(repo, warehouses, serviceLayer, scope, nil, zap.NewNop()),
		repo:         repo,
		warehouses:   warehouses,
		serviceLayer: serviceLayer,
		series:       series,
		jobs:         jobs,
	}
}

func testActor(role identity.Role) identity.Actor {
	return identity.Actor{ID: uuid.New(), Name: "Test User", Role: role}
}

func activeWarehouse(code string) *warehouse.Warehouse {
	wh, _ := warehouse.NewWarehouse(code, code+" warehouse", 2)
	return wh
}

func newDraftTransfer(t *testing.T, createdBy uuid.UUID) *transfer.SerialItemTransfer {
	t.Helper()
	tr, err := transfer.NewSerialItemTransfer("SIT-00001", "WH01", "WH02", createdBy, "Test User")
	require.NoError(t, err)
	return tr
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

// ============================================================================
// Create
// ============================================================================

func TestTransferService_Create_Success(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)

	env.warehouses.On("FindByCode", ctx, "WH01").Return(activeWarehouse("WH01"), nil)
	env.warehouses.On("FindByCode", ctx, "WH02").Return(activeWarehouse("WH02"), nil)
	env.series.On("Next", ctx, numbering.SeriesSerialTransfer).Return("SIT-00007", nil)
	env.repo.On("Save", ctx, mock.AnythingOfType("*transfer.SerialItemTransfer")).Return(nil)

	dto, err := env.service.Create(ctx, actor, CreateTransferInput{
		FromWarehouse: "WH01",
		ToWarehouse:   "WH02",
	})

	require.NoError(t, err)
	assert.Equal(t, "SIT-00007", dto.TransferNumber)
	assert.Equal(t, "draft", dto.Status)
}

func TestTransferService_Create_SameWarehouse(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()

	env.warehouses.On("FindByCode", ctx, "WH01").Return(activeWarehouse("WH01"), nil)
	env.series.On("Next", ctx, numbering.SeriesSerialTransfer).Return("SIT-00008", nil)

	_, err := env.service.Create(ctx, testActor(identity.RoleUser), CreateTransferInput{
		FromWarehouse: "WH01",
		ToWarehouse:   "WH01",
	})

	assertDomainCode(t, err, "SAME_WAREHOUSE")
}

// ============================================================================
// Serial items
// ============================================================================

func TestTransferService_AddSerialItem_Validated(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	tr := newDraftTransfer(t, actor.ID)

	env.repo.On("FindByID", ctx, tr.ID).Return(tr, nil)
	env.serviceLayer.On("Offline").Return(false)
	env.serviceLayer.On("ValidateSerial", ctx, "WH01", "ITM-100", "SN-1").
		Return(&sap.SerialValidation{
			ItemCode:      "ITM-100",
			ItemName:      "Widget",
			WarehouseCode: "WH01",
			SerialNumber:  "SN-1",
		}, nil)
	env.repo.On("Save", ctx, tr).Return(nil)

	dto, err := env.service.AddSerialItem(ctx, actor, tr.ID, AddSerialItemInput{
		ItemCode:     "ITM-100",
		SerialNumber: "SN-1",
	})

	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, "validated", dto.Items[0].ValidationStatus)
	assert.Equal(t, "Widget", dto.Items[0].ItemDescription)
	assert.Equal(t, "1", dto.Items[0].Quantity.String())
}

func TestTransferService_AddSerialItem_NotInSourceWarehouse(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	tr := newDraftTransfer(t, actor.ID)

	env.repo.On("FindByID", ctx, tr.ID).Return(tr, nil)
	env.serviceLayer.On("Offline").Return(false)
	env.serviceLayer.On("ValidateSerial", ctx, "WH01", "ITM-100", "SN-404").
		Return(nil, sap.ErrSerialNotFound)

	_, err := env.service.AddSerialItem(ctx, actor, tr.ID, AddSerialItemInput{
		ItemCode:     "ITM-100",
		SerialNumber: "SN-404",
	})

	assertDomainCode(t, err, "SERIAL_NOT_FOUND")
	env.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTransferService_AddSerialItem_ItemMismatch(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	tr := newDraftTransfer(t, actor.ID)

	env.repo.On("FindByID", ctx, tr.ID).Return(tr, nil)
	env.serviceLayer.On("Offline").Return(false)
	env.serviceLayer.On("ValidateSerial", ctx, "WH01", "ITM-100", "SN-1").
		Return(&sap.SerialValidation{ItemCode: "ITM-999", SerialNumber: "SN-1"}, nil)

	_, err := env.service.AddSerialItem(ctx, actor, tr.ID, AddSerialItemInput{
		ItemCode:     "ITM-100",
		SerialNumber: "SN-1",
	})

	assertDomainCode(t, err, "ITEM_MISMATCH")
}

func TestTransferService_AddSerialItem_DuplicateSerial(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	tr := newDraftTransfer(t, actor.ID)
	_, err := tr.AddSerialItem("ITM-100", "Widget", "SN-1", transfer.ItemValidationValidated, "")
	require.NoError(t, err)

	env.repo.On("FindByID", ctx, tr.ID).Return(tr, nil)
	env.serviceLayer.On("Offline").Return(false)
	env.serviceLayer.On("ValidateSerial", ctx, "WH01", "ITM-100", "SN-1").
		Return(&sap.SerialValidation{ItemCode: "ITM-100", SerialNumber: "SN-1"}, nil)

	_, err = env.service.AddSerialItem(ctx, actor, tr.ID, AddSerialItemInput{
		ItemCode:     "ITM-100",
		SerialNumber: "SN-1",
	})

	assert.ErrorIs(t, err, shared.ErrSerialDuplicate)
}

func TestTransferService_AddSerialItem_OfflineProceeds(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	tr := newDraftTransfer(t, actor.ID)

	env.repo.On("FindByID", ctx, tr.ID).Return(tr, nil)
	env.serviceLayer.On("Offline").Return(true)
	env.repo.On("Save", ctx, tr).Return(nil)

	dto, err := env.service.AddSerialItem(ctx, actor, tr.ID, AddSerialItemInput{
		ItemCode:     "ITM-100",
		SerialNumber: "SN-1",
	})

	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	env.serviceLayer.AssertNotCalled(t, "ValidateSerial", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// ============================================================================
// Non-serial items
// ============================================================================

func TestTransferService_AddNonSerialItem_WithinStock(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	tr := newDraftTransfer(t, actor.ID)

	env.repo.On("FindByID", ctx, tr.ID).Return(tr, nil)
	env.serviceLayer.On("Offline").Return(false)
	env.serviceLayer.On("CheckItemStock", ctx, "WH01", "ITM-200").
		Return(&sap.ItemStock{ItemCode: "ITM-200", SerialManaged: false, OnHand: decimal.NewFromInt(10)}, nil)
	env.repo.On("Save", ctx, tr).Return(nil)

	dto, err := env.service.AddNonSerialItem(ctx, actor, tr.ID, AddNonSerialItemInput{
		ItemCode: "ITM-200",
		Quantity: decimal.NewFromInt(4),
	})

	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.False(t, dto.Items[0].SerialManaged)
}

func TestTransferService_AddNonSerialItem_ExceedsOnHand(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	tr := newDraftTransfer(t, actor.ID)

	env.repo.On("FindByID", ctx, tr.ID).Return(tr, nil)
	env.serviceLayer.On("Offline").Return(false)
	env.serviceLayer.On("CheckItemStock", ctx, "WH01", "ITM-200").
		Return(&sap.ItemStock{ItemCode: "ITM-200", OnHand: decimal.NewFromInt(3)}, nil)

	_, err := env.service.AddNonSerialItem(ctx, actor, tr.ID, AddNonSerialItemInput{
		ItemCode: "ITM-200",
		Quantity: decimal.NewFromInt(5),
	})

	assertDomainCode(t, err, "INSUFFICIENT_STOCK")
}

func TestTransferService_AddNonSerialItem_RejectsSerialManagedItem(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	tr := newDraftTransfer(t, actor.ID)

	env.repo.On("FindByID", ctx, tr.ID).Return(tr, nil)
	env.serviceLayer.On("Offline").Return(false)
	env.serviceLayer.On("CheckItemStock", ctx, "WH01", "ITM-300").
		Return(&sap.ItemStock{ItemCode: "ITM-300", SerialManaged: true, OnHand: decimal.NewFromInt(9)}, nil)

	_, err := env.service.AddNonSerialItem(ctx, actor, tr.ID, AddNonSerialItemInput{
		ItemCode: "ITM-300",
		Quantity: decimal.NewFromInt(1),
	})

	assertDomainCode(t, err, "SERIAL_MANAGED_ITEM")
}

// ============================================================================
// Post
// ============================================================================

func approvedTransfer(t *testing.T, createdBy uuid.UUID) *transfer.SerialItemTransfer {
	t.Helper()
	tr := newDraftTransfer(t, createdBy)
	_, err := tr.AddSerialItem("ITM-100", "Widget", "SN-1", transfer.ItemValidationValidated, "")
	require.NoError(t, err)
	_, err = tr.AddSerialItem("ITM-100", "Widget", "SN-2", transfer.ItemValidationValidated, "")
	require.NoError(t, err)
	require.NoError(t, tr.Submit())
	require.NoError(t, tr.Approve(uuid.New(), "QC", ""))
	return tr
}

func TestTransferService_Post_EnqueuesJobWithSystemNumbers(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	tr := approvedTransfer(t, actor.ID)

	env.repo.On("FindByID", ctx, tr.ID).Return(tr, nil)
	env.warehouses.On("FindByCode", ctx, "WH02").Return(activeWarehouse("WH02"), nil)
	env.serviceLayer.On("Offline").Return(false)
	env.serviceLayer.On("GetSerialSystemNumber", ctx, "ITM-100", "SN-1").Return(101, nil)
	env.serviceLayer.On("GetSerialSystemNumber", ctx, "ITM-100", "SN-2").Return(102, nil)
	env.repo.On("FindByIDForUpdate", ctx, tr.ID).Return(tr, nil)
	env.jobs.On("FindActiveByDocument", ctx, tr.ID).Return(nil, nil)
	env.jobs.On("Save", ctx, mock.AnythingOfType("*sap.PostingJob")).Return(nil)

	job, err := env.service.Post(ctx, actor, tr.ID)

	require.NoError(t, err)
	assert.Equal(t, string(sap.JobTypeSerialTransfer), job.JobType)
	assert.Equal(t, tr.TransferNumber, job.DocumentNumber)
	env.jobs.AssertExpectations(t)
}

func TestTransferService_Post_RejectsUnapproved(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	tr := newDraftTransfer(t, actor.ID)

	env.repo.On("FindByID", ctx, tr.ID).Return(tr, nil)

	_, err := env.service.Post(ctx, actor, tr.ID)

	assertDomainCode(t, err, "INVALID_STATUS")
}

func TestTransferService_Post_RejectsDuplicateJob(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	tr := approvedTransfer(t, actor.ID)

	active, err := sap.NewPostingJob(sap.JobTypeSerialTransfer, sap.DocumentTypeSerialTransfer,
		tr.ID, tr.TransferNumber, []byte(`{}`), actor.ID)
	require.NoError(t, err)

	env.repo.On("FindByID", ctx, tr.ID).Return(tr, nil)
	env.warehouses.On("FindByCode", ctx, "WH02").Return(activeWarehouse("WH02"), nil)
	env.serviceLayer.On("Offline").Return(false)
	env.serviceLayer.On("GetSerialSystemNumber", ctx, mock.Anything, mock.Anything).Return(100, nil)
	env.repo.On("FindByIDForUpdate", ctx, tr.ID).Return(tr, nil)
	env.jobs.On("FindActiveByDocument", ctx, tr.ID).Return(active, nil)

	_, err = env.service.Post(ctx, actor, tr.ID)

	assertDomainCode(t, err, "JOB_ACTIVE")
}

// ============================================================================
// Review and cleanup
// ============================================================================

func TestTransferService_Approve_AlreadyApproved(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()
	tr := approvedTransfer(t, uuid.New())

	env.repo.On("FindByIDForUpdate", ctx, tr.ID).Return(tr, nil)

	_, err := env.service.Approve(ctx, testActor(identity.RoleQC), tr.ID, ReviewInput{})

	assertDomainCode(t, err, "ALREADY_APPROVED")
}

func TestTransferService_Submit_RequiresItems(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	tr := newDraftTransfer(t, actor.ID)

	env.repo.On("FindByID", ctx, tr.ID).Return(tr, nil)

	_, err := env.service.Submit(ctx, actor, tr.ID)

	assertDomainCode(t, err, "NO_ITEMS")
}

func TestTransferService_CleanupEmptyDrafts(t *testing.T) {
	env := newTransferTestEnv()
	ctx := context.Background()

	env.repo.On("DeleteEmptyDraftsOlderThan", ctx, mock.AnythingOfType("time.Time")).
		Return(int64(3), nil)

	removed, err := env.service.CleanupEmptyDrafts(ctx, 24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
}
