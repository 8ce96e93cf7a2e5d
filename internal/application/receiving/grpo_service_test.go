package receiving

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/numbering"
	"github.com/wms/backend/internal/domain/receiving"
	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/warehouse"
)

// ============================================================================
// Helpers
// ============================================================================

type grpoTestEnv struct {
	service      *GRPOService
	repo         *MockGRPORepository
	warehouses   *MockWarehouseRepository
	serviceLayer *MockServiceLayer
	series       *MockSeriesRepository
	jobs         *MockPostingJobRepository
}

func newGRPOTestEnv() *grpoTestEnv {
	repo := new(MockGRPORepository)
	warehouses := new(MockWarehouseRepository)
	serviceLayer := new(MockServiceLayer)
	series := new(MockSeriesRepository)
	jobs := new(MockPostingJobRepository)

	scope := &stubScope{repos: stubRepositories{
		grpos:  repo,
		jobs:   jobs,
		series: series,
	}}

	return &grpoTestEnv{
		service:      NewGRPOService(repo, warehouses, serviceLayer, scope, nil, zap.NewNop()),
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

func testWarehouse() *warehouse.Warehouse {
	wh, _ := warehouse.NewWarehouse("WH01", "Main Warehouse", 1)
	return wh
}

func newDraftGRPO(t *testing.T, createdBy uuid.UUID) *receiving.GRPODocument {
	t.Helper()
	doc, err := receiving.NewGRPODocument("GRPO-00001", "PO-1001", 501,
		"V001", "Acme Supplies", "WH01", createdBy, "Test User")
	require.NoError(t, err)
	return doc
}

func addSerialItem(t *testing.T, doc *receiving.GRPODocument, qty int64) *receiving.GRPOItem {
	t.Helper()
	item, err := doc.AddItem("ITM-100", "Widget", "EA", 0,
		decimal.NewFromInt(qty), decimal.NewFromInt(qty), "", true, false, "")
	require.NoError(t, err)
	return item
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

func TestGRPOService_Create_Success(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)

	env.warehouses.On("FindByCode", ctx, "WH01").Return(testWarehouse(), nil)
	env.series.On("Next", ctx, numbering.SeriesGoodsReceipt).Return("GRPO-00042", nil)
	env.repo.On("Save", ctx, mock.AnythingOfType("*receiving.GRPODocument")).Return(nil)

	dto, err := env.service.Create(ctx, actor, CreateGRPOInput{
		PONumber:      "PO-1001",
		POEntry:       501,
		CardCode:      "V001",
		CardName:      "Acme Supplies",
		WarehouseCode: "WH01",
		Remarks:       "dock 3",
	})

	require.NoError(t, err)
	assert.Equal(t, "GRPO-00042", dto.DocumentNumber)
	assert.Equal(t, "draft", dto.Status)
	assert.Equal(t, actor.ID, dto.CreatedBy)
	env.series.AssertExpectations(t)
	env.repo.AssertExpectations(t)
}

func TestGRPOService_Create_WarehouseNotFound(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()

	env.warehouses.On("FindByCode", ctx, "NOPE").Return(nil, shared.ErrNotFound)

	_, err := env.service.Create(ctx, testActor(identity.RoleUser), CreateGRPOInput{
		PONumber: "PO-1001", CardCode: "V001", WarehouseCode: "NOPE",
	})

	assertDomainCode(t, err, "WAREHOUSE_NOT_FOUND")
}

func TestGRPOService_Create_WarehouseInactive(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	wh := testWarehouse()
	wh.Deactivate()

	env.warehouses.On("FindByCode", ctx, "WH01").Return(wh, nil)

	_, err := env.service.Create(ctx, testActor(identity.RoleUser), CreateGRPOInput{
		PONumber: "PO-1001", CardCode: "V001", WarehouseCode: "WH01",
	})

	assertDomainCode(t, err, "WAREHOUSE_INACTIVE")
}

// ============================================================================
// Visibility
// ============================================================================

func TestGRPOService_GetByID_ForbiddenForOtherUser(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	owner := uuid.New()
	doc := newDraftGRPO(t, owner)

	env.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)

	_, err := env.service.GetByID(ctx, testActor(identity.RoleUser), doc.ID)

	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestGRPOService_GetByID_QCSeesSubmittedDocuments(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	doc := newDraftGRPO(t, uuid.New())
	_, err := doc.AddItem("ITM-200", "Gadget", "EA", 0,
		decimal.NewFromInt(1), decimal.NewFromInt(1), "", false, false, "")
	require.NoError(t, err)
	require.NoError(t, doc.Submit())

	env.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)

	dto, err := env.service.GetByID(ctx, testActor(identity.RoleQC), doc.ID)

	require.NoError(t, err)
	assert.Equal(t, doc.DocumentNumber, dto.DocumentNumber)
}

func TestGRPOService_GetByID_QCForbiddenForOtherUsersDraft(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	doc := newDraftGRPO(t, uuid.New())

	env.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)

	_, err := env.service.GetByID(ctx, testActor(identity.RoleQC), doc.ID)

	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestGRPOService_List_ScopesQCToOwnPlusSubmitted(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleQC)

	env.repo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		_, creatorScoped := f.Filters["created_by"]
		return f.Filters["reviewer_id"] == actor.ID && !creatorScoped
	})).Return([]receiving.GRPODocument{}, int64(0), nil)

	_, _, err := env.service.List(ctx, actor, shared.Filter{Page: 1, PageSize: 20})

	require.NoError(t, err)
	env.repo.AssertExpectations(t)
}

func TestGRPOService_List_ScopesRegularUserToOwnDocuments(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)

	env.repo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["created_by"] == actor.ID
	})).Return([]receiving.GRPODocument{}, int64(0), nil)

	_, total, err := env.service.List(ctx, actor, shared.Filter{Page: 1, PageSize: 20})

	require.NoError(t, err)
	assert.Zero(t, total)
	env.repo.AssertExpectations(t)
}

func TestGRPOService_List_ManagerSeesAll(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()

	env.repo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		_, scoped := f.Filters["created_by"]
		return !scoped
	})).Return([]receiving.GRPODocument{}, int64(0), nil)

	_, _, err := env.service.List(ctx, testActor(identity.RoleManager), shared.Filter{Page: 1, PageSize: 20})

	require.NoError(t, err)
	env.repo.AssertExpectations(t)
}

// ============================================================================
// Serial recording
// ============================================================================

func TestGRPOService_AddItemSerial_RejectsSerialAlreadyInStock(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	doc := newDraftGRPO(t, actor.ID)
	item := addSerialItem(t, doc, 2)

	env.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
	env.serviceLayer.On("Offline").Return(false)
	env.serviceLayer.On("ValidateSerial", ctx, "WH01", "ITM-100", "SN-1").
		Return(&sap.SerialValidation{SerialNumber: "SN-1"}, nil)

	_, err := env.service.AddItemSerial(ctx, actor, doc.ID, AddSerialInput{
		ItemID: item.ID, SerialNumber: "SN-1",
	})

	assertDomainCode(t, err, "SERIAL_EXISTS")
}

func TestGRPOService_AddItemSerial_AcceptsUnknownSerial(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	doc := newDraftGRPO(t, actor.ID)
	item := addSerialItem(t, doc, 2)

	env.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
	env.serviceLayer.On("Offline").Return(false)
	env.serviceLayer.On("ValidateSerial", ctx, "WH01", "ITM-100", "SN-1").
		Return(nil, sap.ErrSerialNotFound)
	env.repo.On("Save", ctx, doc).Return(nil)

	dto, err := env.service.AddItemSerial(ctx, actor, doc.ID, AddSerialInput{
		ItemID: item.ID, SerialNumber: "SN-1",
	})

	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	require.Len(t, dto.Items[0].Serials, 1)
	assert.Equal(t, "SN-1", dto.Items[0].Serials[0].SerialNumber)
}

func TestGRPOService_AddItemSerial_OfflineSkipsValidation(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	doc := newDraftGRPO(t, actor.ID)
	item := addSerialItem(t, doc, 1)

	env.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
	env.serviceLayer.On("Offline").Return(true)
	env.repo.On("Save", ctx, doc).Return(nil)

	_, err := env.service.AddItemSerial(ctx, actor, doc.ID, AddSerialInput{
		ItemID: item.ID, SerialNumber: "SN-9",
	})

	require.NoError(t, err)
	env.serviceLayer.AssertNotCalled(t, "ValidateSerial", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// ============================================================================
// Review
// ============================================================================

func TestGRPOService_Approve_Success(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	qc := testActor(identity.RoleQC)
	doc := newDraftGRPO(t, uuid.New())
	_, err := doc.AddItem("ITM-200", "Gadget", "EA", 0,
		decimal.NewFromInt(1), decimal.NewFromInt(1), "", false, false, "")
	require.NoError(t, err)
	require.NoError(t, doc.Submit())

	env.repo.On("FindByIDForUpdate", ctx, doc.ID).Return(doc, nil)
	env.repo.On("Save", ctx, doc).Return(nil)

	dto, err := env.service.Approve(ctx, qc, doc.ID, ReviewInput{Notes: "looks good"})

	require.NoError(t, err)
	assert.Equal(t, "qc_approved", dto.Status)
	assert.Equal(t, qc.Name, dto.QCApproverName)
}

func TestGRPOService_Approve_AlreadyApproved(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	qc := testActor(identity.RoleQC)
	doc := newDraftGRPO(t, uuid.New())
	_, err := doc.AddItem("ITM-200", "Gadget", "EA", 0,
		decimal.NewFromInt(1), decimal.NewFromInt(1), "", false, false, "")
	require.NoError(t, err)
	require.NoError(t, doc.Submit())
	require.NoError(t, doc.Approve(uuid.New(), "First QC", ""))

	env.repo.On("FindByIDForUpdate", ctx, doc.ID).Return(doc, nil)

	_, err = env.service.Approve(ctx, qc, doc.ID, ReviewInput{})

	assertDomainCode(t, err, "ALREADY_APPROVED")
}

func TestGRPOService_Reject_RequiresReason(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	qc := testActor(identity.RoleQC)
	doc := newDraftGRPO(t, uuid.New())
	_, err := doc.AddItem("ITM-200", "Gadget", "EA", 0,
		decimal.NewFromInt(1), decimal.NewFromInt(1), "", false, false, "")
	require.NoError(t, err)
	require.NoError(t, doc.Submit())

	env.repo.On("FindByIDForUpdate", ctx, doc.ID).Return(doc, nil)

	_, err = env.service.Reject(ctx, qc, doc.ID, ReviewInput{Notes: "  "})

	assertDomainCode(t, err, "INVALID_REASON")
}

// ============================================================================
// Post
// ============================================================================

func approvedGRPO(t *testing.T, createdBy uuid.UUID) *receiving.GRPODocument {
	t.Helper()
	doc := newDraftGRPO(t, createdBy)
	_, err := doc.AddItem("ITM-200", "Gadget", "EA", 0,
		decimal.NewFromInt(2), decimal.NewFromInt(2), "", false, false, "")
	require.NoError(t, err)
	require.NoError(t, doc.Submit())
	require.NoError(t, doc.Approve(uuid.New(), "QC", ""))
	return doc
}

func TestGRPOService_Post_EnqueuesJob(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	doc := approvedGRPO(t, actor.ID)

	env.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
	env.warehouses.On("FindByCode", ctx, "WH01").Return(testWarehouse(), nil)
	env.repo.On("FindByIDForUpdate", ctx, doc.ID).Return(doc, nil)
	env.jobs.On("FindActiveByDocument", ctx, doc.ID).Return(nil, nil)
	env.jobs.On("Save", ctx, mock.AnythingOfType("*sap.PostingJob")).Return(nil)

	job, err := env.service.Post(ctx, actor, doc.ID)

	require.NoError(t, err)
	assert.Equal(t, string(sap.JobTypeGoodsReceipt), job.JobType)
	assert.Equal(t, doc.DocumentNumber, job.DocumentNumber)
	assert.Equal(t, string(sap.JobStatusPending), job.Status)
	env.jobs.AssertExpectations(t)
}

func TestGRPOService_Post_RejectsDuplicateJob(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	doc := approvedGRPO(t, actor.ID)

	active, err := sap.NewPostingJob(sap.JobTypeGoodsReceipt, sap.DocumentTypeGoodsReceipt,
		doc.ID, doc.DocumentNumber, []byte(`{}`), actor.ID)
	require.NoError(t, err)

	env.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
	env.warehouses.On("FindByCode", ctx, "WH01").Return(testWarehouse(), nil)
	env.repo.On("FindByIDForUpdate", ctx, doc.ID).Return(doc, nil)
	env.jobs.On("FindActiveByDocument", ctx, doc.ID).Return(active, nil)

	_, err = env.service.Post(ctx, actor, doc.ID)

	assertDomainCode(t, err, "JOB_ACTIVE")
}

func TestGRPOService_Post_RejectsUnapprovedDocument(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	doc := newDraftGRPO(t, actor.ID)

	env.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
	env.warehouses.On("FindByCode", ctx, "WH01").Return(testWarehouse(), nil)
	env.repo.On("FindByIDForUpdate", ctx, doc.ID).Return(doc, nil)

	_, err := env.service.Post(ctx, actor, doc.ID)

	assertDomainCode(t, err, "INVALID_STATUS")
}

// ============================================================================
// Draft editing
// ============================================================================

func TestGRPOService_Delete_OnlyDrafts(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	doc := newDraftGRPO(t, actor.ID)
	_, err := doc.AddItem("ITM-200", "Gadget", "EA", 0,
		decimal.NewFromInt(1), decimal.NewFromInt(1), "", false, false, "")
	require.NoError(t, err)
	require.NoError(t, doc.Submit())

	env.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)

	err = env.service.Delete(ctx, actor, doc.ID)

	assertDomainCode(t, err, "INVALID_STATUS")
}

func TestGRPOService_UpdateItemQuantity_Success(t *testing.T) {
	env := newGRPOTestEnv()
	ctx := context.Background()
	actor := testActor(identity.RoleUser)
	doc := newDraftGRPO(t, actor.ID)
	item, err := doc.AddItem("ITM-200", "Gadget", "EA", 0,
		decimal.NewFromInt(5), decimal.NewFromInt(2), "", false, false, "")
	require.NoError(t, err)

	env.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
	env.repo.On("Save", ctx, doc).Return(nil)

	dto, err := env.service.UpdateItemQuantity(ctx, actor, doc.ID, item.ID, decimal.NewFromInt(4))

	require.NoError(t, err)
	assert.Equal(t, "4", dto.Items[0].ReceivedQuantity.String())
}
