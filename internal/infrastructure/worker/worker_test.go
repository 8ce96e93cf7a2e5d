package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/posting"
	"github.com/wms/backend/internal/domain/invoicing"
	"github.com/wms/backend/internal/domain/picking"
	"github.com/wms/backend/internal/domain/receiving"
	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/transfer"
	"github.com/wms/backend/internal/infrastructure/config"
)

type workerFixture struct {
	jobs         *MockJobRepository
	serviceLayer *MockServiceLayer
	grpos        *MockGRPORepository
	transfers    *MockTransferRepository
	pickLists    *MockPickListRepository
	invoices     *MockInvoiceRepository
	worker       *Worker
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()

	f := &workerFixture{
		jobs:         new(MockJobRepository),
		serviceLayer: new(MockServiceLayer),
		grpos:        new(MockGRPORepository),
		transfers:    new(MockTransferRepository),
		pickLists:    new(MockPickListRepository),
		invoices:     new(MockInvoiceRepository),
	}

	scope := &stubScope{repos: stubRepositories{
		grpos:     f.grpos,
		transfers: f.transfers,
		pickLists: f.pickLists,
		invoices:  f.invoices,
		jobs:      f.jobs,
	}}

	cfg := config.WorkerConfig{
		Enabled:      true,
		PollInterval: time.Second,
		BatchSize:    10,
	}

	f.worker = New(f.jobs, f.transfers, scope, f.serviceLayer, cfg, zap.NewNop())
	return f
}

// claimJobs wires FindDue and MarkProcessing to hand the given jobs to the
// worker, starting them the way the SKIP LOCKED claim does.
func (f *workerFixture) claimJobs(t *testing.T, jobs ...*sap.PostingJob) {
	t.Helper()

	f.jobs.On("FindDue", mock.Anything, mock.Anything, 10).Return(jobs, nil)
	f.jobs.On("MarkProcessing", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			for _, j := range jobs {
				require.NoError(t, j.Start())
			}
		}).
		Return(jobs, nil)
}

func approvedGRPO(t *testing.T) *receiving.GRPODocument {
	t.Helper()

	doc, err := receiving.NewGRPODocument("GRPO-00042", "PO-1001", 801, "V0001", "Acme Supplies", "WH01", uuid.New(), "Alice")
	require.NoError(t, err)
	_, err = doc.AddItem("ITM-100", "Widget", "EA", 0, decimal.NewFromInt(5), decimal.NewFromInt(5), "BIN-A1", false, false, "")
	require.NoError(t, err)
	require.NoError(t, doc.Submit())
	require.NoError(t, doc.Approve(uuid.New(), "Bob", ""))
	return doc
}

func approvedTransfer(t *testing.T) *transfer.SerialItemTransfer {
	t.Helper()

	tr, err := transfer.NewSerialItemTransfer("TRF-00017", "WH01", "WH02", uuid.New(), "Alice")
	require.NoError(t, err)
	_, err = tr.AddSerialItem("ITM-200", "Router", "SN-0001", transfer.ItemValidationValidated, "")
	require.NoError(t, err)
	require.NoError(t, tr.Submit())
	require.NoError(t, tr.Approve(uuid.New(), "Bob", ""))
	return tr
}

func approvedPickList(t *testing.T) *picking.PickList {
	t.Helper()

	p, err := picking.NewPickList("PICK-00009", 3001, 10045, "C0001", "Contoso", "WH01", uuid.New(), "Alice")
	require.NoError(t, err)
	line, err := p.AddLine(0, "ITM-300", "Switch", decimal.NewFromInt(3), "WH01", false)
	require.NoError(t, err)
	require.NoError(t, p.SetPickedQuantity(line.ID, decimal.NewFromInt(3)))
	require.NoError(t, p.Submit())
	require.NoError(t, p.Approve(uuid.New(), "Bob", ""))
	return p
}

func validatedInvoice(t *testing.T) *invoicing.SalesOrderInvoice {
	t.Helper()

	inv, err := invoicing.NewSalesOrderInvoice("INV-00005", 10045, 77, 3001, "C0001", "Contoso", "1 Main St", 4, 2, uuid.New(), "Alice")
	require.NoError(t, err)
	line, err := inv.AddLine(0, "ITM-300", "Switch", decimal.NewFromInt(2), "WH01", false)
	require.NoError(t, err)
	require.NoError(t, inv.SetValidatedQuantity(line.ID, decimal.NewFromInt(2)))
	require.NoError(t, inv.Validate())
	return inv
}

func newJob(t *testing.T, jobType sap.JobType, documentType string, documentID uuid.UUID, documentNumber string, payload any) *sap.PostingJob {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	job, err := sap.NewPostingJob(jobType, documentType, documentID, documentNumber, body, uuid.New())
	require.NoError(t, err)
	return job
}

func TestWorker_ProcessBatch_PostsGoodsReceipt(t *testing.T) {
	f := newWorkerFixture(t)
	doc := approvedGRPO(t)
	job := newJob(t, sap.JobTypeGoodsReceipt, sap.DocumentTypeGoodsReceipt, doc.ID, doc.DocumentNumber, posting.BuildGoodsReceipt(doc, 2))

	f.claimJobs(t, job)
	f.serviceLayer.On("PostGoodsReceipt", mock.Anything, mock.Anything).
		Return(&sap.PostResult{DocEntry: 55, DocNum: 9001}, nil)
	f.grpos.On("FindByIDForUpdate", mock.Anything, doc.ID).Return(doc, nil)
	f.grpos.On("Save", mock.Anything, doc).Return(nil)
	f.jobs.On("Update", mock.Anything, job).Return(nil)

	f.worker.ProcessBatch(context.Background())

	assert.Equal(t, sap.JobStatusCompleted, job.Status)
	assert.Equal(t, "9001", job.SAPDocNumber)
	assert.NotEmpty(t, job.Result)
	assert.Equal(t, shared.DocumentStatusPosted, doc.Status)
	assert.Equal(t, "9001", doc.SAPDocNumber)
	assert.Equal(t, 55, doc.SAPDocEntry)
	f.serviceLayer.AssertExpectations(t)
	f.grpos.AssertExpectations(t)
	f.jobs.AssertExpectations(t)
}

func TestWorker_ProcessBatch_PostsPickList(t *testing.T) {
	f := newWorkerFixture(t)
	p := approvedPickList(t)
	job := newJob(t, sap.JobTypePickList, sap.DocumentTypePickList, p.ID, p.PickNumber, posting.BuildPickList(p))

	f.claimJobs(t, job)
	f.serviceLayer.On("PostPickList", mock.Anything, mock.Anything).
		Return(&sap.PostResult{AbsoluteEntry: 61}, nil)
	f.pickLists.On("FindByIDForUpdate", mock.Anything, p.ID).Return(p, nil)
	f.pickLists.On("Save", mock.Anything, p).Return(nil)
	f.jobs.On("Update", mock.Anything, job).Return(nil)

	f.worker.ProcessBatch(context.Background())

	assert.Equal(t, sap.JobStatusCompleted, job.Status)
	assert.Equal(t, "61", job.SAPDocNumber)
	assert.Equal(t, shared.DocumentStatusPosted, p.Status)
	assert.Equal(t, 61, p.SAPAbsoluteEntry)
	f.pickLists.AssertExpectations(t)
}

func TestWorker_ProcessBatch_PostsInvoiceDraft(t *testing.T) {
	f := newWorkerFixture(t)
	inv := validatedInvoice(t)
	job := newJob(t, sap.JobTypeInvoice, sap.DocumentTypeInvoice, inv.ID, inv.InvoiceNumber, posting.BuildInvoicePayload(inv, true))

	f.claimJobs(t, job)
	f.serviceLayer.On("PostInvoiceDraft", mock.Anything, mock.Anything).
		Return(&sap.PostResult{DocEntry: 88, DocNum: 7050}, nil)
	f.invoices.On("FindByIDForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	f.invoices.On("Save", mock.Anything, inv).Return(nil)
	f.jobs.On("Update", mock.Anything, job).Return(nil)

	f.worker.ProcessBatch(context.Background())

	assert.Equal(t, sap.JobStatusCompleted, job.Status)
	assert.Equal(t, invoicing.InvoiceStatusPosted, inv.Status)
	assert.True(t, inv.PostedAsDraft)
	f.serviceLayer.AssertNotCalled(t, "PostInvoice", mock.Anything, mock.Anything)
	f.invoices.AssertExpectations(t)
}

func TestWorker_ProcessBatch_TransientFailureSchedulesRetry(t *testing.T) {
	f := newWorkerFixture(t)
	tr := approvedTransfer(t)
	job := newJob(t, sap.JobTypeSerialTransfer, sap.DocumentTypeSerialTransfer, tr.ID, tr.TransferNumber,
		posting.BuildStockTransfer(tr, 2, map[string]int{"SN-0001": 12}))

	f.claimJobs(t, job)
	f.serviceLayer.On("PostStockTransfer", mock.Anything, mock.Anything).
		Return(nil, sap.ErrUnavailable)
	f.transfers.On("FindByIDForUpdate", mock.Anything, tr.ID).Return(tr, nil)
	f.transfers.On("Save", mock.Anything, tr).Return(nil)
	f.jobs.On("Update", mock.Anything, job).Return(nil)

	f.worker.ProcessBatch(context.Background())

	assert.Equal(t, sap.JobStatusRetrying, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	require.NotNil(t, job.NextRetryAt)
	assert.True(t, job.NextRetryAt.After(time.Now()))

	// the transfer stays approved while retries remain
	assert.Equal(t, shared.DocumentStatusQCApproved, tr.Status)
	assert.Contains(t, tr.PostingError, "unavailable")
	f.transfers.AssertExpectations(t)
}

func TestWorker_ProcessBatch_RejectedInvoiceDeadLetters(t *testing.T) {
	f := newWorkerFixture(t)
	inv := validatedInvoice(t)
	job := newJob(t, sap.JobTypeInvoice, sap.DocumentTypeInvoice, inv.ID, inv.InvoiceNumber, posting.BuildInvoicePayload(inv, false))

	f.claimJobs(t, job)
	f.serviceLayer.On("PostInvoice", mock.Anything, mock.Anything).
		Return(nil, sap.ErrRejected)
	f.invoices.On("FindByIDForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	f.invoices.On("Save", mock.Anything, inv).Return(nil)
	f.jobs.On("Update", mock.Anything, job).Return(nil)

	f.worker.ProcessBatch(context.Background())

	// rejections do not burn through retries one by one
	assert.Equal(t, sap.JobStatusFailed, job.Status)
	assert.True(t, job.IsDead())
	assert.Nil(t, job.NextRetryAt)
	assert.Equal(t, invoicing.InvoiceStatusFailed, inv.Status)
	f.invoices.AssertExpectations(t)
}

func TestWorker_ProcessBatch_ExhaustedRetriesRejectTransfer(t *testing.T) {
	f := newWorkerFixture(t)
	tr := approvedTransfer(t)
	job := newJob(t, sap.JobTypeSerialTransfer, sap.DocumentTypeSerialTransfer, tr.ID, tr.TransferNumber,
		posting.BuildStockTransfer(tr, 2, map[string]int{"SN-0001": 12}))
	job.RetryCount = job.MaxRetries - 1

	f.claimJobs(t, job)
	f.serviceLayer.On("PostStockTransfer", mock.Anything, mock.Anything).
		Return(nil, sap.ErrUnavailable)
	f.transfers.On("FindByIDForUpdate", mock.Anything, tr.ID).Return(tr, nil)
	f.transfers.On("Save", mock.Anything, tr).Return(nil)
	f.jobs.On("Update", mock.Anything, job).Return(nil)

	f.worker.ProcessBatch(context.Background())

	assert.True(t, job.IsDead())

	// dead-lettering sends the transfer back to the floor for correction
	assert.Equal(t, shared.DocumentStatusRejected, tr.Status)
	for _, item := range tr.Items {
		assert.Equal(t, transfer.ItemQCPending, item.QCStatus)
	}
	f.transfers.AssertExpectations(t)
}

func TestWorker_ProcessBatch_CorruptPayloadDeadLetters(t *testing.T) {
	f := newWorkerFixture(t)
	doc := approvedGRPO(t)

	job, err := sap.NewPostingJob(sap.JobTypeGoodsReceipt, sap.DocumentTypeGoodsReceipt, doc.ID, doc.DocumentNumber, []byte("{"), uuid.New())
	require.NoError(t, err)

	f.claimJobs(t, job)
	f.grpos.On("FindByIDForUpdate", mock.Anything, doc.ID).Return(doc, nil)
	f.grpos.On("Save", mock.Anything, doc).Return(nil)
	f.jobs.On("Update", mock.Anything, job).Return(nil)

	f.worker.ProcessBatch(context.Background())

	assert.True(t, job.IsDead())
	assert.Contains(t, job.ErrorMessage, "unprocessable")
	f.serviceLayer.AssertNotCalled(t, "PostGoodsReceipt", mock.Anything, mock.Anything)

	// receipts stay approved so a manual queue retry can pick them up
	assert.Equal(t, shared.DocumentStatusQCApproved, doc.Status)
	assert.NotEmpty(t, doc.PostingError)
}

func TestWorker_ProcessBatch_NoDueJobs(t *testing.T) {
	f := newWorkerFixture(t)
	f.jobs.On("FindDue", mock.Anything, mock.Anything, 10).Return([]*sap.PostingJob{}, nil)

	f.worker.ProcessBatch(context.Background())

	f.jobs.AssertNotCalled(t, "MarkProcessing", mock.Anything, mock.Anything)
}

func TestWorker_RunMaintenance(t *testing.T) {
	f := newWorkerFixture(t)
	f.worker.cfg.CompletedRetention = 7 * 24 * time.Hour
	f.worker.cfg.EmptyDraftRetention = 24 * time.Hour

	f.jobs.On("RequeueStaleProcessing", mock.Anything, mock.Anything).Return(int64(2), nil)
	f.jobs.On("DeleteCompletedOlderThan", mock.Anything, mock.Anything).Return(int64(5), nil)
	f.transfers.On("DeleteEmptyDraftsOlderThan", mock.Anything, mock.Anything).Return(int64(1), nil)

	f.worker.RunMaintenance(context.Background())

	f.jobs.AssertExpectations(t)
	f.transfers.AssertExpectations(t)
}

func TestWorker_RunMaintenance_RetentionDisabled(t *testing.T) {
	f := newWorkerFixture(t)

	f.jobs.On("RequeueStaleProcessing", mock.Anything, mock.Anything).Return(int64(0), nil)

	f.worker.RunMaintenance(context.Background())

	f.jobs.AssertNotCalled(t, "DeleteCompletedOlderThan", mock.Anything, mock.Anything)
	f.transfers.AssertNotCalled(t, "DeleteEmptyDraftsOlderThan", mock.Anything, mock.Anything)
}

func TestWorker_StartStop(t *testing.T) {
	f := newWorkerFixture(t)
	f.jobs.On("FindDue", mock.Anything, mock.Anything, 10).Return([]*sap.PostingJob{}, nil).Maybe()

	require.NoError(t, f.worker.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.worker.Stop(ctx))
}
