// Package worker runs the background posting queue: it claims due posting
// jobs, pushes the snapshotted payloads into the SAP Service Layer, and
// settles the originating documents. It also performs queue maintenance
// (stale claim recovery, completed-job and empty-draft cleanup).
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/posting"
	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/domain/transfer"
	"github.com/wms/backend/internal/infrastructure/config"
)

// staleClaimAfter is how long a job may sit in processing before it is
// treated as orphaned by a crashed worker and requeued.
const staleClaimAfter = 10 * time.Minute

// Worker polls the posting queue and executes due jobs against SAP.
// Claims use SELECT ... FOR UPDATE SKIP LOCKED, so any number of workers
// can run concurrently without double-posting.
type Worker struct {
	jobs         sap.PostingJobRepository
	transfers    transfer.Repository
	scope        posting.TransactionScope
	serviceLayer sap.ServiceLayer
	cfg          config.WorkerConfig
	logger       *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	lastPoll time.Time
}

// New creates a posting queue worker
func New(
	jobs sap.PostingJobRepository,
	transfers transfer.Repository,
	scope posting.TransactionScope,
	serviceLayer sap.ServiceLayer,
	cfg config.WorkerConfig,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		jobs:         jobs,
		transfers:    transfers,
		scope:        scope,
		serviceLayer: serviceLayer,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start starts the poll and maintenance loops
func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.pollLoop(ctx)

	if w.cfg.CleanupEnabled {
		w.wg.Add(1)
		go w.maintenanceLoop(ctx)
	}

	w.logger.Info("posting worker started",
		zap.Duration("poll_interval", w.cfg.PollInterval),
		zap.Int("batch_size", w.cfg.BatchSize),
		zap.Bool("sap_offline", w.serviceLayer.Offline()),
	)

	return nil
}

// LastPoll reports when the worker last claimed a batch. Zero until the
// first tick.
func (w *Worker) LastPoll() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastPoll
}

// Stop gracefully stops the worker, waiting for in-flight jobs
func (w *Worker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("posting worker stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pollLoop claims and executes due jobs on every tick
func (w *Worker) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch claims one batch of due jobs and executes them sequentially.
// Exported so the server can trigger an immediate drain in tests and
// health-check tooling.
func (w *Worker) ProcessBatch(ctx context.Context) {
	w.mu.Lock()
	w.lastPoll = time.Now()
	w.mu.Unlock()

	due, err := w.jobs.FindDue(ctx, time.Now(), w.cfg.BatchSize)
	if err != nil {
		w.logger.Error("failed to find due posting jobs", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}

	ids := make([]uuid.UUID, len(due))
	for i, job := range due {
		ids[i] = job.ID
	}

	claimed, err := w.jobs.MarkProcessing(ctx, ids)
	if err != nil {
		w.logger.Error("failed to claim posting jobs", zap.Error(err))
		return
	}

	for _, job := range claimed {
		w.processJob(ctx, job)
	}
}

// processJob executes one claimed job and settles its outcome
func (w *Worker) processJob(ctx context.Context, job *sap.PostingJob) {
	w.logger.Info("posting document to SAP",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.JobType)),
		zap.String("document_number", job.DocumentNumber),
		zap.Int("attempt", job.RetryCount+1),
	)

	result, err := w.execute(ctx, job)
	if err != nil {
		w.settleFailure(ctx, job, err)
		return
	}
	w.settleSuccess(ctx, job, result)
}

// execute dispatches the job payload to the matching Service Layer call
func (w *Worker) execute(ctx context.Context, job *sap.PostingJob) (*sap.PostResult, error) {
	switch job.JobType {
	case sap.JobTypeGoodsReceipt:
		var doc sap.GoodsReceiptDocument
		if err := json.Unmarshal(job.Payload, &doc); err != nil {
			return nil, fmt.Errorf("%w: corrupt goods receipt payload: %v", errBadPayload, err)
		}
		return w.serviceLayer.PostGoodsReceipt(ctx, &doc)

	case sap.JobTypeSerialTransfer:
		var doc sap.StockTransferDocument
		if err := json.Unmarshal(job.Payload, &doc); err != nil {
			return nil, fmt.Errorf("%w: corrupt stock transfer payload: %v", errBadPayload, err)
		}
		return w.serviceLayer.PostStockTransfer(ctx, &doc)

	case sap.JobTypePickList:
		var doc sap.PickListDocument
		if err := json.Unmarshal(job.Payload, &doc); err != nil {
			return nil, fmt.Errorf("%w: corrupt pick list payload: %v", errBadPayload, err)
		}
		return w.serviceLayer.PostPickList(ctx, &doc)

	case sap.JobTypeInvoice:
		var payload posting.InvoicePayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return nil, fmt.Errorf("%w: corrupt invoice payload: %v", errBadPayload, err)
		}
		if payload.AsDraft {
			if payload.Draft == nil {
				return nil, fmt.Errorf("%w: invoice payload missing draft document", errBadPayload)
			}
			return w.serviceLayer.PostInvoiceDraft(ctx, payload.Draft)
		}
		if payload.Invoice == nil {
			return nil, fmt.Errorf("%w: invoice payload missing invoice document", errBadPayload)
		}
		return w.serviceLayer.PostInvoice(ctx, payload.Invoice)

	default:
		return nil, fmt.Errorf("%w: unknown job type %q", errBadPayload, job.JobType)
	}
}

// errBadPayload marks failures that no retry can fix
var errBadPayload = errors.New("unprocessable posting job")

// settleSuccess completes the job and marks the document posted in one
// transaction. A failed document transition is logged but does not roll the
// job back: the SAP document already exists, and replaying the job would
// post it twice.
func (w *Worker) settleSuccess(ctx context.Context, job *sap.PostingJob, result *sap.PostResult) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		resultJSON = nil
	}
	sapDocNumber := result.DocumentNumber()

	err = w.scope.Execute(ctx, func(repos posting.Repositories) error {
		job.Complete(sapDocNumber, resultJSON)

		if err := w.markDocumentPosted(ctx, repos, job, result); err != nil {
			w.logger.Error("posted to SAP but failed to update document",
				zap.String("job_id", job.ID.String()),
				zap.String("document_id", job.DocumentID.String()),
				zap.String("sap_doc_number", sapDocNumber),
				zap.Error(err),
			)
		}

		return repos.Jobs().Update(ctx, job)
	})
	if err != nil {
		w.logger.Error("failed to complete posting job",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		return
	}

	w.logger.Info("document posted to SAP",
		zap.String("job_id", job.ID.String()),
		zap.String("document_number", job.DocumentNumber),
		zap.String("sap_doc_number", sapDocNumber),
	)
}

// markDocumentPosted applies the SAP result to the originating document
func (w *Worker) markDocumentPosted(ctx context.Context, repos posting.Repositories, job *sap.PostingJob, result *sap.PostResult) error {
	sapDocNumber := result.DocumentNumber()

	switch job.DocumentType {
	case sap.DocumentTypeGoodsReceipt:
		doc, err := repos.GoodsReceipts().FindByIDForUpdate(ctx, job.DocumentID)
		if err != nil {
			return err
		}
		if err := doc.MarkPosted(sapDocNumber, result.DocEntry); err != nil {
			return err
		}
		return repos.GoodsReceipts().Save(ctx, doc)

	case sap.DocumentTypeSerialTransfer:
		tr, err := repos.Transfers().FindByIDForUpdate(ctx, job.DocumentID)
		if err != nil {
			return err
		}
		if err := tr.MarkPosted(sapDocNumber, result.DocEntry); err != nil {
			return err
		}
		return repos.Transfers().Save(ctx, tr)

	case sap.DocumentTypePickList:
		pl, err := repos.PickLists().FindByIDForUpdate(ctx, job.DocumentID)
		if err != nil {
			return err
		}
		if err := pl.MarkPosted(result.AbsoluteEntry); err != nil {
			return err
		}
		return repos.PickLists().Save(ctx, pl)

	case sap.DocumentTypeInvoice:
		inv, err := repos.Invoices().FindByIDForUpdate(ctx, job.DocumentID)
		if err != nil {
			return err
		}
		asDraft := invoicePostedAsDraft(job.Payload)
		if err := inv.MarkPosted(sapDocNumber, result.DocEntry, asDraft); err != nil {
			return err
		}
		return repos.Invoices().Save(ctx, inv)

	default:
		return fmt.Errorf("unknown document type %q", job.DocumentType)
	}
}

// invoicePostedAsDraft reads the posting mode back out of the job payload
func invoicePostedAsDraft(payload []byte) bool {
	var p posting.InvoicePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return false
	}
	return p.AsDraft
}

// settleFailure records a failed attempt. Transient errors schedule a retry
// with backoff; rejections and corrupt payloads dead-letter immediately.
// When the job dead-letters, the document is reverted so it can be corrected
// and resubmitted.
func (w *Worker) settleFailure(ctx context.Context, job *sap.PostingJob, postErr error) {
	if w.cfg.MaxRetries > 0 {
		job.MaxRetries = w.cfg.MaxRetries
	}

	msg := postErr.Error()
	permanent := errors.Is(postErr, sap.ErrRejected) || errors.Is(postErr, errBadPayload)
	if permanent {
		job.FailPermanently(msg)
	} else {
		job.Fail(msg)
	}

	err := w.scope.Execute(ctx, func(repos posting.Repositories) error {
		if err := w.recordDocumentFailure(ctx, repos, job, msg); err != nil {
			w.logger.Error("failed to record posting failure on document",
				zap.String("job_id", job.ID.String()),
				zap.String("document_id", job.DocumentID.String()),
				zap.Error(err),
			)
		}
		return repos.Jobs().Update(ctx, job)
	})
	if err != nil {
		w.logger.Error("failed to update posting job after failure",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		return
	}

	if job.IsDead() {
		w.logger.Warn("posting job dead-lettered",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.JobType)),
			zap.String("document_number", job.DocumentNumber),
			zap.Int("retry_count", job.RetryCount),
			zap.String("error", msg),
		)
		return
	}

	w.logger.Warn("posting attempt failed, retry scheduled",
		zap.String("job_id", job.ID.String()),
		zap.String("document_number", job.DocumentNumber),
		zap.Int("retry_count", job.RetryCount),
		zap.Timep("next_retry_at", job.NextRetryAt),
		zap.String("error", msg),
	)
}

// recordDocumentFailure reflects the failure on the originating document.
// While retries remain, the document keeps its approved state with the error
// noted. Once the job dead-letters, transfers are rejected back to the floor
// and invoices park in failed; receipts and pick lists stay approved so a
// manual queue retry can pick them up unchanged.
func (w *Worker) recordDocumentFailure(ctx context.Context, repos posting.Repositories, job *sap.PostingJob, msg string) error {
	dead := job.IsDead()

	switch job.DocumentType {
	case sap.DocumentTypeGoodsReceipt:
		doc, err := repos.GoodsReceipts().FindByIDForUpdate(ctx, job.DocumentID)
		if err != nil {
			return err
		}
		doc.RecordPostingFailure(msg)
		return repos.GoodsReceipts().Save(ctx, doc)

	case sap.DocumentTypeSerialTransfer:
		tr, err := repos.Transfers().FindByIDForUpdate(ctx, job.DocumentID)
		if err != nil {
			return err
		}
		if dead {
			if err := tr.MarkPostingFailed(msg); err != nil {
				return err
			}
		} else {
			tr.RecordPostingFailure(msg)
		}
		return repos.Transfers().Save(ctx, tr)

	case sap.DocumentTypePickList:
		pl, err := repos.PickLists().FindByIDForUpdate(ctx, job.DocumentID)
		if err != nil {
			return err
		}
		pl.RecordPostingFailure(msg)
		return repos.PickLists().Save(ctx, pl)

	case sap.DocumentTypeInvoice:
		inv, err := repos.Invoices().FindByIDForUpdate(ctx, job.DocumentID)
		if err != nil {
			return err
		}
		if dead {
			if err := inv.MarkPostingFailed(msg); err != nil {
				return err
			}
		} else {
			inv.RecordPostingFailure(msg)
		}
		return repos.Invoices().Save(ctx, inv)

	default:
		return fmt.Errorf("unknown document type %q", job.DocumentType)
	}
}

// ---------------------------------------------------------------------------
// Maintenance
// ---------------------------------------------------------------------------

// maintenanceLoop periodically recovers stale claims and purges old rows
func (w *Worker) maintenanceLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunMaintenance(ctx)
		}
	}
}

// RunMaintenance performs one maintenance pass
func (w *Worker) RunMaintenance(ctx context.Context) {
	requeued, err := w.jobs.RequeueStaleProcessing(ctx, time.Now().Add(-staleClaimAfter))
	if err != nil {
		w.logger.Error("failed to requeue stale posting jobs", zap.Error(err))
	} else if requeued > 0 {
		w.logger.Warn("requeued stale posting jobs", zap.Int64("count", requeued))
	}

	if w.cfg.CompletedRetention > 0 {
		deleted, err := w.jobs.DeleteCompletedOlderThan(ctx, time.Now().Add(-w.cfg.CompletedRetention))
		if err != nil {
			w.logger.Error("failed to purge completed posting jobs", zap.Error(err))
		} else if deleted > 0 {
			w.logger.Info("purged completed posting jobs", zap.Int64("deleted", deleted))
		}
	}

	if w.cfg.EmptyDraftRetention > 0 {
		deleted, err := w.transfers.DeleteEmptyDraftsOlderThan(ctx, time.Now().Add(-w.cfg.EmptyDraftRetention))
		if err != nil {
			w.logger.Error("failed to purge empty transfer drafts", zap.Error(err))
		} else if deleted > 0 {
			w.logger.Info("purged empty transfer drafts", zap.Int64("deleted", deleted))
		}
	}
}
