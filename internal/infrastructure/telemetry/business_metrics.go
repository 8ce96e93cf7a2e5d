// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the warehouse backend.
// It tracks document activity and the health of the SAP posting queue.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	documentCreatedTotal   *Counter
	documentSubmittedTotal *Counter
	documentPostedTotal    *Counter
	postingFailureTotal    *Counter

	// Gauge metrics (point-in-time values)
	postingQueueDepth *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	queueProvider PostingQueueMetricsProvider
}

// PostingQueueMetricsProvider provides posting queue data for periodic metrics
// collection. This interface allows the telemetry layer to query queue state
// without depending on the sap domain directly.
type PostingQueueMetricsProvider interface {
	// QueueDepthByStatus returns the number of posting jobs per status.
	QueueDepthByStatus(ctx context.Context) (map[string]int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 1 minute
	QueueProvider   PostingQueueMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		queueProvider: cfg.QueueProvider,
	}

	// Initialize counter metrics
	var err error

	// Document metrics
	bm.documentCreatedTotal, err = NewCounter(
		cfg.Meter,
		"wms_document_created_total",
		"Total number of warehouse documents created",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	bm.documentSubmittedTotal, err = NewCounter(
		cfg.Meter,
		"wms_document_submitted_total",
		"Total number of documents submitted for QC",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	bm.documentPostedTotal, err = NewCounter(
		cfg.Meter,
		"wms_document_posted_total",
		"Total number of documents posted to SAP",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	// Posting queue metrics
	bm.postingFailureTotal, err = NewCounter(
		cfg.Meter,
		"wms_posting_failure_total",
		"Total number of failed posting attempts",
		"{attempts}",
	)
	if err != nil {
		return nil, err
	}

	bm.postingQueueDepth, err = NewGauge(
		cfg.Meter,
		"wms_posting_queue_depth",
		"Current number of posting jobs per status",
		"{jobs}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Document Metrics
// =============================================================================

// RecordDocumentCreated records a document creation event.
// This should be called from the application layer when a document is created.
func (bm *BusinessMetrics) RecordDocumentCreated(ctx context.Context, documentType string) {
	bm.documentCreatedTotal.Inc(ctx,
		AttrDocumentType.String(documentType),
	)
}

// RecordDocumentSubmitted records a document submission event.
func (bm *BusinessMetrics) RecordDocumentSubmitted(ctx context.Context, documentType string) {
	bm.documentSubmittedTotal.Inc(ctx,
		AttrDocumentType.String(documentType),
	)
}

// RecordDocumentPosted records a successful SAP posting.
func (bm *BusinessMetrics) RecordDocumentPosted(ctx context.Context, documentType string) {
	bm.documentPostedTotal.Inc(ctx,
		AttrDocumentType.String(documentType),
	)
}

// =============================================================================
// Posting Queue Metrics
// =============================================================================

// RecordPostingFailure records a failed posting attempt. The permanent flag
// distinguishes dead-lettered jobs from retryable failures.
func (bm *BusinessMetrics) RecordPostingFailure(ctx context.Context, documentType string, permanent bool) {
	status := "retrying"
	if permanent {
		status = "failed"
	}
	bm.postingFailureTotal.Inc(ctx,
		AttrDocumentType.String(documentType),
		AttrJobStatus.String(status),
	)
}

// RecordQueueDepth records the current queue depth for a job status.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordQueueDepth(ctx context.Context, status string, depth int64) {
	bm.postingQueueDepth.Record(ctx, depth,
		AttrJobStatus.String(status),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects posting queue metrics every interval (default: 1 minute).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectQueueMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectQueueMetrics(ctx)
		}
	}
}

// collectQueueMetrics collects posting queue gauge metrics.
func (bm *BusinessMetrics) collectQueueMetrics(ctx context.Context) {
	if bm.queueProvider == nil {
		bm.logger.Debug("No queue provider configured, skipping queue metrics collection")
		return
	}

	depths, err := bm.queueProvider.QueueDepthByStatus(ctx)
	if err != nil {
		bm.logger.Error("Failed to collect posting queue metrics", zap.Error(err))
		return
	}

	for status, depth := range depths {
		bm.RecordQueueDepth(ctx, status, depth)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
