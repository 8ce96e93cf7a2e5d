package telemetry

import (
	"context"
	"strings"

	"github.com/wms/backend/internal/domain/shared"
)

// MetricsEventHandler feeds document lifecycle events into BusinessMetrics.
// It subscribes to all events and matches on the "<document>.<action>"
// naming convention; events outside that convention are ignored.
type MetricsEventHandler struct {
	metrics *BusinessMetrics
}

// NewMetricsEventHandler creates a handler that records document metrics
func NewMetricsEventHandler(metrics *BusinessMetrics) *MetricsEventHandler {
	return &MetricsEventHandler{metrics: metrics}
}

// Handle records the metric matching the event's lifecycle action
func (h *MetricsEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	docType, action, ok := strings.Cut(event.EventType(), ".")
	if !ok {
		return nil
	}

	switch action {
	case "created":
		h.metrics.RecordDocumentCreated(ctx, docType)
	case "submitted":
		h.metrics.RecordDocumentSubmitted(ctx, docType)
	case "posted":
		h.metrics.RecordDocumentPosted(ctx, docType)
	case "posting_failed":
		h.metrics.RecordPostingFailure(ctx, docType, false)
	}
	return nil
}

// EventTypes returns nil so the handler receives all events
func (h *MetricsEventHandler) EventTypes() []string {
	return nil
}
