package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormPostingQueueMetricsProvider implements PostingQueueMetricsProvider using GORM.
// It queries the posting_jobs table directly for efficient aggregation.
type GormPostingQueueMetricsProvider struct {
	db *gorm.DB
}

// NewGormPostingQueueMetricsProvider creates a new GormPostingQueueMetricsProvider.
func NewGormPostingQueueMetricsProvider(db *gorm.DB) *GormPostingQueueMetricsProvider {
	return &GormPostingQueueMetricsProvider{db: db}
}

// QueueDepthByStatus returns the number of posting jobs grouped by status.
func (p *GormPostingQueueMetricsProvider) QueueDepthByStatus(ctx context.Context) (map[string]int64, error) {
	var results []struct {
		Status string
		Count  int64
	}

	err := p.db.WithContext(ctx).
		Table("posting_jobs").
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	depths := make(map[string]int64, len(results))
	for _, r := range results {
		depths[r.Status] = r.Count
	}

	return depths, nil
}
