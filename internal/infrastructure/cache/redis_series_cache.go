package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/invoicing"
	"github.com/wms/backend/internal/domain/sap"
)

// seriesCacheKey holds the full sales order series list as one JSON blob.
// The list is small (a handful of series per company database) and changes
// only when SAP numbering is reconfigured.
const seriesCacheKey = "sap:so_series"

// RedisSeriesCache caches the sales order series list so the scanner UI does
// not hit the Service Layer on every lookup
type RedisSeriesCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// RedisSeriesCacheOption is a functional option for configuring the cache
type RedisSeriesCacheOption func(*RedisSeriesCache)

// WithSeriesCacheLogger sets the logger for the cache
func WithSeriesCacheLogger(logger *zap.Logger) RedisSeriesCacheOption {
	return func(c *RedisSeriesCache) {
		c.logger = logger
	}
}

// NewRedisSeriesCache creates a series cache on an existing Redis client.
// The caller retains ownership of the client.
func NewRedisSeriesCache(client *redis.Client, ttl time.Duration, opts ...RedisSeriesCacheOption) *RedisSeriesCache {
	cache := &RedisSeriesCache{
		client: client,
		ttl:    ttl,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// Get returns the cached series list, or nil on a miss
func (c *RedisSeriesCache) Get(ctx context.Context) ([]sap.SalesOrderSeries, error) {
	data, err := c.client.Get(ctx, seriesCacheKey).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss for sales order series")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get series from cache: %w", err)
	}

	var series []sap.SalesOrderSeries
	if err := json.Unmarshal(data, &series); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it
		c.logger.Warn("Failed to unmarshal cached series list", zap.Error(err))
		return nil, nil
	}

	return series, nil
}

// Set caches the series list with the configured TTL
func (c *RedisSeriesCache) Set(ctx context.Context, series []sap.SalesOrderSeries) error {
	data, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("failed to marshal series list: %w", err)
	}

	if err := c.client.Set(ctx, seriesCacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache series list: %w", err)
	}

	return nil
}

// Ensure RedisSeriesCache implements SeriesCache
var _ invoicing.SeriesCache = (*RedisSeriesCache)(nil)
