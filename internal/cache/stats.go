package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/choretracker/choretracker/internal/metrics"
	"github.com/choretracker/choretracker/internal/models"
)

// DefaultStatsKey is the cache key of the assignment aggregate.
const DefaultStatsKey = "choretracker:statistics"

// StatsCacher stores the assignment statistics aggregate.
// This interface enables easy mocking in tests.
type StatsCacher interface {
	Get(ctx context.Context) (*models.Statistics, error)
	Set(ctx context.Context, stats *models.Statistics) error
	Invalidate(ctx context.Context) error
}

// Ensure StatsCache implements StatsCacher
var _ StatsCacher = (*StatsCache)(nil)

// StatsCache keeps the statistics aggregate under a single key with a TTL.
type StatsCache struct {
	cache Cache
	key   string
	ttl   time.Duration
}

// NewStatsCache creates a statistics cache on top of c.
func NewStatsCache(c Cache, key string, ttl time.Duration) *StatsCache {
	if key == "" {
		key = DefaultStatsKey
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StatsCache{cache: c, key: key, ttl: ttl}
}

// Get returns the cached aggregate or ErrCacheMiss.
func (s *StatsCache) Get(ctx context.Context) (*models.Statistics, error) {
	data, err := s.cache.Get(ctx, s.key)
	if err != nil {
		metrics.RecordCacheMiss()
		return nil, err
	}

	var stats models.Statistics
	if err := json.Unmarshal(data, &stats); err != nil {
		metrics.RecordCacheMiss()
		_ = s.cache.Delete(ctx, s.key)
		return nil, fmt.Errorf("failed to unmarshal cached statistics: %w", err)
	}

	metrics.RecordCacheHit()
	return &stats, nil
}

// Set stores the aggregate for the configured TTL.
func (s *StatsCache) Set(ctx context.Context, stats *models.Statistics) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal statistics: %w", err)
	}
	return s.cache.Set(ctx, s.key, data, s.ttl)
}

// Invalidate drops the cached aggregate.
func (s *StatsCache) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, s.key)
}

// TTL returns how long an aggregate stays cached.
func (s *StatsCache) TTL() time.Duration {
	return s.ttl
}
