package cache

import (
	"math"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

// RistrettoCache backs the transcript read-through cache. Admission is
// probabilistic: Set may decline an entry under pressure, which is acceptable
// for content-addressed transcripts whose misses just fall back to storage.
type RistrettoCache struct {
	inner  *ristretto.Cache
	logger *zap.Logger
}

var _ Cache = (*RistrettoCache)(nil)

// RistrettoConfig sizes the cache. Costs are counted per entry, so MaxCost
// is the maximum number of cached items and NumCounters should be about ten
// times that.
type RistrettoConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Logger      *zap.Logger
}

// NewRistrettoCache creates a ristretto-backed cache with metrics enabled.
func NewRistrettoCache(cfg *RistrettoConfig) (*RistrettoCache, error) {
	inner, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	return &RistrettoCache{inner: inner, logger: cfg.Logger}, nil
}

// Get retrieves a value from the cache.
func (r *RistrettoCache) Get(key string) (interface{}, bool) {
	defer observe("get", time.Now())

	value, found := r.inner.Get(key)
	if found {
		CacheHitsTotal.Inc()
	} else {
		CacheMissesTotal.Inc()
		r.logger.Debug("cache-miss", zap.String("key", key))
	}

	if ratio := r.inner.Metrics.Ratio(); !math.IsNaN(ratio) {
		CacheHitRate.Set(ratio)
	}

	return value, found
}

// Set stores a value with a TTL at unit cost. The write is buffered; callers
// that must read their own write immediately should call Wait first.
func (r *RistrettoCache) Set(key string, value interface{}, ttl time.Duration) bool {
	defer observe("set", time.Now())

	admitted := r.inner.SetWithTTL(key, value, 1, ttl)
	if admitted {
		CacheSetsTotal.Inc()
	} else {
		r.logger.Debug("cache-set-declined", zap.String("key", key))
	}
	return admitted
}

// Delete removes a value from the cache.
func (r *RistrettoCache) Delete(key string) {
	defer observe("delete", time.Now())

	r.inner.Del(key)
	CacheDeletesTotal.Inc()
}

// Clear removes all values from the cache.
func (r *RistrettoCache) Clear() {
	r.inner.Clear()
	r.logger.Info("cache-cleared")
}

// Close releases the cache's resources.
func (r *RistrettoCache) Close() {
	r.inner.Close()
}

// Wait blocks until buffered writes have been applied.
func (r *RistrettoCache) Wait() {
	r.inner.Wait()
}

func observe(operation string, start time.Time) {
	CacheOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
