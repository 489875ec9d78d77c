package growth

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/idlegarden/internal/domain"
)

type cacheKey struct {
	base     int64
	multBits uint64
}

// Cache memoizes adjusted durations for a short TTL. Only the time-independent
// part is cached; readiness is always recomputed against the caller's instant,
// so a cached evaluation equals an uncached one at the same instant.
type Cache struct {
	lru    *expirable.LRU[cacheKey, int64]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a cache holding up to size entries for ttl each.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		lru: expirable.NewLRU[cacheKey, int64](size, nil, ttl),
	}
}

// AdjustedGrowthSeconds is the cached form of the package-level function.
func (c *Cache) AdjustedGrowthSeconds(baseGrowthSeconds int64, growthMultiplier float64) int64 {
	key := cacheKey{base: baseGrowthSeconds, multBits: math.Float64bits(NormalizeMultiplier(growthMultiplier))}
	if v, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return v
	}
	c.misses.Add(1)
	v := AdjustedGrowthSeconds(baseGrowthSeconds, growthMultiplier)
	c.lru.Add(key, v)
	return v
}

// Evaluate is the cached form of the package-level Evaluate.
func (c *Cache) Evaluate(now time.Time, plot domain.PlotState, growthMultiplier float64) Status {
	if plot.IsEmpty() || plot.BaseGrowthSeconds == nil {
		return Status{PlotID: plot.PlotID}
	}
	return evaluateAdjusted(now, plot, c.AdjustedGrowthSeconds(*plot.BaseGrowthSeconds, growthMultiplier))
}

// Stats returns hit and miss counts since the last Reset.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Reset drops every entry and zeroes the counters.
func (c *Cache) Reset() {
	c.lru.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
}
