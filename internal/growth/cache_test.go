package growth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_MatchesUncachedAtSameInstant(t *testing.T) {
	c := NewCache(16, time.Minute)
	p := plot(1, t0, 60)

	for _, offset := range []time.Duration{0, 29 * time.Second, 59999 * time.Millisecond, 60 * time.Second, 5 * time.Minute} {
		now := t0.Add(offset)
		for _, mult := range []float64{1, 1.5, 2, 0.75} {
			assert.Equal(t, Evaluate(now, p, mult), c.Evaluate(now, p, mult), "offset=%s mult=%f", offset, mult)
		}
	}
}

func TestCache_ReadinessNotFrozenByCache(t *testing.T) {
	c := NewCache(16, time.Hour)
	p := plot(1, t0, 60)

	assert.False(t, c.Evaluate(t0.Add(59*time.Second), p, 1).Ready)
	assert.True(t, c.Evaluate(t0.Add(60*time.Second), p, 1).Ready, "cached duration must not pin the earlier answer")
}

func TestCache_HitsAndReset(t *testing.T) {
	c := NewCache(16, time.Minute)

	c.AdjustedGrowthSeconds(60, 2)
	c.AdjustedGrowthSeconds(60, 2)
	c.AdjustedGrowthSeconds(60, 3)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
	assert.Equal(t, 2, c.Len())

	c.Reset()
	hits, misses = c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
	assert.Zero(t, c.Len())
}

func TestCache_Expires(t *testing.T) {
	c := NewCache(16, 20*time.Millisecond)
	c.AdjustedGrowthSeconds(60, 1)
	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 10*time.Millisecond)
}
