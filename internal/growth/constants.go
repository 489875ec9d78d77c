package growth

import "time"

const (
	// DefaultMultiplier is the identity growth multiplier
	DefaultMultiplier = 1.0

	// MinGrowthSeconds is the floor for any adjusted duration
	MinGrowthSeconds = 1
)

// Cache defaults
const (
	DefaultCacheSize = 256
	DefaultCacheTTL  = 5 * time.Second
)
