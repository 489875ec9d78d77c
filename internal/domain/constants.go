package domain

import "time"

// New garden defaults
const (
	StarterCoins         int64 = 100
	StarterLevel               = 1
	StarterPlots               = 6
	StarterUnlockedPlots       = 1
	StarterPermanentMult       = 1.0
)

// Idempotency
const (
	// IdempotencyKeyTTL is how long a settled request key is remembered
	IdempotencyKeyTTL = 24 * time.Hour
)

// Reward grant sources recorded on boosts and events
const (
	SourceHarvest = "harvest"
	SourcePlant   = "plant"
	SourceAd      = "ad"
)

// Ad reward boosts
const (
	AdBoostDuration    = 30 * time.Minute
	AdGrowthBoostValue = 1.5
	AdCoinBoostValue   = 2.0
)
