package domain

import "time"

// Event type constants used across the application for event bus subscriptions
// and metrics tracking.
//
// Event types follow the pattern: <entity>.<action> (e.g., "reward.claimed")
const (
	// EventTypeRewardClaimed is published when a reward is claimed locally, before confirmation
	EventTypeRewardClaimed = "reward.claimed"

	// EventTypeCoinsSpent is published when coins are spent locally, before confirmation
	EventTypeCoinsSpent = "coins.spent"

	// EventTypeEconomyUpdated is published whenever the authority commits a balance change
	EventTypeEconomyUpdated = "economy.updated"

	// EventTypeHarvestCompleted is published when the authority settles a harvest
	EventTypeHarvestCompleted = "harvest.completed"

	// EventTypePlotPlanted is published when the authority settles a plant
	EventTypePlotPlanted = "plot.planted"

	// EventTypePlotReady is published client-side when a plot finishes growing
	EventTypePlotReady = "plot.ready"

	// EventTypeRewardGranted is published when the authority grants an ad reward
	EventTypeRewardGranted = "reward.granted"
)

// Reward kinds carried by reward.claimed
const (
	RewardKindCoins = "coins"
	RewardKindGems  = "gems"
	RewardKindExp   = "exp"
)

// RewardClaimedPayloadV1 is the payload for reward.claimed events.
// Only Kind == coins may be applied optimistically.
type RewardClaimedPayloadV1 struct {
	DeltaID   string `json:"delta_id"`
	UserID    string `json:"user_id"`
	Kind      string `json:"kind"`
	Amount    int64  `json:"amount"`
	Source    string `json:"source"`
	Timestamp int64  `json:"timestamp"`
}

// CoinsSpentPayloadV1 is the payload for coins.spent events
type CoinsSpentPayloadV1 struct {
	DeltaID   string `json:"delta_id"`
	UserID    string `json:"user_id"`
	Amount    int64  `json:"amount"`
	Source    string `json:"source"`
	Timestamp int64  `json:"timestamp"`
}

// EconomyUpdatedPayloadV1 is the payload for economy.updated events.
// RequestID is the idempotency key of the settlement that produced the
// state, empty for changes without one.
type EconomyUpdatedPayloadV1 struct {
	UserID       string `json:"user_id"`
	RequestID    string `json:"request_id,omitempty"`
	Coins        int64  `json:"coins"`
	Gems         int64  `json:"gems"`
	Experience   int64  `json:"experience"`
	Level        int    `json:"level"`
	HarvestCount int64  `json:"harvest_count"`
	Revision     int64  `json:"revision"`
	Timestamp    int64  `json:"timestamp"`
}

// NewEconomyUpdatedPayload builds the payload from an economy state
func NewEconomyUpdatedPayload(state PlayerEconomyState, at time.Time) EconomyUpdatedPayloadV1 {
	return EconomyUpdatedPayloadV1{
		UserID:       state.UserID,
		Coins:        state.Coins,
		Gems:         state.Gems,
		Experience:   state.Experience,
		Level:        state.Level,
		HarvestCount: state.HarvestCount,
		Revision:     state.Revision,
		Timestamp:    at.Unix(),
	}
}

// HarvestCompletedPayloadV1 is the payload for harvest.completed events
type HarvestCompletedPayloadV1 struct {
	UserID      string `json:"user_id"`
	PlotID      int    `json:"plot_id"`
	PlantTypeID string `json:"plant_type_id"`
	Coins       int64  `json:"coins"`
	Exp         int64  `json:"exp"`
	Gems        int64  `json:"gems"`
	Timestamp   int64  `json:"timestamp"`
}

// PlotPlantedPayloadV1 is the payload for plot.planted events
type PlotPlantedPayloadV1 struct {
	UserID      string `json:"user_id"`
	PlotID      int    `json:"plot_id"`
	PlantTypeID string `json:"plant_type_id"`
	PlantedAt   int64  `json:"planted_at"`
	Cost        int64  `json:"cost"`
	Timestamp   int64  `json:"timestamp"`
}

// PlotReadyPayloadV1 is the payload for plot.ready events
type PlotReadyPayloadV1 struct {
	UserID    string `json:"user_id"`
	PlotID    int    `json:"plot_id"`
	Timestamp int64  `json:"timestamp"`
}

// RewardGrantedPayloadV1 is the payload for reward.granted events
type RewardGrantedPayloadV1 struct {
	UserID     string `json:"user_id"`
	RewardType string `json:"reward_type"`
	Amount     int64  `json:"amount"`
	DailyCount int    `json:"daily_count"`
	MaxDaily   int    `json:"max_daily"`
	Timestamp  int64  `json:"timestamp"`
}
