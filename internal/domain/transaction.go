package domain

import "time"

// HarvestRequest carries client-computed amounts for the authority to verify.
type HarvestRequest struct {
	UserID                string        `json:"user_id" validate:"required,max=100"`
	PlotID                int           `json:"plot_id" validate:"min=1,max=64"`
	ComputedHarvestReward int64         `json:"computed_harvest_reward" validate:"min=0"`
	ComputedExpReward     int64         `json:"computed_exp_reward" validate:"min=0"`
	ComputedGrowthSeconds int64         `json:"computed_growth_seconds" validate:"min=1"`
	MultiplierSnapshot    MultiplierSet `json:"multiplier_snapshot"`
	IdempotencyKey        string        `json:"-"`
}

// HarvestResult is the authoritative outcome of a harvest.
type HarvestResult struct {
	Success           bool   `json:"success"`
	FinalCoins        int64  `json:"final_coins"`
	FinalGems         int64  `json:"final_gems"`
	FinalExperience   int64  `json:"final_experience"`
	FinalLevel        int    `json:"final_level"`
	FinalHarvestCount int64  `json:"final_harvest_count"`
	GemsAwarded       int64  `json:"gems_awarded"`
	Revision          int64  `json:"revision"`
	Error             string `json:"error,omitempty"`

	Economy *PlayerEconomyState `json:"economy,omitempty"`
}

// PlantRequest asks the authority to plant at a plot for an expected cost.
type PlantRequest struct {
	UserID            string `json:"user_id" validate:"required,max=100"`
	PlotID            int    `json:"plot_id" validate:"min=1,max=64"`
	PlantTypeID       string `json:"plant_type_id" validate:"required,max=64"`
	ExpectedCost      int64  `json:"expected_cost" validate:"min=0"`
	BaseGrowthSeconds int64  `json:"base_growth_seconds" validate:"min=1"`
	IdempotencyKey    string `json:"-"`
}

// PlantResult is the authoritative outcome of a plant.
type PlantResult struct {
	Success        bool      `json:"success"`
	PlantedAt      time.Time `json:"planted_at"`
	NewCoinBalance int64     `json:"new_coin_balance"`
	Revision       int64     `json:"revision"`
	Error          string    `json:"error,omitempty"`

	Economy *PlayerEconomyState `json:"economy,omitempty"`
}

// CooldownState is the authority view of a reward gate.
type CooldownState struct {
	RewardType           string `json:"reward_type"`
	Available            bool   `json:"available"`
	DailyCount           int    `json:"daily_count"`
	MaxDaily             int    `json:"max_daily"`
	TimeUntilNextSeconds int64  `json:"time_until_next_seconds"`
}

// DailyLimitReached reports whether the daily quota is exhausted.
func (s CooldownState) DailyLimitReached() bool {
	return s.MaxDaily > 0 && s.DailyCount >= s.MaxDaily
}

// GrantRequest asks the authority to grant an ad reward.
type GrantRequest struct {
	UserID         string `json:"user_id" validate:"required,max=100"`
	RewardType     string `json:"reward_type" validate:"required,reward_type"`
	RewardAmount   int64  `json:"reward_amount" validate:"min=0,max=1000000"`
	AdDurationMs   int64  `json:"ad_duration_ms" validate:"min=0,max=600000"`
	IdempotencyKey string `json:"-"`
}

// GrantResult is the authoritative outcome of a grant.
type GrantResult struct {
	Success    bool                `json:"success"`
	DailyCount int                 `json:"daily_count"`
	MaxDaily   int                 `json:"max_daily"`
	Economy    *PlayerEconomyState `json:"economy,omitempty"`
	Boost      *ActiveBoost        `json:"boost,omitempty"`
	Error      string              `json:"error,omitempty"`
}
