package domain

import "time"

// PlotState is a single growable slot owned by a player.
// PlantedAt is set iff PlantTypeID is set; a plot with neither is empty.
type PlotState struct {
	PlotID            int        `json:"plot_id"`
	Unlocked          bool       `json:"unlocked"`
	PlantTypeID       *string    `json:"plant_type_id,omitempty"`
	PlantedAt         *time.Time `json:"planted_at,omitempty"`
	BaseGrowthSeconds *int64     `json:"base_growth_seconds,omitempty"`
}

// IsEmpty reports whether nothing is planted in the plot.
func (p PlotState) IsEmpty() bool {
	return p.PlantTypeID == nil || p.PlantedAt == nil
}

// SamePlanting reports whether both plots hold the same plant sown at the same instant.
// Two empty plots match.
func (p PlotState) SamePlanting(o PlotState) bool {
	if p.IsEmpty() || o.IsEmpty() {
		return p.IsEmpty() && o.IsEmpty()
	}
	return *p.PlantTypeID == *o.PlantTypeID && p.PlantedAt.Equal(*o.PlantedAt)
}

// Cleared returns the plot with its planting removed.
func (p PlotState) Cleared() PlotState {
	p.PlantTypeID = nil
	p.PlantedAt = nil
	p.BaseGrowthSeconds = nil
	return p
}

// Planted returns the plot with the given plant set.
func (p PlotState) Planted(plantTypeID string, plantedAt time.Time, baseGrowthSeconds int64) PlotState {
	id := plantTypeID
	at := plantedAt
	base := baseGrowthSeconds
	p.PlantTypeID = &id
	p.PlantedAt = &at
	p.BaseGrowthSeconds = &base
	return p
}

// Rarity of a plant type
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// PlantTypeDef is an immutable catalog entry.
type PlantTypeDef struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	LevelRequired     int    `json:"level_required"`
	BaseGrowthSeconds int64  `json:"base_growth_seconds"`
	Rarity            Rarity `json:"rarity"`
}

// PlayerEconomyState holds balances. Revision increases with every authoritative mutation.
type PlayerEconomyState struct {
	UserID              string  `json:"user_id"`
	Coins               int64   `json:"coins"`
	Gems                int64   `json:"gems"`
	Experience          int64   `json:"experience"`
	Level               int     `json:"level"`
	PermanentMultiplier float64 `json:"permanent_multiplier"`
	PrestigeLevel       int     `json:"prestige_level"`
	HarvestCount        int64   `json:"harvest_count"`
	Revision            int64   `json:"revision"`
}

// MultiplierSet is the derived view of all active modifiers.
// Every factor defaults to 1 except GemChance, which is additive in [0,1).
type MultiplierSet struct {
	Harvest            float64 `json:"harvest"`
	Growth             float64 `json:"growth"`
	Exp                float64 `json:"exp"`
	PlantCostReduction float64 `json:"plant_cost_reduction"`
	GemChance          float64 `json:"gem_chance"`
}

// DefaultMultiplierSet returns the identity multiplier set.
func DefaultMultiplierSet() MultiplierSet {
	return MultiplierSet{Harvest: 1, Growth: 1, Exp: 1, PlantCostReduction: 1}
}

// EffectType identifies what an upgrade or boost modifies
type EffectType string

const (
	EffectHarvest   EffectType = "harvest"
	EffectGrowth    EffectType = "growth"
	EffectExp       EffectType = "exp"
	EffectPlantCost EffectType = "plant_cost"
	EffectGemChance EffectType = "gem_chance"
)

// IsChance reports whether values of this effect are summed rather than multiplied.
func (e EffectType) IsChance() bool {
	return e == EffectGemChance
}

// UpgradeRecord is a purchased permanent upgrade.
// For multiplicative effects EffectValue is a factor (1.25 = +25%); for chance effects it is a probability.
type UpgradeRecord struct {
	UpgradeID   string     `json:"upgrade_id"`
	EffectType  EffectType `json:"effect_type"`
	EffectValue float64    `json:"effect_value"`
}

// ActiveBoost is a temporary modifier created by a reward grant.
type ActiveBoost struct {
	EffectType  EffectType `json:"effect_type"`
	EffectValue float64    `json:"effect_value"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Source      string     `json:"source"`
}

// ActiveAt reports whether the boost is still in effect at now.
func (b ActiveBoost) ActiveAt(now time.Time) bool {
	return b.ExpiresAt.After(now)
}

// TierBonus is a perk multiplier applied to harvest rewards (e.g. early access).
type TierBonus struct {
	Name    string  `json:"name"`
	Harvest float64 `json:"harvest"`
}

// CooldownRecord is the authority-owned quota state for one reward type.
type CooldownRecord struct {
	UserID         string     `json:"user_id"`
	RewardType     string     `json:"reward_type"`
	LastGrantAt    *time.Time `json:"last_grant_at,omitempty"`
	CooldownUntil  *time.Time `json:"cooldown_until,omitempty"`
	DailyCount     int        `json:"daily_count"`
	DailyResetDate time.Time  `json:"daily_reset_date"`
	MaxDaily       int        `json:"max_daily"`
}

// GardenSnapshot is everything the client needs to render and predict.
type GardenSnapshot struct {
	Economy  PlayerEconomyState `json:"economy"`
	Plots    []PlotState        `json:"plots"`
	Upgrades []UpgradeRecord    `json:"upgrades"`
	Boosts   []ActiveBoost      `json:"boosts"`
	Tier     *TierBonus         `json:"tier,omitempty"`
	Catalog  []PlantTypeDef     `json:"catalog"`
	ServerAt time.Time          `json:"server_at"`
}

// Reward types that can be granted through the cooldown gate
const (
	RewardTypeCoins       = "coins"
	RewardTypeGems        = "gems"
	RewardTypeGrowthBoost = "growth_boost"
	RewardTypeCoinBoost   = "coin_boost"
)

// RewardTypes lists every grantable reward type.
var RewardTypes = []string{RewardTypeCoins, RewardTypeGems, RewardTypeGrowthBoost, RewardTypeCoinBoost}
