// Package reward holds the economy formulas. Client previews and authority
// settlement both call these functions so their results are bit-identical.
package reward

import (
	"fmt"
	"math"

	"github.com/osse101/idlegarden/internal/domain"
)

func capCoins(v float64) int64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= float64(RewardCap) {
		return RewardCap
	}
	return int64(math.Floor(v))
}

func levelOrOne(level int) int {
	if level < 1 {
		return 1
	}
	return level
}

// PlantDirectCost returns floor(100 * 1.42^(level-1)).
func PlantDirectCost(level int) int64 {
	level = levelOrOne(level)
	return capCoins(PlantBaseCost * math.Pow(PlantCostGrowth, float64(level-1)))
}

// PlantCost applies the cost reduction multiplier to the direct cost.
func PlantCost(level int, costReductionMult float64) int64 {
	return capCoins(float64(PlantDirectCost(level)) * positiveOr(costReductionMult, 1))
}

// HarvestInput gathers the arguments of HarvestReward.
type HarvestInput struct {
	Level             int
	GrowthSeconds     int64
	PlayerLevel       int
	HarvestMult       float64
	CostReductionMult float64
	PermanentMult     float64
}

// HarvestReward returns
// floor(baseCost*1.7 * (1+timeBonus) * (1+playerLevel*0.02) * harvestMult * permanentMult), capped.
func HarvestReward(in HarvestInput) int64 {
	baseCost := float64(PlantDirectCost(in.Level)) * positiveOr(in.CostReductionMult, 1)
	baseProfit := baseCost * ProfitMargin

	steps := in.GrowthSeconds / TimeBonusStepSeconds
	if steps < 1 {
		steps = 1
	}
	timeBonus := float64(steps) * TimeBonusPerStep

	playerLevel := in.PlayerLevel
	if playerLevel < 0 {
		playerLevel = 0
	}
	levelBonus := 1 + float64(playerLevel)*LevelBonusPerLevel

	return capCoins(baseProfit * (1 + timeBonus) * levelBonus * positiveOr(in.HarvestMult, 1) * positiveOr(in.PermanentMult, 1))
}

// ExpReward returns floor((15 + level*5) * expMult).
func ExpReward(level int, expMult float64) int64 {
	level = levelOrOne(level)
	return int64(math.Floor(float64(ExpBase+level*ExpPerLevel) * positiveOr(expMult, 1)))
}

// PreviewGemChance rolls rnd against gemChance for display only.
// Its result must never be settled.
func PreviewGemChance(gemChance float64, rnd func() float64) int64 {
	if rnd == nil || gemChance <= 0 {
		return 0
	}
	if rnd() < gemChance {
		return 1
	}
	return 0
}

// SettleGemDeterministic awards one gem when gemChance >= 0.5.
func SettleGemDeterministic(gemChance float64) int64 {
	if gemChance >= GemSettleThreshold {
		return 1
	}
	return 0
}

// RobotPassiveIncome returns floor(50 * level^1.6 * harvestMult * permanentMult), capped.
func RobotPassiveIncome(level int, harvestMult, permanentMult float64) (int64, error) {
	if level < RobotMinLevel || level > RobotMaxLevel {
		return 0, fmt.Errorf("%w: robot level %d outside %d..%d", domain.ErrInvalidInput, level, RobotMinLevel, RobotMaxLevel)
	}
	return capCoins(RobotBaseIncome * math.Pow(float64(level), RobotLevelExponent) * positiveOr(harvestMult, 1) * positiveOr(permanentMult, 1)), nil
}

// ExpToNextLevel returns the experience needed to advance from level.
func ExpToNextLevel(level int) int64 {
	return int64(ExpPerLevelStep * levelOrOne(level))
}

// LevelForExperience returns the level reached with total experience.
func LevelForExperience(total int64) int {
	level := 1
	for level < MaxLevel {
		need := ExpToNextLevel(level)
		if total < need {
			break
		}
		total -= need
		level++
	}
	return level
}

// AddCoins adds delta to balance, saturating at RewardCap and zero.
func AddCoins(balance, delta int64) int64 {
	sum := balance + delta
	if delta > 0 && (sum > RewardCap || sum < balance) {
		return RewardCap
	}
	if sum < 0 {
		return 0
	}
	return sum
}

func positiveOr(v, fallback float64) float64 {
	if !(v > 0) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// Quote is a full preview of a harvest.
type Quote struct {
	Coins         int64 `json:"coins"`
	Exp           int64 `json:"exp"`
	GemsSettled   int64 `json:"gems_settled"`
	GemsPreview   int64 `json:"gems_preview"`
	GrowthSeconds int64 `json:"growth_seconds"`
}

// QuoteHarvest computes every harvest amount from one multiplier snapshot.
// growthSeconds is the base growth duration of the harvested plant.
func QuoteHarvest(plantLevel int, growthSeconds int64, economy domain.PlayerEconomyState, mult domain.MultiplierSet, rnd func() float64) Quote {
	return Quote{
		Coins: HarvestReward(HarvestInput{
			Level:             plantLevel,
			GrowthSeconds:     growthSeconds,
			PlayerLevel:       economy.Level,
			HarvestMult:       mult.Harvest,
			CostReductionMult: mult.PlantCostReduction,
			PermanentMult:     economy.PermanentMultiplier,
		}),
		Exp:           ExpReward(plantLevel, mult.Exp),
		GemsSettled:   SettleGemDeterministic(mult.GemChance),
		GemsPreview:   PreviewGemChance(mult.GemChance, rnd),
		GrowthSeconds: growthSeconds,
	}
}
