// Package multiplier folds upgrades, boosts and tier perks into a MultiplierSet.
// Everything here is pure: the same inputs and instant give the same set.
package multiplier

import (
	"math"
	"time"

	"github.com/osse101/idlegarden/internal/domain"
)

// MaxGemChance is the largest representable chance below 1.
var MaxGemChance = math.Nextafter(1, 0)

// Inputs is a snapshot of everything that can modify the economy.
type Inputs struct {
	Upgrades []domain.UpgradeRecord
	Boosts   []domain.ActiveBoost
	Tier     *domain.TierBonus
}

// Permanent holds folded upgrade values keyed by effect type.
type Permanent map[domain.EffectType]float64

// Factor returns the folded value for effect, or its identity.
func (p Permanent) Factor(effect domain.EffectType) float64 {
	if v, ok := p[effect]; ok {
		return v
	}
	if effect.IsChance() {
		return 0
	}
	return 1
}

// FoldUpgrades groups upgrades by effect type. Same-type multiplicative values
// multiply; chance values add. Non-positive multiplicative values are ignored.
func FoldUpgrades(upgrades []domain.UpgradeRecord) Permanent {
	out := make(Permanent)
	for _, u := range upgrades {
		out[u.EffectType] = apply(out, u.EffectType, u.EffectValue)
	}
	return out
}

func apply(acc Permanent, effect domain.EffectType, value float64) float64 {
	current := acc.Factor(effect)
	if effect.IsChance() {
		return current + value
	}
	if !(value > 0) {
		return current
	}
	return current * value
}

// ActiveBoosts returns the boosts with expiresAt strictly after now.
func ActiveBoosts(now time.Time, boosts []domain.ActiveBoost) []domain.ActiveBoost {
	active := make([]domain.ActiveBoost, 0, len(boosts))
	for _, b := range boosts {
		if b.ActiveAt(now) {
			active = append(active, b)
		}
	}
	return active
}

// NextExpiry returns the earliest expiry among boosts active at now.
func NextExpiry(now time.Time, boosts []domain.ActiveBoost) (time.Time, bool) {
	var next time.Time
	found := false
	for _, b := range ActiveBoosts(now, boosts) {
		if !found || b.ExpiresAt.Before(next) {
			next = b.ExpiresAt
			found = true
		}
	}
	return next, found
}

// Aggregate composes the multiplier set at now:
// harvest = permanentHarvest * coinBoost * tier, growth = permanentGrowth * growthBoost,
// gemChance is additive across all sources and clamped to [0, 1).
func Aggregate(now time.Time, in Inputs) domain.MultiplierSet {
	perm := FoldUpgrades(in.Upgrades)

	boosts := make(Permanent)
	for _, b := range ActiveBoosts(now, in.Boosts) {
		boosts[b.EffectType] = apply(boosts, b.EffectType, b.EffectValue)
	}

	tier := 1.0
	if in.Tier != nil && in.Tier.Harvest > 0 {
		tier = in.Tier.Harvest
	}

	return domain.MultiplierSet{
		Harvest:            perm.Factor(domain.EffectHarvest) * boosts.Factor(domain.EffectHarvest) * tier,
		Growth:             perm.Factor(domain.EffectGrowth) * boosts.Factor(domain.EffectGrowth),
		Exp:                perm.Factor(domain.EffectExp) * boosts.Factor(domain.EffectExp),
		PlantCostReduction: perm.Factor(domain.EffectPlantCost) * boosts.Factor(domain.EffectPlantCost),
		GemChance:          clampChance(perm.Factor(domain.EffectGemChance) + boosts.Factor(domain.EffectGemChance)),
	}
}

func clampChance(c float64) float64 {
	if !(c > 0) {
		return 0
	}
	if c >= 1 {
		return MaxGemChance
	}
	return c
}
