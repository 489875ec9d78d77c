// Package growth maps a planting and a growth multiplier to readiness.
// A multiplier greater than 1 means faster growth: durations are divided by it.
package growth

import (
	"math"
	"time"

	"github.com/osse101/idlegarden/internal/domain"
)

// NormalizeMultiplier returns m, or 1 when m is not a positive finite number.
func NormalizeMultiplier(m float64) float64 {
	if !(m > 0) || math.IsInf(m, 0) {
		return DefaultMultiplier
	}
	return m
}

// AdjustedGrowthSeconds returns max(1, floor(base / multiplier)).
func AdjustedGrowthSeconds(baseGrowthSeconds int64, growthMultiplier float64) int64 {
	adjusted := int64(math.Floor(float64(baseGrowthSeconds) / NormalizeMultiplier(growthMultiplier)))
	if adjusted < MinGrowthSeconds {
		return MinGrowthSeconds
	}
	return adjusted
}

func elapsedMillis(now, plantedAt time.Time) int64 {
	return now.Sub(plantedAt).Milliseconds()
}

// IsReady reports whether at least the adjusted duration has elapsed since plantedAt.
func IsReady(now, plantedAt time.Time, baseGrowthSeconds int64, growthMultiplier float64) bool {
	return isReadyAdjusted(now, plantedAt, AdjustedGrowthSeconds(baseGrowthSeconds, growthMultiplier))
}

func isReadyAdjusted(now, plantedAt time.Time, adjusted int64) bool {
	return elapsedMillis(now, plantedAt) >= adjusted*1000
}

// Progress returns completion as a percentage clamped to [0, 100].
func Progress(now, plantedAt time.Time, baseGrowthSeconds int64, growthMultiplier float64) float64 {
	return progressAdjusted(now, plantedAt, AdjustedGrowthSeconds(baseGrowthSeconds, growthMultiplier))
}

func progressAdjusted(now, plantedAt time.Time, adjusted int64) float64 {
	pct := float64(elapsedMillis(now, plantedAt)) / float64(adjusted*1000) * 100
	return math.Max(0, math.Min(100, pct))
}

// RemainingSeconds returns whole seconds left, rounded up, never negative.
func RemainingSeconds(now, plantedAt time.Time, baseGrowthSeconds int64, growthMultiplier float64) int64 {
	return remainingAdjusted(now, plantedAt, AdjustedGrowthSeconds(baseGrowthSeconds, growthMultiplier))
}

func remainingAdjusted(now, plantedAt time.Time, adjusted int64) int64 {
	left := adjusted*1000 - elapsedMillis(now, plantedAt)
	if left <= 0 {
		return 0
	}
	return (left + 999) / 1000
}

// ReadyAt returns the instant the planting becomes harvestable.
func ReadyAt(plantedAt time.Time, baseGrowthSeconds int64, growthMultiplier float64) time.Time {
	return readyAtAdjusted(plantedAt, AdjustedGrowthSeconds(baseGrowthSeconds, growthMultiplier))
}

func readyAtAdjusted(plantedAt time.Time, adjusted int64) time.Time {
	return plantedAt.Add(time.Duration(adjusted) * time.Second)
}

// Status is the evaluated growth state of one plot at one instant.
type Status struct {
	PlotID           int       `json:"plot_id"`
	Growing          bool      `json:"growing"`
	Ready            bool      `json:"ready"`
	Progress         float64   `json:"progress"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	AdjustedSeconds  int64     `json:"adjusted_seconds"`
	ReadyAt          time.Time `json:"ready_at"`
}

// Evaluate computes the status of a plot. Empty plots report neither growing nor ready.
func Evaluate(now time.Time, plot domain.PlotState, growthMultiplier float64) Status {
	if plot.IsEmpty() || plot.BaseGrowthSeconds == nil {
		return Status{PlotID: plot.PlotID}
	}
	return evaluateAdjusted(now, plot, AdjustedGrowthSeconds(*plot.BaseGrowthSeconds, growthMultiplier))
}

func evaluateAdjusted(now time.Time, plot domain.PlotState, adjusted int64) Status {
	plantedAt := *plot.PlantedAt
	ready := isReadyAdjusted(now, plantedAt, adjusted)
	return Status{
		PlotID:           plot.PlotID,
		Growing:          !ready,
		Ready:            ready,
		Progress:         progressAdjusted(now, plantedAt, adjusted),
		RemainingSeconds: remainingAdjusted(now, plantedAt, adjusted),
		AdjustedSeconds:  adjusted,
		ReadyAt:          readyAtAdjusted(plantedAt, adjusted),
	}
}

// NextCompletion returns the earliest ReadyAt among plots still growing at now.
func NextCompletion(now time.Time, plots []domain.PlotState, growthMultiplier float64) (time.Time, bool) {
	var next time.Time
	found := false
	for _, plot := range plots {
		st := Evaluate(now, plot, growthMultiplier)
		if !st.Growing {
			continue
		}
		if !found || st.ReadyAt.Before(next) {
			next = st.ReadyAt
			found = true
		}
	}
	return next, found
}
