package growth

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/osse101/idlegarden/internal/domain"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestAdjustedGrowthSeconds(t *testing.T) {
	tests := []struct {
		name string
		base int64
		mult float64
		want int64
	}{
		{"identity", 60, 1, 60},
		{"faster growth divides", 60, 2, 30},
		{"slower growth", 60, 0.5, 120},
		{"floors fractional", 100, 3, 33},
		{"never below one", 1, 10, 1},
		{"zero base clamps", 0, 1, 1},
		{"zero multiplier treated as identity", 60, 0, 60},
		{"negative multiplier treated as identity", 60, -2, 60},
		{"NaN multiplier treated as identity", 60, math.NaN(), 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AdjustedGrowthSeconds(tt.base, tt.mult))
		})
	}
}

func TestAdjustedGrowthSeconds_MonotonicInMultiplier(t *testing.T) {
	for _, base := range []int64{1, 7, 60, 600, 3600, 86400} {
		prev := AdjustedGrowthSeconds(base, 0.01)
		for m := 0.01; m < 50; m *= 1.13 {
			got := AdjustedGrowthSeconds(base, m)
			assert.LessOrEqual(t, got, prev, "base=%d mult=%f", base, m)
			assert.GreaterOrEqual(t, got, int64(1))
			prev = got
		}
	}
}

func TestIsReady_Boundary(t *testing.T) {
	assert.False(t, IsReady(t0.Add(59*time.Second), t0, 60, 1))
	assert.False(t, IsReady(t0.Add(59999*time.Millisecond), t0, 60, 1))
	assert.True(t, IsReady(t0.Add(60*time.Second), t0, 60, 1))
	assert.True(t, IsReady(t0.Add(2*time.Hour), t0, 60, 1))
}

func TestIsReady_Idempotent(t *testing.T) {
	now := t0.Add(45 * time.Second)
	first := IsReady(now, t0, 90, 2)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, IsReady(now, t0, 90, 2))
	}
	assert.True(t, first)
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0.0, Progress(t0.Add(-10*time.Second), t0, 60, 1), "clock skew clamps to 0")
	assert.Equal(t, 0.0, Progress(t0, t0, 60, 1))
	assert.InDelta(t, 50.0, Progress(t0.Add(30*time.Second), t0, 60, 1), 1e-9)
	assert.Equal(t, 100.0, Progress(t0.Add(10*time.Minute), t0, 60, 1))
}

func TestRemainingSeconds(t *testing.T) {
	assert.Equal(t, int64(60), RemainingSeconds(t0, t0, 60, 1))
	assert.Equal(t, int64(1), RemainingSeconds(t0.Add(59500*time.Millisecond), t0, 60, 1), "rounds up")
	assert.Equal(t, int64(30), RemainingSeconds(t0.Add(30*time.Second), t0, 60, 1))
	assert.Equal(t, int64(0), RemainingSeconds(t0.Add(61*time.Second), t0, 60, 1))
}

func plot(id int, plantedAt time.Time, base int64) domain.PlotState {
	return domain.PlotState{PlotID: id, Unlocked: true}.Planted("carrot", plantedAt, base)
}

func TestEvaluate(t *testing.T) {
	t.Run("empty plot", func(t *testing.T) {
		st := Evaluate(t0, domain.PlotState{PlotID: 3, Unlocked: true}, 1)
		assert.Equal(t, Status{PlotID: 3}, st)
	})

	t.Run("growing plot", func(t *testing.T) {
		st := Evaluate(t0.Add(10*time.Second), plot(1, t0, 60), 2)
		assert.True(t, st.Growing)
		assert.False(t, st.Ready)
		assert.Equal(t, int64(30), st.AdjustedSeconds)
		assert.Equal(t, int64(20), st.RemainingSeconds)
		assert.Equal(t, t0.Add(30*time.Second), st.ReadyAt)
	})

	t.Run("ready plot", func(t *testing.T) {
		st := Evaluate(t0.Add(30*time.Second), plot(1, t0, 60), 2)
		assert.True(t, st.Ready)
		assert.False(t, st.Growing)
		assert.Equal(t, 100.0, st.Progress)
	})
}

func TestNextCompletion(t *testing.T) {
	now := t0.Add(10 * time.Second)
	plots := []domain.PlotState{
		plot(0, t0, 120),
		plot(1, t0, 30),
		plot(2, t0, 5), // already ready
		{PlotID: 3, Unlocked: true},
	}

	next, ok := NextCompletion(now, plots, 1)
	assert.True(t, ok)
	assert.Equal(t, t0.Add(30*time.Second), next)

	_, ok = NextCompletion(now, plots[2:], 1)
	assert.False(t, ok)
}

func TestReadyAt_MatchesEvaluate(t *testing.T) {
	base := int64(100)
	p := plot(2, t0, base)

	for _, mult := range []float64{1, 2, 3, 0.5} {
		at := ReadyAt(t0, base, mult)
		assert.Equal(t, at, Evaluate(t0, p, mult).ReadyAt)
		assert.False(t, IsReady(at.Add(-time.Millisecond), t0, base, mult))
		assert.True(t, IsReady(at, t0, base, mult))
	}
	assert.Equal(t, t0.Add(33*time.Second), ReadyAt(t0, base, 3))
}
