package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/idlegarden/internal/domain"
)

func TestPlantDirectCost(t *testing.T) {
	tests := []struct {
		level int
		want  int64
	}{
		{0, 100}, // clamps to level 1
		{1, 100},
		{3, 201},
		{60, RewardCap},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PlantDirectCost(tt.level), "level %d", tt.level)
	}
}

func TestPlantCost(t *testing.T) {
	assert.Equal(t, int64(100), PlantCost(1, 1))
	assert.Equal(t, int64(90), PlantCost(1, 0.9))
	assert.Equal(t, int64(100), PlantCost(1, 0), "invalid reduction falls back to identity")
}

func TestHarvestReward_Scenario(t *testing.T) {
	got := HarvestReward(HarvestInput{
		Level:             1,
		GrowthSeconds:     600,
		PlayerLevel:       1,
		HarvestMult:       1,
		CostReductionMult: 1,
		PermanentMult:     1,
	})
	assert.Equal(t, int64(190), got)
}

func TestHarvestReward_TimeBonusFloorsToOneStep(t *testing.T) {
	short := HarvestInput{Level: 1, GrowthSeconds: 30, PlayerLevel: 1, HarvestMult: 1, CostReductionMult: 1, PermanentMult: 1}
	tenMinutes := short
	tenMinutes.GrowthSeconds = 600
	assert.Equal(t, HarvestReward(tenMinutes), HarvestReward(short))

	long := short
	long.GrowthSeconds = 3600 // six steps
	assert.Greater(t, HarvestReward(long), HarvestReward(short))
}

func TestHarvestReward_Capped(t *testing.T) {
	got := HarvestReward(HarvestInput{Level: 40, GrowthSeconds: 86400, PlayerLevel: 100, HarvestMult: 50, CostReductionMult: 1, PermanentMult: 10})
	assert.Equal(t, RewardCap, got)
}

func TestHarvestReward_Deterministic(t *testing.T) {
	in := HarvestInput{Level: 7, GrowthSeconds: 1800, PlayerLevel: 12, HarvestMult: 1.37, CostReductionMult: 0.85, PermanentMult: 1.05}
	first := HarvestReward(in)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, HarvestReward(in))
	}
}

func TestExpReward(t *testing.T) {
	assert.Equal(t, int64(20), ExpReward(1, 1))
	assert.Equal(t, int64(40), ExpReward(1, 2))
	assert.Equal(t, int64(65), ExpReward(10, 1))
	assert.Equal(t, int64(30), ExpReward(1, 1.5))
}

func TestGemFunctions(t *testing.T) {
	t.Run("deterministic settlement", func(t *testing.T) {
		assert.Equal(t, int64(0), SettleGemDeterministic(0))
		assert.Equal(t, int64(0), SettleGemDeterministic(0.49))
		assert.Equal(t, int64(1), SettleGemDeterministic(0.5))
		assert.Equal(t, int64(1), SettleGemDeterministic(0.99))
	})

	t.Run("randomized preview", func(t *testing.T) {
		low := func() float64 { return 0.1 }
		high := func() float64 { return 0.9 }
		assert.Equal(t, int64(1), PreviewGemChance(0.3, low))
		assert.Equal(t, int64(0), PreviewGemChance(0.3, high))
		assert.Equal(t, int64(0), PreviewGemChance(0, low))
		assert.Equal(t, int64(0), PreviewGemChance(0.3, nil))
	})
}

func TestRobotPassiveIncome(t *testing.T) {
	got, err := RobotPassiveIncome(1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), got)

	got, err = RobotPassiveIncome(1, 2, 1.5)
	require.NoError(t, err)
	assert.Equal(t, int64(150), got)

	_, err = RobotPassiveIncome(0, 1, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = RobotPassiveIncome(11, 1, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLevelForExperience(t *testing.T) {
	tests := []struct {
		exp  int64
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{1 << 40, MaxLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelForExperience(tt.exp), "exp %d", tt.exp)
	}
}

func TestAddCoins(t *testing.T) {
	assert.Equal(t, int64(150), AddCoins(100, 50))
	assert.Equal(t, int64(0), AddCoins(100, -500))
	assert.Equal(t, RewardCap, AddCoins(RewardCap-1, 10))
}

func TestQuoteHarvest_UsesOneSnapshot(t *testing.T) {
	economy := domain.PlayerEconomyState{Level: 1, PermanentMultiplier: 1}
	mult := domain.DefaultMultiplierSet()
	mult.GemChance = 0.6

	q := QuoteHarvest(1, 600, economy, mult, func() float64 { return 0.99 })
	assert.Equal(t, int64(190), q.Coins)
	assert.Equal(t, int64(20), q.Exp)
	assert.Equal(t, int64(1), q.GemsSettled)
	assert.Equal(t, int64(0), q.GemsPreview, "preview roll is independent of settlement")
}
