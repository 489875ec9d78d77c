package reward

// Economy constants
const (
	// RewardCap bounds every coin amount to avoid overflow downstream
	RewardCap int64 = 2_000_000_000

	// PlantBaseCost is the cost of a level 1 plant
	PlantBaseCost = 100.0
	// PlantCostGrowth is the per-level cost growth factor
	PlantCostGrowth = 1.42

	// ProfitMargin is applied to the base cost to get the base profit
	ProfitMargin = 1.7
	// TimeBonusStepSeconds is the growth time that earns one time bonus step
	TimeBonusStepSeconds = 600
	// TimeBonusPerStep is the bonus per step
	TimeBonusPerStep = 0.1
	// LevelBonusPerLevel is the bonus per player level
	LevelBonusPerLevel = 0.02

	// ExpBase and ExpPerLevel define the harvest experience curve
	ExpBase     = 15
	ExpPerLevel = 5

	// GemSettleThreshold is the chance at which deterministic settlement awards a gem
	GemSettleThreshold = 0.5

	// RobotBaseIncome, RobotLevelExponent and the level bounds define passive income
	RobotBaseIncome    = 50.0
	RobotLevelExponent = 1.6
	RobotMinLevel      = 1
	RobotMaxLevel      = 10

	// ExpPerLevelStep is the experience needed per level step: level L needs ExpPerLevelStep*L to advance
	ExpPerLevelStep = 100
	// MaxLevel caps the player level
	MaxLevel = 100
)
