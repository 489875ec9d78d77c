package postgres

// Advisory locks
const (
	SQLAdvisoryLock = "SELECT pg_advisory_xact_lock($1)"
)

// Garden queries
const (
	SQLSelectEconomy = `
		SELECT user_id, coins, gems, experience, level, permanent_multiplier, prestige_level, harvest_count, revision
		FROM gardens
		WHERE user_id = $1`

	SQLSelectEconomyForUpdate = SQLSelectEconomy + `
		FOR UPDATE`

	SQLInsertGarden = `
		INSERT INTO gardens (user_id, coins, gems, experience, level, permanent_multiplier, prestige_level, harvest_count, revision)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO NOTHING`

	SQLUpdateEconomy = `
		UPDATE gardens
		SET coins = $2, gems = $3, experience = $4, level = $5, permanent_multiplier = $6,
		    prestige_level = $7, harvest_count = $8, revision = $9, updated_at = NOW()
		WHERE user_id = $1`

	SQLSelectTier = `
		SELECT tier_name, tier_harvest
		FROM gardens
		WHERE user_id = $1`

	SQLUpdateTier = `
		UPDATE gardens
		SET tier_name = $2, tier_harvest = $3, updated_at = NOW()
		WHERE user_id = $1`
)

// Plot queries
const (
	SQLInsertPlot = `
		INSERT INTO plots (user_id, plot_id, unlocked, plant_type_id, planted_at, base_growth_seconds)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, plot_id) DO NOTHING`

	SQLSelectPlots = `
		SELECT plot_id, unlocked, plant_type_id, planted_at, base_growth_seconds
		FROM plots
		WHERE user_id = $1
		ORDER BY plot_id`

	SQLSelectPlotForUpdate = `
		SELECT plot_id, unlocked, plant_type_id, planted_at, base_growth_seconds
		FROM plots
		WHERE user_id = $1 AND plot_id = $2
		FOR UPDATE`

	SQLUpdatePlot = `
		UPDATE plots
		SET unlocked = $3, plant_type_id = $4, planted_at = $5, base_growth_seconds = $6
		WHERE user_id = $1 AND plot_id = $2`
)

// Modifier queries
const (
	SQLSelectUpgrades = `
		SELECT upgrade_id, effect_type, effect_value
		FROM upgrades
		WHERE user_id = $1
		ORDER BY purchased_at, upgrade_id`

	SQLUpsertUpgrade = `
		INSERT INTO upgrades (user_id, upgrade_id, effect_type, effect_value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, upgrade_id) DO UPDATE
		SET effect_type = EXCLUDED.effect_type, effect_value = EXCLUDED.effect_value`

	SQLSelectActiveBoosts = `
		SELECT effect_type, effect_value, expires_at, source
		FROM active_boosts
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY expires_at`

	SQLInsertBoost = `
		INSERT INTO active_boosts (user_id, effect_type, effect_value, expires_at, source)
		VALUES ($1, $2, $3, $4, $5)`

	SQLDeleteExpiredBoosts = `DELETE FROM active_boosts WHERE expires_at <= $1`
)

// Catalog queries
const (
	SQLSelectPlantTypes = `
		SELECT plant_type_id, name, level_required, base_growth_seconds, rarity
		FROM plant_types
		ORDER BY level_required, plant_type_id`

	SQLUpsertPlantType = `
		INSERT INTO plant_types (plant_type_id, name, level_required, base_growth_seconds, rarity)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (plant_type_id) DO UPDATE SET
			name = EXCLUDED.name,
			level_required = EXCLUDED.level_required,
			base_growth_seconds = EXCLUDED.base_growth_seconds,
			rarity = EXCLUDED.rarity
		WHERE (plant_types.name, plant_types.level_required, plant_types.base_growth_seconds, plant_types.rarity)
			IS DISTINCT FROM (EXCLUDED.name, EXCLUDED.level_required, EXCLUDED.base_growth_seconds, EXCLUDED.rarity)`

	SQLSelectPlantType = `
		SELECT plant_type_id, name, level_required, base_growth_seconds, rarity
		FROM plant_types
		WHERE plant_type_id = $1`
)

// Cooldown queries
const (
	SQLSelectCooldown = `
		SELECT user_id, reward_type, last_grant_at, cooldown_until, daily_count, daily_reset_date, max_daily
		FROM reward_cooldowns
		WHERE user_id = $1 AND reward_type = $2`

	SQLSelectCooldownForUpdate = SQLSelectCooldown + `
		FOR UPDATE`

	SQLUpsertCooldown = `
		INSERT INTO reward_cooldowns (user_id, reward_type, last_grant_at, cooldown_until, daily_count, daily_reset_date, max_daily)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, reward_type) DO UPDATE
		SET last_grant_at = EXCLUDED.last_grant_at,
		    cooldown_until = EXCLUDED.cooldown_until,
		    daily_count = EXCLUDED.daily_count,
		    daily_reset_date = EXCLUDED.daily_reset_date,
		    max_daily = EXCLUDED.max_daily`
)

// Idempotency queries
const (
	SQLClaimIdempotencyKey = `
		INSERT INTO idempotency_keys (user_id, idempotency_key, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, idempotency_key) DO NOTHING`

	SQLDeleteIdempotencyKeysBefore = `DELETE FROM idempotency_keys WHERE created_at < $1`
)

// Error Messages
const (
	ErrMsgFailedToBeginTransaction = "failed to begin garden transaction"
	ErrMsgFailedToGetEconomy       = "failed to get economy"
	ErrMsgFailedToCreateGarden     = "failed to create garden"
	ErrMsgFailedToUpdateEconomy    = "failed to update economy"
	ErrMsgFailedToGetPlots         = "failed to get plots"
	ErrMsgFailedToUpdatePlot       = "failed to update plot"
	ErrMsgFailedToGetUpgrades      = "failed to get upgrades"
	ErrMsgFailedToGetBoosts        = "failed to get active boosts"
	ErrMsgFailedToAddBoost         = "failed to add boost"
	ErrMsgFailedToGetTier          = "failed to get tier"
	ErrMsgFailedToGetPlantTypes    = "failed to get plant types"
	ErrMsgFailedToUpsertPlantType  = "failed to upsert plant type"
	ErrMsgFailedToGetCooldown      = "failed to get cooldown"
	ErrMsgFailedToUpsertCooldown   = "failed to upsert cooldown"
	ErrMsgFailedToAcquireLock      = "failed to acquire advisory lock"
	ErrMsgFailedToClaimKey         = "failed to claim idempotency key"
	ErrMsgFailedToPurge            = "failed to purge expired rows"
)
