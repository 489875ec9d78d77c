// Package postgres implements the garden repository on PostgreSQL with pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/idlegarden/internal/cooldown"
	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/logger"
	"github.com/osse101/idlegarden/internal/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GardenRepository implements repository.GardenRepository for PostgreSQL
type GardenRepository struct {
	db *pgxpool.Pool
}

var _ repository.GardenRepository = (*GardenRepository)(nil)

// NewGardenRepository creates a new garden repository
func NewGardenRepository(db *pgxpool.Pool) *GardenRepository {
	return &GardenRepository{db: db}
}

// GetEconomy retrieves a user's economy row
func (r *GardenRepository) GetEconomy(ctx context.Context, userID string) (*domain.PlayerEconomyState, error) {
	return getEconomy(ctx, r.db, SQLSelectEconomy, userID)
}

// CreateGarden inserts the garden and its plots in one transaction
func (r *GardenRepository) CreateGarden(ctx context.Context, economy domain.PlayerEconomyState, plots []domain.PlotState) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	defer SafeRollback(ctx, tx)

	tag, err := tx.Exec(ctx, SQLInsertGarden,
		economy.UserID, economy.Coins, economy.Gems, economy.Experience, economy.Level,
		economy.PermanentMultiplier, economy.PrestigeLevel, economy.HarvestCount, economy.Revision)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCreateGarden, err)
	}
	if tag.RowsAffected() == 0 {
		// Someone else created it first
		return nil
	}

	for _, p := range plots {
		if _, err := tx.Exec(ctx, SQLInsertPlot, economy.UserID, p.PlotID, p.Unlocked, p.PlantTypeID, p.PlantedAt, p.BaseGrowthSeconds); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToCreateGarden, err)
		}
	}

	return tx.Commit(ctx)
}

// GetPlots returns all plots ordered by id
func (r *GardenRepository) GetPlots(ctx context.Context, userID string) ([]domain.PlotState, error) {
	rows, err := r.db.Query(ctx, SQLSelectPlots, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetPlots, err)
	}
	plots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PlotState, error) {
		return scanPlot(row)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetPlots, err)
	}
	return plots, nil
}

// GetUpgrades returns purchased upgrades
func (r *GardenRepository) GetUpgrades(ctx context.Context, userID string) ([]domain.UpgradeRecord, error) {
	return getUpgrades(ctx, r.db, userID)
}

// GetActiveBoosts returns boosts in effect at now
func (r *GardenRepository) GetActiveBoosts(ctx context.Context, userID string, now time.Time) ([]domain.ActiveBoost, error) {
	return getActiveBoosts(ctx, r.db, userID, now)
}

// GetTier returns the tier bonus, or nil
func (r *GardenRepository) GetTier(ctx context.Context, userID string) (*domain.TierBonus, error) {
	return getTier(ctx, r.db, userID)
}

// ListPlantTypes returns the catalog
func (r *GardenRepository) ListPlantTypes(ctx context.Context) ([]domain.PlantTypeDef, error) {
	rows, err := r.db.Query(ctx, SQLSelectPlantTypes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetPlantTypes, err)
	}
	types, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PlantTypeDef, error) {
		return scanPlantType(row)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetPlantTypes, err)
	}
	return types, nil
}

// UpsertPlantTypes writes catalog entries in one transaction. Unchanged rows are not counted.
func (r *GardenRepository) UpsertPlantTypes(ctx context.Context, defs []domain.PlantTypeDef) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	defer SafeRollback(ctx, tx)

	var changed int64
	for _, def := range defs {
		tag, err := tx.Exec(ctx, SQLUpsertPlantType, def.ID, def.Name, def.LevelRequired, def.BaseGrowthSeconds, string(def.Rarity))
		if err != nil {
			return 0, fmt.Errorf("%s %s: %w", ErrMsgFailedToUpsertPlantType, def.ID, err)
		}
		changed += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToUpsertPlantType, err)
	}
	return changed, nil
}

// GetCooldown returns the cooldown record (unlocked read), or nil
func (r *GardenRepository) GetCooldown(ctx context.Context, userID, rewardType string) (*domain.CooldownRecord, error) {
	return getCooldown(ctx, r.db, SQLSelectCooldown, userID, rewardType)
}

// AddUpgrade records or replaces an upgrade
func (r *GardenRepository) AddUpgrade(ctx context.Context, userID string, upgrade domain.UpgradeRecord) error {
	if _, err := r.db.Exec(ctx, SQLUpsertUpgrade, userID, upgrade.UpgradeID, string(upgrade.EffectType), upgrade.EffectValue); err != nil {
		return fmt.Errorf("failed to add upgrade: %w", err)
	}
	return nil
}

// SetTier sets or clears the tier bonus
func (r *GardenRepository) SetTier(ctx context.Context, userID string, tier *domain.TierBonus) error {
	var name *string
	var harvest *float64
	if tier != nil {
		name = &tier.Name
		harvest = &tier.Harvest
	}
	tag, err := r.db.Exec(ctx, SQLUpdateTier, userID, name, harvest)
	if err != nil {
		return fmt.Errorf("failed to set tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// DeleteExpiredBoosts removes ended boosts
func (r *GardenRepository) DeleteExpiredBoosts(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, SQLDeleteExpiredBoosts, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToPurge, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteIdempotencyKeysBefore removes keys older than cutoff
func (r *GardenRepository) DeleteIdempotencyKeysBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, SQLDeleteIdempotencyKeysBefore, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToPurge, err)
	}
	return tag.RowsAffected(), nil
}

// BeginTx starts a transaction and returns a GardenTx
func (r *GardenRepository) BeginTx(ctx context.Context) (repository.GardenTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	return &gardenTx{tx: tx}, nil
}

// gardenTx implements repository.GardenTx
type gardenTx struct {
	tx pgx.Tx
}

// Commit commits the transaction
func (t *gardenTx) Commit(ctx context.Context) error {
	return mapTxErr(t.tx.Commit(ctx))
}

// Rollback rolls back the transaction
func (t *gardenTx) Rollback(ctx context.Context) error {
	return mapTxErr(t.tx.Rollback(ctx))
}

func mapTxErr(err error) error {
	if errors.Is(err, pgx.ErrTxClosed) {
		return domain.ErrTxClosed
	}
	return err
}

// ClaimIdempotencyKey inserts the key or reports a replay
func (t *gardenTx) ClaimIdempotencyKey(ctx context.Context, userID, key string, at time.Time) error {
	tag, err := t.tx.Exec(ctx, SQLClaimIdempotencyKey, userID, key, at)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToClaimKey, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: key %s", domain.ErrDuplicateRequest, key)
	}
	return nil
}

// GetEconomyForUpdate retrieves the economy row with FOR UPDATE lock
func (t *gardenTx) GetEconomyForUpdate(ctx context.Context, userID string) (*domain.PlayerEconomyState, error) {
	return getEconomy(ctx, t.tx, SQLSelectEconomyForUpdate, userID)
}

// UpdateEconomy writes the economy row
func (t *gardenTx) UpdateEconomy(ctx context.Context, e domain.PlayerEconomyState) error {
	tag, err := t.tx.Exec(ctx, SQLUpdateEconomy,
		e.UserID, e.Coins, e.Gems, e.Experience, e.Level, e.PermanentMultiplier, e.PrestigeLevel, e.HarvestCount, e.Revision)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateEconomy, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// GetPlotForUpdate retrieves a plot with FOR UPDATE lock
func (t *gardenTx) GetPlotForUpdate(ctx context.Context, userID string, plotID int) (*domain.PlotState, error) {
	plot, err := scanPlot(t.tx.QueryRow(ctx, SQLSelectPlotForUpdate, userID, plotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: plot %d", domain.ErrInvalidPlot, plotID)
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetPlots, err)
	}
	return &plot, nil
}

// UpdatePlot writes a plot row
func (t *gardenTx) UpdatePlot(ctx context.Context, userID string, p domain.PlotState) error {
	tag, err := t.tx.Exec(ctx, SQLUpdatePlot, userID, p.PlotID, p.Unlocked, p.PlantTypeID, p.PlantedAt, p.BaseGrowthSeconds)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdatePlot, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: plot %d", domain.ErrInvalidPlot, p.PlotID)
	}
	return nil
}

// GetUpgrades returns upgrades inside the transaction
func (t *gardenTx) GetUpgrades(ctx context.Context, userID string) ([]domain.UpgradeRecord, error) {
	return getUpgrades(ctx, t.tx, userID)
}

// GetActiveBoosts returns boosts in effect at now
func (t *gardenTx) GetActiveBoosts(ctx context.Context, userID string, now time.Time) ([]domain.ActiveBoost, error) {
	return getActiveBoosts(ctx, t.tx, userID, now)
}

// GetTier returns the tier bonus, or nil
func (t *gardenTx) GetTier(ctx context.Context, userID string) (*domain.TierBonus, error) {
	return getTier(ctx, t.tx, userID)
}

// AddBoost inserts an active boost
func (t *gardenTx) AddBoost(ctx context.Context, userID string, b domain.ActiveBoost) error {
	if _, err := t.tx.Exec(ctx, SQLInsertBoost, userID, string(b.EffectType), b.EffectValue, b.ExpiresAt, b.Source); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToAddBoost, err)
	}
	return nil
}

// GetPlantType looks up a catalog entry
func (t *gardenTx) GetPlantType(ctx context.Context, plantTypeID string) (*domain.PlantTypeDef, error) {
	pt, err := scanPlantType(t.tx.QueryRow(ctx, SQLSelectPlantType, plantTypeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPlantTypeNotFound, plantTypeID)
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetPlantTypes, err)
	}
	return &pt, nil
}

// LockCooldown acquires a transaction-scoped advisory lock for user + reward type.
// Advisory locks work even when no cooldown row exists yet (unlike SELECT FOR UPDATE).
func (t *gardenTx) LockCooldown(ctx context.Context, userID, rewardType string) error {
	if _, err := t.tx.Exec(ctx, SQLAdvisoryLock, cooldown.LockKey(userID, rewardType)); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToAcquireLock, err)
	}
	return nil
}

// GetCooldownForUpdate reads the cooldown row with FOR UPDATE lock, or nil
func (t *gardenTx) GetCooldownForUpdate(ctx context.Context, userID, rewardType string) (*domain.CooldownRecord, error) {
	return getCooldown(ctx, t.tx, SQLSelectCooldownForUpdate, userID, rewardType)
}

// UpsertCooldown writes the cooldown row
func (t *gardenTx) UpsertCooldown(ctx context.Context, rec domain.CooldownRecord) error {
	_, err := t.tx.Exec(ctx, SQLUpsertCooldown,
		rec.UserID, rec.RewardType, rec.LastGrantAt, rec.CooldownUntil, rec.DailyCount, rec.DailyResetDate, rec.MaxDaily)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpsertCooldown, err)
	}
	return nil
}

// SafeRollback rolls back a transaction and logs any error that isn't ErrTxClosed
func SafeRollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
	}
}

// ---- Shared helpers ----

func getEconomy(ctx context.Context, q querier, query, userID string) (*domain.PlayerEconomyState, error) {
	var e domain.PlayerEconomyState
	err := q.QueryRow(ctx, query, userID).Scan(
		&e.UserID, &e.Coins, &e.Gems, &e.Experience, &e.Level,
		&e.PermanentMultiplier, &e.PrestigeLevel, &e.HarvestCount, &e.Revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetEconomy, err)
	}
	return &e, nil
}

func scanPlot(row pgx.Row) (domain.PlotState, error) {
	var p domain.PlotState
	err := row.Scan(&p.PlotID, &p.Unlocked, &p.PlantTypeID, &p.PlantedAt, &p.BaseGrowthSeconds)
	return p, err
}

func scanPlantType(row pgx.Row) (domain.PlantTypeDef, error) {
	var pt domain.PlantTypeDef
	var rarity string
	err := row.Scan(&pt.ID, &pt.Name, &pt.LevelRequired, &pt.BaseGrowthSeconds, &rarity)
	pt.Rarity = domain.Rarity(rarity)
	return pt, err
}

func getUpgrades(ctx context.Context, q querier, userID string) ([]domain.UpgradeRecord, error) {
	rows, err := q.Query(ctx, SQLSelectUpgrades, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetUpgrades, err)
	}
	upgrades, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.UpgradeRecord, error) {
		var u domain.UpgradeRecord
		var effect string
		err := row.Scan(&u.UpgradeID, &effect, &u.EffectValue)
		u.EffectType = domain.EffectType(effect)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetUpgrades, err)
	}
	return upgrades, nil
}

func getActiveBoosts(ctx context.Context, q querier, userID string, now time.Time) ([]domain.ActiveBoost, error) {
	rows, err := q.Query(ctx, SQLSelectActiveBoosts, userID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetBoosts, err)
	}
	boosts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ActiveBoost, error) {
		var b domain.ActiveBoost
		var effect string
		err := row.Scan(&effect, &b.EffectValue, &b.ExpiresAt, &b.Source)
		b.EffectType = domain.EffectType(effect)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetBoosts, err)
	}
	return boosts, nil
}

func getTier(ctx context.Context, q querier, userID string) (*domain.TierBonus, error) {
	var name *string
	var harvest *float64
	if err := q.QueryRow(ctx, SQLSelectTier, userID).Scan(&name, &harvest); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetTier, err)
	}
	if name == nil || harvest == nil {
		return nil, nil
	}
	return &domain.TierBonus{Name: *name, Harvest: *harvest}, nil
}

func getCooldown(ctx context.Context, q querier, query, userID, rewardType string) (*domain.CooldownRecord, error) {
	var rec domain.CooldownRecord
	err := q.QueryRow(ctx, query, userID, rewardType).Scan(
		&rec.UserID, &rec.RewardType, &rec.LastGrantAt, &rec.CooldownUntil,
		&rec.DailyCount, &rec.DailyResetDate, &rec.MaxDaily)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No cooldown record
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetCooldown, err)
	}
	return &rec, nil
}
