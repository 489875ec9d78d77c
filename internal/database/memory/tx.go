package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/idlegarden/internal/domain"
)

// gardenTx implements repository.GardenTx against a private copy of the store
type gardenTx struct {
	store  *Store
	data   *data
	closed bool
}

func (t *gardenTx) finish(commit bool) error {
	if t.closed {
		return domain.ErrTxClosed
	}
	t.closed = true
	if commit {
		t.store.mu.Lock()
		t.store.data = t.data
		t.store.mu.Unlock()
	}
	t.store.txMu.Unlock()
	return nil
}

// Commit publishes the transaction's writes
func (t *gardenTx) Commit(ctx context.Context) error {
	return t.finish(true)
}

// Rollback discards the transaction's writes
func (t *gardenTx) Rollback(ctx context.Context) error {
	return t.finish(false)
}

func (t *gardenTx) garden(userID string) (*garden, error) {
	g, ok := t.data.gardens[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return g, nil
}

func idempotencyKey(userID, key string) string {
	return userID + "\x00" + key
}

// ClaimIdempotencyKey records key or reports a replay
func (t *gardenTx) ClaimIdempotencyKey(ctx context.Context, userID, key string, at time.Time) error {
	k := idempotencyKey(userID, key)
	if _, ok := t.data.keys[k]; ok {
		return fmt.Errorf("%w: key %s", domain.ErrDuplicateRequest, key)
	}
	t.data.keys[k] = at
	return nil
}

// GetEconomyForUpdate retrieves the economy inside the transaction
func (t *gardenTx) GetEconomyForUpdate(ctx context.Context, userID string) (*domain.PlayerEconomyState, error) {
	g, err := t.garden(userID)
	if err != nil {
		return nil, err
	}
	econ := g.economy
	return &econ, nil
}

// UpdateEconomy replaces the economy row
func (t *gardenTx) UpdateEconomy(ctx context.Context, economy domain.PlayerEconomyState) error {
	g, err := t.garden(economy.UserID)
	if err != nil {
		return err
	}
	g.economy = economy
	return nil
}

// GetPlotForUpdate retrieves a plot inside the transaction
func (t *gardenTx) GetPlotForUpdate(ctx context.Context, userID string, plotID int) (*domain.PlotState, error) {
	g, err := t.garden(userID)
	if err != nil {
		return nil, err
	}
	p, ok := g.plots[plotID]
	if !ok {
		return nil, fmt.Errorf("%w: plot %d", domain.ErrInvalidPlot, plotID)
	}
	plot := copyPlot(p)
	return &plot, nil
}

// UpdatePlot replaces a plot row
func (t *gardenTx) UpdatePlot(ctx context.Context, userID string, plot domain.PlotState) error {
	g, err := t.garden(userID)
	if err != nil {
		return err
	}
	if _, ok := g.plots[plot.PlotID]; !ok {
		return fmt.Errorf("%w: plot %d", domain.ErrInvalidPlot, plot.PlotID)
	}
	g.plots[plot.PlotID] = copyPlot(plot)
	return nil
}

// GetUpgrades returns upgrades inside the transaction
func (t *gardenTx) GetUpgrades(ctx context.Context, userID string) ([]domain.UpgradeRecord, error) {
	g, err := t.garden(userID)
	if err != nil {
		return nil, err
	}
	return append([]domain.UpgradeRecord{}, g.upgrades...), nil
}

// GetActiveBoosts returns boosts in effect at now
func (t *gardenTx) GetActiveBoosts(ctx context.Context, userID string, now time.Time) ([]domain.ActiveBoost, error) {
	g, err := t.garden(userID)
	if err != nil {
		return nil, err
	}
	return activeBoosts(g.boosts, now), nil
}

// GetTier returns the tier bonus, or nil
func (t *gardenTx) GetTier(ctx context.Context, userID string) (*domain.TierBonus, error) {
	g, err := t.garden(userID)
	if err != nil {
		return nil, err
	}
	if g.tier == nil {
		return nil, nil
	}
	tier := *g.tier
	return &tier, nil
}

// AddBoost records a temporary boost
func (t *gardenTx) AddBoost(ctx context.Context, userID string, boost domain.ActiveBoost) error {
	g, err := t.garden(userID)
	if err != nil {
		return err
	}
	g.boosts = append(g.boosts, boost)
	return nil
}

// GetPlantType looks up a catalog entry
func (t *gardenTx) GetPlantType(ctx context.Context, plantTypeID string) (*domain.PlantTypeDef, error) {
	pt, ok := t.data.plantTypes[plantTypeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPlantTypeNotFound, plantTypeID)
	}
	return &pt, nil
}

// LockCooldown is a no-op: the transaction already holds the store lock
func (t *gardenTx) LockCooldown(ctx context.Context, userID, rewardType string) error {
	_, err := t.garden(userID)
	return err
}

// GetCooldownForUpdate returns the cooldown record, or nil if none
func (t *gardenTx) GetCooldownForUpdate(ctx context.Context, userID, rewardType string) (*domain.CooldownRecord, error) {
	g, err := t.garden(userID)
	if err != nil {
		return nil, err
	}
	rec, ok := g.cooldowns[rewardType]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// UpsertCooldown writes the cooldown record
func (t *gardenTx) UpsertCooldown(ctx context.Context, record domain.CooldownRecord) error {
	g, err := t.garden(record.UserID)
	if err != nil {
		return err
	}
	g.cooldowns[record.RewardType] = record
	return nil
}
