// Package memory is an in-process GardenRepository used for local play and tests.
// Transactions are serialized by a store-wide lock held from BeginTx until
// Commit or Rollback, which gives the same isolation as row locks on a single user.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/repository"
)

type garden struct {
	economy   domain.PlayerEconomyState
	plots     map[int]domain.PlotState
	upgrades  []domain.UpgradeRecord
	boosts    []domain.ActiveBoost
	tier      *domain.TierBonus
	cooldowns map[string]domain.CooldownRecord
}

func (g *garden) clone() *garden {
	c := &garden{
		economy:   g.economy,
		plots:     make(map[int]domain.PlotState, len(g.plots)),
		upgrades:  append([]domain.UpgradeRecord(nil), g.upgrades...),
		boosts:    append([]domain.ActiveBoost(nil), g.boosts...),
		cooldowns: make(map[string]domain.CooldownRecord, len(g.cooldowns)),
	}
	for id, p := range g.plots {
		c.plots[id] = copyPlot(p)
	}
	for k, v := range g.cooldowns {
		c.cooldowns[k] = v
	}
	if g.tier != nil {
		t := *g.tier
		c.tier = &t
	}
	return c
}

type data struct {
	gardens    map[string]*garden
	plantTypes map[string]domain.PlantTypeDef
	keys       map[string]time.Time
}

func (d *data) clone() *data {
	c := &data{
		gardens:    make(map[string]*garden, len(d.gardens)),
		plantTypes: d.plantTypes,
		keys:       make(map[string]time.Time, len(d.keys)),
	}
	for id, g := range d.gardens {
		c.gardens[id] = g.clone()
	}
	for k, v := range d.keys {
		c.keys[k] = v
	}
	return c
}

// Store implements repository.GardenRepository in memory
type Store struct {
	// txMu is held for the lifetime of a transaction
	txMu sync.Mutex
	// mu guards data swaps
	mu   sync.RWMutex
	data *data
}

var _ repository.GardenRepository = (*Store)(nil)

// NewStore creates a store seeded with the given catalog
func NewStore(catalog []domain.PlantTypeDef) *Store {
	types := make(map[string]domain.PlantTypeDef, len(catalog))
	for _, pt := range catalog {
		types[pt.ID] = pt
	}
	return &Store{data: &data{
		gardens:    make(map[string]*garden),
		plantTypes: types,
		keys:       make(map[string]time.Time),
	}}
}

// DefaultCatalog mirrors the seeded plant_types table
func DefaultCatalog() []domain.PlantTypeDef {
	return []domain.PlantTypeDef{
		{ID: "carrot", Name: "carrot", LevelRequired: 1, BaseGrowthSeconds: 30, Rarity: domain.RarityCommon},
		{ID: "tomato", Name: "tomato", LevelRequired: 2, BaseGrowthSeconds: 120, Rarity: domain.RarityCommon},
		{ID: "sunflower", Name: "sunflower", LevelRequired: 3, BaseGrowthSeconds: 300, Rarity: domain.RarityUncommon},
		{ID: "pumpkin", Name: "pumpkin", LevelRequired: 5, BaseGrowthSeconds: 900, Rarity: domain.RarityUncommon},
		{ID: "rose", Name: "rose", LevelRequired: 8, BaseGrowthSeconds: 1800, Rarity: domain.RarityRare},
		{ID: "moonflower", Name: "moon flower", LevelRequired: 12, BaseGrowthSeconds: 3600, Rarity: domain.RarityEpic},
		{ID: "starfruit", Name: "star fruit", LevelRequired: 20, BaseGrowthSeconds: 14400, Rarity: domain.RarityLegendary},
	}
}

func (s *Store) read() *data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// write runs fn under the transaction lock against a private copy and publishes it
func (s *Store) write(fn func(d *data) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	next := s.read().clone()
	if err := fn(next); err != nil {
		return err
	}
	s.mu.Lock()
	s.data = next
	s.mu.Unlock()
	return nil
}

// GetEconomy retrieves a user's economy
func (s *Store) GetEconomy(ctx context.Context, userID string) (*domain.PlayerEconomyState, error) {
	g, ok := s.read().gardens[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	econ := g.economy
	return &econ, nil
}

// CreateGarden inserts a garden unless one exists
func (s *Store) CreateGarden(ctx context.Context, economy domain.PlayerEconomyState, plots []domain.PlotState) error {
	return s.write(func(d *data) error {
		if _, ok := d.gardens[economy.UserID]; ok {
			return nil
		}
		g := &garden{
			economy:   economy,
			plots:     make(map[int]domain.PlotState, len(plots)),
			cooldowns: make(map[string]domain.CooldownRecord),
		}
		for _, p := range plots {
			g.plots[p.PlotID] = copyPlot(p)
		}
		d.gardens[economy.UserID] = g
		return nil
	})
}

// GetPlots returns plots ordered by id
func (s *Store) GetPlots(ctx context.Context, userID string) ([]domain.PlotState, error) {
	g, ok := s.read().gardens[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return sortedPlots(g.plots), nil
}

// GetUpgrades returns purchased upgrades
func (s *Store) GetUpgrades(ctx context.Context, userID string) ([]domain.UpgradeRecord, error) {
	g, ok := s.read().gardens[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return append([]domain.UpgradeRecord{}, g.upgrades...), nil
}

// GetActiveBoosts returns boosts still in effect at now
func (s *Store) GetActiveBoosts(ctx context.Context, userID string, now time.Time) ([]domain.ActiveBoost, error) {
	g, ok := s.read().gardens[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return activeBoosts(g.boosts, now), nil
}

// GetTier returns the user's tier bonus, or nil
func (s *Store) GetTier(ctx context.Context, userID string) (*domain.TierBonus, error) {
	g, ok := s.read().gardens[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if g.tier == nil {
		return nil, nil
	}
	t := *g.tier
	return &t, nil
}

// ListPlantTypes returns the catalog ordered by level
// UpsertPlantTypes swaps in a catalog copy with defs applied
func (s *Store) UpsertPlantTypes(ctx context.Context, defs []domain.PlantTypeDef) (int64, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	types := make(map[string]domain.PlantTypeDef, len(s.data.plantTypes)+len(defs))
	for id, pt := range s.data.plantTypes {
		types[id] = pt
	}
	var changed int64
	for _, def := range defs {
		if cur, ok := types[def.ID]; ok && cur == def {
			continue
		}
		types[def.ID] = def
		changed++
	}

	next := *s.data
	next.plantTypes = types
	s.data = &next
	return changed, nil
}

func (s *Store) ListPlantTypes(ctx context.Context) ([]domain.PlantTypeDef, error) {
	d := s.read()
	out := make([]domain.PlantTypeDef, 0, len(d.plantTypes))
	for _, pt := range d.plantTypes {
		out = append(out, pt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LevelRequired != out[j].LevelRequired {
			return out[i].LevelRequired < out[j].LevelRequired
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetCooldown returns the cooldown record, or nil if none
func (s *Store) GetCooldown(ctx context.Context, userID, rewardType string) (*domain.CooldownRecord, error) {
	g, ok := s.read().gardens[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	rec, ok := g.cooldowns[rewardType]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// AddUpgrade records a purchased upgrade, replacing one with the same id
func (s *Store) AddUpgrade(ctx context.Context, userID string, upgrade domain.UpgradeRecord) error {
	return s.write(func(d *data) error {
		g, ok := d.gardens[userID]
		if !ok {
			return domain.ErrUserNotFound
		}
		for i, u := range g.upgrades {
			if u.UpgradeID == upgrade.UpgradeID {
				g.upgrades[i] = upgrade
				return nil
			}
		}
		g.upgrades = append(g.upgrades, upgrade)
		return nil
	})
}

// SetTier sets or clears the tier bonus
func (s *Store) SetTier(ctx context.Context, userID string, tier *domain.TierBonus) error {
	return s.write(func(d *data) error {
		g, ok := d.gardens[userID]
		if !ok {
			return domain.ErrUserNotFound
		}
		if tier == nil {
			g.tier = nil
			return nil
		}
		t := *tier
		g.tier = &t
		return nil
	})
}

// DeleteExpiredBoosts removes boosts that ended at or before now
func (s *Store) DeleteExpiredBoosts(ctx context.Context, now time.Time) (int64, error) {
	var removed int64
	err := s.write(func(d *data) error {
		for _, g := range d.gardens {
			before := len(g.boosts)
			g.boosts = activeBoosts(g.boosts, now)
			removed += int64(before - len(g.boosts))
		}
		return nil
	})
	return removed, err
}

// DeleteIdempotencyKeysBefore removes keys claimed before cutoff
func (s *Store) DeleteIdempotencyKeysBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := s.write(func(d *data) error {
		for k, at := range d.keys {
			if at.Before(cutoff) {
				delete(d.keys, k)
				removed++
			}
		}
		return nil
	})
	return removed, err
}

// BeginTx starts a transaction. It blocks while another transaction is open.
func (s *Store) BeginTx(ctx context.Context) (repository.GardenTx, error) {
	locked := make(chan struct{})
	go func() {
		s.txMu.Lock()
		close(locked)
	}()

	select {
	case <-locked:
	case <-ctx.Done():
		// Hand the lock back once the pending acquisition completes
		go func() {
			<-locked
			s.txMu.Unlock()
		}()
		return nil, ctx.Err()
	}

	return &gardenTx{store: s, data: s.read().clone()}, nil
}

func copyPlot(p domain.PlotState) domain.PlotState {
	if p.IsEmpty() {
		return p.Cleared()
	}
	return p.Cleared().Planted(*p.PlantTypeID, *p.PlantedAt, derefInt64(p.BaseGrowthSeconds))
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func sortedPlots(plots map[int]domain.PlotState) []domain.PlotState {
	out := make([]domain.PlotState, 0, len(plots))
	for _, p := range plots {
		out = append(out, copyPlot(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlotID < out[j].PlotID })
	return out
}

func activeBoosts(boosts []domain.ActiveBoost, now time.Time) []domain.ActiveBoost {
	out := make([]domain.ActiveBoost, 0, len(boosts))
	for _, b := range boosts {
		if b.ActiveAt(now) {
			out = append(out, b)
		}
	}
	return out
}
