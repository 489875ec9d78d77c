// Package engine is the client-side orchestrator. It predicts growth and rewards
// locally, shows optimistic balances, and settles every mutation with the authority.
package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/osse101/idlegarden/internal/authority"
	"github.com/osse101/idlegarden/internal/concurrency"
	"github.com/osse101/idlegarden/internal/cooldown"
	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/event"
	"github.com/osse101/idlegarden/internal/growth"
	"github.com/osse101/idlegarden/internal/logger"
	"github.com/osse101/idlegarden/internal/multiplier"
	"github.com/osse101/idlegarden/internal/reconcile"
	"github.com/osse101/idlegarden/internal/reward"
)

// Config holds engine settings
type Config struct {
	UserID      string
	RewardTypes []string
	DeltaTTL    time.Duration
}

// Option configures the engine
type Option func(*Engine)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand overrides the gem preview roll
func WithRand(rnd func() float64) Option {
	return func(e *Engine) { e.rnd = rnd }
}

// WithBus sets the local event bus
func WithBus(bus event.Bus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithGrowthCache memoizes adjusted growth durations across ticks
func WithGrowthCache(c *growth.Cache) Option {
	return func(e *Engine) { e.growth = c }
}

// Engine holds one player's local view of the garden
type Engine struct {
	cfg    Config
	auth   authority.Authority
	oracle authority.AdOracle

	bus    event.Bus
	recon  *reconcile.Reconciler
	mirror *cooldown.Mirror
	guard  *concurrency.LockManager
	now    func() time.Time
	rnd    func() float64
	growth *growth.Cache

	mu       sync.RWMutex
	snapshot *domain.GardenSnapshot
	ready    map[int]bool
}

// New creates an engine. Call Load before any mutation.
func New(cfg Config, auth authority.Authority, oracle authority.AdOracle, opts ...Option) *Engine {
	if len(cfg.RewardTypes) == 0 {
		cfg.RewardTypes = domain.RewardTypes
	}
	e := &Engine{
		cfg:    cfg,
		auth:   auth,
		oracle: oracle,
		guard:  concurrency.NewLockManager(),
		now:    time.Now,
		rnd:    rand.Float64,
		ready:  make(map[int]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bus == nil {
		e.bus = event.NewMemoryBus()
	}

	reconOpts := []reconcile.Option{reconcile.WithClock(e.now)}
	if cfg.DeltaTTL > 0 {
		reconOpts = append(reconOpts, reconcile.WithTTL(cfg.DeltaTTL))
	}
	e.recon = reconcile.New(reconOpts...)
	e.recon.Register(e.bus)
	e.mirror = cooldown.NewMirror(e.now)
	return e
}

// Bus returns the local event bus for subscribers such as the renderer
func (e *Engine) Bus() event.Bus {
	return e.bus
}

// Load replaces local state with the authority snapshot and refreshes every
// configured cooldown gate.
func (e *Engine) Load(ctx context.Context) error {
	log := logger.FromContext(ctx)

	snap, err := e.auth.State(ctx, e.cfg.UserID)
	if err != nil {
		return fmt.Errorf("failed to load garden: %w", err)
	}

	e.mu.Lock()
	e.ready = e.carriedReadyLocked(snap)
	e.snapshot = snap
	e.mu.Unlock()
	e.recon.SetAuthoritative(snap.Economy)

	for _, rewardType := range e.cfg.RewardTypes {
		if _, err := e.mirror.Refresh(ctx, e.auth, e.cfg.UserID, rewardType); err != nil {
			log.Warn(LogMsgMirrorRefreshFail, "reward_type", rewardType, "error", err)
		}
	}

	log.Info(LogMsgLoaded, "user_id", e.cfg.UserID, "plots", len(snap.Plots), "revision", snap.Economy.Revision)
	return nil
}

// carriedReadyLocked keeps the ready flag of every plot whose planting is
// unchanged in next, so a reload does not announce it again.
func (e *Engine) carriedReadyLocked(next *domain.GardenSnapshot) map[int]bool {
	ready := make(map[int]bool)
	if e.snapshot == nil {
		return ready
	}
	prev := make(map[int]domain.PlotState, len(e.snapshot.Plots))
	for _, plot := range e.snapshot.Plots {
		prev[plot.PlotID] = plot
	}
	for _, plot := range next.Plots {
		old, ok := prev[plot.PlotID]
		if ok && e.ready[plot.PlotID] && old.SamePlanting(plot) {
			ready[plot.PlotID] = true
		}
	}
	return ready
}

// Snapshot returns a copy of the current local state, or nil before Load
func (e *Engine) Snapshot() *domain.GardenSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snapshot == nil {
		return nil
	}
	cp := *e.snapshot
	cp.Plots = append([]domain.PlotState(nil), e.snapshot.Plots...)
	cp.Boosts = append([]domain.ActiveBoost(nil), e.snapshot.Boosts...)
	cp.Upgrades = append([]domain.UpgradeRecord(nil), e.snapshot.Upgrades...)
	return &cp
}

// Display returns the balances to show, including unconfirmed coin deltas
func (e *Engine) Display() reconcile.Display {
	return e.recon.Display()
}

// Pending returns the unconfirmed coin deltas
func (e *Engine) Pending() []reconcile.PendingDelta {
	return e.recon.Pending()
}

// Cooldown returns the locally advanced gate state for rewardType
func (e *Engine) Cooldown(rewardType string) domain.CooldownState {
	return e.mirror.Get(rewardType)
}

// Multipliers aggregates the snapshot's modifiers at now
func (e *Engine) Multipliers(now time.Time) domain.MultiplierSet {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.multipliersLocked(now)
}

func (e *Engine) multipliersLocked(now time.Time) domain.MultiplierSet {
	if e.snapshot == nil {
		return domain.DefaultMultiplierSet()
	}
	return multiplier.Aggregate(now, multiplier.Inputs{
		Upgrades: e.snapshot.Upgrades,
		Boosts:   e.snapshot.Boosts,
		Tier:     e.snapshot.Tier,
	})
}

// Preview is the local prediction for one plot
type Preview struct {
	Status      growth.Status `json:"status"`
	PlantTypeID string        `json:"plant_type_id,omitempty"`
	Coins       int64         `json:"coins"`
	Exp         int64         `json:"exp"`
	GemsPreview int64         `json:"gems_preview"`
}

// Preview predicts the growth and harvest of plotID. The gem roll is display only.
func (e *Engine) Preview(plotID int) (Preview, error) {
	now := e.now()
	e.mu.RLock()
	defer e.mu.RUnlock()

	plot, err := e.plotLocked(plotID)
	if err != nil {
		return Preview{}, err
	}
	mult := e.multipliersLocked(now)
	out := Preview{Status: e.evaluate(now, plot, mult.Growth)}
	if plot.IsEmpty() || plot.BaseGrowthSeconds == nil {
		return out, nil
	}

	out.PlantTypeID = *plot.PlantTypeID
	plant, err := e.plantTypeLocked(*plot.PlantTypeID)
	if err != nil {
		return out, err
	}
	q := reward.QuoteHarvest(plant.LevelRequired, *plot.BaseGrowthSeconds, e.snapshot.Economy, mult, e.rnd)
	out.Coins, out.Exp, out.GemsPreview = q.Coins, q.Exp, q.GemsPreview
	return out, nil
}

// Tick re-evaluates every plot at now, drops expired optimistic deltas and
// publishes plot.ready for plots that finished since the last tick.
// It never changes economy state.
func (e *Engine) Tick(now time.Time) []growth.Status {
	e.recon.Prune()

	e.mu.Lock()
	if e.snapshot == nil {
		e.mu.Unlock()
		return nil
	}
	mult := e.multipliersLocked(now)
	statuses := make([]growth.Status, 0, len(e.snapshot.Plots))
	var newlyReady []int
	for _, plot := range e.snapshot.Plots {
		st := e.evaluate(now, plot, mult.Growth)
		statuses = append(statuses, st)
		if st.Ready && !e.ready[plot.PlotID] {
			newlyReady = append(newlyReady, plot.PlotID)
		}
		e.ready[plot.PlotID] = st.Ready
	}
	e.mu.Unlock()

	ctx := context.Background()
	for _, plotID := range newlyReady {
		logger.FromContext(ctx).Debug(LogMsgPlotReady, "plot_id", plotID)
		e.publish(ctx, event.NewPlotReadyEvent(e.cfg.UserID, plotID))
	}
	return statuses
}

// NextCompletion returns the next instant local state changes on its own:
// the earliest growing plot completion or boost expiry.
func (e *Engine) NextCompletion(now time.Time) (time.Time, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snapshot == nil {
		return time.Time{}, false
	}
	mult := e.multipliersLocked(now)
	next, ok := growth.NextCompletion(now, e.snapshot.Plots, mult.Growth)
	if expiry, found := multiplier.NextExpiry(now, e.snapshot.Boosts); found && (!ok || expiry.Before(next)) {
		next, ok = expiry, true
	}
	return next, ok
}

func (e *Engine) evaluate(now time.Time, plot domain.PlotState, growthMult float64) growth.Status {
	if e.growth != nil {
		return e.growth.Evaluate(now, plot, growthMult)
	}
	return growth.Evaluate(now, plot, growthMult)
}

// Observe applies an economy.updated payload pushed by the authority
func (e *Engine) Observe(ctx context.Context, payload domain.EconomyUpdatedPayloadV1) {
	e.publish(ctx, event.Event{
		Version: event.EventSchemaVersion,
		Type:    event.EconomyUpdated,
		Payload: payload,
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil || payload.Revision <= e.snapshot.Economy.Revision {
		return
	}
	econ := &e.snapshot.Economy
	econ.Coins = payload.Coins
	econ.Gems = payload.Gems
	econ.Experience = payload.Experience
	econ.Level = payload.Level
	econ.HarvestCount = payload.HarvestCount
	econ.Revision = payload.Revision
}

func (e *Engine) publish(ctx context.Context, evt event.Event) {
	if err := e.bus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "event_type", evt.Type, "error", err)
	}
}

func (e *Engine) loaded() (*domain.GardenSnapshot, error) {
	if e.snapshot == nil {
		return nil, fmt.Errorf("%w: garden not loaded", domain.ErrAuthorityUnavailable)
	}
	return e.snapshot, nil
}

func (e *Engine) plotLocked(plotID int) (domain.PlotState, error) {
	snap, err := e.loaded()
	if err != nil {
		return domain.PlotState{}, err
	}
	for _, p := range snap.Plots {
		if p.PlotID == plotID {
			return p, nil
		}
	}
	return domain.PlotState{}, fmt.Errorf("%w: plot %d", domain.ErrInvalidPlot, plotID)
}

func (e *Engine) plantTypeLocked(id string) (domain.PlantTypeDef, error) {
	snap, err := e.loaded()
	if err != nil {
		return domain.PlantTypeDef{}, err
	}
	for _, pt := range snap.Catalog {
		if pt.ID == id {
			return pt, nil
		}
	}
	return domain.PlantTypeDef{}, fmt.Errorf("%w: %s", domain.ErrPlantTypeNotFound, id)
}

// commitLocked applies an authoritative mutation result. The plot change is
// always applied since plot mutations only happen under the plot guard; the
// economy is replaced only when econ is newer than the snapshot.
func (e *Engine) commitLocked(econ domain.PlayerEconomyState, plot *domain.PlotState) bool {
	if e.snapshot == nil {
		return false
	}
	if plot != nil {
		for i := range e.snapshot.Plots {
			if e.snapshot.Plots[i].PlotID == plot.PlotID {
				e.snapshot.Plots[i] = *plot
				e.ready[plot.PlotID] = false
			}
		}
	}
	if econ.Revision <= e.snapshot.Economy.Revision {
		return false
	}
	e.snapshot.Economy = econ
	return true
}
