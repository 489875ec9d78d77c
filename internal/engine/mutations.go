package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/event"
	"github.com/osse101/idlegarden/internal/growth"
	"github.com/osse101/idlegarden/internal/logger"
	"github.com/osse101/idlegarden/internal/reward"
)

// Harvest settles a ready plot with the authority. The predicted coins show
// immediately as a pending delta until the authority answers.
func (e *Engine) Harvest(ctx context.Context, plotID int) (*domain.HarvestResult, error) {
	log := logger.FromContext(ctx)

	if err := e.harvestable(plotID); err != nil {
		return nil, err
	}

	release, err := e.guard.Acquire(ctx, fmt.Sprintf(GuardKeyPlot, plotID))
	if err != nil {
		return nil, err
	}
	defer release()

	now := e.now()
	e.mu.RLock()
	req, err := e.harvestRequestLocked(plotID, now)
	revision := int64(0)
	if e.snapshot != nil {
		revision = e.snapshot.Economy.Revision
	}
	e.mu.RUnlock()
	if err != nil {
		if errors.Is(err, domain.ErrNothingToHarvest) || errors.Is(err, domain.ErrNotReady) {
			log.Info(LogMsgPreconditionLost, "plot_id", plotID, "error", err)
			return nil, fmt.Errorf("%w: %w", domain.ErrConcurrencyConflict, err)
		}
		return nil, err
	}

	deltaID := uuid.NewString()
	req.IdempotencyKey = deltaID
	e.publish(ctx, event.NewRewardClaimedEvent(deltaID, e.cfg.UserID, domain.RewardKindCoins, req.ComputedHarvestReward, domain.SourceHarvest))

	res, err := e.auth.Harvest(ctx, req)
	if err != nil {
		e.settleFailure(ctx, deltaID, err)
		return nil, err
	}

	econ := harvestEconomy(res, e.cfg.UserID)
	e.mu.Lock()
	cleared := domain.PlotState{PlotID: plotID, Unlocked: true}
	if !e.commitLocked(econ, &cleared) {
		log.Debug(LogMsgStaleResult, "revision", econ.Revision, "snapshot_revision", revision)
	}
	e.mu.Unlock()
	e.recon.Settle(deltaID, econ)
	return res, nil
}

// harvestable is the precondition captured before queueing on the plot guard
func (e *Engine) harvestable(plotID int) error {
	now := e.now()
	e.mu.RLock()
	defer e.mu.RUnlock()
	plot, err := e.plotLocked(plotID)
	if err != nil {
		return err
	}
	if !plot.Unlocked {
		return fmt.Errorf("%w: plot %d", domain.ErrPlotLocked, plotID)
	}
	if plot.IsEmpty() {
		return fmt.Errorf("%w: plot %d", domain.ErrNothingToHarvest, plotID)
	}
	st := e.evaluate(now, plot, e.multipliersLocked(now).Growth)
	if !st.Ready {
		return fmt.Errorf("%w: %ds remaining", domain.ErrNotReady, st.RemainingSeconds)
	}
	return nil
}

func (e *Engine) harvestRequestLocked(plotID int, now time.Time) (domain.HarvestRequest, error) {
	plot, err := e.plotLocked(plotID)
	if err != nil {
		return domain.HarvestRequest{}, err
	}
	if plot.IsEmpty() || plot.BaseGrowthSeconds == nil {
		return domain.HarvestRequest{}, fmt.Errorf("%w: plot %d", domain.ErrNothingToHarvest, plotID)
	}
	mult := e.multipliersLocked(now)
	if st := e.evaluate(now, plot, mult.Growth); !st.Ready {
		return domain.HarvestRequest{}, fmt.Errorf("%w: plot %d replanted, %ds remaining", domain.ErrNotReady, plotID, st.RemainingSeconds)
	}
	plant, err := e.plantTypeLocked(*plot.PlantTypeID)
	if err != nil {
		return domain.HarvestRequest{}, err
	}
	q := reward.QuoteHarvest(plant.LevelRequired, *plot.BaseGrowthSeconds, e.snapshot.Economy, mult, nil)
	return domain.HarvestRequest{
		UserID:                e.cfg.UserID,
		PlotID:                plotID,
		ComputedHarvestReward: q.Coins,
		ComputedExpReward:     q.Exp,
		ComputedGrowthSeconds: q.GrowthSeconds,
		MultiplierSnapshot:    mult,
	}, nil
}

func harvestEconomy(res *domain.HarvestResult, userID string) domain.PlayerEconomyState {
	if res.Economy != nil {
		return *res.Economy
	}
	return domain.PlayerEconomyState{
		UserID:       userID,
		Coins:        res.FinalCoins,
		Gems:         res.FinalGems,
		Experience:   res.FinalExperience,
		Level:        res.FinalLevel,
		HarvestCount: res.FinalHarvestCount,
		Revision:     res.Revision,
	}
}

// Plant buys plantTypeID into an empty plot. The cost shows immediately as a
// negative pending delta.
func (e *Engine) Plant(ctx context.Context, plotID int, plantTypeID string) (*domain.PlantResult, error) {
	log := logger.FromContext(ctx)

	if _, err := e.plantRequest(plotID, plantTypeID); err != nil {
		return nil, err
	}

	release, err := e.guard.Acquire(ctx, fmt.Sprintf(GuardKeyPlot, plotID))
	if err != nil {
		return nil, err
	}
	defer release()

	req, err := e.plantRequest(plotID, plantTypeID)
	if err != nil {
		if errors.Is(err, domain.ErrPlotOccupied) {
			log.Info(LogMsgPreconditionLost, "plot_id", plotID, "error", err)
			return nil, fmt.Errorf("%w: %w", domain.ErrConcurrencyConflict, err)
		}
		return nil, err
	}

	deltaID := uuid.NewString()
	req.IdempotencyKey = deltaID
	e.publish(ctx, event.NewCoinsSpentEvent(deltaID, e.cfg.UserID, req.ExpectedCost, domain.SourcePlant))

	res, err := e.auth.Plant(ctx, req)
	if err != nil {
		e.settleFailure(ctx, deltaID, err)
		return nil, err
	}

	econ := plantEconomy(res, e.Snapshot())
	planted := domain.PlotState{PlotID: plotID, Unlocked: true}.Planted(plantTypeID, res.PlantedAt, req.BaseGrowthSeconds)
	e.mu.Lock()
	if !e.commitLocked(econ, &planted) {
		log.Debug(LogMsgStaleResult, "revision", econ.Revision)
	}
	e.mu.Unlock()
	e.recon.Settle(deltaID, econ)
	return res, nil
}

func (e *Engine) plantRequest(plotID int, plantTypeID string) (domain.PlantRequest, error) {
	now := e.now()
	e.mu.RLock()
	defer e.mu.RUnlock()

	plot, err := e.plotLocked(plotID)
	if err != nil {
		return domain.PlantRequest{}, err
	}
	if !plot.Unlocked {
		return domain.PlantRequest{}, fmt.Errorf("%w: plot %d", domain.ErrPlotLocked, plotID)
	}
	if !plot.IsEmpty() {
		return domain.PlantRequest{}, fmt.Errorf("%w: plot %d", domain.ErrPlotOccupied, plotID)
	}
	plant, err := e.plantTypeLocked(plantTypeID)
	if err != nil {
		return domain.PlantRequest{}, err
	}
	if e.snapshot.Economy.Level < plant.LevelRequired {
		return domain.PlantRequest{}, fmt.Errorf("%w: %s needs level %d", domain.ErrLevelTooLow, plant.ID, plant.LevelRequired)
	}
	cost := reward.PlantCost(plant.LevelRequired, e.multipliersLocked(now).PlantCostReduction)
	if have := e.recon.Display().Coins; have < cost {
		return domain.PlantRequest{}, fmt.Errorf("%w: need %d, have %d", domain.ErrInsufficientFunds, cost, have)
	}
	return domain.PlantRequest{
		UserID:            e.cfg.UserID,
		PlotID:            plotID,
		PlantTypeID:       plant.ID,
		ExpectedCost:      cost,
		BaseGrowthSeconds: plant.BaseGrowthSeconds,
	}, nil
}

func plantEconomy(res *domain.PlantResult, snap *domain.GardenSnapshot) domain.PlayerEconomyState {
	if res.Economy != nil {
		return *res.Economy
	}
	var econ domain.PlayerEconomyState
	if snap != nil {
		econ = snap.Economy
	}
	econ.Coins = res.NewCoinBalance
	econ.Revision = res.Revision
	return econ
}

// settleFailure resolves an optimistic delta after a failed authority call.
// Unreachable authority keeps the delta until it expires; every definitive
// failure reverts it, and diverged amounts also reload state.
func (e *Engine) settleFailure(ctx context.Context, deltaID string, err error) {
	log := logger.FromContext(ctx)
	kind := domain.KindOf(err)

	if kind == domain.KindAuthorityUnavailable {
		log.Warn(LogMsgDeltaKept, "delta_id", deltaID, "error", err)
		return
	}

	if deltaID != "" && e.recon.Revert(deltaID) {
		log.Info(LogMsgDeltaReverted, "delta_id", deltaID, "kind", kind, "error", err)
	}
	if kind == domain.KindCostMismatch {
		log.Warn(LogMsgResyncAfterDiverge, "error", err)
		if loadErr := e.Load(ctx); loadErr != nil {
			log.Error(LogMsgResyncFailed, "error", loadErr)
		}
	}
	if kind == domain.KindFatal {
		log.Error(LogMsgAuthorityRejected, "error", err)
	}
}
