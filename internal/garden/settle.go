package garden

import (
	"context"
	"fmt"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/logger"
	"github.com/osse101/idlegarden/internal/repository"
	"github.com/osse101/idlegarden/internal/reward"
)

// Harvest validates the client's amounts against a server-side recomputation and
// settles the harvest in one transaction.
func (s *service) Harvest(ctx context.Context, req domain.HarvestRequest) (*domain.HarvestResult, error) {
	log := logger.FromContext(ctx)
	log.Info("Harvest called", logger.AttrKeyUserID, req.UserID, logger.AttrKeyPlotID, req.PlotID)

	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}
	if req.PlotID < 1 {
		return nil, fmt.Errorf("%w: plot %d", domain.ErrInvalidPlot, req.PlotID)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	now := s.now()
	if err := s.claim(ctx, tx, req.UserID, req.IdempotencyKey); err != nil {
		return nil, err
	}

	econ, err := tx.GetEconomyForUpdate(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	plot, err := tx.GetPlotForUpdate(ctx, req.UserID, req.PlotID)
	if err != nil {
		return nil, err
	}
	if !plot.Unlocked {
		return nil, fmt.Errorf("%w: plot %d", domain.ErrPlotLocked, plot.PlotID)
	}
	if plot.IsEmpty() || plot.BaseGrowthSeconds == nil {
		return nil, fmt.Errorf("%w: plot %d", domain.ErrNothingToHarvest, plot.PlotID)
	}

	plant, err := tx.GetPlantType(ctx, *plot.PlantTypeID)
	if err != nil {
		return nil, err
	}
	mult, err := s.modifiers(ctx, tx, req.UserID, now)
	if err != nil {
		return nil, err
	}
	if mult != req.MultiplierSnapshot {
		log.Debug(LogMsgSnapshotDiverged, logger.AttrKeyUserID, req.UserID, "client", req.MultiplierSnapshot, "server", mult)
	}

	status := s.evaluate(now, *plot, mult.Growth)
	if !status.Ready {
		return nil, fmt.Errorf("%w: %ds remaining", domain.ErrNotReady, status.RemainingSeconds)
	}

	quote := reward.QuoteHarvest(plant.LevelRequired, *plot.BaseGrowthSeconds, *econ, mult, nil)
	if quote.Coins != req.ComputedHarvestReward || quote.Exp != req.ComputedExpReward || quote.GrowthSeconds != req.ComputedGrowthSeconds {
		log.Warn(LogMsgCostMismatch,
			logger.AttrKeyUserID, req.UserID,
			logger.AttrKeyPlotID, req.PlotID,
			"client_coins", req.ComputedHarvestReward, "server_coins", quote.Coins,
			"client_exp", req.ComputedExpReward, "server_exp", quote.Exp,
			"client_growth", req.ComputedGrowthSeconds, "server_growth", quote.GrowthSeconds)
		return nil, fmt.Errorf("%w: expected %d coins and %d exp", domain.ErrCostMismatch, quote.Coins, quote.Exp)
	}

	econ.Coins = reward.AddCoins(econ.Coins, quote.Coins)
	econ.Gems += quote.GemsSettled
	econ.Experience += quote.Exp
	if lvl := reward.LevelForExperience(econ.Experience); lvl > econ.Level {
		econ.Level = lvl
	}
	econ.HarvestCount++
	econ.Revision++

	if err := tx.UpdateEconomy(ctx, *econ); err != nil {
		return nil, fmt.Errorf("failed to update economy: %w", err)
	}
	if err := tx.UpdatePlot(ctx, req.UserID, plot.Cleared()); err != nil {
		return nil, fmt.Errorf("failed to clear plot: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTx, err)
	}

	log.Info(LogMsgHarvestSettled, logger.AttrKeyUserID, req.UserID, logger.AttrKeyPlotID, req.PlotID,
		"coins", quote.Coins, "exp", quote.Exp, "gems", quote.GemsSettled, logger.AttrKeyRevision, econ.Revision)

	s.publishHarvest(ctx, req.IdempotencyKey, *econ, req.PlotID, plant.ID, quote)

	final := *econ
	return &domain.HarvestResult{
		Success:           true,
		FinalCoins:        final.Coins,
		FinalGems:         final.Gems,
		FinalExperience:   final.Experience,
		FinalLevel:        final.Level,
		FinalHarvestCount: final.HarvestCount,
		GemsAwarded:       quote.GemsSettled,
		Revision:          final.Revision,
		Economy:           &final,
	}, nil
}

// Plant deducts the recomputed cost and starts a planting
func (s *service) Plant(ctx context.Context, req domain.PlantRequest) (*domain.PlantResult, error) {
	log := logger.FromContext(ctx)
	log.Info("Plant called", logger.AttrKeyUserID, req.UserID, logger.AttrKeyPlotID, req.PlotID, "plant_type_id", req.PlantTypeID)

	if req.UserID == "" || req.PlantTypeID == "" {
		return nil, fmt.Errorf("%w: user id and plant type required", domain.ErrInvalidInput)
	}
	if req.PlotID < 1 {
		return nil, fmt.Errorf("%w: plot %d", domain.ErrInvalidPlot, req.PlotID)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	now := s.now()
	if err := s.claim(ctx, tx, req.UserID, req.IdempotencyKey); err != nil {
		return nil, err
	}

	econ, err := tx.GetEconomyForUpdate(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	plot, err := tx.GetPlotForUpdate(ctx, req.UserID, req.PlotID)
	if err != nil {
		return nil, err
	}
	if !plot.Unlocked {
		return nil, fmt.Errorf("%w: plot %d", domain.ErrPlotLocked, plot.PlotID)
	}
	if !plot.IsEmpty() {
		return nil, fmt.Errorf("%w: plot %d", domain.ErrPlotOccupied, plot.PlotID)
	}

	plant, err := tx.GetPlantType(ctx, req.PlantTypeID)
	if err != nil {
		return nil, err
	}
	if econ.Level < plant.LevelRequired {
		return nil, fmt.Errorf("%w: %s needs level %d", domain.ErrLevelTooLow, plant.ID, plant.LevelRequired)
	}

	mult, err := s.modifiers(ctx, tx, req.UserID, now)
	if err != nil {
		return nil, err
	}
	cost := reward.PlantCost(plant.LevelRequired, mult.PlantCostReduction)
	if cost != req.ExpectedCost || plant.BaseGrowthSeconds != req.BaseGrowthSeconds {
		log.Warn(LogMsgCostMismatch,
			logger.AttrKeyUserID, req.UserID,
			logger.AttrKeyPlotID, req.PlotID,
			"client_cost", req.ExpectedCost, "server_cost", cost,
			"client_growth", req.BaseGrowthSeconds, "server_growth", plant.BaseGrowthSeconds)
		return nil, fmt.Errorf("%w: expected cost %d", domain.ErrCostMismatch, cost)
	}
	if econ.Coins < cost {
		return nil, fmt.Errorf("%w: need %d, have %d", domain.ErrInsufficientFunds, cost, econ.Coins)
	}

	econ.Coins = reward.AddCoins(econ.Coins, -cost)
	econ.Revision++
	planted := plot.Planted(plant.ID, now, plant.BaseGrowthSeconds)

	if err := tx.UpdateEconomy(ctx, *econ); err != nil {
		return nil, fmt.Errorf("failed to update economy: %w", err)
	}
	if err := tx.UpdatePlot(ctx, req.UserID, planted); err != nil {
		return nil, fmt.Errorf("failed to update plot: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTx, err)
	}

	log.Info(LogMsgPlantSettled, logger.AttrKeyUserID, req.UserID, logger.AttrKeyPlotID, req.PlotID, "cost", cost, logger.AttrKeyRevision, econ.Revision)

	s.publishPlant(ctx, req.IdempotencyKey, *econ, req.PlotID, plant.ID, now, cost)

	final := *econ
	return &domain.PlantResult{
		Success:        true,
		PlantedAt:      now,
		NewCoinBalance: final.Coins,
		Revision:       final.Revision,
		Economy:        &final,
	}, nil
}

// claim records the idempotency key in tx. Requests without a key are not deduplicated.
func (s *service) claim(ctx context.Context, tx repository.GardenTx, userID, key string) error {
	if key == "" {
		return nil
	}
	return tx.ClaimIdempotencyKey(ctx, userID, key, s.now())
}
