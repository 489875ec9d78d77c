package main

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/reward"
)

func parsePlotID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf(ErrFmtBadPlotID, arg)
	}
	return id, nil
}

func (a *app) view(now time.Time) (gardenView, error) {
	snap := a.engine.Snapshot()
	if snap == nil {
		return gardenView{}, fmt.Errorf(ErrMsgNotLoaded)
	}
	cooldowns := make([]domain.CooldownState, 0, len(domain.RewardTypes))
	for _, rewardType := range domain.RewardTypes {
		cooldowns = append(cooldowns, a.engine.Cooldown(rewardType))
	}
	return gardenView{
		Snapshot:    snap,
		Display:     a.engine.Display(),
		Multipliers: a.engine.Multipliers(now),
		Plots:       a.engine.Tick(now),
		Cooldowns:   cooldowns,
	}, nil
}

func newStateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show balances, plots and reward gates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, nil)
			if err != nil {
				return err
			}
			v, err := a.view(time.Now())
			if err != nil {
				return err
			}
			if ok, err := a.emit(v); ok {
				return err
			}
			renderGarden(a.out, v)
			return nil
		},
	}
}

// catalogEntry is one plant type with its current price
type catalogEntry struct {
	domain.PlantTypeDef
	Cost     int64 `json:"cost"`
	Unlocked bool  `json:"unlocked"`
}

func catalogEntries(snap *domain.GardenSnapshot, mult domain.MultiplierSet) []catalogEntry {
	entries := make([]catalogEntry, 0, len(snap.Catalog))
	for _, def := range snap.Catalog {
		entries = append(entries, catalogEntry{
			PlantTypeDef: def,
			Cost:         reward.PlantCost(def.LevelRequired, mult.PlantCostReduction),
			Unlocked:     snap.Economy.Level >= def.LevelRequired,
		})
	}
	slices.SortFunc(entries, func(x, y catalogEntry) int {
		if x.LevelRequired != y.LevelRequired {
			return x.LevelRequired - y.LevelRequired
		}
		if x.ID < y.ID {
			return -1
		}
		if x.ID > y.ID {
			return 1
		}
		return 0
	})
	return entries
}

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List plant types with their current cost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, nil)
			if err != nil {
				return err
			}
			snap := a.engine.Snapshot()
			entries := catalogEntries(snap, a.engine.Multipliers(time.Now()))
			if ok, err := a.emit(entries); ok {
				return err
			}

			accent.Fprintln(a.out, "\n== CATALOG ==")
			for _, e := range entries {
				line := fmt.Sprintf("%-14s %-12s lvl %-3d %6d coins  %s", e.ID, e.Name, e.LevelRequired, e.Cost, formatRemaining(e.BaseGrowthSeconds))
				if !e.Unlocked {
					line = dimStyle.Render(line)
				}
				fmt.Fprintln(a.out, line)
			}
			return nil
		},
	}
}

func newPlantCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plant <plot> <plant-type>",
		Short: "Plant a seed in an empty plot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plotID, err := parsePlotID(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd, opts, nil)
			if err != nil {
				return err
			}

			before := a.engine.Snapshot().Economy.Coins

			ctx, cancel := a.timeout(cmd.Context())
			defer cancel()
			res, err := a.engine.Plant(ctx, plotID, args[1])
			if err != nil {
				return fmt.Errorf("%s", describeError(err))
			}
			if ok, err := a.emit(res); ok {
				return err
			}
			printSuccess(fmt.Sprintf(MsgPlanted, displayName(args[1]), plotID, before-res.NewCoinBalance))
			printInfo(balanceLine(a.engine.Display()))
			return nil
		},
	}
}

func newHarvestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "harvest <plot>",
		Short: "Harvest a grown plot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plotID, err := parsePlotID(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd, opts, nil)
			if err != nil {
				return err
			}

			preview, err := a.engine.Preview(plotID)
			if err != nil {
				return fmt.Errorf("%s", describeError(err))
			}
			before := a.engine.Snapshot().Economy

			ctx, cancel := a.timeout(cmd.Context())
			defer cancel()
			res, err := a.engine.Harvest(ctx, plotID)
			if err != nil {
				return fmt.Errorf("%s", describeError(err))
			}
			if ok, err := a.emit(res); ok {
				return err
			}
			printInfo(fmt.Sprintf(MsgPredicted, preview.Coins, preview.Exp))
			printSuccess(fmt.Sprintf(MsgHarvested, plotID,
				res.FinalCoins-before.Coins, res.FinalExperience-before.Experience, res.GemsAwarded))
			if res.FinalLevel > before.Level {
				printSuccess(fmt.Sprintf("Level up! Now level %d", res.FinalLevel))
			}
			printInfo(balanceLine(a.engine.Display()))
			return nil
		},
	}
}

func defaultGrantAmount(rewardType string) int64 {
	switch rewardType {
	case domain.RewardTypeCoins:
		return DefaultCoinGrant
	case domain.RewardTypeGems:
		return DefaultGemGrant
	default:
		return 0
	}
}

func newAdRewardCmd(opts *rootOptions) *cobra.Command {
	var amount int64
	ad := &adOptions{}
	cmd := &cobra.Command{
		Use:       "ad-reward <reward-type>",
		Short:     "Watch an ad and claim a reward",
		Args:      cobra.ExactArgs(1),
		ValidArgs: domain.RewardTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			rewardType := args[0]
			if !slices.Contains(domain.RewardTypes, rewardType) {
				return fmt.Errorf(ErrFmtUnknownType, rewardType)
			}
			if amount <= 0 {
				amount = defaultGrantAmount(rewardType)
			}

			a, err := newApp(cmd, opts, ad)
			if err != nil {
				return err
			}
			ctx, cancel := a.timeout(cmd.Context())
			defer cancel()
			res, err := a.engine.ClaimAdReward(ctx, rewardType, amount)
			if err != nil {
				return fmt.Errorf("%s", describeError(err))
			}
			if ok, err := a.emit(res); ok {
				return err
			}
			printSuccess(fmt.Sprintf(MsgGranted, displayName(rewardType), res.DailyCount, res.MaxDaily))
			if res.Boost != nil {
				printInfo(fmt.Sprintf("%s x%.2f until %s", displayName(string(res.Boost.EffectType)),
					res.Boost.EffectValue, res.Boost.ExpiresAt.Local().Format(time.Kitchen)))
			}
			printInfo(balanceLine(a.engine.Display()))
			return nil
		},
	}
	cmd.Flags().Int64Var(&amount, FlagAmount, 0, "coins or gems to claim (defaults per reward type)")
	cmd.Flags().BoolVar(&ad.abandon, FlagAbandon, false, "close the ad before it finishes")
	cmd.Flags().BoolVar(&ad.instant, FlagInstant, false, "skip the ad wait")
	return cmd
}

func newCooldownCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "cooldown [reward-type]",
		Short:     "Show reward cooldowns and daily quotas",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: domain.RewardTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			types := domain.RewardTypes
			if len(args) == 1 {
				if !slices.Contains(domain.RewardTypes, args[0]) {
					return fmt.Errorf(ErrFmtUnknownType, args[0])
				}
				types = args
			}

			a, err := newApp(cmd, opts, nil)
			if err != nil {
				return err
			}
			states := make([]domain.CooldownState, 0, len(types))
			for _, rewardType := range types {
				states = append(states, a.engine.Cooldown(rewardType))
			}
			if ok, err := a.emit(states); ok {
				return err
			}
			for _, st := range states {
				fmt.Fprintln(a.out, cooldownLine(st))
			}
			return nil
		},
	}
}
