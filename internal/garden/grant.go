package garden

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/osse101/idlegarden/internal/cooldown"
	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/logger"
	"github.com/osse101/idlegarden/internal/repository"
	"github.com/osse101/idlegarden/internal/reward"
)

func validRewardType(rewardType string) error {
	if !slices.Contains(domain.RewardTypes, rewardType) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownRewardType, rewardType)
	}
	return nil
}

func newCooldownRecord(userID, rewardType string, now time.Time, cfg cooldown.Config) domain.CooldownRecord {
	return domain.CooldownRecord{
		UserID:         userID,
		RewardType:     rewardType,
		DailyResetDate: cooldown.DayOf(now),
		MaxDaily:       cfg.GetMaxDaily(rewardType),
	}
}

// CooldownState returns the gate view for one reward type with the day reset applied
func (s *service) CooldownState(ctx context.Context, userID, rewardType string) (*domain.CooldownState, error) {
	if err := validRewardType(rewardType); err != nil {
		return nil, err
	}
	now := s.now()
	rec, err := s.repo.GetCooldown(ctx, userID, rewardType)
	if err != nil {
		return nil, fmt.Errorf("failed to get cooldown: %w", err)
	}
	if rec == nil {
		fresh := newCooldownRecord(userID, rewardType, now, s.cfg.Cooldown)
		rec = &fresh
	}
	state := cooldown.Evaluate(*rec, now, s.cfg.Cooldown)
	return &state, nil
}

// Grant runs the increment-and-check under a per user and reward type lock and
// credits the reward in the same transaction.
func (s *service) Grant(ctx context.Context, req domain.GrantRequest) (*domain.GrantResult, error) {
	log := logger.FromContext(ctx)
	log.Info("Grant called", logger.AttrKeyUserID, req.UserID, "reward_type", req.RewardType, "amount", req.RewardAmount)

	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}
	if err := validRewardType(req.RewardType); err != nil {
		return nil, err
	}
	if err := s.validAmount(req); err != nil {
		return nil, err
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

	if err := tx.LockCooldown(ctx, req.UserID, req.RewardType); err != nil {
		return nil, fmt.Errorf("failed to lock cooldown: %w", err)
	}
	econ, err := tx.GetEconomyForUpdate(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	current, err := tx.GetCooldownForUpdate(ctx, req.UserID, req.RewardType)
	if err != nil {
		return nil, fmt.Errorf("failed to get cooldown: %w", err)
	}
	if current == nil {
		fresh := newCooldownRecord(req.UserID, req.RewardType, now, s.cfg.Cooldown)
		current = &fresh
	}

	rec, err := cooldown.TryGrant(*current, now, req.AdDurationMs, s.cfg.Cooldown)
	if err != nil {
		log.Info(LogMsgGrantRejected, logger.AttrKeyUserID, req.UserID, "reward_type", req.RewardType, "reason", err.Error())
		return nil, err
	}

	result := &domain.GrantResult{Success: true, DailyCount: rec.DailyCount, MaxDaily: rec.MaxDaily}
	switch req.RewardType {
	case domain.RewardTypeCoins:
		econ.Coins = reward.AddCoins(econ.Coins, req.RewardAmount)
	case domain.RewardTypeGems:
		econ.Gems += req.RewardAmount
	case domain.RewardTypeGrowthBoost, domain.RewardTypeCoinBoost:
		boost := adBoost(req.RewardType, now)
		if err := tx.AddBoost(ctx, req.UserID, boost); err != nil {
			return nil, fmt.Errorf("failed to add boost: %w", err)
		}
		result.Boost = &boost
	}
	econ.Revision++

	if err := tx.UpsertCooldown(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save cooldown: %w", err)
	}
	if err := tx.UpdateEconomy(ctx, *econ); err != nil {
		return nil, fmt.Errorf("failed to update economy: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTx, err)
	}

	log.Info(LogMsgGrantSettled, logger.AttrKeyUserID, req.UserID, "reward_type", req.RewardType,
		"daily_count", rec.DailyCount, "max_daily", rec.MaxDaily, logger.AttrKeyRevision, econ.Revision)

	s.publishGrant(ctx, req.IdempotencyKey, *econ, rec, req.RewardAmount)

	final := *econ
	result.Economy = &final
	return result, nil
}

func (s *service) validAmount(req domain.GrantRequest) error {
	switch req.RewardType {
	case domain.RewardTypeCoins, domain.RewardTypeGems:
		if req.RewardAmount < 1 || req.RewardAmount > s.cfg.MaxRewardAmount {
			return fmt.Errorf("%w: amount %d outside 1..%d", domain.ErrInvalidInput, req.RewardAmount, s.cfg.MaxRewardAmount)
		}
	}
	return nil
}

func adBoost(rewardType string, now time.Time) domain.ActiveBoost {
	boost := domain.ActiveBoost{
		EffectType:  domain.EffectGrowth,
		EffectValue: domain.AdGrowthBoostValue,
		ExpiresAt:   now.Add(domain.AdBoostDuration),
		Source:      domain.SourceAd,
	}
	if rewardType == domain.RewardTypeCoinBoost {
		boost.EffectType = domain.EffectHarvest
		boost.EffectValue = domain.AdCoinBoostValue
	}
	return boost
}
