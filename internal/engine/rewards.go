package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/idlegarden/internal/cooldown"
	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/event"
	"github.com/osse101/idlegarden/internal/logger"
)

// ClaimAdReward plays a rewarded placement and, when it completes, asks the
// authority to grant amount of rewardType. The local gate is consulted first so
// a known cooldown or exhausted quota never reaches the ad network.
func (e *Engine) ClaimAdReward(ctx context.Context, rewardType string, amount int64) (*domain.GrantResult, error) {
	log := logger.FromContext(ctx)

	release, err := e.guard.Acquire(ctx, fmt.Sprintf(GuardKeyReward, rewardType))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := e.mirror.Check(rewardType); err != nil {
		return nil, err
	}

	completed, adMs, err := e.oracle.ShowRewarded(ctx, rewardType)
	if err != nil || !completed {
		log.Info(LogMsgAdNotCompleted, "reward_type", rewardType, "error", err)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrNoReward, err)
		}
		return nil, domain.ErrNoReward
	}

	key := uuid.NewString()
	deltaID := ""
	switch rewardType {
	case domain.RewardTypeCoins:
		deltaID = key
		e.publish(ctx, event.NewRewardClaimedEvent(deltaID, e.cfg.UserID, domain.RewardKindCoins, amount, domain.SourceAd))
	case domain.RewardTypeGems:
		e.publish(ctx, event.NewRewardClaimedEvent(key, e.cfg.UserID, domain.RewardKindGems, amount, domain.SourceAd))
	}

	res, err := e.auth.Grant(ctx, domain.GrantRequest{
		UserID:         e.cfg.UserID,
		RewardType:     rewardType,
		RewardAmount:   amount,
		AdDurationMs:   adMs,
		IdempotencyKey: key,
	})
	if err != nil {
		e.settleFailure(ctx, deltaID, err)
		if domain.KindOf(err) != domain.KindAuthorityUnavailable {
			e.refreshGate(ctx, rewardType, nil, adMs)
		}
		return nil, err
	}

	if res.Economy != nil {
		e.mu.Lock()
		e.commitLocked(*res.Economy, nil)
		if res.Boost != nil && e.snapshot != nil {
			e.snapshot.Boosts = append(e.snapshot.Boosts, *res.Boost)
		}
		e.mu.Unlock()
		if deltaID != "" {
			e.recon.Settle(deltaID, *res.Economy)
		} else {
			e.recon.SetAuthoritative(*res.Economy)
		}
	} else if deltaID != "" {
		e.recon.Revert(deltaID)
	}

	e.refreshGate(ctx, rewardType, res, adMs)
	return res, nil
}

// refreshGate replaces the mirrored gate with the authority's view, falling back
// to a state derived from the grant result when the authority cannot be reached.
func (e *Engine) refreshGate(ctx context.Context, rewardType string, res *domain.GrantResult, adMs int64) {
	if _, err := e.mirror.Refresh(ctx, e.auth, e.cfg.UserID, rewardType); err == nil || res == nil {
		if err != nil {
			logger.FromContext(ctx).Warn(LogMsgMirrorRefreshFail, "reward_type", rewardType, "error", err)
		}
		return
	}
	e.mirror.Update(grantedState(rewardType, res, e.now(), adMs))
}

func grantedState(rewardType string, res *domain.GrantResult, now time.Time, adMs int64) domain.CooldownState {
	state := domain.CooldownState{
		RewardType: rewardType,
		DailyCount: res.DailyCount,
		MaxDaily:   res.MaxDaily,
	}
	wait := cooldown.CooldownDuration(adMs)
	if state.DailyLimitReached() {
		wait = cooldown.NextReset(now).Sub(now)
	}
	state.TimeUntilNextSeconds = int64((wait + time.Second - 1) / time.Second)
	return state
}
