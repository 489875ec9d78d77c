package cooldown

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/logger"
)

// StateSource reads authoritative cooldown state
type StateSource interface {
	CooldownState(ctx context.Context, userID, rewardType string) (*domain.CooldownState, error)
}

type mirrorEntry struct {
	state     domain.CooldownState
	fetchedAt time.Time
}

// Mirror is the client's cached copy of authority cooldown state. Until a reward
// type has been fetched it reads as unavailable. Every fetch replaces the entry;
// countdowns are derived locally from the fetch time.
type Mirror struct {
	mu      sync.RWMutex
	now     func() time.Time
	entries map[string]mirrorEntry
}

// NewMirror creates an empty mirror. A nil clock means time.Now.
func NewMirror(now func() time.Time) *Mirror {
	if now == nil {
		now = time.Now
	}
	return &Mirror{now: now, entries: make(map[string]mirrorEntry)}
}

// Update replaces the cached state for its reward type
func (m *Mirror) Update(state domain.CooldownState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[state.RewardType] = mirrorEntry{state: state, fetchedAt: m.now()}
}

// Known reports whether the reward type has been fetched at least once
func (m *Mirror) Known(rewardType string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[rewardType]
	return ok
}

// Get returns the cached state with the countdown advanced to now.
func (m *Mirror) Get(rewardType string) domain.CooldownState {
	m.mu.RLock()
	entry, ok := m.entries[rewardType]
	m.mu.RUnlock()

	if !ok {
		return domain.CooldownState{RewardType: rewardType, Available: false}
	}

	state := entry.state
	if state.Available {
		return state
	}

	remaining := state.TimeUntilNextSeconds - int64(m.now().Sub(entry.fetchedAt)/time.Second)
	if remaining > 0 {
		state.TimeUntilNextSeconds = remaining
		return state
	}

	// The countdown ran out locally; the authority decides on the next attempt
	state.TimeUntilNextSeconds = 0
	if state.DailyLimitReached() {
		state.DailyCount = 0
	}
	state.Available = true
	return state
}

// Check returns nil when a grant attempt is worth sending.
func (m *Mirror) Check(rewardType string) error {
	if !m.Known(rewardType) {
		return fmt.Errorf("%w: cooldown state for %s not loaded", domain.ErrAuthorityUnavailable, rewardType)
	}

	state := m.Get(rewardType)
	if state.Available {
		return nil
	}
	remaining := time.Duration(state.TimeUntilNextSeconds) * time.Second
	if state.DailyLimitReached() {
		return ErrQuotaExceeded{
			RewardType:    rewardType,
			TimeUntilNext: remaining,
			DailyCount:    state.DailyCount,
			MaxDaily:      state.MaxDaily,
		}
	}
	return ErrOnCooldown{RewardType: rewardType, Remaining: remaining}
}

// Refresh fetches the authoritative state and replaces the cached entry.
func (m *Mirror) Refresh(ctx context.Context, src StateSource, userID, rewardType string) (domain.CooldownState, error) {
	state, err := src.CooldownState(ctx, userID, rewardType)
	if err != nil {
		return m.Get(rewardType), fmt.Errorf(ErrMsgRefreshFailed, err)
	}
	m.Update(*state)
	logger.FromContext(ctx).Debug(LogMsgMirrorRefreshed,
		"reward_type", rewardType,
		"available", state.Available,
		"daily_count", state.DailyCount,
		"max_daily", state.MaxDaily)
	return m.Get(rewardType), nil
}
