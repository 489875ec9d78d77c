package cooldown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/idlegarden/internal/domain"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) CooldownState(ctx context.Context, userID, rewardType string) (*domain.CooldownState, error) {
	args := m.Called(ctx, userID, rewardType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CooldownState), args.Error(1)
}

func TestMirror_ConservativeUntilFetched(t *testing.T) {
	m := NewMirror(nil)

	assert.False(t, m.Known("coins"))
	assert.False(t, m.Get("coins").Available)
	assert.ErrorIs(t, m.Check("coins"), domain.ErrAuthorityUnavailable)
}

func TestMirror_RefreshReplaces(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	m := NewMirror(func() time.Time { return now })
	src := new(mockSource)
	ctx := context.Background()

	src.On("CooldownState", ctx, "u1", "coins").
		Return(&domain.CooldownState{RewardType: "coins", Available: true, DailyCount: 1, MaxDaily: 5}, nil).Once()

	state, err := m.Refresh(ctx, src, "u1", "coins")
	require.NoError(t, err)
	assert.True(t, state.Available)
	assert.NoError(t, m.Check("coins"))

	src.On("CooldownState", ctx, "u1", "coins").
		Return(&domain.CooldownState{RewardType: "coins", Available: false, DailyCount: 2, MaxDaily: 5, TimeUntilNextSeconds: 600}, nil).Once()

	state, err = m.Refresh(ctx, src, "u1", "coins")
	require.NoError(t, err)
	assert.False(t, state.Available)
	assert.Equal(t, 2, state.DailyCount)
	src.AssertExpectations(t)
}

func TestMirror_RefreshFailureKeepsCache(t *testing.T) {
	m := NewMirror(nil)
	src := new(mockSource)
	ctx := context.Background()
	src.On("CooldownState", ctx, "u1", "gems").Return(nil, errors.New("dial tcp: refused"))

	_, err := m.Refresh(ctx, src, "u1", "gems")
	assert.Error(t, err)
	assert.False(t, m.Known("gems"))
}

func TestMirror_CountdownFromFetchTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	m := NewMirror(func() time.Time { return now })
	m.Update(domain.CooldownState{RewardType: "coins", Available: false, DailyCount: 1, MaxDaily: 5, TimeUntilNextSeconds: 120})

	now = now.Add(50 * time.Second)
	err := m.Check("coins")
	var cd ErrOnCooldown
	require.True(t, errors.As(err, &cd))
	assert.Equal(t, 70*time.Second, cd.Remaining)

	now = now.Add(70 * time.Second)
	assert.NoError(t, m.Check("coins"))
}

func TestMirror_DailyLimit(t *testing.T) {
	now := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	m := NewMirror(func() time.Time { return now })
	m.Update(domain.CooldownState{RewardType: "coins", Available: false, DailyCount: 5, MaxDaily: 5, TimeUntilNextSeconds: 3600})

	err := m.Check("coins")
	var quota ErrQuotaExceeded
	require.True(t, errors.As(err, &quota))
	assert.Equal(t, time.Hour, quota.TimeUntilNext)
	assert.Equal(t, 5, quota.DailyCount)
}
