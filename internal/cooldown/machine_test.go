package cooldown

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/idlegarden/internal/domain"
)

func TestCooldownMinutes(t *testing.T) {
	tests := []struct {
		name string
		adMs int64
		want int
	}{
		{"thirty second ad", 30000, 17},
		{"zero length", 0, 15},
		{"negative treated as zero", -5000, 15},
		{"one minute", 60000, 19},
		{"clamped high", 60 * 60000, 120},
		{"just under cap", 26 * 60000, 119},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CooldownMinutes(tt.adMs))
		})
	}
}

func TestCooldownMinutes_Bounds(t *testing.T) {
	for ms := int64(0); ms <= 40*60000; ms += 7919 {
		m := CooldownMinutes(ms)
		assert.GreaterOrEqual(t, m, MinCooldownMinutes)
		assert.LessOrEqual(t, m, MaxCooldownMinutes)
	}
}

func TestNormalize_DayGranularity(t *testing.T) {
	rec := domain.CooldownRecord{
		RewardType:     domain.RewardTypeCoins,
		DailyCount:     4,
		DailyResetDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("same day keeps count", func(t *testing.T) {
		got := Normalize(rec, time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC))
		assert.Equal(t, 4, got.DailyCount)
	})

	t.Run("next day resets even under 24h", func(t *testing.T) {
		late := rec
		late.DailyResetDate = time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
		got := Normalize(late, time.Date(2026, 3, 2, 0, 30, 0, 0, time.UTC))
		assert.Equal(t, 0, got.DailyCount)
		assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), got.DailyResetDate)
	})

	t.Run("input untouched", func(t *testing.T) {
		_ = Normalize(rec, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, 4, rec.DailyCount)
	})
}

func TestTryGrant_QuotaRejectsSixth(t *testing.T) {
	cfg := Config{MaxDaily: map[string]int{domain.RewardTypeCoins: 5}}
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rec := domain.CooldownRecord{UserID: "u1", RewardType: domain.RewardTypeCoins, DailyResetDate: DayOf(now)}

	for i := 1; i <= 5; i++ {
		var err error
		rec, err = TryGrant(rec, now, 30000, cfg)
		require.NoError(t, err, "attempt %d", i)
		assert.Equal(t, i, rec.DailyCount)
		now = now.Add(CooldownDuration(30000))
	}

	got, err := TryGrant(rec, now, 30000, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Equal(t, domain.KindQuotaExceeded, domain.KindOf(err))
	assert.Equal(t, 5, got.DailyCount)

	var quota ErrQuotaExceeded
	require.True(t, errors.As(err, &quota))
	assert.Equal(t, NextReset(now).Sub(now), quota.TimeUntilNext)
}

func TestTryGrant_Cooldown(t *testing.T) {
	cfg := Config{}
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rec := domain.CooldownRecord{RewardType: domain.RewardTypeGems, DailyResetDate: DayOf(now)}

	rec, err := TryGrant(rec, now, 30000, cfg)
	require.NoError(t, err)
	require.NotNil(t, rec.CooldownUntil)
	assert.Equal(t, now.Add(17*time.Minute), *rec.CooldownUntil)

	later := now.Add(5 * time.Minute)
	got, err := TryGrant(rec, later, 30000, cfg)
	assert.ErrorIs(t, err, domain.ErrOnCooldown)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Equal(t, 1, got.DailyCount)

	var cd ErrOnCooldown
	require.True(t, errors.As(err, &cd))
	assert.Equal(t, 12*time.Minute, cd.Remaining)

	_, err = TryGrant(rec, now.Add(17*time.Minute), 30000, cfg)
	assert.NoError(t, err)
}

func TestTryGrant_DevModeSkipsTimerNotQuota(t *testing.T) {
	cfg := Config{DevMode: true, MaxDaily: map[string]int{domain.RewardTypeCoins: 2}}
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rec := domain.CooldownRecord{RewardType: domain.RewardTypeCoins, DailyResetDate: DayOf(now)}

	rec, err := TryGrant(rec, now, 0, cfg)
	require.NoError(t, err)
	rec, err = TryGrant(rec, now, 0, cfg)
	require.NoError(t, err)
	_, err = TryGrant(rec, now, 0, cfg)
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
}

func TestTryGrant_SerializedUnderLock(t *testing.T) {
	cfg := Config{DevMode: true, MaxDaily: map[string]int{domain.RewardTypeCoins: 5}}
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rec := domain.CooldownRecord{RewardType: domain.RewardTypeCoins, DailyResetDate: DayOf(now)}

	var mu sync.Mutex
	var wg sync.WaitGroup
	granted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu.Lock()
			defer mu.Unlock()
			next, err := TryGrant(rec, now, 0, cfg)
			if err == nil {
				rec = next
				granted++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, granted)
	assert.Equal(t, 5, rec.DailyCount)
}

func TestEvaluate(t *testing.T) {
	cfg := Config{MaxDaily: map[string]int{domain.RewardTypeCoins: 3}}
	now := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	until := now.Add(90 * time.Second)

	tests := []struct {
		name          string
		rec           domain.CooldownRecord
		wantAvailable bool
		wantSeconds   int64
		wantCount     int
	}{
		{
			name:          "fresh",
			rec:           domain.CooldownRecord{RewardType: domain.RewardTypeCoins},
			wantAvailable: true,
		},
		{
			name:          "cooling down",
			rec:           domain.CooldownRecord{RewardType: domain.RewardTypeCoins, CooldownUntil: &until, DailyCount: 1, DailyResetDate: DayOf(now)},
			wantAvailable: false,
			wantSeconds:   90,
			wantCount:     1,
		},
		{
			name:          "limit reached counts down to midnight",
			rec:           domain.CooldownRecord{RewardType: domain.RewardTypeCoins, DailyCount: 3, DailyResetDate: DayOf(now)},
			wantAvailable: false,
			wantSeconds:   2 * 3600,
			wantCount:     3,
		},
		{
			name:          "yesterday's limit is gone",
			rec:           domain.CooldownRecord{RewardType: domain.RewardTypeCoins, DailyCount: 3, DailyResetDate: DayOf(now).AddDate(0, 0, -1)},
			wantAvailable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.rec, now, cfg)
			assert.Equal(t, tt.wantAvailable, got.Available)
			assert.Equal(t, tt.wantSeconds, got.TimeUntilNextSeconds)
			assert.Equal(t, tt.wantCount, got.DailyCount)
			assert.Equal(t, 3, got.MaxDaily)
		})
	}
}

func TestLockKey(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		rewardType string
	}{
		{"normal", "user123", "coins"},
		{"empty", "", ""},
		{"symbols", "user!@#", "gems$%^"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h1 := LockKey(tt.userID, tt.rewardType)
			h2 := LockKey(tt.userID, tt.rewardType)
			assert.Equal(t, h1, h2, "hash should be deterministic")
			assert.GreaterOrEqual(t, h1, int64(0), "hash should be positive")
		})
	}

	t.Run("collisions", func(t *testing.T) {
		assert.NotEqual(t, LockKey("user1", "coins"), LockKey("user1", "gems"))
		assert.NotEqual(t, LockKey("user1", "coins"), LockKey("user2", "coins"))
	})
}
