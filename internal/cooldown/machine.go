// Package cooldown implements the reward grant gate: a dynamic cooldown scaled
// by ad length plus a daily quota that resets at day granularity.
package cooldown

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"time"

	"github.com/osse101/idlegarden/internal/domain"
)

// CooldownMinutes returns clamp(10, 120, round(15 + adMinutes*4)).
func CooldownMinutes(adDurationMs int64) int {
	if adDurationMs < 0 {
		adDurationMs = 0
	}
	minutes := int(math.Round(BaseCooldownMinutes + float64(adDurationMs)/MillisPerMinute*CooldownMinutesPerAdMinute))
	if minutes < MinCooldownMinutes {
		return MinCooldownMinutes
	}
	if minutes > MaxCooldownMinutes {
		return MaxCooldownMinutes
	}
	return minutes
}

// CooldownDuration is CooldownMinutes as a duration
func CooldownDuration(adDurationMs int64) time.Duration {
	return time.Duration(CooldownMinutes(adDurationMs)) * time.Minute
}

// DayOf truncates t to its UTC calendar day
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextReset returns the start of the day after now
func NextReset(now time.Time) time.Time {
	return DayOf(now).AddDate(0, 0, 1)
}

// Normalize returns the record as it reads at now: the daily counter resets once
// when the stored reset date precedes the current day. The input is not modified.
func Normalize(rec domain.CooldownRecord, now time.Time) domain.CooldownRecord {
	today := DayOf(now)
	if DayOf(rec.DailyResetDate).Before(today) {
		rec.DailyCount = 0
		rec.DailyResetDate = today
	}
	return rec
}

// Evaluate projects a record into the state reported to clients.
func Evaluate(rec domain.CooldownRecord, now time.Time, cfg Config) domain.CooldownState {
	rec = Normalize(rec, now)
	if rec.MaxDaily <= 0 {
		rec.MaxDaily = cfg.GetMaxDaily(rec.RewardType)
	}

	state := domain.CooldownState{
		RewardType: rec.RewardType,
		DailyCount: rec.DailyCount,
		MaxDaily:   rec.MaxDaily,
		Available:  true,
	}

	if state.DailyLimitReached() {
		state.Available = false
		state.TimeUntilNextSeconds = ceilSeconds(NextReset(now).Sub(now))
		return state
	}

	if remaining := cooldownRemaining(rec, now, cfg); remaining > 0 {
		state.Available = false
		state.TimeUntilNextSeconds = ceilSeconds(remaining)
	}
	return state
}

// TryGrant is the atomic increment-and-check. It returns the updated record on
// success. On rejection it returns an ErrQuotaExceeded or ErrOnCooldown and the
// daily counter is left as it was. Callers must hold the per-user, per-type lock
// across the read, this call and the write.
func TryGrant(rec domain.CooldownRecord, now time.Time, adDurationMs int64, cfg Config) (domain.CooldownRecord, error) {
	rec = Normalize(rec, now)
	if rec.MaxDaily <= 0 {
		rec.MaxDaily = cfg.GetMaxDaily(rec.RewardType)
	}

	if rec.DailyCount >= rec.MaxDaily {
		return rec, ErrQuotaExceeded{
			RewardType:    rec.RewardType,
			TimeUntilNext: NextReset(now).Sub(now),
			DailyCount:    rec.DailyCount,
			MaxDaily:      rec.MaxDaily,
		}
	}

	if remaining := cooldownRemaining(rec, now, cfg); remaining > 0 {
		return rec, ErrOnCooldown{RewardType: rec.RewardType, Remaining: remaining}
	}

	grantAt := now
	until := now.Add(CooldownDuration(adDurationMs))
	rec.DailyCount++
	rec.LastGrantAt = &grantAt
	rec.CooldownUntil = &until
	return rec, nil
}

func cooldownRemaining(rec domain.CooldownRecord, now time.Time, cfg Config) time.Duration {
	if cfg.DevMode || rec.CooldownUntil == nil {
		return 0
	}
	if remaining := rec.CooldownUntil.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Seconds()))
}

// LockKey creates a consistent int64 hash from userID + rewardType for advisory locking
func LockKey(userID, rewardType string) int64 {
	h := sha256.Sum256([]byte(userID + HashSeparator + rewardType))
	// First 8 bytes with the MSB masked keep the key positive
	return int64(binary.BigEndian.Uint64(h[:8]) & HashMaskPositiveInt64)
}
