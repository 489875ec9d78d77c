package cooldown

import (
	"fmt"
	"time"

	"github.com/osse101/idlegarden/internal/domain"
)

// ErrOnCooldown is returned when a reward type is still cooling down
type ErrOnCooldown struct {
	RewardType string
	Remaining  time.Duration
}

func (e ErrOnCooldown) Error() string {
	minutes := int(e.Remaining.Minutes())
	seconds := int(e.Remaining.Seconds()) % SecondsPerMinute

	if minutes > 0 {
		return fmt.Sprintf(ErrFmtCooldownWithMinutes, e.RewardType, minutes, seconds)
	}
	return fmt.Sprintf(ErrFmtCooldownSecondsOnly, e.RewardType, seconds)
}

// Is allows errors.Is() to match both ErrOnCooldown and domain.ErrOnCooldown
func (e ErrOnCooldown) Is(target error) bool {
	if target == domain.ErrOnCooldown {
		return true
	}
	_, ok := target.(ErrOnCooldown)
	return ok
}

// ErrQuotaExceeded is returned when the daily grant limit has been reached
type ErrQuotaExceeded struct {
	RewardType    string
	TimeUntilNext time.Duration
	DailyCount    int
	MaxDaily      int
}

func (e ErrQuotaExceeded) Error() string {
	return fmt.Sprintf(ErrFmtQuotaExceeded, e.RewardType, e.DailyCount, e.MaxDaily, e.TimeUntilNext.Truncate(time.Second))
}

// Is allows errors.Is() to match both ErrQuotaExceeded and domain.ErrQuotaExceeded
func (e ErrQuotaExceeded) Is(target error) bool {
	if target == domain.ErrQuotaExceeded {
		return true
	}
	_, ok := target.(ErrQuotaExceeded)
	return ok
}
