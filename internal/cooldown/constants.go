package cooldown

import "time"

// =============================================================================
// Cooldown Scaling
// =============================================================================

const (
	// MinCooldownMinutes is the shortest cooldown any grant can buy
	MinCooldownMinutes = 10

	// MaxCooldownMinutes is the longest cooldown any grant can buy
	MaxCooldownMinutes = 120

	// BaseCooldownMinutes is the cooldown for a zero-length ad
	BaseCooldownMinutes = 15.0

	// CooldownMinutesPerAdMinute scales the cooldown with ad length
	CooldownMinutesPerAdMinute = 4.0

	// MillisPerMinute converts ad durations
	MillisPerMinute = 60000.0
)

// =============================================================================
// Quota Defaults
// =============================================================================

const (
	// DefaultMaxDaily is the daily grant quota when no per-type override exists
	DefaultMaxDaily = 5

	// Day is the reset granularity of the daily counter
	Day = 24 * time.Hour
)

// =============================================================================
// Hash Constants
// =============================================================================

const (
	// HashSeparator is the separator used when combining userID and reward type for advisory lock hashing
	HashSeparator = ":"

	// HashMaskPositiveInt64 is the bit mask to ensure advisory lock keys are positive int64 values
	HashMaskPositiveInt64 = 0x7FFFFFFFFFFFFFFF
)

// =============================================================================
// Error Message Format Strings
// =============================================================================

const (
	// ErrFmtCooldownWithMinutes formats cooldown error with minutes and seconds
	ErrFmtCooldownWithMinutes = "%s reward on cooldown: %dm %ds remaining"

	// ErrFmtCooldownSecondsOnly formats cooldown error with seconds only
	ErrFmtCooldownSecondsOnly = "%s reward on cooldown: %ds remaining"

	// ErrFmtQuotaExceeded formats the daily limit error
	ErrFmtQuotaExceeded = "daily limit reached for %s (%d/%d), resets in %s"

	// ErrMsgRefreshFailed is returned when the mirror cannot be refreshed
	ErrMsgRefreshFailed = "failed to refresh cooldown state: %w"
)

// =============================================================================
// Log Message Constants
// =============================================================================

const (
	// LogMsgMirrorRefreshed is logged when the client mirror is replaced by authority state
	LogMsgMirrorRefreshed = "Cooldown mirror refreshed"
)

// SecondsPerMinute is used for time duration formatting
const SecondsPerMinute = 60
