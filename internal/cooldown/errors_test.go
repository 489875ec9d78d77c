package cooldown_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/osse101/idlegarden/internal/cooldown"
	"github.com/osse101/idlegarden/internal/domain"
)

func TestErrOnCooldown_Error(t *testing.T) {
	tests := []struct {
		name          string
		err           cooldown.ErrOnCooldown
		wantSubstring string
	}{
		{
			name:          "minutes and seconds",
			err:           cooldown.ErrOnCooldown{RewardType: "coins", Remaining: 2*time.Minute + 30*time.Second},
			wantSubstring: fmt.Sprintf(cooldown.ErrFmtCooldownWithMinutes, "coins", 2, 30),
		},
		{
			name:          "seconds only",
			err:           cooldown.ErrOnCooldown{RewardType: "gems", Remaining: 45 * time.Second},
			wantSubstring: fmt.Sprintf(cooldown.ErrFmtCooldownSecondsOnly, "gems", 45),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.err.Error(), tt.wantSubstring)
		})
	}
}

func TestErrOnCooldown_Is(t *testing.T) {
	err := fmt.Errorf("grant: %w", cooldown.ErrOnCooldown{RewardType: "coins", Remaining: time.Minute})

	assert.True(t, errors.Is(err, cooldown.ErrOnCooldown{}))
	assert.True(t, errors.Is(err, domain.ErrOnCooldown))
	assert.False(t, errors.Is(err, domain.ErrQuotaExceeded))
	assert.False(t, errors.Is(err, errors.New("other error")))
}

func TestErrQuotaExceeded_Is(t *testing.T) {
	err := cooldown.ErrQuotaExceeded{RewardType: "coins", TimeUntilNext: time.Hour, DailyCount: 5, MaxDaily: 5}

	assert.True(t, errors.Is(err, cooldown.ErrQuotaExceeded{}))
	assert.True(t, errors.Is(err, domain.ErrQuotaExceeded))
	assert.False(t, errors.Is(err, domain.ErrOnCooldown))
	assert.Contains(t, err.Error(), "5/5")
	assert.Contains(t, err.Error(), "1h0m0s")
}
