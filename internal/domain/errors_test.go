package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"wrapped validation", fmt.Errorf("%w: plot 3", ErrPlotLocked), KindValidation},
		{"conflict wrapping validation", fmt.Errorf("%w: %w", ErrConcurrencyConflict, ErrNothingToHarvest), KindConcurrencyConflict},
		{"cost mismatch", ErrCostMismatch, KindCostMismatch},
		{"quota", ErrQuotaExceeded, KindQuotaExceeded},
		{"deadline", context.DeadlineExceeded, KindAuthorityUnavailable},
		{"unknown", errors.New("disk on fire"), KindFatal},
		{"rejected", ErrAuthorityRejected, KindFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsDefinitiveFailure(t *testing.T) {
	assert.False(t, IsDefinitiveFailure(nil))
	assert.False(t, IsDefinitiveFailure(fmt.Errorf("post: %w", ErrAuthorityUnavailable)))
	assert.True(t, IsDefinitiveFailure(ErrInsufficientFunds))
	assert.True(t, IsDefinitiveFailure(errors.New("boom")))
}

func TestErrorCodes_RoundTrip(t *testing.T) {
	for _, c := range errorCodes {
		assert.Equal(t, c.code, CodeOf(c.err))
		assert.ErrorIs(t, ErrorForCode(c.code), c.err)
	}

	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeNotReady, CodeOf(fmt.Errorf("%w: 12s remaining", ErrNotReady)))
	assert.ErrorIs(t, ErrorForCode("no_such_code"), ErrAuthorityRejected)
}
