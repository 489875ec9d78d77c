package main

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedAd_Completes(t *testing.T) {
	var buf bytes.Buffer
	ad := newSimulatedAd(10*time.Millisecond, false, &buf)

	completed, ms, err := ad.ShowRewarded(context.Background(), "growth_boost")
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, int64(10), ms)
	assert.Contains(t, buf.String(), "Growth Boost")
}

func TestSimulatedAd_Abandoned(t *testing.T) {
	completed, ms, err := newSimulatedAd(time.Hour, true, io.Discard).ShowRewarded(context.Background(), "coins")
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Zero(t, ms)
}

func TestSimulatedAd_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	completed, _, err := newSimulatedAd(time.Hour, false, io.Discard).ShowRewarded(ctx, "coins")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, completed)
}

func TestSimulatedAd_NegativeDuration(t *testing.T) {
	completed, ms, err := newSimulatedAd(-time.Second, false, io.Discard).ShowRewarded(context.Background(), "coins")
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Zero(t, ms)
}

func TestAdOptions_Oracle(t *testing.T) {
	var none *adOptions
	completed, _, err := none.oracle(nil, io.Discard).ShowRewarded(context.Background(), "coins")
	require.NoError(t, err)
	assert.False(t, completed)
}
