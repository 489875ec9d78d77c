package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPurger struct {
	mock.Mock
}

func (m *mockPurger) PurgeExpired(ctx context.Context, keyTTL time.Duration) (int64, int64, error) {
	args := m.Called(ctx, keyTTL)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func TestMaintenanceJob_Process(t *testing.T) {
	purger := new(mockPurger)
	purger.On("PurgeExpired", mock.Anything, 24*time.Hour).Return(int64(3), int64(7), nil).Once()

	err := NewMaintenanceJob(purger, 24*time.Hour).Process(context.Background())

	require.NoError(t, err)
	purger.AssertExpectations(t)
}

func TestMaintenanceJob_ProcessError(t *testing.T) {
	purger := new(mockPurger)
	purger.On("PurgeExpired", mock.Anything, time.Hour).Return(int64(0), int64(0), errors.New("db down")).Once()

	err := NewMaintenanceJob(purger, time.Hour).Process(context.Background())

	assert.EqualError(t, err, "db down")
}

func TestMaintenanceJob_ProcessHasDeadline(t *testing.T) {
	purger := new(mockPurger)
	purger.On("PurgeExpired", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), time.Hour).Return(int64(0), int64(0), nil).Once()

	require.NoError(t, NewMaintenanceJob(purger, time.Hour).Process(context.Background()))
	purger.AssertExpectations(t)
}

func TestMaintenanceWorker_InitialRun(t *testing.T) {
	purger := new(mockPurger)
	ran := make(chan struct{}, 1)
	purger.On("PurgeExpired", mock.Anything, time.Hour).Return(int64(0), int64(0), nil).Run(func(mock.Arguments) {
		ran <- struct{}{}
	})

	pool := NewPool(1, 4)
	pool.Start()
	defer pool.Stop()

	w := NewMaintenanceWorker(pool, NewMaintenanceJob(purger, time.Hour))
	w.Start(context.Background(), 10*time.Millisecond)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("initial maintenance did not run")
	}

	assert.Eventually(t, func() bool { return w.pendingTimers() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, w.Shutdown(context.Background()))
}

func TestMaintenanceWorker_ShutdownCancelsPendingRun(t *testing.T) {
	purger := new(mockPurger)

	pool := NewPool(1, 4)
	pool.Start()
	defer pool.Stop()

	w := NewMaintenanceWorker(pool, NewMaintenanceJob(purger, time.Hour))
	w.Start(context.Background(), time.Hour)
	assert.Equal(t, 1, w.pendingTimers())

	require.NoError(t, w.Shutdown(context.Background()))
	assert.Equal(t, 0, w.pendingTimers())
	purger.AssertNotCalled(t, "PurgeExpired", mock.Anything, mock.Anything)
}

func TestBaseWorker_RescheduleReplacesPendingRun(t *testing.T) {
	var w BaseWorker
	w.init()

	var runs atomic.Int32
	var first atomic.Bool
	require.True(t, w.schedule("purge", time.Hour, func() { first.Store(true) }))
	require.True(t, w.schedule("purge", 10*time.Millisecond, func() { runs.Add(1) }))
	assert.Equal(t, 1, w.pendingTimers())

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, first.Load())
	assert.Zero(t, w.pendingTimers())

	require.NoError(t, w.stop(context.Background(), "test"))
	assert.False(t, w.schedule("purge", time.Millisecond, func() { runs.Add(1) }), "no runs after stop")
}
