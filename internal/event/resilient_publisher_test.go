package event

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/idlegarden/internal/domain"
)

// flakyBus fails the first failures publishes, or every publish when failures < 0
type flakyBus struct {
	failures int32
	calls    atomic.Int32

	mu   sync.Mutex
	seen []Event
}

func (b *flakyBus) Publish(ctx context.Context, evt Event) error {
	n := b.calls.Add(1)
	b.mu.Lock()
	b.seen = append(b.seen, evt)
	b.mu.Unlock()
	if b.failures < 0 || n <= b.failures {
		return errors.New("subscriber unavailable")
	}
	return nil
}

func (b *flakyBus) Subscribe(eventType Type, handler Handler) {}

func deadLetterPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "deadletter.jsonl")
}

func harvestEvent() Event {
	return NewHarvestCompletedEvent("alice", 1, "carrot", 190, 20, 1)
}

func TestResilientPublisher_FirstAttemptSucceeds(t *testing.T) {
	path := deadLetterPath(t)
	bus := &flakyBus{}
	rp, err := NewResilientPublisher(bus, 3, 10*time.Millisecond, path)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), harvestEvent())
	require.NoError(t, rp.Shutdown(context.Background()))

	assert.Equal(t, int32(1), bus.calls.Load())
	entries, err := ReadDeadLetters(path)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResilientPublisher_RetriesTransientFailure(t *testing.T) {
	path := deadLetterPath(t)
	bus := &flakyBus{failures: 1}
	rp, err := NewResilientPublisher(bus, 3, 5*time.Millisecond, path)
	require.NoError(t, err)

	require.NoError(t, rp.Publish(context.Background(), harvestEvent()), "failures are absorbed")
	assert.Eventually(t, func() bool { return bus.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))

	entries, err := ReadDeadLetters(path)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResilientPublisher_ExhaustedRetriesAreDeadLettered(t *testing.T) {
	path := deadLetterPath(t)
	bus := &flakyBus{failures: -1}
	rp, err := NewResilientPublisher(bus, 2, 5*time.Millisecond, path)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), harvestEvent())
	assert.Eventually(t, func() bool {
		entries, _ := ReadDeadLetters(path)
		return len(entries) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))

	entries, err := ReadDeadLetters(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, DeadLetterSchemaVersion, entries[0].SchemaVersion)
	assert.Equal(t, 3, entries[0].Attempts, "initial attempt plus two retries")
	assert.Equal(t, "subscriber unavailable", entries[0].LastError)
	assert.Equal(t, HarvestCompleted, entries[0].Event.Type)

	payload, err := DecodePayload[domain.HarvestCompletedPayloadV1](entries[0].Event.Payload)
	require.NoError(t, err)
	assert.Equal(t, "carrot", payload.PlantTypeID)
	assert.Equal(t, int64(190), payload.Coins)
}

func TestResilientPublisher_FullQueueDeadLettersImmediately(t *testing.T) {
	path := deadLetterPath(t)
	dl, err := NewDeadLetterWriter(path)
	require.NoError(t, err)

	// No worker drains the one-slot queue
	rp := &ResilientPublisher{
		bus:        &flakyBus{failures: -1},
		retryQueue: make(chan retryEntry, 1),
		maxRetries: 3,
		retryDelay: time.Hour,
		deadLetter: dl,
		shutdown:   make(chan struct{}),
	}

	for plot := 1; plot <= 3; plot++ {
		rp.PublishWithRetry(context.Background(), NewPlotReadyEvent("alice", plot))
	}

	entries, err := ReadDeadLetters(path)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Len(t, rp.retryQueue, 1)
	require.NoError(t, dl.Close())
}

func TestResilientPublisher_ShutdownMakesFinalAttempt(t *testing.T) {
	path := deadLetterPath(t)
	bus := &flakyBus{failures: 1}
	rp, err := NewResilientPublisher(bus, 3, time.Hour, path)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), harvestEvent())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, rp.Shutdown(ctx))

	assert.Equal(t, int32(2), bus.calls.Load(), "queued retry is flushed instead of waiting an hour")
	entries, err := ReadDeadLetters(path)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCalculateRetryDelay(t *testing.T) {
	base := 100 * time.Millisecond
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: base},
		{attempt: 1, want: base},
		{attempt: 2, want: 200 * time.Millisecond},
		{attempt: 4, want: 800 * time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateRetryDelay(base, tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestResilientPublisher_ConcurrentPublishes(t *testing.T) {
	bus := &flakyBus{}
	rp, err := NewResilientPublisher(bus, 3, 5*time.Millisecond, deadLetterPath(t))
	require.NoError(t, err)

	const publishers, perPublisher = 10, 5
	var wg sync.WaitGroup
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				rp.PublishWithRetry(context.Background(), NewPlotReadyEvent("user", p*perPublisher+i))
			}
		}(p)
	}
	wg.Wait()
	require.NoError(t, rp.Shutdown(context.Background()))

	assert.Equal(t, int32(publishers*perPublisher), bus.calls.Load())
}

func TestReadDeadLetters(t *testing.T) {
	entries, err := ReadDeadLetters(filepath.Join(t.TempDir(), "missing.jsonl"))
	require.NoError(t, err)
	assert.Nil(t, entries)

	path := deadLetterPath(t)
	dl, err := NewDeadLetterWriter(path)
	require.NoError(t, err)
	require.NoError(t, dl.Write(NewPlotReadyEvent("alice", 4), 0, nil))
	require.NoError(t, dl.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	entries, err = ReadDeadLetters(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].LastError)
	assert.Equal(t, PlotReady, entries[0].Event.Type)
}
