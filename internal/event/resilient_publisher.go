package event

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/osse101/idlegarden/internal/logger"
)

type retryEntry struct {
	event     Event
	attempt   int
	nextRetry time.Time
	lastErr   error
}

// ResilientPublisher wraps a Bus with asynchronous retries and a dead-letter file.
// The first attempt is synchronous; failures are retried by a single background worker
// with exponential backoff and dead-lettered once maxRetries is exhausted.
type ResilientPublisher struct {
	bus        Bus
	retryQueue chan retryEntry
	maxRetries int
	retryDelay time.Duration
	deadLetter *DeadLetterWriter

	shutdown     chan struct{}
	shutdownOnce sync.Once
	closed       atomic.Bool
	wg           sync.WaitGroup
}

// NewResilientPublisher creates a publisher and starts its retry worker
func NewResilientPublisher(bus Bus, maxRetries int, retryDelay time.Duration, deadLetterPath string) (*ResilientPublisher, error) {
	dl, err := NewDeadLetterWriter(deadLetterPath)
	if err != nil {
		return nil, err
	}

	rp := &ResilientPublisher{
		bus:        bus,
		retryQueue: make(chan retryEntry, RetryQueueBufferSize),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		deadLetter: dl,
		shutdown:   make(chan struct{}),
	}

	rp.wg.Add(1)
	go rp.retryWorker()

	return rp, nil
}

// PublishWithRetry publishes event, queuing it for retry on failure. It never blocks on the retry path.
func (rp *ResilientPublisher) PublishWithRetry(ctx context.Context, event Event) {
	if rp.closed.Load() {
		logger.FromContext(ctx).Warn(LogMsgEventDroppedShutdown, "event_type", event.Type)
		rp.writeDeadLetter(event, 0, nil)
		return
	}

	err := rp.bus.Publish(ctx, event)
	if err == nil {
		return
	}

	logger.FromContext(ctx).Warn(LogMsgEventPublishFailed, "event_type", event.Type, "error", err)
	rp.enqueue(retryEntry{
		event:     event,
		attempt:   1,
		nextRetry: time.Now().Add(CalculateRetryDelay(rp.retryDelay, 1)),
		lastErr:   err,
	})
}

// Publish satisfies Bus; delivery failures are absorbed by the retry path.
func (rp *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	rp.PublishWithRetry(ctx, event)
	return nil
}

// Subscribe delegates to the wrapped bus
func (rp *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	rp.bus.Subscribe(eventType, handler)
}

func (rp *ResilientPublisher) enqueue(entry retryEntry) {
	select {
	case rp.retryQueue <- entry:
	default:
		logger.FromContext(context.Background()).Error(LogMsgRetryQueueFull, "event_type", entry.event.Type)
		rp.writeDeadLetter(entry.event, entry.attempt, entry.lastErr)
	}
}

func (rp *ResilientPublisher) retryWorker() {
	defer rp.wg.Done()

	for {
		select {
		case <-rp.shutdown:
			rp.drain()
			return
		case entry := <-rp.retryQueue:
			if wait := time.Until(entry.nextRetry); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-timer.C:
				case <-rp.shutdown:
					timer.Stop()
					rp.attemptFinal(entry)
					rp.drain()
					return
				}
			}
			rp.attempt(entry)
		}
	}
}

func (rp *ResilientPublisher) attempt(entry retryEntry) {
	log := logger.FromContext(context.Background())
	err := rp.bus.Publish(context.Background(), entry.event)
	if err == nil {
		log.Info(LogMsgEventRetrySucceeded, "event_type", entry.event.Type, "attempt", entry.attempt)
		return
	}

	entry.lastErr = err
	if entry.attempt >= rp.maxRetries {
		log.Error(LogMsgEventRetryExhausted, "event_type", entry.event.Type, "attempts", entry.attempt+1)
		rp.writeDeadLetter(entry.event, entry.attempt+1, err)
		return
	}

	entry.attempt++
	entry.nextRetry = time.Now().Add(CalculateRetryDelay(rp.retryDelay, entry.attempt))
	log.Warn(LogMsgEventRetryFailed, "event_type", entry.event.Type, "attempt", entry.attempt, "error", err)
	rp.enqueue(entry)
}

// attemptFinal tries once more without rescheduling.
func (rp *ResilientPublisher) attemptFinal(entry retryEntry) {
	if err := rp.bus.Publish(context.Background(), entry.event); err != nil {
		rp.writeDeadLetter(entry.event, entry.attempt+1, err)
	}
}

func (rp *ResilientPublisher) drain() {
	drained := 0
	for {
		select {
		case entry := <-rp.retryQueue:
			rp.attemptFinal(entry)
			drained++
		default:
			if drained > 0 {
				logger.FromContext(context.Background()).Info(LogMsgQueueDrainedShutdown, "count", drained)
			}
			return
		}
	}
}

func (rp *ResilientPublisher) writeDeadLetter(event Event, attempts int, lastErr error) {
	if rp.deadLetter == nil {
		return
	}
	if err := rp.deadLetter.Write(event, attempts, lastErr); err != nil {
		logger.FromContext(context.Background()).Error(LogMsgDeadLetterWriteFail, "event_type", event.Type, "error", err)
	}
}

// Shutdown stops the retry worker after a final attempt at every queued event
func (rp *ResilientPublisher) Shutdown(ctx context.Context) error {
	rp.shutdownOnce.Do(func() {
		rp.closed.Store(true)
		close(rp.shutdown)
	})

	done := make(chan struct{})
	go func() {
		rp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if rp.deadLetter != nil {
			return rp.deadLetter.Close()
		}
		return nil
	case <-ctx.Done():
		logger.FromContext(ctx).Error(LogMsgShutdownTimeout)
		return ctx.Err()
	}
}
