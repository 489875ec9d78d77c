package worker

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/idlegarden/internal/logger"
)

// BaseWorker runs keyed one-shot timers. Scheduling a key that is already
// pending replaces the earlier timer, so a worker never has two runs of
// the same kind queued.
type BaseWorker struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped chan struct{}
	running sync.WaitGroup
}

func (w *BaseWorker) init() {
	if w.timers == nil {
		w.timers = make(map[string]*time.Timer)
	}
	if w.stopped == nil {
		w.stopped = make(chan struct{})
	}
}

// schedule runs fn once after delay unless key is rescheduled or the
// worker stops first. It reports false after stop.
func (w *BaseWorker) schedule(key string, delay time.Duration, fn func()) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.stopped:
		return false
	default:
	}

	if prev, ok := w.timers[key]; ok {
		prev.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		w.mu.Lock()
		if w.timers[key] != t {
			w.mu.Unlock()
			return
		}
		delete(w.timers, key)
		w.running.Add(1)
		w.mu.Unlock()

		defer w.running.Done()
		fn()
	})
	w.timers[key] = t
	return true
}

func (w *BaseWorker) pendingTimers() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}

// stop cancels pending timers and waits for runs already in progress
func (w *BaseWorker) stop(ctx context.Context, name string) error {
	log := logger.FromContext(ctx).With("worker", name)
	log.Info(LogMsgWorkerStopping)

	w.mu.Lock()
	close(w.stopped)
	for key, t := range w.timers {
		t.Stop()
		log.Debug(LogMsgWorkerRunCancelled, "run", key)
	}
	clear(w.timers)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(LogMsgWorkerStopped)
		return nil
	case <-ctx.Done():
		log.Warn(LogMsgWorkerStopTimeout)
		return ctx.Err()
	}
}
