package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/osse101/idlegarden/internal/worker"
)

// Enqueuer accepts jobs for execution
type Enqueuer interface {
	Enqueue(job worker.Job) bool
}

type entry struct {
	name     string
	interval time.Duration
	job      worker.Job
}

// Scheduler submits jobs to a worker pool at fixed intervals
type Scheduler struct {
	pool    Enqueuer
	mu      sync.Mutex
	entries []entry
	started bool
	quit    chan struct{}
	wg      sync.WaitGroup
	stop    sync.Once
}

// New creates a new scheduler
func New(pool Enqueuer) *Scheduler {
	return &Scheduler{
		pool: pool,
		quit: make(chan struct{}),
	}
}

// Schedule registers a job to run every interval. Jobs registered after
// Start begin ticking immediately.
func (s *Scheduler) Schedule(name string, interval time.Duration, job worker.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{name: name, interval: interval, job: job}
	s.entries = append(s.entries, e)
	if s.started {
		s.run(e)
	}
}

// Start begins ticking every registered job
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true
	for _, e := range s.entries {
		s.run(e)
		slog.InfoContext(ctx, LogMsgJobScheduled, "job", e.name, "interval", e.interval)
	}
}

func (s *Scheduler) run(e entry) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !s.pool.Enqueue(e.job) {
					slog.Warn(LogMsgJobSkipped, "job", e.name)
				}
			case <-s.quit:
				return
			}
		}
	}()
}

// Stop stops all scheduled jobs
func (s *Scheduler) Stop() {
	s.stop.Do(func() {
		close(s.quit)
		s.wg.Wait()
	})
}
