package worker

import (
	"context"
	"sync"

	"github.com/osse101/idlegarden/internal/logger"
)

// Job represents a task to be executed by a worker
type Job interface {
	Process(ctx context.Context) error
}

// JobFunc adapts a function to Job
type JobFunc func(ctx context.Context) error

// Process calls f(ctx)
func (f JobFunc) Process(ctx context.Context) error {
	return f(ctx)
}

// Pool runs queued jobs on a fixed number of goroutines
type Pool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewPool creates a new worker pool
func NewPool(workers int, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobQueue:
			if err := job.Process(p.ctx); err != nil {
				logger.FromContext(p.ctx).Error(LogMsgWorkerJobFailed, "error", err)
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// Enqueue adds a job to the queue without blocking.
// It returns false when the queue is full or the pool is stopped.
func (p *Pool) Enqueue(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		logger.FromContext(p.ctx).Warn(LogMsgQueueFull)
		return false
	}
}

// Stop cancels running jobs and waits for the workers to exit
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}
