package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/idlegarden/internal/config"
	"github.com/osse101/idlegarden/internal/scheduler"
	"github.com/osse101/idlegarden/internal/worker"
)

// Background bundles the maintenance pool, worker and scheduler
type Background struct {
	Pool      *worker.Pool
	Worker    *worker.MaintenanceWorker
	Scheduler *scheduler.Scheduler
}

// StartBackground starts periodic purging of expired boosts and idempotency keys
func StartBackground(ctx context.Context, cfg *config.Config, purger worker.Purger) *Background {
	pool := worker.NewPool(cfg.WorkerCount, MaintenanceQueueSize)
	pool.Start()

	job := worker.NewMaintenanceJob(purger, cfg.IdempotencyTTL)

	mw := worker.NewMaintenanceWorker(pool, job)
	mw.Start(ctx, worker.DefaultInitialDelay)

	sched := scheduler.New(pool)
	sched.Schedule(MaintenanceJobName, cfg.MaintenanceInterval, job)
	sched.Start(ctx)

	slog.Info(LogMsgBackgroundStarted,
		"interval", cfg.MaintenanceInterval,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"workers", cfg.WorkerCount)

	return &Background{Pool: pool, Worker: mw, Scheduler: sched}
}
