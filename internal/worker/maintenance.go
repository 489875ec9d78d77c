package worker

import (
	"context"
	"time"

	"github.com/osse101/idlegarden/internal/logger"
	"github.com/osse101/idlegarden/internal/metrics"
)

// Purger removes expired boosts and idempotency keys
type Purger interface {
	PurgeExpired(ctx context.Context, keyTTL time.Duration) (boosts, keys int64, err error)
}

// MaintenanceJob purges rows that readers already filter out by expiry
type MaintenanceJob struct {
	purger Purger
	keyTTL time.Duration
}

// NewMaintenanceJob creates a job that keeps idempotency keys for keyTTL
func NewMaintenanceJob(purger Purger, keyTTL time.Duration) *MaintenanceJob {
	return &MaintenanceJob{purger: purger, keyTTL: keyTTL}
}

// Process runs one purge
func (j *MaintenanceJob) Process(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, MaintenanceTimeout)
	defer cancel()

	log := logger.FromContext(ctx)
	log.Debug(LogMsgMaintenanceStarting, "key_ttl", j.keyTTL)

	boosts, keys, err := j.purger.PurgeExpired(ctx, j.keyTTL)
	if err != nil {
		metrics.MaintenanceRuns.WithLabelValues(metrics.OutcomeFailure).Inc()
		log.Error(LogMsgMaintenanceFailed, "error", err)
		return err
	}

	metrics.MaintenanceRuns.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.MaintenancePurged.WithLabelValues(metrics.TableBoosts).Add(float64(boosts))
	metrics.MaintenancePurged.WithLabelValues(metrics.TableIdemKeys).Add(float64(keys))
	log.Info(LogMsgMaintenanceCompleted, "boosts_removed", boosts, "keys_removed", keys)
	return nil
}

// MaintenanceWorker submits one purge shortly after startup; the scheduler
// handles the periodic runs
type MaintenanceWorker struct {
	BaseWorker
	pool *Pool
	job  Job
}

// NewMaintenanceWorker creates a worker that submits job to pool
func NewMaintenanceWorker(pool *Pool, job Job) *MaintenanceWorker {
	w := &MaintenanceWorker{pool: pool, job: job}
	w.init()
	return w
}

// Start schedules the initial run after delay
func (w *MaintenanceWorker) Start(ctx context.Context, delay time.Duration) {
	w.schedule(runKeyInitial, delay, w.RunNow)
	logger.FromContext(ctx).Info(LogMsgMaintenanceScheduled, "delay", delay)
}

// RunNow submits the job to the pool
func (w *MaintenanceWorker) RunNow() {
	w.pool.Enqueue(w.job)
}

// Shutdown cancels the pending initial run
func (w *MaintenanceWorker) Shutdown(ctx context.Context) error {
	return w.stop(ctx, MaintenanceWorkerName)
}
