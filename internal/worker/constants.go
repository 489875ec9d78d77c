package worker

import "time"

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

const (
	LogMsgWorkerJobFailed = "Worker job failed"
	LogMsgQueueFull       = "Worker queue full, job dropped"

	LogMsgWorkerStopping     = "Stopping worker"
	LogMsgWorkerRunCancelled = "Cancelled pending worker run"
	LogMsgWorkerStopped      = "Worker stopped"
	LogMsgWorkerStopTimeout  = "Worker stop timed out"
)

// ============================================================================
// Log Messages - Maintenance Worker
// ============================================================================

const (
	LogMsgMaintenanceStarting  = "Maintenance starting"
	LogMsgMaintenanceCompleted = "Maintenance completed"
	LogMsgMaintenanceFailed    = "Maintenance failed"
	LogMsgMaintenanceScheduled = "Initial maintenance scheduled"
)

// ============================================================================
// Maintenance Defaults
// ============================================================================

const (
	// MaintenanceWorkerName labels the maintenance worker in logs
	MaintenanceWorkerName = "maintenance worker"

	runKeyInitial = "initial"

	// MaintenanceTimeout bounds a single purge run
	MaintenanceTimeout = 30 * time.Second

	// DefaultInitialDelay is how long after startup the first purge runs
	DefaultInitialDelay = 5 * time.Second
)
