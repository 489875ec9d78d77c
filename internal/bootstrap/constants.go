package bootstrap

import "time"

// =============================================================================
// File System Permissions
// =============================================================================

const (
	// DirPermission is the standard permission for creating directories
	DirPermission = 0755

	// LogFilePermission is the permission for log files
	LogFilePermission = 0666
)

// =============================================================================
// Logger Configuration
// =============================================================================

const (
	// LogFileTimestampFormat is the timestamp format for log filenames (YYYY-MM-DD_HH-MM-SS)
	LogFileTimestampFormat = "2006-01-02_15-04-05"

	// LogFileNamePattern is the format string for log filenames
	LogFileNamePattern = "session_%s.log"

	// LogFileExtension is the file extension for log files
	LogFileExtension = ".log"

	// LogFileRetentionCount is the number of older log files kept next to the new one
	LogFileRetentionCount = 9
)

// Log messages for logger initialization
const (
	LogMsgLoggingInitialized  = "Logging initialized"
	LogMsgStartingServer      = "Starting idlegarden authority"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgFailedCreateLogsDir = "failed to create logs directory"
	LogMsgFailedOpenLogFile   = "failed to open log file"
	LogMsgFailedDeleteOldLog  = "Failed to delete old log file"
)

// =============================================================================
// Storage
// =============================================================================

const (
	LogMsgUsingMemoryStore   = "Using in-memory store, state is lost on restart"
	LogMsgUsingPostgresStore = "Using PostgreSQL store"
	LogMsgMigrationsApplied  = "Database migrations applied"
	ErrMsgFailedConnectDB    = "failed to connect to database"
	ErrMsgFailedMigrate      = "failed to apply migrations"

	LogMsgSyncingCatalog    = "Syncing plant catalog from JSON config..."
	LogMsgCatalogSynced     = "Plant catalog synced"
	ErrMsgFailedLoadCatalog = "failed to load plant catalog"
	ErrMsgInvalidCatalog    = "invalid plant catalog"
	ErrMsgFailedSyncCatalog = "failed to sync plant catalog"
)

// =============================================================================
// Event System Configuration
// =============================================================================

const (
	// EventDefaultMaxRetries is the default number of retry attempts for failed event publishing
	EventDefaultMaxRetries = 5

	// EventDefaultRetryDelay is the default base delay between retry attempts (exponential backoff)
	EventDefaultRetryDelay = 2 * time.Second

	// EventDefaultDeadLetterPath is the default file path for dead-letter event logging
	EventDefaultDeadLetterPath = "logs/event_deadletter.jsonl"
)

// Log messages for event system initialization
const (
	LogMsgEventSystemInitialized         = "Event system initialized"
	LogMsgFailedCreateDeadLetterDir      = "failed to create dead-letter directory"
	LogMsgFailedCreateResilientPublisher = "failed to create resilient publisher"
	LogMsgDeadLetterBacklog              = "Dead-letter file holds undelivered events"
	LogMsgDeadLetterUnreadable           = "Dead-letter file could not be read"
)

// Log messages for event handler registration
const (
	LogMsgMetricsCollectorRegistered = "Metrics collector registered"
	LogMsgSSESubscriberRegistered    = "SSE bridge subscribed"
)

// =============================================================================
// Background Work
// =============================================================================

const (
	// MaintenanceQueueSize bounds pending maintenance jobs
	MaintenanceQueueSize = 4

	// MaintenanceJobName labels the purge job in scheduler logs
	MaintenanceJobName = "purge_expired"

	LogMsgBackgroundStarted = "Background maintenance started"
)

// =============================================================================
// Shutdown Messages
// =============================================================================

const (
	LogMsgShuttingDownServer         = "Shutting down server..."
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher..."
	LogMsgServerStopped              = "Server stopped"
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgResilientPublisherFailed   = "Resilient publisher shutdown failed"
	LogMsgMaintenanceShutdownFailed  = "Maintenance worker shutdown failed"

	ServiceNameGarden = "garden"

	// LogMsgServiceShutdownFailed is appended to the service name
	LogMsgServiceShutdownFailed = " service shutdown failed"
)
