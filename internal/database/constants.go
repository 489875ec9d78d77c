package database

// Database Connection Pool Constants
const (
	// DefaultMinConnections is the minimum number of connections to maintain in the pool
	DefaultMinConnections = 2
)

// Migration settings
const (
	MigrationsDir     = "migrations"
	MigrationsDialect = "postgres"
)

// Error Messages - Database Operations
const (
	ErrMsgFailedToParseConnString = "failed to parse connection string"
	ErrMsgFailedToCreatePool      = "failed to create connection pool"
	ErrMsgFailedToPingDatabase    = "failed to ping database"
	ErrMsgFailedToSetDialect      = "failed to set migration dialect"
	ErrMsgFailedToMigrate         = "failed to apply migrations"
	ErrMsgFailedToConnectAdmin    = "failed to connect to admin database"
	ErrMsgFailedToCheckDatabase   = "failed to check database existence"
	ErrMsgFailedToCreateDatabase  = "failed to create database"
	ErrMsgFailedToTerminate       = "failed to terminate sessions"
	ErrMsgFailedToDropDatabase    = "failed to drop database"
)

// Admin queries
const (
	queryDatabaseExists    = "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	queryTerminateSessions = `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()`
)

// Log Messages
const (
	LogMsgSuccessfullyConnectedToDatabase = "Successfully connected to the database"
	LogMsgMigrationsApplied               = "Database migrations applied"
)
