package config

import "time"

// =============================================================================
// Environment Keys
// =============================================================================

const (
	EnvSchemaVersion = "ENV_SCHEMA_VERSION"

	EnvPort        = "PORT"
	EnvAPIKey      = "API_KEY"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"
	EnvLogDir      = "LOG_DIR"
	EnvServiceName = "SERVICE_NAME"
	EnvVersion     = "VERSION"
	EnvEnvironment = "ENVIRONMENT"

	EnvStore         = "STORE"
	EnvDBUser        = "DB_USER"
	EnvDBPassword    = "DB_PASSWORD"
	EnvDBHost        = "DB_HOST"
	EnvDBPort        = "DB_PORT"
	EnvDBName        = "DB_NAME"
	EnvDBMaxConns    = "DB_MAX_CONNS"
	EnvDBMaxConnIdle = "DB_MAX_CONN_IDLE_TIME"
	EnvDBMaxConnLife = "DB_MAX_CONN_LIFETIME"

	EnvDevMode           = "DEV_MODE"
	EnvAdMaxDaily        = "AD_MAX_DAILY"
	EnvAdDefaultDuration = "AD_DEFAULT_DURATION_MS"
	EnvMaxRewardAmount   = "MAX_REWARD_AMOUNT"

	EnvRateLimitRPS        = "RATE_LIMIT_RPS"
	EnvRateLimitBurst      = "RATE_LIMIT_BURST"
	EnvTrustedProxies      = "TRUSTED_PROXIES"
	EnvMaintenanceInterval = "MAINTENANCE_INTERVAL"
	EnvIdempotencyTTL      = "IDEMPOTENCY_TTL"
	EnvWorkerCount         = "WORKER_COUNT"
	EnvCatalogPath         = "CATALOG_PATH"

	EnvEventMaxRetries     = "EVENT_RETRY_MAX"
	EnvEventRetryDelay     = "EVENT_RETRY_DELAY"
	EnvEventDeadLetterPath = "EVENT_RETRY_DEADLETTER_PATH"

	EnvGardenAPIURL      = "GARDEN_API_URL"
	EnvGardenAPIKey      = "GARDEN_API_KEY"
	EnvGardenUserID      = "GARDEN_USER_ID"
	EnvOptimisticTTL     = "OPTIMISTIC_TTL"
	EnvGrowthCacheTTL    = "GROWTH_CACHE_TTL"
	EnvGrowthCacheSize   = "GROWTH_CACHE_SIZE"
	EnvClockIdleInterval = "CLOCK_IDLE_INTERVAL"
	EnvClockMinInterval  = "CLOCK_MIN_INTERVAL"
	EnvRequestTimeout    = "REQUEST_TIMEOUT"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	DefaultPort        = 8080
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultLogDir      = "logs"
	DefaultServiceName = "idlegarden"
	DefaultVersion     = "dev"
	DefaultEnvironment = "dev"

	StorePostgres = "postgres"
	StoreMemory   = "memory"

	DefaultDBUser        = "postgres"
	DefaultDBPassword    = "postgres"
	DefaultDBHost        = "localhost"
	DefaultDBPort        = "5432"
	DefaultDBName        = "idlegarden"
	DefaultDBMaxConns    = 20
	DefaultDBMaxConnIdle = 5 * time.Minute
	DefaultDBMaxConnLife = 30 * time.Minute
	AdminDBName          = "postgres"

	DefaultAdMaxDaily        = 5
	DefaultAdDefaultDuration = 30000
	DefaultMaxRewardAmount   = 1_000_000

	DefaultRateLimitRPS        = 20.0
	DefaultRateLimitBurst      = 40
	DefaultMaintenanceInterval = 10 * time.Minute
	DefaultIdempotencyTTL      = 24 * time.Hour
	DefaultWorkerCount         = 2

	DefaultEventMaxRetries     = 3
	DefaultEventRetryDelay     = 2 * time.Second
	DefaultEventDeadLetterPath = "logs/event_deadletter.jsonl"

	DefaultGardenAPIURL      = "http://localhost:8080"
	DefaultClientLogLevel    = "warn"
	DefaultOptimisticTTL     = 2500 * time.Millisecond
	DefaultGrowthCacheTTL    = time.Second
	DefaultGrowthCacheSize   = 256
	DefaultClockIdleInterval = 5 * time.Second
	DefaultClockMinInterval  = 250 * time.Millisecond
	DefaultRequestTimeout    = 10 * time.Second
)

// =============================================================================
// Error Messages
// =============================================================================

const (
	ErrMsgAPIKeyRequired   = "API_KEY environment variable must be set for security"
	ErrMsgUserIDRequired   = "GARDEN_USER_ID environment variable must be set"
	ErrFmtInvalidPort      = "invalid PORT value: %w"
	ErrFmtInvalidStore     = "invalid STORE value %q: expected %s or %s"
	ErrFmtInvalidInterval  = "%s must be positive, got %s"
	ErrFmtClockIntervals   = "CLOCK_MIN_INTERVAL (%s) must not exceed CLOCK_IDLE_INTERVAL (%s)"
	ErrFmtSchemaMissing    = "ENV_SCHEMA_VERSION is not set - please update your .env file to include this field (expected: %s)"
	ErrFmtSchemaMismatch   = "ENV_SCHEMA_VERSION mismatch: expected %s, got %s - your .env file may be outdated"
	ErrFmtMissingVariables = "missing required environment variables: %s"
)
