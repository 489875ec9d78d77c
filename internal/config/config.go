package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the authority server configuration
type Config struct {
	Port        int
	APIKey      string // API key for authentication
	LogLevel    string
	LogFormat   string
	LogDir      string
	ServiceName string
	Version     string
	Environment string

	Store         string // "postgres" or "memory"
	DBUser        string
	DBPassword    string
	DBHost        string
	DBPort        string
	DBName        string
	DBMaxConns    int
	DBMaxConnIdle time.Duration
	DBMaxConnLife time.Duration

	DevMode         bool
	AdMaxDaily      int
	MaxRewardAmount int64

	RateLimitRPS        float64
	RateLimitBurst      int
	TrustedProxies      []string
	MaintenanceInterval time.Duration
	IdempotencyTTL      time.Duration
	WorkerCount         int
	CatalogPath         string // empty keeps the seeded plant types

	EventMaxRetries     int
	EventRetryDelay     time.Duration
	EventDeadLetterPath string
}

// Load loads the server configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:      getEnv(EnvAPIKey, ""),
		LogLevel:    getEnv(EnvLogLevel, DefaultLogLevel),
		LogFormat:   getEnv(EnvLogFormat, DefaultLogFormat),
		LogDir:      getEnv(EnvLogDir, DefaultLogDir),
		ServiceName: getEnv(EnvServiceName, DefaultServiceName),
		Version:     getEnv(EnvVersion, DefaultVersion),
		Environment: getEnv(EnvEnvironment, DefaultEnvironment),

		Store: strings.ToLower(getEnv(EnvStore, StorePostgres)),

		DevMode:         getEnvAsBool(EnvDevMode, false),
		AdMaxDaily:      getEnvAsInt(EnvAdMaxDaily, DefaultAdMaxDaily),
		MaxRewardAmount: int64(getEnvAsInt(EnvMaxRewardAmount, DefaultMaxRewardAmount)),

		RateLimitRPS:        getEnvAsFloat(EnvRateLimitRPS, DefaultRateLimitRPS),
		RateLimitBurst:      getEnvAsInt(EnvRateLimitBurst, DefaultRateLimitBurst),
		TrustedProxies:      getEnvAsList(EnvTrustedProxies),
		MaintenanceInterval: getEnvAsDuration(EnvMaintenanceInterval, DefaultMaintenanceInterval),
		IdempotencyTTL:      getEnvAsDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		WorkerCount:         getEnvAsInt(EnvWorkerCount, DefaultWorkerCount),
		CatalogPath:         getEnv(EnvCatalogPath, ""),

		EventMaxRetries:     getEnvAsInt(EnvEventMaxRetries, DefaultEventMaxRetries),
		EventRetryDelay:     getEnvAsDuration(EnvEventRetryDelay, DefaultEventRetryDelay),
		EventDeadLetterPath: getEnv(EnvEventDeadLetterPath, DefaultEventDeadLetterPath),
	}
	cfg.loadDatabase()

	port, err := strconv.Atoi(getEnv(EnvPort, strconv.Itoa(DefaultPort)))
	if err != nil {
		return nil, fmt.Errorf(ErrFmtInvalidPort, err)
	}
	cfg.Port = port

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf(ErrMsgAPIKeyRequired)
	}

	if cfg.Store != StorePostgres && cfg.Store != StoreMemory {
		return nil, fmt.Errorf(ErrFmtInvalidStore, cfg.Store, StorePostgres, StoreMemory)
	}

	if cfg.MaintenanceInterval <= 0 {
		return nil, fmt.Errorf(ErrFmtInvalidInterval, EnvMaintenanceInterval, cfg.MaintenanceInterval)
	}

	return cfg, nil
}

// LoadDatabase reads only the PostgreSQL settings and catalog path, for tools that never serve traffic
func LoadDatabase() *Config {
	_ = godotenv.Load()

	cfg := &Config{Store: StorePostgres, CatalogPath: getEnv(EnvCatalogPath, "")}
	cfg.loadDatabase()
	return cfg
}

func (c *Config) loadDatabase() {
	c.DBUser = getEnv(EnvDBUser, DefaultDBUser)
	c.DBPassword = getEnv(EnvDBPassword, DefaultDBPassword)
	c.DBHost = getEnv(EnvDBHost, DefaultDBHost)
	c.DBPort = getEnv(EnvDBPort, DefaultDBPort)
	c.DBName = getEnv(EnvDBName, DefaultDBName)
	c.DBMaxConns = getEnvAsInt(EnvDBMaxConns, DefaultDBMaxConns)
	c.DBMaxConnIdle = getEnvAsDuration(EnvDBMaxConnIdle, DefaultDBMaxConnIdle)
	c.DBMaxConnLife = getEnvAsDuration(EnvDBMaxConnLife, DefaultDBMaxConnLife)
}

// UsesMemoryStore reports whether the server runs without PostgreSQL
func (c *Config) UsesMemoryStore() bool {
	return c.Store == StoreMemory
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return c.connString(c.DBName)
}

// GetAdminConnString points at the maintenance database, used to create or drop DBName
func (c *Config) GetAdminConnString() string {
	return c.connString(AdminDBName)
}

func (c *Config) connString(dbName string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		dbName,
	)
}
