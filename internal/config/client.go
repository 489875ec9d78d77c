package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

// ClientConfig holds the gardenctl configuration
type ClientConfig struct {
	APIURL            string
	APIKey            string
	UserID            string
	LogLevel          string
	LogFormat         string
	OptimisticTTL     time.Duration
	GrowthCacheTTL    time.Duration
	GrowthCacheSize   int
	ClockIdleInterval time.Duration
	ClockMinInterval  time.Duration
	RequestTimeout    time.Duration
	AdDuration        time.Duration
}

// LoadClient loads the client configuration from environment variables
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	cfg := &ClientConfig{
		APIURL:            getEnv(EnvGardenAPIURL, DefaultGardenAPIURL),
		APIKey:            getEnv(EnvGardenAPIKey, ""),
		UserID:            getEnv(EnvGardenUserID, ""),
		LogLevel:          getEnv(EnvLogLevel, DefaultClientLogLevel),
		LogFormat:         getEnv(EnvLogFormat, DefaultLogFormat),
		OptimisticTTL:     getEnvAsDuration(EnvOptimisticTTL, DefaultOptimisticTTL),
		GrowthCacheTTL:    getEnvAsDuration(EnvGrowthCacheTTL, DefaultGrowthCacheTTL),
		GrowthCacheSize:   getEnvAsInt(EnvGrowthCacheSize, DefaultGrowthCacheSize),
		ClockIdleInterval: getEnvAsDuration(EnvClockIdleInterval, DefaultClockIdleInterval),
		ClockMinInterval:  getEnvAsDuration(EnvClockMinInterval, DefaultClockMinInterval),
		RequestTimeout:    getEnvAsDuration(EnvRequestTimeout, DefaultRequestTimeout),
		AdDuration:        time.Duration(getEnvAsInt(EnvAdDefaultDuration, DefaultAdDefaultDuration)) * time.Millisecond,
	}

	if cfg.UserID == "" {
		return nil, fmt.Errorf(ErrMsgUserIDRequired)
	}

	for _, iv := range []struct {
		name  string
		value time.Duration
	}{
		{EnvOptimisticTTL, cfg.OptimisticTTL},
		{EnvClockIdleInterval, cfg.ClockIdleInterval},
		{EnvClockMinInterval, cfg.ClockMinInterval},
		{EnvRequestTimeout, cfg.RequestTimeout},
	} {
		if iv.value <= 0 {
			return nil, fmt.Errorf(ErrFmtInvalidInterval, iv.name, iv.value)
		}
	}

	if cfg.ClockMinInterval > cfg.ClockIdleInterval {
		return nil, fmt.Errorf(ErrFmtClockIntervals, cfg.ClockMinInterval, cfg.ClockIdleInterval)
	}

	return cfg, nil
}
