package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/osse101/idlegarden/internal/config"
	"github.com/osse101/idlegarden/internal/logger"
)

// SetupLogger initializes the application logger with file and stdout output.
// Returns the log file handle (caller must close) and any error encountered.
func SetupLogger(cfg *config.Config) (*os.File, error) {
	return setupLogger(cfg, os.Stdout, time.Now())
}

func setupLogger(cfg *config.Config, stdout io.Writer, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(cfg.LogDir, DirPermission); err != nil {
		return nil, fmt.Errorf("%s: %w", LogMsgFailedCreateLogsDir, err)
	}

	cleanupLogs(cfg.LogDir, LogFileRetentionCount)

	logFileName := filepath.Join(cfg.LogDir, fmt.Sprintf(LogFileNamePattern, now.Format(LogFileTimestampFormat)))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermission)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", LogMsgFailedOpenLogFile, err)
	}

	logCfg := loggerConfig(cfg)
	logger.InitLoggerWithWriter(logCfg, io.MultiWriter(stdout, logFile))

	slog.Info(LogMsgLoggingInitialized, "level", logCfg.LogLevel(), "file", logFileName)
	slog.Info(LogMsgStartingServer,
		"environment", cfg.Environment,
		"log_format", cfg.LogFormat,
		"version", cfg.Version,
		"store", cfg.Store,
		"dev_mode", cfg.DevMode)

	slog.Debug(LogMsgConfigurationLoaded,
		"db_host", cfg.DBHost,
		"db_port", cfg.DBPort,
		"db_name", cfg.DBName,
		"port", cfg.Port,
		"maintenance_interval", cfg.MaintenanceInterval,
		"idempotency_ttl", cfg.IdempotencyTTL)

	return logFile, nil
}

// SetupStdoutLogger installs a logger that writes to stdout only. It is the
// fallback when the log directory cannot be created or opened.
func SetupStdoutLogger(cfg *config.Config) {
	logger.InitLogger(loggerConfig(cfg))
}

// source locations are only useful while developing locally
func loggerConfig(cfg *config.Config) logger.Config {
	addSource := cfg.Environment == logger.EnvironmentDev
	return logger.NewConfig(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName, cfg.Version, cfg.Environment, addSource)
}

// cleanupLogs removes the oldest session logs so that at most keep remain
func cleanupLogs(logDir string, keep int) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	var logFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), LogFileExtension) {
			logFiles = append(logFiles, entry.Name())
		}
	}

	if len(logFiles) <= keep {
		return
	}

	// session_<timestamp> names sort chronologically
	sort.Strings(logFiles)
	for _, name := range logFiles[:len(logFiles)-keep] {
		if err := os.Remove(filepath.Join(logDir, name)); err != nil {
			slog.Warn(LogMsgFailedDeleteOldLog, "file", name, "error", err)
		}
	}
}
