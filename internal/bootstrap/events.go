package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/osse101/idlegarden/internal/config"
	"github.com/osse101/idlegarden/internal/event"
)

// EventSystem is the in-process bus plus the retrying publisher the garden
// service writes through.
type EventSystem struct {
	Bus            event.Bus
	Publisher      *event.ResilientPublisher
	DeadLetterPath string
}

type eventSettings struct {
	maxRetries     int
	retryDelay     time.Duration
	deadLetterPath string
}

func eventSettingsFrom(cfg *config.Config) eventSettings {
	s := eventSettings{
		maxRetries:     cfg.EventMaxRetries,
		retryDelay:     cfg.EventRetryDelay,
		deadLetterPath: cfg.EventDeadLetterPath,
	}
	if s.maxRetries <= 0 {
		s.maxRetries = EventDefaultMaxRetries
	}
	if s.retryDelay <= 0 {
		s.retryDelay = EventDefaultRetryDelay
	}
	if s.deadLetterPath == "" {
		s.deadLetterPath = EventDefaultDeadLetterPath
	}
	return s
}

// InitializeEventSystem creates the bus and its resilient publisher. Events
// left in the dead-letter file by a previous run are counted and logged so
// lost SSE notifications are visible after a restart.
func InitializeEventSystem(cfg *config.Config) (*EventSystem, error) {
	s := eventSettingsFrom(cfg)

	if err := os.MkdirAll(filepath.Dir(s.deadLetterPath), DirPermission); err != nil {
		return nil, fmt.Errorf("%s: %w", LogMsgFailedCreateDeadLetterDir, err)
	}

	if backlog, err := event.ReadDeadLetters(s.deadLetterPath); err != nil {
		slog.Warn(LogMsgDeadLetterUnreadable, "path", s.deadLetterPath, "error", err)
	} else if len(backlog) > 0 {
		slog.Warn(LogMsgDeadLetterBacklog, "path", s.deadLetterPath, "count", len(backlog))
	}

	bus := event.NewMemoryBus()
	publisher, err := event.NewResilientPublisher(bus, s.maxRetries, s.retryDelay, s.deadLetterPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", LogMsgFailedCreateResilientPublisher, err)
	}

	slog.Info(LogMsgEventSystemInitialized,
		"max_retries", s.maxRetries,
		"retry_delay", s.retryDelay,
		"deadletter_path", s.deadLetterPath)

	return &EventSystem{Bus: bus, Publisher: publisher, DeadLetterPath: s.deadLetterPath}, nil
}
