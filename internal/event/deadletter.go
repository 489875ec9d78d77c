package event

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/osse101/idlegarden/internal/logger"
)

// DeadLetterSchemaVersion is bumped whenever DeadLetterEntry changes shape
const DeadLetterSchemaVersion = "1.0"

// DeadLetterWriter appends undeliverable events to a JSONL file
type DeadLetterWriter struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// DeadLetterEntry is one line of the dead-letter file
type DeadLetterEntry struct {
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	Event         Event     `json:"event"`
	Attempts      int       `json:"attempts"`
	LastError     string    `json:"last_error,omitempty"`
}

// NewDeadLetterWriter opens the dead-letter file for appending, creating it if needed
func NewDeadLetterWriter(path string) (*DeadLetterWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, DeadLetterFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", ErrMsgOpenDeadLetter, path, err)
	}
	return &DeadLetterWriter{file: f, now: time.Now}, nil
}

// Write appends one entry. lastError may be nil for events dropped during shutdown.
func (dlw *DeadLetterWriter) Write(event Event, attempts int, lastError error) error {
	entry := DeadLetterEntry{
		SchemaVersion: DeadLetterSchemaVersion,
		Event:         event,
		Attempts:      attempts,
	}
	if lastError != nil {
		entry.LastError = lastError.Error()
	}

	dlw.mu.Lock()
	defer dlw.mu.Unlock()

	entry.Timestamp = dlw.now().UTC()
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	logger.FromContext(context.Background()).Warn(LogMsgEventDeadLettered,
		"event_type", event.Type,
		"attempts", attempts,
		"error", entry.LastError)

	_, err = dlw.file.Write(append(data, '\n'))
	return err
}

// Close closes the dead-letter file
func (dlw *DeadLetterWriter) Close() error {
	dlw.mu.Lock()
	defer dlw.mu.Unlock()
	return dlw.file.Close()
}

// ReadDeadLetters loads every entry of a dead-letter file. A missing file
// yields no entries. Payloads come back as generic JSON; use DecodePayload.
func ReadDeadLetters(path string) ([]DeadLetterEntry, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", ErrMsgOpenDeadLetter, path, err)
	}
	defer f.Close()

	var entries []DeadLetterEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), DeadLetterMaxLineBytes)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry DeadLetterEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return entries, fmt.Errorf("%s line %d: %w", ErrMsgParseDeadLetter, line, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("%s: %w", ErrMsgParseDeadLetter, err)
	}
	return entries, nil
}
