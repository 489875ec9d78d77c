package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/event"
	"github.com/osse101/idlegarden/internal/logger"
)

// StreamEvent is one event received from the authority stream
type StreamEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	UserID    string          `json:"user_id"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// StreamHandler handles a specific event type
type StreamHandler func(ctx context.Context, evt StreamEvent) error

var errStreamClosed = errors.New("stream closed unexpectedly")

// Stream follows the authority's event stream for one user and reconnects with backoff
type Stream struct {
	baseURL    string
	apiKey     string
	userID     string
	eventTypes []string
	handlers   map[string][]StreamHandler
	httpClient *http.Client
	mu         sync.RWMutex
	shutdown   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	connected  bool
}

// NewStream creates a stream consumer. An empty eventTypes subscribes to everything.
func NewStream(cfg Config, eventTypes []string) *Stream {
	return &Stream{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		userID:     cfg.UserID,
		eventTypes: eventTypes,
		handlers:   make(map[string][]StreamHandler),
		// No timeout; the connection is long lived
		httpClient: &http.Client{},
		shutdown:   make(chan struct{}),
	}
}

// OnEvent registers a handler for a specific event type
func (s *Stream) OnEvent(eventType string, handler StreamHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[eventType] = append(s.handlers[eventType], handler)
}

// OnEconomyUpdated registers a typed handler for economy.updated
func (s *Stream) OnEconomyUpdated(fn func(ctx context.Context, payload domain.EconomyUpdatedPayloadV1) error) {
	s.OnEvent(domain.EventTypeEconomyUpdated, func(ctx context.Context, evt StreamEvent) error {
		payload, err := event.DecodePayload[domain.EconomyUpdatedPayloadV1](evt.Payload)
		if err != nil {
			return fmt.Errorf("decode %s: %w", evt.Type, err)
		}
		return fn(ctx, payload)
	})
}

// Start begins the connection loop
func (s *Stream) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.connectLoop(ctx)
}

// Stop shuts the stream down and waits for the loop to exit
func (s *Stream) Stop() {
	s.stopOnce.Do(func() { close(s.shutdown) })
	s.wg.Wait()
}

// IsConnected returns true while a stream is open
func (s *Stream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *Stream) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}

func (s *Stream) connectLoop(ctx context.Context) {
	defer s.wg.Done()

	// Cancel the in-flight request on Stop
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()

	backoff := streamInitialBackoff
	consecutiveFailures := 0

	for {
		if ctx.Err() != nil {
			logger.FromContext(ctx).Info(LogMsgStreamStopped)
			return
		}

		err := s.connect(ctx)
		wasConnected := s.IsConnected()
		s.setConnected(false)
		if ctx.Err() != nil {
			logger.FromContext(ctx).Info(LogMsgStreamStopped)
			return
		}

		// A stream that was up and then dropped starts over at the initial backoff
		if wasConnected {
			backoff = streamInitialBackoff
			consecutiveFailures = 0
		}
		consecutiveFailures++
		logger.FromContext(ctx).Warn(LogMsgStreamFailed,
			"error", err,
			"backoff", backoff,
			"consecutive_failures", consecutiveFailures)

		select {
		case <-time.After(backoff):
			backoff = time.Duration(float64(backoff) * streamBackoffMultiplier)
			if backoff > streamMaxBackoff {
				backoff = streamMaxBackoff
			}
		case <-ctx.Done():
			logger.FromContext(ctx).Info(LogMsgStreamStopped)
			return
		}
	}
}

func (s *Stream) connect(ctx context.Context) error {
	query := url.Values{}
	if s.userID != "" {
		query.Set("user_id", s.userID)
	}
	if len(s.eventTypes) > 0 {
		query.Set("types", strings.Join(s.eventTypes, ","))
	}
	target := s.baseURL + PathEvents
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf(ErrMsgCreateRequest, err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if s.apiKey != "" {
		req.Header.Set(HeaderAPIKey, s.apiKey)
	}
	if s.userID != "" {
		req.Header.Set(HeaderUserID, s.userID)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf(ErrMsgUnexpectedStatus+": %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	s.setConnected(true)
	logger.FromContext(ctx).Info(LogMsgStreamConnected, "url", target)

	return s.readEvents(ctx, resp.Body)
}

func (s *Stream) readEvents(ctx context.Context, body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, streamBufferSize), streamBufferSize)

	var eventID, eventType, data string

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := scanner.Text()
		if line == "" {
			// Blank line terminates an event
			if data != "" {
				s.dispatch(ctx, eventID, eventType, data)
			}
			eventID, eventType, data = "", "", ""
			continue
		}

		switch {
		case strings.HasPrefix(line, "id: "):
			eventID = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading stream: %w", err)
	}
	return errStreamClosed
}

func (s *Stream) dispatch(ctx context.Context, id, eventType, data string) {
	if eventType == "" || eventType == streamEventKeepalive || eventType == streamEventConnected {
		return
	}

	var evt StreamEvent
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		logger.FromContext(ctx).Warn(LogMsgStreamParseError, "error", err, "data", data)
		return
	}
	evt.Type = eventType
	if id != "" {
		evt.ID = id
	}

	s.mu.RLock()
	handlers := s.handlers[evt.Type]
	s.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, evt); err != nil {
			logger.FromContext(ctx).Error(LogMsgStreamHandlerFail, "event_type", evt.Type, "error", err)
		}
	}
}
