package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/idlegarden/internal/metrics"
)

// Event is one message on the stream. UserID is empty for events that
// concern every player.
type Event struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	UserID    string `json:"user_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Payload   any    `json:"payload"`
}

// Client is a connected stream. A nil EventFilter accepts every type.
type Client struct {
	ID           string
	UserID       string
	EventChannel chan Event
	EventFilter  map[string]struct{}

	dropped atomic.Int64
}

// Dropped reports how many events were skipped because the client's
// buffer was full.
func (c *Client) Dropped() int64 { return c.dropped.Load() }

func (c *Client) wants(evt Event) bool {
	if c.UserID != "" && evt.UserID != "" && c.UserID != evt.UserID {
		return false
	}
	if c.EventFilter == nil {
		return true
	}
	_, ok := c.EventFilter[evt.Type]
	return ok
}

// deliver never blocks. A client that cannot keep up loses the event and
// catches up from the next economy.updated, which carries the full balance.
func (c *Client) deliver(evt Event) {
	select {
	case c.EventChannel <- evt:
	default:
		c.dropped.Add(1)
		metrics.SSEEventsDropped.WithLabelValues(metrics.DropReasonSlowClient).Inc()
	}
}

// Hub owns the client set. Membership changes and fan-out run on a single
// goroutine; mu only guards reads from ClientCount and Stop.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	events   chan Event
	joins    chan *Client
	leaves   chan string
	shutdown chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewHub creates a hub; call Start before registering clients
func NewHub() *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		events:   make(chan Event, BroadcastBufferSize),
		joins:    make(chan *Client, ClientChannelBuffer),
		leaves:   make(chan string, ClientChannelBuffer),
		shutdown: make(chan struct{}),
	}
}

// Start launches the fan-out loop
func (h *Hub) Start() {
	h.wg.Add(1)
	go h.loop()
}

// Stop ends the loop and closes every client channel. Safe to call twice.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.shutdown)
		h.wg.Wait()

		h.mu.Lock()
		for id, c := range h.clients {
			close(c.EventChannel)
			delete(h.clients, id)
		}
		h.mu.Unlock()
		metrics.SSEClients.Set(0)
	})
}

func (h *Hub) loop() {
	defer h.wg.Done()
	for {
		select {
		case c := <-h.joins:
			h.setClient(c.ID, c)
		case id := <-h.leaves:
			h.setClient(id, nil)
		case evt := <-h.events:
			h.mu.RLock()
			for _, c := range h.clients {
				if c.wants(evt) {
					c.deliver(evt)
				}
			}
			h.mu.RUnlock()
		case <-h.shutdown:
			return
		}
	}
}

// setClient adds c under id, or removes and closes the client when c is nil
func (h *Hub) setClient(id string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c != nil {
		h.clients[id] = c
	} else if old, ok := h.clients[id]; ok {
		close(old.EventChannel)
		delete(h.clients, id)
		if n := old.Dropped(); n > 0 {
			slog.Info(LogMsgClientDropped, "client_id", id, "user_id", old.UserID, "dropped", n)
		}
	}
	metrics.SSEClients.Set(float64(len(h.clients)))
}

// Register adds a client following userID, or every player when userID is
// empty. If the hub is already stopped the returned client's channel is closed.
func (h *Hub) Register(userID string, eventTypes []string) *Client {
	c := &Client{
		ID:           uuid.NewString(),
		UserID:       userID,
		EventChannel: make(chan Event, ClientEventBuffer),
	}
	if len(eventTypes) > 0 {
		c.EventFilter = make(map[string]struct{}, len(eventTypes))
		for _, t := range eventTypes {
			c.EventFilter[t] = struct{}{}
		}
	}

	select {
	case h.joins <- c:
	case <-h.shutdown:
		close(c.EventChannel)
	}
	return c
}

// Unregister removes a client and closes its channel
func (h *Hub) Unregister(clientID string) {
	select {
	case h.leaves <- clientID:
	case <-h.shutdown:
	}
}

// Broadcast queues an event for the clients following userID. The event is
// dropped when the hub queue is full.
func (h *Hub) Broadcast(eventType, userID string, payload any) {
	evt := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	}

	select {
	case h.events <- evt:
	default:
		metrics.SSEEventsDropped.WithLabelValues(metrics.DropReasonHubFull).Inc()
		slog.Warn(LogMsgEventDropped, "event_type", eventType, "user_id", userID)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// FormatSSEMessage renders evt as an id/event/data frame
func FormatSSEMessage(evt Event) ([]byte, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "id: %s\nevent: %s\ndata: %s\n\n", evt.ID, evt.Type, data), nil
}
