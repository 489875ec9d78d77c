package client

import "time"

// API paths
const (
	PathState    = "/api/v1/garden/state"
	PathHarvest  = "/api/v1/garden/harvest"
	PathPlant    = "/api/v1/garden/plant"
	PathCooldown = "/api/v1/garden/cooldown"
	PathGrant    = "/api/v1/garden/grant"
	PathEvents   = "/api/v1/garden/events"
)

// Headers
const (
	HeaderAPIKey         = "X-API-Key"
	HeaderUserID         = "X-User-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderRequestID      = "X-Request-ID"
)

// DefaultRequestTimeout bounds one authority round trip
const DefaultRequestTimeout = 10 * time.Second

// Stream reconnect settings
const (
	streamInitialBackoff    = 1 * time.Second
	streamMaxBackoff        = 30 * time.Second
	streamBackoffMultiplier = 2.0
	streamBufferSize        = 64 * 1024
)

// Stream-only event types
const (
	streamEventConnected = "connected"
	streamEventKeepalive = "keepalive"
)

// Error body limits
const maxErrorBodyBytes = 4096

// Log messages
const (
	LogMsgRequestFailed     = "Authority request failed"
	LogMsgStreamConnected   = "Event stream connected"
	LogMsgStreamStopped     = "Event stream stopped"
	LogMsgStreamFailed      = "Event stream connection failed"
	LogMsgStreamParseError  = "Failed to parse stream event"
	LogMsgStreamHandlerFail = "Stream event handler error"
)

// Error messages
const (
	ErrMsgMarshalBody      = "failed to marshal body: %w"
	ErrMsgCreateRequest    = "failed to create request: %w"
	ErrMsgDecodeResponse   = "failed to decode %s response: %w"
	ErrMsgUnexpectedStatus = "unexpected status %d"
)
