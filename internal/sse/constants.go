package sse

import "time"

// Buffer sizes
const (
	// BroadcastBufferSize is the buffer size for the broadcast channel
	BroadcastBufferSize = 100

	// ClientEventBuffer is the buffer size for each client's event channel
	ClientEventBuffer = 50

	// ClientChannelBuffer is the buffer size for register/unregister channels
	ClientChannelBuffer = 10
)

// SSE connection settings
const (
	// KeepaliveInterval is how often to send keepalive pings
	KeepaliveInterval = 30 * time.Second
)

// Event types that only exist on the stream
const (
	EventTypeConnected = "connected"
	EventTypeKeepalive = "keepalive"
)

// Query parameters
const (
	QueryParamUserID = "user_id"
	QueryParamTypes  = "types"
)

// Log messages
const (
	LogMsgClientConnected    = "SSE client connected"
	LogMsgClientDisconnected = "SSE client disconnected"
	LogMsgEventBroadcast     = "Broadcasting SSE event"
	LogMsgEventDropped       = "SSE broadcast buffer full, event dropped"
	LogMsgWriteError         = "Failed to write SSE event"
	LogMsgClientDropped      = "SSE client missed events while connected"
	LogMsgSubscriberReady    = "SSE subscriber registered for event types"
)

// Errors returned to the client before the stream starts
const (
	ErrMsgStreamingUnsupported = "SSE not supported"
	ErrFmtUnknownEventType     = "unknown event type %q"
)
