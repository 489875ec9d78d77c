package event

import "time"

// Event schema versioning
const (
	// EventSchemaVersion is the current event schema version
	EventSchemaVersion = "1.0"
)

// Metadata keys
const (
	MetadataKeyUserID = "user_id"
)

// Retry configuration constants
const (
	// RetryQueueBufferSize is the buffer size for the retry queue
	RetryQueueBufferSize = 1000

	// RetryInitialDelaySeconds is the initial retry delay in seconds (2s)
	RetryInitialDelaySeconds = 2

	// RetryMaxAttempts is the default maximum number of retry attempts
	RetryMaxAttempts = 5
)

// Dead letter file configuration
const (
	// DeadLetterFilePermissions is the file permission mode for dead-letter files
	DeadLetterFilePermissions = 0644

	// DeadLetterMaxLineBytes bounds one entry when reading the file back
	DeadLetterMaxLineBytes = 1 << 20
)

// Error messages
const (
	ErrMsgDecodePayload   = "failed to decode event payload"
	ErrMsgOpenDeadLetter  = "failed to open dead-letter file"
	ErrMsgParseDeadLetter = "failed to parse dead-letter file"
)

// Log message constants
const (
	LogMsgEventPublishFailed   = "Event publish failed, queuing for retry"
	LogMsgRetryQueueFull       = "Retry queue full, event dropped to dead-letter"
	LogMsgDeadLetterWriteFail  = "Failed to write to dead letter"
	LogMsgEventRetryExhausted  = "Event retry exhausted, writing to dead-letter"
	LogMsgEventRetryFailed     = "Event retry failed, scheduling next attempt"
	LogMsgEventRetrySucceeded  = "Event retry succeeded"
	LogMsgEventDroppedShutdown = "Event dropped during shutdown"
	LogMsgQueueDrainedShutdown = "Drained retry queue during shutdown"
	LogMsgShutdownTimeout      = "Resilient publisher shutdown timed out"
	LogMsgEventDeadLettered    = "Event written to dead-letter"

	// Log message for handler errors
	LogMsgHandlerErrorFormat = "encountered %d errors while handling event %s: %v"
)

// CalculateRetryDelay calculates the exponential backoff delay for retry attempts.
// Formula: baseDelay * 2^(attempt-1)
func CalculateRetryDelay(baseDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return baseDelay * time.Duration(1<<(attempt-1))
}
