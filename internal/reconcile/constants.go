package reconcile

import "time"

// DefaultTTL bounds how long a displayed value may run ahead of the authority
const DefaultTTL = 2500 * time.Millisecond

// Log messages
const (
	LogMsgStaleState        = "Ignoring stale authoritative state"
	LogMsgNonCoinClaim      = "Ignoring non-coin reward claim for optimistic display"
	LogMsgDecodePayloadFail = "Failed to decode reward payload"
)
