package clock

import "time"

// Tick intervals
const (
	// DefaultIdleInterval is used when nothing is growing
	DefaultIdleInterval = 60 * time.Second

	// DefaultMinInterval is the tightest tick near a completion
	DefaultMinInterval = 1 * time.Second

	// FarInterval applies while the nearest completion is more than FarThreshold away
	FarInterval  = 30 * time.Second
	FarThreshold = 5 * time.Minute

	// NearInterval applies while the nearest completion is more than NearThreshold away
	NearInterval  = 10 * time.Second
	NearThreshold = 1 * time.Minute
)

// Log messages
const (
	LogMsgClockStarted = "Growth clock started"
	LogMsgClockStopped = "Growth clock stopped"
	LogMsgClockTick    = "Growth clock tick"
)
