package garden

// Defaults
const (
	// DefaultMaxRewardAmount bounds a single coin or gem grant
	DefaultMaxRewardAmount int64 = 10000
)

// Log messages
const (
	LogMsgGardenCreated     = "Garden created"
	LogMsgHarvestSettled    = "Harvest settled"
	LogMsgPlantSettled      = "Plant settled"
	LogMsgGrantSettled      = "Reward grant settled"
	LogMsgGrantRejected     = "Reward grant rejected"
	LogMsgCostMismatch      = "Client amounts diverged from authority"
	LogMsgSnapshotDiverged  = "Client multiplier snapshot differs from authority"
	LogMsgPurgeCompleted    = "Expired garden rows purged"
	LogMsgShutdownStarted   = "Shutting down garden service"
	LogMsgShutdownCompleted = "Garden service shutdown complete"
	LogMsgShutdownTimeout   = "Garden service shutdown timeout, some events may still be publishing"
)

// Error messages
const (
	ErrMsgBeginTx       = "failed to begin transaction: %w"
	ErrMsgCommitTx      = "failed to commit transaction: %w"
	ErrMsgCreateGarden  = "failed to create garden: %w"
	ErrMsgLoadModifiers = "failed to load modifiers: %w"
)
