package engine

// Guard key prefixes
const (
	GuardKeyPlot   = "plot:%d"
	GuardKeyReward = "reward:%s"
)

// Log messages
const (
	LogMsgLoaded             = "Garden state loaded"
	LogMsgMirrorRefreshFail  = "Cooldown refresh failed, gate stays conservative"
	LogMsgPreconditionLost   = "Mutation dropped, precondition changed while waiting"
	LogMsgStaleResult        = "Authority result older than snapshot, ignored"
	LogMsgResyncAfterDiverge = "Amounts diverged from authority, reloading state"
	LogMsgResyncFailed       = "State reload failed"
	LogMsgDeltaReverted      = "Optimistic delta reverted"
	LogMsgDeltaKept          = "Authority unreachable, optimistic delta kept until expiry"
	LogMsgPublishFailed      = "Local event publish failed"
	LogMsgAdNotCompleted     = "Rewarded placement not completed"
	LogMsgPlotReady          = "Plot ready"
	LogMsgAuthorityRejected  = "Authority rejected mutation"
)
