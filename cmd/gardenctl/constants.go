package main

import "time"

// Command defaults
const (
	DefaultCommandTimeout = 30 * time.Second
	DefaultCoinGrant      = 100
	DefaultGemGrant       = 1
	ProgressBarWidth      = 20
	ReadyQueueSize        = 16
	ServiceName           = "gardenctl"
	Version               = "dev"
)

// Flag names
const (
	FlagUser        = "user"
	FlagAPIURL      = "api-url"
	FlagAPIKey      = "api-key"
	FlagJSON        = "json"
	FlagAmount      = "amount"
	FlagAbandon     = "abandon"
	FlagInstant     = "instant"
	FlagAutoHarvest = "auto-harvest"
)

// Messages
const (
	MsgPlanted        = "Planted %s in plot %d for %d coins"
	MsgHarvested      = "Harvested plot %d: %d coins, %d exp, %d gems"
	MsgPredicted      = "Expected about %d coins and %d exp"
	MsgGranted        = "Granted %s (%d/%d today)"
	MsgAdPlaying      = "Playing ad for %s..."
	MsgPlotReady      = "Plot %d is ready"
	MsgWatching       = "Watching garden for %s, ctrl-c to stop"
	MsgStreamDown     = "Live updates unavailable, predicting locally"
	MsgAutoHarvestErr = "Auto-harvest of plot %d failed: %v"
)

// Log messages
const (
	LogMsgReadyQueueFull = "Ready queue full, plot skipped"
)

// Error messages
const (
	ErrFmtBadPlotID   = "plot id must be a number, got %q"
	ErrFmtUnknownType = "unknown reward type %q"
	ErrMsgNotLoaded   = "garden state not loaded"
)
