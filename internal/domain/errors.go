package domain

import (
	"context"
	"errors"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// User errors
	ErrMsgUserNotFound = "user not found"

	// Plot errors
	ErrMsgInvalidPlot      = "invalid plot"
	ErrMsgPlotLocked       = "plot is locked"
	ErrMsgPlotOccupied     = "plot is already occupied"
	ErrMsgNothingToHarvest = "nothing to harvest"
	ErrMsgNotReady         = "not ready yet"

	// Catalog errors
	ErrMsgPlantTypeNotFound = "plant type not found"
	ErrMsgLevelTooLow       = "level too low for this plant"

	// Economy errors
	ErrMsgInsufficientFunds = "insufficient funds"
	ErrMsgCostMismatch      = "client and authority amounts diverged"
	ErrMsgGemsNotOptimistic = "gem balances are authority-only"

	// Concurrency errors
	ErrMsgConcurrencyConflict = "state changed while waiting"
	ErrMsgDuplicateRequest    = "request already processed"

	// Authority errors
	ErrMsgAuthorityUnavailable = "authority unavailable"
	ErrMsgAuthorityRejected    = "authority rejected the operation"

	// Reward errors
	ErrMsgNoReward          = "rewarded placement not completed"
	ErrMsgUnknownRewardType = "unknown reward type"
	ErrMsgOnCooldown        = "action on cooldown"
	ErrMsgQuotaExceeded     = "daily limit reached"

	// Database/System errors
	ErrMsgDatabaseError = "database error"
	ErrMsgTxClosed      = "tx is closed"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrUserNotFound = errors.New(ErrMsgUserNotFound)

	ErrInvalidPlot      = errors.New(ErrMsgInvalidPlot)
	ErrPlotLocked       = errors.New(ErrMsgPlotLocked)
	ErrPlotOccupied     = errors.New(ErrMsgPlotOccupied)
	ErrNothingToHarvest = errors.New(ErrMsgNothingToHarvest)
	ErrNotReady         = errors.New(ErrMsgNotReady)

	ErrPlantTypeNotFound = errors.New(ErrMsgPlantTypeNotFound)
	ErrLevelTooLow       = errors.New(ErrMsgLevelTooLow)

	ErrInsufficientFunds = errors.New(ErrMsgInsufficientFunds)
	ErrCostMismatch      = errors.New(ErrMsgCostMismatch)
	ErrGemsNotOptimistic = errors.New(ErrMsgGemsNotOptimistic)

	ErrConcurrencyConflict = errors.New(ErrMsgConcurrencyConflict)
	ErrDuplicateRequest    = errors.New(ErrMsgDuplicateRequest)

	ErrAuthorityUnavailable = errors.New(ErrMsgAuthorityUnavailable)
	ErrAuthorityRejected    = errors.New(ErrMsgAuthorityRejected)

	ErrNoReward          = errors.New(ErrMsgNoReward)
	ErrUnknownRewardType = errors.New(ErrMsgUnknownRewardType)
	ErrOnCooldown        = errors.New(ErrMsgOnCooldown)
	ErrQuotaExceeded     = errors.New(ErrMsgQuotaExceeded)

	ErrInvalidInput = errors.New(ErrMsgInvalidInput)

	ErrTxClosed = errors.New(ErrMsgTxClosed)
)

// ErrorKind is the recovery class of an error.
type ErrorKind string

const (
	KindNone                 ErrorKind = ""
	KindValidation           ErrorKind = "validation"
	KindCostMismatch         ErrorKind = "cost_mismatch"
	KindConcurrencyConflict  ErrorKind = "concurrency_conflict"
	KindAuthorityUnavailable ErrorKind = "authority_unavailable"
	KindQuotaExceeded        ErrorKind = "quota_exceeded"
	KindFatal                ErrorKind = "fatal"
)

var validationErrors = []error{
	ErrUserNotFound,
	ErrInvalidPlot,
	ErrPlotLocked,
	ErrPlotOccupied,
	ErrNothingToHarvest,
	ErrNotReady,
	ErrPlantTypeNotFound,
	ErrLevelTooLow,
	ErrInsufficientFunds,
	ErrGemsNotOptimistic,
	ErrDuplicateRequest,
	ErrNoReward,
	ErrUnknownRewardType,
	ErrOnCooldown,
	ErrInvalidInput,
}

// KindOf classifies err. Order matters: a conflict wrapping "nothing to harvest"
// is a conflict, not a validation failure.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	switch {
	case errors.Is(err, ErrConcurrencyConflict):
		return KindConcurrencyConflict
	case errors.Is(err, ErrCostMismatch):
		return KindCostMismatch
	case errors.Is(err, ErrQuotaExceeded):
		return KindQuotaExceeded
	case errors.Is(err, ErrAuthorityUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return KindAuthorityUnavailable
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return KindValidation
		}
	}
	return KindFatal
}

// IsDefinitiveFailure reports whether the authority has certainly not applied the operation.
func IsDefinitiveFailure(err error) bool {
	kind := KindOf(err)
	return kind != KindNone && kind != KindAuthorityUnavailable
}

// Stable wire codes for errors crossing the HTTP boundary
const (
	CodeUserNotFound         = "user_not_found"
	CodeInvalidPlot          = "invalid_plot"
	CodePlotLocked           = "plot_locked"
	CodePlotOccupied         = "plot_occupied"
	CodeNothingToHarvest     = "nothing_to_harvest"
	CodeNotReady             = "not_ready"
	CodePlantTypeNotFound    = "plant_type_not_found"
	CodeLevelTooLow          = "level_too_low"
	CodeInsufficientFunds    = "insufficient_funds"
	CodeCostMismatch         = "cost_mismatch"
	CodeGemsNotOptimistic    = "gems_not_optimistic"
	CodeConcurrencyConflict  = "concurrency_conflict"
	CodeDuplicateRequest     = "duplicate_request"
	CodeAuthorityUnavailable = "authority_unavailable"
	CodeNoReward             = "no_reward"
	CodeUnknownRewardType    = "unknown_reward_type"
	CodeOnCooldown           = "on_cooldown"
	CodeQuotaExceeded        = "quota_exceeded"
	CodeInvalidInput         = "invalid_input"
	CodeInternal             = "internal"
)

// errorCodes is ordered so wrapping errors resolve to their outermost meaning
var errorCodes = []struct {
	err  error
	code string
}{
	{ErrConcurrencyConflict, CodeConcurrencyConflict},
	{ErrCostMismatch, CodeCostMismatch},
	{ErrQuotaExceeded, CodeQuotaExceeded},
	{ErrOnCooldown, CodeOnCooldown},
	{ErrAuthorityUnavailable, CodeAuthorityUnavailable},
	{ErrUserNotFound, CodeUserNotFound},
	{ErrInvalidPlot, CodeInvalidPlot},
	{ErrPlotLocked, CodePlotLocked},
	{ErrPlotOccupied, CodePlotOccupied},
	{ErrNothingToHarvest, CodeNothingToHarvest},
	{ErrNotReady, CodeNotReady},
	{ErrPlantTypeNotFound, CodePlantTypeNotFound},
	{ErrLevelTooLow, CodeLevelTooLow},
	{ErrInsufficientFunds, CodeInsufficientFunds},
	{ErrGemsNotOptimistic, CodeGemsNotOptimistic},
	{ErrDuplicateRequest, CodeDuplicateRequest},
	{ErrNoReward, CodeNoReward},
	{ErrUnknownRewardType, CodeUnknownRewardType},
	{ErrInvalidInput, CodeInvalidInput},
}

// CodeOf returns the wire code for err
func CodeOf(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// ErrorForCode returns the sentinel for a wire code, or ErrAuthorityRejected when unknown
func ErrorForCode(code string) error {
	for _, c := range errorCodes {
		if c.code == code {
			return c.err
		}
	}
	return ErrAuthorityRejected
}
