package handler

import "github.com/osse101/idlegarden/internal/domain"

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgMissingQueryParam     = "Missing %s query parameter"
	ErrMsgGenericServerError    = "Something went wrong"
	ErrMsgUnavailable           = "Server is temporarily unavailable. Please try again later."
)

// User-facing messages for service errors, keyed by wire code
var userMessages = map[string]string{
	domain.CodeUserNotFound:         "User not found",
	domain.CodeInvalidPlot:          "That plot does not exist",
	domain.CodePlotLocked:           "That plot is locked",
	domain.CodePlotOccupied:         "That plot already has a plant",
	domain.CodeNothingToHarvest:     "Nothing to harvest",
	domain.CodeNotReady:             "Not ready to harvest yet",
	domain.CodePlantTypeNotFound:    "Unknown plant",
	domain.CodeLevelTooLow:          "Your level is too low for that plant",
	domain.CodeInsufficientFunds:    "Not enough coins",
	domain.CodeCostMismatch:         "Your garden is out of date. Please refresh.",
	domain.CodeGemsNotOptimistic:    "Gems are granted by the server only",
	domain.CodeConcurrencyConflict:  "Your garden changed while the request was waiting",
	domain.CodeDuplicateRequest:     "That request was already processed",
	domain.CodeAuthorityUnavailable: ErrMsgUnavailable,
	domain.CodeNoReward:             "The ad was not completed",
	domain.CodeUnknownRewardType:    "Unknown reward type",
	domain.CodeOnCooldown:           "Reward is on cooldown. Try again later",
	domain.CodeQuotaExceeded:        "Daily reward limit reached",
	domain.CodeInvalidInput:         ErrMsgInvalidRequestSummary,
}

// Success messages
const (
	MsgUpgradeAdded   = "Upgrade added"
	MsgTierUpdated    = "Tier updated"
	MsgPurgeCompleted = "Expired records purged"
)

// Request headers and query params
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	QueryParamUserID     = "user_id"
	QueryParamRewardType = "reward_type"
)

// Log messages
const (
	LogMsgRequestDecoded   = "%s request decoded"
	LogMsgDecodeFailed     = "Failed to decode %s request"
	LogMsgServiceFailed    = "%s failed"
	LogMsgHarvestSettled   = "Harvest settled"
	LogMsgPlantSettled     = "Plant settled"
	LogMsgGrantSettled     = "Reward granted"
	LogMsgEncodeFailed     = "Failed to encode JSON response"
	LogMsgWriteFailed      = "Failed to write response buffer"
	LogMsgReadinessFailed  = "Readiness check failed"
	LogMsgMissingParam     = "Missing query parameters"
	LogMsgValidationFailed = "%s request failed validation"
	LogMsgRequestDetails   = "Request details"
)

// Action names used in logs and validation responses
const (
	ActionState    = "State"
	ActionHarvest  = "Harvest"
	ActionPlant    = "Plant"
	ActionCooldown = "Cooldown"
	ActionGrant    = "Grant"
	ActionUpgrade  = "Add upgrade"
	ActionTier     = "Set tier"
	ActionPurge    = "Purge"
)
