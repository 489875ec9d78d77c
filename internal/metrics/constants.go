package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Garden metric names
const (
	MetricNameHarvestsSettled = "garden_harvests_settled_total"
	MetricNamePlantsSettled   = "garden_plants_settled_total"
	MetricNameCoinsEarned     = "garden_coins_earned_total"
	MetricNameCoinsSpent      = "garden_coins_spent_total"
	MetricNameGemsAwarded     = "garden_gems_awarded_total"
	MetricNameRewardsGranted  = "garden_rewards_granted_total"
	MetricNameSettlementFails = "garden_settlement_failures_total"
	MetricNameSSEClients      = "garden_sse_clients"
	MetricNameSSEDropped      = "garden_sse_events_dropped_total"
)

// Maintenance metric names
const (
	MetricNameMaintenanceRuns   = "garden_maintenance_runs_total"
	MetricNameMaintenancePurged = "garden_maintenance_purged_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Garden metric help text
const (
	HelpTextHarvestsSettled = "Total number of harvests settled by the authority"
	HelpTextPlantsSettled   = "Total number of plantings settled by the authority"
	HelpTextCoinsEarned     = "Total coins credited by harvests and grants"
	HelpTextCoinsSpent      = "Total coins spent on plantings"
	HelpTextGemsAwarded     = "Total gems credited by harvests and grants"
	HelpTextRewardsGranted  = "Total number of ad rewards granted"
	HelpTextSettlementFails = "Total number of rejected settlement requests by error kind"
	HelpTextSSEClients      = "Current number of connected SSE clients"
	HelpTextSSEDropped      = "Total number of SSE events dropped by reason"
)

// Maintenance metric help text
const (
	HelpTextMaintenanceRuns   = "Total number of maintenance runs by outcome"
	HelpTextMaintenancePurged = "Total number of expired rows removed by maintenance"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod     = "method"
	LabelPath       = "path"
	LabelStatus     = "status"
	LabelType       = "type"
	LabelPlantType  = "plant_type"
	LabelRewardType = "reward_type"
	LabelKind       = "kind"
	LabelOutcome    = "outcome"
	LabelTable      = "table"
	LabelReason     = "reason"
)

// SSE drop reasons
const (
	DropReasonHubFull    = "hub_full"
	DropReasonSlowClient = "slow_client"
)

// Maintenance label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	TableBoosts    = "active_boosts"
	TableIdemKeys  = "idempotency_keys"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgDecodeFailed    = "Failed to decode event payload for metrics"
	LogMsgMetricsRecorded = "Metrics recorded for event"
)

// UnmatchedRoute labels requests that did not match a route
const UnmatchedRoute = "unmatched"
