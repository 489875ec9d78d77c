package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Garden Metrics
var (
	HarvestsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHarvestsSettled,
			Help: HelpTextHarvestsSettled,
		},
		[]string{LabelPlantType},
	)

	PlantsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePlantsSettled,
			Help: HelpTextPlantsSettled,
		},
		[]string{LabelPlantType},
	)

	CoinsEarned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCoinsEarned,
			Help: HelpTextCoinsEarned,
		},
	)

	CoinsSpent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCoinsSpent,
			Help: HelpTextCoinsSpent,
		},
	)

	GemsAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameGemsAwarded,
			Help: HelpTextGemsAwarded,
		},
	)

	RewardsGranted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRewardsGranted,
			Help: HelpTextRewardsGranted,
		},
		[]string{LabelRewardType},
	)

	SettlementFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSettlementFails,
			Help: HelpTextSettlementFails,
		},
		[]string{LabelKind},
	)

	SSEClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameSSEClients,
			Help: HelpTextSSEClients,
		},
	)

	SSEEventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSSEDropped,
			Help: HelpTextSSEDropped,
		},
		[]string{LabelReason},
	)
)

// Maintenance Metrics
var (
	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameMaintenanceRuns,
			Help: HelpTextMaintenanceRuns,
		},
		[]string{LabelOutcome},
	)

	MaintenancePurged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameMaintenancePurged,
			Help: HelpTextMaintenancePurged,
		},
		[]string{LabelTable},
	)
)
