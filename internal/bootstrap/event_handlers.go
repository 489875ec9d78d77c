package bootstrap

import (
	"log/slog"

	"github.com/osse101/idlegarden/internal/event"
	"github.com/osse101/idlegarden/internal/metrics"
	"github.com/osse101/idlegarden/internal/sse"
)

// EventHandlerDependencies holds the dependencies needed for event handler registration.
type EventHandlerDependencies struct {
	EventBus event.Bus
	SSEHub   *sse.Hub
}

// RegisterEventHandlers subscribes the metrics collector and the SSE bridge to the bus
func RegisterEventHandlers(deps EventHandlerDependencies) {
	metrics.NewEventMetricsCollector().Register(deps.EventBus)
	slog.Info(LogMsgMetricsCollectorRegistered)

	sse.NewSubscriber(deps.SSEHub, deps.EventBus).Subscribe()
	slog.Info(LogMsgSSESubscriberRegistered, "event_types", sse.StreamedTypes)
}
