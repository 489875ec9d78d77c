package sse

import (
	"context"
	"log/slog"

	"github.com/osse101/idlegarden/internal/event"
)

// Subscriber bridges the authority event bus to the SSE hub
type Subscriber struct {
	hub *Hub
	bus event.Bus
}

// NewSubscriber creates a new SSE subscriber
func NewSubscriber(hub *Hub, bus event.Bus) *Subscriber {
	return &Subscriber{hub: hub, bus: bus}
}

// StreamedTypes are the bus events forwarded to clients
var StreamedTypes = []event.Type{
	event.EconomyUpdated,
	event.HarvestCompleted,
	event.PlotPlanted,
	event.RewardGranted,
}

// Subscribe registers the forwarding handler
func (s *Subscriber) Subscribe() {
	names := make([]string, 0, len(StreamedTypes))
	for _, t := range StreamedTypes {
		s.bus.Subscribe(t, s.forward)
		names = append(names, string(t))
	}
	slog.Info(LogMsgSubscriberReady, "types", names)
}

// forward relays the payload unchanged; the owning user comes from metadata
func (s *Subscriber) forward(_ context.Context, evt event.Event) error {
	userID, _ := evt.GetMetadataValue(event.MetadataKeyUserID).(string)
	s.hub.Broadcast(string(evt.Type), userID, evt.Payload)

	slog.Debug(LogMsgEventBroadcast, "event_type", evt.Type, "user_id", userID)
	return nil
}
