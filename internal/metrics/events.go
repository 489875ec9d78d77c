package metrics

import (
	"context"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/event"
	"github.com/osse101/idlegarden/internal/logger"
)

// EventMetricsCollector subscribes to authority events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to every settled-mutation event
func (e *EventMetricsCollector) Register(bus event.Bus) {
	for _, eventType := range []event.Type{
		event.HarvestCompleted,
		event.PlotPlanted,
		event.RewardGranted,
		event.EconomyUpdated,
	} {
		bus.Subscribe(eventType, e.HandleEvent)
	}
}

// HandleEvent updates metrics for one event
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	var err error
	switch evt.Type {
	case event.HarvestCompleted:
		var p domain.HarvestCompletedPayloadV1
		if p, err = event.DecodePayload[domain.HarvestCompletedPayloadV1](evt.Payload); err == nil {
			HarvestsSettled.WithLabelValues(p.PlantTypeID).Inc()
			CoinsEarned.Add(float64(p.Coins))
			GemsAwarded.Add(float64(p.Gems))
		}
	case event.PlotPlanted:
		var p domain.PlotPlantedPayloadV1
		if p, err = event.DecodePayload[domain.PlotPlantedPayloadV1](evt.Payload); err == nil {
			PlantsSettled.WithLabelValues(p.PlantTypeID).Inc()
			CoinsSpent.Add(float64(p.Cost))
		}
	case event.RewardGranted:
		var p domain.RewardGrantedPayloadV1
		if p, err = event.DecodePayload[domain.RewardGrantedPayloadV1](evt.Payload); err == nil {
			RewardsGranted.WithLabelValues(p.RewardType).Inc()
			switch p.RewardType {
			case domain.RewardTypeCoins:
				CoinsEarned.Add(float64(p.Amount))
			case domain.RewardTypeGems:
				GemsAwarded.Add(float64(p.Amount))
			}
		}
	}
	if err != nil {
		log.Debug(LogMsgDecodeFailed, "type", evt.Type, "error", err)
		EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		return nil
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}

// RecordSettlementFailure counts a rejected authority request by error kind
func RecordSettlementFailure(err error) {
	SettlementFailures.WithLabelValues(string(domain.KindOf(err))).Inc()
}
