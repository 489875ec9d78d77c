package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/idlegarden/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata map[string]interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata,omitempty"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if e.Metadata == nil {
		return nil
	}
	return e.Metadata[key]
}

// Economy event types
const (
	RewardClaimed    Type = domain.EventTypeRewardClaimed
	CoinsSpent       Type = domain.EventTypeCoinsSpent
	EconomyUpdated   Type = domain.EventTypeEconomyUpdated
	HarvestCompleted Type = domain.EventTypeHarvestCompleted
	PlotPlanted      Type = domain.EventTypePlotPlanted
	PlotReady        Type = domain.EventTypePlotReady
	RewardGranted    Type = domain.EventTypeRewardGranted
)

// Type-safe event constructors

// NewRewardClaimedEvent creates a reward.claimed event for a locally predicted reward
func NewRewardClaimedEvent(deltaID, userID, kind string, amount int64, source string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    RewardClaimed,
		Payload: domain.RewardClaimedPayloadV1{
			DeltaID:   deltaID,
			UserID:    userID,
			Kind:      kind,
			Amount:    amount,
			Source:    source,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewCoinsSpentEvent creates a coins.spent event for a locally predicted cost
func NewCoinsSpentEvent(deltaID, userID string, amount int64, source string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    CoinsSpent,
		Payload: domain.CoinsSpentPayloadV1{
			DeltaID:   deltaID,
			UserID:    userID,
			Amount:    amount,
			Source:    source,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewEconomyUpdatedEvent creates an economy.updated event from committed state.
// requestID names the settlement that produced it so clients can confirm the
// matching optimistic delta.
func NewEconomyUpdatedEvent(state domain.PlayerEconomyState, requestID string) Event {
	payload := domain.NewEconomyUpdatedPayload(state, time.Now())
	payload.RequestID = requestID
	return Event{
		Version: EventSchemaVersion,
		Type:    EconomyUpdated,
		Payload: payload,
		Metadata: Metadata{
			MetadataKeyUserID: state.UserID,
		},
	}
}

// NewHarvestCompletedEvent creates a harvest.completed event
func NewHarvestCompletedEvent(userID string, plotID int, plantTypeID string, coins, exp, gems int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    HarvestCompleted,
		Payload: domain.HarvestCompletedPayloadV1{
			UserID:      userID,
			PlotID:      plotID,
			PlantTypeID: plantTypeID,
			Coins:       coins,
			Exp:         exp,
			Gems:        gems,
			Timestamp:   time.Now().Unix(),
		},
		Metadata: Metadata{
			MetadataKeyUserID: userID,
		},
	}
}

// NewPlotPlantedEvent creates a plot.planted event
func NewPlotPlantedEvent(userID string, plotID int, plantTypeID string, plantedAt time.Time, cost int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    PlotPlanted,
		Payload: domain.PlotPlantedPayloadV1{
			UserID:      userID,
			PlotID:      plotID,
			PlantTypeID: plantTypeID,
			PlantedAt:   plantedAt.Unix(),
			Cost:        cost,
			Timestamp:   time.Now().Unix(),
		},
		Metadata: Metadata{
			MetadataKeyUserID: userID,
		},
	}
}

// NewPlotReadyEvent creates a plot.ready event
func NewPlotReadyEvent(userID string, plotID int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    PlotReady,
		Payload: domain.PlotReadyPayloadV1{
			UserID:    userID,
			PlotID:    plotID,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewRewardGrantedEvent creates a reward.granted event
func NewRewardGrantedEvent(userID, rewardType string, amount int64, dailyCount, maxDaily int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    RewardGranted,
		Payload: domain.RewardGrantedPayloadV1{
			UserID:     userID,
			RewardType: rewardType,
			Amount:     amount,
			DailyCount: dailyCount,
			MaxDaily:   maxDaily,
			Timestamp:  time.Now().Unix(),
		},
		Metadata: Metadata{
			MetadataKeyUserID: userID,
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// Publisher accepts events for delivery without blocking the caller on failures
type Publisher interface {
	PublishWithRetry(ctx context.Context, event Event)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish runs every subscriber synchronously, in subscription order
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
