package garden

import (
	"context"
	"time"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/event"
	"github.com/osse101/idlegarden/internal/reward"
)

func (s *service) publishAsync(ctx context.Context, events ...event.Event) {
	if s.publisher == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		asyncCtx := context.WithoutCancel(ctx)
		for _, evt := range events {
			s.publisher.PublishWithRetry(asyncCtx, evt)
		}
	}()
}

func (s *service) publishHarvest(ctx context.Context, requestID string, econ domain.PlayerEconomyState, plotID int, plantTypeID string, quote reward.Quote) {
	s.publishAsync(ctx,
		event.NewHarvestCompletedEvent(econ.UserID, plotID, plantTypeID, quote.Coins, quote.Exp, quote.GemsSettled),
		event.NewEconomyUpdatedEvent(econ, requestID),
	)
}

func (s *service) publishPlant(ctx context.Context, requestID string, econ domain.PlayerEconomyState, plotID int, plantTypeID string, plantedAt time.Time, cost int64) {
	s.publishAsync(ctx,
		event.NewPlotPlantedEvent(econ.UserID, plotID, plantTypeID, plantedAt, cost),
		event.NewEconomyUpdatedEvent(econ, requestID),
	)
}

func (s *service) publishGrant(ctx context.Context, requestID string, econ domain.PlayerEconomyState, rec domain.CooldownRecord, amount int64) {
	s.publishAsync(ctx,
		event.NewRewardGrantedEvent(econ.UserID, rec.RewardType, amount, rec.DailyCount, rec.MaxDaily),
		event.NewEconomyUpdatedEvent(econ, requestID),
	)
}
