package garden

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/osse101/idlegarden/internal/database/memory"
	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/growth"
	"github.com/osse101/idlegarden/internal/multiplier"
	"github.com/osse101/idlegarden/internal/reward"
)

func newBenchService(b *testing.B) (Service, *testClock) {
	b.Helper()
	clock := &testClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	svc := NewService(memory.NewStore(memory.DefaultCatalog()), &recordingPublisher{}, Config{},
		WithClock(clock.Now), WithGrowthCache(growth.NewCache(64, time.Minute)))
	b.Cleanup(func() { _ = svc.Shutdown(context.Background()) })
	return svc, clock
}

// plantAndHarvest runs one full carrot cycle for a fresh player
func plantAndHarvest(ctx context.Context, svc Service, clock *testClock, userID string) error {
	if _, err := svc.Plant(ctx, domain.PlantRequest{
		UserID: userID, PlotID: 1, PlantTypeID: "carrot", ExpectedCost: 100, BaseGrowthSeconds: 30,
	}); err != nil {
		return err
	}

	snap, err := svc.State(ctx, userID)
	if err != nil {
		return err
	}
	ready := snap.Plots[0].PlantedAt.Add(30 * time.Second)
	if clock.Now().Before(ready) {
		clock.Advance(ready.Sub(clock.Now()))
	}

	mult := multiplier.Aggregate(clock.Now(), multiplier.Inputs{Upgrades: snap.Upgrades, Boosts: snap.Boosts, Tier: snap.Tier})
	q := reward.QuoteHarvest(1, 30, snap.Economy, mult, nil)
	_, err = svc.Harvest(ctx, domain.HarvestRequest{
		UserID:                userID,
		PlotID:                1,
		ComputedHarvestReward: q.Coins,
		ComputedExpReward:     q.Exp,
		ComputedGrowthSeconds: q.GrowthSeconds,
		MultiplierSnapshot:    mult,
	})
	return err
}

func BenchmarkService_PlantHarvestCycle(b *testing.B) {
	svc, clock := newBenchService(b)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := plantAndHarvest(ctx, svc, clock, fmt.Sprintf("bench-%d", i)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkService_StateParallel(b *testing.B) {
	svc, _ := newBenchService(b)
	ctx := context.Background()
	for i := 0; i < 64; i++ {
		if _, err := svc.State(ctx, fmt.Sprintf("bench-%d", i)); err != nil {
			b.Fatal(err)
		}
	}

	var n atomic.Int64
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := svc.State(ctx, fmt.Sprintf("bench-%d", n.Add(1)%64)); err != nil {
				b.Error(err)
			}
		}
	})
}
