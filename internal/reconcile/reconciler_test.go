package reconcile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/event"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestReconciler(t *testing.T, coins int64) (*Reconciler, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	r := New(WithClock(clock.Now), WithTTL(2500*time.Millisecond))
	require.True(t, r.SetAuthoritative(domain.PlayerEconomyState{UserID: "u1", Coins: coins, Gems: 3, Revision: 1}))
	return r, clock
}

func econ(coins, gems, revision int64) domain.PlayerEconomyState {
	return domain.PlayerEconomyState{UserID: "u1", Coins: coins, Gems: gems, Revision: revision}
}

func TestApplyDelta_DisplaysAhead(t *testing.T) {
	r, _ := newTestReconciler(t, 100)

	_, err := r.ApplyDelta(domain.RewardKindCoins, 50)
	require.NoError(t, err)

	d := r.Display()
	assert.Equal(t, int64(150), d.Coins)
	assert.Equal(t, int64(50), d.PendingCoins)
	assert.Equal(t, int64(3), d.Gems)
}

func TestApplyDelta_RejectsGems(t *testing.T) {
	r, _ := newTestReconciler(t, 100)

	_, err := r.ApplyDelta(domain.RewardKindGems, 1)
	assert.ErrorIs(t, err, domain.ErrGemsNotOptimistic)
	assert.Empty(t, r.Pending())
	assert.Equal(t, int64(3), r.Display().Gems)
}

func TestSettle_NeverDoubleCounts(t *testing.T) {
	r, _ := newTestReconciler(t, 100)
	id, err := r.ApplyDelta(domain.RewardKindCoins, 50)
	require.NoError(t, err)

	assert.True(t, r.Settle(id, econ(150, 3, 2)))

	assert.Equal(t, int64(150), r.Display().Coins)
	assert.Empty(t, r.Pending())
}

func TestObserve_ClearsCoveredDelta(t *testing.T) {
	r, _ := newTestReconciler(t, 100)
	id, err := r.ApplyDelta(domain.RewardKindCoins, 50)
	require.NoError(t, err)

	// The pushed balance lands before the call returns
	assert.True(t, r.SetAuthoritative(econ(150, 3, 2)))
	assert.Equal(t, int64(150), r.Display().Coins, "must not show +2X")

	// The late response carries the same revision and changes nothing
	assert.False(t, r.Settle(id, econ(150, 3, 2)))
	assert.Equal(t, int64(150), r.Display().Coins)
}

func TestObserve_OutOfOrderConfirmations(t *testing.T) {
	r, _ := newTestReconciler(t, 100)
	_, err := r.ApplyDelta(domain.RewardKindCoins, 50)
	require.NoError(t, err)
	_, err = r.ApplyDelta(domain.RewardKindCoins, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(180), r.Display().Coins)

	// Second harvest confirmed first
	r.SetAuthoritative(econ(130, 3, 2))
	assert.Equal(t, int64(180), r.Display().Coins)
	require.Len(t, r.Pending(), 1)
	assert.Equal(t, int64(50), r.Pending()[0].Amount)

	r.SetAuthoritative(econ(180, 3, 3))
	assert.Equal(t, int64(180), r.Display().Coins)
	assert.Empty(t, r.Pending())
}

func TestObserve_NegativeDeltas(t *testing.T) {
	r, _ := newTestReconciler(t, 500)
	_, err := r.ApplyDelta(domain.RewardKindCoins, -100)
	require.NoError(t, err)
	assert.Equal(t, int64(400), r.Display().Coins)

	r.SetAuthoritative(econ(400, 3, 2))
	assert.Equal(t, int64(400), r.Display().Coins)
	assert.Empty(t, r.Pending())
}

func TestStaleStateIgnored(t *testing.T) {
	r, _ := newTestReconciler(t, 100)
	require.True(t, r.SetAuthoritative(econ(300, 4, 5)))

	assert.False(t, r.SetAuthoritative(econ(200, 9, 4)))
	state, ok := r.Authoritative()
	require.True(t, ok)
	assert.Equal(t, int64(300), state.Coins)
	assert.Equal(t, int64(4), state.Gems)
}

func TestSettle_StaleStillRemovesDelta(t *testing.T) {
	r, _ := newTestReconciler(t, 100)
	require.True(t, r.SetAuthoritative(econ(100, 3, 5)))
	id, err := r.ApplyDelta(domain.RewardKindCoins, 50)
	require.NoError(t, err)

	assert.False(t, r.Settle(id, econ(150, 3, 4)))
	assert.Empty(t, r.Pending())
	assert.Equal(t, int64(100), r.Display().Coins)
}

func TestRevert(t *testing.T) {
	r, _ := newTestReconciler(t, 100)
	id, err := r.ApplyDelta(domain.RewardKindCoins, 50)
	require.NoError(t, err)

	assert.True(t, r.Revert(id))
	assert.False(t, r.Revert(id))
	assert.Equal(t, int64(100), r.Display().Coins)
}

func TestTTLExpiry(t *testing.T) {
	r, clock := newTestReconciler(t, 100)
	_, err := r.ApplyDelta(domain.RewardKindCoins, 50)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	assert.Equal(t, int64(150), r.Display().Coins)

	clock.Advance(600 * time.Millisecond)
	assert.Equal(t, int64(100), r.Display().Coins, "expired deltas stop counting before pruning")
	assert.Len(t, r.Pending(), 1)

	assert.Equal(t, 1, r.Prune())
	assert.Empty(t, r.Pending())
}

func TestApplyDeltaWithID_Dedupes(t *testing.T) {
	r, _ := newTestReconciler(t, 100)
	require.NoError(t, r.ApplyDeltaWithID("d1", domain.RewardKindCoins, 10))
	require.NoError(t, r.ApplyDeltaWithID("d1", domain.RewardKindCoins, 10))
	assert.Equal(t, int64(110), r.Display().Coins)
}

func TestRegister_CoinsOnlyContract(t *testing.T) {
	r, _ := newTestReconciler(t, 100)
	bus := event.NewMemoryBus()
	r.Register(bus)
	ctx := context.Background()

	require.NoError(t, bus.Publish(ctx, event.NewRewardClaimedEvent("c1", "u1", domain.RewardKindCoins, 40, "harvest")))
	require.NoError(t, bus.Publish(ctx, event.NewRewardClaimedEvent("g1", "u1", domain.RewardKindGems, 1, "harvest")))
	require.NoError(t, bus.Publish(ctx, event.NewRewardClaimedEvent("e1", "u1", domain.RewardKindExp, 20, "harvest")))

	d := r.Display()
	assert.Equal(t, int64(140), d.Coins)
	assert.Equal(t, int64(3), d.Gems, "gem claims never move the displayed gem balance")
	require.Len(t, r.Pending(), 1)
	assert.Equal(t, "c1", r.Pending()[0].ID)

	require.NoError(t, bus.Publish(ctx, event.NewCoinsSpentEvent("s1", "u1", 25, "plant")))
	assert.Equal(t, int64(115), r.Display().Coins)

	require.NoError(t, bus.Publish(ctx, event.NewEconomyUpdatedEvent(domain.PlayerEconomyState{UserID: "u1", Coins: 115, Gems: 4, Revision: 3}, "")))
	d = r.Display()
	assert.Equal(t, int64(115), d.Coins)
	assert.Equal(t, int64(4), d.Gems)
	assert.Empty(t, r.Pending())
}

func TestObserve_NewerLargerDeltaConfirmedFirst(t *testing.T) {
	r, _ := newTestReconciler(t, 100)
	_, err := r.ApplyDelta(domain.RewardKindCoins, 50)
	require.NoError(t, err)
	_, err = r.ApplyDelta(domain.RewardKindCoins, 60)
	require.NoError(t, err)

	// The +60 harvest lands while the older +50 is still in flight
	r.SetAuthoritative(econ(160, 3, 2))
	assert.Equal(t, int64(210), r.Display().Coins)
	require.Len(t, r.Pending(), 1)
	assert.Equal(t, int64(50), r.Pending()[0].Amount)
}

func TestObserve_ConfirmsByRequestID(t *testing.T) {
	r, _ := newTestReconciler(t, 100)
	require.NoError(t, r.ApplyDeltaWithID("plot-2", domain.RewardKindCoins, 60))
	require.NoError(t, r.ApplyDeltaWithID("plot-1", domain.RewardKindCoins, 60))
	require.NoError(t, r.ApplyDeltaWithID("plot-3", domain.RewardKindCoins, 40))

	// plot-1 settles and a passive +10 lands in the same revision
	assert.True(t, r.Observe(econ(170, 3, 2), "plot-1"))

	ids := make([]string, 0, 2)
	for _, d := range r.Pending() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"plot-2", "plot-3"}, ids)
	assert.Equal(t, int64(270), r.Display().Coins)
}

func TestSettle_DoesNotClearOtherDeltas(t *testing.T) {
	r, _ := newTestReconciler(t, 100)
	_, err := r.ApplyDelta(domain.RewardKindCoins, 50)
	require.NoError(t, err)
	second, err := r.ApplyDelta(domain.RewardKindCoins, 60)
	require.NoError(t, err)

	assert.True(t, r.Settle(second, econ(160, 3, 2)))
	require.Len(t, r.Pending(), 1)
	assert.Equal(t, int64(50), r.Pending()[0].Amount)
	assert.Equal(t, int64(210), r.Display().Coins)
}

func TestRegister_EconomyUpdatedClearsByRequestID(t *testing.T) {
	r, _ := newTestReconciler(t, 100)
	bus := event.NewMemoryBus()
	r.Register(bus)
	ctx := context.Background()

	require.NoError(t, bus.Publish(ctx, event.NewRewardClaimedEvent("h2", "u1", domain.RewardKindCoins, 50, "harvest")))
	require.NoError(t, bus.Publish(ctx, event.NewRewardClaimedEvent("h1", "u1", domain.RewardKindCoins, 60, "harvest")))

	require.NoError(t, bus.Publish(ctx, event.NewEconomyUpdatedEvent(econ(160, 3, 2), "h1")))
	require.Len(t, r.Pending(), 1)
	assert.Equal(t, "h2", r.Pending()[0].ID)
	assert.Equal(t, int64(210), r.Display().Coins)
}
