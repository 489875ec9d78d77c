// Package reconcile tracks optimistic coin deltas on top of authoritative balances.
package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/event"
	"github.com/osse101/idlegarden/internal/logger"
)

// PendingDelta is a locally applied coin change awaiting confirmation.
type PendingDelta struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Display is what the player sees.
type Display struct {
	Coins        int64 `json:"coins"`
	Gems         int64 `json:"gems"`
	PendingCoins int64 `json:"pending_coins"`
	Revision     int64 `json:"revision"`
}

// Reconciler is the only client-side writer of economy state. It holds the
// latest authoritative balances and a bounded list of optimistic coin deltas.
// Gems are never predicted.
type Reconciler struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	state   domain.PlayerEconomyState
	loaded  bool
	pending []PendingDelta
}

// Option configures a Reconciler
type Option func(*Reconciler)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// WithTTL overrides how long deltas live without confirmation
func WithTTL(ttl time.Duration) Option {
	return func(r *Reconciler) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// New creates a Reconciler
func New(opts ...Option) *Reconciler {
	r := &Reconciler{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ApplyDelta records an optimistic coin delta and returns its id.
func (r *Reconciler) ApplyDelta(kind string, amount int64) (string, error) {
	id := uuid.NewString()
	if err := r.ApplyDeltaWithID(id, kind, amount); err != nil {
		return "", err
	}
	return id, nil
}

// ApplyDeltaWithID records an optimistic delta under a caller-chosen id.
// Only coin deltas are accepted.
func (r *Reconciler) ApplyDeltaWithID(id, kind string, amount int64) error {
	if kind != domain.RewardKindCoins {
		return fmt.Errorf("%w: kind %q", domain.ErrGemsNotOptimistic, kind)
	}
	if id == "" || amount == 0 {
		return fmt.Errorf("%w: empty delta", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.pending {
		if d.ID == id {
			return nil
		}
	}
	r.pending = append(r.pending, PendingDelta{ID: id, Kind: kind, Amount: amount, CreatedAt: r.now()})
	return nil
}

// Settle removes delta id and applies the authoritative state that includes it.
// A stale state (older revision) still removes the delta but leaves balances alone.
func (r *Reconciler) Settle(id string, state domain.PlayerEconomyState) bool {
	return r.Observe(state, id)
}

// Revert drops delta id after a definitive failure.
func (r *Reconciler) Revert(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.takeLocked(id)
	return ok
}

// SetAuthoritative applies an observed authoritative state with no known
// cause. Pending deltas covered by the coin movement are cleared so nothing
// is counted twice.
func (r *Reconciler) SetAuthoritative(state domain.PlayerEconomyState) bool {
	return r.Observe(state, "")
}

// Observe applies an authoritative state produced by the settlement with
// idempotency key causeID. The delta recorded under causeID is confirmed
// directly and only the rest of the coin movement is matched against the
// other pending deltas. It reports whether the balances were replaced.
func (r *Reconciler) Observe(state domain.PlayerEconomyState, causeID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cause, confirmed := r.takeLocked(causeID)
	if r.loaded && state.Revision <= r.state.Revision {
		return false
	}

	if r.loaded {
		movement := state.Coins - r.state.Coins
		if confirmed {
			movement -= cause.Amount
		}
		r.clearCoveredLocked(movement)
	}
	r.state = state
	r.loaded = true
	return true
}

// clearCoveredLocked removes deltas covered by a coin movement with no
// known cause. In order of preference it clears every delta when the
// movement equals their sum, one delta of exactly that amount, or deltas
// oldest first against the remaining movement of the same sign.
func (r *Reconciler) clearCoveredLocked(movement int64) {
	if movement == 0 || len(r.pending) == 0 {
		return
	}
	var total int64
	for _, d := range r.pending {
		total += d.Amount
	}
	if total == movement {
		r.pending = r.pending[:0]
		return
	}
	for i, d := range r.pending {
		if d.Amount == movement {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return
		}
	}
	kept := r.pending[:0]
	for _, d := range r.pending {
		switch {
		case movement > 0 && d.Amount > 0 && d.Amount <= movement:
			movement -= d.Amount
		case movement < 0 && d.Amount < 0 && d.Amount >= movement:
			movement -= d.Amount
		default:
			kept = append(kept, d)
		}
	}
	r.pending = kept
}

// takeLocked removes and returns delta id
func (r *Reconciler) takeLocked(id string) (PendingDelta, bool) {
	if id == "" {
		return PendingDelta{}, false
	}
	for i, d := range r.pending {
		if d.ID == id {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return d, true
		}
	}
	return PendingDelta{}, false
}

// Prune drops deltas older than the TTL and returns how many were dropped.
func (r *Reconciler) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	kept := r.pending[:0]
	dropped := 0
	for _, d := range r.pending {
		if d.CreatedAt.After(cutoff) {
			kept = append(kept, d)
			continue
		}
		dropped++
	}
	r.pending = kept
	return dropped
}

// Display returns balances as shown to the player. Expired deltas are ignored
// even before Prune runs.
func (r *Reconciler) Display() Display {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	var pending int64
	for _, d := range r.pending {
		if d.CreatedAt.After(cutoff) {
			pending += d.Amount
		}
	}
	coins := r.state.Coins + pending
	if coins < 0 {
		coins = 0
	}
	return Display{
		Coins:        coins,
		Gems:         r.state.Gems,
		PendingCoins: pending,
		Revision:     r.state.Revision,
	}
}

// Authoritative returns the last applied authoritative state.
func (r *Reconciler) Authoritative() (domain.PlayerEconomyState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.loaded
}

// Pending returns a copy of the live deltas.
func (r *Reconciler) Pending() []PendingDelta {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PendingDelta(nil), r.pending...)
}

// Register subscribes the reconciler to local claim events. The handler applies
// an optimistic delta for coin claims only; gem and exp claims are ignored because
// their final value comes from the authority alone.
func (r *Reconciler) Register(bus event.Bus) {
	bus.Subscribe(event.RewardClaimed, r.handleRewardClaimed)
	bus.Subscribe(event.CoinsSpent, r.handleCoinsSpent)
	bus.Subscribe(event.EconomyUpdated, r.handleEconomyUpdated)
}

func (r *Reconciler) handleRewardClaimed(ctx context.Context, evt event.Event) error {
	payload, err := event.DecodePayload[domain.RewardClaimedPayloadV1](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Error(LogMsgDecodePayloadFail, "event_type", evt.Type, "error", err)
		return err
	}
	if payload.Kind != domain.RewardKindCoins {
		logger.FromContext(ctx).Debug(LogMsgNonCoinClaim, "kind", payload.Kind, "source", payload.Source)
		return nil
	}
	return r.ApplyDeltaWithID(payload.DeltaID, domain.RewardKindCoins, payload.Amount)
}

func (r *Reconciler) handleCoinsSpent(ctx context.Context, evt event.Event) error {
	payload, err := event.DecodePayload[domain.CoinsSpentPayloadV1](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Error(LogMsgDecodePayloadFail, "event_type", evt.Type, "error", err)
		return err
	}
	return r.ApplyDeltaWithID(payload.DeltaID, domain.RewardKindCoins, -payload.Amount)
}

func (r *Reconciler) handleEconomyUpdated(ctx context.Context, evt event.Event) error {
	payload, err := event.DecodePayload[domain.EconomyUpdatedPayloadV1](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Error(LogMsgDecodePayloadFail, "event_type", evt.Type, "error", err)
		return err
	}

	current, _ := r.Authoritative()
	next := current
	next.UserID = payload.UserID
	next.Coins = payload.Coins
	next.Gems = payload.Gems
	next.Experience = payload.Experience
	next.Level = payload.Level
	next.HarvestCount = payload.HarvestCount
	next.Revision = payload.Revision
	if !r.Observe(next, payload.RequestID) {
		logger.FromContext(ctx).Debug(LogMsgStaleState, "revision", payload.Revision, "current", current.Revision)
	}
	return nil
}
