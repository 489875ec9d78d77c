// Package garden is the authority: it validates and settles plot mutations and
// reward grants against persisted state, recomputing every client-supplied amount.
package garden

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/idlegarden/internal/authority"
	"github.com/osse101/idlegarden/internal/cooldown"
	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/event"
	"github.com/osse101/idlegarden/internal/growth"
	"github.com/osse101/idlegarden/internal/logger"
	"github.com/osse101/idlegarden/internal/multiplier"
	"github.com/osse101/idlegarden/internal/repository"
)

// Service is the authority for one garden deployment
type Service interface {
	authority.Authority

	// AddUpgrade records a purchased upgrade (admin)
	AddUpgrade(ctx context.Context, userID string, upgrade domain.UpgradeRecord) error

	// SetTier sets or clears a tier bonus (admin)
	SetTier(ctx context.Context, userID string, tier *domain.TierBonus) error

	// PurgeExpired removes ended boosts and idempotency keys older than keyTTL
	PurgeExpired(ctx context.Context, keyTTL time.Duration) (boosts, keys int64, err error)

	// Shutdown waits for in-flight event publishing
	Shutdown(ctx context.Context) error
}

// Config holds service settings
type Config struct {
	Cooldown        cooldown.Config
	MaxRewardAmount int64
}

// Option configures the service
type Option func(*service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithGrowthCache sets the adjusted-duration cache used for readiness checks
func WithGrowthCache(c *growth.Cache) Option {
	return func(s *service) { s.growth = c }
}

type service struct {
	repo      repository.GardenRepository
	publisher event.Publisher
	cfg       Config
	now       func() time.Time
	growth    *growth.Cache

	wg sync.WaitGroup
}

// NewService creates the garden authority. publisher may be nil.
func NewService(repo repository.GardenRepository, publisher event.Publisher, cfg Config, opts ...Option) Service {
	if cfg.MaxRewardAmount <= 0 {
		cfg.MaxRewardAmount = DefaultMaxRewardAmount
	}
	s := &service{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the full snapshot, creating the garden on first contact
func (s *service) State(ctx context.Context, userID string) (*domain.GardenSnapshot, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}
	econ, err := s.ensureGarden(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	plots, err := s.repo.GetPlots(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plots: %w", err)
	}
	upgrades, err := s.repo.GetUpgrades(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgLoadModifiers, err)
	}
	boosts, err := s.repo.GetActiveBoosts(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgLoadModifiers, err)
	}
	tier, err := s.repo.GetTier(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgLoadModifiers, err)
	}
	catalog, err := s.repo.ListPlantTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	return &domain.GardenSnapshot{
		Economy:  *econ,
		Plots:    plots,
		Upgrades: upgrades,
		Boosts:   boosts,
		Tier:     tier,
		Catalog:  catalog,
		ServerAt: now,
	}, nil
}

func (s *service) ensureGarden(ctx context.Context, userID string) (*domain.PlayerEconomyState, error) {
	econ, err := s.repo.GetEconomy(ctx, userID)
	if err == nil {
		return econ, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get economy: %w", err)
	}

	starter, plots := NewGarden(userID)
	if err := s.repo.CreateGarden(ctx, starter, plots); err != nil {
		return nil, fmt.Errorf(ErrMsgCreateGarden, err)
	}
	logger.FromContext(ctx).Info(LogMsgGardenCreated, logger.AttrKeyUserID, userID, "plots", len(plots))

	// Re-read: a concurrent request may have created it first
	return s.repo.GetEconomy(ctx, userID)
}

// NewGarden returns the starter economy and plots for a new player
func NewGarden(userID string) (domain.PlayerEconomyState, []domain.PlotState) {
	econ := domain.PlayerEconomyState{
		UserID:              userID,
		Coins:               domain.StarterCoins,
		Level:               domain.StarterLevel,
		PermanentMultiplier: domain.StarterPermanentMult,
		Revision:            1,
	}
	plots := make([]domain.PlotState, domain.StarterPlots)
	for i := range plots {
		plots[i] = domain.PlotState{PlotID: i + 1, Unlocked: i < domain.StarterUnlockedPlots}
	}
	return econ, plots
}

// modifiers loads and aggregates everything that scales the economy at now
func (s *service) modifiers(ctx context.Context, tx repository.GardenTx, userID string, now time.Time) (domain.MultiplierSet, error) {
	upgrades, err := tx.GetUpgrades(ctx, userID)
	if err != nil {
		return domain.MultiplierSet{}, fmt.Errorf(ErrMsgLoadModifiers, err)
	}
	boosts, err := tx.GetActiveBoosts(ctx, userID, now)
	if err != nil {
		return domain.MultiplierSet{}, fmt.Errorf(ErrMsgLoadModifiers, err)
	}
	tier, err := tx.GetTier(ctx, userID)
	if err != nil {
		return domain.MultiplierSet{}, fmt.Errorf(ErrMsgLoadModifiers, err)
	}
	return multiplier.Aggregate(now, multiplier.Inputs{Upgrades: upgrades, Boosts: boosts, Tier: tier}), nil
}

func (s *service) evaluate(now time.Time, plot domain.PlotState, growthMult float64) growth.Status {
	if s.growth != nil {
		return s.growth.Evaluate(now, plot, growthMult)
	}
	return growth.Evaluate(now, plot, growthMult)
}

// AddUpgrade records a purchased upgrade
func (s *service) AddUpgrade(ctx context.Context, userID string, upgrade domain.UpgradeRecord) error {
	if upgrade.UpgradeID == "" || upgrade.EffectType == "" {
		return fmt.Errorf("%w: upgrade id and effect type required", domain.ErrInvalidInput)
	}
	if _, err := s.ensureGarden(ctx, userID); err != nil {
		return err
	}
	return s.repo.AddUpgrade(ctx, userID, upgrade)
}

// SetTier sets or clears a tier bonus
func (s *service) SetTier(ctx context.Context, userID string, tier *domain.TierBonus) error {
	if _, err := s.ensureGarden(ctx, userID); err != nil {
		return err
	}
	return s.repo.SetTier(ctx, userID, tier)
}

// PurgeExpired removes rows no reader will use again
func (s *service) PurgeExpired(ctx context.Context, keyTTL time.Duration) (int64, int64, error) {
	now := s.now()
	boosts, err := s.repo.DeleteExpiredBoosts(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	keys, err := s.repo.DeleteIdempotencyKeysBefore(ctx, now.Add(-keyTTL))
	if err != nil {
		return boosts, 0, err
	}
	logger.FromContext(ctx).Info(LogMsgPurgeCompleted, "boosts", boosts, "idempotency_keys", keys)
	return boosts, keys, nil
}

// Shutdown waits for in-flight event publishing to finish
func (s *service) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgShutdownStarted)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(LogMsgShutdownCompleted)
		return nil
	case <-ctx.Done():
		log.Warn(LogMsgShutdownTimeout)
		return ctx.Err()
	}
}
