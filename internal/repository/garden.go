package repository

import (
	"context"
	"time"

	"github.com/osse101/idlegarden/internal/domain"
)

// GardenRepository handles garden, economy and reward gate persistence
type GardenRepository interface {
	// GetEconomy returns domain.ErrUserNotFound when the garden does not exist
	GetEconomy(ctx context.Context, userID string) (*domain.PlayerEconomyState, error)

	// CreateGarden inserts a new garden. Existing gardens are left untouched.
	CreateGarden(ctx context.Context, economy domain.PlayerEconomyState, plots []domain.PlotState) error

	GetPlots(ctx context.Context, userID string) ([]domain.PlotState, error)
	GetUpgrades(ctx context.Context, userID string) ([]domain.UpgradeRecord, error)
	GetActiveBoosts(ctx context.Context, userID string, now time.Time) ([]domain.ActiveBoost, error)
	GetTier(ctx context.Context, userID string) (*domain.TierBonus, error)
	ListPlantTypes(ctx context.Context) ([]domain.PlantTypeDef, error)

	// UpsertPlantTypes inserts or updates catalog entries and returns how many changed
	UpsertPlantTypes(ctx context.Context, defs []domain.PlantTypeDef) (int64, error)

	// GetCooldown returns nil when no grant has been recorded
	GetCooldown(ctx context.Context, userID, rewardType string) (*domain.CooldownRecord, error)

	// Admin operations
	AddUpgrade(ctx context.Context, userID string, upgrade domain.UpgradeRecord) error
	SetTier(ctx context.Context, userID string, tier *domain.TierBonus) error

	// Maintenance
	DeleteExpiredBoosts(ctx context.Context, now time.Time) (int64, error)
	DeleteIdempotencyKeysBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Transaction support
	BeginTx(ctx context.Context) (GardenTx, error)
}

// GardenTx defines the interface for settlement transactions
type GardenTx interface {
	Tx

	// ClaimIdempotencyKey returns domain.ErrDuplicateRequest if the key was already used
	ClaimIdempotencyKey(ctx context.Context, userID, key string, at time.Time) error

	// GetEconomyForUpdate retrieves the economy row with FOR UPDATE lock
	GetEconomyForUpdate(ctx context.Context, userID string) (*domain.PlayerEconomyState, error)
	UpdateEconomy(ctx context.Context, economy domain.PlayerEconomyState) error

	// GetPlotForUpdate returns domain.ErrInvalidPlot when the plot does not exist
	GetPlotForUpdate(ctx context.Context, userID string, plotID int) (*domain.PlotState, error)
	UpdatePlot(ctx context.Context, userID string, plot domain.PlotState) error

	GetUpgrades(ctx context.Context, userID string) ([]domain.UpgradeRecord, error)
	GetActiveBoosts(ctx context.Context, userID string, now time.Time) ([]domain.ActiveBoost, error)
	GetTier(ctx context.Context, userID string) (*domain.TierBonus, error)
	AddBoost(ctx context.Context, userID string, boost domain.ActiveBoost) error

	// GetPlantType returns domain.ErrPlantTypeNotFound for unknown ids
	GetPlantType(ctx context.Context, plantTypeID string) (*domain.PlantTypeDef, error)

	// LockCooldown serializes grants for one user and reward type until the transaction ends
	LockCooldown(ctx context.Context, userID, rewardType string) error
	GetCooldownForUpdate(ctx context.Context, userID, rewardType string) (*domain.CooldownRecord, error)
	UpsertCooldown(ctx context.Context, record domain.CooldownRecord) error
}
