// Package authority declares the ports the client engine talks to. The server
// implements them in-process (garden.Service); the client reaches them over HTTP.
package authority

import (
	"context"

	"github.com/osse101/idlegarden/internal/domain"
)

// TransactionAuthority settles plot mutations and owns economy state
type TransactionAuthority interface {
	// Harvest validates and settles a harvest. The result carries the final balances.
	Harvest(ctx context.Context, req domain.HarvestRequest) (*domain.HarvestResult, error)

	// Plant validates and settles a plant, deducting the cost.
	Plant(ctx context.Context, req domain.PlantRequest) (*domain.PlantResult, error)

	// State returns the full authoritative snapshot for a user
	State(ctx context.Context, userID string) (*domain.GardenSnapshot, error)
}

// CooldownAuthority gates reward grants
type CooldownAuthority interface {
	CooldownState(ctx context.Context, userID, rewardType string) (*domain.CooldownState, error)

	// Grant performs the atomic increment-and-check and credits the reward
	Grant(ctx context.Context, req domain.GrantRequest) (*domain.GrantResult, error)
}

// Authority is both ports together
type Authority interface {
	TransactionAuthority
	CooldownAuthority
}

// AdOracle plays a rewarded ad and reports whether it was watched to the end
type AdOracle interface {
	ShowRewarded(ctx context.Context, placement string) (completed bool, adDurationMs int64, err error)
}

// AdOracleFunc adapts a function to AdOracle
type AdOracleFunc func(ctx context.Context, placement string) (bool, int64, error)

// ShowRewarded implements AdOracle
func (f AdOracleFunc) ShowRewarded(ctx context.Context, placement string) (bool, int64, error) {
	return f(ctx, placement)
}
