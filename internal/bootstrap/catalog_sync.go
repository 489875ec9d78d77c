package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/idlegarden/internal/catalog"
	"github.com/osse101/idlegarden/internal/config"
	"github.com/osse101/idlegarden/internal/repository"
)

// SyncCatalog loads the plant catalog named by CATALOG_PATH and writes new
// or changed plant types. It does nothing when no path is configured.
func SyncCatalog(ctx context.Context, cfg *config.Config, repo repository.GardenRepository) error {
	if cfg.CatalogPath == "" {
		return nil
	}

	slog.Info(LogMsgSyncingCatalog, "path", cfg.CatalogPath)
	loader := catalog.NewLoader()

	plants, err := loader.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedLoadCatalog, err)
	}
	if err := loader.Validate(plants); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgInvalidCatalog, err)
	}

	result, err := loader.SyncToDatabase(ctx, plants, repo)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedSyncCatalog, err)
	}

	if result.Inserted > 0 || result.Updated > 0 {
		slog.Info(LogMsgCatalogSynced,
			"inserted", result.Inserted,
			"updated", result.Updated,
			"skipped", result.Skipped)
	}
	return nil
}
