// Command setup creates the garden database if it is missing and applies the
// embedded migrations. With CATALOG_PATH set it also syncs the plant catalog.
// It is safe to run repeatedly.
package main

import (
	"context"
	"log"
	"time"

	"github.com/osse101/idlegarden/internal/bootstrap"
	"github.com/osse101/idlegarden/internal/config"
	"github.com/osse101/idlegarden/internal/database"
	"github.com/osse101/idlegarden/internal/database/postgres"
)

const setupTimeout = 2 * time.Minute

func main() {
	cfg := config.LoadDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	created, err := database.EnsureDatabase(ctx, cfg.GetAdminConnString(), cfg.DBName)
	if err != nil {
		log.Fatalf("Failed to prepare database %s: %v", cfg.DBName, err)
	}
	if created {
		log.Printf("Database %s created.\n", cfg.DBName)
	} else {
		log.Printf("Database %s already exists.\n", cfg.DBName)
	}

	pool, err := database.NewPool(cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdle, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("Unable to connect to %s: %v", cfg.DBName, err)
	}
	defer pool.Close()

	log.Println("Running migrations...")
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	if cfg.CatalogPath != "" {
		log.Printf("Syncing plant catalog from %s...\n", cfg.CatalogPath)
		if err := bootstrap.SyncCatalog(ctx, cfg, postgres.NewGardenRepository(pool)); err != nil {
			log.Fatalf("Failed to sync catalog: %v", err)
		}
	}
	log.Println("Setup complete.")
}
