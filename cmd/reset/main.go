// Command reset drops the garden database, recreates it and reapplies the
// migrations. Every player's garden is lost.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/osse101/idlegarden/internal/config"
	"github.com/osse101/idlegarden/internal/database"
)

const resetTimeout = 2 * time.Minute

func main() {
	force := flag.Bool("force", false, "required; confirms the database may be dropped")
	flag.Parse()

	cfg := config.LoadDatabase()
	if !*force {
		log.Fatalf("Refusing to drop %s without -force", cfg.DBName)
	}

	ctx, cancel := context.WithTimeout(context.Background(), resetTimeout)
	defer cancel()

	log.Printf("Dropping database %s...\n", cfg.DBName)
	if err := database.DropDatabase(ctx, cfg.GetAdminConnString(), cfg.DBName); err != nil {
		log.Fatalf("Failed to drop database: %v", err)
	}

	if _, err := database.EnsureDatabase(ctx, cfg.GetAdminConnString(), cfg.DBName); err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	log.Printf("Database %s recreated.\n", cfg.DBName)

	pool, err := database.NewPool(cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdle, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("Unable to connect to %s: %v", cfg.DBName, err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}
	log.Println("\n✅ Database reset complete!")
}
