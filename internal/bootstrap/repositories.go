package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/idlegarden/internal/config"
	"github.com/osse101/idlegarden/internal/database"
	"github.com/osse101/idlegarden/internal/database/memory"
	"github.com/osse101/idlegarden/internal/database/postgres"
	"github.com/osse101/idlegarden/internal/repository"
)

// Repositories holds the storage the authority settles against.
type Repositories struct {
	Garden repository.GardenRepository

	// DBPool is nil when running on the in-memory store
	DBPool *pgxpool.Pool
}

// InitializeRepositories opens the configured store. For PostgreSQL it
// connects, applies the embedded migrations and returns the pool for
// health checks and shutdown.
func InitializeRepositories(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	if cfg.UsesMemoryStore() {
		slog.Warn(LogMsgUsingMemoryStore)
		return &Repositories{Garden: memory.NewStore(memory.DefaultCatalog())}, nil
	}

	dbPool, err := database.NewPool(cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdle, cfg.DBMaxConnLife)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedConnectDB, err)
	}

	if err := database.Migrate(ctx, dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedMigrate, err)
	}
	slog.Info(LogMsgMigrationsApplied)
	slog.Info(LogMsgUsingPostgresStore, "host", cfg.DBHost, "database", cfg.DBName)

	return &Repositories{
		Garden: postgres.NewGardenRepository(dbPool),
		DBPool: dbPool,
	}, nil
}

// HealthPool returns the pool for readiness checks, or a nil interface
// for the in-memory store
func (r *Repositories) HealthPool() database.Pool {
	if r.DBPool == nil {
		return nil
	}
	return r.DBPool
}

// Close releases the database pool, if any
func (r *Repositories) Close() {
	if r.DBPool != nil {
		r.DBPool.Close()
	}
}
