// Command app runs the idlegarden authority: the HTTP settlement API,
// the SSE event stream and background maintenance.
//
// @title idlegarden authority API
// @version 1.0
// @description Settles harvests, plantings and ad reward grants for the idle garden economy.
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/osse101/idlegarden/docs"
	"github.com/osse101/idlegarden/internal/bootstrap"
	"github.com/osse101/idlegarden/internal/config"
	"github.com/osse101/idlegarden/internal/cooldown"
	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/garden"
	"github.com/osse101/idlegarden/internal/growth"
	"github.com/osse101/idlegarden/internal/server"
	"github.com/osse101/idlegarden/internal/sse"
)

const (
	shutdownTimeout = 15 * time.Second
	growthCacheTTL  = time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		bootstrap.SetupStdoutLogger(cfg)
		slog.Warn("File logging disabled", "error", err)
	} else {
		defer logFile.Close()
	}

	if warnings, err := config.ValidateEnvWithWarnings(); err != nil {
		slog.Warn("Environment validation", "error", err)
	} else {
		for _, w := range warnings {
			slog.Warn(w)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := bootstrap.InitializeRepositories(ctx, cfg)
	if err != nil {
		return err
	}

	if err := bootstrap.SyncCatalog(ctx, cfg, repos.Garden); err != nil {
		repos.Close()
		return err
	}

	events, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		repos.Close()
		return err
	}

	hub := sse.NewHub()
	hub.Start()
	bootstrap.RegisterEventHandlers(bootstrap.EventHandlerDependencies{EventBus: events.Bus, SSEHub: hub})

	gardenSvc := garden.NewService(repos.Garden, events.Publisher, garden.Config{
		Cooldown:        cooldownConfig(cfg),
		MaxRewardAmount: cfg.MaxRewardAmount,
	}, garden.WithGrowthCache(growth.NewCache(growth.DefaultCacheSize, growthCacheTTL)))

	background := bootstrap.StartBackground(ctx, cfg, gardenSvc)

	srv := server.NewServer(server.Config{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		TrustedProxies: cfg.TrustedProxies,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}, repos.HealthPool(), gardenSvc, hub)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:             srv,
		GardenService:      gardenSvc,
		Scheduler:          background.Scheduler,
		MaintenanceWorker:  background.Worker,
		WorkerPool:         background.Pool,
		ResilientPublisher: events.Publisher,
		Repositories:       repos,
	})

	return err
}

func cooldownConfig(cfg *config.Config) cooldown.Config {
	maxDaily := make(map[string]int, len(domain.RewardTypes))
	for _, rewardType := range domain.RewardTypes {
		maxDaily[rewardType] = cfg.AdMaxDaily
	}
	return cooldown.Config{DevMode: cfg.DevMode, MaxDaily: maxDaily}
}
