package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/idlegarden/internal/event"
	"github.com/osse101/idlegarden/internal/garden"
	"github.com/osse101/idlegarden/internal/scheduler"
	"github.com/osse101/idlegarden/internal/server"
	"github.com/osse101/idlegarden/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server             *server.Server
	GardenService      garden.Service
	Scheduler          *scheduler.Scheduler
	MaintenanceWorker  *worker.MaintenanceWorker
	WorkerPool         *worker.Pool
	ResilientPublisher *event.ResilientPublisher
	Repositories       *Repositories
}

// GracefulShutdown stops components in dependency order:
// 1. HTTP server (stop accepting new requests, close SSE streams)
// 2. background maintenance
// 3. garden service (wait for in-flight event publishing)
// 4. event publisher (flush retries to the bus or dead-letter file)
// 5. database pool
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if components.Scheduler != nil {
		components.Scheduler.Stop()
	}
	if components.MaintenanceWorker != nil {
		if err := components.MaintenanceWorker.Shutdown(ctx); err != nil {
			slog.Error(LogMsgMaintenanceShutdownFailed, "error", err)
		}
	}
	if components.WorkerPool != nil {
		components.WorkerPool.Stop()
	}

	if components.GardenService != nil {
		shutdownService(ctx, ServiceNameGarden, components.GardenService)
	}

	if components.ResilientPublisher != nil {
		slog.Info(LogMsgShuttingDownEventPublisher)
		if err := components.ResilientPublisher.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResilientPublisherFailed, "error", err)
		}
	}

	if components.Repositories != nil {
		components.Repositories.Close()
	}

	slog.Info(LogMsgServerStopped)
}

type shutdownableService interface {
	Shutdown(context.Context) error
}

func shutdownService(ctx context.Context, name string, service shutdownableService) {
	if err := service.Shutdown(ctx); err != nil {
		slog.Error(name+LogMsgServiceShutdownFailed, "error", err)
	}
}
