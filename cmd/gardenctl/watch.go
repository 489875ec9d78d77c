package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/osse101/idlegarden/internal/client"
	"github.com/osse101/idlegarden/internal/clock"
	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/event"
	"github.com/osse101/idlegarden/internal/logger"
)

// streamEventTypes are the authority events the watch loop follows
var streamEventTypes = []string{
	domain.EventTypeEconomyUpdated,
	domain.EventTypeHarvestCompleted,
	domain.EventTypePlotPlanted,
}

// watcher ties the growth clock and the authority stream to one engine.
// Callbacks only signal channels; the run loop does the remote work.
type watcher struct {
	app         *app
	autoHarvest bool
	ready       chan int
	reload      chan struct{}
}

func newWatcher(a *app, autoHarvest bool) *watcher {
	return &watcher{
		app:         a,
		autoHarvest: autoHarvest,
		ready:       make(chan int, ReadyQueueSize),
		reload:      make(chan struct{}, 1),
	}
}

// onPlotReady is subscribed to the engine's local bus
func (w *watcher) onPlotReady(ctx context.Context, evt event.Event) error {
	payload, err := event.DecodePayload[domain.PlotReadyPayloadV1](evt.Payload)
	if err != nil {
		return err
	}
	select {
	case w.ready <- payload.PlotID:
	default:
		logger.FromContext(ctx).Warn(LogMsgReadyQueueFull, "plot_id", payload.PlotID)
	}
	return nil
}

// onRemoteChange requests a full reload after a plot changed on another client
func (w *watcher) onRemoteChange(ctx context.Context, evt client.StreamEvent) error {
	select {
	case w.reload <- struct{}{}:
	default:
	}
	return nil
}

func (w *watcher) run(ctx context.Context) error {
	cfg := w.app.cfg
	eng := w.app.engine

	eng.Bus().Subscribe(event.PlotReady, w.onPlotReady)

	gc := clock.New(clock.Config{
		IdleInterval: cfg.ClockIdleInterval,
		MinInterval:  cfg.ClockMinInterval,
	}, nil, eng.NextCompletion)
	gc.OnTick(func(now time.Time) { eng.Tick(now) })

	stream := client.NewStream(client.Config{
		BaseURL: cfg.APIURL,
		APIKey:  cfg.APIKey,
		UserID:  cfg.UserID,
	}, streamEventTypes)
	stream.OnEconomyUpdated(func(ctx context.Context, payload domain.EconomyUpdatedPayloadV1) error {
		eng.Observe(ctx, payload)
		gc.Poke()
		return nil
	})
	stream.OnEvent(domain.EventTypeHarvestCompleted, w.onRemoteChange)
	stream.OnEvent(domain.EventTypePlotPlanted, w.onRemoteChange)
	stream.Start(ctx)
	defer stream.Stop()

	clockErr := make(chan error, 1)
	go func() { clockErr <- gc.Run(ctx) }()

	printInfo(fmt.Sprintf(MsgWatching, cfg.UserID))
	if v, err := w.app.view(time.Now()); err == nil {
		renderGarden(w.app.out, v)
	}

	streamWarned := false
	health := time.NewTicker(cfg.ClockIdleInterval)
	defer health.Stop()

	for {
		select {
		case <-ctx.Done():
			<-clockErr
			return nil
		case err := <-clockErr:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case plotID := <-w.ready:
			printSuccess(fmt.Sprintf(MsgPlotReady, plotID))
			if w.autoHarvest {
				w.harvest(ctx, plotID)
				gc.Poke()
			}
		case <-w.reload:
			if err := eng.Load(ctx); err != nil {
				printWarn(describeError(err))
				continue
			}
			gc.Poke()
		case <-health.C:
			if !stream.IsConnected() && !streamWarned {
				printWarn(MsgStreamDown)
			}
			streamWarned = !stream.IsConnected()
		}
	}
}

func (w *watcher) harvest(ctx context.Context, plotID int) {
	callCtx, cancel := w.app.timeout(ctx)
	defer cancel()

	before := w.app.engine.Snapshot().Economy
	res, err := w.app.engine.Harvest(callCtx, plotID)
	if err != nil {
		printWarn(fmt.Sprintf(MsgAutoHarvestErr, plotID, describeError(err)))
		return
	}
	printSuccess(fmt.Sprintf(MsgHarvested, plotID,
		res.FinalCoins-before.Coins, res.FinalExperience-before.Experience, res.GemsAwarded))
	printInfo(balanceLine(w.app.engine.Display()))
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var autoHarvest bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the garden live until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			a, err := newApp(cmd, opts, nil)
			if err != nil {
				return err
			}
			return newWatcher(a, autoHarvest).run(ctx)
		},
	}
	cmd.Flags().BoolVar(&autoHarvest, FlagAutoHarvest, false, "harvest plots as soon as they are ready")
	return cmd
}
