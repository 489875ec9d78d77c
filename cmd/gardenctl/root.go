package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/osse101/idlegarden/internal/authority"
	"github.com/osse101/idlegarden/internal/client"
	"github.com/osse101/idlegarden/internal/config"
	"github.com/osse101/idlegarden/internal/engine"
	"github.com/osse101/idlegarden/internal/growth"
	"github.com/osse101/idlegarden/internal/logger"
)

type rootOptions struct {
	userID string
	apiURL string
	apiKey string
	json   bool
}

// app is everything one command needs: the loaded engine and where to print.
type app struct {
	cfg    *config.ClientConfig
	engine *engine.Engine
	out    io.Writer
	json   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "gardenctl",
		Short:        "Tend an idle garden from the terminal",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.userID, FlagUser, "", "player id (overrides GARDEN_USER_ID)")
	flags.StringVar(&opts.apiURL, FlagAPIURL, "", "garden server url (overrides GARDEN_API_URL)")
	flags.StringVar(&opts.apiKey, FlagAPIKey, "", "garden api key (overrides GARDEN_API_KEY)")
	flags.BoolVar(&opts.json, FlagJSON, false, "print results as json")

	root.AddCommand(
		newStateCmd(opts),
		newCatalogCmd(opts),
		newPlantCmd(opts),
		newHarvestCmd(opts),
		newAdRewardCmd(opts),
		newCooldownCmd(opts),
		newWatchCmd(opts),
	)
	return root
}

// loadConfig applies flag overrides on top of the environment
func loadConfig(opts *rootOptions) (*config.ClientConfig, error) {
	overrides := map[string]string{
		config.EnvGardenUserID: opts.userID,
		config.EnvGardenAPIURL: opts.apiURL,
		config.EnvGardenAPIKey: opts.apiKey,
	}
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return nil, err
		}
	}
	return config.LoadClient()
}

// adOptions controls the simulated ad for reward commands
type adOptions struct {
	abandon bool
	instant bool
}

func (o *adOptions) oracle(cfg *config.ClientConfig, out io.Writer) authority.AdOracle {
	if o == nil {
		return newSimulatedAd(0, true, out)
	}
	duration := cfg.AdDuration
	if o.instant {
		duration = 0
	}
	return newSimulatedAd(duration, o.abandon, out)
}

// newApp loads configuration, builds the engine and pulls the authoritative
// snapshot. A nil ad refuses every rewarded placement.
func newApp(cmd *cobra.Command, opts *rootOptions, ad *adOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger.InitLoggerWithWriter(logger.NewConfig(cfg.LogLevel, cfg.LogFormat, ServiceName, Version, logger.EnvironmentDev, false), os.Stderr)

	cl := client.New(client.Config{
		BaseURL: cfg.APIURL,
		APIKey:  cfg.APIKey,
		UserID:  cfg.UserID,
		Timeout: cfg.RequestTimeout,
	})

	eng := engine.New(engine.Config{
		UserID:   cfg.UserID,
		DeltaTTL: cfg.OptimisticTTL,
	}, cl, ad.oracle(cfg, os.Stderr), engine.WithGrowthCache(growth.NewCache(cfg.GrowthCacheSize, cfg.GrowthCacheTTL)))

	loadCtx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()
	if err := eng.Load(loadCtx); err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		engine: eng,
		out:    cmd.OutOrStdout(),
		json:   opts.json,
	}, nil
}

// timeout bounds a single command round trip
func (a *app) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	d := a.cfg.RequestTimeout
	if d < DefaultCommandTimeout {
		d = DefaultCommandTimeout
	}
	return context.WithTimeout(ctx, d+a.cfg.AdDuration)
}

// emit writes v as json when --json is set. It reports whether it did.
func (a *app) emit(v interface{}) (bool, error) {
	if !a.json {
		return false, nil
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}

