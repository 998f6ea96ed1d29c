package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/bigbadman-lab/onesol/internal/catalog"
	"github.com/bigbadman-lab/onesol/internal/game"
	"github.com/bigbadman-lab/onesol/internal/game/gameobs"
	"github.com/bigbadman-lab/onesol/internal/interfaces"
	"github.com/bigbadman-lab/onesol/internal/keystore"
	"github.com/bigbadman-lab/onesol/internal/leaderboard"
	"github.com/bigbadman-lab/onesol/internal/logger"
	"github.com/bigbadman-lab/onesol/internal/store"
	"github.com/bigbadman-lab/onesol/internal/trace"
	"github.com/bigbadman-lab/onesol/internal/tradelog"
)

// initializeSystem initializes env, logger and tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig reads config.yaml, falling back to defaults when it is absent.
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info(ctx, "No config.yaml found, using defaults")
			return store.Default(), nil
		}
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old journal files if retention is configured.
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("ONESOL_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeCatalog picks the trade source: the remote API when a base URL
// is configured, otherwise the embedded 2025 set.
func initializeCatalog(ctx context.Context, cfg *store.Config) (interfaces.Catalog, interfaces.Probe) {
	if cfg.API.BaseURL != "" {
		logger.Info(ctx, "Using remote trade catalog", "base_url", cfg.API.BaseURL)
		cat := catalog.NewClient(catalog.Params{
			BaseURL:       cfg.API.BaseURL,
			Timeout:       time.Duration(cfg.API.TimeoutSeconds) * time.Second,
			RetryAttempts: cfg.API.RetryAttempts,
			RetryBase:     time.Duration(cfg.API.RetryBaseMS) * time.Millisecond,
		})
		return cat, catalog.NewHealthProbe(cfg.API.BaseURL)
	}

	logger.Info(ctx, "Using embedded trade catalog")
	return catalog.NewStatic(), catalog.AlwaysOnline{}
}

// initializeSession builds the session with observability. A zero pnl_cap
// derives the cap from the embedded catalog's best positive return.
func initializeSession(cfg *store.Config, cat interfaces.Catalog, probe interfaces.Probe, seen *keystore.DaySet) interfaces.Session {
	pnlCap := cfg.Game.PNLCap
	if pnlCap == 0 {
		if s, ok := cat.(*catalog.Static); ok {
			pnlCap = s.PNLCap()
		} else {
			pnlCap = game.DefaultPNLCap
		}
	}

	s := game.NewSession(game.Config{
		StartingBalance: cfg.Game.StartingBalance,
		PNLCap:          pnlCap,
	}, cat, probe, seen)

	return gameobs.Wrap(s)
}

// initializeLeaderboard returns nil when no remote API is configured; runs
// then stay local-only.
func initializeLeaderboard(cfg *store.Config) *leaderboard.Client {
	if cfg.API.BaseURL == "" {
		return nil
	}
	return leaderboard.NewClient(leaderboard.Params{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		RetryAttempts: cfg.API.RetryAttempts,
		RetryBase:     time.Duration(cfg.API.RetryBaseMS) * time.Millisecond,
	})
}
