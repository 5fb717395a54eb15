package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/hivdash/internal/config"
	"github.com/JonMunkholm/hivdash/internal/core"
	"github.com/JonMunkholm/hivdash/internal/logging"
	"github.com/JonMunkholm/hivdash/internal/metrics"
	"github.com/JonMunkholm/hivdash/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"data_root", cfg.Data.Root,
		"age_groups", cfg.Data.AgeGroups,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"metrics_enabled", cfg.Metrics.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	catalog, err := cfg.Catalog()
	if err != nil {
		slog.Error("invalid age groups", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	loader := core.NewLoader(cfg.Data.Root, logger, core.WithObserver(m))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	probeDatasets(ctx, loader, catalog)

	server := web.NewServer(cfg, loader, catalog, web.WithMetrics(m), web.WithLogger(logger))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// probeDatasets loads every served age group once so a broken folder shows
// up in the startup log. Broken datasets are not fatal; requests report them
// again. Any other error, such as a cancelled context, ends the probe.
func probeDatasets(ctx context.Context, loader *core.Loader, catalog *core.Catalog) {
	slog.Info("probing datasets", "count", catalog.Len(), "age_groups", catalog.Keys())
	for _, g := range catalog.All() {
		t, err := loader.Load(ctx, g.Key)
		if err != nil && !core.IsFatalLoad(err) {
			slog.Warn("dataset probe stopped", "age_group", g.Key, "error", err)
			return
		}
		if err != nil {
			slog.Warn("dataset unavailable",
				"age_group", g.Key,
				"error", err,
				"code", core.MapError(err).Code,
			)
			continue
		}
		slog.Info("dataset available", "age_group", g.Key, "label", g.Label, "rows", t.Len())
	}
}
