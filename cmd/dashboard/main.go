package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/hydair/aqi-dashboard/internal/adapter/http"
	"github.com/hydair/aqi-dashboard/internal/config"
	"github.com/hydair/aqi-dashboard/internal/observability"
	"github.com/hydair/aqi-dashboard/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	loader := pipeline.NewLoader(cfg.DataDir, cfg.FilePattern, cfg.Years(), logger, metrics)
	store := pipeline.NewStore(loader, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warm the store before serving. A dashboard without its dataset has
	// nothing to offer, so a failed load ends the process.
	ds, err := store.Dataset(ctx)
	if err != nil {
		logger.Error("dataset load failed", "error", err)
		stop()
		os.Exit(1)
	}
	logger.Info("dataset ready",
		"observations", len(ds.Observations),
		"years", len(ds.Years),
		"locations", len(ds.Locations),
	)

	srv := httpadapter.NewServer(cfg.HTTPAddr, store, metrics, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
