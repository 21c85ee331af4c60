package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/InventoryUI/internal/backend"
	"github.com/JonMunkholm/InventoryUI/internal/config"
	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/importer"
	"github.com/JonMunkholm/InventoryUI/internal/logging"
	"github.com/JonMunkholm/InventoryUI/internal/notify"
	"github.com/JonMunkholm/InventoryUI/internal/web"
)

func main() {
	if err := config.LoadEnvFiles(".env", ".env.local"); err != nil {
		slog.Warn("env files not loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup("inventory-ui", cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"backend", cfg.Backend.URL,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"proxy_enabled", cfg.Backend.ProxyEnabled,
	)

	client, err := backend.New(cfg.Backend.URL, backend.WithTimeout(cfg.Backend.Timeout))
	if err != nil {
		slog.Error("invalid backend URL", "error", err)
		os.Exit(1)
	}

	pipeline := importer.New(client, importer.WithMaxFileSize(cfg.Import.MaxFileSize))
	service := core.NewService(client, pipeline, core.ServiceConfig{
		ImportTimeout:        cfg.Import.Timeout,
		MaxConcurrentImports: cfg.Import.MaxConcurrent,
		MaxImportWait:        cfg.Import.MaxWaitTime,
	})

	notes := notify.NewQueue(cfg.Notify.TTL, cfg.Notify.MaxPerSession)
	sweeper, err := notify.NewSweeper(notes, cfg.Notify.SweepSchedule)
	if err != nil {
		slog.Error("invalid notification sweep schedule", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(service, notes, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error {
		if err := server.Start(cfg.Server.Addr()); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		limiter := service.ImportLimiter()
		if n := limiter.ActiveCount(); n > 0 {
			slog.Info("waiting for imports to complete", "active", n)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
