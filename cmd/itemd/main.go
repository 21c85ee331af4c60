// Command itemd is the reference item backend: the JSON API the inventory
// UI talks to, backed by PostgreSQL or an in-memory store.
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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/InventoryUI/internal/config"
	"github.com/JonMunkholm/InventoryUI/internal/itemapi"
	"github.com/JonMunkholm/InventoryUI/internal/logging"
	"github.com/JonMunkholm/InventoryUI/internal/metrics"
	"github.com/JonMunkholm/InventoryUI/internal/store"
	"github.com/JonMunkholm/InventoryUI/internal/web/middleware"
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
	logging.Setup("itemd", cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, &cfg.Store)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := st.Ping(pingCtx); err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Mount("/", itemapi.New(st).Routes())

	srv := &http.Server{
		Addr:         cfg.Store.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("itemd listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("itemd stopped", "error", err)
		os.Exit(1)
	}
}

// openStore picks PostgreSQL when a database URL is configured and the
// in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.StoreConfig) (store.Store, error) {
	if !cfg.UsePostgres() {
		slog.Warn("DATABASE_URL not set, items are kept in memory")
		return store.NewMemory(), nil
	}

	if cfg.Migrate {
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
	}

	pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL, store.PoolConfig{
		MaxConns:        cfg.MaxConns,
		MinConns:        cfg.MinConns,
		MaxConnLifetime: cfg.MaxConnLifetime,
		MaxConnIdleTime: cfg.MaxConnIdleTime,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("connected to database")
	return pg, nil
}
