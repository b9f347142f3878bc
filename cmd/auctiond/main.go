package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/mock-auction/internal/auction"
	"github.com/rickgao/mock-auction/internal/auth"
	"github.com/rickgao/mock-auction/internal/config"
	"github.com/rickgao/mock-auction/internal/metrics"
	"github.com/rickgao/mock-auction/internal/notify"
	"github.com/rickgao/mock-auction/internal/server"
	"github.com/rickgao/mock-auction/internal/store"
	"github.com/rickgao/mock-auction/internal/version"
	"github.com/rickgao/mock-auction/internal/writer"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults and env only when empty)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	// Set up structured logging
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q\n", *logLevel)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting auctiond",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"storage", cfg.Storage.Driver,
		"modify_budget_check", cfg.Auction.ModifyBudgetCheck,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("auctiond failed", "error", err)
		os.Exit(1)
	}

	logger.Info("auctiond stopped")
}

func loadConfig(path string) (*config.ServerConfig, error) {
	if path != "" {
		return config.LoadAndValidate(path)
	}

	cfg := config.Default()
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.ServerConfig, logger *slog.Logger) error {
	gate, err := auth.NewGate(cfg.Admin.Secret, cfg.Admin.SecretHash)
	if err != nil {
		return fmt.Errorf("admin secret: %w", err)
	}
	if !gate.Enabled() {
		logger.Warn("no admin secret configured, mutations are disabled")
	}

	st, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("close store", "error", err)
		}
	}()

	snap, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	m := metrics.New()

	w := writer.NewSnapshotWriter(writer.WriterConfig{
		RetryInterval: cfg.Persistence.RetryInterval,
		SaveTimeout:   writer.DefaultWriterConfig().SaveTimeout,
	}, st, m, logger)
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start writer: %w", err)
	}

	hub := notify.NewHub(notify.HubConfig{
		ClientBuffer: cfg.Notifications.ClientBuffer,
		PingInterval: cfg.Notifications.PingInterval,
		WriteTimeout: cfg.Notifications.WriteTimeout,
		DisplayFor:   cfg.Notifications.DisplayFor,
	}, m, logger)

	engine := auction.NewEngine(
		auction.WithPersister(w),
		auction.WithNotifier(notify.Tee(hub, notify.NewLogSink(logger))),
		auction.WithObserver(m),
		auction.WithLogger(logger),
		auction.WithModifyBudgetCheck(auction.ModifyBudgetCheck(cfg.Auction.ModifyBudgetCheck)),
	)

	if store.NeedsSeed(snap) {
		seed(engine, cfg.Auction.SeedTeams, logger)
	} else if err := engine.Restore(snap); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	srv := server.New(server.Options{
		InstanceID: cfg.Instance.ID,
		Engine:     engine,
		Gate:       gate,
		Store:      st,
		Writer:     w,
		Hub:        hub,
		Middleware: m.Middleware,
		Logger:     logger,
	})

	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle(cfg.Metrics.Path, m.Handler())
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting api server", "port", cfg.HTTP.Port)
		return listen(apiServer)
	})
	g.Go(func() error {
		logger.Info("starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
		return listen(metricsServer)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		// Stop intake first so the final flush sees every commit.
		var errs []error
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("api server: %w", err))
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server: %w", err))
		}
		if err := hub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("notification hub: %w", err))
		}
		if err := w.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("final flush: %w", err))
		}
		return errors.Join(errs...)
	})

	logger.Info("auctiond running",
		"instance_id", cfg.Instance.ID,
		"api_url", fmt.Sprintf("http://localhost:%d/api", cfg.HTTP.Port),
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.HTTP.Port),
	)

	return g.Wait()
}

// listen runs srv until Shutdown. A closed server is not an error.
func listen(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}
	return nil
}

// seed registers the configured teams on a store that has never been saved. Each team goes
// through the engine so the writer persists it.
func seed(engine *auction.Engine, teams []config.SeedTeam, logger *slog.Logger) {
	if len(teams) == 0 {
		logger.Info("store is empty, no seed teams configured")
		return
	}

	for _, t := range teams {
		if _, err := engine.AddTeam(t.Name, t.Budget); err != nil {
			logger.Warn("seed team skipped", "team", t.Name, "error", err)
		}
	}
	logger.Info("seeded teams", "count", len(engine.Teams()))
}
