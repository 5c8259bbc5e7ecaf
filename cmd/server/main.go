// Package main is the entry point for the marketbill API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"marketbill/internal/app"
	"marketbill/internal/domain/billing"
	v1 "marketbill/internal/infrastructure/http/v1"
	"marketbill/internal/infrastructure/config"
	"marketbill/internal/infrastructure/metrics"
	"marketbill/internal/infrastructure/storage/memory"
	"marketbill/internal/infrastructure/storage/postgres"
	"marketbill/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting marketbill server", "driver", cfg.Database.Driver)

	// --- Storage ---
	var (
		storage app.Storage
		pool    *postgres.Pool
	)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err = openPostgres(ctx, cfg.Database)
		if err != nil {
			log.Fatalw("failed to open database", "error", err)
		}
		defer pool.Close()

		storage, err = app.PostgresStorage(postgres.NewTxManager(pool))
		if err != nil {
			log.Fatalw("failed to initialize storage", "error", err)
		}
	default:
		storage = app.MemoryStorage(memory.NewStore())
		log.Warn("using in-memory storage, data is lost on restart")
	}

	// --- Metrics ---
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		if pool != nil {
			m.RegisterGauge("db_pool_total_conns", "Open database connections.", func() float64 {
				return float64(pool.Stats().TotalConns)
			})
		}
	}

	services := app.NewServices(storage, cfg.Billing.Policies(), runObserver(m))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:      log,
		Services:    services,
		Metrics:     m,
		MetricsPath: cfg.Metrics.Path,
		Pool:        pool,
		Driver:      cfg.Database.Driver,
		CORSOrigins: cfg.Server.CORSOrigins,
		Currency:    cfg.Billing.Currency,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*postgres.Pool, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.DSN)
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if cfg.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return pool, nil
}

// runObserver keeps a disabled registry out of the billing service.
func runObserver(m *metrics.Metrics) billing.RunObserver {
	if m == nil {
		return nil
	}
	return m
}
