// Package main is the entry point for the marketbill background worker.
// It relays outbox events to Kafka (or the log) and purges delivered ones.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"marketbill/internal/infrastructure/config"
	"marketbill/internal/infrastructure/messaging"
	"marketbill/internal/infrastructure/metrics"
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

	if cfg.Database.Driver != config.DriverPostgres {
		log.Fatalw("worker requires the postgres driver", "driver", cfg.Database.Driver)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting marketbill worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	m := metrics.New()

	var handler postgres.OutboxHandler = messaging.LogHandler{}
	if cfg.Kafka.Enabled {
		producer, err := messaging.NewSyncProducer(cfg.Kafka)
		if err != nil {
			log.Fatalw("failed to create kafka producer", "error", err)
		}
		defer func() {
			if err := producer.Close(); err != nil {
				log.Warnw("failed to close kafka producer", "error", err)
			}
		}()
		handler = messaging.NewKafkaHandler(producer, cfg.Kafka.Topic, m)
		log.Infow("relaying outbox to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	relay := postgres.NewOutboxRelay(postgres.NewTxManager(pool), cfg.Worker.BatchSize, handler)
	worker := NewRelayWorker(relay, cfg.Worker, log)

	m.RegisterGauge("outbox_pending", "Outbox messages waiting for delivery.", func() float64 {
		n, err := relay.Pending(context.Background())
		if err != nil {
			return -1
		}
		return float64(n)
	})
	metricsServer := startMetricsServer(cfg.Worker.MetricsAddr, cfg.Metrics.Path, m, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()
	wg.Wait()

	if metricsServer != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	log.Info("worker stopped")
}

// Relay is the part of the outbox relay the worker drives.
type Relay interface {
	ProcessBatch(ctx context.Context) (int, error)
	PurgePublished(ctx context.Context, retention time.Duration) (int64, error)
}

// RelayWorker polls the outbox and periodically purges delivered messages.
type RelayWorker struct {
	relay Relay
	cfg   config.WorkerConfig
	log   *logger.Logger
}

// NewRelayWorker creates a worker over relay.
func NewRelayWorker(relay Relay, cfg config.WorkerConfig, log *logger.Logger) *RelayWorker {
	return &RelayWorker{relay: relay, cfg: cfg, log: log.WithComponent("outbox-relay")}
}

// Run loops until ctx is cancelled.
func (w *RelayWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	purgeInterval := w.cfg.PurgeInterval
	if purgeInterval <= 0 {
		purgeInterval = time.Hour
	}
	purgeTicker := time.NewTicker(purgeInterval)
	defer purgeTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		case <-purgeTicker.C:
			w.purge(ctx)
		}
	}
}

// drain processes full batches back to back so a backlog does not wait for the next tick.
func (w *RelayWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := w.relay.ProcessBatch(ctx)
		if err != nil {
			w.log.Errorw("outbox batch failed", "error", err)
			return
		}
		if n > 0 {
			w.log.Debugw("outbox batch relayed", "count", n)
		}
		if n < w.cfg.BatchSize {
			return
		}
	}
}

func (w *RelayWorker) purge(ctx context.Context) {
	if w.cfg.PurgeRetention <= 0 {
		return
	}
	n, err := w.relay.PurgePublished(ctx, w.cfg.PurgeRetention)
	if err != nil {
		w.log.Errorw("outbox purge failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("purged published outbox messages", "count", n)
	}
}

func startMetricsServer(addr, path string, m *metrics.Metrics, log *logger.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics server failed", "error", err)
		}
	}()
	return server
}
