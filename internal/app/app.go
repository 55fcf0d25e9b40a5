package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/marcelsud/clinic-webhooks/config"
	"github.com/marcelsud/clinic-webhooks/metrics"
	"github.com/marcelsud/clinic-webhooks/webhook"
	"github.com/marcelsud/clinic-webhooks/webhook/memory"
	"github.com/marcelsud/clinic-webhooks/webhook/postgres"
	wredis "github.com/marcelsud/clinic-webhooks/webhook/redis"
	"github.com/rs/zerolog"
)

/* App wires the delivery subsystem from configuration
 * Imports only go down: app -> webhook -> storage
 */

// Store is what the process needs from a delivery store
type Store interface {
	webhook.Repository
	metrics.DeliveryCounter
}

// Queue bundles the job queue with what the metrics need from it
type Queue struct {
	webhook.Queue
	Length     metrics.QueueLength
	Heartbeats *wredis.Heartbeats
	close      func(ctx context.Context) error
}

// Close releases the queue connection, if any
func (q Queue) Close(ctx context.Context) error {
	if q.close == nil {
		return nil
	}
	return q.close(ctx)
}

// OpenStore opens the configured store; postgres tables are created when missing
func OpenStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		repo, err := postgres.NewRepositoryWithPoolConfig(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMinutes)
		if err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			_ = repo.Close(ctx)
			return nil, err
		}
		return repo, nil
	case config.StoreMemory:
		return memory.NewRepository(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// OpenQueue opens the configured queue
func OpenQueue(cfg *config.Config, logger zerolog.Logger) (Queue, error) {
	switch cfg.Queue {
	case config.QueueRedis:
		q, err := wredis.NewQueue(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisStream, cfg.RedisGroup, WorkerID(cfg))
		if err != nil {
			return Queue{}, err
		}
		q.WithLogger(logger.With().Str("component", "queue").Logger())
		return Queue{
			Queue:      q,
			Length:     q.Len,
			Heartbeats: wredis.NewHeartbeats(q.Client()),
			close:      q.Close,
		}, nil
	case config.QueueMemory:
		q := webhook.NewMemoryQueue(cfg.QueueSize)
		return Queue{
			Queue:  q,
			Length: metrics.MemoryQueueLength(q),
		}, nil
	default:
		return Queue{}, fmt.Errorf("unknown queue %q", cfg.Queue)
	}
}

// WorkerID names this instance in the consumer group and in heartbeats
func WorkerID(cfg *config.Config) string {
	if cfg.WorkerID != "" {
		return cfg.WorkerID
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker"
}

// App holds every long lived component of one process
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	Store     Store
	Queue     Queue
	Exporter  *metrics.OTelExporter
	Registry  *webhook.Registry
	Publisher *webhook.Publisher
	Worker    *webhook.Worker
	Scheduler *webhook.Scheduler
	Pool      *webhook.Pool
	Audit     *webhook.DeliveryService
}

// New opens the store and the queue and builds the components on top of them
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	queue, err := OpenQueue(cfg, logger)
	if err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("opening queue: %w", err)
	}
	return Build(cfg, logger, store, queue)
}

// Build assembles the components over an already opened store and queue
func Build(cfg *config.Config, logger zerolog.Logger, store Store, queue Queue) (*App, error) {
	collectorOpts := []metrics.CollectorOption{metrics.WithQueueLength(queue.Length)}
	if queue.Heartbeats != nil {
		collectorOpts = append(collectorOpts, metrics.WithHeartbeats(queue.Heartbeats))
	}
	exporter, err := metrics.NewOTelExporter(metrics.NewStoreCollector(store, collectorOpts...))
	if err != nil {
		return nil, fmt.Errorf("creating metrics exporter: %w", err)
	}

	backoff := webhook.ExponentialBackoff{Max: cfg.MaxBackoff()}

	registry := webhook.NewRegistry(store)
	publisher := webhook.NewPublisher(registry, store, queue,
		webhook.WithPublisherLogger(logger.With().Str("component", "publisher").Logger()),
		webhook.WithPublisherRecorder(exporter),
	)
	worker := webhook.NewWorker(store, store, webhook.NewHTTPSender(cfg.DeliveryTimeout()),
		webhook.WithBackoff(backoff),
		webhook.WithRecorder(exporter),
		webhook.WithMaxConcurrentSends(cfg.MaxConcurrentSends),
		webhook.WithWorkerLogger(logger.With().Str("component", "worker").Logger()),
	)
	scheduler := webhook.NewScheduler(store, queue, worker,
		webhook.WithSchedulerBackoff(backoff),
		webhook.WithSweepInterval(cfg.SweepInterval()),
		webhook.WithSweepBatch(cfg.SweepBatchSize),
		webhook.WithStalePending(cfg.StalePending()),
		webhook.WithSchedulerLogger(logger.With().Str("component", "scheduler").Logger()),
	)

	poolOpts := []webhook.PoolOption{
		webhook.WithPoolSize(cfg.WorkerConcurrency),
		webhook.WithPoolLogger(logger.With().Str("component", "pool").Logger()),
	}
	if queue.Heartbeats != nil {
		poolOpts = append(poolOpts, webhook.WithHeartbeat(queue.Heartbeats, WorkerID(cfg)))
	}
	pool := webhook.NewPool(queue, worker, scheduler, poolOpts...)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Queue:     queue,
		Exporter:  exporter,
		Registry:  registry,
		Publisher: publisher,
		Worker:    worker,
		Scheduler: scheduler,
		Pool:      pool,
		Audit:     webhook.NewDeliveryService(store, scheduler),
	}, nil
}

// MetricsHandler serves the Prometheus scrape endpoint
func (a *App) MetricsHandler() http.Handler {
	return a.Exporter.ServeHTTP()
}

// Start launches the pool consumers and the retry sweep
func (a *App) Start(ctx context.Context) {
	a.Pool.Start(ctx)
	a.Scheduler.Start(ctx)
}

// Shutdown stops background work, waits for in-flight attempts and closes connections
func (a *App) Shutdown(ctx context.Context) error {
	a.Pool.Stop()
	a.Scheduler.Stop()

	return errors.Join(
		a.Exporter.Shutdown(ctx),
		a.Queue.Close(ctx),
		a.Store.Close(ctx),
	)
}
