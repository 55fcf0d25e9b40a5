package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/clinic-webhooks/webhook"
	wredis "github.com/marcelsud/clinic-webhooks/webhook/redis"
)

// DeliveryCounter is the read side of the store the collector needs
type DeliveryCounter interface {
	CountByStatus(ctx context.Context) (map[webhook.Status]int64, error)
	CountDeliveredSince(ctx context.Context, since time.Time) (int64, error)
}

// QueueLength reports the number of queued jobs
type QueueLength func(ctx context.Context) (int64, error)

// HeartbeatReader lists the consumers with a live heartbeat
type HeartbeatReader interface {
	GetActiveWorkers(ctx context.Context) ([]wredis.WorkerHeartbeat, error)
}

// StoreCollector implements the Collector interface over the delivery store, the queue
// and the worker heartbeats
type StoreCollector struct {
	deliveries  DeliveryCounter
	queueLength QueueLength
	heartbeats  HeartbeatReader
	now         func() time.Time
}

// CollectorOption configures a StoreCollector
type CollectorOption func(*StoreCollector)

// WithQueueLength sets the queue length source
func WithQueueLength(fn QueueLength) CollectorOption {
	return func(c *StoreCollector) { c.queueLength = fn }
}

// WithHeartbeats sets the heartbeat source; without one no workers are reported
func WithHeartbeats(h HeartbeatReader) CollectorOption {
	return func(c *StoreCollector) { c.heartbeats = h }
}

// WithCollectorClock overrides time.Now, for tests
func WithCollectorClock(now func() time.Time) CollectorOption {
	return func(c *StoreCollector) { c.now = now }
}

// NewStoreCollector creates a new metrics collector
func NewStoreCollector(deliveries DeliveryCounter, opts ...CollectorOption) *StoreCollector {
	c := &StoreCollector{
		deliveries: deliveries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MemoryQueueLength adapts the in-process queue to QueueLength
func MemoryQueueLength(q *webhook.MemoryQueue) QueueLength {
	return func(context.Context) (int64, error) {
		return int64(q.Len()), nil
	}
}

// Collect gathers all metrics
func (c *StoreCollector) Collect(ctx context.Context) (Metrics, error) {
	queueLength, err := c.GetQueueLength(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting queue length: %w", err)
	}

	statusCounts, err := c.GetStatusCounts(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting status counts: %w", err)
	}

	throughput, err := c.GetThroughput(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting throughput: %w", err)
	}

	workers, err := c.GetActiveWorkers(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting active workers: %w", err)
	}

	return Metrics{
		QueueLength:  queueLength,
		StatusCounts: statusCounts,
		Throughput:   throughput,
		Workers:      workers,
		Timestamp:    c.now(),
	}, nil
}

// GetQueueLength returns the number of queued delivery jobs, zero without a source
func (c *StoreCollector) GetQueueLength(ctx context.Context) (int64, error) {
	if c.queueLength == nil {
		return 0, nil
	}
	return c.queueLength(ctx)
}

// GetStatusCounts returns counts of deliveries grouped by status, every status present
func (c *StoreCollector) GetStatusCounts(ctx context.Context) (map[string]int64, error) {
	counts, err := c.deliveries.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting deliveries: %w", err)
	}

	statusCounts := make(map[string]int64, len(webhook.Statuses()))
	for _, s := range webhook.Statuses() {
		statusCounts[s.String()] = counts[s]
	}
	return statusCounts, nil
}

// GetThroughput counts deliveries that succeeded over different time windows
func (c *StoreCollector) GetThroughput(ctx context.Context) (ThroughputMetrics, error) {
	now := c.now()

	windows := []time.Duration{time.Minute, 5 * time.Minute, 15 * time.Minute}
	counts := make([]int64, len(windows))
	for i, window := range windows {
		n, err := c.deliveries.CountDeliveredSince(ctx, now.Add(-window))
		if err != nil {
			return ThroughputMetrics{}, fmt.Errorf("counting delivered in %s: %w", window, err)
		}
		counts[i] = n
	}

	return ThroughputMetrics{
		LastMinute:         counts[0],
		LastFiveMinutes:    counts[1],
		LastFifteenMinutes: counts[2],
	}, nil
}

// GetActiveWorkers returns information about active workers
func (c *StoreCollector) GetActiveWorkers(ctx context.Context) ([]WorkerInfo, error) {
	workers := []WorkerInfo{}
	if c.heartbeats == nil {
		return workers, nil
	}

	heartbeats, err := c.heartbeats.GetActiveWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading heartbeats: %w", err)
	}
	for _, hb := range heartbeats {
		workers = append(workers, WorkerInfo{
			WorkerID:      hb.WorkerID,
			Status:        hb.Status,
			LastHeartbeat: hb.LastHeartbeat,
		})
	}
	return workers, nil
}
