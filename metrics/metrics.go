package metrics

import (
	"context"
	"time"
)

// Metrics represents the current state of the delivery system.
type Metrics struct {
	// QueueLength is the number of delivery jobs waiting in the queue
	QueueLength int64 `json:"queue_length"`

	// StatusCounts maps status name to count of deliveries in that status
	StatusCounts map[string]int64 `json:"status_counts"`

	// Throughput represents deliveries that succeeded per time window
	Throughput ThroughputMetrics `json:"throughput"`

	// Workers lists the pool consumers that reported recently
	Workers []WorkerInfo `json:"workers"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// ThroughputMetrics represents deliveries that succeeded over different time windows.
type ThroughputMetrics struct {
	LastMinute         int64 `json:"last_minute"`
	LastFiveMinutes    int64 `json:"last_five_minutes"`
	LastFifteenMinutes int64 `json:"last_fifteen_minutes"`
}

// WorkerInfo represents information about an active pool consumer.
type WorkerInfo struct {
	WorkerID string `json:"worker_id"`

	// Status is the last reported state ("idle", "processing")
	Status string `json:"status"`

	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// Collector defines the interface for collecting metrics from the delivery system.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Metrics, error)

	// GetQueueLength returns the number of queued delivery jobs
	GetQueueLength(ctx context.Context) (int64, error)

	// GetStatusCounts returns the count of deliveries by status
	GetStatusCounts(ctx context.Context) (map[string]int64, error)

	// GetThroughput returns deliveries that succeeded over time windows
	GetThroughput(ctx context.Context) (ThroughputMetrics, error)

	// GetActiveWorkers returns the consumers with a live heartbeat
	GetActiveWorkers(ctx context.Context) ([]WorkerInfo, error)
}
