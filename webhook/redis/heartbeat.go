package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	heartbeatPrefix = "webhooks:worker:heartbeat"
	heartbeatTTL    = 60 * time.Second
)

// WorkerHeartbeat represents the heartbeat data for a worker
type WorkerHeartbeat struct {
	WorkerID      string    `json:"worker_id"`
	Status        string    `json:"status"` // "idle", "processing"
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// Heartbeats tracks live pool consumers in Redis
type Heartbeats struct {
	client *redis.Client
	now    func() time.Time
}

// NewHeartbeats creates a heartbeat registry on an existing client
func NewHeartbeats(client *redis.Client) *Heartbeats {
	return &Heartbeats{client: client, now: time.Now}
}

// SetWorkerHeartbeat stores or updates a worker's heartbeat in Redis
// The key has a TTL of 60 seconds - a worker that stops reporting for that long
// is considered gone. Pools report every 30 seconds.
func (h *Heartbeats) SetWorkerHeartbeat(ctx context.Context, workerID, status string) error {
	key := fmt.Sprintf("%s:%s", heartbeatPrefix, workerID)

	data, err := json.Marshal(WorkerHeartbeat{
		WorkerID:      workerID,
		Status:        status,
		LastHeartbeat: h.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshaling heartbeat: %w", err)
	}

	if err := h.client.Set(ctx, key, data, heartbeatTTL).Err(); err != nil {
		return fmt.Errorf("setting heartbeat: %w", err)
	}
	return nil
}

// GetActiveWorkers returns every worker whose heartbeat has not expired
func (h *Heartbeats) GetActiveWorkers(ctx context.Context) ([]WorkerHeartbeat, error) {
	pattern := heartbeatPrefix + ":*"
	workers := []WorkerHeartbeat{}

	var cursor uint64
	for {
		keys, nextCursor, err := h.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning worker keys: %w", err)
		}

		for _, key := range keys {
			data, err := h.client.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				// Key expired between scan and get
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("getting worker heartbeat: %w", err)
			}

			var heartbeat WorkerHeartbeat
			if err := json.Unmarshal([]byte(data), &heartbeat); err != nil {
				continue
			}
			workers = append(workers, heartbeat)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return workers, nil
}

// CountActiveWorkers returns the number of live workers
func (h *Heartbeats) CountActiveWorkers(ctx context.Context) (int, error) {
	workers, err := h.GetActiveWorkers(ctx)
	if err != nil {
		return 0, err
	}
	return len(workers), nil
}
