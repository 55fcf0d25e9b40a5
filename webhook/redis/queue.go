package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marcelsud/clinic-webhooks/webhook"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

/* Redis Streams implementation of webhook.Queue
 * Each job is a stream entry carrying a delivery id; the consumer group spreads
 * entries over every process sharing the group name.
 */

const (
	DefaultStream = "webhooks:deliveries" // Stream key holding delivery ids
	DefaultGroup  = "webhook-workers"     // Consumer group shared by all instances

	deliveryField = "delivery_id"
	readBlock     = 1 * time.Second
)

type Queue struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	logger   zerolog.Logger
}

// NewQueue connects to Redis and makes sure the stream and group exist
func NewQueue(addr, password string, db int, stream, group, consumer string) (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	q := NewQueueFromClient(client, stream, group, consumer)
	if err := q.ensureGroup(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return q, nil
}

// NewQueueFromClient wraps an existing client; empty names fall back to the defaults
func NewQueueFromClient(client *redis.Client, stream, group, consumer string) *Queue {
	if stream == "" {
		stream = DefaultStream
	}
	if group == "" {
		group = DefaultGroup
	}
	if consumer == "" {
		consumer = "worker"
	}
	return &Queue{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		logger:   zerolog.Nop(),
	}
}

// WithLogger sets the logger used for entries the queue drops on its own
func (q *Queue) WithLogger(logger zerolog.Logger) *Queue {
	q.logger = logger
	return q
}

func (q *Queue) ensureGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("creating consumer group: %w", err)
	}
	return nil
}

// Enqueue appends a delivery id to the stream
func (q *Queue) Enqueue(ctx context.Context, deliveryID string) error {
	err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{deliveryField: deliveryID},
	}).Err()
	if err != nil {
		return fmt.Errorf("adding to stream: %w", err)
	}
	return nil
}

// Consume reads up to max new entries for this consumer, blocking for at most a second
func (q *Queue) Consume(ctx context.Context, max int) ([]webhook.Job, error) {
	if max < 1 {
		max = 1
	}
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumer,
		Streams:  []string{q.stream, ">"},
		Count:    int64(max),
		Block:    readBlock,
	}).Result()
	if errors.Is(err, redis.Nil) {
		// No messages available
		return []webhook.Job{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading from stream: %w", err)
	}

	jobs := []webhook.Job{}
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			id, ok := msg.Values[deliveryField].(string)
			if !ok || id == "" {
				// Malformed entry, drop it so it is not redelivered forever
				if err := q.remove(ctx, msg.ID); err != nil {
					q.logger.Error().Err(err).Str("message_id", msg.ID).Msg("dropping malformed entry")
				} else {
					q.logger.Warn().Str("message_id", msg.ID).Msg("dropped entry without delivery id")
				}
				continue
			}
			jobs = append(jobs, webhook.Job{DeliveryID: id, Ref: msg.ID})
		}
	}
	return jobs, nil
}

// Acknowledge removes the entry from the group's pending list
func (q *Queue) Acknowledge(ctx context.Context, job webhook.Job) error {
	if job.Ref == "" {
		return nil
	}
	return q.remove(ctx, job.Ref)
}

// remove acks the entry and deletes it so it no longer counts towards Len
func (q *Queue) remove(ctx context.Context, ref string) error {
	if err := q.client.XAck(ctx, q.stream, q.group, ref).Err(); err != nil {
		return fmt.Errorf("acknowledging message: %w", err)
	}
	if err := q.client.XDel(ctx, q.stream, ref).Err(); err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	return nil
}

// Len returns the number of entries still in the stream
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.XLen(ctx, q.stream).Result()
	if err != nil {
		return 0, fmt.Errorf("reading stream length: %w", err)
	}
	return n, nil
}

// Close closes the Redis connection
func (q *Queue) Close(ctx context.Context) error {
	return q.client.Close()
}

// Client returns the underlying Redis client, shared with the heartbeat registry
func (q *Queue) Client() *redis.Client {
	return q.client
}
