//go:build integration

package redis_test

import (
	"context"
	"testing"

	"github.com/marcelsud/clinic-webhooks/webhook"
	"github.com/marcelsud/clinic-webhooks/webhook/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ webhook.Queue = (*redis.Queue)(nil)

func TestQueue_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("enqueue, consume and acknowledge", func(t *testing.T) {
		rc, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		q := CreateTestQueue(t, rc.Addr, "worker-a")
		defer q.Close(ctx)

		require.NoError(t, q.Enqueue(ctx, "d-1"))
		require.NoError(t, q.Enqueue(ctx, "d-2"))

		n, err := q.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		jobs, err := q.Consume(ctx, 10)
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.Equal(t, "d-1", jobs[0].DeliveryID)
		assert.Equal(t, "d-2", jobs[1].DeliveryID)
		assert.NotEmpty(t, jobs[0].Ref)

		for _, job := range jobs {
			require.NoError(t, q.Acknowledge(ctx, job))
		}

		n, err = q.Len(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("empty stream returns no jobs after blocking", func(t *testing.T) {
		rc, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		q := CreateTestQueue(t, rc.Addr, "worker-a")
		defer q.Close(ctx)

		jobs, err := q.Consume(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})

	t.Run("entry without delivery id is removed from the stream", func(t *testing.T) {
		rc, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		q := CreateTestQueue(t, rc.Addr, "worker-a")
		defer q.Close(ctx)

		client := goredis.NewClient(&goredis.Options{Addr: rc.Addr})
		defer client.Close()
		require.NoError(t, client.XAdd(ctx, &goredis.XAddArgs{
			Stream: redis.DefaultStream,
			Values: map[string]interface{}{"other": "value"},
		}).Err())
		require.NoError(t, q.Enqueue(ctx, "d-1"))

		jobs, err := q.Consume(ctx, 10)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "d-1", jobs[0].DeliveryID)

		n, err := q.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		require.NoError(t, q.Acknowledge(ctx, jobs[0]))
		n, err = q.Len(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		pending, err := client.XPending(ctx, redis.DefaultStream, redis.DefaultGroup).Result()
		require.NoError(t, err)
		assert.Zero(t, pending.Count)
	})

	t.Run("consumers in one group split the entries", func(t *testing.T) {
		rc, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		a := CreateTestQueue(t, rc.Addr, "worker-a")
		defer a.Close(ctx)
		b := CreateTestQueue(t, rc.Addr, "worker-b")
		defer b.Close(ctx)

		require.NoError(t, a.Enqueue(ctx, "d-1"))

		first, err := a.Consume(ctx, 1)
		require.NoError(t, err)
		second, err := b.Consume(ctx, 1)
		require.NoError(t, err)

		assert.Len(t, first, 1)
		assert.Empty(t, second)
	})
}

func TestHeartbeats_Integration(t *testing.T) {
	ctx := context.Background()
	rc, cleanup := SetupRedisContainer(t, ctx)
	defer cleanup()

	q := CreateTestQueue(t, rc.Addr, "worker-a")
	defer q.Close(ctx)

	hb := redis.NewHeartbeats(q.Client())
	require.NoError(t, hb.SetWorkerHeartbeat(ctx, "api-1:0", "idle"))
	require.NoError(t, hb.SetWorkerHeartbeat(ctx, "api-1:1", "processing"))
	require.NoError(t, hb.SetWorkerHeartbeat(ctx, "api-1:1", "idle"))

	workers, err := hb.GetActiveWorkers(ctx)
	require.NoError(t, err)
	assert.Len(t, workers, 2)

	n, err := hb.CountActiveWorkers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ttl := GetKeyTTL(t, rc.Addr, "webhooks:worker:heartbeat:api-1:0")
	assert.Greater(t, ttl, int64(0))
	assert.LessOrEqual(t, ttl, int64(60))
}
