package webhook_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/marcelsud/clinic-webhooks/webhook"
	"github.com/marcelsud/clinic-webhooks/webhook/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	body := []byte(`{"patient_id":"p-1"}`)
	subs := []webhook.Subscription{{ID: "sub-1", TenantID: tenant}, {ID: "sub-2", TenantID: tenant}}

	t.Run("one pending delivery per subscriber", func(t *testing.T) {
		finder := mocks.NewSubscriptionUseCase(t)
		store := mocks.NewDeliveryRepository(t)
		queue := mocks.NewQueue(t)
		publisher := webhook.NewPublisher(finder, store, queue)

		finder.On("FindActiveSubscribers", ctx, tenant, webhook.PatientCreated).Return(subs, nil)
		store.On("CreateDeliveries", ctx, webhook.MatchDeliveries(func(ds []webhook.Delivery) bool {
			if len(ds) != 2 {
				return false
			}
			for i, d := range ds {
				if d.Status != webhook.Pending || d.AttemptCount != 0 || d.SubscriptionID != subs[i].ID ||
					d.Event != webhook.PatientCreated || string(d.Payload) != string(body) || d.ID == "" {
					return false
				}
			}
			return ds[0].ID != ds[1].ID
		})).Return(nil)
		queue.On("Enqueue", ctx, mock.AnythingOfType("string")).Return(nil).Twice()

		deliveries, err := publisher.Publish(ctx, tenant, webhook.PatientCreated, body)

		require.NoError(t, err)
		assert.Len(t, deliveries, 2)
	})

	t.Run("no subscribers creates nothing", func(t *testing.T) {
		finder := mocks.NewSubscriptionUseCase(t)
		store := mocks.NewDeliveryRepository(t)
		queue := mocks.NewQueue(t)
		publisher := webhook.NewPublisher(finder, store, queue)

		finder.On("FindActiveSubscribers", ctx, tenant, webhook.SurveySent).Return([]webhook.Subscription{}, nil)

		deliveries, err := publisher.Publish(ctx, tenant, webhook.SurveySent, body)

		require.NoError(t, err)
		assert.Empty(t, deliveries)
		store.AssertNotCalled(t, "CreateDeliveries", mock.Anything, mock.Anything)
	})

	t.Run("unknown event is ignored", func(t *testing.T) {
		publisher := webhook.NewPublisher(mocks.NewSubscriptionUseCase(t), mocks.NewDeliveryRepository(t), mocks.NewQueue(t))

		deliveries, err := publisher.Publish(ctx, tenant, webhook.Event(999), body)

		require.NoError(t, err)
		assert.Empty(t, deliveries)
	})

	t.Run("store failure is surfaced and nothing is queued", func(t *testing.T) {
		finder := mocks.NewSubscriptionUseCase(t)
		store := mocks.NewDeliveryRepository(t)
		queue := mocks.NewQueue(t)
		publisher := webhook.NewPublisher(finder, store, queue)
		boom := errors.New("disk full")

		finder.On("FindActiveSubscribers", ctx, tenant, webhook.PatientCreated).Return(subs, nil)
		store.On("CreateDeliveries", ctx, mock.Anything).Return(boom)

		_, err := publisher.Publish(ctx, tenant, webhook.PatientCreated, body)

		assert.ErrorIs(t, err, boom)
		queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure is surfaced", func(t *testing.T) {
		finder := mocks.NewSubscriptionUseCase(t)
		publisher := webhook.NewPublisher(finder, mocks.NewDeliveryRepository(t), mocks.NewQueue(t))
		boom := errors.New("timeout")

		finder.On("FindActiveSubscribers", ctx, tenant, webhook.PatientCreated).Return(nil, boom)

		_, err := publisher.Publish(ctx, tenant, webhook.PatientCreated, body)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("queue failure does not fail the publish", func(t *testing.T) {
		finder := mocks.NewSubscriptionUseCase(t)
		store := mocks.NewDeliveryRepository(t)
		queue := mocks.NewQueue(t)
		publisher := webhook.NewPublisher(finder, store, queue)

		finder.On("FindActiveSubscribers", ctx, tenant, webhook.PatientCreated).Return(subs, nil)
		store.On("CreateDeliveries", ctx, mock.Anything).Return(nil)
		queue.On("Enqueue", ctx, mock.Anything).Return(webhook.ErrQueueFull)

		deliveries, err := publisher.Publish(ctx, tenant, webhook.PatientCreated, body)

		require.NoError(t, err)
		assert.Len(t, deliveries, 2)
	})

	t.Run("missing tenant", func(t *testing.T) {
		publisher := webhook.NewPublisher(mocks.NewSubscriptionUseCase(t), mocks.NewDeliveryRepository(t), mocks.NewQueue(t))
		_, err := publisher.Publish(ctx, "", webhook.PatientCreated, body)
		assert.ErrorIs(t, err, webhook.ErrValidation)
	})
}

func TestPublisher_PublishData(t *testing.T) {
	ctx := context.Background()
	finder := mocks.NewSubscriptionUseCase(t)
	store := mocks.NewDeliveryRepository(t)
	queue := mocks.NewQueue(t)
	publisher := webhook.NewPublisher(finder, store, queue)

	finder.On("FindActiveSubscribers", ctx, tenant, webhook.JourneyStageChanged).
		Return([]webhook.Subscription{{ID: "sub-1", TenantID: tenant}}, nil)
	store.On("CreateDeliveries", ctx, mock.Anything).Return(nil)
	queue.On("Enqueue", ctx, mock.Anything).Return(nil)

	deliveries, err := publisher.PublishData(ctx, tenant, webhook.JourneyStageChanged, map[string]string{"stage": "onboarding"})

	require.NoError(t, err)
	require.Len(t, deliveries, 1)

	var env map[string]any
	require.NoError(t, json.Unmarshal(deliveries[0].Payload, &env))
	assert.Equal(t, "journey.stage_changed", env["type"])
	assert.Equal(t, tenant, env["tenant_id"])
	assert.Equal(t, map[string]any{"stage": "onboarding"}, env["data"])
}
