package webhook_test

import (
	"context"
	"testing"

	"github.com/marcelsud/clinic-webhooks/webhook"
	"github.com/marcelsud/clinic-webhooks/webhook/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRetrier struct {
	tenantID, deliveryID string
	result               webhook.Delivery
	err                  error
}

func (s *stubRetrier) RetryFailedDelivery(ctx context.Context, tenantID, deliveryID string) (webhook.Delivery, error) {
	s.tenantID, s.deliveryID = tenantID, deliveryID
	return s.result, s.err
}

func TestDeliveryService_ListDeliveries(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"zero uses the default", 0, webhook.DefaultDeliveryListLimit},
		{"explicit limit", 10, 10},
		{"large limit is capped", 10_000, webhook.MaxDeliveryListLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewDeliveryRepository(t)
			service := webhook.NewDeliveryService(repo, &stubRetrier{})

			repo.On("ListDeliveries", ctx, tenant, "sub-1", tt.wantLimit).
				Return([]webhook.Delivery{{ID: "d-2"}, {ID: "d-1"}}, nil)

			list, err := service.ListDeliveries(ctx, tenant, "sub-1", tt.limit)
			require.NoError(t, err)
			assert.Len(t, list, 2)
		})
	}

	t.Run("negative limit is invalid", func(t *testing.T) {
		service := webhook.NewDeliveryService(mocks.NewDeliveryRepository(t), &stubRetrier{})
		_, err := service.ListDeliveries(ctx, tenant, "sub-1", -1)
		assert.ErrorIs(t, err, webhook.ErrValidation)
	})
}

func TestDeliveryService_GetDelivery(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewDeliveryRepository(t)
	service := webhook.NewDeliveryService(repo, &stubRetrier{})

	repo.On("GetDelivery", ctx, tenant, "d-1").Return(webhook.Delivery{ID: "d-1", Status: webhook.Failed}, nil)
	repo.On("GetDelivery", ctx, tenant, "d-2").Return(webhook.Delivery{}, webhook.ErrNotFound)

	d, err := service.GetDelivery(ctx, tenant, "d-1")
	require.NoError(t, err)
	assert.Equal(t, webhook.Failed, d.Status)

	_, err = service.GetDelivery(ctx, tenant, "d-2")
	assert.ErrorIs(t, err, webhook.ErrNotFound)
}

func TestDeliveryService_RetryDelivery(t *testing.T) {
	retrier := &stubRetrier{err: webhook.ErrInvalidOperation}
	service := webhook.NewDeliveryService(mocks.NewDeliveryRepository(t), retrier)

	_, err := service.RetryDelivery(context.Background(), tenant, "d-1")

	assert.ErrorIs(t, err, webhook.ErrInvalidOperation)
	assert.Equal(t, tenant, retrier.tenantID)
	assert.Equal(t, "d-1", retrier.deliveryID)
}
