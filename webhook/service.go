package webhook

import (
	"context"
	"fmt"
)

const (
	// DefaultDeliveryListLimit is used when the caller gives no limit
	DefaultDeliveryListLimit = 50
	// MaxDeliveryListLimit bounds a single listing
	MaxDeliveryListLimit = 500
)

// DeliveryUseCase defines the operator view over deliveries
type DeliveryUseCase interface {
	ListDeliveries(ctx context.Context, tenantID, subscriptionID string, limit int) ([]Delivery, error)
	GetDelivery(ctx context.Context, tenantID, id string) (Delivery, error)
	RetryDelivery(ctx context.Context, tenantID, id string) (Delivery, error)
}

// ManualRetrier runs operator triggered retries
type ManualRetrier interface {
	RetryFailedDelivery(ctx context.Context, tenantID, deliveryID string) (Delivery, error)
}

/* DeliveryService serves audit queries and manual retries
 * Read-only over the store; writes go through the worker
 */
type DeliveryService struct {
	Repo    DeliveryReader
	retrier ManualRetrier
}

// NewDeliveryService creates the operator facing delivery service
func NewDeliveryService(repo DeliveryReader, retrier ManualRetrier) *DeliveryService {
	return &DeliveryService{
		Repo:    repo,
		retrier: retrier,
	}
}

// ListDeliveries returns the newest deliveries of a subscription, even a deleted one
func (s *DeliveryService) ListDeliveries(ctx context.Context, tenantID, subscriptionID string, limit int) ([]Delivery, error) {
	switch {
	case limit < 0:
		return nil, invalid("limit", "cannot be negative")
	case limit == 0:
		limit = DefaultDeliveryListLimit
	case limit > MaxDeliveryListLimit:
		limit = MaxDeliveryListLimit
	}

	deliveries, err := s.Repo.ListDeliveries(ctx, tenantID, subscriptionID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	return deliveries, nil
}

// GetDelivery returns one delivery of the tenant
func (s *DeliveryService) GetDelivery(ctx context.Context, tenantID, id string) (Delivery, error) {
	d, err := s.Repo.GetDelivery(ctx, tenantID, id)
	if err != nil {
		return Delivery{}, fmt.Errorf("getting delivery: %w", err)
	}
	return d, nil
}

// RetryDelivery triggers one immediate attempt; Delivered rows are refused
func (s *DeliveryService) RetryDelivery(ctx context.Context, tenantID, id string) (Delivery, error) {
	return s.retrier.RetryFailedDelivery(ctx, tenantID, id)
}
