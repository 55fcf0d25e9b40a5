package webhook

import (
	"context"
	"time"
)

/* Small, focused interfaces following "The Go Way"
 * Every tenant scoped read takes the tenant first; unscoped reads are for internal machinery only
 */

// SubscriptionReader provides read operations for subscriptions
type SubscriptionReader interface {
	GetSubscription(ctx context.Context, tenantID, id string) (Subscription, error)
	ListSubscriptions(ctx context.Context, tenantID string) ([]Subscription, error)
	/* FindActiveByEvent returns active subscriptions of the tenant that list the event
	 * Used by the publisher fan-out
	 */
	FindActiveByEvent(ctx context.Context, tenantID string, event Event) ([]Subscription, error)
}

// SubscriptionWriter provides write operations for subscriptions
type SubscriptionWriter interface {
	CreateSubscription(ctx context.Context, s Subscription) error
	/* UpdateSubscription overwrites the mutable fields of an existing row
	 * Returns ErrNotFound when the row is absent
	 */
	UpdateSubscription(ctx context.Context, s Subscription) error
	DeleteSubscription(ctx context.Context, tenantID, id string) error
}

// SubscriptionRepository combines subscription reads and writes
type SubscriptionRepository interface {
	SubscriptionReader
	SubscriptionWriter
}

// DeliveryReader provides read operations for deliveries
type DeliveryReader interface {
	GetDelivery(ctx context.Context, tenantID, id string) (Delivery, error)
	// FindDelivery loads a delivery without tenant scoping, for the worker
	FindDelivery(ctx context.Context, id string) (Delivery, error)
	// ListDeliveries returns the newest deliveries of a subscription first
	ListDeliveries(ctx context.Context, tenantID, subscriptionID string, limit int) ([]Delivery, error)
	/* ListDue returns Retrying deliveries whose next_retry_at is not after now
	 * plus Pending deliveries created before stalePendingBefore
	 */
	ListDue(ctx context.Context, now, stalePendingBefore time.Time, limit int) ([]Delivery, error)
}

// DeliveryWriter provides write operations for deliveries
type DeliveryWriter interface {
	/* CreateDeliveries stores the batch atomically
	 * Either every row is written or none is
	 */
	CreateDeliveries(ctx context.Context, deliveries []Delivery) error
	/* UpdateDelivery writes d only if the stored row still has the observed status and
	 * attempt count. Returns ErrStatusConflict otherwise, ErrNotFound when the row is absent
	 */
	UpdateDelivery(ctx context.Context, d Delivery, observed Observed) error
}

// Observed is the state a conditional delivery update expects to find
type Observed struct {
	Status       Status
	AttemptCount int
}

// ObservedOf captures the precondition for updating d
func ObservedOf(d Delivery) Observed {
	return Observed{Status: d.Status, AttemptCount: d.AttemptCount}
}

// DeliveryRepository combines delivery reads and writes
type DeliveryRepository interface {
	DeliveryReader
	DeliveryWriter
}

/* Interface composition - combining small interfaces into larger ones
 * Implemented by the postgres and memory stores
 */
type Repository interface {
	SubscriptionRepository
	DeliveryRepository
	Close(ctx context.Context) error
}
