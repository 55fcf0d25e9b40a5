package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/marcelsud/clinic-webhooks/webhook"
)

/* In-memory implementation of webhook.Repository
 * For single process runs (STORE=memory) and tests; nothing survives a restart
 */
type Repository struct {
	mu            sync.RWMutex
	subscriptions map[string]webhook.Subscription
	deliveries    map[string]webhook.Delivery
}

// NewRepository creates an empty store
func NewRepository() *Repository {
	return &Repository{
		subscriptions: make(map[string]webhook.Subscription),
		deliveries:    make(map[string]webhook.Delivery),
	}
}

// CreateSubscription stores a new subscription
func (r *Repository) CreateSubscription(ctx context.Context, s webhook.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.subscriptions[s.ID]; exists {
		return fmt.Errorf("subscription %s already exists", s.ID)
	}
	r.subscriptions[s.ID] = cloneSubscription(s)
	return nil
}

// GetSubscription returns one subscription of the tenant
func (r *Repository) GetSubscription(ctx context.Context, tenantID, id string) (webhook.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.subscriptions[id]
	if !ok || s.TenantID != tenantID {
		return webhook.Subscription{}, webhook.ErrNotFound
	}
	return cloneSubscription(s), nil
}

// ListSubscriptions returns the tenant's subscriptions, oldest first
func (r *Repository) ListSubscriptions(ctx context.Context, tenantID string) ([]webhook.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs := []webhook.Subscription{}
	for _, s := range r.subscriptions {
		if s.TenantID == tenantID {
			subs = append(subs, cloneSubscription(s))
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].ID < subs[j].ID
		}
		return subs[i].CreatedAt.Before(subs[j].CreatedAt)
	})
	return subs, nil
}

// FindActiveByEvent returns active subscriptions of the tenant listing the event
func (r *Repository) FindActiveByEvent(ctx context.Context, tenantID string, event webhook.Event) ([]webhook.Subscription, error) {
	all, err := r.ListSubscriptions(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	matching := []webhook.Subscription{}
	for _, s := range all {
		if s.IsActive && s.SubscribesTo(event) {
			matching = append(matching, s)
		}
	}
	return matching, nil
}

// UpdateSubscription overwrites an existing subscription
func (r *Repository) UpdateSubscription(ctx context.Context, s webhook.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.subscriptions[s.ID]
	if !ok || current.TenantID != s.TenantID {
		return webhook.ErrNotFound
	}
	s.CreatedAt = current.CreatedAt
	r.subscriptions[s.ID] = cloneSubscription(s)
	return nil
}

// DeleteSubscription removes a subscription; deliveries are kept
func (r *Repository) DeleteSubscription(ctx context.Context, tenantID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subscriptions[id]
	if !ok || s.TenantID != tenantID {
		return webhook.ErrNotFound
	}
	delete(r.subscriptions, id)
	return nil
}

// CreateDeliveries stores the batch, all or nothing
func (r *Repository) CreateDeliveries(ctx context.Context, deliveries []webhook.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range deliveries {
		if _, exists := r.deliveries[d.ID]; exists {
			return fmt.Errorf("delivery %s already exists", d.ID)
		}
	}
	for _, d := range deliveries {
		r.deliveries[d.ID] = cloneDelivery(d)
	}
	return nil
}

// GetDelivery returns one delivery of the tenant
func (r *Repository) GetDelivery(ctx context.Context, tenantID, id string) (webhook.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.deliveries[id]
	if !ok || d.TenantID != tenantID {
		return webhook.Delivery{}, webhook.ErrNotFound
	}
	return cloneDelivery(d), nil
}

// FindDelivery returns a delivery regardless of tenant
func (r *Repository) FindDelivery(ctx context.Context, id string) (webhook.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.deliveries[id]
	if !ok {
		return webhook.Delivery{}, webhook.ErrNotFound
	}
	return cloneDelivery(d), nil
}

// ListDeliveries returns the newest deliveries of a subscription first
func (r *Repository) ListDeliveries(ctx context.Context, tenantID, subscriptionID string, limit int) ([]webhook.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := []webhook.Delivery{}
	for _, d := range r.deliveries {
		if d.TenantID == tenantID && d.SubscriptionID == subscriptionID {
			list = append(list, cloneDelivery(d))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// ListDue returns due Retrying rows and stale Pending rows, oldest first
func (r *Repository) ListDue(ctx context.Context, now, stalePendingBefore time.Time, limit int) ([]webhook.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	due := []webhook.Delivery{}
	for _, d := range r.deliveries {
		switch {
		case d.Status == webhook.Retrying && (d.NextRetryAt == nil || !d.NextRetryAt.After(now)):
			due = append(due, cloneDelivery(d))
		case d.Status == webhook.Pending && d.CreatedAt.Before(stalePendingBefore):
			due = append(due, cloneDelivery(d))
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return dueAt(due[i]).Before(dueAt(due[j]))
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// UpdateDelivery writes d only if the stored row matches the observed state
func (r *Repository) UpdateDelivery(ctx context.Context, d webhook.Delivery, observed webhook.Observed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.deliveries[d.ID]
	if !ok {
		return webhook.ErrNotFound
	}
	if current.Status != observed.Status || current.AttemptCount != observed.AttemptCount {
		return webhook.ErrStatusConflict
	}
	r.deliveries[d.ID] = cloneDelivery(d)
	return nil
}

// CountByStatus returns the number of deliveries per status
func (r *Repository) CountByStatus(ctx context.Context) (map[webhook.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[webhook.Status]int64)
	for _, d := range r.deliveries {
		counts[d.Status]++
	}
	return counts, nil
}

// CountDeliveredSince returns how many deliveries succeeded after since
func (r *Repository) CountDeliveredSince(ctx context.Context, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, d := range r.deliveries {
		if d.Status == webhook.Delivered && d.LastAttemptAt != nil && d.LastAttemptAt.After(since) {
			n++
		}
	}
	return n, nil
}

// Close is a no-op
func (r *Repository) Close(ctx context.Context) error {
	return nil
}

func dueAt(d webhook.Delivery) time.Time {
	if d.Status == webhook.Retrying && d.NextRetryAt != nil {
		return *d.NextRetryAt
	}
	return d.CreatedAt
}

func cloneSubscription(s webhook.Subscription) webhook.Subscription {
	s.SubscribedEvents = slices.Clone(s.SubscribedEvents)
	return s
}

func cloneDelivery(d webhook.Delivery) webhook.Delivery {
	d.Payload = slices.Clone(d.Payload)
	if d.LastAttemptAt != nil {
		t := *d.LastAttemptAt
		d.LastAttemptAt = &t
	}
	if d.NextRetryAt != nil {
		t := *d.NextRetryAt
		d.NextRetryAt = &t
	}
	if d.ResponseStatusCode != nil {
		c := *d.ResponseStatusCode
		d.ResponseStatusCode = &c
	}
	return d
}
