package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/clinic-webhooks/webhook/signature"
)

// SubscriptionUseCase defines the subscription lifecycle operations
type SubscriptionUseCase interface {
	Create(ctx context.Context, tenantID string, in CreateSubscription) (Subscription, error)
	Get(ctx context.Context, tenantID, id string) (Subscription, error)
	List(ctx context.Context, tenantID string) ([]Subscription, error)
	Update(ctx context.Context, tenantID, id string, patch SubscriptionPatch) (Subscription, error)
	Activate(ctx context.Context, tenantID, id string) (Subscription, error)
	Deactivate(ctx context.Context, tenantID, id string) (Subscription, error)
	RegenerateSecret(ctx context.Context, tenantID, id string) (Subscription, error)
	Delete(ctx context.Context, tenantID, id string) error
	FindActiveSubscribers(ctx context.Context, tenantID string, event Event) ([]Subscription, error)
}

/* Registry owns subscriptions
 * Uses pointer semantics as it's an API, not data
 */
type Registry struct {
	Repo SubscriptionRepository
	now  func() time.Time
}

// NewRegistry creates a registry over the given repository
func NewRegistry(repo SubscriptionRepository) *Registry {
	return &Registry{
		Repo: repo,
		now:  time.Now,
	}
}

// WithClock overrides time.Now, for tests
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Create stores a new inactive subscription with a fresh secret
func (r *Registry) Create(ctx context.Context, tenantID string, in CreateSubscription) (Subscription, error) {
	if tenantID == "" {
		return Subscription{}, invalid("tenant", "is required")
	}
	if len(in.SubscribedEvents) == 0 {
		return Subscription{}, invalid("subscribedEvents", "cannot be empty")
	}

	delay := in.RetryDelaySeconds
	if delay == 0 {
		delay = DefaultRetryDelaySeconds
	}
	now := r.now()
	sub := Subscription{
		ID:                uuid.New().String(),
		TenantID:          tenantID,
		Name:              in.Name,
		Description:       in.Description,
		TargetURL:         in.TargetURL,
		SubscribedEvents:  ParseEvents(in.SubscribedEvents),
		IsActive:          false,
		MaxRetries:        in.MaxRetries,
		RetryDelaySeconds: delay,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := sub.Validate(); err != nil {
		return Subscription{}, fmt.Errorf("validating subscription: %w", err)
	}

	secret, err := signature.GenerateSecret(signature.DefaultSecretBytes)
	if err != nil {
		return Subscription{}, fmt.Errorf("generating secret: %w", err)
	}
	sub.Secret = secret

	if err := r.Repo.CreateSubscription(ctx, sub); err != nil {
		return Subscription{}, fmt.Errorf("storing subscription: %w", err)
	}
	return sub, nil
}

// Get returns one subscription of the tenant
func (r *Registry) Get(ctx context.Context, tenantID, id string) (Subscription, error) {
	sub, err := r.Repo.GetSubscription(ctx, tenantID, id)
	if err != nil {
		return Subscription{}, fmt.Errorf("getting subscription: %w", err)
	}
	return sub, nil
}

// List returns every subscription of the tenant
func (r *Registry) List(ctx context.Context, tenantID string) ([]Subscription, error) {
	subs, err := r.Repo.ListSubscriptions(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	return subs, nil
}

// Update applies a partial change and validates the result before storing it
func (r *Registry) Update(ctx context.Context, tenantID, id string, patch SubscriptionPatch) (Subscription, error) {
	if patch.SubscribedEvents != nil && len(patch.SubscribedEvents) == 0 {
		return Subscription{}, invalid("subscribedEvents", "cannot be empty")
	}
	return r.mutate(ctx, tenantID, id, "updating subscription", func(s Subscription) (Subscription, error) {
		next := patch.Apply(s)
		if err := next.Validate(); err != nil {
			return Subscription{}, fmt.Errorf("validating subscription: %w", err)
		}
		return next, nil
	})
}

// Activate makes the subscription receive new deliveries; activating twice is a no-op
func (r *Registry) Activate(ctx context.Context, tenantID, id string) (Subscription, error) {
	return r.setActive(ctx, tenantID, id, true)
}

// Deactivate stops new deliveries; pending retries fail on their next attempt
func (r *Registry) Deactivate(ctx context.Context, tenantID, id string) (Subscription, error) {
	return r.setActive(ctx, tenantID, id, false)
}

func (r *Registry) setActive(ctx context.Context, tenantID, id string, active bool) (Subscription, error) {
	sub, err := r.Repo.GetSubscription(ctx, tenantID, id)
	if err != nil {
		return Subscription{}, fmt.Errorf("getting subscription: %w", err)
	}
	if sub.IsActive == active {
		return sub, nil
	}
	return r.mutate(ctx, tenantID, id, "toggling subscription", func(s Subscription) (Subscription, error) {
		s.IsActive = active
		return s, nil
	})
}

// RegenerateSecret replaces the secret; the next attempt signs with the new one
func (r *Registry) RegenerateSecret(ctx context.Context, tenantID, id string) (Subscription, error) {
	return r.mutate(ctx, tenantID, id, "regenerating secret", func(s Subscription) (Subscription, error) {
		secret, err := signature.GenerateSecret(signature.DefaultSecretBytes)
		if err != nil {
			return Subscription{}, fmt.Errorf("generating secret: %w", err)
		}
		s.Secret = secret
		return s, nil
	})
}

// Delete removes the subscription; its deliveries stay for audit
func (r *Registry) Delete(ctx context.Context, tenantID, id string) error {
	if err := r.Repo.DeleteSubscription(ctx, tenantID, id); err != nil {
		return fmt.Errorf("deleting subscription: %w", err)
	}
	return nil
}

// FindActiveSubscribers returns the active subscriptions of the tenant listing the event
func (r *Registry) FindActiveSubscribers(ctx context.Context, tenantID string, event Event) ([]Subscription, error) {
	if !event.IsKnown() {
		return nil, nil
	}
	subs, err := r.Repo.FindActiveByEvent(ctx, tenantID, event)
	if err != nil {
		return nil, fmt.Errorf("finding subscribers: %w", err)
	}

	// the store filters already; this keeps the contract independent of it
	matching := subs[:0]
	for _, s := range subs {
		if s.IsActive && s.SubscribesTo(event) {
			matching = append(matching, s)
		}
	}
	return matching, nil
}

func (r *Registry) mutate(ctx context.Context, tenantID, id, action string, change func(Subscription) (Subscription, error)) (Subscription, error) {
	sub, err := r.Repo.GetSubscription(ctx, tenantID, id)
	if err != nil {
		return Subscription{}, fmt.Errorf("%s: %w", action, err)
	}
	next, err := change(sub)
	if err != nil {
		return Subscription{}, err
	}
	next.UpdatedAt = r.now()
	if err := r.Repo.UpdateSubscription(ctx, next); err != nil {
		return Subscription{}, fmt.Errorf("%s: %w", action, err)
	}
	return next, nil
}
