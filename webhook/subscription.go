package webhook

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/marcelsud/clinic-webhooks/webhook/signature"
)

// DefaultRetryDelaySeconds is used when a subscription is created without a delay
const DefaultRetryDelaySeconds = 60

/* Subscription is an external endpoint's registered interest in a set of events
 * Uses value semantics as it represents data, not behavior
 */
type Subscription struct {
	ID                string
	TenantID          string
	Name              string
	Description       string
	TargetURL         string
	Secret            signature.Secret
	SubscribedEvents  []Event
	IsActive          bool
	MaxRetries        int
	RetryDelaySeconds int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SubscribesTo reports whether the subscription lists the event
func (s Subscription) SubscribesTo(e Event) bool {
	return slices.Contains(s.SubscribedEvents, e)
}

// RetryDelay returns the backoff base as a duration
func (s Subscription) RetryDelay() time.Duration {
	return time.Duration(s.RetryDelaySeconds) * time.Second
}

// Validate checks the fields every stored subscription must satisfy
func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return invalid("name", "is required")
	}
	if err := validateTargetURL(s.TargetURL); err != nil {
		return err
	}
	if len(s.SubscribedEvents) == 0 {
		return invalid("subscribedEvents", "must contain at least one known event")
	}
	if s.MaxRetries < 0 {
		return invalid("maxRetries", "cannot be negative")
	}
	if s.RetryDelaySeconds < 1 {
		return invalid("retryDelaySeconds", "must be at least 1")
	}
	return nil
}

func validateTargetURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return invalid("targetUrl", "must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("targetUrl", "scheme must be http or https")
	}
	return nil
}

// CreateSubscription carries the caller supplied fields of a new subscription
type CreateSubscription struct {
	Name              string
	Description       string
	TargetURL         string
	SubscribedEvents  []string
	MaxRetries        int
	RetryDelaySeconds int
}

/* SubscriptionPatch is a partial update
 * nil fields are left untouched
 */
type SubscriptionPatch struct {
	Name              *string
	Description       *string
	TargetURL         *string
	SubscribedEvents  []string
	MaxRetries        *int
	RetryDelaySeconds *int
}

// Apply returns a copy of s with the patch applied
func (p SubscriptionPatch) Apply(s Subscription) Subscription {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.TargetURL != nil {
		s.TargetURL = *p.TargetURL
	}
	if p.SubscribedEvents != nil {
		s.SubscribedEvents = ParseEvents(p.SubscribedEvents)
	}
	if p.MaxRetries != nil {
		s.MaxRetries = *p.MaxRetries
	}
	if p.RetryDelaySeconds != nil {
		s.RetryDelaySeconds = *p.RetryDelaySeconds
	}
	return s
}
