package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/clinic-webhooks/webhook/payload"
	"github.com/rs/zerolog"
)

// SubscriberFinder resolves the fan-out of an event
type SubscriberFinder interface {
	FindActiveSubscribers(ctx context.Context, tenantID string, event Event) ([]Subscription, error)
}

// EventPublisher is the entry point used by the services that own domain events
type EventPublisher interface {
	Publish(ctx context.Context, tenantID string, event Event, body []byte) ([]Delivery, error)
	PublishData(ctx context.Context, tenantID string, event Event, data any) ([]Delivery, error)
}

/* Publisher records one pending delivery per matching subscription and queues them
 * It never talks to receivers, the pool does.
 */
type Publisher struct {
	subscribers SubscriberFinder
	deliveries  DeliveryWriter
	queue       Enqueuer
	recorder    Recorder
	logger      zerolog.Logger
	now         func() time.Time
}

// PublisherOption configures a Publisher
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger
func WithPublisherLogger(l zerolog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = l }
}

// WithPublisherRecorder sets the instrumentation sink
func WithPublisherRecorder(r Recorder) PublisherOption {
	return func(p *Publisher) { p.recorder = r }
}

// WithPublisherClock overrides time.Now, for tests
func WithPublisherClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) { p.now = now }
}

// NewPublisher creates an event publisher
func NewPublisher(subscribers SubscriberFinder, deliveries DeliveryWriter, queue Enqueuer, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		subscribers: subscribers,
		deliveries:  deliveries,
		queue:       queue,
		recorder:    NopRecorder{},
		logger:      zerolog.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

/* Publish announces that event happened for the tenant with the given body
 * Lookup and insert failures are returned, nothing is written in that case.
 * Queueing failures are only logged: rows are durable and the sweep re-queues stale ones.
 */
func (p *Publisher) Publish(ctx context.Context, tenantID string, event Event, body []byte) ([]Delivery, error) {
	if tenantID == "" {
		return nil, invalid("tenant", "is required")
	}
	if !event.IsKnown() {
		p.logger.Debug().Int("event", int(event)).Msg("ignoring event outside the catalog")
		return []Delivery{}, nil
	}

	subs, err := p.subscribers.FindActiveSubscribers(ctx, tenantID, event)
	if err != nil {
		return nil, fmt.Errorf("resolving subscribers: %w", err)
	}
	if len(subs) == 0 {
		return []Delivery{}, nil
	}

	now := p.now()
	deliveries := make([]Delivery, 0, len(subs))
	for _, s := range subs {
		deliveries = append(deliveries, Delivery{
			ID:             uuid.New().String(),
			TenantID:       tenantID,
			SubscriptionID: s.ID,
			Event:          event,
			Payload:        body,
			Status:         Pending,
			AttemptCount:   0,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	if err := p.deliveries.CreateDeliveries(ctx, deliveries); err != nil {
		return nil, fmt.Errorf("recording deliveries: %w", err)
	}
	p.recorder.RecordPublished(ctx, event, len(deliveries))

	for _, d := range deliveries {
		if err := p.queue.Enqueue(ctx, d.ID); err != nil {
			p.logger.Warn().Err(err).
				Str("delivery_id", d.ID).
				Str("tenant_id", tenantID).
				Msg("enqueue failed, delivery left for the recovery sweep")
		}
	}

	p.logger.Info().
		Str("tenant_id", tenantID).
		Str("event", event.String()).
		Int("deliveries", len(deliveries)).
		Msg("event published")
	return deliveries, nil
}

// PublishData wraps data in the standard envelope and publishes the encoded bytes
func (p *Publisher) PublishData(ctx context.Context, tenantID string, event Event, data any) ([]Delivery, error) {
	env, err := payload.New(event.String(), tenantID, data)
	if err != nil {
		return nil, invalid("data", err.Error())
	}
	body, err := env.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding envelope: %w", err)
	}
	return p.Publish(ctx, tenantID, event, body)
}
