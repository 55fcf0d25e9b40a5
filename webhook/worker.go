package webhook

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/marcelsud/clinic-webhooks/webhook/signature"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxConcurrentSends bounds simultaneous outbound requests per process
const DefaultMaxConcurrentSends = 16

/* Worker performs delivery attempts
 * At most one attempt per delivery id runs at a time in a process; across processes the
 * conditional status update keeps a single writer.
 */
type Worker struct {
	deliveries    DeliveryRepository
	subscriptions SubscriptionReader
	sender        Sender
	backoff       ExponentialBackoff
	recorder      Recorder
	logger        zerolog.Logger
	now           func() time.Time

	inflight singleflight.Group
	sends    *semaphore.Weighted
}

// WorkerOption configures a Worker
type WorkerOption func(*Worker)

// WithBackoff sets the retry backoff policy
func WithBackoff(b ExponentialBackoff) WorkerOption {
	return func(w *Worker) { w.backoff = b }
}

// WithWorkerLogger sets the logger
func WithWorkerLogger(l zerolog.Logger) WorkerOption {
	return func(w *Worker) { w.logger = l }
}

// WithRecorder sets the instrumentation sink
func WithRecorder(r Recorder) WorkerOption {
	return func(w *Worker) { w.recorder = r }
}

// WithWorkerClock overrides time.Now, for tests
func WithWorkerClock(now func() time.Time) WorkerOption {
	return func(w *Worker) { w.now = now }
}

// WithMaxConcurrentSends bounds simultaneous outbound requests
func WithMaxConcurrentSends(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.sends = semaphore.NewWeighted(int64(n))
		}
	}
}

// NewWorker creates a delivery worker
func NewWorker(deliveries DeliveryRepository, subscriptions SubscriptionReader, sender Sender, opts ...WorkerOption) *Worker {
	w := &Worker{
		deliveries:    deliveries,
		subscriptions: subscriptions,
		sender:        sender,
		backoff:       ExponentialBackoff{Max: DefaultMaxBackoff},
		recorder:      NopRecorder{},
		logger:        zerolog.Nop(),
		now:           time.Now,
		sends:         semaphore.NewWeighted(DefaultMaxConcurrentSends),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

/* Attempt runs the automatic path for a queued delivery
 * Terminal rows and retries that are not due yet are returned untouched
 */
func (w *Worker) Attempt(ctx context.Context, deliveryID string) (Delivery, error) {
	return w.run(ctx, deliveryID, false)
}

/* Retry runs one operator triggered attempt
 * Failed rows are accepted, Delivered rows are refused with ErrInvalidOperation
 */
func (w *Worker) Retry(ctx context.Context, deliveryID string) (Delivery, error) {
	return w.run(ctx, deliveryID, true)
}

// flight is the shared result of one attempt, tagged with the path that ran it
type flight struct {
	delivery Delivery
	manual   bool
}

/* run keeps a single attempt in flight per delivery id
 * Automatic callers accept whatever attempt was running. An operator who lands on an
 * automatic attempt waits for it and then runs an attempt of their own.
 */
func (w *Worker) run(ctx context.Context, deliveryID string, manual bool) (Delivery, error) {
	for {
		v, err, _ := w.inflight.Do(deliveryID, func() (interface{}, error) {
			d, err := w.attempt(ctx, deliveryID, manual)
			return flight{delivery: d, manual: manual}, err
		})
		f, _ := v.(flight)
		switch {
		case f.manual == manual:
			return f.delivery, err
		case !manual:
			// an operator attempt covered this one; a refused retry leaves nothing to do
			if errors.Is(err, ErrInvalidOperation) {
				return f.delivery, nil
			}
			return f.delivery, err
		case ctx.Err() != nil:
			return f.delivery, ctx.Err()
		}
		runtime.Gosched()
	}
}

func (w *Worker) attempt(ctx context.Context, deliveryID string, manual bool) (Delivery, error) {
	d, err := w.deliveries.FindDelivery(ctx, deliveryID)
	if err != nil {
		return Delivery{}, fmt.Errorf("loading delivery: %w", err)
	}

	log := w.logger.With().
		Str("delivery_id", d.ID).
		Str("tenant_id", d.TenantID).
		Str("subscription_id", d.SubscriptionID).
		Str("event", d.Event.String()).
		Logger()

	if manual {
		if d.Status == Delivered {
			return d, fmt.Errorf("retrying delivery %s: already delivered: %w", d.ID, ErrInvalidOperation)
		}
	} else if !d.IsDue(w.now()) {
		log.Debug().Str("status", d.Status.String()).Msg("skipping delivery that is not due")
		return d, nil
	}

	sub, err := w.subscriptions.GetSubscription(ctx, d.TenantID, d.SubscriptionID)
	switch {
	case errors.Is(err, ErrNotFound):
		return w.abandon(ctx, log, d, "subscription deleted before attempt")
	case err != nil:
		return d, fmt.Errorf("loading subscription: %w", err)
	case !sub.IsActive:
		return w.abandon(ctx, log, d, "subscription inactive at attempt time")
	}

	sig := signature.Sign(sub.Secret, d.Payload)

	if err := w.sends.Acquire(ctx, 1); err != nil {
		return d, fmt.Errorf("waiting for send slot: %w", err)
	}
	started := w.now()
	code, sendErr := w.sender.Send(ctx, Request{
		DeliveryID: d.ID,
		TargetURL:  sub.TargetURL,
		Event:      d.Event,
		Signature:  sig,
		Body:       d.Payload,
	})
	w.sends.Release(1)

	outcome, failure := Classify(code, sendErr)
	attemptedAt := w.now()
	w.recorder.RecordAttempt(ctx, d.Event, outcome, attemptedAt.Sub(started))

	next := d
	next.AttemptCount++
	next.LastAttemptAt = &attemptedAt
	next.Signature = sig
	next.UpdatedAt = attemptedAt
	next.ResponseStatusCode = nil
	if sendErr == nil {
		status := code
		next.ResponseStatusCode = &status
	}
	next.ErrorMessage = ""
	if failure != nil {
		next.ErrorMessage = failure.Error()
	}

	switch outcome {
	case OutcomeDelivered:
		next.Status = Delivered
		next.NextRetryAt = nil
	case OutcomePermanent:
		next.Status = Failed
		next.NextRetryAt = nil
	default:
		if next.RetriesUsed() >= sub.MaxRetries {
			next.Status = Failed
			next.NextRetryAt = nil
			next.ErrorMessage = fmt.Sprintf("%s (retries exhausted after %d attempts)", next.ErrorMessage, next.AttemptCount)
		} else {
			retryAt := attemptedAt.Add(w.backoff.Delay(next.AttemptCount, sub.RetryDelay()))
			next.Status = Retrying
			next.NextRetryAt = &retryAt
		}
	}

	if err := w.deliveries.UpdateDelivery(ctx, next, ObservedOf(d)); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			log.Warn().Int("attempt_count", next.AttemptCount).Msg("delivery changed during attempt, keeping the stored state")
			return w.deliveries.FindDelivery(ctx, d.ID)
		}
		return d, fmt.Errorf("recording attempt: %w", err)
	}

	entry := log.Info()
	if outcome != OutcomeDelivered {
		entry = log.Warn().Err(failure)
	}
	entry.
		Int("attempt_count", next.AttemptCount).
		Str("classification", outcome.String()).
		Str("status", next.Status.String()).
		Bool("manual", manual).
		Dur("elapsed", attemptedAt.Sub(started)).
		Msg("delivery attempt finished")

	return next, nil
}

// abandon fails a delivery without sending and without counting an attempt
func (w *Worker) abandon(ctx context.Context, log zerolog.Logger, d Delivery, reason string) (Delivery, error) {
	next := d
	next.Status = Failed
	next.NextRetryAt = nil
	next.ErrorMessage = reason
	next.UpdatedAt = w.now()

	if err := w.deliveries.UpdateDelivery(ctx, next, ObservedOf(d)); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return w.deliveries.FindDelivery(ctx, d.ID)
		}
		return d, fmt.Errorf("failing delivery: %w", err)
	}

	log.Warn().
		Int("attempt_count", next.AttemptCount).
		Str("classification", "skipped").
		Msg(reason)
	return next, nil
}
