package webhook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultSweepInterval is how often due retries are looked up in the store
	DefaultSweepInterval = 5 * time.Second
	// DefaultSweepBatch bounds the rows re-queued per sweep
	DefaultSweepBatch = 500
	// DefaultStalePending is how long a Pending row may wait before the sweep re-queues it
	DefaultStalePending = time.Minute
)

// Attempter runs one operator triggered attempt
type Attempter interface {
	Retry(ctx context.Context, deliveryID string) (Delivery, error)
}

/* Scheduler brings Retrying deliveries back to the worker
 * next_retry_at is the source of truth; timers only shorten the wait, the sweep makes it
 * survive restarts.
 */
type Scheduler struct {
	deliveries   DeliveryReader
	queue        Enqueuer
	attempter    Attempter
	backoff      ExponentialBackoff
	logger       zerolog.Logger
	now          func() time.Time
	interval     time.Duration
	batch        int
	stalePending time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// SchedulerOption configures a Scheduler
type SchedulerOption func(*Scheduler)

// WithSchedulerBackoff sets the backoff policy used by NextRetryAt
func WithSchedulerBackoff(b ExponentialBackoff) SchedulerOption {
	return func(s *Scheduler) { s.backoff = b }
}

// WithSchedulerLogger sets the logger
func WithSchedulerLogger(l zerolog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// WithSchedulerClock overrides time.Now, for tests
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// WithSweepInterval sets how often the sweep loop runs
func WithSweepInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSweepBatch bounds the rows re-queued per sweep
func WithSweepBatch(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.batch = n
		}
	}
}

// WithStalePending sets the age after which Pending rows are re-queued
func WithStalePending(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.stalePending = d
		}
	}
}

// NewScheduler creates a retry scheduler
func NewScheduler(deliveries DeliveryReader, queue Enqueuer, attempter Attempter, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		deliveries:   deliveries,
		queue:        queue,
		attempter:    attempter,
		backoff:      ExponentialBackoff{Max: DefaultMaxBackoff},
		logger:       zerolog.Nop(),
		now:          time.Now,
		interval:     DefaultSweepInterval,
		batch:        DefaultSweepBatch,
		stalePending: DefaultStalePending,
		timers:       make(map[string]*time.Timer),
		stopChan:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextRetryAt returns now + base * 2^(attemptCount-1), capped by the backoff policy
func (s *Scheduler) NextRetryAt(attemptCount int, baseDelaySeconds int) time.Time {
	return s.now().Add(s.backoff.Delay(attemptCount, time.Duration(baseDelaySeconds)*time.Second))
}

/* ScheduleRetry arms an in-process timer that re-queues the delivery at its next_retry_at
 * A newer schedule for the same id replaces the older timer.
 */
func (s *Scheduler) ScheduleRetry(ctx context.Context, d Delivery) {
	if d.Status != Retrying || d.NextRetryAt == nil {
		return
	}
	wait := d.NextRetryAt.Sub(s.now())
	if wait < 0 {
		wait = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if old, ok := s.timers[d.ID]; ok {
		old.Stop()
	}
	id := d.ID
	s.timers[id] = time.AfterFunc(wait, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()

		// the caller's context may be gone by now
		enqueueCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.queue.Enqueue(enqueueCtx, id); err != nil {
			s.logger.Warn().Err(err).Str("delivery_id", id).Msg("re-queue on timer failed, the sweep will pick it up")
		}
	})
}

// Pending returns the number of armed timers
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

/* Sweep re-queues every due Retrying delivery and every stale Pending delivery
 * Returns how many ids were handed to the queue
 */
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.deliveries.ListDue(ctx, now, now.Add(-s.stalePending), s.batch)
	if err != nil {
		return 0, fmt.Errorf("listing due deliveries: %w", err)
	}

	queued := 0
	for _, d := range due {
		if err := s.queue.Enqueue(ctx, d.ID); err != nil {
			if errors.Is(err, ErrQueueFull) {
				s.logger.Warn().Int("queued", queued).Msg("queue full, stopping sweep early")
				break
			}
			return queued, fmt.Errorf("enqueuing delivery %s: %w", d.ID, err)
		}
		queued++
	}
	if queued > 0 {
		s.logger.Info().Int("queued", queued).Msg("recovery sweep re-queued deliveries")
	}
	return queued, nil
}

// Start sweeps once immediately and then on every tick until ctx is done or Stop is called
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweepLogged(ctx)
		}
	}
}

func (s *Scheduler) sweepLogged(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error().Err(err).Msg("recovery sweep failed")
	}
}

// Stop cancels armed timers and waits for the sweep loop to end
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.mu.Lock()
		s.stopped = true
		for id, t := range s.timers {
			t.Stop()
			delete(s.timers, id)
		}
		s.mu.Unlock()
	})
	s.wg.Wait()
}

/* RetryFailedDelivery runs one immediate attempt for an operator
 * Refuses Delivered rows with ErrInvalidOperation without touching them; attempt_count
 * history is kept.
 */
func (s *Scheduler) RetryFailedDelivery(ctx context.Context, tenantID, deliveryID string) (Delivery, error) {
	d, err := s.deliveries.GetDelivery(ctx, tenantID, deliveryID)
	if err != nil {
		return Delivery{}, fmt.Errorf("getting delivery: %w", err)
	}
	if d.Status == Delivered {
		return d, fmt.Errorf("retrying delivery %s: already delivered: %w", d.ID, ErrInvalidOperation)
	}

	updated, err := s.attempter.Retry(ctx, d.ID)
	if err != nil {
		return updated, fmt.Errorf("retrying delivery: %w", err)
	}
	s.ScheduleRetry(ctx, updated)
	return updated, nil
}
