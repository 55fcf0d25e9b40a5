package webhook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultPoolSize is the number of consumers pulling jobs from the queue
	DefaultPoolSize = 8

	heartbeatInterval = 30 * time.Second
)

// AutomaticAttempter runs queued attempts
type AutomaticAttempter interface {
	Attempt(ctx context.Context, deliveryID string) (Delivery, error)
}

// RetryScheduler arms the wake-up of a Retrying delivery
type RetryScheduler interface {
	ScheduleRetry(ctx context.Context, d Delivery)
}

// Heartbeater records that a consumer is alive, used for the workers gauge
type Heartbeater interface {
	SetWorkerHeartbeat(ctx context.Context, workerID, status string) error
}

/* Pool runs a fixed number of consumers over the queue
 * Jobs are independent: no ordering is kept between deliveries.
 */
type Pool struct {
	queue     Queue
	worker    AutomaticAttempter
	scheduler RetryScheduler
	heartbeat Heartbeater
	logger    zerolog.Logger
	size      int
	name      string

	wg       sync.WaitGroup
	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
	stopChan chan struct{}
}

// PoolOption configures a Pool
type PoolOption func(*Pool)

// WithPoolSize sets the number of consumers
func WithPoolSize(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.size = n
		}
	}
}

// WithPoolLogger sets the logger
func WithPoolLogger(l zerolog.Logger) PoolOption {
	return func(p *Pool) { p.logger = l }
}

// WithHeartbeat reports consumer liveness under the given instance name
func WithHeartbeat(h Heartbeater, name string) PoolOption {
	return func(p *Pool) {
		p.heartbeat = h
		if name != "" {
			p.name = name
		}
	}
}

// NewPool creates a worker pool
func NewPool(queue Queue, worker AutomaticAttempter, scheduler RetryScheduler, opts ...PoolOption) *Pool {
	p := &Pool{
		queue:     queue,
		worker:    worker,
		scheduler: scheduler,
		logger:    zerolog.Nop(),
		size:      DefaultPoolSize,
		name:      "worker",
		stopChan:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the consumers and returns immediately
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	p.logger.Info().Int("size", p.size).Msg("delivery pool starting")
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.consume(ctx, fmt.Sprintf("%s-%d", p.name, i))
	}
}

// Stop signals the consumers and waits for in-flight attempts to finish
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})
	p.wg.Wait()
}

func (p *Pool) consume(ctx context.Context, consumerID string) {
	defer p.wg.Done()
	log := p.logger.With().Str("consumer", consumerID).Logger()

	lastBeat := time.Time{}
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		default:
		}

		if p.heartbeat != nil && time.Since(lastBeat) >= heartbeatInterval {
			if err := p.heartbeat.SetWorkerHeartbeat(ctx, consumerID, "idle"); err != nil {
				log.Debug().Err(err).Msg("heartbeat failed")
			}
			lastBeat = time.Now()
		}

		jobs, err := p.queue.Consume(ctx, 1)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("consuming delivery queue")
			p.pause(ctx, time.Second)
			continue
		}

		for _, job := range jobs {
			p.process(ctx, log, job)
		}
	}
}

func (p *Pool) process(ctx context.Context, log zerolog.Logger, job Job) {
	d, err := p.worker.Attempt(ctx, job.DeliveryID)
	if err != nil {
		// the row stays durable; the sweep brings it back
		log.Error().Err(err).Str("delivery_id", job.DeliveryID).Msg("delivery attempt failed")
	} else if d.Status == Retrying {
		p.scheduler.ScheduleRetry(ctx, d)
	}

	if err := p.queue.Acknowledge(ctx, job); err != nil {
		log.Warn().Err(err).Str("delivery_id", job.DeliveryID).Msg("acknowledging job")
	}
}

func (p *Pool) pause(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-p.stopChan:
	case <-t.C:
	}
}
