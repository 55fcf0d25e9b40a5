package webhook

import (
	"context"
	"errors"
	"time"
)

// ErrQueueFull is returned by a bounded queue that cannot take more jobs
var ErrQueueFull = errors.New("delivery queue is full")

/* Job is one unit of work: attempt the delivery with this id
 * Ref is the transport handle needed to acknowledge it (a stream message id for Redis)
 */
type Job struct {
	DeliveryID string
	Ref        string
}

// Enqueuer hands delivery ids to the worker pool
type Enqueuer interface {
	Enqueue(ctx context.Context, deliveryID string) error
}

// Queue is the transport between the publisher/scheduler and the worker pool
type Queue interface {
	Enqueuer
	/* Consume returns up to max jobs
	 * Blocks for a short while when nothing is available and returns an empty slice then
	 */
	Consume(ctx context.Context, max int) ([]Job, error)
	// Acknowledge marks a job as processed
	Acknowledge(ctx context.Context, job Job) error
}

// MemoryQueue is a bounded in-process queue for single instance deployments
type MemoryQueue struct {
	jobs chan Job
	wait time.Duration
}

// NewMemoryQueue creates a queue holding at most size jobs
func NewMemoryQueue(size int) *MemoryQueue {
	if size < 1 {
		size = 1
	}
	return &MemoryQueue{
		jobs: make(chan Job, size),
		wait: time.Second,
	}
}

// Enqueue never blocks; a full queue returns ErrQueueFull and the sweep picks the row up later
func (q *MemoryQueue) Enqueue(ctx context.Context, deliveryID string) error {
	select {
	case q.jobs <- Job{DeliveryID: deliveryID}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Consume waits up to one second for the first job and then drains without blocking
func (q *MemoryQueue) Consume(ctx context.Context, max int) ([]Job, error) {
	if max < 1 {
		max = 1
	}
	timer := time.NewTimer(q.wait)
	defer timer.Stop()

	var jobs []Job
	select {
	case job := <-q.jobs:
		jobs = append(jobs, job)
	case <-timer.C:
		return []Job{}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	for len(jobs) < max {
		select {
		case job := <-q.jobs:
			jobs = append(jobs, job)
		default:
			return jobs, nil
		}
	}
	return jobs, nil
}

// Acknowledge is a no-op, consumed jobs are already gone
func (q *MemoryQueue) Acknowledge(ctx context.Context, job Job) error {
	return nil
}

// Len returns the number of buffered jobs
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}
