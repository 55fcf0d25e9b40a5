package webhook

import (
	"context"
	"time"
)

// Recorder receives delivery instrumentation; the metrics package provides the real one
type Recorder interface {
	RecordPublished(ctx context.Context, event Event, deliveries int)
	RecordAttempt(ctx context.Context, event Event, outcome Outcome, elapsed time.Duration)
}

// NopRecorder discards everything
type NopRecorder struct{}

func (NopRecorder) RecordPublished(context.Context, Event, int) {}

func (NopRecorder) RecordAttempt(context.Context, Event, Outcome, time.Duration) {}
