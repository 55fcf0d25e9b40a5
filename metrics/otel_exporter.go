package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/marcelsud/clinic-webhooks/webhook"
)

var _ webhook.Recorder = (*OTelExporter)(nil)

// OTelExporter provides OpenTelemetry metrics export following OTel standards.
// It also records publishes and attempts for the publisher and the worker.
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	registry      *promclient.Registry
	collector     Collector

	// OTel meters and instruments
	meter              metric.Meter
	queueLengthGauge   metric.Int64ObservableGauge
	statusCountGauge   metric.Int64ObservableGauge
	throughputGauge    metric.Int64ObservableGauge
	activeWorkersGauge metric.Int64ObservableGauge
	publishedCounter   metric.Int64Counter
	attemptCounter     metric.Int64Counter
	attemptDuration    metric.Float64Histogram
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		"clinic-webhooks",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		registry:      registry,
		collector:     collector,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.queueLengthGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.queue.length",
		metric.WithDescription("Number of delivery jobs waiting in the queue"),
		metric.WithUnit("{jobs}"),
		metric.WithInt64Callback(oe.observeQueueLength),
	)
	if err != nil {
		return fmt.Errorf("creating queue length gauge: %w", err)
	}

	oe.statusCountGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.status.count",
		metric.WithDescription("Number of deliveries by status"),
		metric.WithUnit("{deliveries}"),
		metric.WithInt64Callback(oe.observeStatusCounts),
	)
	if err != nil {
		return fmt.Errorf("creating status count gauge: %w", err)
	}

	oe.throughputGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.throughput",
		metric.WithDescription("Number of deliveries that succeeded over time window"),
		metric.WithUnit("{deliveries}"),
		metric.WithInt64Callback(oe.observeThroughput),
	)
	if err != nil {
		return fmt.Errorf("creating throughput gauge: %w", err)
	}

	oe.activeWorkersGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.workers.active",
		metric.WithDescription("Number of pool consumers with a live heartbeat"),
		metric.WithUnit("{workers}"),
		metric.WithInt64Callback(oe.observeActiveWorkers),
	)
	if err != nil {
		return fmt.Errorf("creating active workers gauge: %w", err)
	}

	oe.publishedCounter, err = oe.meter.Int64Counter(
		"webhook.published",
		metric.WithDescription("Deliveries created by published events"),
		metric.WithUnit("{deliveries}"),
	)
	if err != nil {
		return fmt.Errorf("creating published counter: %w", err)
	}

	oe.attemptCounter, err = oe.meter.Int64Counter(
		"webhook.attempts",
		metric.WithDescription("Delivery attempts by outcome"),
		metric.WithUnit("{attempts}"),
	)
	if err != nil {
		return fmt.Errorf("creating attempt counter: %w", err)
	}

	oe.attemptDuration, err = oe.meter.Float64Histogram(
		"webhook.attempt.duration",
		metric.WithDescription("Time spent sending one delivery attempt"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("creating attempt duration histogram: %w", err)
	}

	return nil
}

// observeQueueLength is a callback that reports the queue length
func (oe *OTelExporter) observeQueueLength(ctx context.Context, observer metric.Int64Observer) error {
	length, err := oe.collector.GetQueueLength(ctx)
	if err != nil {
		return err
	}
	observer.Observe(length)
	return nil
}

// observeStatusCounts is a callback that reports delivery counts by status
func (oe *OTelExporter) observeStatusCounts(ctx context.Context, observer metric.Int64Observer) error {
	statusCounts, err := oe.collector.GetStatusCounts(ctx)
	if err != nil {
		return err
	}

	for status, count := range statusCounts {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("webhook.status", status),
		))
	}

	return nil
}

// observeThroughput is a callback that reports throughput metrics
func (oe *OTelExporter) observeThroughput(ctx context.Context, observer metric.Int64Observer) error {
	throughput, err := oe.collector.GetThroughput(ctx)
	if err != nil {
		return err
	}

	observer.Observe(throughput.LastMinute, metric.WithAttributes(
		attribute.String("time.window", "1m"),
	))
	observer.Observe(throughput.LastFiveMinutes, metric.WithAttributes(
		attribute.String("time.window", "5m"),
	))
	observer.Observe(throughput.LastFifteenMinutes, metric.WithAttributes(
		attribute.String("time.window", "15m"),
	))

	return nil
}

// observeActiveWorkers is a callback that reports active worker counts per status
func (oe *OTelExporter) observeActiveWorkers(ctx context.Context, observer metric.Int64Observer) error {
	workers, err := oe.collector.GetActiveWorkers(ctx)
	if err != nil {
		return err
	}

	byStatus := map[string]int64{}
	for _, w := range workers {
		byStatus[w.Status]++
	}
	for status, n := range byStatus {
		observer.Observe(n, metric.WithAttributes(
			attribute.String("worker.status", status),
		))
	}

	return nil
}

// RecordPublished counts the deliveries created for one event
func (oe *OTelExporter) RecordPublished(ctx context.Context, event webhook.Event, deliveries int) {
	oe.publishedCounter.Add(ctx, int64(deliveries), metric.WithAttributes(
		attribute.String("webhook.event", event.String()),
	))
}

// RecordAttempt counts one attempt and its send latency
func (oe *OTelExporter) RecordAttempt(ctx context.Context, event webhook.Event, outcome webhook.Outcome, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("webhook.event", event.String()),
		attribute.String("webhook.outcome", outcome.String()),
	)
	oe.attemptCounter.Add(ctx, 1, attrs)
	oe.attemptDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// ServeHTTP serves Prometheus-formatted metrics on the given HTTP handler
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.HandlerFor(oe.registry, promhttp.HandlerOpts{})
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
