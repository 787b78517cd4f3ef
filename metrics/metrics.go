package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Outcome labels recorded with the bridge counters.
const (
	OutcomeAccepted      = "accepted"
	OutcomeRejected      = "rejected"
	OutcomeOK            = "ok"
	OutcomeUpstreamError = "upstream_error"
	OutcomeError         = "error"
)

// Recorder exposes the bridge's counters in Prometheus format via the
// OpenTelemetry SDK. Each recorder owns its registry, so tests can
// create as many as they need.
type Recorder struct {
	registry      *prometheus.Registry
	meterProvider *sdkmetric.MeterProvider

	webhooksReceived metric.Int64Counter
	upstreamRequests metric.Int64Counter
}

// NewRecorder creates a new metrics recorder with a Prometheus exporter
func NewRecorder() (*Recorder, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	meter := meterProvider.Meter(
		"cucuru-bridge",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	r := &Recorder{
		registry:      registry,
		meterProvider: meterProvider,
	}

	r.webhooksReceived, err = meter.Int64Counter(
		"bridge.webhooks.received",
		metric.WithDescription("Inbound webhook deliveries by kind and outcome"),
		metric.WithUnit("{deliveries}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating webhooks counter: %w", err)
	}

	r.upstreamRequests, err = meter.Int64Counter(
		"bridge.upstream.requests",
		metric.WithDescription("Outbound provider calls by resource and outcome"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating upstream counter: %w", err)
	}

	return r, nil
}

// Handler serves the scrape endpoint for this recorder's registry
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WebhookReceived counts one inbound delivery
func (r *Recorder) WebhookReceived(ctx context.Context, kind, outcome string) {
	r.webhooksReceived.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

// UpstreamRequest counts one outbound provider call
func (r *Recorder) UpstreamRequest(ctx context.Context, resource, outcome string) {
	r.upstreamRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("outcome", outcome),
	))
}

// Shutdown flushes the meter provider
func (r *Recorder) Shutdown(ctx context.Context) error {
	return r.meterProvider.Shutdown(ctx)
}
