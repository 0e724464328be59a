// Package observe provides observability primitives for Muelsyse:
// OpenTelemetry metrics with a Prometheus exporter bridge.
//
// Metrics are recorded through the OpenTelemetry Metrics API and scraped via
// the standard /metrics endpoint after [InitProvider]. A package-level
// default [Metrics] instance ([DefaultMetrics]) is provided for convenience;
// tests should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Muelsyse metrics.
const meterName = "github.com/DuoDuoJuZi/Myurujisu"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// STTDuration tracks speech-to-text transcription latency.
	STTDuration metric.Float64Histogram

	// ClassifyDuration tracks intent-classification latency.
	ClassifyDuration metric.Float64Histogram

	// TTSDuration tracks text-to-speech synthesis latency.
	TTSDuration metric.Float64Histogram

	// DispatchDuration tracks skill-dispatch latency, including the
	// light skill's deliberate publish delay.
	DispatchDuration metric.Float64Histogram

	// --- Counters ---

	// Utterances counts processed utterances. Use with attribute:
	//   attribute.String("outcome", "no_wake"|"dispatched"|"error")
	Utterances metric.Int64Counter

	// WakeMatches counts wake-word detections. Use with attributes:
	//   attribute.String("path", "literal"|"phonetic"), attribute.String("pattern", ...)
	WakeMatches metric.Int64Counter

	// Publishes counts broker publishes. Use with attribute:
	//   attribute.String("payload", ...)
	Publishes metric.Int64Counter

	// --- Error counters ---

	// StageErrors counts per-stage failures. Use with attribute:
	//   attribute.String("stage", "capture"|"transcribe"|"classify"|"dispatch")
	StageErrors metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for voice-pipeline latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.STTDuration, err = m.Float64Histogram("muelsyse.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ClassifyDuration, err = m.Float64Histogram("muelsyse.classify.duration",
		metric.WithDescription("Latency of intent classification."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSDuration, err = m.Float64Histogram("muelsyse.tts.duration",
		metric.WithDescription("Latency of text-to-speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.DispatchDuration, err = m.Float64Histogram("muelsyse.dispatch.duration",
		metric.WithDescription("Latency of skill dispatch."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Utterances, err = m.Int64Counter("muelsyse.utterances",
		metric.WithDescription("Total processed utterances by outcome."),
	); err != nil {
		return nil, err
	}
	if met.WakeMatches, err = m.Int64Counter("muelsyse.wake.matches",
		metric.WithDescription("Total wake-word detections by path and pattern."),
	); err != nil {
		return nil, err
	}
	if met.Publishes, err = m.Int64Counter("muelsyse.broker.publishes",
		metric.WithDescription("Total broker publishes by payload."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.StageErrors, err = m.Int64Counter("muelsyse.stage.errors",
		metric.WithDescription("Total pipeline stage failures by stage."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordUtterance records one processed utterance with its outcome.
func (m *Metrics) RecordUtterance(ctx context.Context, outcome string) {
	m.Utterances.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

// RecordWakeMatch records one wake-word detection.
func (m *Metrics) RecordWakeMatch(ctx context.Context, path, pattern string) {
	m.WakeMatches.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("path", path),
			attribute.String("pattern", pattern),
		),
	)
}

// RecordPublish records one broker publish.
func (m *Metrics) RecordPublish(ctx context.Context, payload string) {
	m.Publishes.Add(ctx, 1,
		metric.WithAttributes(attribute.String("payload", payload)),
	)
}

// RecordStageError records one pipeline stage failure.
func (m *Metrics) RecordStageError(ctx context.Context, stage string) {
	m.StageErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}
