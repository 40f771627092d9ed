package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/voxlab/scribe/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g. "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns development defaults.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider. The returned
// provider should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the relay's metric instruments.
type Metrics struct {
	transcribeTotal    metric.Int64Counter
	transcribeDuration metric.Float64Histogram
	streamsActive      metric.Int64UpDownCounter
	conversionTotal    metric.Int64Counter
	conversionDuration metric.Float64Histogram
	errorTotal         metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	transcribeTotal, err := meter.Int64Counter("transcribe.total",
		metric.WithDescription("Total transcription requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcribe.total counter: %w", err)
	}

	transcribeDuration, err := meter.Float64Histogram("transcribe.duration",
		metric.WithDescription("Duration of transcription requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcribe.duration histogram: %w", err)
	}

	streamsActive, err := meter.Int64UpDownCounter("streams.active",
		metric.WithDescription("Number of currently open transcript streams"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating streams.active gauge: %w", err)
	}

	conversionTotal, err := meter.Int64Counter("conversion.total",
		metric.WithDescription("Total audio conversions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating conversion.total counter: %w", err)
	}

	conversionDuration, err := meter.Float64Histogram("conversion.duration",
		metric.WithDescription("Duration of audio conversions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating conversion.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by type and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		transcribeTotal:    transcribeTotal,
		transcribeDuration: transcribeDuration,
		streamsActive:      streamsActive,
		conversionTotal:    conversionTotal,
		conversionDuration: conversionDuration,
		errorTotal:         errorTotal,
	}, nil
}

// RecordTranscription records a finished transcription request.
func (m *Metrics) RecordTranscription(ctx context.Context, provider, mode, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("mode", mode),
		attribute.String("status", status),
	)
	m.transcribeTotal.Add(ctx, 1, attrs)
	m.transcribeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("mode", mode),
	))
}

// StreamStarted increments the active stream count.
func (m *Metrics) StreamStarted(ctx context.Context) {
	m.streamsActive.Add(ctx, 1)
}

// StreamEnded decrements the active stream count.
func (m *Metrics) StreamEnded(ctx context.Context) {
	m.streamsActive.Add(ctx, -1)
}

// RecordConversion records a finished audio conversion.
func (m *Metrics) RecordConversion(ctx context.Context, format, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("status", status),
	)
	m.conversionTotal.Add(ctx, 1, attrs)
	m.conversionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("format", format),
	))
}

// RecordError records an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}
