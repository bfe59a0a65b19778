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

	"github.com/kbukum/httpbind/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service using the client.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns defaults for local development.
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

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The provider should be shut down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
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

	logger.WithComponent("observability").Info("meter initialized", logger.Fields(
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

// Metric instrument names.
const (
	MetricBindingTotal    = "binding.total"
	MetricBindingDuration = "binding.duration"
	MetricDispatch        = "deserialization.dispatch"
	MetricBindingErrors   = "binding.errors"
)

// Metrics holds the instruments recorded by binders.
type Metrics struct {
	bindingTotal    metric.Int64Counter
	bindingDuration metric.Float64Histogram
	dispatchTotal   metric.Int64Counter
	errorTotal      metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	bindingTotal, err := meter.Int64Counter(MetricBindingTotal,
		metric.WithDescription("Total number of binding passes by stage and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricBindingTotal, err)
	}

	bindingDuration, err := meter.Float64Histogram(MetricBindingDuration,
		metric.WithDescription("Duration of binding passes in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricBindingDuration, err)
	}

	dispatchTotal, err := meter.Int64Counter(MetricDispatch,
		metric.WithDescription("Responses dispatched, by provider"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricDispatch, err)
	}

	errorTotal, err := meter.Int64Counter(MetricBindingErrors,
		metric.WithDescription("Binding errors by code and stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricBindingErrors, err)
	}

	return &Metrics{
		bindingTotal:    bindingTotal,
		bindingDuration: bindingDuration,
		dispatchTotal:   dispatchTotal,
		errorTotal:      errorTotal,
	}, nil
}

// RecordBinding records a completed binding pass.
func (m *Metrics) RecordBinding(ctx context.Context, stage, status string, duration time.Duration) {
	m.bindingTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrStage, stage),
		attribute.String(AttrStatus, status),
	))
	m.bindingDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrStage, stage),
	))
}

// RecordDispatch records which provider handled a response. source is
// "hint", "chain", "stream" or "no_content".
func (m *Metrics) RecordDispatch(ctx context.Context, provider, source string) {
	m.dispatchTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrProvider, provider),
		attribute.String("source", source),
	))
}

// RecordError records a binding error by code and stage.
func (m *Metrics) RecordError(ctx context.Context, code, stage string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrErrorCode, code),
		attribute.String(AttrStage, stage),
	))
}
