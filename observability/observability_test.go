package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/httpbind/errors"
)

func installRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func newManualMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestDefaultConfigs(t *testing.T) {
	tc := DefaultTracerConfig("svc")
	assert.Equal(t, "svc", tc.ServiceName)
	assert.Equal(t, "localhost:4318", tc.Endpoint)
	assert.Equal(t, 1.0, tc.SampleRate)
	assert.True(t, tc.Insecure)

	mc := DefaultMeterConfig("svc")
	assert.Equal(t, 15*time.Second, mc.Interval)
	assert.Equal(t, "development", mc.Environment)
}

func TestNewMetricsNoop(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordBinding(ctx, "request", "ok", time.Millisecond)
	m.RecordDispatch(ctx, "json", "chain")
	m.RecordError(ctx, "CLIENT_ERROR", "response")
}

func TestMetricsRecorded(t *testing.T) {
	m, reader := newManualMetrics(t)
	ctx := context.Background()

	m.RecordBinding(ctx, "request", "ok", 10*time.Millisecond)
	m.RecordBinding(ctx, "request", "ok", 20*time.Millisecond)
	m.RecordDispatch(ctx, "json", "chain")
	m.RecordError(ctx, "INVALID_ARGUMENT", "request")

	got := collect(t, reader)
	require.Contains(t, got, MetricBindingTotal)
	require.Contains(t, got, MetricBindingDuration)
	require.Contains(t, got, MetricDispatch)
	require.Contains(t, got, MetricBindingErrors)

	total := got[MetricBindingTotal].Data.(metricdata.Sum[int64])
	require.Len(t, total.DataPoints, 1)
	assert.Equal(t, int64(2), total.DataPoints[0].Value)
	stage, _ := total.DataPoints[0].Attributes.Value(attribute.Key(AttrStage))
	assert.Equal(t, "request", stage.AsString())

	hist := got[MetricBindingDuration].Data.(metricdata.Histogram[float64])
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
}

func TestPassSuccess(t *testing.T) {
	exporter := installRecorder(t)
	m, reader := newManualMetrics(t)

	ctx, pass := StartPass(context.Background(), "request", SpanBindRequest, m,
		attribute.String(AttrModelType, "Widget"))
	pass.SetAttributes(attribute.String(AttrMethod, "GET"))
	assert.True(t, pass.Span().SpanContext().IsValid())
	pass.End(ctx, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, SpanBindRequest, spans[0].Name)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)

	got := collect(t, reader)
	assert.Contains(t, got, MetricBindingTotal)
	assert.NotContains(t, got, MetricBindingErrors)
}

func TestPassError(t *testing.T) {
	exporter := installRecorder(t)
	m, reader := newManualMetrics(t)

	ctx, pass := StartPass(context.Background(), "response", SpanBindResponse, m)
	pass.End(ctx, errors.ArgumentNull("resultType"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)

	var code string
	for _, kv := range spans[0].Attributes {
		if kv.Key == AttrErrorCode {
			code = kv.Value.AsString()
		}
	}
	assert.Equal(t, "ARGUMENT_NULL", code)

	errs := collect(t, reader)[MetricBindingErrors].Data.(metricdata.Sum[int64])
	require.Len(t, errs.DataPoints, 1)
	assert.Equal(t, int64(1), errs.DataPoints[0].Value)
}

func TestPassPlainErrorNilMetrics(t *testing.T) {
	exporter := installRecorder(t)

	ctx, pass := StartPass(context.Background(), "send", SpanSend, nil)
	pass.End(ctx, fmt.Errorf("plain"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.GreaterOrEqual(t, pass.Duration(), time.Duration(0))
}

func TestSpanHelpers(t *testing.T) {
	exporter := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "attrs")
	SetSpanAttribute(ctx, "string-key", "value")
	SetSpanAttribute(ctx, "int-key", 42)
	SetSpanAttribute(ctx, "int64-key", int64(100))
	SetSpanAttribute(ctx, "bool-key", true)
	SetSpanAttribute(ctx, "slice-key", []string{"a", "b"})
	SetSpanAttribute(ctx, "ignored", struct{}{})
	SetSpanError(ctx, fmt.Errorf("test error"))
	assert.Same(t, span, SpanFromContext(ctx))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Len(t, spans[0].Attributes, 5)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestSpanHelpersWithoutSpan(t *testing.T) {
	ctx := context.Background()
	SetSpanAttribute(ctx, "key", "value")
	SetSpanError(ctx, fmt.Errorf("no span"))
	assert.NotNil(t, Tracer("t"))
	assert.NotNil(t, Meter("m"))
}

func TestNewResource(t *testing.T) {
	res, err := newResource("svc", "2.0.0", "test")
	require.NoError(t, err)

	v, ok := res.Set().Value(attribute.Key(AttrServiceName))
	require.True(t, ok)
	assert.Equal(t, "svc", v.AsString())
}

func TestInitTracer(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	for _, rate := range []float64{1.0, 0.0, 0.5} {
		cfg := DefaultTracerConfig("test")
		cfg.SampleRate = rate
		tp, err := InitTracer(context.Background(), &cfg)
		require.NoError(t, err)
		_ = tp.Shutdown(context.Background())
	}
}

func TestInitMeter(t *testing.T) {
	prev := otel.GetMeterProvider()
	defer otel.SetMeterProvider(prev)

	cfg := DefaultMeterConfig("test")
	mp, err := InitMeter(context.Background(), &cfg)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = mp.Shutdown(ctx)
}
