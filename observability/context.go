package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/httpbind/errors"
)

// Pass tracks one binding pass: a span plus the metrics recorded when it
// ends. A nil Metrics skips metric recording.
type Pass struct {
	Stage     string
	StartTime time.Time
	Metrics   *Metrics

	span trace.Span
}

// StartPass starts a span named spanName for stage.
func StartPass(ctx context.Context, stage, spanName string, metrics *Metrics, attrs ...attribute.KeyValue) (context.Context, *Pass) {
	ctx, span := StartSpan(ctx, spanName, trace.WithAttributes(attrs...))
	span.SetAttributes(attribute.String(AttrStage, stage))
	return ctx, &Pass{Stage: stage, StartTime: time.Now(), Metrics: metrics, span: span}
}

// Span returns the pass span.
func (p *Pass) Span() trace.Span { return p.span }

// SetAttributes adds attributes to the pass span.
func (p *Pass) SetAttributes(attrs ...attribute.KeyValue) {
	p.span.SetAttributes(attrs...)
}

// End ends the span and records the outcome. Error codes come from
// *errors.AppError when err carries one.
func (p *Pass) End(ctx context.Context, err error) {
	duration := time.Since(p.StartTime)
	status := "ok"
	if err != nil {
		status = "error"
		code := "UNKNOWN"
		if appErr, ok := errors.AsAppError(err); ok {
			code = string(appErr.Code)
		}
		p.span.RecordError(err)
		p.span.SetStatus(codes.Error, err.Error())
		p.span.SetAttributes(attribute.String(AttrErrorCode, code))
		if p.Metrics != nil {
			p.Metrics.RecordError(ctx, code, p.Stage)
		}
	}
	p.span.SetAttributes(attribute.String(AttrStatus, status))
	p.span.End()

	if p.Metrics != nil {
		p.Metrics.RecordBinding(ctx, p.Stage, status, duration)
	}
}

// Duration returns the elapsed time since the pass started.
func (p *Pass) Duration() time.Duration {
	return time.Since(p.StartTime)
}
