// Package observability provides OpenTelemetry tracing and metrics for
// binding passes.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	metrics, err := observability.NewMetrics(observability.Meter("httpbind"))
//	binder := binding.NewRequestBinder(binding.WithMetrics(metrics))
//
// Every binding pass is wrapped in a Pass, which starts a span and records
// the pass outcome when it ends.
package observability
