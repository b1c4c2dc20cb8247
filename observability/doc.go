// Package observability installs OpenTelemetry tracing and metrics
// exporters for gofetch.
//
// The xhr package instruments every transport call against the global
// providers, so nothing is exported unless Setup (or InitTracer and
// InitMeter) runs first.
//
//	shutdown, err := observability.Setup(ctx, observability.DefaultConfig("gofetch", version.Version))
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanRun)
//	defer span.End()
package observability
