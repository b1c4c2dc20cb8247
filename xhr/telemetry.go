package xhr

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/gofetch/logger"
)

const instrumentationName = "github.com/kbukum/gofetch/xhr"

// instruments are resolved lazily against the global otel providers, so
// they pick up whatever observability.InitTracer/InitMeter installed.
type instruments struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

var telemetry = sync.OnceValue(func() *instruments {
	return newInstruments(otel.Tracer(instrumentationName), otel.Meter(instrumentationName), logger.WithComponent("xhr"))
})

// newInstruments creates the metric instruments. A meter that rejects an
// instrument is logged and replaced by a no-op so calls still succeed.
func newInstruments(tracer trace.Tracer, meter metric.Meter, log *logger.Logger) *instruments {
	requests, err := meter.Int64Counter("xhr.requests",
		metric.WithDescription("Completed transport calls by backend and outcome"))
	if err != nil {
		log.Debug("xhr instrument unavailable", logger.ErrorFields("xhr.requests", err))
	}
	if requests == nil {
		requests = noop.Int64Counter{}
	}
	duration, err := meter.Float64Histogram("xhr.request.duration",
		metric.WithDescription("Transport call duration"),
		metric.WithUnit("ms"))
	if err != nil {
		log.Debug("xhr instrument unavailable", logger.ErrorFields("xhr.request.duration", err))
	}
	if duration == nil {
		duration = noop.Float64Histogram{}
	}
	return &instruments{
		tracer:   tracer,
		requests: requests,
		duration: duration,
	}
}

func (in *instruments) start(ctx context.Context, backend string, c Call, callID string) (context.Context, trace.Span) {
	return in.tracer.Start(ctx, "xhr.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("xhr.backend", backend),
			attribute.String("xhr.call_id", callID),
			attribute.String("http.request.method", c.Method),
			attribute.String("url.full", c.URL),
			attribute.Bool("xhr.with_credentials", c.WithCredentials),
		))
}

// finish ends the span and records metrics. outcome is "load", "error" or
// "aborted".
func (in *instruments) finish(ctx context.Context, span trace.Span, backend string, status int, outcome string, err error, elapsed time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("xhr.backend", backend),
		attribute.String("xhr.outcome", outcome),
	}
	if status > 0 {
		attrs = append(attrs, attribute.String("http.response.status_code", strconv.Itoa(status)))
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil && outcome == "error" {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	in.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
	in.duration.Record(ctx, float64(elapsed.Microseconds())/1000, metric.WithAttributes(attrs...))
}
