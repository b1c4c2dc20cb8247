package xhr

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/kbukum/gofetch/logger"
)

type rejectingMeter struct{ noop.Meter }

func (rejectingMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return nil, errors.New("counter rejected")
}

func (rejectingMeter) Float64Histogram(string, ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	return nil, errors.New("histogram rejected")
}

func TestNewInstruments_RejectedInstrumentsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json", Output: "stderr"}, "test", &buf)

	in := newInstruments(tracenoop.NewTracerProvider().Tracer("test"), rejectingMeter{}, log)

	out := buf.String()
	for _, want := range []string{"counter rejected", "histogram rejected", "xhr.requests", "xhr.request.duration"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in debug log, got %q", want, out)
		}
	}

	ctx, span := in.start(context.Background(), backendNetHTTP, Call{Method: "GET", URL: "http://example.com"}, "id")
	in.finish(ctx, span, backendNetHTTP, 200, "load", nil, time.Millisecond)
}

func TestNewInstruments_Quiet(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json", Output: "stderr"}, "test", &buf)

	in := newInstruments(tracenoop.NewTracerProvider().Tracer("test"), noop.NewMeterProvider().Meter("test"), log)
	if buf.Len() != 0 {
		t.Errorf("expected no log output, got %q", buf.String())
	}
	if in.requests == nil || in.duration == nil {
		t.Error("expected instruments")
	}
}
