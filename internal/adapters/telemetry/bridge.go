package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*LogBridge)(nil)

// LogBridge is a SpanProcessor that reports finished spans to the logger,
// so compile timings show up in the dev server output without any
// external collector.
type LogBridge struct {
	logger ports.Logger
}

// NewLogBridge creates a bridge forwarding span durations to the logger.
func NewLogBridge(logger ports.Logger) *LogBridge {
	return &LogBridge{logger: logger}
}

// OnStart implements sdktrace.SpanProcessor.
func (b *LogBridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs the span's name and wall time.
func (b *LogBridge) OnEnd(s sdktrace.ReadOnlySpan) {
	elapsed := s.EndTime().Sub(s.StartTime())
	b.logger.Info(fmt.Sprintf("%s (%s)", s.Name(), elapsed.Round(time.Millisecond)))
}

// Shutdown implements sdktrace.SpanProcessor.
func (b *LogBridge) Shutdown(_ context.Context) error { return nil }

// ForceFlush implements sdktrace.SpanProcessor.
func (b *LogBridge) ForceFlush(_ context.Context) error { return nil }

// Setup configures the global OpenTelemetry SDK to report spans through
// the bridge. It returns the provider so callers can shut it down.
func Setup(logger ports.Logger) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewLogBridge(logger)),
	)
	otel.SetTracerProvider(tp)
	return tp
}
