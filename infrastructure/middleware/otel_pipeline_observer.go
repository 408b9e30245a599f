package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-underwrite/internal/ports"
)

// OTelPipelineObserver implements the PipelineObserver interface using
// OpenTelemetry for distributed tracing and an optional metrics
// collector. Each pipeline stage becomes a child span carried through
// the stage's context, so concurrent requests never share span state.
type OTelPipelineObserver struct {
	tracer  trace.Tracer
	metrics ports.MetricsCollector
}

var _ ports.PipelineObserver = (*OTelPipelineObserver)(nil)

// NewOTelPipelineObserver creates an observer that traces pipeline
// stages. The metrics collector is optional; pass nil to trace only.
func NewOTelPipelineObserver(metrics ports.MetricsCollector) *OTelPipelineObserver {
	return &OTelPipelineObserver{
		tracer:  otel.Tracer("scoring-pipeline"),
		metrics: metrics,
	}
}

// StageStart opens a span for the stage and returns the context
// carrying it.
func (o *OTelPipelineObserver) StageStart(ctx context.Context, stage ports.Stage, records int) context.Context {
	ctx, _ = o.tracer.Start(ctx, "pipeline."+string(stage),
		trace.WithAttributes(
			attribute.String("pipeline.stage", string(stage)),
			attribute.Int("pipeline.records", records),
		),
	)
	return ctx
}

// StageEnd closes the stage span with its outcome and records stage
// latency and outcome counters.
func (o *OTelPipelineObserver) StageEnd(ctx context.Context, stage ports.Stage, records int, elapsed time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int64("pipeline.elapsed_us", elapsed.Microseconds()))

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "stage failed")
	} else {
		span.SetStatus(codes.Ok, "stage completed")
	}
	span.End()

	if o.metrics == nil {
		return
	}
	o.metrics.RecordLatency(string(stage), elapsed, map[string]string{"status": status})
	o.metrics.RecordCounter("underwrite_pipeline_stage_total", 1, map[string]string{
		"stage":  string(stage),
		"status": status,
	})
}
