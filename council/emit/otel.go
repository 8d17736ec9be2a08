package emit

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter turns each event into an OpenTelemetry span.
//
// Span name is the event message ("stage_complete", "model_call", …);
// run, stage, and model become "council.*" attributes, and Meta fields are
// attached as-is. Events carrying an "error" meta value get error status.
//
// Events are points in time, so each span is ended immediately; when Meta
// carries "duration_ms" the span still records it as an attribute rather
// than stretching the span.
//
// Usage:
//
//	tracer := otel.Tracer("council-go")
//	emitter := emit.NewOTelEmitter(tracer)
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter creates an OTelEmitter using the given tracer.
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

// Emit creates and ends one span for the event.
func (o *OTelEmitter) Emit(event Event) {
	_, span := o.tracer.Start(context.Background(), event.Msg)
	defer span.End()

	span.SetAttributes(
		attribute.String("council.run_id", event.RunID),
		attribute.Int("council.stage", event.Stage),
	)
	if event.Model != "" {
		span.SetAttributes(attribute.String("council.model", event.Model))
	}

	for key, value := range event.Meta {
		setAttribute(span, "council."+key, value)
	}

	if errMsg, ok := event.Meta["error"].(string); ok {
		span.SetStatus(codes.Error, errMsg)
		span.RecordError(fmt.Errorf("%s", errMsg))
	}
}

// Flush forces export of buffered spans; call before process exit.
func (o *OTelEmitter) Flush(ctx context.Context) error {
	type flusher interface {
		ForceFlush(context.Context) error
	}
	if f, ok := otel.GetTracerProvider().(flusher); ok {
		return f.ForceFlush(ctx)
	}
	return nil
}

func setAttribute(span trace.Span, key string, value interface{}) {
	switch v := value.(type) {
	case string:
		span.SetAttributes(attribute.String(key, v))
	case int:
		span.SetAttributes(attribute.Int(key, v))
	case int64:
		span.SetAttributes(attribute.Int64(key, v))
	case float64:
		span.SetAttributes(attribute.Float64(key, v))
	case bool:
		span.SetAttributes(attribute.Bool(key, v))
	case time.Duration:
		span.SetAttributes(attribute.Int64(key, int64(v/time.Millisecond)))
	default:
		span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}
