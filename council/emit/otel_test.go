package emit

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer(t *testing.T) (*tracetest.InMemoryExporter, *OTelEmitter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, NewOTelEmitter(otel.Tracer("test"))
}

func TestOTelEmitter_Emit(t *testing.T) {
	exporter, emitter := newTestTracer(t)

	emitter.Emit(Event{
		RunID: "run-001",
		Stage: 2,
		Model: "openai/gpt-5.2-pro",
		Msg:   MsgModelCall,
		Meta: map[string]interface{}{
			"duration_ms": int64(840),
			"valid":       true,
		},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]

	if span.Name != MsgModelCall {
		t.Errorf("span name = %q, want %q", span.Name, MsgModelCall)
	}
	attrs := attributeMap(span.Attributes)
	if got := attrs["council.run_id"]; got != "run-001" {
		t.Errorf("run_id = %v, want run-001", got)
	}
	if got := attrs["council.stage"]; got != int64(2) {
		t.Errorf("stage = %v, want 2", got)
	}
	if got := attrs["council.model"]; got != "openai/gpt-5.2-pro" {
		t.Errorf("model = %v", got)
	}
	if got := attrs["council.duration_ms"]; got != int64(840) {
		t.Errorf("duration_ms = %v, want 840", got)
	}
	if got := attrs["council.valid"]; got != true {
		t.Errorf("valid = %v, want true", got)
	}
	if !span.EndTime.After(span.StartTime) {
		t.Error("span was not ended")
	}
}

func TestOTelEmitter_EmitWithError(t *testing.T) {
	exporter, emitter := newTestTracer(t)

	emitter.Emit(Event{
		RunID: "run-001",
		Stage: 1,
		Model: "anthropic/claude-opus-4.6",
		Msg:   MsgModelCall,
		Meta:  map[string]interface{}{"error": "upstream 502"},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]

	if span.Status.Code != codes.Error {
		t.Errorf("status code = %v, want %v", span.Status.Code, codes.Error)
	}
	if span.Status.Description != "upstream 502" {
		t.Errorf("status description = %q", span.Status.Description)
	}
	if len(span.Events) == 0 {
		t.Error("expected a recorded error event")
	}
}

func TestOTelEmitter_MetadataTypes(t *testing.T) {
	exporter, emitter := newTestTracer(t)

	emitter.Emit(Event{
		RunID: "run-001",
		Stage: 1,
		Msg:   MsgStageComplete,
		Meta: map[string]interface{}{
			"string_val":   "hello",
			"int_val":      42,
			"int64_val":    int64(99),
			"float64_val":  3.14,
			"bool_val":     true,
			"duration_val": 250 * time.Millisecond,
			"other_val":    []string{"a"},
		},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	attrs := attributeMap(spans[0].Attributes)

	if got := attrs["council.string_val"]; got != "hello" {
		t.Errorf("string_val = %v", got)
	}
	if got := attrs["council.int_val"]; got != int64(42) {
		t.Errorf("int_val = %v", got)
	}
	if got := attrs["council.int64_val"]; got != int64(99) {
		t.Errorf("int64_val = %v", got)
	}
	if got := attrs["council.float64_val"]; got != 3.14 {
		t.Errorf("float64_val = %v", got)
	}
	if got := attrs["council.bool_val"]; got != true {
		t.Errorf("bool_val = %v", got)
	}
	if got := attrs["council.duration_val"]; got != int64(250) {
		t.Errorf("duration_val = %v, want 250 ms", got)
	}
	if got := attrs["council.other_val"]; got != "[a]" {
		t.Errorf("other_val = %v, want stringified fallback", got)
	}
}

func TestOTelEmitter_NilMeta(t *testing.T) {
	exporter, emitter := newTestTracer(t)

	emitter.Emit(Event{RunID: "run-001", Stage: 0, Msg: MsgRunStart})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	attrs := attributeMap(spans[0].Attributes)
	if got := attrs["council.run_id"]; got != "run-001" {
		t.Errorf("run_id = %v", got)
	}
	if _, ok := attrs["council.model"]; ok {
		t.Error("model attribute present on a run-level event")
	}
}

func TestOTelEmitter_Flush(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	emitter := NewOTelEmitter(otel.Tracer("test"))
	emitter.Emit(Event{RunID: "run-001", Msg: MsgRunComplete})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := emitter.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if spans := exporter.GetSpans(); len(spans) != 1 {
		t.Errorf("expected 1 span after flush, got %d", len(spans))
	}
}

// attributeMap converts span attributes to map for easy testing.
func attributeMap(attrs []attribute.KeyValue) map[string]interface{} {
	m := make(map[string]interface{})
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value.AsInterface()
	}
	return m
}
