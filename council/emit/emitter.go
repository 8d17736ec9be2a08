// Package emit provides observability events for council deliberations.
//
// The council emits an event at every significant point of a run: stage
// dispatch, each model call settling, stage completion, and run completion.
// Emitters route those events to a backend — a log stream, OpenTelemetry
// spans, or nothing at all.
package emit

// Emitter receives observability events from a deliberation run.
//
// Implementations must be safe for concurrent use: model-call events fire
// from the goroutines running each call. They must not panic and should
// not block the run; a slow backend belongs behind a buffer.
type Emitter interface {
	Emit(event Event)
}
