package emit

// NullEmitter discards all events. It is the default when no emitter is
// configured, keeping event emission unconditional in the orchestrator.
type NullEmitter struct{}

// NewNullEmitter creates a NullEmitter.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards the event.
func (n *NullEmitter) Emit(event Event) {}
