package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// LogEmitter writes events to a writer, one per line.
//
// Two output modes:
//   - Text (default): human-readable "[msg] run=… stage=…" lines
//   - JSON: one JSON object per line, for machine consumption
//
// Writes are serialized, so a LogEmitter may be shared across the
// concurrent model calls of a stage.
type LogEmitter struct {
	mu       sync.Mutex
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter creates a LogEmitter writing to w (os.Stderr when nil).
func NewLogEmitter(w io.Writer, jsonMode bool) *LogEmitter {
	if w == nil {
		w = os.Stderr
	}
	return &LogEmitter{writer: w, jsonMode: jsonMode}
}

// Emit writes one event line. Write errors are swallowed: losing a log
// line must never fail a deliberation.
func (l *LogEmitter) Emit(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.jsonMode {
		data, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(l.writer, "%s\n", data)
		return
	}

	line := fmt.Sprintf("[%s] run=%s stage=%d", event.Msg, event.RunID, event.Stage)
	if event.Model != "" {
		line += " model=" + event.Model
	}
	if len(event.Meta) > 0 {
		if meta, err := json.Marshal(event.Meta); err == nil {
			line += " meta=" + string(meta)
		}
	}
	fmt.Fprintln(l.writer, line)
}
