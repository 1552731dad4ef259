// Package trace emits JSONL run events for pipeline executions, one
// object per line, suitable for tailing or post-hoc replay.
package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Event is one trace line.
type Event struct {
	Timestamp string         `json:"ts"`
	RunID     string         `json:"runId"`
	Type      string         `json:"type"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Event types emitted by the engine.
const (
	EventRunStart     = "run_start"
	EventStepStart    = "step_start"
	EventStepComplete = "step_complete"
	EventRunComplete  = "run_complete"
)

// Writer appends events to an underlying stream. Safe for use from a
// single run; the mutex guards interleaving when multiple runs share
// one file.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	c   io.Closer
	enc *json.Encoder
}

// New wraps an io.Writer.
func New(w io.Writer) *Writer {
	return &Writer{w: w, enc: json.NewEncoder(w)}
}

// Open creates (or truncates) a trace file.
func Open(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	tw := New(f)
	tw.c = f
	return tw, nil
}

// Emit writes one event. Errors are returned, not fatal: a broken
// trace sink must not abort the run it observes.
func (t *Writer) Emit(runID, eventType string, fields map[string]any) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enc.Encode(Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RunID:     runID,
		Type:      eventType,
		Fields:    fields,
	})
}

// Close closes the underlying file when the writer owns one.
func (t *Writer) Close() error {
	if t == nil || t.c == nil {
		return nil
	}
	return t.c.Close()
}
