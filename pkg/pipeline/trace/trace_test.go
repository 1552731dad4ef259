package trace

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
)

func TestEmitWritesJSONL(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	if err := w.Emit("run-1", EventRunStart, map[string]any{"steps": 2}); err != nil {
		t.Fatal(err)
	}
	if err := w.Emit("run-1", EventStepComplete, map[string]any{"index": 0, "status": "success"}); err != nil {
		t.Fatal(err)
	}

	sc := bufio.NewScanner(&buf)
	var events []Event
	for sc.Scan() {
		var e Event
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line not JSON: %v", err)
		}
		events = append(events, e)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d", len(events))
	}
	if events[0].Type != EventRunStart || events[0].RunID != "run-1" || events[0].Timestamp == "" {
		t.Errorf("event 0 = %+v", events[0])
	}
	if events[1].Fields["status"] != "success" {
		t.Errorf("event 1 fields = %v", events[1].Fields)
	}
}

func TestNilWriterIsSafe(t *testing.T) {
	var w *Writer
	if err := w.Emit("run", EventRunComplete, nil); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}
