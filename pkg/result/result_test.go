package result

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSuccessAndFailureGuards(t *testing.T) {
	ok := SuccessWith(map[string]any{"id": "u1"}, 0.92, "exact match")
	if !ok.IsSuccess() || ok.IsFailure() {
		t.Fatalf("success result misclassified")
	}
	if ok.Confidence == nil || *ok.Confidence != 0.92 {
		t.Errorf("confidence = %v, want 0.92", ok.Confidence)
	}

	fail := Failure(NotFound("user", "u404"))
	if fail.IsSuccess() || !fail.IsFailure() {
		t.Fatalf("failure result misclassified")
	}
	if fail.Error.Code != CodeNotFound {
		t.Errorf("code = %q, want %q", fail.Error.Code, CodeNotFound)
	}

	var nilResult *CommandResult
	if nilResult.IsSuccess() {
		t.Errorf("nil result must not report success")
	}
}

func TestErrorBuilders(t *testing.T) {
	e := Validation("email", "missing @").
		WithRetryable(false).
		WithDetails(map[string]any{"got": "bob"}).
		WithCause(NewError("PARSE_ERROR", "tokenizer failed"))

	if e.Code != CodeValidationError {
		t.Errorf("code = %q", e.Code)
	}
	if e.Details["field"] != "email" || e.Details["got"] != "bob" {
		t.Errorf("details merged wrong: %v", e.Details)
	}
	if e.Cause == nil || e.Cause.Code != "PARSE_ERROR" {
		t.Errorf("cause not attached: %v", e.Cause)
	}
	if !strings.Contains(e.Error(), "VALIDATION_ERROR") {
		t.Errorf("Error() = %q", e.Error())
	}

	if !RateLimited(500).Retryable {
		t.Errorf("rate limited must be retryable")
	}
	if !Timeout("fetch", 1000).Retryable {
		t.Errorf("timeout must be retryable")
	}
}

func TestJSONShape(t *testing.T) {
	r := Success(map[string]any{"n": 1}).
		WithConfidence(0.5).
		AddWarning(Warn("STALE_DATA", "cache is 2h old")).
		Stamp("trace-1", "1.0.0", 42*time.Millisecond)

	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["success"] != true {
		t.Errorf("success key missing or false")
	}
	if _, present := m["error"]; present {
		t.Errorf("error must be omitted on success")
	}
	meta, ok := m["metadata"].(map[string]any)
	if !ok {
		t.Fatalf("metadata missing")
	}
	if meta["executionTimeMs"] != float64(42) {
		t.Errorf("executionTimeMs = %v", meta["executionTimeMs"])
	}
	if meta["traceId"] != "trace-1" {
		t.Errorf("traceId = %v", meta["traceId"])
	}
}
