// Package scenario provides the YAML scenario test runner: canned
// command responses are replayed through the real pipeline engine and
// the outcome is checked against declared expectations. Scenario
// directories live next to the pipeline file they exercise.
package scenario

// Info describes one discovered scenario directory.
type Info struct {
	Name      string // directory name
	Dir       string // absolute path
	HasExpect bool   // whether expect.yaml exists
}

// Assertion is one evaluated expectation.
type Assertion struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// TestResult is the outcome of one scenario.
type TestResult struct {
	Pipeline   string      `json:"pipeline"`
	Scenario   string      `json:"scenario"`
	Dir        string      `json:"dir,omitempty"`
	Status     string      `json:"status"` // passed, failed, skipped, error
	Error      string      `json:"error,omitempty"`
	Assertions []Assertion `json:"assertions,omitempty"`
	DurationMs int64       `json:"durationMs"`
}

// TestSummary totals a run.
type TestSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// TestOutput is the full report for one pipeline's scenarios.
type TestOutput struct {
	Pipeline  string       `json:"pipeline"`
	Scenarios []TestResult `json:"scenarios"`
	Summary   TestSummary  `json:"summary"`
}

// Expect is the declarative expectation spec (expect.yaml).
type Expect struct {
	// Steps lists the expected status per step, in order. Entries may
	// be "" to accept any status for that position.
	Steps []string `yaml:"steps,omitempty"`
	// ErrorCodes maps step index to the expected error code.
	ErrorCodes map[int]string `yaml:"errorCodes,omitempty"`
	// Data asserts a subset of the final pipeline data: every listed
	// dotted path must resolve to the given value.
	Data map[string]any `yaml:"data,omitempty"`
	// Confidence bounds the aggregate confidence (inclusive).
	Confidence *ConfidenceBounds `yaml:"confidence,omitempty"`
	// CompletedSteps pins metadata.completedSteps when set.
	CompletedSteps *int `yaml:"completedSteps,omitempty"`
}

// ConfidenceBounds is an inclusive range check.
type ConfidenceBounds struct {
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`
}
