// Package result defines the structured envelope every command returns:
// data plus trust metadata (confidence, reasoning, sources, warnings,
// alternatives) and a machine-actionable error model. Nothing in this
// package panics or returns Go errors — failures are values.
package result

import "time"

// CommandResult is the uniform return envelope for all commands.
// Success and failure travel through the same shape so callers can
// branch on Success without type assertions or recover().
type CommandResult struct {
	Success      bool           `json:"success"`
	Data         any            `json:"data,omitempty"`
	Error        *CommandError  `json:"error,omitempty"`
	Confidence   *float64       `json:"confidence,omitempty"`
	Reasoning    string         `json:"reasoning,omitempty"`
	Sources      []Source       `json:"sources,omitempty"`
	Plan         []PlanStep     `json:"plan,omitempty"`
	Alternatives []Alternative  `json:"alternatives,omitempty"`
	Warnings     []Warning      `json:"warnings,omitempty"`
	Metadata     ResultMetadata `json:"metadata"`
}

// ResultMetadata carries execution bookkeeping stamped by the dispatcher.
type ResultMetadata struct {
	ExecutionTimeMs int64  `json:"executionTimeMs"`
	CommandVersion  string `json:"commandVersion,omitempty"`
	TraceID         string `json:"traceId,omitempty"`
	Timestamp       string `json:"timestamp,omitempty"`
}

// Success builds a successful result with data.
func Success(data any) *CommandResult {
	return &CommandResult{Success: true, Data: data}
}

// SuccessWith builds a successful result with data, a confidence score
// and a reasoning string.
func SuccessWith(data any, confidence float64, reasoning string) *CommandResult {
	return &CommandResult{
		Success:    true,
		Data:       data,
		Confidence: &confidence,
		Reasoning:  reasoning,
	}
}

// Failure builds a failed result wrapping err.
func Failure(err *CommandError) *CommandResult {
	return &CommandResult{Success: false, Error: err}
}

// IsSuccess reports whether r represents success. Safe on nil.
func (r *CommandResult) IsSuccess() bool { return r != nil && r.Success }

// IsFailure reports whether r represents failure. A nil result is a failure.
func (r *CommandResult) IsFailure() bool { return !r.IsSuccess() }

// WithConfidence sets the confidence score and returns r.
func (r *CommandResult) WithConfidence(c float64) *CommandResult {
	r.Confidence = &c
	return r
}

// WithReasoning sets the reasoning string and returns r.
func (r *CommandResult) WithReasoning(s string) *CommandResult {
	r.Reasoning = s
	return r
}

// AddSource appends a source citation and returns r.
func (r *CommandResult) AddSource(s Source) *CommandResult {
	r.Sources = append(r.Sources, s)
	return r
}

// AddWarning appends a warning and returns r.
func (r *CommandResult) AddWarning(w Warning) *CommandResult {
	r.Warnings = append(r.Warnings, w)
	return r
}

// Stamp fills the metadata block. Zero durations are recorded as 0, not
// omitted, so consumers can always read executionTimeMs.
func (r *CommandResult) Stamp(traceID, version string, elapsed time.Duration) *CommandResult {
	r.Metadata.ExecutionTimeMs = elapsed.Milliseconds()
	r.Metadata.CommandVersion = version
	r.Metadata.TraceID = traceID
	r.Metadata.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return r
}
