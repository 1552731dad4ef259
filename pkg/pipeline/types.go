// Package pipeline implements the multi-step command execution engine:
// an ordered list of step descriptors whose inputs may reference earlier
// step outputs ($prev, $first, $steps[n], $steps.alias, $input), guarded
// by when-conditions, executed sequentially under a wall-clock budget,
// with trust metadata aggregated across the run.
//
// The engine never invokes commands itself; it is handed an Executor at
// construction and trusts it to validate inputs and return structured
// failures instead of panicking.
package pipeline

import (
	"fmt"

	"github.com/afd-framework/afd-go/pkg/result"
)

// Request is one pipeline invocation. Immutable once handed to Run.
type Request struct {
	ID      string  `json:"id,omitempty" yaml:"id,omitempty"`
	Input   any     `json:"input,omitempty" yaml:"input,omitempty"`
	Steps   []Step  `json:"steps" yaml:"steps"`
	Options Options `json:"options,omitempty" yaml:"options,omitempty"`
}

// Options control failure propagation and the run budget.
type Options struct {
	// ContinueOnFailure lets later steps run after an earlier failure
	// instead of the default stop-and-skip.
	ContinueOnFailure bool `json:"continueOnFailure,omitempty" yaml:"continueOnFailure,omitempty"`
	// TimeoutMs is the wall-clock budget for the whole run, checked
	// between steps. Zero means no budget.
	TimeoutMs int64 `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
	// StrictRefs fails a step with INVALID_REFERENCE when its input
	// contains a reference that does not resolve, instead of
	// substituting null and running anyway.
	StrictRefs bool `json:"strictRefs,omitempty" yaml:"strictRefs,omitempty"`
}

// Step is one command invocation within a pipeline.
type Step struct {
	Command string     `json:"command" yaml:"command"`
	Input   any        `json:"input,omitempty" yaml:"input,omitempty"`
	As      string     `json:"as,omitempty" yaml:"as,omitempty"`
	When    *Condition `json:"when,omitempty" yaml:"when,omitempty"`
}

// Condition is the when-predicate tree. Exactly one field should be set
// per node; zero-valued nodes evaluate to true (no-op guard).
type Condition struct {
	Exists string       `json:"$exists,omitempty" yaml:"$exists,omitempty"`
	Eq     []any        `json:"$eq,omitempty" yaml:"$eq,omitempty"`
	Ne     []any        `json:"$ne,omitempty" yaml:"$ne,omitempty"`
	Gt     []any        `json:"$gt,omitempty" yaml:"$gt,omitempty"`
	Gte    []any        `json:"$gte,omitempty" yaml:"$gte,omitempty"`
	Lt     []any        `json:"$lt,omitempty" yaml:"$lt,omitempty"`
	Lte    []any        `json:"$lte,omitempty" yaml:"$lte,omitempty"`
	And    []Condition  `json:"$and,omitempty" yaml:"$and,omitempty"`
	Or     []Condition  `json:"$or,omitempty" yaml:"$or,omitempty"`
	Not    *Condition   `json:"$not,omitempty" yaml:"$not,omitempty"`
	Expr   string       `json:"$expr,omitempty" yaml:"$expr,omitempty"`
}

// Step statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

// StepResult is the per-step outcome. Exactly one of Data/Error is set
// when Status is success/failure; a deliberate condition-skip carries
// neither.
type StepResult struct {
	Index           int                  `json:"index"`
	Command         string               `json:"command"`
	Alias           string               `json:"alias,omitempty"`
	Status          string               `json:"status"`
	Data            any                  `json:"data,omitempty"`
	Error           *result.CommandError `json:"error,omitempty"`
	ExecutionTimeMs int64                `json:"executionTimeMs"`
	Confidence      *float64             `json:"confidence,omitempty"`
	Reasoning       string               `json:"reasoning,omitempty"`
	Warnings        []result.Warning     `json:"warnings,omitempty"`
	Sources         []result.Source      `json:"sources,omitempty"`
	Alternatives    []result.Alternative `json:"alternatives,omitempty"`
}

// Result is the pipeline outcome. Steps always has one entry per
// request step, in order; Data is the last successful step's data.
type Result struct {
	ID       string       `json:"id,omitempty"`
	Data     any          `json:"data,omitempty"`
	Steps    []StepResult `json:"steps"`
	Metadata Metadata     `json:"metadata"`
}

// Metadata is the aggregated trust metadata for a run.
type Metadata struct {
	Confidence          *float64          `json:"confidence,omitempty"`
	ConfidenceBreakdown []ConfidenceEntry `json:"confidenceBreakdown"`
	Reasoning           []ReasoningEntry  `json:"reasoning"`
	Warnings            []StepWarning     `json:"warnings"`
	Sources             []StepSource      `json:"sources,omitempty"`
	Alternatives        []StepAlternative `json:"alternatives,omitempty"`
	CompletedSteps      int               `json:"completedSteps"`
	TotalSteps          int               `json:"totalSteps"`
	ExecutionTimeMs     int64             `json:"executionTimeMs"`
}

// ConfidenceEntry is one row of the confidence audit trail.
type ConfidenceEntry struct {
	StepIndex  int     `json:"stepIndex"`
	Command    string  `json:"command"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// ReasoningEntry attributes one step's reasoning string.
type ReasoningEntry struct {
	StepIndex int    `json:"stepIndex"`
	Command   string `json:"command"`
	Reasoning string `json:"reasoning"`
}

// StepWarning is a step's warning tagged with its origin.
type StepWarning struct {
	StepIndex int `json:"stepIndex"`
	result.Warning
}

// StepSource is a step's source citation tagged with its origin.
type StepSource struct {
	StepIndex int `json:"stepIndex"`
	result.Source
}

// StepAlternative is a step's alternative tagged with its origin.
type StepAlternative struct {
	StepIndex int `json:"stepIndex"`
	result.Alternative
}

// Validate rejects structurally malformed requests before any step
// runs. An empty step list is valid and yields an empty result.
func (r *Request) Validate() error {
	if r == nil {
		return fmt.Errorf("nil request")
	}
	if r.Options.TimeoutMs < 0 {
		return fmt.Errorf("options.timeoutMs must be >= 0, got %d", r.Options.TimeoutMs)
	}
	aliases := map[string]int{}
	for i, s := range r.Steps {
		if s.Command == "" {
			return fmt.Errorf("step %d: command is required", i)
		}
		if s.As != "" {
			if prior, dup := aliases[s.As]; dup {
				return fmt.Errorf("step %d: alias %q already used by step %d", i, s.As, prior)
			}
			aliases[s.As] = i
		}
	}
	return nil
}
