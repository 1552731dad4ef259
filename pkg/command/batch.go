package command

import (
	"context"
	"fmt"
	"time"

	"github.com/afd-framework/afd-go/pkg/result"
)

// BatchCommand is one entry of a batch: independent invocations with
// no data flow between them (pipelines are the dependent form).
type BatchCommand struct {
	ID      string         `json:"id,omitempty"`
	Command string         `json:"command"`
	Input   map[string]any `json:"input,omitempty"`
}

// BatchOptions control batch failure propagation and budget.
type BatchOptions struct {
	ContinueOnError bool  `json:"continueOnError,omitempty"`
	TimeoutMs       int64 `json:"timeoutMs,omitempty"`
}

// BatchRequest is a set of commands executed in order.
type BatchRequest struct {
	Commands []BatchCommand `json:"commands"`
	Options  BatchOptions   `json:"options,omitempty"`
}

// BatchEntryResult pairs one command with its outcome.
type BatchEntryResult struct {
	ID         string                `json:"id,omitempty"`
	Command    string                `json:"command"`
	Result     *result.CommandResult `json:"result"`
	DurationMs int64                 `json:"durationMs"`
}

// BatchSummary totals a batch run.
type BatchSummary struct {
	Total             int      `json:"total"`
	Succeeded         int      `json:"succeeded"`
	Failed            int      `json:"failed"`
	Skipped           int      `json:"skipped"`
	AverageConfidence *float64 `json:"averageConfidence,omitempty"`
}

// BatchResult is the full batch outcome; Results always has one entry
// per requested command.
type BatchResult struct {
	Results         []BatchEntryResult `json:"results"`
	Summary         BatchSummary       `json:"summary"`
	ExecutionTimeMs int64              `json:"executionTimeMs"`
}

// ExecuteBatch runs commands sequentially. A failure stops the batch
// unless continueOnError is set; stopped entries report
// COMMAND_SKIPPED. The budget is checked between commands, like the
// pipeline engine's, and entries past the budget are skipped with
// PIPELINE_TIMEOUT.
func (r *Registry) ExecuteBatch(ctx context.Context, req *BatchRequest, cc Context) *BatchResult {
	started := time.Now()
	out := &BatchResult{Results: make([]BatchEntryResult, 0, len(req.Commands))}
	out.Summary.Total = len(req.Commands)

	stoppedAt := -1
	timedOut := false
	var confidenceSum float64
	var confidenceN int

	for i, bc := range req.Commands {
		entry := BatchEntryResult{ID: bc.ID, Command: bc.Command}

		if !timedOut && req.Options.TimeoutMs > 0 &&
			time.Since(started).Milliseconds() > req.Options.TimeoutMs {
			timedOut = true
		}

		switch {
		case timedOut:
			entry.Result = result.Failure(result.NewError(result.CodePipelineTimeout,
				fmt.Sprintf("batch budget of %dms exceeded before command %d", req.Options.TimeoutMs, i)))
			out.Summary.Skipped++
		case stoppedAt >= 0:
			entry.Result = result.Failure(result.NewError(result.CodeCommandSkipped,
				fmt.Sprintf("skipped because command %d (%s) failed", stoppedAt, req.Commands[stoppedAt].Command)).
				WithSuggestion("set options.continueOnError to run later commands despite failures"))
			out.Summary.Skipped++
		default:
			began := time.Now()
			entry.Result = r.Execute(ctx, bc.Command, bc.Input, cc)
			entry.DurationMs = time.Since(began).Milliseconds()
			if entry.Result.IsSuccess() {
				out.Summary.Succeeded++
			} else {
				out.Summary.Failed++
				if !req.Options.ContinueOnError {
					stoppedAt = i
				}
			}
			if entry.Result.Confidence != nil {
				confidenceSum += *entry.Result.Confidence
				confidenceN++
			}
		}
		out.Results = append(out.Results, entry)
	}

	if confidenceN > 0 {
		avg := confidenceSum / float64(confidenceN)
		out.Summary.AverageConfidence = &avg
	}
	out.ExecutionTimeMs = time.Since(started).Milliseconds()
	return out
}
