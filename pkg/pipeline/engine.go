package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/afd-framework/afd-go/pkg/pipeline/trace"
	"github.com/afd-framework/afd-go/pkg/result"
)

// Executor invokes a single command. The engine trusts it to validate
// input and return a structured failure (VALIDATION_ERROR and friends)
// rather than a Go error; a returned error is a contract violation and
// is converted into a STEP_EXECUTION_ERROR step failure.
type Executor interface {
	Execute(ctx context.Context, command string, input any, call Call) (*result.CommandResult, error)
}

// Call carries per-invocation bookkeeping to the executor.
type Call struct {
	TraceID   string
	StepIndex int
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, command string, input any, call Call) (*result.CommandResult, error)

func (f ExecutorFunc) Execute(ctx context.Context, command string, input any, call Call) (*result.CommandResult, error) {
	return f(ctx, command, input, call)
}

// Config configures an Engine.
type Config struct {
	// Executor handles every step invocation. Required.
	Executor Executor
	// Stdout receives human-readable progress lines. Defaults to
	// io.Discard for library use; the CLI passes os.Stderr.
	Stdout io.Writer
	// Trace, when set, receives JSONL run events.
	Trace *trace.Writer
	// StrictRefs forces strict reference resolution for every run,
	// regardless of per-request options.
	StrictRefs bool
}

// Engine executes pipelines sequentially against an injected Executor.
// Engines are stateless between runs and safe for concurrent use; all
// per-run state lives in the StepContext.
type Engine struct {
	cfg Config
}

// New builds an Engine.
func New(cfg Config) *Engine {
	if cfg.Stdout == nil {
		cfg.Stdout = io.Discard
	}
	return &Engine{cfg: cfg}
}

// Run executes a pipeline request. The returned error covers only a
// malformed request or a missing executor; every step-level failure is
// captured inside the Result — partial success is a first-class
// outcome, not an error.
func (e *Engine) Run(ctx context.Context, req *Request) (*Result, error) {
	if e.cfg.Executor == nil {
		return nil, fmt.Errorf("pipeline: no executor configured")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: invalid request: %w", err)
	}

	runID := req.ID
	if runID == "" {
		runID = uuid.NewString()
	}
	start := time.Now()
	sctx := NewStepContext(req.Input)
	steps := make([]StepResult, 0, len(req.Steps))

	e.cfg.Trace.Emit(runID, trace.EventRunStart, map[string]any{
		"steps":     len(req.Steps),
		"timeoutMs": req.Options.TimeoutMs,
	})

	timedOut := false
	failedStep := -1
	var lastSuccess any
	haveSuccess := false

	for i := range req.Steps {
		step := &req.Steps[i]

		if !timedOut && req.Options.TimeoutMs > 0 &&
			time.Since(start).Milliseconds() > req.Options.TimeoutMs {
			timedOut = true
		}

		sr := e.runStep(ctx, runID, i, step, sctx, req.Options, timedOut, failedStep)

		sctx.Record(step.As, sr.Data, sr.Status != StatusSkipped)
		if sr.Status == StatusFailure {
			failedStep = i
		}
		if sr.Status == StatusSuccess {
			lastSuccess = sr.Data
			haveSuccess = true
		}
		steps = append(steps, sr)

		e.printStep(&sr)
		e.cfg.Trace.Emit(runID, trace.EventStepComplete, map[string]any{
			"index":      i,
			"command":    step.Command,
			"status":     sr.Status,
			"durationMs": sr.ExecutionTimeMs,
		})
	}

	meta := aggregate(steps, len(req.Steps))
	meta.ExecutionTimeMs = time.Since(start).Milliseconds()

	e.cfg.Trace.Emit(runID, trace.EventRunComplete, map[string]any{
		"completedSteps":  meta.CompletedSteps,
		"totalSteps":      meta.TotalSteps,
		"executionTimeMs": meta.ExecutionTimeMs,
	})

	res := &Result{ID: runID, Steps: steps, Metadata: meta}
	if haveSuccess {
		res.Data = lastSuccess
	}
	return res, nil
}

// runStep applies the per-step state machine: budget check, upstream
// failure propagation, when-guard, then execution. Order matters and
// each early exit produces a StepResult so output parity with the
// request is preserved.
func (e *Engine) runStep(ctx context.Context, runID string, index int, step *Step, sctx *StepContext, opts Options, timedOut bool, failedStep int) StepResult {
	sr := StepResult{Index: index, Command: step.Command, Alias: step.As}

	if timedOut {
		sr.Status = StatusSkipped
		sr.Error = result.NewError(result.CodePipelineTimeout,
			fmt.Sprintf("pipeline budget of %dms exceeded before step %d", opts.TimeoutMs, index))
		return sr
	}

	if failedStep >= 0 && !opts.ContinueOnFailure {
		sr.Status = StatusSkipped
		sr.Error = result.NewError(result.CodeCommandSkipped,
			fmt.Sprintf("skipped because step %d failed", failedStep)).
			WithSuggestion("set options.continueOnFailure to run later steps despite failures")
		return sr
	}

	runIt, err := Evaluate(step.When, sctx)
	if err != nil {
		sr.Status = StatusFailure
		sr.Error = result.NewError(result.CodeStepExecution,
			fmt.Sprintf("when condition: %v", err))
		return sr
	}
	if !runIt {
		// Deliberate skip: no error attached.
		sr.Status = StatusSkipped
		return sr
	}

	input, unresolved := ResolveValue(step.Input, sctx)
	if len(unresolved) > 0 && (opts.StrictRefs || e.cfg.StrictRefs) {
		sr.Status = StatusFailure
		sr.Error = result.NewError(result.CodeInvalidReference,
			fmt.Sprintf("unresolved reference %q", unresolved[0])).
			WithDetails(map[string]any{"references": unresolved}).
			WithSuggestion("check step order, aliases and paths, or unset strictRefs to substitute null")
		return sr
	}

	e.cfg.Trace.Emit(runID, trace.EventStepStart, map[string]any{
		"index":   index,
		"command": step.Command,
	})

	began := time.Now()
	res, err := e.invoke(ctx, step.Command, input, Call{TraceID: runID, StepIndex: index})
	sr.ExecutionTimeMs = time.Since(began).Milliseconds()

	if err != nil {
		sr.Status = StatusFailure
		sr.Error = result.NewError(result.CodeStepExecution,
			fmt.Sprintf("command %q: %v", step.Command, err))
		return sr
	}

	if res.Success {
		sr.Status = StatusSuccess
		sr.Data = res.Data
	} else {
		sr.Status = StatusFailure
		sr.Error = res.Error
		if sr.Error == nil {
			sr.Error = result.Internal(fmt.Sprintf("command %q reported failure without error detail", step.Command))
		}
	}
	sr.Confidence = res.Confidence
	sr.Reasoning = res.Reasoning
	sr.Warnings = res.Warnings
	sr.Sources = res.Sources
	sr.Alternatives = res.Alternatives
	return sr
}

// invoke shields the run from a misbehaving executor: a panic or a nil
// result is downgraded to an error the caller reports as a step
// failure.
func (e *Engine) invoke(ctx context.Context, command string, input any, call Call) (res *result.CommandResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	res, err = e.cfg.Executor.Execute(ctx, command, input, call)
	if err == nil && res == nil {
		err = fmt.Errorf("executor returned no result")
	}
	return res, err
}

func (e *Engine) printStep(sr *StepResult) {
	switch sr.Status {
	case StatusSuccess:
		fmt.Fprintf(e.cfg.Stdout, "  ✓ [%d] %s (%dms)\n", sr.Index, sr.Command, sr.ExecutionTimeMs)
	case StatusFailure:
		fmt.Fprintf(e.cfg.Stdout, "  ✗ [%d] %s: %s\n", sr.Index, sr.Command, sr.Error.Message)
	case StatusSkipped:
		reason := "condition not met"
		if sr.Error != nil {
			reason = sr.Error.Code
		}
		fmt.Fprintf(e.cfg.Stdout, "  ⊘ [%d] %s (%s)\n", sr.Index, sr.Command, reason)
	}
}
