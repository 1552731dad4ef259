package result

import "fmt"

// Standard error codes. SCREAMING_SNAKE to match the wire contract.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeCommandNotFound   = "COMMAND_NOT_FOUND"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeRateLimited       = "RATE_LIMITED"
	CodeTimeout           = "TIMEOUT"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeCommandSkipped    = "COMMAND_SKIPPED"
	CodePipelineTimeout   = "PIPELINE_TIMEOUT"
	CodeStepExecution     = "STEP_EXECUTION_ERROR"
	CodeInvalidReference  = "INVALID_REFERENCE"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeDependencyFailure = "DEPENDENCY_FAILURE"
)

// CommandError is the structured error carried inside a failed
// CommandResult. Suggestion tells the caller what to do next;
// Retryable tells it whether doing the same thing again can work.
type CommandError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Retryable  bool           `json:"retryable"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      *CommandError  `json:"cause,omitempty"`
}

// Error implements the error interface so a CommandError can cross
// boundaries that expect one.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a CommandError with an arbitrary code.
func NewError(code, message string) *CommandError {
	return &CommandError{Code: code, Message: message}
}

// NotFound builds a NOT_FOUND error for a resource.
func NotFound(resource, id string) *CommandError {
	return &CommandError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found: %s", resource, id),
		Suggestion: fmt.Sprintf("verify the %s identifier or list available entries first", resource),
	}
}

// Validation builds a VALIDATION_ERROR for a specific field.
func Validation(field, problem string) *CommandError {
	return &CommandError{
		Code:       CodeValidationError,
		Message:    fmt.Sprintf("invalid %s: %s", field, problem),
		Suggestion: fmt.Sprintf("fix the %q field and retry", field),
		Details:    map[string]any{"field": field},
	}
}

// RateLimited builds a retryable RATE_LIMITED error.
func RateLimited(retryAfterMs int64) *CommandError {
	return &CommandError{
		Code:       CodeRateLimited,
		Message:    "rate limit exceeded",
		Suggestion: fmt.Sprintf("retry after %dms", retryAfterMs),
		Retryable:  true,
		Details:    map[string]any{"retryAfterMs": retryAfterMs},
	}
}

// Timeout builds a retryable TIMEOUT error for an operation.
func Timeout(operation string, limitMs int64) *CommandError {
	return &CommandError{
		Code:       CodeTimeout,
		Message:    fmt.Sprintf("%s timed out after %dms", operation, limitMs),
		Suggestion: "retry, or increase the timeout budget",
		Retryable:  true,
	}
}

// Internal builds an INTERNAL_ERROR.
func Internal(message string) *CommandError {
	return &CommandError{
		Code:       CodeInternalError,
		Message:    message,
		Suggestion: "this is a bug in the command implementation; report it",
	}
}

// WithSuggestion sets the suggestion and returns e.
func (e *CommandError) WithSuggestion(s string) *CommandError {
	e.Suggestion = s
	return e
}

// WithRetryable marks the error retryable (or not) and returns e.
func (e *CommandError) WithRetryable(r bool) *CommandError {
	e.Retryable = r
	return e
}

// WithDetails merges details into the error and returns e.
func (e *CommandError) WithDetails(details map[string]any) *CommandError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithCause attaches an underlying error and returns e.
func (e *CommandError) WithCause(cause *CommandError) *CommandError {
	e.Cause = cause
	return e
}
