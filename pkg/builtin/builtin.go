// Package builtin wires the stock command set shipped with the afd
// binaries: enough surface to exercise pipelines, batches and the MCP
// tools without an application registry plugged in.
package builtin

import (
	"context"
	"strings"
	"time"

	"github.com/afd-framework/afd-go/pkg/command"
	"github.com/afd-framework/afd-go/pkg/result"
)

type echoInput struct {
	Message string `json:"message" jsonschema:"required,description=Text to echo back"`
	Repeat  int    `json:"repeat,omitempty" jsonschema:"description=Repeat count (default 1)"`
}

type sleepInput struct {
	DurationMs int64 `json:"durationMs" jsonschema:"required,description=How long to sleep"`
}

type failInput struct {
	Code    string `json:"code,omitempty" jsonschema:"description=Error code to fail with"`
	Message string `json:"message,omitempty"`
}

// Registry builds a registry with the stock commands registered.
func Registry(version string) *command.Registry {
	reg := command.NewRegistry()

	reg.MustRegister(&command.Definition{
		Name:        "echo",
		Description: "Echo a message back, optionally repeated",
		Category:    "demo",
		Version:     version,
		InputSchema: command.MustInputSchema[echoInput](),
		Handler: func(_ context.Context, input map[string]any, _ command.Context) *result.CommandResult {
			msg, _ := input["message"].(string)
			repeat := 1
			if n, ok := input["repeat"].(float64); ok && n > 1 {
				repeat = int(n)
			}
			return result.SuccessWith(map[string]any{
				"echo": strings.TrimSpace(strings.Repeat(msg+" ", repeat)),
			}, 1.0, "deterministic echo")
		},
	})

	reg.MustRegister(&command.Definition{
		Name:        "sleep",
		Description: "Sleep for a duration, for exercising pipeline budgets",
		Category:    "demo",
		Version:     version,
		InputSchema: command.MustInputSchema[sleepInput](),
		Handler: func(ctx context.Context, input map[string]any, _ command.Context) *result.CommandResult {
			ms, _ := input["durationMs"].(float64)
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
				return result.Success(map[string]any{"sleptMs": ms})
			case <-ctx.Done():
				return result.Failure(result.Timeout("sleep", int64(ms)))
			}
		},
	})

	reg.MustRegister(&command.Definition{
		Name:        "fail",
		Description: "Fail with a chosen error code, for exercising skip propagation",
		Category:    "demo",
		Version:     version,
		InputSchema: command.MustInputSchema[failInput](),
		ErrorCodes:  []string{result.CodeInternalError},
		Handler: func(_ context.Context, input map[string]any, _ command.Context) *result.CommandResult {
			code, _ := input["code"].(string)
			if code == "" {
				code = result.CodeInternalError
			}
			msg, _ := input["message"].(string)
			if msg == "" {
				msg = "failed on request"
			}
			return result.Failure(result.NewError(code, msg))
		},
	})

	reg.MustRegister(&command.Definition{
		Name:        "now",
		Description: "Return the current UTC time",
		Category:    "demo",
		Version:     version,
		Handler: func(_ context.Context, _ map[string]any, _ command.Context) *result.CommandResult {
			return result.Success(map[string]any{
				"utc": time.Now().UTC().Format(time.RFC3339),
			})
		},
	})

	return reg
}
