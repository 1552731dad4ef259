// Package command provides the registry and dispatch layer: named
// commands with JSON Schema input contracts, executed through one
// choke point that validates input, recovers panics, and stamps
// execution metadata, so every caller (pipeline engine, MCP server,
// CLI) sees identical semantics.
package command

import (
	"context"

	"github.com/afd-framework/afd-go/pkg/result"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// Handler is the implementation of one command. It receives the
// already-validated input object and must express failure through the
// returned CommandResult, never by panicking.
type Handler func(ctx context.Context, input map[string]any, cc Context) *result.CommandResult

// Context carries per-invocation bookkeeping into a handler.
type Context struct {
	TraceID   string
	TimeoutMs int64
	Extra     map[string]any
}

// Definition describes one registered command.
type Definition struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	Version     string   `json:"version,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	// Mutating marks commands with side effects, so agents can ask
	// before running them.
	Mutating bool `json:"mutating,omitempty"`
	// InputSchema is a JSON Schema document (as a decoded JSON value)
	// validated against every input before the handler runs.
	InputSchema map[string]any `json:"inputSchema,omitempty"`
	// ReturnsSchema documents the shape of Data on success.
	ReturnsSchema map[string]any `json:"returnsSchema,omitempty"`
	// ErrorCodes lists the codes this command can fail with.
	ErrorCodes []string `json:"errorCodes,omitempty"`
	Handler    Handler  `json:"-"`

	compiled *sjsonschema.Schema
}
