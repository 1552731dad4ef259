// Package server exposes a command registry and the pipeline engine
// over MCP (stdio), one tool per registered command plus the afd/*
// bootstrap tools agents use to discover the surface.
package server

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/afd-framework/afd-go/pkg/command"
	"github.com/afd-framework/afd-go/pkg/pipeline"
)

// Options configure the MCP server.
type Options struct {
	Name    string
	Version string
	// StrictRefs forces strict reference resolution for pipelines run
	// through the afd/pipeline tool.
	StrictRefs bool
}

// Server bundles the registry with its MCP surface.
type Server struct {
	reg  *command.Registry
	eng  *pipeline.Engine
	mcp  *server.MCPServer
	opts Options
}

// New builds the MCP server: every registered command becomes a tool
// carrying its own input schema, and the bootstrap tools (pipeline,
// batch, schema, help, docs) are added on top.
func New(reg *command.Registry, opts Options) *Server {
	if opts.Name == "" {
		opts.Name = "afd"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &Server{
		reg: reg,
		eng: pipeline.New(pipeline.Config{
			Executor:   reg.Executor(),
			StrictRefs: opts.StrictRefs,
		}),
		opts: opts,
	}
	s.mcp = server.NewMCPServer(
		opts.Name,
		opts.Version,
		server.WithToolCapabilities(true),
	)

	for _, def := range reg.List() {
		s.mcp.AddTool(commandTool(def), s.handleCommand(def.Name))
	}

	s.mcp.AddTool(
		mcp.NewToolWithRawSchema("afd/pipeline",
			"Execute a multi-step command pipeline with inter-step references and conditions",
			mustRawSchema[pipeline.Request]()),
		s.handlePipeline,
	)
	s.mcp.AddTool(
		mcp.NewToolWithRawSchema("afd/batch",
			"Execute independent commands in sequence with a shared budget",
			mustRawSchema[command.BatchRequest]()),
		s.handleBatch,
	)
	s.mcp.AddTool(
		mcp.NewTool("afd/schema",
			mcp.WithDescription("Return the JSON Schema of a command's input, or of the pipeline request when no command is given"),
			mcp.WithString("command", mcp.Description("Command name (optional)")),
		),
		s.handleSchema,
	)
	s.mcp.AddTool(
		mcp.NewTool("afd/help",
			mcp.WithDescription("List available commands grouped by category, with parameters"),
			mcp.WithString("category", mcp.Description("Only list this category (optional)")),
		),
		s.handleHelp,
	)
	s.mcp.AddTool(
		mcp.NewTool("afd/docs",
			mcp.WithDescription("Return the markdown reference for one command"),
			mcp.WithString("command", mcp.Required(), mcp.Description("Command name")),
		),
		s.handleDocs,
	)
	return s
}

// MCP returns the underlying MCP server, for embedding.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// commandTool builds the MCP tool for one registered command,
// reusing its JSON Schema as the tool input schema.
func commandTool(def *command.Definition) mcp.Tool {
	schema := def.InputSchema
	if schema == nil {
		schema = map[string]any{"type": "object"}
	}
	raw, _ := json.Marshal(schema)
	return mcp.NewToolWithRawSchema(def.Name, def.Description, raw)
}

func mustRawSchema[T any]() json.RawMessage {
	doc := command.MustInputSchema[T]()
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return raw
}
