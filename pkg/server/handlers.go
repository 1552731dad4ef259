package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/afd-framework/afd-go/pkg/command"
	"github.com/afd-framework/afd-go/pkg/pipeline"
)

// handleCommand dispatches one registered command. Domain failures are
// encoded in the result JSON with IsError set; a Go error would abort
// the MCP call and lose the structured error.
func (s *Server) handleCommand(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := s.reg.Execute(ctx, name, req.GetArguments(), command.Context{
			TraceID: uuid.NewString(),
		})
		return jsonResult(res, res.IsFailure()), nil
	}
}

// handlePipeline implements the afd/pipeline tool.
func (s *Server) handlePipeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var preq pipeline.Request
	if err := decodeArguments(req.GetArguments(), &preq); err != nil {
		return errorResult(fmt.Sprintf("invalid pipeline request: %v", err)), nil
	}

	res, err := s.eng.Run(ctx, &preq)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	isErr := len(res.Steps) > 0 && res.Metadata.CompletedSteps == 0
	return jsonResult(res, isErr), nil
}

// handleBatch implements the afd/batch tool.
func (s *Server) handleBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var breq command.BatchRequest
	if err := decodeArguments(req.GetArguments(), &breq); err != nil {
		return errorResult(fmt.Sprintf("invalid batch request: %v", err)), nil
	}

	out := s.reg.ExecuteBatch(ctx, &breq, command.Context{TraceID: uuid.NewString()})
	isErr := out.Summary.Total > 0 && out.Summary.Succeeded == 0
	return jsonResult(out, isErr), nil
}

// handleSchema implements the afd/schema tool.
func (s *Server) handleSchema(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := req.GetArguments()["command"].(string)
	if name == "" {
		data, err := command.ReflectSchema(&pipeline.Request{},
			"https://github.com/afd-framework/afd-go/schemas/pipeline-request.json",
			"Pipeline Request",
			"A multi-step command pipeline with references and conditions")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return textResult(string(data)), nil
	}

	def, ok := s.reg.Get(name)
	if !ok {
		return errorResult(fmt.Sprintf("unknown command %q — use afd/help to list commands", name)), nil
	}
	schema := def.InputSchema
	if schema == nil {
		schema = map[string]any{"type": "object"}
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

// handleHelp implements the afd/help tool.
func (s *Server) handleHelp(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	only, _ := req.GetArguments()["category"].(string)

	type entry struct {
		Name        string              `json:"name"`
		Description string              `json:"description"`
		Mutating    bool                `json:"mutating,omitempty"`
		Parameters  []command.Parameter `json:"parameters,omitempty"`
	}
	groups := map[string][]entry{}
	for category, defs := range s.reg.ListByCategory() {
		if only != "" && category != only {
			continue
		}
		for _, def := range defs {
			groups[category] = append(groups[category], entry{
				Name:        def.Name,
				Description: def.Description,
				Mutating:    def.Mutating,
				Parameters:  command.SchemaParameters(def.InputSchema),
			})
		}
	}
	if only != "" && len(groups) == 0 {
		return errorResult(fmt.Sprintf("no commands in category %q", only)), nil
	}
	return jsonResult(map[string]any{
		"server":   s.opts.Name,
		"version":  s.opts.Version,
		"commands": groups,
	}, false), nil
}

// handleDocs implements the afd/docs tool. Raw markdown: terminal
// styling belongs to the CLI, not the wire.
func (s *Server) handleDocs(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := req.GetArguments()["command"].(string)
	def, ok := s.reg.Get(name)
	if !ok {
		return errorResult(fmt.Sprintf("unknown command %q — use afd/help to list commands", name)), nil
	}
	return textResult(command.MarkdownDoc(def)), nil
}

// decodeArguments round-trips tool arguments through JSON into a typed
// request, so the wire shapes match what the engine expects.
func decodeArguments(args map[string]any, into any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, into)
}

func jsonResult(v any, isError bool) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("encode response: %v", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
		IsError: isError,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(msg)},
		IsError: true,
	}
}
