package server

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/afd-framework/afd-go/pkg/command"
	"github.com/afd-framework/afd-go/pkg/result"
)

func demoServer(t *testing.T) *Server {
	t.Helper()
	reg := command.NewRegistry()
	reg.MustRegister(&command.Definition{
		Name:        "user-get",
		Description: "Fetch a user",
		Category:    "users",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []any{"id"},
			"properties": map[string]any{
				"id": map[string]any{"type": "number", "description": "User id"},
			},
		},
		Handler: func(_ context.Context, input map[string]any, _ command.Context) *result.CommandResult {
			return result.SuccessWith(map[string]any{"id": input["id"], "tier": "premium"}, 0.9, "lookup")
		},
	})
	reg.MustRegister(&command.Definition{
		Name:        "always-fails",
		Description: "Fails on purpose",
		Handler: func(context.Context, map[string]any, command.Context) *result.CommandResult {
			return result.Failure(result.Internal("broken"))
		},
	})
	return New(reg, Options{Name: "afd-test", Version: "0.0.1"})
}

func contentText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type %T", res.Content[0])
	}
	return tc.Text
}

func TestHandleCommandSuccessAndFailure(t *testing.T) {
	s := demoServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"id": float64(1)}
	res, err := s.handleCommand("user-get")(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Errorf("expected success: %s", contentText(t, res))
	}
	if !strings.Contains(contentText(t, res), `"tier": "premium"`) {
		t.Errorf("payload = %s", contentText(t, res))
	}

	res, err = s.handleCommand("always-fails")(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("failed command must set IsError")
	}
	if !strings.Contains(contentText(t, res), result.CodeInternalError) {
		t.Errorf("structured error lost: %s", contentText(t, res))
	}
}

func TestHandlePipeline(t *testing.T) {
	s := demoServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"steps": []any{
			map[string]any{"command": "user-get", "input": map[string]any{"id": float64(1)}, "as": "user"},
			map[string]any{"command": "user-get", "input": map[string]any{"id": float64(2)},
				"when": map[string]any{"$eq": []any{"$steps.user.tier", "premium"}}},
		},
	}
	res, err := s.handlePipeline(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("pipeline failed: %s", contentText(t, res))
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(contentText(t, res)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	meta := out["metadata"].(map[string]any)
	if meta["completedSteps"] != float64(2) {
		t.Errorf("completedSteps = %v", meta["completedSteps"])
	}
}

func TestHandlePipelineAllFailuresIsError(t *testing.T) {
	s := demoServer(t)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"steps": []any{map[string]any{"command": "always-fails"}},
	}
	res, err := s.handlePipeline(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("a pipeline with no successful step must set IsError")
	}
}

func TestHandleBatch(t *testing.T) {
	s := demoServer(t)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"commands": []any{
			map[string]any{"command": "user-get", "input": map[string]any{"id": float64(1)}},
			map[string]any{"command": "always-fails"},
		},
		"options": map[string]any{"continueOnError": true},
	}
	res, err := s.handleBatch(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("batch with one success must not be IsError: %s", contentText(t, res))
	}
	if !strings.Contains(contentText(t, res), `"succeeded": 1`) {
		t.Errorf("summary missing: %s", contentText(t, res))
	}
}

func TestHandleSchema(t *testing.T) {
	s := demoServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"command": "user-get"}
	res, err := s.handleSchema(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError || !strings.Contains(contentText(t, res), `"id"`) {
		t.Errorf("command schema: %s", contentText(t, res))
	}

	req.Params.Arguments = map[string]any{}
	res, err = s.handleSchema(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError || !strings.Contains(contentText(t, res), "Pipeline Request") {
		t.Errorf("pipeline schema: %s", contentText(t, res))
	}

	req.Params.Arguments = map[string]any{"command": "ghost"}
	res, err = s.handleSchema(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("unknown command must be an error")
	}
}

func TestHandleHelpAndDocs(t *testing.T) {
	s := demoServer(t)

	res, err := s.handleHelp(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatal(err)
	}
	text := contentText(t, res)
	if !strings.Contains(text, "user-get") || !strings.Contains(text, "users") {
		t.Errorf("help = %s", text)
	}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"command": "user-get"}
	res, err = s.handleDocs(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	md := contentText(t, res)
	if !strings.Contains(md, "# user-get") || !strings.Contains(md, "| `id` |") {
		t.Errorf("docs = %s", md)
	}
}
