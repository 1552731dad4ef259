package command

import (
	"context"
	"strings"
	"testing"

	"github.com/afd-framework/afd-go/pkg/pipeline"
	"github.com/afd-framework/afd-go/pkg/result"
)

func userGetSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"id"},
		"properties": map[string]any{
			"id": map[string]any{"type": "number"},
		},
		"additionalProperties": false,
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	err := r.Register(&Definition{
		Name:        "user-get",
		Description: "Fetch a user by id",
		Category:    "users",
		Version:     "1.0.0",
		InputSchema: userGetSchema(),
		Handler: func(_ context.Context, input map[string]any, _ Context) *result.CommandResult {
			id := input["id"]
			return result.SuccessWith(map[string]any{"id": id, "tier": "premium"}, 0.9, "direct lookup")
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return r
}

func TestRegisterRejectsDuplicatesAndBadDefs(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.Register(&Definition{Name: "user-get", Handler: func(context.Context, map[string]any, Context) *result.CommandResult { return nil }}); err == nil {
		t.Errorf("duplicate registration must fail")
	}
	if err := r.Register(&Definition{Name: "no-handler"}); err == nil {
		t.Errorf("nil handler must fail")
	}
	if err := r.Register(&Definition{Name: "bad-schema", InputSchema: map[string]any{"type": 12}, Handler: func(context.Context, map[string]any, Context) *result.CommandResult { return nil }}); err == nil {
		t.Errorf("uncompilable schema must fail at registration")
	}
}

func TestExecuteHappyPath(t *testing.T) {
	r := newTestRegistry(t)
	res := r.Execute(context.Background(), "user-get", map[string]any{"id": float64(1)}, Context{TraceID: "t-1"})
	if !res.IsSuccess() {
		t.Fatalf("result = %+v", res)
	}
	if res.Metadata.TraceID != "t-1" || res.Metadata.CommandVersion != "1.0.0" {
		t.Errorf("metadata = %+v", res.Metadata)
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	r := newTestRegistry(t)
	res := r.Execute(context.Background(), "user-git", nil, Context{})
	if res.IsSuccess() || res.Error.Code != result.CodeCommandNotFound {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Error.Suggestion, "user-get") {
		t.Errorf("suggestion = %q, want closest-name hint", res.Error.Suggestion)
	}
}

func TestExecuteValidatesInput(t *testing.T) {
	r := newTestRegistry(t)

	res := r.Execute(context.Background(), "user-get", map[string]any{"id": "one"}, Context{})
	if res.IsSuccess() || res.Error.Code != result.CodeValidationError {
		t.Fatalf("result = %+v", res)
	}
	if res.Error.Details["issues"] == nil {
		t.Errorf("validation detail missing: %+v", res.Error)
	}

	res = r.Execute(context.Background(), "user-get", map[string]any{}, Context{})
	if res.IsSuccess() || res.Error.Code != result.CodeValidationError {
		t.Fatalf("missing required field: %+v", res)
	}

	res = r.Execute(context.Background(), "user-get", []any{"not", "an", "object"}, Context{})
	if res.IsSuccess() || res.Error.Code != result.CodeValidationError {
		t.Fatalf("non-object input: %+v", res)
	}
}

func TestExecuteRecoversPanics(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(&Definition{
		Name: "boom",
		Handler: func(context.Context, map[string]any, Context) *result.CommandResult {
			panic("kaput")
		},
	})
	r.MustRegister(&Definition{
		Name:    "empty",
		Handler: func(context.Context, map[string]any, Context) *result.CommandResult { return nil },
	})

	res := r.Execute(context.Background(), "boom", nil, Context{})
	if res.IsSuccess() || res.Error.Code != result.CodeInternalError || !strings.Contains(res.Error.Message, "kaput") {
		t.Fatalf("panic result = %+v", res)
	}
	res = r.Execute(context.Background(), "empty", nil, Context{})
	if res.IsSuccess() || res.Error.Code != result.CodeInternalError {
		t.Fatalf("nil-result command = %+v", res)
	}
}

func TestListByCategory(t *testing.T) {
	r := newTestRegistry(t)
	r.MustRegister(&Definition{
		Name:    "misc-thing",
		Handler: func(context.Context, map[string]any, Context) *result.CommandResult { return result.Success(nil) },
	})

	groups := r.ListByCategory()
	if len(groups["users"]) != 1 || len(groups["general"]) != 1 {
		t.Fatalf("groups = %v", groups)
	}
	if !r.Has("user-get") || r.Has("ghost") {
		t.Errorf("Has misbehaves")
	}
}

func TestRegistryDrivesPipeline(t *testing.T) {
	r := newTestRegistry(t)
	r.MustRegister(&Definition{
		Name: "greet",
		Handler: func(_ context.Context, input map[string]any, _ Context) *result.CommandResult {
			return result.Success(map[string]any{"greeting": "hello " + input["tier"].(string)})
		},
	})

	eng := pipeline.New(pipeline.Config{Executor: r.Executor()})
	res, err := eng.Run(context.Background(), &pipeline.Request{Steps: []pipeline.Step{
		{Command: "user-get", Input: map[string]any{"id": float64(1)}, As: "user"},
		{Command: "greet", Input: map[string]any{"tier": "$steps.user.tier"}},
	}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Metadata.CompletedSteps != 2 {
		t.Fatalf("completedSteps = %d; steps = %+v", res.Metadata.CompletedSteps, res.Steps)
	}
	got, _ := pipeline.ResolvePath(res.Data, "greeting")
	if got != "hello premium" {
		t.Errorf("greeting = %v", got)
	}
}

type echoInput struct {
	Message string `json:"message" jsonschema:"required,description=Text to echo back"`
	Repeat  int    `json:"repeat,omitempty"`
}

func TestInputSchemaReflection(t *testing.T) {
	doc, err := InputSchema[echoInput]()
	if err != nil {
		t.Fatalf("InputSchema: %v", err)
	}
	props, ok := doc["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %v", doc)
	}
	if _, ok := props["message"]; !ok {
		t.Errorf("message property missing: %v", props)
	}

	// Reflected schemas must be usable as registration input.
	r := NewRegistry()
	err = r.Register(&Definition{
		Name:        "echo",
		InputSchema: doc,
		Handler: func(_ context.Context, input map[string]any, _ Context) *result.CommandResult {
			return result.Success(input)
		},
	})
	if err != nil {
		t.Fatalf("register with reflected schema: %v", err)
	}
	res := r.Execute(context.Background(), "echo", map[string]any{"message": "hi"}, Context{})
	if !res.IsSuccess() {
		t.Fatalf("echo = %+v", res)
	}
	res = r.Execute(context.Background(), "echo", map[string]any{"repeat": float64(2)}, Context{})
	if res.IsSuccess() {
		t.Fatalf("missing required message must fail validation: %+v", res)
	}
}
