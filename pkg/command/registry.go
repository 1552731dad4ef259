package command

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/afd-framework/afd-go/pkg/pipeline"
	"github.com/afd-framework/afd-go/pkg/result"
)

// Registry maps command names to definitions and is the single
// execution choke point. Safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: map[string]*Definition{}}
}

// Register adds a command. The input schema is compiled once here so
// Execute never pays compilation cost. Duplicate names and nil
// handlers are rejected.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("register: definition requires a name")
	}
	if def.Handler == nil {
		return fmt.Errorf("register %q: handler is required", def.Name)
	}
	if def.InputSchema != nil {
		c := sjsonschema.NewCompiler()
		resource := def.Name + ".schema.json"
		if err := c.AddResource(resource, def.InputSchema); err != nil {
			return fmt.Errorf("register %q: add schema resource: %w", def.Name, err)
		}
		compiled, err := c.Compile(resource)
		if err != nil {
			return fmt.Errorf("register %q: compile input schema: %w", def.Name, err)
		}
		def.compiled = compiled
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("register %q: already registered", def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// MustRegister is Register for program-startup wiring, where a bad
// definition is a programming error.
func (r *Registry) MustRegister(def *Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Get returns a definition by name.
func (r *Registry) Get(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Has reports whether a command is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns all definitions sorted by name.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListByCategory groups definitions by category, names sorted within
// each group.
func (r *Registry) ListByCategory() map[string][]*Definition {
	out := map[string][]*Definition{}
	for _, def := range r.List() {
		cat := def.Category
		if cat == "" {
			cat = "general"
		}
		out[cat] = append(out[cat], def)
	}
	return out
}

// Execute runs one command: lookup, schema validation, handler with
// panic recovery, metadata stamping. It always returns a result —
// every failure mode is a structured CommandResult, never a Go error
// or a panic, which is the contract the pipeline engine relies on.
func (r *Registry) Execute(ctx context.Context, name string, input any, cc Context) *result.CommandResult {
	started := time.Now()
	def, ok := r.Get(name)
	if !ok {
		res := result.Failure(result.NewError(result.CodeCommandNotFound,
			fmt.Sprintf("unknown command: %s", name)).
			WithSuggestion(r.suggestion(name)))
		return res.Stamp(cc.TraceID, "", time.Since(started))
	}

	obj, res := coerceInput(input)
	if res == nil && def.compiled != nil {
		res = validateInput(def.compiled, obj)
	}
	if res != nil {
		return res.Stamp(cc.TraceID, def.Version, time.Since(started))
	}

	res = r.safeHandle(ctx, def, obj, cc)
	return res.Stamp(cc.TraceID, def.Version, time.Since(started))
}

// Executor adapts the registry to the pipeline engine's Executor
// interface. Failures stay inside results, so the error return is
// always nil.
func (r *Registry) Executor() pipeline.Executor {
	return pipeline.ExecutorFunc(func(ctx context.Context, command string, input any, call pipeline.Call) (*result.CommandResult, error) {
		return r.Execute(ctx, command, input, Context{TraceID: call.TraceID}), nil
	})
}

func (r *Registry) safeHandle(ctx context.Context, def *Definition, input map[string]any, cc Context) (res *result.CommandResult) {
	defer func() {
		if p := recover(); p != nil {
			res = result.Failure(result.Internal(
				fmt.Sprintf("command %q panicked: %v", def.Name, p)))
		}
	}()
	res = def.Handler(ctx, input, cc)
	if res == nil {
		res = result.Failure(result.Internal(
			fmt.Sprintf("command %q returned no result", def.Name)))
	}
	return res
}

// suggestion proposes the closest registered name by shared prefix,
// falling back to the discovery command.
func (r *Registry) suggestion(name string) string {
	best, bestLen := "", 0
	for _, def := range r.List() {
		l := commonPrefixLen(strings.ToLower(name), strings.ToLower(def.Name))
		if l > bestLen {
			best, bestLen = def.Name, l
		}
	}
	if bestLen >= 3 {
		return fmt.Sprintf("did you mean %q? use afd/help to list commands", best)
	}
	return "use afd/help to list available commands"
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// coerceInput normalizes the input to a JSON-shaped object. Inputs from
// YAML pipelines carry Go ints and typed maps, so everything is
// round-tripped through encoding/json before validation and dispatch.
func coerceInput(input any) (map[string]any, *result.CommandResult) {
	if input == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, result.Failure(result.Validation("input",
			fmt.Sprintf("not JSON-encodable: %v", err)))
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, result.Failure(result.Validation("input",
			fmt.Sprintf("must be an object, got %T", input)))
	}
	return obj, nil
}

func validateInput(schema *sjsonschema.Schema, input map[string]any) *result.CommandResult {
	err := schema.Validate(any(input))
	if err == nil {
		return nil
	}
	e := result.NewError(result.CodeValidationError, "input does not match the command schema").
		WithSuggestion("fetch the command schema via afd/schema and fix the listed fields")
	if ve, ok := err.(*sjsonschema.ValidationError); ok {
		var issues []any
		for _, cause := range flattenCauses(ve) {
			issues = append(issues, map[string]any{
				"path":    "/" + strings.Join(cause.InstanceLocation, "/"),
				"message": cause.Error(),
			})
		}
		e = e.WithDetails(map[string]any{"issues": issues})
	} else {
		e = e.WithDetails(map[string]any{"issues": []any{err.Error()}})
	}
	return result.Failure(e)
}

// flattenCauses walks the validation error tree to its leaves, which
// carry the actionable messages.
func flattenCauses(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var out []*sjsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, flattenCauses(c)...)
	}
	return out
}
