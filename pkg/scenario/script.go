package scenario

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/afd-framework/afd-go/pkg/pipeline"
	"github.com/afd-framework/afd-go/pkg/result"
)

// ScriptedExecutor replays canned responses per command, consumed in
// call order. Running out of responses is a contract violation the
// engine reports as a step execution failure — a scenario must script
// every call it provokes.
type ScriptedExecutor struct {
	mu        sync.Mutex
	responses map[string][]*result.CommandResult
	calls     []string
}

// NewScriptedExecutor builds an executor from per-command queues.
func NewScriptedExecutor(responses map[string][]*result.CommandResult) *ScriptedExecutor {
	if responses == nil {
		responses = map[string][]*result.CommandResult{}
	}
	return &ScriptedExecutor{responses: responses}
}

// Execute implements pipeline.Executor.
func (s *ScriptedExecutor) Execute(_ context.Context, command string, _ any, _ pipeline.Call) (*result.CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, command)

	queue := s.responses[command]
	if len(queue) == 0 {
		return nil, fmt.Errorf("no scripted response for %q (call %d)", command, len(s.calls))
	}
	res := queue[0]
	s.responses[command] = queue[1:]
	return res, nil
}

// Calls returns the commands invoked so far, in order.
func (s *ScriptedExecutor) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// scriptedResponse is the YAML shape of one canned response.
type scriptedResponse struct {
	Success    bool                 `yaml:"success"`
	Data       any                  `yaml:"data,omitempty"`
	Error      *result.CommandError `yaml:"error,omitempty"`
	Confidence *float64             `yaml:"confidence,omitempty"`
	Reasoning  string               `yaml:"reasoning,omitempty"`
	Warnings   []result.Warning     `yaml:"warnings,omitempty"`
}

// LoadResponses reads responses.yaml: a map from command name to the
// ordered list of responses that command returns.
func LoadResponses(path string) (map[string][]*result.CommandResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read responses: %w", err)
	}
	var raw map[string][]scriptedResponse
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse responses: %w", err)
	}

	out := make(map[string][]*result.CommandResult, len(raw))
	for command, list := range raw {
		for _, sr := range list {
			out[command] = append(out[command], &result.CommandResult{
				Success:    sr.Success,
				Data:       sr.Data,
				Error:      sr.Error,
				Confidence: sr.Confidence,
				Reasoning:  sr.Reasoning,
				Warnings:   sr.Warnings,
			})
		}
	}
	return out, nil
}
