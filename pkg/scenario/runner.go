package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/afd-framework/afd-go/pkg/pipeline"
)

// Runner discovers and executes scenarios for a pipeline file.
type Runner struct {
	Timeout  time.Duration // per-scenario budget, 0 = none
	FailFast bool          // stop RunAll at the first failure or error
}

// DiscoverScenarios finds scenario directories by convention:
// {pipeline-dir}/scenarios/{pipeline-name}/*/responses.yaml
func DiscoverScenarios(pipelinePath string) ([]Info, error) {
	dir := filepath.Dir(pipelinePath)
	name := pipelineName(pipelinePath)

	base := filepath.Join(dir, "scenarios", name)
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // no scenarios directory — not an error
		}
		return nil, fmt.Errorf("read scenarios directory: %w", err)
	}

	var scenarios []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		scenDir := filepath.Join(base, entry.Name())
		if _, err := os.Stat(filepath.Join(scenDir, "responses.yaml")); err != nil {
			continue // no responses.yaml — skip
		}
		hasExpect := false
		if _, err := os.Stat(filepath.Join(scenDir, "expect.yaml")); err == nil {
			hasExpect = true
		}
		scenarios = append(scenarios, Info{Name: entry.Name(), Dir: scenDir, HasExpect: hasExpect})
	}
	return scenarios, nil
}

func pipelineName(path string) string {
	base := filepath.Base(path)
	for _, suffix := range []string{".yaml", ".yml", ".json"} {
		base = strings.TrimSuffix(base, suffix)
	}
	return strings.TrimSuffix(base, ".pipeline")
}

// RunAll executes every scenario for a pipeline file.
func (r *Runner) RunAll(pipelinePath string) (*TestOutput, error) {
	req, err := pipeline.LoadRequest(pipelinePath)
	if err != nil {
		return nil, err
	}
	scenarios, err := DiscoverScenarios(pipelinePath)
	if err != nil {
		return nil, err
	}

	output := &TestOutput{Pipeline: pipelineName(pipelinePath)}
	for _, info := range scenarios {
		tr := r.runScenario(req, info)
		output.Scenarios = append(output.Scenarios, tr)

		output.Summary.Total++
		switch tr.Status {
		case "passed":
			output.Summary.Passed++
		case "failed":
			output.Summary.Failed++
		case "skipped":
			output.Summary.Skipped++
		default:
			output.Summary.Errors++
		}
		if r.FailFast && (tr.Status == "failed" || tr.Status == "error") {
			break
		}
	}
	return output, nil
}

// RunScenario executes a single named scenario.
func (r *Runner) RunScenario(pipelinePath, scenarioName string) (*TestResult, error) {
	req, err := pipeline.LoadRequest(pipelinePath)
	if err != nil {
		return nil, err
	}
	scenarios, err := DiscoverScenarios(pipelinePath)
	if err != nil {
		return nil, err
	}
	for _, info := range scenarios {
		if info.Name == scenarioName {
			tr := r.runScenario(req, info)
			return &tr, nil
		}
	}
	return nil, fmt.Errorf("scenario %q not found", scenarioName)
}

func (r *Runner) runScenario(req *pipeline.Request, info Info) TestResult {
	start := time.Now()
	tr := TestResult{
		Pipeline: req.ID,
		Scenario: info.Name,
		Dir:      info.Dir,
	}
	done := func(status string) TestResult {
		tr.Status = status
		tr.DurationMs = time.Since(start).Milliseconds()
		return tr
	}

	if !info.HasExpect {
		return done("skipped")
	}

	expect, err := loadExpect(filepath.Join(info.Dir, "expect.yaml"))
	if err != nil {
		tr.Error = err.Error()
		return done("error")
	}
	responses, err := LoadResponses(filepath.Join(info.Dir, "responses.yaml"))
	if err != nil {
		tr.Error = err.Error()
		return done("error")
	}

	ctx := context.Background()
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	eng := pipeline.New(pipeline.Config{Executor: NewScriptedExecutor(responses)})
	res, err := eng.Run(ctx, req)
	if err != nil {
		tr.Error = fmt.Sprintf("replay: %v", err)
		return done("error")
	}

	tr.Assertions = evaluate(expect, res)
	for _, a := range tr.Assertions {
		if !a.Passed {
			return done("failed")
		}
	}
	return done("passed")
}

func loadExpect(path string) (*Expect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read expect.yaml: %w", err)
	}
	var e Expect
	if err := yaml.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse expect.yaml: %w", err)
	}
	return &e, nil
}
