package scenario

import (
	"os"
	"path/filepath"
	"testing"
)

const testPipeline = `
id: user-orders
steps:
  - command: user-get
    input: {id: 1}
    as: user
  - command: order-list
    input: {userId: "$steps.user.id"}
`

const passingResponses = `
user-get:
  - success: true
    data: {id: 1, tier: premium}
    confidence: 0.9
order-list:
  - success: true
    data: {orders: [{total: 42}]}
    confidence: 0.8
`

const passingExpect = `
steps: [success, success]
completedSteps: 2
confidence:
  min: 0.8
  max: 0.8
data:
  orders[0].total: 42
`

const failingResponses = `
user-get:
  - success: false
    error: {code: NOT_FOUND, message: no such user}
`

const failingExpect = `
steps: [success, success]
`

func writeScenario(t *testing.T, root, name, responses, expect string) string {
	t.Helper()
	pipelinePath := filepath.Join(root, "user-orders.pipeline.yaml")
	if err := os.WriteFile(pipelinePath, []byte(testPipeline), 0o644); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(root, "scenarios", "user-orders", name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "responses.yaml"), []byte(responses), 0o644); err != nil {
		t.Fatal(err)
	}
	if expect != "" {
		if err := os.WriteFile(filepath.Join(dir, "expect.yaml"), []byte(expect), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return pipelinePath
}

func TestDiscoverScenarios(t *testing.T) {
	root := t.TempDir()
	path := writeScenario(t, root, "happy", passingResponses, passingExpect)
	writeScenario(t, root, "no-expect", passingResponses, "")

	scenarios, err := DiscoverScenarios(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(scenarios) != 2 {
		t.Fatalf("discovered %d scenarios", len(scenarios))
	}
	byName := map[string]Info{}
	for _, s := range scenarios {
		byName[s.Name] = s
	}
	if !byName["happy"].HasExpect || byName["no-expect"].HasExpect {
		t.Errorf("HasExpect flags wrong: %+v", byName)
	}

	// No scenarios directory at all is fine.
	orphan := filepath.Join(root, "orphan.yaml")
	if err := os.WriteFile(orphan, []byte(testPipeline), 0o644); err != nil {
		t.Fatal(err)
	}
	scenarios, err = DiscoverScenarios(orphan)
	if err != nil || scenarios != nil {
		t.Errorf("orphan discovery = %v, %v", scenarios, err)
	}
}

func TestRunAllPassing(t *testing.T) {
	root := t.TempDir()
	path := writeScenario(t, root, "happy", passingResponses, passingExpect)

	r := &Runner{}
	out, err := r.RunAll(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.Summary.Passed != 1 || out.Summary.Total != 1 {
		t.Fatalf("summary = %+v; scenarios = %+v", out.Summary, out.Scenarios)
	}
}

func TestRunAllFailureCarriesAssertionDetail(t *testing.T) {
	root := t.TempDir()
	path := writeScenario(t, root, "broken", failingResponses, failingExpect)

	r := &Runner{}
	out, err := r.RunAll(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.Summary.Failed != 1 {
		t.Fatalf("summary = %+v", out.Summary)
	}
	tr := out.Scenarios[0]
	var sawFailure bool
	for _, a := range tr.Assertions {
		if !a.Passed && a.Name == "steps[0].status" && a.Actual == "failure" {
			sawFailure = true
		}
	}
	if !sawFailure {
		t.Errorf("assertions = %+v", tr.Assertions)
	}
}

func TestScenarioWithoutExpectIsSkipped(t *testing.T) {
	root := t.TempDir()
	path := writeScenario(t, root, "no-expect", passingResponses, "")

	r := &Runner{}
	out, err := r.RunAll(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.Summary.Skipped != 1 {
		t.Fatalf("summary = %+v", out.Summary)
	}
}

func TestRunScenarioByName(t *testing.T) {
	root := t.TempDir()
	path := writeScenario(t, root, "happy", passingResponses, passingExpect)

	r := &Runner{}
	tr, err := r.RunScenario(path, "happy")
	if err != nil {
		t.Fatal(err)
	}
	if tr.Status != "passed" {
		t.Fatalf("result = %+v", tr)
	}
	if _, err := r.RunScenario(path, "ghost"); err == nil {
		t.Error("unknown scenario must error")
	}
}

func TestUnscriptedCallFailsStep(t *testing.T) {
	root := t.TempDir()
	// order-list has no scripted response, so step 1 must fail.
	path := writeScenario(t, root, "exhausted", `
user-get:
  - success: true
    data: {id: 1}
`, `
steps: [success, failure]
errorCodes:
  1: STEP_EXECUTION_ERROR
`)

	r := &Runner{}
	out, err := r.RunAll(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.Summary.Passed != 1 {
		t.Fatalf("summary = %+v; scenarios = %+v", out.Summary, out.Scenarios)
	}
}
