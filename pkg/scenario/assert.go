package scenario

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/afd-framework/afd-go/pkg/pipeline"
)

// evaluate turns an expectation spec into per-assertion results
// against an actual pipeline outcome.
func evaluate(expect *Expect, res *pipeline.Result) []Assertion {
	var out []Assertion

	for i, want := range expect.Steps {
		if want == "" {
			continue
		}
		name := fmt.Sprintf("steps[%d].status", i)
		if i >= len(res.Steps) {
			out = append(out, Assertion{Name: name, Expected: want, Actual: "absent"})
			continue
		}
		out = append(out, Assertion{
			Name:     name,
			Passed:   res.Steps[i].Status == want,
			Expected: want,
			Actual:   res.Steps[i].Status,
		})
	}

	for i, wantCode := range expect.ErrorCodes {
		name := fmt.Sprintf("steps[%d].error.code", i)
		actual := "none"
		if i < len(res.Steps) && res.Steps[i].Error != nil {
			actual = res.Steps[i].Error.Code
		}
		out = append(out, Assertion{
			Name:     name,
			Passed:   actual == wantCode,
			Expected: wantCode,
			Actual:   actual,
		})
	}

	for path, want := range expect.Data {
		name := "data." + path
		got, ok := pipeline.ResolvePath(res.Data, path)
		a := Assertion{Name: name, Expected: display(want), Actual: display(got)}
		if !ok {
			a.Actual = "absent"
		} else {
			a.Passed = looseEqual(got, want)
		}
		out = append(out, a)
	}

	if expect.Confidence != nil {
		a := Assertion{Name: "metadata.confidence", Actual: display(res.Metadata.Confidence)}
		if res.Metadata.Confidence == nil {
			a.Expected = "a confidence value"
			a.Actual = "none"
		} else {
			c := *res.Metadata.Confidence
			a.Passed = true
			if expect.Confidence.Min != nil && c < *expect.Confidence.Min {
				a.Passed = false
			}
			if expect.Confidence.Max != nil && c > *expect.Confidence.Max {
				a.Passed = false
			}
			a.Expected = fmt.Sprintf("within [%s, %s]",
				display(expect.Confidence.Min), display(expect.Confidence.Max))
		}
		out = append(out, a)
	}

	if expect.CompletedSteps != nil {
		out = append(out, Assertion{
			Name:     "metadata.completedSteps",
			Passed:   res.Metadata.CompletedSteps == *expect.CompletedSteps,
			Expected: fmt.Sprint(*expect.CompletedSteps),
			Actual:   fmt.Sprint(res.Metadata.CompletedSteps),
		})
	}

	return out
}

// looseEqual compares across the int/float split between YAML
// expectations and JSON-shaped engine output.
func looseEqual(a, b any) bool {
	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func display(v any) string {
	if v == nil {
		return "null"
	}
	if p, ok := v.(*float64); ok {
		if p == nil {
			return "null"
		}
		return fmt.Sprint(*p)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
