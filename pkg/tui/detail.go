package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/afd-framework/afd-go/pkg/pipeline"
)

// stepMarkdown builds the detail-pane markdown for one step.
func stepMarkdown(sr *pipeline.StepResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Step %d — %s\n\n", sr.Index, sr.Command)
	if sr.Alias != "" {
		fmt.Fprintf(&b, "Alias: `%s`\n\n", sr.Alias)
	}
	fmt.Fprintf(&b, "Status: **%s** (%dms)\n\n", sr.Status, sr.ExecutionTimeMs)

	if sr.Error != nil {
		fmt.Fprintf(&b, "## Error\n\n- Code: `%s`\n- Message: %s\n", sr.Error.Code, sr.Error.Message)
		if sr.Error.Suggestion != "" {
			fmt.Fprintf(&b, "- Suggestion: %s\n", sr.Error.Suggestion)
		}
		b.WriteString("\n")
	}
	if sr.Data != nil {
		fmt.Fprintf(&b, "## Data\n\n```json\n%s\n```\n\n", prettyJSON(sr.Data))
	}
	if sr.Confidence != nil {
		fmt.Fprintf(&b, "Confidence: **%.2f**\n\n", *sr.Confidence)
	}
	if sr.Reasoning != "" {
		fmt.Fprintf(&b, "## Reasoning\n\n%s\n\n", sr.Reasoning)
	}
	if len(sr.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range sr.Warnings {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", w.Severity, w.Code, w.Message)
		}
		b.WriteString("\n")
	}
	if len(sr.Sources) > 0 {
		b.WriteString("## Sources\n\n")
		for _, s := range sr.Sources {
			fmt.Fprintf(&b, "- %s (%s)\n", s.Name, s.Type)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// resultMarkdown builds the pipeline-level summary markdown.
func resultMarkdown(res *pipeline.Result) string {
	var b strings.Builder
	b.WriteString("# Pipeline result\n\n")
	if res.ID != "" {
		fmt.Fprintf(&b, "Run: `%s`\n\n", res.ID)
	}
	m := res.Metadata
	fmt.Fprintf(&b, "Completed %d of %d steps in %dms.\n\n", m.CompletedSteps, m.TotalSteps, m.ExecutionTimeMs)
	if m.Confidence != nil {
		fmt.Fprintf(&b, "Aggregate confidence (weakest link): **%.2f**\n\n", *m.Confidence)
	}
	if len(m.ConfidenceBreakdown) > 0 {
		b.WriteString("| Step | Command | Confidence | Reasoning |\n|------|---------|------------|----------|\n")
		for _, e := range m.ConfidenceBreakdown {
			fmt.Fprintf(&b, "| %d | %s | %.2f | %s |\n", e.StepIndex, e.Command, e.Confidence, e.Reasoning)
		}
		b.WriteString("\n")
	}
	if len(m.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range m.Warnings {
			fmt.Fprintf(&b, "- step %d [%s] %s\n", w.StepIndex, w.Severity, w.Message)
		}
		b.WriteString("\n")
	}
	if res.Data != nil {
		fmt.Fprintf(&b, "## Data\n\n```json\n%s\n```\n", prettyJSON(res.Data))
	}
	return b.String()
}

func prettyJSON(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
