package command

import (
	"fmt"
	"sort"
	"strings"
)

// MarkdownDoc renders one command's reference as markdown, used by the
// docs CLI command and the afd/docs tool.
func MarkdownDoc(def *Definition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", def.Name)
	if def.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", def.Description)
	}
	if def.Category != "" || def.Version != "" {
		fmt.Fprintf(&b, "- Category: `%s`\n", defString(def.Category, "general"))
		if def.Version != "" {
			fmt.Fprintf(&b, "- Version: `%s`\n", def.Version)
		}
		fmt.Fprintf(&b, "- Mutating: `%v`\n\n", def.Mutating)
	}

	params := SchemaParameters(def.InputSchema)
	if len(params) > 0 {
		b.WriteString("## Parameters\n\n")
		b.WriteString("| Name | Type | Required | Description |\n")
		b.WriteString("|------|------|----------|-------------|\n")
		for _, p := range params {
			fmt.Fprintf(&b, "| `%s` | %s | %v | %s |\n", p.Name, p.Type, p.Required, p.Description)
		}
		b.WriteString("\n")
	}

	if len(def.ErrorCodes) > 0 {
		b.WriteString("## Error codes\n\n")
		for _, code := range def.ErrorCodes {
			fmt.Fprintf(&b, "- `%s`\n", code)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Parameter is a flattened view of one input schema property.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// SchemaParameters extracts top-level properties from a JSON Schema
// document for help and docs surfaces.
func SchemaParameters(schema map[string]any) []Parameter {
	props, _ := schema["properties"].(map[string]any)
	if len(props) == 0 {
		return nil
	}
	required := map[string]bool{}
	if list, ok := schema["required"].([]any); ok {
		for _, r := range list {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	out := make([]Parameter, 0, len(props))
	for name, raw := range props {
		p := Parameter{Name: name, Required: required[name]}
		if prop, ok := raw.(map[string]any); ok {
			p.Type, _ = prop["type"].(string)
			p.Description, _ = prop["description"].(string)
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func defString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
