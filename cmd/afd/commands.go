package main

import (
	"fmt"

	"github.com/afd-framework/afd-go/pkg/builtin"
	"github.com/afd-framework/afd-go/pkg/command"
)

func builtinRegistry() *command.Registry {
	return builtin.Registry(version)
}

// formatScenarioLine renders one scenario outcome for terminal output.
func formatScenarioLine(status, name string, durationMs int64) string {
	glyph := "✓"
	switch status {
	case "failed", "error":
		glyph = "✗"
	case "skipped":
		glyph = "⊘"
	}
	return fmt.Sprintf("  %s %s (%dms)", glyph, name, durationMs)
}
