// Package main provides the afd binary: run, validate and inspect
// command pipelines, serve them over MCP, and replay scenario tests.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/afd-framework/afd-go/pkg/command"
	"github.com/afd-framework/afd-go/pkg/pipeline"
	"github.com/afd-framework/afd-go/pkg/pipeline/trace"
	"github.com/afd-framework/afd-go/pkg/scenario"
	"github.com/afd-framework/afd-go/pkg/server"
	"github.com/afd-framework/afd-go/pkg/tui"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "afd",
	Short: "Agent-first command pipelines",
	Long:  "afd — run multi-step command pipelines with inter-step references, conditional steps and aggregated trust metadata.",
}

func init() {
	runCmd.Flags().StringVar(&runOut, "out", "", "write the result JSON to this file")
	runCmd.Flags().Int64Var(&runTimeoutMs, "timeout-ms", 0, "wall-clock budget for the whole run")
	runCmd.Flags().BoolVar(&runContinue, "continue-on-failure", false, "run later steps despite failures")
	runCmd.Flags().BoolVar(&runStrict, "strict-refs", false, "fail steps whose references do not resolve")
	runCmd.Flags().StringVar(&runTrace, "trace", "", "write JSONL run events to this file")
	testCmd.Flags().StringVar(&testScenario, "scenario", "", "run only the named scenario")
	testCmd.Flags().BoolVar(&testFailFast, "fail-fast", false, "stop at the first failing scenario")

	rootCmd.AddCommand(runCmd, validateCmd, schemaCmd, docsCmd, testCmd, viewCmd, mcpCmd, versionCmd)
}

// --- run ---

var (
	runOut       string
	runTimeoutMs int64
	runContinue  bool
	runStrict    bool
	runTrace     string
)

var runCmd = &cobra.Command{
	Use:   "run [pipeline.(yaml|json)]",
	Short: "Execute a pipeline against the built-in commands",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	req, err := pipeline.LoadRequest(args[0])
	if err != nil {
		return err
	}
	if runTimeoutMs > 0 {
		req.Options.TimeoutMs = runTimeoutMs
	}
	if runContinue {
		req.Options.ContinueOnFailure = true
	}
	if runStrict {
		req.Options.StrictRefs = true
	}

	cfg := pipeline.Config{
		Executor: builtinRegistry().Executor(),
		Stdout:   os.Stderr,
	}
	if runTrace != "" {
		tw, err := trace.Open(runTrace)
		if err != nil {
			return err
		}
		defer tw.Close()
		cfg.Trace = tw
	}

	res, err := pipeline.New(cfg).Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, tui.Summary(res))

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if runOut != "" {
		if err := os.WriteFile(runOut, data, 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	} else {
		fmt.Println(string(data))
	}

	if res.Metadata.CompletedSteps == 0 && res.Metadata.TotalSteps > 0 {
		return fmt.Errorf("no step succeeded")
	}
	return nil
}

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate [pipeline.(yaml|json)]",
	Short: "Validate a pipeline request file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := pipeline.LoadRequest(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ %s is valid (%d steps)\n", args[0], len(req.Steps))
		return nil
	},
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema [command]",
	Short: "Print the JSON Schema of the pipeline request or a command's input",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			data, err := command.ReflectSchema(&pipeline.Request{},
				"https://github.com/afd-framework/afd-go/schemas/pipeline-request.json",
				"Pipeline Request",
				"A multi-step command pipeline with references and conditions")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		def, ok := builtinRegistry().Get(args[0])
		if !ok {
			return fmt.Errorf("unknown command %q", args[0])
		}
		schema := def.InputSchema
		if schema == nil {
			schema = map[string]any{"type": "object"}
		}
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

// --- docs ---

var docsCmd = &cobra.Command{
	Use:   "docs [command]",
	Short: "Show the reference for one command, or list all commands",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := builtinRegistry()
		if len(args) == 1 {
			def, ok := reg.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown command %q", args[0])
			}
			fmt.Println(tui.RenderMarkdownWidth(command.MarkdownDoc(def), 100))
			return nil
		}
		for category, defs := range reg.ListByCategory() {
			fmt.Printf("%s:\n", category)
			for _, def := range defs {
				fmt.Printf("  %-12s %s\n", def.Name, def.Description)
			}
		}
		return nil
	},
}

// --- test ---

var (
	testScenario string
	testFailFast bool
)

var testCmd = &cobra.Command{
	Use:   "test [pipeline.(yaml|json)]",
	Short: "Replay scenario tests for a pipeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	runner := &scenario.Runner{FailFast: testFailFast}

	if testScenario != "" {
		tr, err := runner.RunScenario(args[0], testScenario)
		if err != nil {
			return err
		}
		fmt.Println(formatScenarioLine(tr.Status, tr.Scenario, tr.DurationMs))
		printAssertionFailures(tr)
		if tr.Status != "passed" && tr.Status != "skipped" {
			return fmt.Errorf("scenario %q %s", tr.Scenario, tr.Status)
		}
		return nil
	}

	out, err := runner.RunAll(args[0])
	if err != nil {
		return err
	}
	for i := range out.Scenarios {
		tr := &out.Scenarios[i]
		fmt.Println(formatScenarioLine(tr.Status, tr.Scenario, tr.DurationMs))
		printAssertionFailures(tr)
	}
	s := out.Summary
	fmt.Printf("\n%d scenarios: %d passed, %d failed, %d skipped, %d errors\n",
		s.Total, s.Passed, s.Failed, s.Skipped, s.Errors)
	if s.Failed > 0 || s.Errors > 0 {
		return fmt.Errorf("scenario tests failed")
	}
	return nil
}

func printAssertionFailures(tr *scenario.TestResult) {
	if tr.Error != "" {
		fmt.Printf("      %s\n", tr.Error)
	}
	for _, a := range tr.Assertions {
		if !a.Passed {
			fmt.Printf("      %s: expected %s, got %s\n", a.Name, a.Expected, a.Actual)
		}
	}
}

// --- view ---

var viewCmd = &cobra.Command{
	Use:   "view [result.json]",
	Short: "Browse a saved pipeline result interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := tui.LoadResult(args[0])
		if err != nil {
			return err
		}
		return tui.Run(res)
	},
}

// --- mcp ---

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the command registry and pipeline engine over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := server.New(builtinRegistry(), server.Options{Name: "afd", Version: version})
		return s.ServeStdio()
	},
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("afd %s (%s)\n", version, commit)
	},
}
