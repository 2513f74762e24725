package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sif/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // glob on the scenario file name, without extension
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []harness.ScenarioOutcome `json:"scenarios"`
	Passed    int                       `json:"passed"`
	Failed    int                       `json:"failed"`
	Total     int                       `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios>",
		Short: "Run translation scenarios",
		Long: `Run YAML translation scenarios from a file or directory.

Each scenario translates its program in a fresh in-memory store, replays the
run, and checks its assertions. Golden files are compared by go test only.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  sif test ./scenarios
  sif test ./scenarios --filter "loop_*"
  sif test ./scenarios/branch.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(ctx context.Context, opts *TestOptions, dir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return commandError(f, ErrCodeNotFound, fmt.Sprintf("scenarios not found: %s", dir))
	}
	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return commandError(f, ErrCodeGeneric, fmt.Sprintf("invalid filter pattern: %v", err))
		}
	}

	paths, err := harness.FindScenarios(dir)
	if err != nil {
		return commandError(f, ErrCodeScanError, fmt.Sprintf("failed to find scenarios: %v", err))
	}

	var selected []string
	for _, path := range paths {
		if matchesFilter(path, opts.Filter) {
			selected = append(selected, path)
		}
	}

	result := TestResult{Scenarios: []harness.ScenarioOutcome{}}
	suite, err := harness.RunPaths(ctx, selected, func(o harness.ScenarioOutcome) {
		if !f.JSON() {
			printScenario(f, o)
		}
		result.Scenarios = append(result.Scenarios, o)
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "test run interrupted", err)
	}
	result.Total, result.Passed, result.Failed = suite.Total, suite.Passed, suite.Failed

	if f.JSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else if result.Total == 0 {
		fmt.Fprintln(f.Writer, "No scenarios found.")
	} else {
		fmt.Fprintf(f.Writer, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

func matchesFilter(path, filter string) bool {
	if filter == "" {
		return true
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	ok, _ := filepath.Match(filter, name)
	return ok
}

func printScenario(f *OutputFormatter, o harness.ScenarioOutcome) {
	name := o.Scenario
	if name == "" {
		name = filepath.Base(o.Path)
	}
	if o.Pass {
		fmt.Fprintf(f.Writer, "✓ %s\n", name)
		return
	}
	fmt.Fprintf(f.Writer, "✗ %s\n", name)
	for _, e := range o.Errors {
		for _, line := range strings.Split(strings.TrimRight(e, "\n"), "\n") {
			fmt.Fprintf(f.Writer, "  %s\n", line)
		}
	}
}
