package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SuiteResult summarizes a directory of scenarios.
type SuiteResult struct {
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Failures []ScenarioOutcome `json:"failures,omitempty"`
}

// ScenarioOutcome is the verdict on one scenario file. Scenario is empty
// when the file did not load.
type ScenarioOutcome struct {
	Scenario string   `json:"scenario"`
	Path     string   `json:"path"`
	Pass     bool     `json:"pass"`
	Errors   []string `json:"errors,omitempty"`
}

// FindScenarios returns the .yaml and .yml files under dir, sorted. A file
// path is returned as is.
func FindScenarios(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{dir}, nil
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// RunSuite loads and runs every scenario under dir. Golden comparison is
// a test-only concern and is skipped here. The onResult callback, if not
// nil, sees each outcome as it is decided.
func RunSuite(ctx context.Context, dir string, onResult func(ScenarioOutcome)) (*SuiteResult, error) {
	paths, err := FindScenarios(dir)
	if err != nil {
		return nil, fmt.Errorf("find scenarios: %w", err)
	}
	return RunPaths(ctx, paths, onResult)
}

// RunPaths runs the given scenario files in order.
func RunPaths(ctx context.Context, paths []string, onResult func(ScenarioOutcome)) (*SuiteResult, error) {
	suite := &SuiteResult{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return suite, err
		}
		out := runPath(ctx, path)
		suite.Total++
		if out.Pass {
			suite.Passed++
		} else {
			suite.Failed++
			suite.Failures = append(suite.Failures, out)
		}
		if onResult != nil {
			onResult(out)
		}
	}
	return suite, nil
}

func runPath(ctx context.Context, path string) ScenarioOutcome {
	out := ScenarioOutcome{Path: path}
	scenario, err := LoadScenario(path)
	if err != nil {
		out.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return out
	}
	out.Scenario = scenario.Name

	result, err := Run(ctx, scenario)
	if err != nil {
		out.Errors = []string{fmt.Sprintf("scenario execution failed: %v", err)}
		return out
	}
	out.Pass = result.Pass
	out.Errors = result.Errors
	return out
}
