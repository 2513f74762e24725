package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sif/internal/translator"
)

// Scenario is a translation test: a source program and assertions on its
// translation.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the path of the CUE source program.
	Program string `yaml:"program"`

	// Mode is the translation mode, "sif" (default) or "base".
	Mode string `yaml:"mode,omitempty"`

	// RunToken fixes the run ID. Defaults to "test-run-default".
	RunToken string `yaml:"run_token,omitempty"`

	// Golden compares the full output against testdata/golden/{name}.golden.
	Golden bool `yaml:"golden,omitempty"`

	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks one property of a translation.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Member names the function the assertion is about.
	Member string `yaml:"member,omitempty"`

	// Text is a substring of the member's printed output (contains,
	// not_contains).
	Text string `yaml:"text,omitempty"`

	// Lines must appear in the member's output in this order, not
	// necessarily adjacent (line_order).
	Lines []string `yaml:"lines,omitempty"`

	// Kind and Tag describe an expected translation error (error).
	Kind string `yaml:"kind,omitempty"`
	Tag  string `yaml:"tag,omitempty"`

	// Code is an expected validation code such as E209 (validation).
	Code string `yaml:"code,omitempty"`

	// Count is the expected number of translated members (member_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion types.
const (
	AssertTranslates  = "translates"
	AssertError       = "error"
	AssertContains    = "contains"
	AssertNotContains = "not_contains"
	AssertLineOrder   = "line_order"
	AssertMemberCount = "member_count"
	AssertValidation  = "validation"
)

// LoadScenario reads and parses a scenario YAML file. The program path is
// resolved relative to the scenario file.
//
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath is LoadScenario with the program path resolved
// relative to basePath instead.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Program != "" && !filepath.IsAbs(scenario.Program) && basePath != "" {
		scenario.Program = filepath.Join(basePath, scenario.Program)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Program == "" {
		return fmt.Errorf("program is required")
	}
	if _, err := os.Stat(s.Program); os.IsNotExist(err) {
		return fmt.Errorf("program file not found: %s", s.Program)
	}
	switch translator.Mode(s.Mode) {
	case "", translator.ModeSIF, translator.ModeBase:
	default:
		return fmt.Errorf("unknown mode %q", s.Mode)
	}
	if len(s.Assertions) == 0 && !s.Golden {
		return fmt.Errorf("assertions list is required unless golden is set")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	needsMember := func() error {
		if a.Member == "" {
			return fmt.Errorf("assertions[%d]: member is required for %s", index, a.Type)
		}
		return nil
	}

	switch a.Type {
	case AssertTranslates:
		return needsMember()
	case AssertError:
		if err := needsMember(); err != nil {
			return err
		}
		switch a.Kind {
		case "", "invalid", "unsupported":
		default:
			return fmt.Errorf("assertions[%d]: unknown error kind %q", index, a.Kind)
		}
	case AssertContains, AssertNotContains:
		if err := needsMember(); err != nil {
			return err
		}
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertLineOrder:
		if err := needsMember(); err != nil {
			return err
		}
		if len(a.Lines) == 0 {
			return fmt.Errorf("assertions[%d]: lines list is required for line_order", index)
		}
	case AssertMemberCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for member_count", index)
		}
	case AssertValidation:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for validation", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
