package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/querygen/internal/ir"
)

// Scenario defines a conformance test scenario for one generation case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is an optional CUE catalog path. Empty uses the built-in catalog.
	// Relative paths are resolved against the scenario file location.
	Catalog string `yaml:"catalog,omitempty"`

	// Bounds limit the case. Zero values fall back to ir.DefaultBounds.
	Bounds *ir.Bounds `yaml:"bounds,omitempty"`

	// Case is the generation case under test.
	Case CaseSpec `yaml:"case"`

	// Expect lists the rendered helpers and arguments the case must produce.
	Expect Expectation `yaml:"expect"`

	// Assertions validate the rendered text.
	// Supported types: block_contains, block_not_contains, block_count, parses
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// CaseSpec is the YAML form of ir.GenerationCase.
type CaseSpec struct {
	Tags            int `yaml:"tags"`
	Shared          int `yaml:"shared"`
	Whereable       int `yaml:"whereable"`
	FilterThreshold int `yaml:"filter_threshold"`
}

// GenerationCase converts the case description to the IR type.
func (c CaseSpec) GenerationCase() ir.GenerationCase {
	return ir.GenerationCase{
		Tags:            c.Tags,
		Shared:          c.Shared,
		Whereable:       c.Whereable,
		FilterThreshold: c.FilterThreshold,
	}
}

// Expectation specifies what rendering the case must yield.
// Omitted lists are not checked; templates: [] asserts nothing renders.
type Expectation struct {
	// Templates is the exact ordered list of applicable template names.
	Templates []string `yaml:"templates"`

	// Functions is the exact ordered list of generated function names.
	Functions []string `yaml:"functions,omitempty"`

	// Arguments is the exact ordered argument list shared by every block.
	Arguments []ArgumentSpec `yaml:"arguments,omitempty"`

	// NoArguments asserts the helpers take no case arguments.
	NoArguments bool `yaml:"no_arguments,omitempty"`

	// Filter is the expected filter statement.
	Filter string `yaml:"filter,omitempty"`

	// NoFilter asserts the case has no filter statement.
	NoFilter bool `yaml:"no_filter,omitempty"`
}

// ArgumentSpec is one expected helper argument.
type ArgumentSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	// Kind is predicate, filter or placeholder.
	Kind string `yaml:"kind"`
}

// Assertion validates rendered text.
type Assertion struct {
	// Type specifies the assertion type:
	// - "block_contains": Check a block (or every block) contains Text
	// - "block_not_contains": Check a block (or every block) lacks Text
	// - "block_count": Check exactly Count blocks were rendered
	// - "parses": Check the blocks parse as Go source
	Type string `yaml:"type"`

	// Template selects one block by template name. Empty means every block.
	Template string `yaml:"template,omitempty"`

	// Text is the substring looked for (block_contains, block_not_contains).
	Text string `yaml:"text,omitempty"`

	// Count is the expected number of blocks (block_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertBlockContains    = "block_contains"
	AssertBlockNotContains = "block_not_contains"
	AssertBlockCount       = "block_count"
	AssertParses           = "parses"
)

// Argument kinds accepted in scenarios.
var validKinds = map[string]bool{
	ir.ArgPredicate.String():   true,
	ir.ArgFilterValue.String(): true,
	ir.ArgPlaceholder.String(): true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the catalog path relative to the scenario BEFORE validation
	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}

	// Validate required fields
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenarios found in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	names := make(map[string]string)
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		if prev, ok := names[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", filepath.Base(p), s.Name, prev)
		}
		names[s.Name] = filepath.Base(p)
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// bounds returns the scenario bounds or the defaults.
func (s *Scenario) bounds() ir.Bounds {
	if s.Bounds == nil {
		return ir.DefaultBounds
	}
	return *s.Bounds
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if err := s.bounds().Validate(); err != nil {
		return fmt.Errorf("bounds: %w", err)
	}

	if err := s.Case.GenerationCase().Validate(s.bounds()); err != nil {
		return fmt.Errorf("case: %w", err)
	}

	if s.Catalog != "" {
		if _, err := os.Stat(s.Catalog); os.IsNotExist(err) {
			return fmt.Errorf("catalog file not found: %s", s.Catalog)
		}
	}

	if s.Expect.Filter != "" && s.Expect.NoFilter {
		return fmt.Errorf("expect: filter and no_filter are mutually exclusive")
	}
	if len(s.Expect.Arguments) > 0 && s.Expect.NoArguments {
		return fmt.Errorf("expect: arguments and no_arguments are mutually exclusive")
	}
	for i, arg := range s.Expect.Arguments {
		if arg.Name == "" || arg.Type == "" {
			return fmt.Errorf("expect.arguments[%d]: name and type are required", i)
		}
		if !validKinds[arg.Kind] {
			return fmt.Errorf("expect.arguments[%d]: unknown kind %q", i, arg.Kind)
		}
	}

	// Validate assertions
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertBlockContains, AssertBlockNotContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertBlockCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for block_count", index)
		}
	case AssertParses:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
