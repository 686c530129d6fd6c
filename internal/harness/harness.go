package harness

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/querygen/internal/catalog"
	"github.com/roach88/querygen/internal/clause"
	"github.com/roach88/querygen/internal/ir"
	"github.com/roach88/querygen/internal/render"
)

// Harness renders scenario cases against one catalog.
type Harness struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a harness over cat.
func New(cat *catalog.Catalog, opts ...Option) *Harness {
	h := &Harness{catalog: cat, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a test scenario with the catalog it names (or the built-in
// one) and returns the result.
//
// Execution flow:
// 1. Load the catalog
// 2. Build the clause set for the case
// 3. Render every applicable template
// 4. Compare with the expect clause
// 5. Evaluate assertions
//
// The returned error is reserved for scenarios that cannot run at all
// (unreadable catalog, render failure). Failed expectations land in
// Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	cat := catalog.Default()
	if scenario.Catalog != "" {
		loaded, err := catalog.LoadFile(scenario.Catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		cat = loaded
	}
	return New(cat).Run(scenario)
}

// Run executes scenario against the harness catalog.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	c := scenario.Case.GenerationCase()
	if err := c.Validate(scenario.bounds()); err != nil {
		return nil, err
	}

	result := NewResult()
	result.Clauses = clause.Build(c)

	for _, t := range h.catalog.Applicable(c) {
		text, err := render.Render(t, result.Clauses)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		result.AddBlock(t.Name, t.FuncName(c), text)
	}
	h.logger.Debug("scenario rendered",
		zap.String("scenario", scenario.Name),
		zap.String("case", c.Key()),
		zap.Int("blocks", len(result.Blocks)),
	)

	for _, msg := range checkExpectations(result, scenario.Expect) {
		result.AddError(msg)
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// checkExpectations compares the rendered result with the expect clause.
func checkExpectations(result *Result, expect Expectation) []string {
	var errs []string

	if expect.Templates != nil {
		got := make([]string, len(result.Blocks))
		for i, b := range result.Blocks {
			got[i] = b.Template
		}
		if !equalStrings(got, expect.Templates) {
			errs = append(errs, fmt.Sprintf("templates: expected %v, got %v", expect.Templates, got))
		}
	}

	if expect.Functions != nil {
		got := make([]string, len(result.Blocks))
		for i, b := range result.Blocks {
			got[i] = b.Function
		}
		if !equalStrings(got, expect.Functions) {
			errs = append(errs, fmt.Sprintf("functions: expected %v, got %v", expect.Functions, got))
		}
	}

	args := result.Clauses.Arguments
	if expect.NoArguments && len(args) > 0 {
		errs = append(errs, fmt.Sprintf("arguments: expected none, got %s", formatArguments(args)))
	}
	if len(expect.Arguments) > 0 {
		if !argumentsMatch(args, expect.Arguments) {
			errs = append(errs, fmt.Sprintf("arguments: expected %s, got %s",
				formatArgumentSpecs(expect.Arguments), formatArguments(args)))
		}
	}

	filter := result.Clauses.FilterStatement
	if expect.NoFilter && filter != "" {
		errs = append(errs, fmt.Sprintf("filter: expected none, got %q", filter))
	}
	if expect.Filter != "" && filter != expect.Filter {
		errs = append(errs, fmt.Sprintf("filter: expected %q, got %q", expect.Filter, filter))
	}

	return errs
}

func argumentsMatch(got []ir.Argument, want []ArgumentSpec) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i].Name != want[i].Name || got[i].Type != want[i].Type || got[i].Kind.String() != want[i].Kind {
			return false
		}
	}
	return true
}

func formatArguments(args []ir.Argument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%s %s (%s)", a.Name, a.Type, a.Kind)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatArgumentSpecs(args []ArgumentSpec) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%s %s (%s)", a.Name, a.Type, a.Kind)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
