package harness

import (
	"fmt"
	"go/parser"
	"go/token"
	"strings"

	"github.com/roach88/querygen/internal/assemble"
)

// AssertionError is returned when an assertion fails.
// It includes the rendered blocks to help debug the failure.
type AssertionError struct {
	Type     string          // Assertion type for categorization
	Expected string          // Human-readable expected outcome
	Actual   string          // Human-readable actual outcome
	Blocks   []RenderedBlock // Rendered blocks for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with assertion type
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	// Rendered functions for context
	fmt.Fprintf(&buf, "\nRendered blocks:\n")
	for i, b := range e.Blocks {
		fmt.Fprintf(&buf, "  [%d] %s (%s)\n", i+1, b.Function, b.Template)
	}

	return buf.String()
}

// selectBlocks returns the block for template, or every block when template
// is empty.
func selectBlocks(blocks []RenderedBlock, template string) ([]RenderedBlock, error) {
	if template == "" {
		return blocks, nil
	}
	for _, b := range blocks {
		if b.Template == template {
			return []RenderedBlock{b}, nil
		}
	}
	return nil, fmt.Errorf("template %s did not render", template)
}

// assertBlockContains checks every selected block contains the text.
func assertBlockContains(blocks []RenderedBlock, assertion Assertion) error {
	selected, err := selectBlocks(blocks, assertion.Template)
	if err != nil {
		return &AssertionError{
			Type:     AssertBlockContains,
			Expected: fmt.Sprintf("block %s containing %q", assertion.Template, assertion.Text),
			Actual:   err.Error(),
			Blocks:   blocks,
		}
	}
	for _, b := range selected {
		if !strings.Contains(b.Text, assertion.Text) {
			return &AssertionError{
				Type:     AssertBlockContains,
				Expected: fmt.Sprintf("%s contains %q", b.Function, assertion.Text),
				Actual:   "text not found",
				Blocks:   blocks,
			}
		}
	}
	return nil
}

// assertBlockNotContains checks no selected block contains the text.
func assertBlockNotContains(blocks []RenderedBlock, assertion Assertion) error {
	selected, err := selectBlocks(blocks, assertion.Template)
	if err != nil {
		return &AssertionError{
			Type:     AssertBlockNotContains,
			Expected: fmt.Sprintf("block %s without %q", assertion.Template, assertion.Text),
			Actual:   err.Error(),
			Blocks:   blocks,
		}
	}
	for _, b := range selected {
		if strings.Contains(b.Text, assertion.Text) {
			return &AssertionError{
				Type:     AssertBlockNotContains,
				Expected: fmt.Sprintf("%s does not contain %q", b.Function, assertion.Text),
				Actual:   "text found",
				Blocks:   blocks,
			}
		}
	}
	return nil
}

// assertBlockCount checks the number of rendered blocks.
func assertBlockCount(blocks []RenderedBlock, assertion Assertion) error {
	if len(blocks) != assertion.Count {
		return &AssertionError{
			Type:     AssertBlockCount,
			Expected: fmt.Sprintf("%d block(s)", assertion.Count),
			Actual:   fmt.Sprintf("%d block(s)", len(blocks)),
			Blocks:   blocks,
		}
	}
	return nil
}

// assertParses checks the blocks form valid Go source behind the default header.
func assertParses(result *Result) error {
	var src strings.Builder
	src.WriteString("package " + assemble.DefaultPackage + "\n\n")
	src.WriteString("import ecs \"" + assemble.DefaultEngineImport + "\"\n\n")
	src.WriteString(result.Concatenated())

	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, "scenario.go", src.String(), parser.AllErrors); err != nil {
		return &AssertionError{
			Type:     AssertParses,
			Expected: "valid Go source",
			Actual:   err.Error(),
			Blocks:   result.Blocks,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertBlockContains:
			err = assertBlockContains(result.Blocks, assertion)
		case AssertBlockNotContains:
			err = assertBlockNotContains(result.Blocks, assertion)
		case AssertBlockCount:
			err = assertBlockCount(result.Blocks, assertion)
		case AssertParses:
			err = assertParses(result)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
