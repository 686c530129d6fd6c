package harness

import (
	"strings"

	"github.com/roach88/querygen/internal/ir"
)

// RenderedBlock is one template rendered for the scenario's case.
type RenderedBlock struct {
	Template string `json:"template"`
	Function string `json:"function"`
	Text     string `json:"text"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Clauses is the clause set the blocks were rendered from.
	Clauses ir.ClauseSet `json:"-"`

	// Blocks holds the rendered templates in catalog order.
	Blocks []RenderedBlock `json:"blocks"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Blocks: []RenderedBlock{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddBlock appends a rendered block.
func (r *Result) AddBlock(template, function, text string) {
	r.Blocks = append(r.Blocks, RenderedBlock{Template: template, Function: function, Text: text})
}

// Block returns the block rendered from template.
func (r *Result) Block(template string) (RenderedBlock, bool) {
	for _, b := range r.Blocks {
		if b.Template == template {
			return b, true
		}
	}
	return RenderedBlock{}, false
}

// Concatenated joins the blocks with one blank line, the way the assembler does.
func (r *Result) Concatenated() string {
	var b strings.Builder
	for i, block := range r.Blocks {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(block.Text)
	}
	return b.String()
}
