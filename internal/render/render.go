// Package render substitutes clause fragments into parsed templates.
//
// Render is pure. Every required slot is checked before any text is produced;
// a required slot with no fragment is an inconsistency between catalog and
// clause builder and is returned as an *InconsistencyError. Callers must stop
// generation rather than emit the block.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/querygen/internal/catalog"
	"github.com/roach88/querygen/internal/ir"
)

// ErrUnresolved is returned when rendered text still carries a slot token.
var ErrUnresolved = errors.New("unresolved slot token in rendered block")

// InconsistencyError reports a template slot the clause set does not provide.
type InconsistencyError struct {
	Template string
	Slot     ir.Slot
	Case     ir.GenerationCase
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("template %s needs fragment %q, not built for case %s", e.Template, e.Slot, e.Case)
}

// Check verifies that cs provides every required slot of t before anything
// is written.
func Check(t *catalog.Template, cs ir.ClauseSet) error {
	for _, slot := range t.RequiredSlots(cs.Case) {
		if _, ok := cs.Fragment(slot); !ok {
			return &InconsistencyError{Template: t.Name, Slot: slot, Case: cs.Case}
		}
	}
	return nil
}

// Render returns the finished text of t for cs, ending in a newline.
func Render(t *catalog.Template, cs ir.ClauseSet) (string, error) {
	if err := Check(t, cs); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, line := range t.Lines(cs.Case) {
		if line.Block {
			renderBlockLine(&b, line, cs)
			continue
		}
		for _, p := range line.Parts {
			if !p.IsSlot() {
				b.WriteString(p.Text)
				continue
			}
			text, _ := cs.Fragment(p.Slot)
			b.WriteString(text)
		}
		b.WriteByte('\n')
	}

	out := b.String()
	if strings.Contains(out, "${") {
		return "", fmt.Errorf("template %s, case %s: %w", t.Name, cs.Case, ErrUnresolved)
	}
	return out, nil
}

// renderBlockLine writes a fragment that owns its whole line, indenting each
// of its lines. An absent optional fragment writes nothing at all.
func renderBlockLine(b *strings.Builder, line catalog.Line, cs ir.ClauseSet) {
	text, ok := cs.Fragment(line.Parts[0].Slot)
	if !ok {
		return
	}
	for _, l := range strings.Split(text, "\n") {
		if l != "" {
			b.WriteString(line.Indent)
			b.WriteString(l)
		}
		b.WriteByte('\n')
	}
}
