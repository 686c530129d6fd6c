package catalog

import (
	"fmt"
	"strings"

	"github.com/roach88/querygen/internal/ir"
)

// Part is a literal run of text or a slot reference.
type Part struct {
	Text     string
	Slot     ir.Slot
	Optional bool
}

// IsSlot reports whether p references a fragment.
func (p Part) IsSlot() bool { return p.Slot != "" }

// Line is one template line. A line whose only non-blank part is a slot is a
// block line: a multi-line fragment is indented by Indent on every line, and
// an absent optional fragment drops the line entirely.
type Line struct {
	Parts  []Part
	Block  bool
	Indent string
}

const (
	slotOpen  = "${"
	slotClose = "}"
)

// Parse splits a template body into lines of parts. Unknown slots, empty
// references and unterminated references are errors.
func Parse(body string) ([]Line, error) {
	raw := strings.Split(body, "\n")
	lines := make([]Line, 0, len(raw))
	for n, text := range raw {
		line, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func parseLine(text string) (Line, error) {
	var line Line
	rest := text
	for {
		i := strings.Index(rest, slotOpen)
		if i < 0 {
			if rest != "" {
				line.Parts = append(line.Parts, Part{Text: rest})
			}
			break
		}
		if i > 0 {
			line.Parts = append(line.Parts, Part{Text: rest[:i]})
		}
		rest = rest[i+len(slotOpen):]
		j := strings.Index(rest, slotClose)
		if j < 0 {
			return Line{}, fmt.Errorf("unterminated %s", slotOpen)
		}
		ref := rest[:j]
		rest = rest[j+len(slotClose):]

		part := Part{}
		if strings.HasSuffix(ref, "?") {
			part.Optional = true
			ref = strings.TrimSuffix(ref, "?")
		}
		if ref == "" {
			return Line{}, fmt.Errorf("empty slot reference")
		}
		part.Slot = ir.Slot(ref)
		if !part.Slot.IsKnown() {
			return Line{}, fmt.Errorf("unknown slot %q", ref)
		}
		line.Parts = append(line.Parts, part)
	}

	switch len(line.Parts) {
	case 1:
		if line.Parts[0].IsSlot() {
			line.Block = true
		}
	case 2:
		if !line.Parts[0].IsSlot() && strings.TrimSpace(line.Parts[0].Text) == "" && line.Parts[1].IsSlot() {
			line.Block = true
			line.Indent = line.Parts[0].Text
			line.Parts = line.Parts[1:]
		}
	}
	return line, nil
}
