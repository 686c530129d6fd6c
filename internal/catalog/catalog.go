// Package catalog holds the fixed set of query helper templates.
//
// The catalog is declared in CUE (catalog.cue, embedded) and every document,
// built-in or user supplied, is unified with schema.cue at load time. Each template body is parsed
// once into a structured form: lines of literal text and typed slot
// references. Fragment text is never rescanned, so emitted code that happens
// to look like a slot cannot be substituted twice.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/querygen/internal/ir"
)

//go:embed catalog.cue
var builtinCUE []byte

//go:embed schema.cue
var schemaCUE []byte

// Tag applicability values.
const (
	TagsAny  = "any"
	TagsSome = "some"
	TagsNone = "none"
)

// Whereable applicability values.
const (
	WhereableAny  = "any"
	WhereableNone = "none"
)

// Applicability is the rule deciding which cases a template renders for.
type Applicability struct {
	Tags      string `json:"tags"`
	Whereable string `json:"whereable"`
}

// Matches reports whether c falls under the rule.
func (a Applicability) Matches(c ir.GenerationCase) bool {
	switch a.Tags {
	case TagsSome:
		if c.Tags == 0 {
			return false
		}
	case TagsNone:
		if c.Tags != 0 {
			return false
		}
	}
	if a.Whereable == WhereableNone && c.Whereable != 0 {
		return false
	}
	return true
}

// Template is one parsed catalog entry.
type Template struct {
	Name   string
	Prefix string
	When   Applicability

	body      []Line
	whereBody []Line
	source    map[string]any
}

// Lines returns the parsed body to render for c.
func (t *Template) Lines(c ir.GenerationCase) []Line {
	if c.Whereable > 0 && t.whereBody != nil {
		return t.whereBody
	}
	return t.body
}

// FuncName is the generated function name for c.
func (t *Template) FuncName(c ir.GenerationCase) string {
	return t.Prefix + c.Key()
}

// RequiredSlots lists the slots the body for c cannot render without.
func (t *Template) RequiredSlots(c ir.GenerationCase) []ir.Slot {
	var slots []ir.Slot
	seen := make(map[ir.Slot]bool)
	for _, line := range t.Lines(c) {
		for _, p := range line.Parts {
			if p.IsSlot() && !p.Optional && !seen[p.Slot] {
				seen[p.Slot] = true
				slots = append(slots, p.Slot)
			}
		}
	}
	return slots
}

// Catalog is the ordered template set.
type Catalog struct {
	templates []*Template
	hash      string
}

// Templates returns all templates in catalog order.
func (c *Catalog) Templates() []*Template {
	return c.templates
}

// Lookup returns the template with the given name.
func (c *Catalog) Lookup(name string) (*Template, bool) {
	for _, t := range c.templates {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Applicable returns the templates that render for gc, in catalog order.
func (c *Catalog) Applicable(gc ir.GenerationCase) []*Template {
	var out []*Template
	for _, t := range c.templates {
		if t.When.Matches(gc) {
			out = append(out, t)
		}
	}
	return out
}

// Hash identifies the catalog content.
func (c *Catalog) Hash() string {
	return c.hash
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog. The embedded document is part of the
// program, so failing to load it panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		cat, err := Load(builtinCUE, "catalog.cue")
		if err != nil {
			panic(fmt.Sprintf("catalog: built-in catalog is invalid: %v", err))
		}
		defaultCatalog = cat
	})
	return defaultCatalog
}

// LoadFile loads a catalog from a CUE file on disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CatalogError{Message: fmt.Sprintf("reading catalog: %v", err)}
	}
	return Load(data, path)
}

// definition mirrors #Template for decoding.
type definition struct {
	Name      string        `json:"name"`
	Prefix    string        `json:"prefix"`
	When      Applicability `json:"when"`
	Body      string        `json:"body"`
	WhereBody string        `json:"whereBody"`
}

// Load compiles a CUE catalog document, unifies it with the schema and parses
// every template body.
func Load(src []byte, filename string) (*Catalog, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	doc := ctx.CompileBytes(src, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	v := schema.Unify(doc)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	listVal := v.LookupPath(cue.ParsePath("templates"))
	if !listVal.Exists() {
		return nil, &CatalogError{Field: "templates", Message: "templates is required", Pos: v.Pos()}
	}
	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	cat := &Catalog{}
	names := make(map[string]bool)
	prefixes := make(map[string]bool)
	hashInput := make(map[string]any)
	for iter.Next() {
		val := iter.Value()
		var def definition
		if err := val.Decode(&def); err != nil {
			return nil, formatCUEError(err)
		}
		if names[def.Name] {
			return nil, &CatalogError{Template: def.Name, Field: "name", Message: "duplicate template name", Pos: val.Pos()}
		}
		if prefixes[def.Prefix] {
			return nil, &CatalogError{Template: def.Name, Field: "prefix", Message: fmt.Sprintf("prefix %q already used", def.Prefix), Pos: val.Pos()}
		}
		names[def.Name] = true
		prefixes[def.Prefix] = true

		tmpl, err := newTemplate(def)
		if err != nil {
			var catErr *CatalogError
			if errors.As(err, &catErr) && !catErr.Pos.IsValid() {
				catErr.Pos = val.Pos()
			}
			return nil, err
		}
		cat.templates = append(cat.templates, tmpl)
		hashInput[def.Name] = tmpl.source
	}

	if len(cat.templates) == 0 {
		return nil, &CatalogError{Field: "templates", Message: "at least one template is required", Pos: listVal.Pos()}
	}

	hash, err := ir.CatalogHash(hashInput)
	if err != nil {
		return nil, err
	}
	cat.hash = hash
	return cat, nil
}

func newTemplate(def definition) (*Template, error) {
	body, err := Parse(def.Body)
	if err != nil {
		return nil, &CatalogError{Template: def.Name, Field: "body", Message: err.Error()}
	}
	t := &Template{
		Name:   def.Name,
		Prefix: def.Prefix,
		When:   def.When,
		body:   body,
		source: map[string]any{
			"prefix":    def.Prefix,
			"tags":      def.When.Tags,
			"whereable": def.When.Whereable,
			"body":      def.Body,
		},
	}
	if def.WhereBody != "" {
		if def.When.Whereable == WhereableNone {
			return nil, &CatalogError{Template: def.Name, Field: "whereBody", Message: "whereBody is unreachable when whereable is none"}
		}
		t.whereBody, err = Parse(def.WhereBody)
		if err != nil {
			return nil, &CatalogError{Template: def.Name, Field: "whereBody", Message: err.Error()}
		}
		t.source["whereBody"] = def.WhereBody
	}
	return t, nil
}

// formatCUEError converts the first CUE error into a CatalogError with position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &CatalogError{Field: "cue", Message: err.Error()}
	}
	first := errs[0]
	var pos token.Pos
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		pos = positions[0]
	}
	return &CatalogError{Field: "cue", Message: first.Error(), Pos: pos}
}
