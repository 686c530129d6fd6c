package ir

import (
	"fmt"
	"strings"
)

// Category classifies a component type placeholder.
type Category int

const (
	// CategoryTag is a plain per-entity component (CD1..CDn).
	CategoryTag Category = iota
	// CategoryShared is a shared/grouping component (SCD1..SCDm).
	CategoryShared
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryTag:
		return "tag"
	case CategoryShared:
		return "shared"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ComponentTypeRef is a synthetic type identifier used only as a placeholder
// name in generated text. Index is 1-based within its category.
type ComponentTypeRef struct {
	Category Category
	Index    int
}

// Tag returns the i-th (1-based) tag component ref.
func Tag(i int) ComponentTypeRef { return ComponentTypeRef{Category: CategoryTag, Index: i} }

// Shared returns the i-th (1-based) shared filter component ref.
func Shared(i int) ComponentTypeRef { return ComponentTypeRef{Category: CategoryShared, Index: i} }

// Name returns the type parameter name, e.g. "CD2" or "SCD1".
func (r ComponentTypeRef) Name() string {
	if r.Category == CategoryShared {
		return fmt.Sprintf("SCD%d", r.Index)
	}
	return fmt.Sprintf("CD%d", r.Index)
}

// Param returns the value parameter name, e.g. "cd2" or "scd1".
func (r ComponentTypeRef) Param() string {
	return strings.ToLower(r.Name())
}

// Bounds are the supported arities of the parameter space.
type Bounds struct {
	MaxTags   int `json:"max_tags" yaml:"max_tags"`
	MaxShared int `json:"max_shared" yaml:"max_shared"`
}

// DefaultBounds are the arities the generated helpers cover.
var DefaultBounds = Bounds{MaxTags: 6, MaxShared: 2}

// Validate rejects negative bounds and the degenerate 0x0 space.
func (b Bounds) Validate() error {
	if b.MaxTags < 0 || b.MaxShared < 0 {
		return fmt.Errorf("bounds must be non-negative, got tags=%d shared=%d", b.MaxTags, b.MaxShared)
	}
	if b.MaxTags == 0 && b.MaxShared == 0 {
		return fmt.Errorf("bounds tags=0 shared=0 leave no valid generation case")
	}
	return nil
}

// GenerationCase is the unit of enumeration.
//
// Invariants (checked by Validate):
//   - 0 <= Tags <= MaxTags, 0 <= Shared <= MaxShared
//   - Tags == 0 && Shared == 0 is excluded
//   - 0 <= Whereable <= Tags
//   - 0 <= FilterThreshold <= Shared
type GenerationCase struct {
	Tags            int `json:"tags"`
	Shared          int `json:"shared"`
	Whereable       int `json:"whereable"`
	FilterThreshold int `json:"filter_threshold"`
}

// Validate reports the first invariant the case violates under b.
func (c GenerationCase) Validate(b Bounds) error {
	switch {
	case c.Tags < 0 || c.Tags > b.MaxTags:
		return &CaseError{Case: c, Field: "tags", Message: fmt.Sprintf("must be in 0..%d", b.MaxTags)}
	case c.Shared < 0 || c.Shared > b.MaxShared:
		return &CaseError{Case: c, Field: "shared", Message: fmt.Sprintf("must be in 0..%d", b.MaxShared)}
	case c.Tags == 0 && c.Shared == 0:
		return &CaseError{Case: c, Field: "tags", Message: "a query needs at least one constraint"}
	case c.Whereable < 0 || c.Whereable > c.Tags:
		return &CaseError{Case: c, Field: "whereable", Message: fmt.Sprintf("must be in 0..%d", c.Tags)}
	case c.FilterThreshold < 0 || c.FilterThreshold > c.Shared:
		return &CaseError{Case: c, Field: "filter_threshold", Message: fmt.Sprintf("must be in 0..%d", c.Shared)}
	}
	return nil
}

// Key identifies the case inside generated names, e.g. "T2S1W1U0".
// U is the number of unbound shared filter types.
func (c GenerationCase) Key() string {
	return fmt.Sprintf("T%dS%dW%dU%d", c.Tags, c.Shared, c.Whereable, c.FilterThreshold)
}

// String implements fmt.Stringer.
func (c GenerationCase) String() string {
	return fmt.Sprintf("(tags=%d shared=%d whereable=%d threshold=%d)",
		c.Tags, c.Shared, c.Whereable, c.FilterThreshold)
}

// Types returns CD1..CDt followed by SCD1..SCDs.
func (c GenerationCase) Types() []ComponentTypeRef {
	refs := make([]ComponentTypeRef, 0, c.Tags+c.Shared)
	for i := 1; i <= c.Tags; i++ {
		refs = append(refs, Tag(i))
	}
	for i := 1; i <= c.Shared; i++ {
		refs = append(refs, Shared(i))
	}
	return refs
}

// Whereables returns the tag types that need a caller predicate.
func (c GenerationCase) Whereables() []ComponentTypeRef {
	refs := make([]ComponentTypeRef, 0, c.Whereable)
	for i := 1; i <= c.Whereable; i++ {
		refs = append(refs, Tag(i))
	}
	return refs
}

// Unbound returns the shared types left as disambiguation placeholders
// (0-based index < FilterThreshold).
func (c GenerationCase) Unbound() []ComponentTypeRef {
	refs := make([]ComponentTypeRef, 0, c.FilterThreshold)
	for i := 1; i <= c.FilterThreshold; i++ {
		refs = append(refs, Shared(i))
	}
	return refs
}

// Bound returns the shared types bound to a filter value.
func (c GenerationCase) Bound() []ComponentTypeRef {
	refs := make([]ComponentTypeRef, 0, c.Shared-c.FilterThreshold)
	for i := c.FilterThreshold + 1; i <= c.Shared; i++ {
		refs = append(refs, Shared(i))
	}
	return refs
}

// HasFilter reports whether at least one shared type is bound.
func (c GenerationCase) HasFilter() bool {
	return c.FilterThreshold < c.Shared
}

// MainType is the type singleton and array templates return: the first tag,
// or the first shared type for shared-only cases.
func (c GenerationCase) MainType() ComponentTypeRef {
	if c.Tags > 0 {
		return Tag(1)
	}
	return Shared(1)
}
