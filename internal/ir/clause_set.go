package ir

import "fmt"

// Slot names a fragment a template can reference.
type Slot string

// Slots produced by the clause builder.
const (
	SlotKey         Slot = "key"         // case key used as generated-name suffix
	SlotMainType    Slot = "main"        // first tag type, or first shared type
	SlotTypes       Slot = "types"       // CD1, CD2, SCD1
	SlotConstraints Slot = "constraints" // CD1 ecs.ComponentData, SCD1 ecs.SharedComponentData
	SlotQueryTypes  Slot = "queryTypes"  // ecs.TypeOf[CD1](), ecs.SharedTypeOf[SCD1]()
	SlotArgs        Slot = "args"        // leading-comma argument list, may be empty
	SlotFilter      Slot = "filter"      // present only when a shared type is bound
	SlotPredicate   Slot = "predicate"   // present only when Whereable > 0
)

// KnownSlots lists every slot in declaration order.
var KnownSlots = []Slot{
	SlotKey, SlotMainType, SlotTypes, SlotConstraints,
	SlotQueryTypes, SlotArgs, SlotFilter, SlotPredicate,
}

// IsKnown reports whether s is produced by the clause builder.
func (s Slot) IsKnown() bool {
	for _, k := range KnownSlots {
		if k == s {
			return true
		}
	}
	return false
}

// ArgKind distinguishes the parameters of a generated helper.
type ArgKind int

const (
	// ArgPredicate is the caller predicate over whereable snapshot values.
	ArgPredicate ArgKind = iota
	// ArgFilterValue is a bound shared filter value passed to the query.
	ArgFilterValue
	// ArgPlaceholder is an inert bool that only disambiguates signatures.
	ArgPlaceholder
)

// String returns the kind name.
func (k ArgKind) String() string {
	switch k {
	case ArgPredicate:
		return "predicate"
	case ArgFilterValue:
		return "filter"
	case ArgPlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("argkind(%d)", int(k))
	}
}

// Argument is one parameter of a generated helper.
type Argument struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	Kind ArgKind `json:"kind"`
}

// Constraint is a type parameter with its capability constraint.
type Constraint struct {
	Type       ComponentTypeRef `json:"-"`
	Capability string           `json:"capability"`
}

// ClauseSet is the per-case fragment bundle consumed by templates.
// Built fresh per case by the clause builder; never shared across cases.
type ClauseSet struct {
	Case           GenerationCase
	ComponentTypes []ComponentTypeRef
	Constraints    []Constraint
	Arguments      []Argument

	// FilterStatement is empty when no shared type is bound.
	FilterStatement string
	// PredicateBlock is empty when Case.Whereable == 0.
	PredicateBlock string

	// Fragments holds the rendered text of every present slot.
	Fragments map[Slot]string
}

// Fragment returns the text bound to slot and whether it is present.
// An empty but present fragment (e.g. no arguments) is valid.
func (cs ClauseSet) Fragment(slot Slot) (string, bool) {
	text, ok := cs.Fragments[slot]
	return text, ok
}

// ArgTypes returns the argument type sequence, the part of a signature that
// overload resolution sees.
func (cs ClauseSet) ArgTypes() []string {
	types := make([]string, len(cs.Arguments))
	for i, a := range cs.Arguments {
		types[i] = a.Type
	}
	return types
}
