package clause

import (
	"fmt"
	"strings"

	"github.com/roach88/querygen/internal/ir"
)

// EnginePackage is the qualifier generated code uses for the query engine.
const EnginePackage = "ecs"

// Capability constraints attached to type parameters.
var (
	TagCapability    = EnginePackage + ".ComponentData"
	SharedCapability = EnginePackage + ".SharedComponentData"
)

// PredicateParam is the name of the caller predicate argument.
const PredicateParam = "where"

// Build derives the ClauseSet for c.
func Build(c ir.GenerationCase) ir.ClauseSet {
	types := c.Types()
	cs := ir.ClauseSet{
		Case:           c,
		ComponentTypes: types,
		Constraints:    constraints(types),
		Arguments:      arguments(c),
	}
	if c.HasFilter() {
		cs.FilterStatement = filterStatement(c)
	}
	if c.Whereable > 0 {
		cs.PredicateBlock = predicateBlock(c)
	}
	cs.Fragments = fragments(cs)
	return cs
}

func constraints(types []ir.ComponentTypeRef) []ir.Constraint {
	out := make([]ir.Constraint, len(types))
	for i, t := range types {
		capability := TagCapability
		if t.Category == ir.CategoryShared {
			capability = SharedCapability
		}
		out[i] = ir.Constraint{Type: t, Capability: capability}
	}
	return out
}

func arguments(c ir.GenerationCase) []ir.Argument {
	var args []ir.Argument
	if c.Whereable > 0 {
		args = append(args, ir.Argument{
			Name: PredicateParam,
			Type: predicateType(c.Whereables()),
			Kind: ir.ArgPredicate,
		})
	}
	for _, t := range c.Unbound() {
		args = append(args, ir.Argument{Name: "unbound" + t.Name(), Type: "bool", Kind: ir.ArgPlaceholder})
	}
	for _, t := range c.Bound() {
		args = append(args, ir.Argument{Name: t.Param(), Type: t.Name(), Kind: ir.ArgFilterValue})
	}
	return args
}

// predicateType is the func type of the caller predicate, e.g. func(CD1, CD2) bool.
func predicateType(whereables []ir.ComponentTypeRef) string {
	return "func(" + joinRefs(whereables, ir.ComponentTypeRef.Name) + ") bool"
}

func filterStatement(c ir.GenerationCase) string {
	return fmt.Sprintf("q.SetSharedFilter(%s)", joinRefs(c.Bound(), ir.ComponentTypeRef.Param))
}

// predicateBlock snapshots every whereable type, walks the raw entities and
// the snapshots in lock-step and keeps the entities the predicate accepts.
// Every native array is released by defer, so panics in the predicate do not
// leak them. The result is left in kept.
func predicateBlock(c ir.GenerationCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "raw := q.ToEntityArray(%s.TempJob)\n", EnginePackage)
	b.WriteString("defer raw.Dispose()\n")

	whereables := c.Whereables()
	values := make([]string, len(whereables))
	for i, t := range whereables {
		snapshot := t.Param() + "s"
		fmt.Fprintf(&b, "%s := %s.ToComponentDataArray[%s](q, %s.TempJob)\n",
			snapshot, EnginePackage, t.Name(), EnginePackage)
		fmt.Fprintf(&b, "defer %s.Dispose()\n", snapshot)
		values[i] = snapshot + ".At(i)"
	}

	fmt.Fprintf(&b, "kept := make([]%s.Entity, 0, raw.Len())\n", EnginePackage)
	b.WriteString("for i := 0; i < raw.Len(); i++ {\n")
	fmt.Fprintf(&b, "\tif %s(%s) {\n", PredicateParam, strings.Join(values, ", "))
	b.WriteString("\t\tkept = append(kept, raw.At(i))\n")
	b.WriteString("\t}\n")
	b.WriteString("}")
	return b.String()
}

func fragments(cs ir.ClauseSet) map[ir.Slot]string {
	f := map[ir.Slot]string{
		ir.SlotKey:         cs.Case.Key(),
		ir.SlotMainType:    cs.Case.MainType().Name(),
		ir.SlotTypes:       joinRefs(cs.ComponentTypes, ir.ComponentTypeRef.Name),
		ir.SlotConstraints: constraintList(cs.Constraints),
		ir.SlotQueryTypes:  queryTypes(cs.ComponentTypes),
		ir.SlotArgs:        argumentList(cs.Arguments),
	}
	if cs.FilterStatement != "" {
		f[ir.SlotFilter] = cs.FilterStatement
	}
	if cs.PredicateBlock != "" {
		f[ir.SlotPredicate] = cs.PredicateBlock
	}
	return f
}

func constraintList(cons []ir.Constraint) string {
	parts := make([]string, len(cons))
	for i, c := range cons {
		parts[i] = c.Type.Name() + " " + c.Capability
	}
	return strings.Join(parts, ", ")
}

func queryTypes(types []ir.ComponentTypeRef) string {
	parts := make([]string, len(types))
	for i, t := range types {
		ctor := "TypeOf"
		if t.Category == ir.CategoryShared {
			ctor = "SharedTypeOf"
		}
		parts[i] = fmt.Sprintf("%s.%s[%s]()", EnginePackage, ctor, t.Name())
	}
	return strings.Join(parts, ", ")
}

// argumentList renders args with a leading ", " so templates can append it
// after their fixed parameters. No arguments renders as "".
func argumentList(args []ir.Argument) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(", ")
		b.WriteString(a.Name)
		b.WriteByte(' ')
		b.WriteString(a.Type)
	}
	return b.String()
}

func joinRefs(refs []ir.ComponentTypeRef, name func(ir.ComponentTypeRef) string) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = name(r)
	}
	return strings.Join(parts, ", ")
}
