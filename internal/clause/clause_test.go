package clause

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygen/internal/enumerate"
	"github.com/roach88/querygen/internal/ir"
)

func TestBuild_SingleTag(t *testing.T) {
	cs := Build(ir.GenerationCase{Tags: 1})

	assert.Equal(t, []ir.ComponentTypeRef{ir.Tag(1)}, cs.ComponentTypes)
	assert.Empty(t, cs.Arguments)
	assert.Empty(t, cs.FilterStatement)
	assert.Empty(t, cs.PredicateBlock)

	args, ok := cs.Fragment(ir.SlotArgs)
	assert.True(t, ok)
	assert.Equal(t, "", args)
	assert.Equal(t, "CD1 ecs.ComponentData", cs.Fragments[ir.SlotConstraints])
	assert.Equal(t, "ecs.TypeOf[CD1]()", cs.Fragments[ir.SlotQueryTypes])
	assert.Equal(t, "CD1", cs.Fragments[ir.SlotMainType])
	assert.Equal(t, "T1S0W0U0", cs.Fragments[ir.SlotKey])
}

func TestBuild_TypeOrder(t *testing.T) {
	cs := Build(ir.GenerationCase{Tags: 2, Shared: 2, FilterThreshold: 0})

	assert.Equal(t, "CD1, CD2, SCD1, SCD2", cs.Fragments[ir.SlotTypes])
	assert.Equal(t,
		"CD1 ecs.ComponentData, CD2 ecs.ComponentData, SCD1 ecs.SharedComponentData, SCD2 ecs.SharedComponentData",
		cs.Fragments[ir.SlotConstraints])
	assert.Equal(t,
		"ecs.TypeOf[CD1](), ecs.TypeOf[CD2](), ecs.SharedTypeOf[SCD1](), ecs.SharedTypeOf[SCD2]()",
		cs.Fragments[ir.SlotQueryTypes])
}

func TestBuild_Whereable(t *testing.T) {
	cs := Build(ir.GenerationCase{Tags: 1, Whereable: 1})

	require.Len(t, cs.Arguments, 1)
	assert.Equal(t, ir.Argument{Name: "where", Type: "func(CD1) bool", Kind: ir.ArgPredicate}, cs.Arguments[0])
	assert.Equal(t, ", where func(CD1) bool", cs.Fragments[ir.SlotArgs])

	block, ok := cs.Fragment(ir.SlotPredicate)
	require.True(t, ok)
	assert.Contains(t, block, "raw := q.ToEntityArray(ecs.TempJob)\ndefer raw.Dispose()")
	assert.Contains(t, block, "cd1s := ecs.ToComponentDataArray[CD1](q, ecs.TempJob)\ndefer cd1s.Dispose()")
	assert.Contains(t, block, "if where(cd1s.At(i)) {")
	assert.True(t, strings.HasSuffix(block, "}"))
}

func TestBuild_PartialWhereable(t *testing.T) {
	cs := Build(ir.GenerationCase{Tags: 3, Whereable: 2})

	assert.Equal(t, "func(CD1, CD2) bool", cs.Arguments[0].Type)
	assert.Contains(t, cs.PredicateBlock, "if where(cd1s.At(i), cd2s.At(i)) {")
	assert.NotContains(t, cs.PredicateBlock, "CD3", "only whereable types are snapshotted")
}

func TestBuild_SharedFilterSplit(t *testing.T) {
	tests := []struct {
		threshold int
		args      string
		filter    string
	}{
		{0, ", scd1 SCD1, scd2 SCD2", "q.SetSharedFilter(scd1, scd2)"},
		{1, ", unboundSCD1 bool, scd2 SCD2", "q.SetSharedFilter(scd2)"},
		{2, ", unboundSCD1 bool, unboundSCD2 bool", ""},
	}

	for _, tt := range tests {
		cs := Build(ir.GenerationCase{Tags: 1, Shared: 2, FilterThreshold: tt.threshold})
		assert.Equal(t, tt.args, cs.Fragments[ir.SlotArgs], "threshold %d", tt.threshold)
		assert.Equal(t, tt.filter, cs.FilterStatement, "threshold %d", tt.threshold)

		_, present := cs.Fragment(ir.SlotFilter)
		assert.Equal(t, tt.filter != "", present, "threshold %d", tt.threshold)
	}
}

func TestBuild_ScenarioC_BoundSharedOnly(t *testing.T) {
	cs := Build(ir.GenerationCase{Shared: 1, FilterThreshold: 0})

	require.Len(t, cs.Arguments, 1)
	assert.Equal(t, ir.ArgFilterValue, cs.Arguments[0].Kind)
	assert.Equal(t, "SCD1", cs.Arguments[0].Type)
	assert.Equal(t, "q.SetSharedFilter(scd1)", cs.FilterStatement)
	assert.Equal(t, "SCD1", cs.Fragments[ir.SlotMainType])
}

func TestBuild_ScenarioD_UnboundSharedOnly(t *testing.T) {
	cs := Build(ir.GenerationCase{Shared: 1, FilterThreshold: 1})

	require.Len(t, cs.Arguments, 1)
	assert.Equal(t, ir.ArgPlaceholder, cs.Arguments[0].Kind)
	assert.Equal(t, "bool", cs.Arguments[0].Type)
	assert.Empty(t, cs.FilterStatement)
}

// TestSignatureNonCollision checks that, for every fixed (tags, shared,
// whereable), the argument type sequences across thresholds are distinct.
func TestSignatureNonCollision(t *testing.T) {
	groups := make(map[[3]int]map[string]int)
	for _, c := range enumerate.Cases(ir.DefaultBounds) {
		key := [3]int{c.Tags, c.Shared, c.Whereable}
		if groups[key] == nil {
			groups[key] = make(map[string]int)
		}
		sig := strings.Join(Build(c).ArgTypes(), ",")
		prev, dup := groups[key][sig]
		assert.False(t, dup, "case %s collides with threshold %d on (%s)", c, prev, sig)
		groups[key][sig] = c.FilterThreshold
	}
}

func TestBuild_IsPure(t *testing.T) {
	c := ir.GenerationCase{Tags: 2, Shared: 1, Whereable: 1}
	a := Build(c)
	b := Build(c)
	assert.Equal(t, a, b)

	a.Fragments[ir.SlotArgs] = "mutated"
	assert.NotEqual(t, "mutated", b.Fragments[ir.SlotArgs], "clause sets must not share state")
}
