package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygen/internal/ir"
)

func TestParse_InlineSlots(t *testing.T) {
	lines, err := Parse("func Get${key}(w ecs.World${args}) ${main} {")
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.False(t, lines[0].Block)
	assert.Equal(t, []Part{
		{Text: "func Get"},
		{Slot: ir.SlotKey},
		{Text: "(w ecs.World"},
		{Slot: ir.SlotArgs},
		{Text: ") "},
		{Slot: ir.SlotMainType},
		{Text: " {"},
	}, lines[0].Parts)
}

func TestParse_BlockLine(t *testing.T) {
	lines, err := Parse("\t${filter?}\n${predicate}")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.True(t, lines[0].Block)
	assert.Equal(t, "\t", lines[0].Indent)
	assert.Equal(t, []Part{{Slot: ir.SlotFilter, Optional: true}}, lines[0].Parts)

	assert.True(t, lines[1].Block)
	assert.Equal(t, "", lines[1].Indent)
}

func TestParse_Errors(t *testing.T) {
	for _, body := range []string{
		"x ${key",
		"x ${}",
		"x ${?}",
		"x ${name}",
	} {
		_, err := Parse(body)
		assert.Error(t, err, body)
	}
}

func TestParse_NoSlotsIsLiteral(t *testing.T) {
	lines, err := Parse("}\n")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, []Part{{Text: "}"}}, lines[0].Parts)
	assert.Empty(t, lines[1].Parts)
}

func TestApplicabilityMatches(t *testing.T) {
	some := Applicability{Tags: TagsSome, Whereable: WhereableNone}
	assert.True(t, some.Matches(ir.GenerationCase{Tags: 1}))
	assert.False(t, some.Matches(ir.GenerationCase{Shared: 1}))
	assert.False(t, some.Matches(ir.GenerationCase{Tags: 1, Whereable: 1}))

	none := Applicability{Tags: TagsNone, Whereable: WhereableAny}
	assert.True(t, none.Matches(ir.GenerationCase{Shared: 2}))
	assert.False(t, none.Matches(ir.GenerationCase{Tags: 2}))
}
