package enumerate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygen/internal/ir"
)

func TestCountDefaultBounds(t *testing.T) {
	assert.Equal(t, 167, Count(ir.DefaultBounds))
	assert.Len(t, Cases(ir.DefaultBounds), 167)
}

func TestCountMatchesCasesForSmallBounds(t *testing.T) {
	for tags := 0; tags <= 4; tags++ {
		for shared := 0; shared <= 3; shared++ {
			b := ir.Bounds{MaxTags: tags, MaxShared: shared}
			assert.Equal(t, Count(b), len(Cases(b)), "bounds %+v", b)
		}
	}
}

// TestCasesCompleteAndUnique checks the emitted set against the set-builder
// definition of the space, independently of the loop order.
func TestCasesCompleteAndUnique(t *testing.T) {
	b := ir.DefaultBounds
	seen := make(map[ir.GenerationCase]bool)
	for _, c := range Cases(b) {
		require.False(t, seen[c], "duplicate case %s", c)
		require.NoError(t, c.Validate(b))
		seen[c] = true
	}

	want := 0
	for tags := 0; tags <= 6; tags++ {
		for shared := 0; shared <= 2; shared++ {
			for where := 0; where <= tags; where++ {
				for threshold := 0; threshold <= shared; threshold++ {
					c := ir.GenerationCase{Tags: tags, Shared: shared, Whereable: where, FilterThreshold: threshold}
					if tags == 0 && shared == 0 {
						assert.False(t, seen[c], "empty query must not be emitted")
						continue
					}
					want++
					assert.True(t, seen[c], "missing case %s", c)
				}
			}
		}
	}
	assert.Equal(t, want, len(seen))
}

func TestCasesOrder(t *testing.T) {
	got := Cases(ir.Bounds{MaxTags: 1, MaxShared: 1})
	want := []ir.GenerationCase{
		{Tags: 0, Shared: 1, Whereable: 0, FilterThreshold: 0},
		{Tags: 0, Shared: 1, Whereable: 0, FilterThreshold: 1},
		{Tags: 1, Shared: 0, Whereable: 0, FilterThreshold: 0},
		{Tags: 1, Shared: 0, Whereable: 1, FilterThreshold: 0},
		{Tags: 1, Shared: 1, Whereable: 0, FilterThreshold: 0},
		{Tags: 1, Shared: 1, Whereable: 0, FilterThreshold: 1},
		{Tags: 1, Shared: 1, Whereable: 1, FilterThreshold: 0},
		{Tags: 1, Shared: 1, Whereable: 1, FilterThreshold: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Cases() mismatch (-want +got):\n%s", diff)
	}
}

func TestCasesDeterministic(t *testing.T) {
	a := Cases(ir.DefaultBounds)
	b := Cases(ir.DefaultBounds)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("re-enumeration differs:\n%s", diff)
	}

	h1, err := ir.CaseSetHash(a)
	require.NoError(t, err)
	h2, err := ir.CaseSetHash(b)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestEachStopsOnError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := Each(ir.DefaultBounds, func(ir.GenerationCase) error {
		calls++
		if calls == 3 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, calls)
}

func TestPairsSkipEmptyQuery(t *testing.T) {
	pairs := Pairs(ir.DefaultBounds)
	assert.Len(t, pairs, 20)
	assert.Equal(t, [2]int{0, 1}, pairs[0])
	assert.Equal(t, [2]int{6, 2}, pairs[len(pairs)-1])
	assert.NotContains(t, pairs, [2]int{0, 0})
}
