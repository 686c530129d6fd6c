package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y int }

type team string

// fakeQuery serves fixed columns for the adapter tests.
type fakeQuery struct {
	entities  []Entity
	positions []position
	filter    []any
	released  bool
}

func (q *fakeQuery) CalculateEntityCount() int { return len(q.entities) }
func (q *fakeQuery) ToEntityArray(alloc Allocator) NativeArray[Entity] {
	return NativeArrayOf(alloc, q.entities)
}
func (q *fakeQuery) Entities() []Entity { return append([]Entity(nil), q.entities...) }
func (q *fakeQuery) ComponentArray(t ComponentType, alloc Allocator) any {
	return NativeArrayOf(alloc, q.positions)
}
func (q *fakeQuery) Components(t ComponentType) any {
	return append([]position(nil), q.positions...)
}
func (q *fakeQuery) Singleton(t ComponentType) any { return q.positions[0] }
func (q *fakeQuery) SingletonEntity() Entity       { return q.entities[0] }
func (q *fakeQuery) SetSharedFilter(values ...any) { q.filter = values }
func (q *fakeQuery) Release()                      { q.released = true }

type fakeWorld struct {
	query  *fakeQuery
	shared map[Entity]any
	types  []ComponentType
}

func (w *fakeWorld) CreateQuery(types ...ComponentType) Query {
	w.types = types
	return w.query
}

func (w *fakeWorld) SharedComponent(e Entity, t ComponentType) any { return w.shared[e] }

func TestTypeOf(t *testing.T) {
	assert.False(t, TypeOf[position]().Shared)
	assert.True(t, SharedTypeOf[team]().Shared)
	assert.Equal(t, "ecs.position", TypeOf[position]().String())
	assert.Equal(t, "shared(ecs.team)", SharedTypeOf[team]().String())
}

func TestAdapters(t *testing.T) {
	e := Entity{Index: 4, Version: 1}
	q := &fakeQuery{entities: []Entity{e}, positions: []position{{X: 1, Y: 2}}}
	w := &fakeWorld{query: q, shared: map[Entity]any{e: team("red")}}

	arr := ToComponentDataArray[position](q, Temp)
	require.Equal(t, 1, arr.Len())
	assert.Equal(t, position{X: 1, Y: 2}, arr.At(0))
	arr.Dispose()

	assert.Equal(t, []position{{X: 1, Y: 2}}, ComponentsOf[position](q))
	assert.Equal(t, position{X: 1, Y: 2}, GetSingleton[position](q))
	assert.Equal(t, team("red"), GetSharedComponent[team](w, e))
}

// TestGeneratedShape mirrors the body the catalog emits for
// GetSharedSingletonT0S1W0U0 against the contract.
func TestGeneratedShape(t *testing.T) {
	e := Entity{Index: 1}
	q := &fakeQuery{entities: []Entity{e}}
	w := &fakeWorld{query: q, shared: map[Entity]any{e: team("blue")}}

	got := func(w World, scd1 team) team {
		q := w.CreateQuery(SharedTypeOf[team]())
		defer q.Release()
		q.SetSharedFilter(scd1)
		e := q.SingletonEntity()
		return GetSharedComponent[team](w, e)
	}(w, "blue")

	assert.Equal(t, team("blue"), got)
	assert.Equal(t, []any{team("blue")}, q.filter)
	assert.True(t, q.released)
	assert.Equal(t, []ComponentType{SharedTypeOf[team]()}, w.types)
}
