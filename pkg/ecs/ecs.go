package ecs

import (
	"fmt"
	"reflect"
)

// Entity is an opaque handle to a record in the store.
type Entity struct {
	Index   int32
	Version int32
}

// ComponentData is satisfied by plain per-entity components.
type ComponentData interface{ any }

// SharedComponentData is satisfied by shared components. Their values key the
// groups entities are stored in, so they must be comparable.
type SharedComponentData interface{ comparable }

// ComponentType identifies a component type in a query.
type ComponentType struct {
	Type   reflect.Type
	Shared bool
}

// String implements fmt.Stringer.
func (t ComponentType) String() string {
	if t.Shared {
		return fmt.Sprintf("shared(%s)", t.Type)
	}
	return t.Type.String()
}

// TypeOf returns the query constraint for a plain component.
func TypeOf[T ComponentData]() ComponentType {
	return ComponentType{Type: reflect.TypeFor[T]()}
}

// SharedTypeOf returns the query constraint for a shared component.
func SharedTypeOf[T SharedComponentData]() ComponentType {
	return ComponentType{Type: reflect.TypeFor[T](), Shared: true}
}

// World creates queries and resolves shared component values.
type World interface {
	// CreateQuery returns a query over entities having all types.
	CreateQuery(types ...ComponentType) Query
	// SharedComponent returns the shared value of type t on e.
	SharedComponent(e Entity, t ComponentType) any
}

// Query is a live query handle. Release must be called exactly once.
type Query interface {
	// CalculateEntityCount returns the number of matching entities.
	CalculateEntityCount() int
	// ToEntityArray returns a caller-owned array of matching entities.
	ToEntityArray(alloc Allocator) NativeArray[Entity]
	// Entities returns a copy of the matching entities.
	Entities() []Entity
	// ComponentArray returns a caller-owned NativeArray[T] for t, in the
	// same order as ToEntityArray.
	ComponentArray(t ComponentType, alloc Allocator) any
	// Components returns a copied []T for t.
	Components(t ComponentType) any
	// Singleton returns the T of the only matching entity; it panics unless
	// exactly one entity matches.
	Singleton(t ComponentType) any
	// SingletonEntity returns the only matching entity; it panics unless
	// exactly one entity matches.
	SingletonEntity() Entity
	// SetSharedFilter restricts results to entities whose shared components
	// equal values, matched by type.
	SetSharedFilter(values ...any)
	// Release frees the query.
	Release()
}

// ToComponentDataArray returns the caller-owned T values of q's entities.
func ToComponentDataArray[T ComponentData](q Query, alloc Allocator) NativeArray[T] {
	return q.ComponentArray(TypeOf[T](), alloc).(NativeArray[T])
}

// ComponentsOf returns a copy of the T values of q's entities.
func ComponentsOf[T ComponentData](q Query) []T {
	return q.Components(TypeOf[T]()).([]T)
}

// GetSingleton returns the T of the only entity q matches.
func GetSingleton[T ComponentData](q Query) T {
	return q.Singleton(TypeOf[T]()).(T)
}

// GetSharedComponent returns the shared T of e.
func GetSharedComponent[T SharedComponentData](w World, e Entity) T {
	return w.SharedComponent(e, SharedTypeOf[T]()).(T)
}
