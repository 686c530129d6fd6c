// Package ecs is the query engine contract the generated helpers call into.
//
// querygen does not implement an entity store. It publishes the interface a
// store must satisfy (World, Query) plus the generic adapters generated code
// needs, since Go methods cannot take type parameters:
//
//	ToComponentDataArray[T]  caller-owned array of T, Dispose when done
//	ComponentsOf[T]          copied []T, nothing to release
//	GetSingleton[T]          the only T matched by a query
//	GetSharedComponent[T]    the shared T of one entity
//
// Every generated helper scopes its Query with defer q.Release().
package ecs
