package ecs

import "fmt"

// Allocator selects the lifetime class of a NativeArray.
type Allocator int

const (
	// Temp arrays live for a single call.
	Temp Allocator = iota
	// TempJob arrays live for a few frames.
	TempJob
	// Persistent arrays live until disposed.
	Persistent
)

// String implements fmt.Stringer.
func (a Allocator) String() string {
	switch a {
	case Temp:
		return "Temp"
	case TempJob:
		return "TempJob"
	case Persistent:
		return "Persistent"
	default:
		return fmt.Sprintf("Allocator(%d)", int(a))
	}
}

// NativeArray is a caller-owned array that must be disposed.
type NativeArray[T any] interface {
	Len() int
	At(i int) T
	Set(i int, v T)
	// Slice exposes the backing storage; it is invalid after Dispose.
	Slice() []T
	Allocator() Allocator
	Dispose()
}

// sliceArray is the slice-backed NativeArray stores can return.
type sliceArray[T any] struct {
	data     []T
	alloc    Allocator
	disposed bool
}

// NewNativeArray allocates a zeroed array of n elements.
func NewNativeArray[T any](alloc Allocator, n int) NativeArray[T] {
	return &sliceArray[T]{data: make([]T, n), alloc: alloc}
}

// NativeArrayOf copies values into a new array.
func NativeArrayOf[T any](alloc Allocator, values []T) NativeArray[T] {
	data := make([]T, len(values))
	copy(data, values)
	return &sliceArray[T]{data: data, alloc: alloc}
}

func (a *sliceArray[T]) Len() int {
	a.check()
	return len(a.data)
}

func (a *sliceArray[T]) At(i int) T {
	a.check()
	return a.data[i]
}

func (a *sliceArray[T]) Set(i int, v T) {
	a.check()
	a.data[i] = v
}

func (a *sliceArray[T]) Slice() []T {
	a.check()
	return a.data
}

func (a *sliceArray[T]) Allocator() Allocator { return a.alloc }

// Dispose releases the storage. Disposing twice panics, as does any use
// after Dispose.
func (a *sliceArray[T]) Dispose() {
	a.check()
	a.disposed = true
	a.data = nil
}

func (a *sliceArray[T]) check() {
	if a.disposed {
		panic("ecs: use of disposed NativeArray")
	}
}
