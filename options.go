// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gmap

// Option provide an interface to do work on Map while it is being created.
type Option[K any, V any] interface {
	apply(m *Map[K, V])
}

type initialCapacityOption[K any, V any] struct {
	capacity int
}

func (op initialCapacityOption[K, V]) apply(m *Map[K, V]) {
	m.initialCapacity = op.capacity
}

// WithInitialCapacity is an option to specify the number of buckets a
// Map[K,V] starts out with. Values below 1 are treated as 1.
func WithInitialCapacity[K any, V any](capacity int) Option[K, V] {
	return initialCapacityOption[K, V]{capacity}
}

// Allocator specifies an interface for allocating and releasing memory used
// by a Map. The default allocator utilizes Go's builtin make() and new() and
// allows the GC to reclaim memory.
//
// An allocator signals an allocation failure by returning nil. The Map
// reacts by failing the operation with ErrAlloc (or, for growth, by keeping
// its current buckets) without modifying its contents.
type Allocator[K any, V any] interface {
	// AllocBuckets should return a slice equivalent to make([]*Entry[K,V], n).
	AllocBuckets(n int) []*Entry[K, V]

	// AllocEntry should return a pointer equivalent to new(Entry[K,V]).
	AllocEntry() *Entry[K, V]

	// AllocKeys should return a slice with a capacity of at least n. Its
	// length is ignored.
	AllocKeys(n int) []K

	// FreeBuckets can optional release the memory associated with the
	// supplied slice that is guaranteed to have been allocated by
	// AllocBuckets. Every element of the slice is nil.
	FreeBuckets(b []*Entry[K, V])

	// FreeEntry can optional release the memory associated with the supplied
	// entry that is guaranteed to have been allocated by AllocEntry.
	FreeEntry(e *Entry[K, V])
}

type defaultAllocator[K any, V any] struct{}

func (defaultAllocator[K, V]) AllocBuckets(n int) []*Entry[K, V] {
	return make([]*Entry[K, V], n)
}

func (defaultAllocator[K, V]) AllocEntry() *Entry[K, V] {
	return new(Entry[K, V])
}

func (defaultAllocator[K, V]) AllocKeys(n int) []K {
	return make([]K, 0, n)
}

func (defaultAllocator[K, V]) FreeBuckets(b []*Entry[K, V]) {
}

func (defaultAllocator[K, V]) FreeEntry(e *Entry[K, V]) {
}

type allocatorOption[K any, V any] struct {
	allocator Allocator[K, V]
}

func (op allocatorOption[K, V]) apply(m *Map[K, V]) {
	m.allocator = op.allocator
}

// WithAllocator is an option for specify the Allocator to use for a Map[K,V].
func WithAllocator[K any, V any](allocator Allocator[K, V]) Option[K, V] {
	return allocatorOption[K, V]{allocator}
}
