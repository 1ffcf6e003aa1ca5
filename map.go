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

// package gmap is a Go implementation of a generic hash map that resolves
// collisions by separate chaining. See also:
// https://en.wikipedia.org/wiki/Hash_table#Separate_chaining.
//
// # Key behavior
//
// Unlike Go's builtin map[K]V, a Map[K,V] places no constraint on K. The
// semantics of keys are supplied by the caller when the map is constructed:
//
//   - hash(key) computes the bucket a key lives in.
//   - compare(a, b) orders two keys. Only equality (a result of 0) is used.
//   - copy(key) produces an independently owned copy of a key. The map calls
//     copy exactly once when a key is first inserted and never aliases the
//     caller's key afterwards.
//   - destroy(key) releases an owned copy. The map calls destroy exactly
//     once when a key leaves the map, either through Delete or Close.
//
// Values are never copied or released by the map. Put and Delete hand the
// previous value back to the caller, which is the caller's only chance to
// reclaim it, and Close leaves values alone. A caller that owns its values
// should release them with ForEach before calling Close.
//
// # Layout
//
// The map holds a slice of bucket heads. Each bucket is a singly-linked
// chain of entries whose keys hash to that bucket modulo the current
// capacity. New entries are linked at the head of their chain, so within a
// bucket the most recently inserted key comes first.
//
//	 buckets (capacity=4)
//	+---+
//	| 0 | --> [k=c] --> [k=a] --> nil
//	+---+
//	| 1 | --> nil
//	+---+
//	| 2 | --> [k=b] --> nil
//	+---+
//	| 3 | --> [k=d] --> [k=e] --> [k=f] --> nil
//	+---+
//
// # Growth
//
// Before an insert the map checks whether the number of entries equals the
// number of buckets. If it does, the bucket array is doubled and every
// entry is relinked into the bucket hash(key)%newCapacity. Entries are
// moved rather than copied, so growth never calls copy or destroy.
//
// Note that the trigger fires on an entry count equal to the bucket count,
// not on chain length. Under chaining a handful of long chains can exist
// while most buckets are empty and the trigger has not fired. The trigger
// is kept as is so that capacity follows a predictable schedule:
// DefaultCapacity, then doubling at every multiple.
//
// # Allocation
//
// All memory the map uses for bucket arrays, entries and key slices is
// obtained from an Allocator. The default allocator uses make() and new()
// and never fails. A custom allocator may refuse a request by returning
// nil, in which case the operation reports ErrAlloc and leaves the map
// exactly as it was before the call. A refused growth is not an error: the
// insert that triggered it proceeds against the existing buckets.
package gmap

import (
	"errors"
	"fmt"
	"strings"
)

const (
	debug = false

	// DefaultCapacity is the number of buckets a Map starts out with.
	DefaultCapacity = 100
)

var (
	// ErrMissingFunc is returned by New when one of the key behavior
	// functions is nil.
	ErrMissingFunc = errors.New("gmap: missing key function")
	// ErrAlloc is returned when the allocator refuses a request or a key
	// cannot be copied. The map is left unchanged.
	ErrAlloc = errors.New("gmap: allocation failed")
)

// HashFunc computes the hash of a key. It must be deterministic for the
// lifetime of the map.
type HashFunc[K any] func(key K) uint64

// CompareFunc orders two keys, returning a negative value, zero or a
// positive value. The map only tests the result against zero.
type CompareFunc[K any] func(a, b K) int

// CopyFunc returns an independently owned copy of key.
type CopyFunc[K any] func(key K) (K, error)

// DestroyFunc releases a key previously returned by a CopyFunc.
type DestroyFunc[K any] func(key K)

// Entry holds an owned key, its value and the link to the next entry in the
// same bucket.
type Entry[K any, V any] struct {
	key   K
	value V
	next  *Entry[K, V]
}

// Map is an unordered map from keys to values with Put, Get, Delete,
// ForEach and Keys operations. Collisions are resolved by chaining entries
// within a bucket. The semantics of keys are supplied to New; see the
// package documentation.
//
// A Map is NOT goroutine-safe.
type Map[K any, V any] struct {
	hash    HashFunc[K]
	compare CompareFunc[K]
	copy    CopyFunc[K]
	destroy DestroyFunc[K]
	// The allocator to use for buckets, entries and key slices.
	allocator Allocator[K, V]
	// buckets is capacity in length. buckets[i] is the head of the chain of
	// entries whose hash%capacity is i.
	buckets []*Entry[K, V]
	// The number of entries across all buckets (i.e. the number of elements
	// in the map).
	used int
	// initialCapacity is consumed by New.
	initialCapacity int
}

// New constructs a new Map using the supplied key behavior. New returns
// ErrMissingFunc if any of the functions is nil and ErrAlloc if the initial
// bucket array cannot be allocated. The map starts out with DefaultCapacity
// buckets unless WithInitialCapacity is given.
func New[K any, V any](
	copy CopyFunc[K],
	compare CompareFunc[K],
	hash HashFunc[K],
	destroy DestroyFunc[K],
	options ...Option[K, V],
) (*Map[K, V], error) {
	if copy == nil || compare == nil || hash == nil || destroy == nil {
		return nil, ErrMissingFunc
	}

	m := &Map[K, V]{
		hash:            hash,
		compare:         compare,
		copy:            copy,
		destroy:         destroy,
		allocator:       defaultAllocator[K, V]{},
		initialCapacity: DefaultCapacity,
	}

	for _, op := range options {
		op.apply(m)
	}

	if m.initialCapacity < 1 {
		m.initialCapacity = 1
	}
	m.buckets = m.allocator.AllocBuckets(m.initialCapacity)
	if m.buckets == nil {
		return nil, ErrAlloc
	}

	m.checkInvariants()
	return m, nil
}

// Close destroys every key in the map and releases the entries and bucket
// array back to the configured allocator. Values are not released. It is
// invalid to use a Map after it has been closed, though Close itself is
// idempotent.
func (m *Map[K, V]) Close() {
	if m == nil || m.buckets == nil {
		return
	}

	for i := range m.buckets {
		for e := m.buckets[i]; e != nil; {
			next := e.next
			m.destroy(e.key)
			m.allocator.FreeEntry(e)
			e = next
		}
		m.buckets[i] = nil
	}
	m.allocator.FreeBuckets(m.buckets)
	m.buckets = nil
	m.used = 0
}

// Put inserts an entry into the map, overwriting the value of an existing
// entry with the same key. If the key was present the previous value is
// returned with replaced=true and the caller owns it from then on. If the
// key was not present it is copied into the map. ErrAlloc is returned, and
// the map left exactly as it was, if the key cannot be copied or the entry
// cannot be allocated. Put on a nil or closed map is a no-op.
func (m *Map[K, V]) Put(key K, value V) (old V, replaced bool, err error) {
	if m == nil || len(m.buckets) == 0 {
		return old, false, nil
	}

	// The growth check happens on every Put, so even an update of an
	// existing key in a full map doubles it. A failed insert never grows the
	// map: the key copy and the entry are obtained first.
	full := m.used == len(m.buckets)

	if e := m.find(key); e != nil {
		if debug {
			fmt.Printf("put(updating): key=%v\n", key)
		}
		if full {
			m.grow()
		}
		old, e.value = e.value, value
		m.checkInvariants()
		return old, true, nil
	}

	owned, err := m.copy(key)
	if err != nil {
		return old, false, fmt.Errorf("%w: copy key: %w", ErrAlloc, err)
	}
	e := m.allocator.AllocEntry()
	if e == nil {
		m.destroy(owned)
		return old, false, ErrAlloc
	}

	if full {
		m.grow()
	}
	i := m.bucketIndex(key)
	*e = Entry[K, V]{key: owned, value: value, next: m.buckets[i]}
	m.buckets[i] = e
	m.used++

	if debug {
		fmt.Printf("put(inserted): bucket=%d key=%v used=%d\n", i, key, m.used)
	}
	m.checkInvariants()
	return old, false, nil
}

// Get retrieves the value from the map for the specified key, returning
// ok=false if the key is not present. Ownership of the value is not
// transferred.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	if e := m.find(key); e != nil {
		return e.value, true
	}
	return value, false
}

// Has returns true if the map contains an entry for key.
func (m *Map[K, V]) Has(key K) bool {
	return m.find(key) != nil
}

// Delete deletes the entry corresponding to the specified key from the map,
// destroying the map's copy of the key and returning the value, which the
// caller owns from then on. It is a noop to delete a non-existent key, in
// which case ok is false.
func (m *Map[K, V]) Delete(key K) (value V, ok bool) {
	if m == nil || len(m.buckets) == 0 {
		return value, false
	}

	i := m.bucketIndex(key)
	if debug {
		fmt.Printf("delete(%v): bucket=%d\n", key, i)
	}

	var prev *Entry[K, V]
	for e := m.buckets[i]; e != nil; prev, e = e, e.next {
		if m.compare(e.key, key) != 0 {
			continue
		}
		if prev != nil {
			prev.next = e.next
		} else {
			m.buckets[i] = e.next
		}
		value = e.value
		m.destroy(e.key)
		*e = Entry[K, V]{}
		m.allocator.FreeEntry(e)
		m.used--

		if debug {
			fmt.Printf("delete(%v): bucket=%d used=%d\n", key, i, m.used)
		}
		m.checkInvariants()
		return value, true
	}

	if debug {
		fmt.Printf("delete(not-found): bucket=%d\n", i)
	}
	return value, false
}

// ForEach calls visit for each entry in the map, bucket by bucket and in
// chain order within a bucket. The order is unspecified but stable for a
// given state of the map. visit may modify the value through the supplied
// pointer. It must not add or delete keys; doing so leaves the iteration
// undefined.
func (m *Map[K, V]) ForEach(visit func(key K, value *V)) {
	if m == nil || visit == nil {
		return
	}
	for i := range m.buckets {
		for e := m.buckets[i]; e != nil; e = e.next {
			visit(e.key, &e.value)
		}
	}
}

// All calls yield sequentially for each key and value present in the map,
// in the same order as ForEach. If yield returns false, the iteration
// stops. The same restriction on adding and deleting keys applies.
//
//	for k, v := range m.All {
//	  fmt.Printf("%v: %v\n", k, v)
//	}
func (m *Map[K, V]) All(yield func(key K, value V) bool) {
	if m == nil {
		return
	}
	for i := range m.buckets {
		for e := m.buckets[i]; e != nil; e = e.next {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Keys returns a newly allocated slice holding every key in the map, in the
// same order as ForEach. The slice belongs to the caller, the keys in it
// remain owned by the map and are only valid until they are deleted.
// ErrAlloc is returned if the allocator refuses the slice.
func (m *Map[K, V]) Keys() ([]K, error) {
	if m == nil {
		return nil, nil
	}
	keys := m.allocator.AllocKeys(m.used)
	if keys == nil {
		return nil, ErrAlloc
	}
	keys = keys[:0]
	m.ForEach(func(k K, _ *V) {
		keys = append(keys, k)
	})
	return keys, nil
}

// Len returns the number of entries in the map. A nil map has no entries.
func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return m.used
}

// Capacity returns the number of buckets in the map.
func (m *Map[K, V]) Capacity() int {
	if m == nil {
		return 0
	}
	return len(m.buckets)
}

func (m *Map[K, V]) bucketIndex(key K) int {
	return int(m.hash(key) % uint64(len(m.buckets)))
}

func (m *Map[K, V]) find(key K) *Entry[K, V] {
	if m == nil || len(m.buckets) == 0 {
		return nil
	}
	i := m.bucketIndex(key)
	if debug {
		fmt.Printf("get(%v): bucket=%d\n", key, i)
	}
	for e := m.buckets[i]; e != nil; e = e.next {
		if m.compare(e.key, key) == 0 {
			return e
		}
	}
	return nil
}

// grow doubles the number of buckets, relinking every entry into the bucket
// it hashes to under the new capacity. If the allocator refuses the new
// bucket array the map is left untouched.
func (m *Map[K, V]) grow() {
	oldCapacity := len(m.buckets)
	newCapacity := 2 * oldCapacity
	newBuckets := m.allocator.AllocBuckets(newCapacity)
	if newBuckets == nil {
		if debug {
			fmt.Printf("grow: capacity=%d->%d refused\n", oldCapacity, newCapacity)
		}
		return
	}

	if debug {
		fmt.Printf("grow: capacity=%d->%d used=%d\n", oldCapacity, newCapacity, m.used)
	}

	for i := range m.buckets {
		for e := m.buckets[i]; e != nil; {
			next := e.next
			j := m.hash(e.key) % uint64(newCapacity)
			e.next = newBuckets[j]
			newBuckets[j] = e
			e = next
		}
		m.buckets[i] = nil
	}

	m.allocator.FreeBuckets(m.buckets)
	m.buckets = newBuckets
	m.checkInvariants()
}

func (m *Map[K, V]) checkInvariants() {
	if invariants {
		if len(m.buckets) < 1 {
			panic(fmt.Sprintf("invariant failed: capacity %d < 1", len(m.buckets)))
		}

		// Every entry must live in the bucket its key hashes to, and no key
		// may appear twice.
		var used int
		for i := range m.buckets {
			for e := m.buckets[i]; e != nil; e = e.next {
				if j := m.bucketIndex(e.key); j != i {
					panic(fmt.Sprintf("invariant failed: key %v in bucket %d, expected %d\n%s",
						e.key, i, j, m.debugString()))
				}
				for o := e.next; o != nil; o = o.next {
					if m.compare(e.key, o.key) == 0 {
						panic(fmt.Sprintf("invariant failed: duplicate key %v in bucket %d\n%s",
							e.key, i, m.debugString()))
					}
				}
				used++
			}
		}

		if used != m.used {
			panic(fmt.Sprintf("invariant failed: found %d entries, but used count is %d\n%s",
				used, m.used, m.debugString()))
		}
	}
}

func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d\n", len(m.buckets), m.used)
	for i := range m.buckets {
		if m.buckets[i] == nil {
			continue
		}
		fmt.Fprintf(&buf, "  %4d:", i)
		for e := m.buckets[i]; e != nil; e = e.next {
			fmt.Fprintf(&buf, " %v [h=%016x]", e.key, m.hash(e.key))
		}
		buf.WriteString("\n")
	}
	return buf.String()
}
