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

import "strings"

// CloneString is a CopyFunc for string keys. The clone does not share
// memory with s, so a key carved out of a larger input buffer does not pin
// that buffer.
func CloneString(s string) (string, error) {
	return strings.Clone(s), nil
}

// CompareStrings is a CompareFunc for string keys.
func CompareStrings(a, b string) int {
	return strings.Compare(a, b)
}

// Hash29 is a HashFunc for string keys. It is the polynomial
// sum(s[i] * 29^(i+1)), computed with wrapping unsigned arithmetic.
func Hash29(s string) uint64 {
	var sum uint64
	factor := uint64(29)
	for i := 0; i < len(s); i++ {
		sum += uint64(s[i]) * factor
		factor *= 29
	}
	return sum
}

// ReleaseString is a DestroyFunc for string keys. Strings are reclaimed by
// the GC so there is nothing to do.
func ReleaseString(string) {}

// NewStringMap returns a Map keyed by strings using CloneString,
// CompareStrings, Hash29 and ReleaseString.
func NewStringMap[V any](options ...Option[string, V]) (*Map[string, V], error) {
	return New[string, V](CloneString, CompareStrings, Hash29, ReleaseString, options...)
}
