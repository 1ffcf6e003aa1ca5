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

package blotto

import (
	"slices"

	"github.com/cockroachdb/gmap"
	"github.com/pkg/errors"
)

// Roster maps player identifiers to their distributions. The roster owns
// the distributions it holds and releases each of them exactly once, either
// when it is replaced by Add or when the roster is closed.
type Roster struct {
	players *gmap.Map[string, Distribution]
	fields  int
	// released counts the distributions handed back by the map.
	released int
}

// NewRoster returns an empty roster for distributions of the given number
// of fields. options are passed through to the underlying map.
func NewRoster(fields int, options ...gmap.Option[string, Distribution]) (*Roster, error) {
	players, err := gmap.NewStringMap[Distribution](options...)
	if err != nil {
		return nil, errors.Wrap(err, "create roster")
	}
	return &Roster{players: players, fields: fields}, nil
}

// Add stores d for id, replacing and releasing any previous distribution.
func (r *Roster) Add(id string, d Distribution) error {
	if len(d) != r.fields {
		return errors.Wrapf(ErrMalformedEntry, "%s has %d values, expected %d", id, len(d), r.fields)
	}
	old, replaced, err := r.players.Put(id, d)
	if err != nil {
		return errors.Wrapf(err, "add %s", id)
	}
	if replaced {
		r.release(&old)
	}
	return nil
}

// Lookup returns the distribution of id. The roster keeps ownership.
func (r *Roster) Lookup(id string) (Distribution, bool) {
	return r.players.Get(id)
}

// Len returns the number of players.
func (r *Roster) Len() int {
	return r.players.Len()
}

// Buckets returns the number of buckets of the underlying map.
func (r *Roster) Buckets() int {
	return r.players.Capacity()
}

// IDs returns the player identifiers in sorted order.
func (r *Roster) IDs() ([]string, error) {
	ids, err := r.players.Keys()
	if err != nil {
		return nil, errors.Wrap(err, "list players")
	}
	slices.Sort(ids)
	return ids, nil
}

// Close releases every distribution and the map holding them. It returns
// the total number of distributions released over the roster's lifetime.
func (r *Roster) Close() int {
	r.players.ForEach(func(_ string, d *Distribution) {
		r.release(d)
	})
	r.players.Close()
	return r.released
}

func (r *Roster) release(d *Distribution) {
	if *d == nil {
		return
	}
	clear(*d)
	*d = nil
	r.released++
}
