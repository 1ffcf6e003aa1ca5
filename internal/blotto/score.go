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
	"fmt"

	"github.com/pkg/errors"
)

// ErrPlayerNotFound is returned by Play when an identifier is not in the
// roster.
var ErrPlayerNotFound = errors.New("player not found")

// Score returns the total a earns against b. On each battlefield the side
// with more units earns the battlefield's full weight, a tie splits it
// evenly and the side with fewer units earns nothing.
func Score(a, b Distribution, weights []int) float64 {
	var score float64
	for i, w := range weights {
		switch {
		case a[i] > b[i]:
			score += float64(w)
		case a[i] == b[i]:
			score += float64(w) / 2
		}
	}
	return score
}

// Result is the outcome of a matchup, winner first.
type Result struct {
	First       string
	FirstScore  float64
	Second      string
	SecondScore float64
}

func (r Result) String() string {
	return fmt.Sprintf("%s %.1f - %s %.1f", r.First, r.FirstScore, r.Second, r.SecondScore)
}

// Play scores a against b. The higher score comes first in the result; on
// an exact tie a comes first.
func Play(r *Roster, weights []int, a, b string) (Result, error) {
	da, okA := r.Lookup(a)
	db, okB := r.Lookup(b)
	if !okA || !okB {
		return Result{}, errors.Wrapf(ErrPlayerNotFound, "%s vs %s", a, b)
	}

	scoreA, scoreB := Score(da, db, weights), Score(db, da, weights)
	if scoreB > scoreA {
		return Result{First: b, FirstScore: scoreB, Second: a, SecondScore: scoreA}, nil
	}
	return Result{First: a, FirstScore: scoreA, Second: b, SecondScore: scoreB}, nil
}
