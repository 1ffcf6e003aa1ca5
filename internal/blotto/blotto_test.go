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
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/gmap"
	"github.com/cockroachdb/gmap/internal/logging"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestReader(t *testing.T) {
	in := "A,5,1,1\n  B 1 1 1  \nC, 2, 2 ,2\n\nA B\nB C\n  C\tA extra\n"
	r := NewReader(strings.NewReader(in), 3)

	type entry struct {
		id string
		d  Distribution
	}
	var entries []entry
	for {
		id, d, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		entries = append(entries, entry{id, d})
	}
	require.Equal(t, []entry{
		{"A", Distribution{5, 1, 1}},
		{"B", Distribution{1, 1, 1}},
		{"C", Distribution{2, 2, 2}},
	}, entries)

	// The entry section stays over.
	_, _, err := r.Next()
	require.Equal(t, io.EOF, err)

	var pairs [][2]string
	r.Matchups(func(a, b string) bool {
		pairs = append(pairs, [2]string{a, b})
		return true
	})
	require.NoError(t, r.Err())
	require.Equal(t, [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}}, pairs)
}

func TestReaderEndOfEntries(t *testing.T) {
	testCases := []struct {
		name     string
		in       string
		expected int
	}{
		{"eof", "A 1 2\nB 3 4", 2},
		{"empty", "", 0},
		{"blank", "A 1 2\n   \nB 3 4\n", 1},
		{"empty-id", "A 1 2\n,3,4\nB 3 4\n", 1},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(c.in), 2)
			var n int
			for {
				_, _, err := r.Next()
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
				n++
			}
			require.EqualValues(t, c.expected, n)
		})
	}
}

func TestReaderMalformed(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		msg  string
	}{
		{"too-few", "A 1 2\n", "A has 2 values, expected 3"},
		{"too-many", "A 1 2 3 4\n", "A has 4 values, expected 3"},
		{"not-int", "B 1 x 3\n", `B value 1: "x" is not an integer`},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := NewReader(strings.NewReader(c.in), 3).Next()
			require.True(t, errors.Is(err, ErrMalformedEntry))
			require.ErrorContains(t, err, c.msg)
		})
	}
}

func TestScore(t *testing.T) {
	weights := []int{1, 2, 3}
	a := Distribution{5, 1, 1}
	b := Distribution{1, 1, 1}
	require.EqualValues(t, 3.5, Score(a, b, weights))
	require.EqualValues(t, 2.5, Score(b, a, weights))

	c := Distribution{0, 0, 7}
	require.EqualValues(t, 3, Score(c, a, weights))
	require.EqualValues(t, 3, Score(a, c, weights))
}

func newTestRoster(t *testing.T, entries map[string]Distribution) *Roster {
	r, err := NewRoster(3)
	require.NoError(t, err)
	for id, d := range entries {
		require.NoError(t, r.Add(id, d))
	}
	return r
}

func TestPlay(t *testing.T) {
	weights := []int{1, 2, 3}
	r := newTestRoster(t, map[string]Distribution{
		"A": {5, 1, 1},
		"B": {1, 1, 1},
		"C": {1, 5, 1},
	})
	defer r.Close()

	res, err := Play(r, weights, "A", "B")
	require.NoError(t, err)
	require.Equal(t, "A 3.5 - B 2.5", res.String())

	// The winner is printed first regardless of argument order.
	res, err = Play(r, weights, "B", "A")
	require.NoError(t, err)
	require.Equal(t, "A 3.5 - B 2.5", res.String())

	res, err = Play(r, weights, "A", "C")
	require.NoError(t, err)
	require.Equal(t, Result{First: "C", FirstScore: 3.5, Second: "A", SecondScore: 2.5}, res)

	// On an exact tie the left argument comes first.
	r2 := newTestRoster(t, map[string]Distribution{
		"X": {1, 2, 3},
		"Y": {1, 2, 3},
	})
	defer r2.Close()
	res, err = Play(r2, weights, "Y", "X")
	require.NoError(t, err)
	require.Equal(t, "Y 3.0 - X 3.0", res.String())
	res, err = Play(r2, weights, "X", "Y")
	require.NoError(t, err)
	require.Equal(t, "X 3.0 - Y 3.0", res.String())

	_, err = Play(r, weights, "A", "Z")
	require.True(t, errors.Is(err, ErrPlayerNotFound))
	_, err = Play(r, weights, "Z", "A")
	require.True(t, errors.Is(err, ErrPlayerNotFound))
}

func TestRoster(t *testing.T) {
	r, err := NewRoster(2, gmap.WithInitialCapacity[string, Distribution](1))
	require.NoError(t, err)

	for i := 0; i < 40; i++ {
		require.NoError(t, r.Add("P"+strconv.Itoa(i), Distribution{i, i}))
	}
	require.EqualValues(t, 40, r.Len())
	require.EqualValues(t, 64, r.Buckets())

	d, ok := r.Lookup("P7")
	require.True(t, ok)
	require.Equal(t, Distribution{7, 7}, d)
	_, ok = r.Lookup("P40")
	require.False(t, ok)

	// Replacing a distribution releases the previous one.
	old, _ := r.Lookup("P1")
	require.NoError(t, r.Add("P1", Distribution{9, 9}))
	require.Equal(t, Distribution{0, 0}, old)
	require.EqualValues(t, 40, r.Len())

	require.True(t, errors.Is(r.Add("P2", Distribution{1}), ErrMalformedEntry))

	ids, err := r.IDs()
	require.NoError(t, err)
	require.Len(t, ids, 40)
	require.Equal(t, "P0", ids[0])
	require.Equal(t, "P9", ids[39])

	// Every stored distribution is released exactly once.
	require.EqualValues(t, 41, r.Close())
	require.EqualValues(t, 0, r.Len())
	require.EqualValues(t, 41, r.Close())
}

func TestRun(t *testing.T) {
	in := `A,5,1,1
B,1,1,1
C,1,5,1

A B
B C
A Z
C A
`
	var out, log bytes.Buffer
	logger := logging.NewCLILogger(&log, "debug")
	err := Run(context.Background(), strings.NewReader(in), &out, []int{1, 2, 3}, logger)
	require.NoError(t, err)
	require.Equal(t, "A 3.5 - B 2.5\nC 4.0 - B 2.0\nC 3.5 - A 2.5\n", out.String())
	require.Contains(t, log.String(), "WARN: one or both players not found: a=A b=Z")
	require.Contains(t, log.String(), "DEBUG: roster closed: released=3")
	require.Contains(t, log.String(), "DEBUG: matchups scored: played=3 missed=1")
}

func TestRunMalformed(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := Run(context.Background(), strings.NewReader("A,1,2\n\nA A\n"), &out, []int{1, 2, 3}, logger)
	require.True(t, errors.Is(err, ErrMalformedEntry))
	require.Empty(t, out.String())
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := Run(ctx, strings.NewReader("A,1\nB,2\n\nA B\n"), &out, []int{1}, logger)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, out.String())
}
