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
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ErrMalformedEntry is returned when an entry line does not hold an
// identifier followed by the expected number of integers.
var ErrMalformedEntry = errors.New("malformed entry")

// Distribution is one player's allocation of units, one integer per
// battlefield.
type Distribution []int

// Reader reads blotto input: a section of entries, one per line, followed
// by matchups, whitespace separated pairs of identifiers.
//
// An entry is an identifier followed by one integer per battlefield,
// separated by whitespace and/or commas:
//
//	P1,10,20,30
//	P2 30 20 10
//
// The entry section ends at the end of the input, at a blank line or at a
// line with an empty identifier.
type Reader struct {
	r      *bufio.Reader
	fields int
	line   int
	done   bool
	err    error
}

// NewReader returns a Reader for entries of the given number of fields.
func NewReader(r io.Reader, fields int) *Reader {
	return &Reader{r: bufio.NewReader(r), fields: fields}
}

// Next returns the next entry. It returns io.EOF once the entry section is
// over, after which Matchups may be used.
func (r *Reader) Next() (string, Distribution, error) {
	if r.done {
		return "", nil, io.EOF
	}

	line, err := r.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", nil, errors.Wrap(err, "read entry")
	}
	r.line++
	if err == io.EOF && line == "" {
		r.done = true
		return "", nil, io.EOF
	}

	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, ",") {
		r.done = true
		return "", nil, io.EOF
	}

	tokens := strings.FieldsFunc(line, func(c rune) bool {
		return c == ',' || unicode.IsSpace(c)
	})
	id, values := tokens[0], tokens[1:]
	if len(values) != r.fields {
		return "", nil, errors.Wrapf(ErrMalformedEntry,
			"line %d: %s has %d values, expected %d", r.line, id, len(values), r.fields)
	}

	d := make(Distribution, r.fields)
	for i, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil {
			return "", nil, errors.Wrapf(ErrMalformedEntry,
				"line %d: %s value %d: %q is not an integer", r.line, id, i, v)
		}
		d[i] = n
	}
	return id, d, nil
}

// Matchups calls yield for each pair of identifiers in the rest of the
// input. A trailing identifier without a partner is ignored. Err reports
// any read error once the iteration is over.
func (r *Reader) Matchups(yield func(a, b string) bool) {
	r.done = true

	s := bufio.NewScanner(r.r)
	s.Split(bufio.ScanWords)
	for s.Scan() {
		a := s.Text()
		if !s.Scan() {
			break
		}
		if !yield(a, s.Text()) {
			return
		}
	}
	if err := s.Err(); err != nil {
		r.err = errors.Wrap(err, "read matchups")
	}
}

// Err returns the error, if any, that ended Matchups.
func (r *Reader) Err() error {
	return r.err
}
