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

// Package blotto scores Colonel Blotto matchups. Players' distributions are
// read from an input stream into a Roster, then every pair of identifiers
// that follows is scored over weighted battlefields.
package blotto

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
)

// Run reads the entries from in, then scores every matchup that follows,
// writing one result line per matchup to out. A matchup naming an unknown
// player is logged and skipped.
func Run(ctx context.Context, in io.Reader, out io.Writer, weights []int, logger *slog.Logger) error {
	roster, err := NewRoster(len(weights))
	if err != nil {
		return err
	}
	defer func() {
		released := roster.Close()
		logger.Debug("roster closed", "released", released)
	}()

	r := NewReader(in, len(weights))
	for {
		id, d, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := roster.Add(id, d); err != nil {
			return err
		}
	}
	logger.Debug("roster loaded", "players", roster.Len(), "buckets", roster.Buckets())

	var played, missed int
	for a, b := range r.Matchups {
		if err = ctx.Err(); err != nil {
			break
		}
		res, perr := Play(roster, weights, a, b)
		if errors.Is(perr, ErrPlayerNotFound) {
			logger.Warn("one or both players not found", "a", a, "b", b)
			missed++
			continue
		}
		if perr != nil {
			err = perr
			break
		}
		if _, err = fmt.Fprintln(out, res); err != nil {
			err = errors.Wrap(err, "write result")
			break
		}
		played++
	}
	if err != nil {
		return err
	}
	if err := r.Err(); err != nil {
		return err
	}

	logger.Debug("matchups scored", "played", played, "missed", missed)
	return nil
}
