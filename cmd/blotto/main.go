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

// Command blotto scores Colonel Blotto matchups.
//
//	blotto [--input FILE] [--config FILE] [--log-level LEVEL] WEIGHT...
//
// The input holds one entry per line, an identifier followed by one integer
// per battlefield, then a blank line, then pairs of identifiers to score.
// For each pair the winner is printed first:
//
//	$ printf 'A,5,1,1\nB,1,1,1\n\nA B\n' | blotto 1 2 3
//	A 3.5 - B 2.5
package main

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/cockroachdb/gmap/internal/blotto"
	"github.com/cockroachdb/gmap/internal/config"
	"github.com/cockroachdb/gmap/internal/logging"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const name = "blotto"

var version = "v0.0.1-default"

const (
	inputFlag    = "input"
	configFlag   = "config"
	logLevelFlag = "log-level"
)

func main() {
	cmd := newCommand(afero.NewOsFs(), os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logging.NewCLILogger(os.Stderr, "error").Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func newCommand(fs afero.Fs, stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      name,
		Version:   version,
		Usage:     "Score Colonel Blotto matchups over weighted battlefields",
		ArgsUsage: "WEIGHT...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    inputFlag,
				Aliases: []string{"i"},
				Usage:   "Read entries and matchups from `FILE` instead of stdin",
			},
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "YAML or JSONC `FILE` with battlefields and log_level",
			},
			&cli.StringFlag{
				Name:  logLevelFlag,
				Usage: "Log level [debug, info, warn, error]",
				Value: "info",
			},
		},
		Writer:    stdout,
		ErrWriter: stderr,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := &config.Config{LogLevel: cmd.String(logLevelFlag)}
			if path := cmd.String(configFlag); path != "" {
				c, err := config.Load(fs, path)
				if err != nil {
					return err
				}
				if c.LogLevel != "" && !cmd.IsSet(logLevelFlag) {
					cfg.LogLevel = c.LogLevel
				}
				cfg.Battlefields = c.Battlefields
			}

			if cmd.Args().Len() > 0 {
				weights, err := parseWeights(cmd.Args().Slice())
				if err != nil {
					return err
				}
				cfg.Battlefields = weights
			}
			if err := cfg.Validate(); err != nil {
				return errors.Wrap(err, "invalid command-line argument")
			}

			logger := logging.NewCLILogger(stderr, cfg.LogLevel)
			logger.Debug("starting", "version", version, "battlefields", len(cfg.Battlefields))

			in := stdin
			if path := cmd.String(inputFlag); path != "" {
				f, err := fs.Open(path)
				if err != nil {
					return errors.Wrapf(err, "failed to open input file: %s", path)
				}
				defer f.Close()
				in = f
			}

			return blotto.Run(ctx, in, stdout, cfg.Battlefields, logger)
		},
	}
}

func parseWeights(args []string) ([]int, error) {
	weights := make([]int, len(args))
	for i, a := range args {
		w, err := strconv.Atoi(a)
		if err != nil {
			return nil, errors.Errorf("invalid command-line argument: battlefield %d: %q is not an integer", i, a)
		}
		weights[i] = w
	}
	return weights, nil
}
