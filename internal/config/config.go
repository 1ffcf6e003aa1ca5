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

// Package config reads the optional run configuration of the blotto
// command. YAML files (.yaml, .yml) and JSON files with comments (.json,
// .jsonc) are supported.
package config

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Config represents the run configuration.
type Config struct {
	Battlefields []int `yaml:"battlefields" json:"battlefields"`
	LogLevel     string `yaml:"log_level" json:"log_level"`
}

// Load reads the config file at path from fs.
func Load(fs afero.Fs, path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path required")
	}

	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	c := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, errors.Wrapf(err, "failed to decode config file: %s", path)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(b), c); err != nil {
			return nil, errors.Wrapf(err, "failed to decode config file: %s", path)
		}
	default:
		return nil, errors.Errorf("unsupported config file extension %q", ext)
	}
	return c, nil
}

// Validate checks that the config describes at least one battlefield and
// that no battlefield is worth a negative amount.
func (c *Config) Validate() error {
	if len(c.Battlefields) == 0 {
		return errors.New("at least one battlefield required")
	}
	for i, w := range c.Battlefields {
		if w < 0 {
			return errors.Errorf("battlefield %d has negative value %d", i, w)
		}
	}
	return nil
}
