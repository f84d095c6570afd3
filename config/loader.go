// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory.
const DefaultConfigFile = ".debateverify.yaml"

// EnvPrefix is prepended to the upper-cased yaml key of each overridable
// setting, e.g. DEBATEVERIFY_BASE_URL.
const EnvPrefix = "DEBATEVERIFY_"

// FindConfigFile returns the config file to use, or "" when there is none.
// An explicit path is returned as is, even if it does not exist, so that
// LoadFile can report it.
func FindConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if p := XDGConfigFile(); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadFile decodes the YAML file at path on top of cfg. Keys missing from
// the file keep their current value.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with DEBATEVERIFY_* variables found by lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}
	duration := func(key string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = d
		return nil
	}

	str("BASE_URL", &cfg.BaseURL)
	str("ROOM_ID", &cfg.RoomID)
	str("SCREENSHOT", &cfg.Screenshot)
	str("CHROME_URL", &cfg.ChromeURL)
	str("REPORT", &cfg.ReportPath)
	str("GOLDEN", &cfg.GoldenPath)
	str("DEBUG_DIR", &cfg.DebugDir)
	str("WINDOW_SIZE", &cfg.WindowSize)
	for key, dst := range map[string]*bool{
		"HEADLESS":      &cfg.Headless,
		"UPDATE_GOLDEN": &cfg.UpdateGolden,
		"VERBOSE":       &cfg.Verbose,
	} {
		if err := boolean(key, dst); err != nil {
			return err
		}
	}
	if err := duration("TIMEOUT", &cfg.Timeout); err != nil {
		return err
	}
	return duration("STEP_TIMEOUT", &cfg.StepTimeout)
}

// Load builds a Config from defaults, the config file and the process
// environment.
func Load(explicitPath string) (*Config, error) {
	cfg := Default()
	if path := FindConfigFile(explicitPath); path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.RoomID = strings.TrimSpace(cfg.RoomID)
	return cfg, nil
}
