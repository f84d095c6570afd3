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

// Package config holds the settings of a verification run.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// DEBATEVERIFY_* environment variables. Command line flags are applied last
// by the caller.
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// AppName is used for the XDG config directory and the env prefix.
const AppName = "debateverify"

const (
	DefaultBaseURL        = "http://localhost:3000/"
	DefaultRoomID         = "123"
	DefaultScreenshotPath = "jules-scratch/verification/verification.png"
	DefaultTimeout        = 90 * time.Second
	DefaultStepTimeout    = 15 * time.Second
	DefaultDebugDir       = "jules-scratch/verification/debug"
	DefaultWindowSize     = "1280x720"

	// Room codes accepted by the debate app.
	MinRoomID = 1
	MaxRoomID = 999
)

// Config is the complete configuration of one verification run.
type Config struct {
	// BaseURL is the address of the running debate application.
	BaseURL string `yaml:"base_url"`
	// RoomID is typed into the room code input and expected in the room URL.
	RoomID string `yaml:"room_id"`
	// Screenshot is where the final screenshot is written. Any existing file
	// is overwritten.
	Screenshot string `yaml:"screenshot"`

	Headless bool `yaml:"headless"`
	// ChromeURL attaches to an already running browser's DevTools endpoint
	// instead of launching a local one.
	ChromeURL string `yaml:"chrome_url"`
	// WindowSize is WIDTHxHEIGHT of a launched browser window.
	WindowSize string `yaml:"window_size"`

	Timeout     time.Duration `yaml:"timeout"`
	StepTimeout time.Duration `yaml:"step_timeout"`

	ReportPath   string `yaml:"report"`
	GoldenPath   string `yaml:"golden"`
	UpdateGolden bool   `yaml:"update_golden"`
	DebugDir     string `yaml:"debug_dir"`
	Verbose      bool   `yaml:"verbose"`
}

// Default returns a Config with every field set to its default value.
func Default() *Config {
	return &Config{
		BaseURL:     DefaultBaseURL,
		RoomID:      DefaultRoomID,
		Screenshot:  DefaultScreenshotPath,
		Headless:    true,
		Timeout:     DefaultTimeout,
		StepTimeout: DefaultStepTimeout,
		DebugDir:    DefaultDebugDir,
		WindowSize:  DefaultWindowSize,
	}
}

// XDGConfigFile returns the per-user config file location.
// On Linux: ~/.config/debateverify/config.yaml
func XDGConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}
	if err := ValidateRoomID(c.RoomID); err != nil {
		return err
	}
	if strings.TrimSpace(c.Screenshot) == "" {
		return ErrEmptyScreenshot
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.StepTimeout <= 0 || c.StepTimeout > c.Timeout {
		return ErrInvalidStepTimeout
	}
	if _, _, err := ParseWindowSize(c.WindowSize); err != nil {
		return err
	}
	if c.UpdateGolden && c.GoldenPath == "" {
		return ErrGoldenUpdateNoPath
	}
	return nil
}

// ValidateRoomID reports whether id is a room code the app accepts: a plain
// decimal number from 1 to 999.
func ValidateRoomID(id string) error {
	if id == "" || strings.TrimLeft(id, "0123456789") != "" {
		return fmt.Errorf("%w: %q", ErrInvalidRoomID, id)
	}
	n, err := strconv.Atoi(id)
	if err != nil || n < MinRoomID || n > MaxRoomID {
		return fmt.Errorf("%w: %q", ErrInvalidRoomID, id)
	}
	return nil
}

// ParseWindowSize parses WIDTHxHEIGHT, for example 1280x720.
func ParseWindowSize(s string) (width, height int, err error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if ok {
		width, err = strconv.Atoi(w)
		if err == nil {
			height, err = strconv.Atoi(h)
		}
	}
	if !ok || err != nil || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWindowSize, s)
	}
	return width, height, nil
}

// PageURL resolves path against the base URL.
func (c *Config) PageURL(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
