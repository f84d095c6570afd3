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

package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/ttbt-io/debateverify/config"
	"github.com/ttbt-io/debateverify/verification"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the debate room verification",
		Long: `Run the debate room verification against --base-url.

Settings are read from --config (or .debateverify.yaml, or the XDG config
file), then DEBATEVERIFY_* environment variables, then flags.`,
		Args: cobra.NoArgs,
		RunE: runE,
	}
	addRunFlags(cmd)
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	def := config.Default()
	f := cmd.Flags()
	f.String("config", "", "Path to a YAML config file")
	f.String("base-url", def.BaseURL, "URL of the running debate application")
	f.String("room-id", def.RoomID, "Room code to enter (1-999)")
	f.String("screenshot", def.Screenshot, "Where to write the screenshot")
	f.Bool("headless", def.Headless, "Run the launched browser headless")
	f.String("chrome-url", "", "DevTools URL of a running browser to use instead of launching one")
	f.String("window-size", def.WindowSize, "Window size of the launched browser, WIDTHxHEIGHT")
	f.Duration("timeout", def.Timeout, "Timeout for the whole run")
	f.Duration("step-timeout", def.StepTimeout, "Timeout for each step")
	f.String("report", "", "Write a markdown run report to this path")
	f.String("golden", "", "Compare the room page text with this golden file")
	f.Bool("update-golden", false, "Rewrite the golden file instead of comparing")
	f.String("debug-dir", def.DebugDir, "Where to dump page HTML and screenshots on failure")
}

// loadRunConfig layers the flags the user set over the file and environment
// configuration.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	f := cmd.Flags()
	path, _ := f.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	strs := map[string]*string{
		"base-url":    &cfg.BaseURL,
		"room-id":     &cfg.RoomID,
		"screenshot":  &cfg.Screenshot,
		"chrome-url":  &cfg.ChromeURL,
		"report":      &cfg.ReportPath,
		"golden":      &cfg.GoldenPath,
		"debug-dir":   &cfg.DebugDir,
		"window-size": &cfg.WindowSize,
	}
	for name, dst := range strs {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	bools := map[string]*bool{
		"headless":      &cfg.Headless,
		"update-golden": &cfg.UpdateGolden,
		"verbose":       &cfg.Verbose,
	}
	for name, dst := range bools {
		if f.Changed(name) {
			*dst, _ = f.GetBool(name)
		}
	}
	durations := map[string]*time.Duration{
		"timeout":      &cfg.Timeout,
		"step-timeout": &cfg.StepTimeout,
	}
	for name, dst := range durations {
		if f.Changed(name) {
			*dst, _ = f.GetDuration(name)
		}
	}
	return cfg, nil
}

func runE(cmd *cobra.Command, _ []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	res, runErr := verification.Run(cmd.Context(), cfg)

	if cfg.ReportPath != "" {
		if err := verification.WriteReportFile(cfg.ReportPath, res); err != nil {
			log.Printf("Failed to write report %s: %v", cfg.ReportPath, err)
		} else {
			log.Printf("Wrote report to %s", cfg.ReportPath)
		}
	}
	if runErr != nil {
		return fmt.Errorf("verification failed: %w", runErr)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "PASS room %s (%s), screenshot: %s\n",
		res.RoomID, res.Duration().Round(time.Millisecond), res.Screenshot)
	return nil
}
