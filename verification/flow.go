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

// Package verification drives a browser through the realtime debate room
// setup and checks what the user should see at every stage.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ttbt-io/debateverify/config"
	"github.com/ttbt-io/debateverify/tools/e2ehelpers"
)

// Step is one named stage of the procedure.
type Step struct {
	Name    string
	Actions []chromedp.Action
}

// RoomURLPattern matches the location of the room page for roomID.
func RoomURLPattern(roomID string) *regexp.Regexp {
	return regexp.MustCompile(`/debate/` + regexp.QuoteMeta(roomID) + `$`)
}

// Steps returns the procedure for cfg in execution order. The final
// screenshot is not part of it; Run takes it once every step passed.
func Steps(cfg *config.Config) []Step {
	var (
		template  = e2ehelpers.ByRole("heading", TemplateName)
		guideOK   = e2ehelpers.ByRole("button", GuideConfirmButton)
		realtime  = e2ehelpers.ByRole("heading", RealtimeHeading)
		roomInput = e2ehelpers.ByLabel(RoomCodeLabel)
		start     = e2ehelpers.ByRole("button", StartDebateButton).Within(TemplatesSectionID)
		// The golden text covers only these lines; the rest of the room
		// page changes as participants join and leave.
		connecting = e2ehelpers.ByText(ConnectingMessage)
		roomLine   = e2ehelpers.ByText(RoomIDMessagePrefix + cfg.RoomID)
	)
	steps := []Step{
		{"open homepage", []chromedp.Action{
			chromedp.Navigate(cfg.PageURL("/")),
		}},
		{"select template", []chromedp.Action{
			e2ehelpers.Click(template),
		}},
		{"dismiss guide", []chromedp.Action{
			e2ehelpers.Click(guideOK),
			e2ehelpers.ExpectGone(guideOK),
		}},
		{"realtime setup shown", []chromedp.Action{
			e2ehelpers.ExpectVisible(realtime),
			e2ehelpers.ExpectVisible(roomInput),
		}},
		{"enter room id", []chromedp.Action{
			e2ehelpers.Fill(roomInput, cfg.RoomID),
			e2ehelpers.ExpectValue(roomInput, cfg.RoomID),
		}},
		{"start debate", []chromedp.Action{
			e2ehelpers.Click(start),
		}},
		{"room url", []chromedp.Action{
			e2ehelpers.ExpectURL(RoomURLPattern(cfg.RoomID)),
		}},
		{"connecting message", []chromedp.Action{
			e2ehelpers.ExpectVisible(connecting),
			e2ehelpers.ExpectVisible(roomLine),
		}},
	}
	if cfg.GoldenPath != "" {
		steps = append(steps, Step{"room page text", []chromedp.Action{
			chromedp.ActionFunc(func(ctx context.Context) error {
				text, err := e2ehelpers.TextOf(ctx, connecting, roomLine)
				if err != nil {
					return err
				}
				return CompareGolden(text, cfg.GoldenPath, cfg.UpdateGolden)
			}),
		}})
	}
	return steps
}

// Run executes the procedure against cfg.BaseURL and writes the screenshot.
// The returned Result is never nil; its Err equals the returned error.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	res := newResult(cfg.BaseURL, cfg.RoomID)
	defer func() { res.Finished = time.Now() }()

	if err := cfg.Validate(); err != nil {
		res.Err = err
		return res, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	width, height, _ := config.ParseWindowSize(cfg.WindowSize)
	browserCtx, closeBrowser, err := e2ehelpers.StartBrowser(ctx, e2ehelpers.BrowserOptions{
		RemoteURL:    cfg.ChromeURL,
		Headless:     cfg.Headless,
		Verbose:      cfg.Verbose,
		WindowWidth:  width,
		WindowHeight: height,
	})
	if err != nil {
		res.Err = err
		return res, err
	}
	var (
		mu      sync.Mutex
		console []string
	)
	e2ehelpers.WatchConsole(browserCtx, func(msg string) {
		log.Printf("JS %s", msg)
		mu.Lock()
		console = append(console, msg)
		mu.Unlock()
	})
	defer func() {
		closeBrowser()
		mu.Lock()
		res.ConsoleErrors = console
		mu.Unlock()
	}()

	log.Printf("Verifying room %s at %s (run %s)", cfg.RoomID, cfg.BaseURL, res.RunID)
	for _, step := range Steps(cfg) {
		if err := runStep(browserCtx, cfg, res, step.Name, step.Actions...); err != nil {
			res.Err = err
			return res, err
		}
	}

	err = runStep(browserCtx, cfg, res, "screenshot", chromedp.ActionFunc(func(ctx context.Context) error {
		return e2ehelpers.CaptureScreenshot(ctx, cfg.Screenshot)
	}))
	if err != nil {
		res.Err = err
		return res, err
	}
	res.Screenshot = cfg.Screenshot
	log.Printf("Verification passed in %s", time.Since(res.Started).Round(time.Millisecond))
	return res, nil
}

// runStep runs the actions of one step under the step timeout and records
// the outcome. On failure the page state is dumped to the debug directory.
func runStep(ctx context.Context, cfg *config.Config, res *Result, name string, actions ...chromedp.Action) error {
	log.Printf("STEP: %s", name)
	start := time.Now()

	stepCtx, cancel := context.WithTimeout(ctx, cfg.StepTimeout)
	defer cancel()
	err := chromedp.Run(stepCtx, actions...)

	var loc string
	if locErr := chromedp.Run(ctx, chromedp.Location(&loc)); locErr == nil {
		res.FinalURL = loc
	}

	res.Steps = append(res.Steps, StepResult{Name: name, Duration: time.Since(start), Err: err})
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && stepCtx.Err() != nil {
		log.Printf("Step '%s' timed out after %s", name, cfg.StepTimeout)
	} else {
		log.Printf("Step '%s' failed: %v", name, err)
	}
	if cfg.DebugDir != "" && ctx.Err() == nil {
		e2ehelpers.DebugFailure(ctx, cfg.DebugDir, fmt.Sprintf("%s-%s", slug(name), res.RunID[:8]))
	}
	return fmt.Errorf("step %q: %w", name, err)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return nonSlug.ReplaceAllString(s, "-")
}
