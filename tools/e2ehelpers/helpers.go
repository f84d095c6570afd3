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

package e2ehelpers

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// PollInterval is how often expectations re-check the page.
const PollInterval = 100 * time.Millisecond

// BrowserOptions selects how the browser is obtained.
type BrowserOptions struct {
	// RemoteURL attaches to a running browser's DevTools endpoint. When
	// empty a local Chrome is launched.
	RemoteURL string
	Headless  bool
	Verbose   bool
	// WindowWidth and WindowHeight size the viewport of a launched browser.
	WindowWidth  int
	WindowHeight int
}

// StartBrowser allocates a browser and opens a tab. The browser is started
// before returning so that later timeouts on derived contexts only bound
// individual actions, not the browser's lifetime. The returned cancel func
// closes the tab and, for launched browsers, terminates the process.
func StartBrowser(parent context.Context, opts BrowserOptions) (context.Context, context.CancelFunc, error) {
	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(parent, opts.RemoteURL)
	} else {
		w, h := opts.WindowWidth, opts.WindowHeight
		if w == 0 || h == 0 {
			w, h = 1280, 720
		}
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.WindowSize(w, h),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(parent, execOpts...)
	}

	ctxOpts := []chromedp.ContextOption{
		chromedp.WithLogf(log.Printf),
		chromedp.WithErrorf(log.Printf),
	}
	if opts.Verbose {
		ctxOpts = append(ctxOpts, chromedp.WithDebugf(log.Printf))
	}
	ctx, cancel := chromedp.NewContext(allocCtx, ctxOpts...)
	closeAll := func() {
		cancel()
		allocCancel()
	}
	if err := chromedp.Run(ctx, network.ClearBrowserCookies()); err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return ctx, closeAll, nil
}

// WatchConsole reports console.error calls and uncaught exceptions of the
// page to report.
func WatchConsole(ctx context.Context, report func(msg string)) {
	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			if ev.Type != runtime.APITypeError {
				return
			}
			args := make([]string, len(ev.Args))
			for i, arg := range ev.Args {
				if arg.Value != nil {
					args[i] = string(arg.Value)
				} else {
					args[i] = arg.Description
				}
			}
			report("console error: " + strings.Join(args, " "))
		case *runtime.EventExceptionThrown:
			msg := ev.ExceptionDetails.Text
			if ev.ExceptionDetails.Exception != nil && ev.ExceptionDetails.Exception.Description != "" {
				msg += " " + ev.ExceptionDetails.Exception.Description
			}
			report("exception: " + msg)
		}
	})
}

// CaptureScreenshot captures the viewport and saves it to filename,
// replacing any existing file.
func CaptureScreenshot(ctx context.Context, filename string) error {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory for screenshot: %w", err)
		}
	}
	if err := os.WriteFile(filename, buf, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot to file: %w", err)
	}
	log.Printf("Saved screenshot to %s", filename)
	return nil
}

// DebugFailure dumps the page HTML and a screenshot into dir as
// debug-<name>.html and debug-<name>.png. Errors are logged, not returned;
// the caller is already on a failure path.
func DebugFailure(ctx context.Context, dir, name string) {
	log.Printf("DEBUG: capturing failure info for %s", name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("DEBUG: Failed to create %s: %v", dir, err)
		return
	}
	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		log.Printf("DEBUG: Failed to capture HTML: %v", err)
	} else {
		p := filepath.Join(dir, fmt.Sprintf("debug-%s.html", name))
		if err := os.WriteFile(p, []byte(html), 0644); err != nil {
			log.Printf("DEBUG: Failed to write %s: %v", p, err)
		}
	}
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		log.Printf("DEBUG: Failed to capture screenshot: %v", err)
		return
	}
	p := filepath.Join(dir, fmt.Sprintf("debug-%s.png", name))
	if err := os.WriteFile(p, buf, 0644); err != nil {
		log.Printf("DEBUG: Failed to write %s: %v", p, err)
		return
	}
	log.Printf("DEBUG: Saved screenshot to %s", p)
}

// --- Actions ---

// Click waits for l to be visible and clicks it.
func Click(l Locator) chromedp.Action {
	return chromedp.Click(l.XPath(), chromedp.BySearch, chromedp.NodeVisible)
}

// Fill replaces the value of the form control matched by l with value. The
// live value is emptied first, then value is typed so that input listeners
// see every keystroke.
func Fill(l Locator, value string) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.WaitVisible(l.XPath(), chromedp.BySearch),
		chromedp.SetValue(l.XPath(), "", chromedp.BySearch),
		chromedp.SendKeys(l.XPath(), value, chromedp.BySearch),
	}
}

// --- Expectations ---

// ExpectVisible waits until l matches a visible element.
func ExpectVisible(l Locator) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := chromedp.WaitVisible(l.XPath(), chromedp.BySearch).Do(ctx); err != nil {
			return fmt.Errorf("expected %s to be visible: %w", l, err)
		}
		return nil
	})
}

// ExpectGone waits until nothing matches l.
func ExpectGone(l Locator) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := chromedp.WaitNotPresent(l.XPath(), chromedp.BySearch).Do(ctx); err != nil {
			return fmt.Errorf("expected %s to go away: %w", l, err)
		}
		return nil
	})
}

// ExpectValue waits until the form control matched by l has exactly want as
// its value.
func ExpectValue(l Locator, want string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var got string
		err := pollUntil(ctx, func(ctx context.Context) (bool, error) {
			if err := chromedp.Value(l.XPath(), &got, chromedp.BySearch).Do(ctx); err != nil {
				return false, err
			}
			return got == want, nil
		})
		if err != nil {
			return fmt.Errorf("expected %s to have value %q, last value %q: %w", l, want, got, err)
		}
		return nil
	})
}

// ExpectURL waits until the page location matches re.
func ExpectURL(re *regexp.Regexp) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var loc string
		err := pollUntil(ctx, func(ctx context.Context) (bool, error) {
			if err := chromedp.Location(&loc).Do(ctx); err != nil {
				return false, err
			}
			return re.MatchString(loc), nil
		})
		if err != nil {
			return fmt.Errorf("expected url to match %s, last url %q: %w", re, loc, err)
		}
		return nil
	})
}

// TextOf returns the rendered text of the first visible element matched by
// each locator, one line per locator.
func TextOf(ctx context.Context, locs ...Locator) (string, error) {
	lines := make([]string, 0, len(locs))
	for _, l := range locs {
		var text string
		if err := chromedp.Run(ctx, chromedp.Text(l.XPath(), &text, chromedp.BySearch, chromedp.NodeVisible)); err != nil {
			return "", fmt.Errorf("text of %s: %w", l, err)
		}
		lines = append(lines, strings.TrimSpace(text))
	}
	return strings.Join(lines, "\n"), nil
}

// pollUntil calls check every PollInterval until it reports true or ctx is
// done. A check error is not fatal; the page may be mid-navigation.
func pollUntil(ctx context.Context, check func(context.Context) (bool, error)) error {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		ok, err := check(ctx)
		if err == nil && ok {
			return nil
		}
		if err != nil {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
