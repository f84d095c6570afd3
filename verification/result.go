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

package verification

import (
	"time"

	"github.com/google/uuid"
)

// StepResult is the outcome of one step.
type StepResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Result records a run. Steps holds every step that was attempted; a failed
// run ends with the failing step.
type Result struct {
	RunID    string
	BaseURL  string
	RoomID   string
	Started  time.Time
	Finished time.Time
	Steps    []StepResult
	// FinalURL is the page location when the run ended, if known.
	FinalURL string
	// Screenshot is the path of the written screenshot, empty when the run
	// did not get that far.
	Screenshot    string
	ConsoleErrors []string
	Err           error
}

func newResult(baseURL, roomID string) *Result {
	return &Result{
		RunID:   uuid.NewString(),
		BaseURL: baseURL,
		RoomID:  roomID,
		Started: time.Now(),
	}
}

// Passed reports whether every step succeeded.
func (r *Result) Passed() bool {
	return r.Err == nil
}

// Duration is the wall time of the run.
func (r *Result) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// FailedStep returns the step that aborted the run, or nil.
func (r *Result) FailedStep() *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Err != nil {
			return &r.Steps[i]
		}
	}
	return nil
}
