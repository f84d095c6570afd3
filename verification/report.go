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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/markdown"
)

// WriteReport renders r as a markdown document.
func WriteReport(w io.Writer, r *Result) error {
	md := markdown.NewMarkdown(w)

	md.H1("Debate Room Verification")
	md.PlainText("")

	status := "✅ Passed"
	if !r.Passed() {
		status = "❌ Failed"
	}
	rows := [][]string{
		{"Run", "`" + r.RunID + "`"},
		{"Target", r.BaseURL},
		{"Room ID", r.RoomID},
		{"Started", r.Started.Format("2006-01-02 15:04:05 MST")},
		{"Duration", r.Duration().Round(time.Millisecond).String()},
		{"Status", status},
	}
	if r.FinalURL != "" {
		rows = append(rows, []string{"Final URL", r.FinalURL})
	}
	if r.Screenshot != "" {
		rows = append(rows, []string{"Screenshot", "`" + r.Screenshot + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Steps")
	md.PlainText("")
	steps := make([][]string, 0, len(r.Steps))
	for i, s := range r.Steps {
		outcome := "ok"
		if s.Err != nil {
			outcome = "FAILED"
		}
		steps = append(steps, []string{
			fmt.Sprint(i + 1),
			s.Name,
			s.Duration.Round(time.Millisecond).String(),
			outcome,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Step", "Time", "Result"},
		Rows:   steps,
	})
	md.PlainText("")

	if r.Err != nil {
		md.Cautionf("%v", r.Err)
		md.PlainText("")
	}
	if len(r.ConsoleErrors) > 0 {
		md.H2("Browser console errors")
		md.PlainText("")
		md.BulletList(r.ConsoleErrors...)
		md.PlainText("")
	}
	return md.Build()
}

// WriteReportFile writes the report to path, replacing any existing file.
func WriteReportFile(path string, r *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteReport(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
