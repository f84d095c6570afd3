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
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ErrGoldenMismatch is returned when the page text differs from the golden
// file.
var ErrGoldenMismatch = errors.New("page text does not match golden file")

// CompareGolden compares actual with the contents of goldenPath. With
// update set, the golden file is rewritten instead. Surrounding whitespace
// is ignored on both sides.
func CompareGolden(actual, goldenPath string, update bool) error {
	actual = strings.TrimSpace(actual)
	if update {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
			return fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(goldenPath, []byte(actual+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write golden file %s: %w", goldenPath, err)
		}
		log.Printf("Updated golden file: %s", goldenPath)
		return nil
	}

	expectedBytes, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("golden file missing: %s, run with --update-golden to create it", goldenPath)
		}
		return fmt.Errorf("failed to read golden file %s: %w", goldenPath, err)
	}
	expected := strings.TrimSpace(string(expectedBytes))
	if actual == expected {
		return nil
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected + "\n"),
		B:        difflib.SplitLines(actual + "\n"),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  3,
	})
	return fmt.Errorf("%w %s:\n%s", ErrGoldenMismatch, goldenPath, diff)
}
