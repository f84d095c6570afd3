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

import "errors"

// Validation errors returned by Config.Validate.
var (
	ErrInvalidBaseURL     = errors.New("invalid base url: must be an absolute http or https url")
	ErrInvalidRoomID      = errors.New("invalid room id: must be a number between 1 and 999")
	ErrEmptyScreenshot    = errors.New("screenshot path must not be empty")
	ErrInvalidTimeout     = errors.New("invalid timeout: must be positive")
	ErrInvalidStepTimeout = errors.New("invalid step timeout: must be positive and not exceed the overall timeout")
	ErrGoldenUpdateNoPath = errors.New("--update-golden requires --golden")
	ErrInvalidWindowSize  = errors.New("invalid window size: must be WIDTHxHEIGHT")
)

// ErrConfigNotFound is returned when an explicitly requested configuration
// file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")
