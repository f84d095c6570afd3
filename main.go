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

// debateverify drives a browser through the realtime debate room setup of
// the debate web application and saves a screenshot of the joined room.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Without a subcommand it behaves like
// "run".
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debateverify",
		Short: "Verify the realtime debate room flow in a browser",
		Long: `debateverify opens the debate application's homepage in Chrome, selects
the 세다토론 template, enters a room code in the realtime setup, starts the
debate and checks that the room page is shown. A screenshot of the room page
is written on success.

The application must already be running. Use "debateverify fixture" to serve
a stand-in for local checks.`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runE,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	addRunFlags(cmd)

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewFixtureCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
