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
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/ttbt-io/debateverify/backend"
)

const shutdownTimeout = 10 * time.Second

// NewFixtureCmd creates the fixture command, which serves the stand-in
// debate application until the command context is cancelled.
func NewFixtureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Serve a stand-in debate application",
		Long: `Serve a stand-in debate application with the template list, the realtime
room setup, the room page and the room API. Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			debug, _ := cmd.Flags().GetBool("debug")
			ttl, _ := cmd.Flags().GetDuration("room-idle-ttl")
			return serveFixture(cmd.Context(), cmd, backend.Options{
				Addr:        addr,
				Debug:       debug,
				RoomIdleTTL: ttl,
			})
		},
	}
	cmd.Flags().String("addr", ":3000", "The TCP address to listen to")
	cmd.Flags().Bool("debug", false, "Log every request")
	cmd.Flags().Duration("room-idle-ttl", 0, "How long a created room may stay without participants (0 for the default)")
	return cmd
}

func serveFixture(ctx context.Context, cmd *cobra.Command, opts backend.Options) error {
	server, err := backend.StartServer(opts)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s/\n", server.Addr())

	<-ctx.Done()

	log.Println("Shutting down...")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("Gracefully stopped.")
	return nil
}
