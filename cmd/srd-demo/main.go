// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// srd-demo drives a real SRD handshake between two processes: the
// "server" subcommand runs a delegation endpoint, the "client" subcommand
// runs the handshake against it and exchanges one bulk-encrypted message
// over the resulting session.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "srd-demo",
	Short: "SRD demo client/server",
	Long: `srd-demo exercises the SRD handshake engine end to end.

The server subcommand listens for handshake rounds carried inside HTTP
Authorization/WWW-Authenticate headers, then serves a WebSocket endpoint
for the bulk-encrypted channel a completed handshake unlocks. The client
subcommand drives one handshake against a running server and sends a
bulk-encrypted message over it.`,
}

func main() {
	// Local .env, if present, supplies demo connection parameters
	// (SRD_DEMO_ADDR, SRD_DEMO_KEY_SIZE, ...). Missing is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
