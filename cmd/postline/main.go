// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

// Package main is the entry point for the Postline server.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/postline/postline/pkg/errutil"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	cmd.SilenceErrors = true

	if err := cmd.Execute(); err != nil {
		errutil.LogError(slog.New(slog.NewTextHandler(os.Stderr, nil)), "command failed", err)
		os.Exit(1)
	}
}
