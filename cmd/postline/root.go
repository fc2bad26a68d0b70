// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Postline CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "postline",
		Short: "Postline - a blogging backend",
		Long: `Postline is a blogging backend with token-based authentication,
role-based access control, and categorized, tagged posts over PostgreSQL.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())

	return cmd
}
