// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/postline/postline/internal/store"
)

// migrateDatabaseURL resolves the database URL for schema commands from the
// --db-url flag or the DATABASE_URL environment variable.
func migrateDatabaseURL(cmd *cobra.Command) (string, error) {
	if url, _ := cmd.Flags().GetString("db-url"); url != "" {
		return url, nil
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	return "", oops.Code("CONFIG_INVALID").Errorf("--db-url flag or DATABASE_URL environment variable is required")
}

func withMigrator(cmd *cobra.Command, fn func(*store.Migrator) error) error {
	databaseURL, err := migrateDatabaseURL(cmd)
	if err != nil {
		return err
	}
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // close error is not actionable here

	return fn(migrator)
}

// NewMigrateCmd creates the migrate subcommand with its schema operations.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long:  `Apply, roll back, and inspect database migrations.`,
	}
	cmd.PersistentFlags().String("db-url", "", "PostgreSQL connection URL (default: DATABASE_URL)")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Println("Migrations applied")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("Migrations rolled back")
				return nil
			})
		},
	})

	var steps int
	stepsCmd := &cobra.Command{
		Use:   "steps",
		Short: "Apply a signed number of migration steps",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Steps(steps); err != nil {
					return err
				}
				cmd.Printf("Applied %d migration step(s)\n", steps)
				return nil
			})
		},
	}
	stepsCmd.Flags().IntVar(&steps, "n", 1, "number of steps (negative rolls back)")
	cmd.AddCommand(stepsCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				cmd.Printf("version: %d dirty: %t\n", version, dirty)
				return nil
			})
		},
	})

	var forceVersion int
	forceCmd := &cobra.Command{
		Use:   "force",
		Short: "Force the schema version after a failed migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Force(forceVersion); err != nil {
					return err
				}
				cmd.Printf("Forced version to %d\n", forceVersion)
				return nil
			})
		},
	}
	forceCmd.Flags().IntVar(&forceVersion, "version", 0, "schema version to record")
	cmd.AddCommand(forceCmd)

	return cmd
}
