// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/postline/postline/internal/auth"
	authpg "github.com/postline/postline/internal/auth/postgres"
	"github.com/postline/postline/internal/content"
	contentpg "github.com/postline/postline/internal/content/postgres"
	"github.com/postline/postline/internal/logging"
	"github.com/postline/postline/internal/store"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedFile is the YAML shape of a seed definition.
type seedFile struct {
	Admin struct {
		Email     string `yaml:"email"`
		Password  string `yaml:"password"`
		FirstName string `yaml:"first_name"`
		LastName  string `yaml:"last_name"`
	} `yaml:"admin"`
	Categories []struct {
		Label string `yaml:"label"`
		Value string `yaml:"value"`
	} `yaml:"categories"`
}

// defaultSeed is applied when no seed file is given: starter categories only.
func defaultSeed() seedFile {
	var s seedFile
	for _, c := range []struct{ label, value string }{
		{"Travel", "travel"},
		{"Food", "food"},
		{"Technology", "technology"},
	} {
		s.Categories = append(s.Categories, struct {
			Label string `yaml:"label"`
			Value string `yaml:"value"`
		}{Label: c.label, Value: c.value})
	}
	return s
}

func loadSeedFile(path string) (seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return seedFile{}, oops.Code("SEED_FILE_FAILED").With("path", path).Wrap(err)
	}
	var s seedFile
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return seedFile{}, oops.Code("SEED_FILE_INVALID").With("path", path).Wrap(err)
	}
	return s, nil
}

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	timeout time.Duration
	file    string
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with initial data",
		Long: `Creates starter categories and, when the seed file defines one, an
admin account. This command is idempotent - existing rows are left alone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, cfg)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	cmd.Flags().StringVar(&cfg.file, "file", "", "YAML seed file (default: built-in starter categories)")
	cmd.Flags().String("db-url", "", "PostgreSQL connection URL (default: DATABASE_URL)")

	return cmd
}

func runSeed(cmd *cobra.Command, cfg *seedConfig) error {
	databaseURL, err := migrateDatabaseURL(cmd)
	if err != nil {
		return err
	}

	seed := defaultSeed()
	if cfg.file != "" {
		seed, err = loadSeedFile(cfg.file)
		if err != nil {
			return err
		}
	}

	// cmd.Context() keeps SIGINT/SIGTERM effective under the timeout
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	logger := logging.New("info", "text")

	cmd.Println("Connecting to database...")
	pool, err := store.NewPool(ctx, databaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	cmd.Println("Running migrations...")
	if err := migrateUp(databaseURL); err != nil {
		return oops.Code("SEED_FAILED").With("operation", "run migrations").Wrap(err)
	}

	categories := contentpg.NewCategoryRepository(pool)
	for _, c := range seed.Categories {
		category, err := content.NewCategory(c.Label, c.Value)
		if err != nil {
			return oops.Code("SEED_FAILED").With("category", c.Value).Wrap(err)
		}
		if err := categories.Create(ctx, category); err != nil {
			if errors.Is(err, content.ErrConflict) {
				cmd.Printf("Category %q already exists, skipping\n", c.Value)
				continue
			}
			return oops.Code("SEED_FAILED").With("category", c.Value).Wrap(err)
		}
		cmd.Printf("Created category %q\n", c.Value)
	}

	if seed.Admin.Email != "" {
		if seed.Admin.Password == "" {
			return oops.Code("SEED_FILE_INVALID").Errorf("admin.password is required when admin.email is set")
		}
		if err := seedAdmin(ctx, cmd, pool, seed); err != nil {
			return err
		}
	}

	cmd.Println("Seeding complete")
	return nil
}

func seedAdmin(ctx context.Context, cmd *cobra.Command, db store.Querier, seed seedFile) error {
	hash, err := auth.NewArgon2idHasher().Hash(seed.Admin.Password)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "hash admin password").Wrap(err)
	}

	user, err := auth.NewUser(auth.Profile{
		FirstName: seed.Admin.FirstName,
		LastName:  seed.Admin.LastName,
	}, seed.Admin.Email, hash)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "build admin user").Wrap(err)
	}
	user.Role = auth.RoleAdmin

	users := authpg.NewUserRepository(db)
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, auth.ErrConflict) {
			cmd.Printf("Admin %q already exists, skipping\n", seed.Admin.Email)
			return nil
		}
		return oops.Code("SEED_FAILED").With("operation", "create admin user").Wrap(err)
	}
	cmd.Printf("Created admin %q\n", seed.Admin.Email)
	return nil
}
