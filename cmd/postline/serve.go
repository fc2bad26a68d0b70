// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/postline/postline/internal/access"
	"github.com/postline/postline/internal/api"
	"github.com/postline/postline/internal/auth"
	authpg "github.com/postline/postline/internal/auth/postgres"
	"github.com/postline/postline/internal/config"
	"github.com/postline/postline/internal/content"
	contentpg "github.com/postline/postline/internal/content/postgres"
	"github.com/postline/postline/internal/logging"
	"github.com/postline/postline/internal/observability"
	"github.com/postline/postline/internal/store"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. Configuration is resolved from defaults,
the optional config file, POSTLINE_* environment variables, and flags,
in that order.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	// flag names mirror config keys so they layer over file and env values
	cmd.Flags().String("server.addr", "", "HTTP listen address")
	cmd.Flags().String("db.url", "", "PostgreSQL connection URL")
	cmd.Flags().String("log.level", "", "log level (debug, info, warn, error)")
	cmd.Flags().String("log.format", "", "log format (json or text)")
	cmd.Flags().String("observability.addr", "", "metrics/health listen address")
	cmd.Flags().Bool("auto-migrate", true, "run pending migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if autoMigrate, _ := cmd.Flags().GetBool("auto-migrate"); autoMigrate {
		if err := migrateUp(cfg.DB.URL); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	pool, err := store.NewPool(ctx, cfg.DB.URL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	issuer, err := auth.NewJWTIssuer(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret)
	if err != nil {
		return err
	}
	issuer.WithTTLs(cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	tx := store.NewTransactor(pool)
	hasher := auth.NewArgon2idHasher()

	users := authpg.NewUserRepository(pool)
	sessions := authpg.NewSessionRepository(pool)
	posts := contentpg.NewPostRepository(pool)
	categories := contentpg.NewCategoryRepository(pool)
	tags := contentpg.NewTagRepository(pool)

	sessionSvc, err := auth.NewSessionService(sessions, issuer, hasher)
	if err != nil {
		return err
	}
	authSvc, err := auth.NewServiceWithLogger(users, sessionSvc, hasher, tx, logger)
	if err != nil {
		return err
	}
	userSvc, err := auth.NewUserService(users, sessions, posts, tx, logger)
	if err != nil {
		return err
	}
	postSvc, err := content.NewPostService(posts, categories, tags, users, tx, logger)
	if err != nil {
		return err
	}
	categorySvc, err := content.NewCategoryService(categories, logger)
	if err != nil {
		return err
	}
	tagSvc, err := content.NewTagService(tags, logger)
	if err != nil {
		return err
	}

	opts := []api.ServerOption{api.WithCORSOrigins(cfg.Server.CORSOrigins)}

	var obsServer *observability.Server
	if cfg.Obs.Enabled {
		obsServer = observability.NewServer(cfg.Obs.Addr, func() bool {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx) == nil
		})
		opts = append(opts, api.WithMetrics(obsServer.Metrics()))
	}

	handler := api.NewServer(authSvc, userSvc, issuer, postSvc, categorySvc, tagSvc,
		access.NewPolicy(), logger, opts...)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	if obsServer != nil {
		obsErrCh, err := obsServer.Start()
		if err != nil {
			return oops.Code("OBS_START_FAILED").Wrap(err)
		}
		logger.Info("observability server started", "addr", obsServer.Addr())
		g.Go(func() error {
			select {
			case err, ok := <-obsErrCh:
				if ok && err != nil {
					return oops.Code("OBS_SERVER_FAILED").Wrap(err)
				}
				return nil
			case <-ctx.Done():
				return nil
			}
		})
	}

	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return oops.Code("HTTP_SERVER_FAILED").Wrap(err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http server shutdown", "error", err)
		}
		if obsServer != nil {
			if err := obsServer.Stop(shutdownCtx); err != nil {
				logger.Warn("observability server shutdown", "error", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

func migrateUp(databaseURL string) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // close error is not actionable here

	return migrator.Up()
}
