// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "postline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

const minimalYAML = `
auth:
  access_secret: access-secret
  refresh_secret: refresh-secret
`

func TestLoad(t *testing.T) {
	t.Run("defaults apply under a minimal file", func(t *testing.T) {
		cfg, err := Load(writeConfigFile(t, minimalYAML), nil)
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
		assert.Equal(t, 168*time.Hour, cfg.Auth.RefreshTTL)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.True(t, cfg.Obs.Enabled)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := Load(writeConfigFile(t, minimalYAML+`
server:
  addr: ":9999"
log:
  level: debug
`), nil)
		require.NoError(t, err)
		assert.Equal(t, ":9999", cfg.Server.Addr)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("POSTLINE_SERVER__ADDR", ":7070")
		t.Setenv("POSTLINE_DB__URL", "postgres://env-host/env-db")

		cfg, err := Load(writeConfigFile(t, minimalYAML), nil)
		require.NoError(t, err)
		assert.Equal(t, ":7070", cfg.Server.Addr)
		assert.Equal(t, "postgres://env-host/env-db", cfg.DB.URL)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := Load("/nonexistent/postline.yaml", nil)
		require.Error(t, err)
	})

	t.Run("no file still validates", func(t *testing.T) {
		t.Setenv("POSTLINE_AUTH__ACCESS_SECRET", "a-secret")
		t.Setenv("POSTLINE_AUTH__REFRESH_SECRET", "r-secret")

		cfg, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, "a-secret", cfg.Auth.AccessSecret)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DB:   DBConfig{URL: "postgres://localhost/postline"},
			Auth: AuthConfig{AccessSecret: "a", RefreshSecret: "b", AccessTTL: time.Minute, RefreshTTL: time.Hour},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("identical secrets rejected", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.RefreshSecret = cfg.Auth.AccessSecret
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing database URL rejected", func(t *testing.T) {
		cfg := valid()
		cfg.DB.URL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive lifetimes rejected", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.AccessTTL = 0
		assert.Error(t, cfg.Validate())
	})
}
