// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorekeep/lorekeep/internal/config"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "graph.db", cfg.Storage.Database)
	assert.Equal(t, "127.0.0.1:8480", cfg.Server.Listen)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "lorekeep.yaml")

	content := `
data_dir: /tmp/lorekeep-test
server:
  listen: "0.0.0.0:9999"
log:
  level: debug
`
	err := os.WriteFile(cfgPath, []byte(content), 0o644)
	require.NoError(t, err)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/lorekeep-test", cfg.DataDir)
	assert.Equal(t, "0.0.0.0:9999", cfg.Server.Listen)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LOREKEEP_SERVER_LISTEN", "10.0.0.1:8080")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:8080", cfg.Server.Listen)
}

func TestLoad_ValidationCalledAtLoadTime(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "lorekeep.yaml")

	content := `
storage:
  backend: postgres
`
	err := os.WriteFile(cfgPath, []byte(content), 0o644)
	require.NoError(t, err)

	_, err = config.Load(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Backend: "postgres", Database: ""},
		Server:  config.ServerConfig{Listen: "not-an-address"},
		Log:     config.LogConfig{Level: "loud", Format: "xml"},
	}

	errs := cfg.Validate()
	assert.Len(t, errs, 5)
}

func TestValidate_ListenPortRange(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Backend: "sqlite", Database: "graph.db"},
		Server:  config.ServerConfig{Listen: "127.0.0.1:99999"},
		Log:     config.LogConfig{Level: "info", Format: "text"},
	}

	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "between 1 and 65535")
}

func TestDatabasePath(t *testing.T) {
	cfg := &config.Config{
		DataDir: "/data/lorekeep",
		Storage: config.StorageConfig{Database: "graph.db"},
	}
	assert.Equal(t, "/data/lorekeep/graph.db", cfg.DatabasePath())

	cfg.Storage.Database = "/elsewhere/notes.db"
	assert.Equal(t, "/elsewhere/notes.db", cfg.DatabasePath())
}

func TestBootstrapDefaultConfigIsEmbedded(t *testing.T) {
	assert.Contains(t, string(config.DefaultConfigYAML), "LOREKEEP_")
}
