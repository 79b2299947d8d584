// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package config

import (
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"

	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

//go:embed lorekeep.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/lorekeep/lorekeep.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", lkerr.Errorf(lkerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "lorekeep", "lorekeep.yaml"), nil
}

// BootstrapConfig writes the default commented config to path if it does
// not already exist. Returns the path written, or empty string if the
// file already existed or an error occurred (non-fatal — logged and
// skipped).
func BootstrapConfig() string {
	cfgPath, err := DefaultConfigPath()
	if err != nil {
		slog.Debug("skipping config bootstrap", "error", err)
		return ""
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return "" // already exists
	}

	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		slog.Debug("skipping config bootstrap: cannot create directory", "path", dir, "error", err)
		return ""
	}

	if err := os.WriteFile(cfgPath, DefaultConfigYAML, 0o600); err != nil {
		slog.Debug("skipping config bootstrap: cannot write config", "path", cfgPath, "error", err)
		return ""
	}

	slog.Info("created default config", "path", cfgPath)
	return cfgPath
}

// EnsureDataDir creates the configured data directory when missing.
func EnsureDataDir(c *Config) error {
	if err := os.MkdirAll(c.DataDir, 0o700); err != nil {
		return lkerr.Errorf(lkerr.CodeConfigLoadReadFailure, "creating data directory %s: %w", c.DataDir, err)
	}
	return nil
}
