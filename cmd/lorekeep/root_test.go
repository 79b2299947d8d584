// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

// runCLI executes a fresh root command with the given args and returns
// the combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// writeTestConfig writes a minimal config pointing at a throwaway data
// directory so commands never touch the user's real files.
func writeTestConfig(t *testing.T) (cfgPath, dataDir string) {
	t.Helper()
	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	cfgPath = filepath.Join(dir, "lorekeep.yaml")
	cfg := fmt.Sprintf("data_dir: %s\nlog:\n  level: error\n", dataDir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return cfgPath, dataDir
}

func TestRootCommand_Help(t *testing.T) {
	out, err := runCLI(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "lorekeep")
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "stats")
	assert.Contains(t, out, "version")
}

func TestRootCommand_AllSubcommands(t *testing.T) {
	out, err := runCLI(t, "--help")
	require.NoError(t, err)

	for _, cmd := range []string{"init", "serve", "stats", "export", "import", "validate", "path", "config", "version"} {
		assert.Contains(t, out, cmd, "root help should list %q subcommand", cmd)
	}
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	out, err := runCLI(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "--config")
	assert.Contains(t, out, "--data-dir")
	assert.Contains(t, out, "--verbose")
}

func TestRootCommand_BadConfigPath(t *testing.T) {
	_, err := runCLI(t, "stats", "--config", "/nonexistent/lorekeep.yaml")
	require.Error(t, err)
	assert.True(t, lkerr.HasCode(err, lkerr.CodeConfigLoadReadFailure))
}

func TestVersionCommand(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	out, err := runCLI(t, "version", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "lorekeep")
	assert.Contains(t, out, "dev")
}

func TestConfigShowCommand(t *testing.T) {
	cfgPath, dataDir := writeTestConfig(t)
	out, err := runCLI(t, "config", "show", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "data_dir: "+dataDir)
	assert.Contains(t, out, "backend: sqlite")
	assert.Contains(t, out, "listen: 127.0.0.1:8480")
}

func TestConfigShowCommand_DataDirFlagWins(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	override := t.TempDir()
	out, err := runCLI(t, "config", "show", "--config", cfgPath, "--data-dir", override)
	require.NoError(t, err)
	assert.Contains(t, out, "data_dir: "+override)
}
