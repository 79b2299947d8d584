// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lorekeep/lorekeep/internal/store"
	"github.com/lorekeep/lorekeep/internal/store/sqlite"
)

// testDir creates a temp directory for a test and returns cleanup func.
func testDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "lorekeep-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// testDBPath returns a temp SQLite database path.
func testDBPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(testDir(t), name+".db")
}

// newTestGraph opens a fresh store for one test and closes it on cleanup.
func newTestGraph(t *testing.T, name string) *sqlite.Graph {
	t.Helper()
	g, err := sqlite.New(testDBPath(t, name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func addNode(t *testing.T, g *sqlite.Graph, id, typ, label string, props map[string]any) string {
	t.Helper()
	got, err := g.AddNode(context.Background(), &store.Node{
		ID: id, Type: typ, Label: label, Properties: props,
	})
	require.NoError(t, err)
	return got
}

func addEdge(t *testing.T, g *sqlite.Graph, id, source, target, typ string, props map[string]any) string {
	t.Helper()
	got, err := g.AddEdge(context.Background(), &store.Edge{
		ID: id, SourceID: &source, TargetID: &target, Type: typ, Properties: props,
	})
	require.NoError(t, err)
	return got
}

func strPtr(s string) *string { return &s }
