// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorekeep/lorekeep/internal/store"
	"github.com/lorekeep/lorekeep/internal/store/sqlite"
)

// traverseFixture builds a -> b -> c -> d plus a shortcut a -> c.
func traverseFixture(t *testing.T, name string) *sqlite.Graph {
	t.Helper()
	g := newTestGraph(t, name)
	for _, id := range []string{"a", "b", "c", "d"} {
		addNode(t, g, id, "note", "Note "+id, nil)
	}
	addEdge(t, g, "ab", "a", "b", "links", nil)
	addEdge(t, g, "bc", "b", "c", "links", nil)
	addEdge(t, g, "cd", "c", "d", "links", nil)
	addEdge(t, g, "ac", "a", "c", "links", nil)
	return g
}

func TestGraph_FindPath_Shortest(t *testing.T) {
	g := traverseFixture(t, "path-shortest")

	// The shortcut wins over a -> b -> c -> d.
	path, err := g.FindPath(context.Background(), "a", "d", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"ac", "cd"}, edgeIDs(path))
}

func TestGraph_FindPath_RespectsDirection(t *testing.T) {
	g := traverseFixture(t, "path-direction")

	path, err := g.FindPath(context.Background(), "d", "a", 10)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestGraph_FindPath_MaxDepth(t *testing.T) {
	ctx := context.Background()
	g := traverseFixture(t, "path-maxdepth")

	path, err := g.FindPath(ctx, "a", "d", 1)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = g.FindPath(ctx, "a", "d", 2)
	require.NoError(t, err)
	assert.Len(t, path, 2)
}

func TestGraph_FindPath_SameNode(t *testing.T) {
	g := traverseFixture(t, "path-same")

	path, err := g.FindPath(context.Background(), "a", "a", 10)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestGraph_FindPath_MissingEndpoint(t *testing.T) {
	g := traverseFixture(t, "path-missing")

	_, err := g.FindPath(context.Background(), "a", "ghost", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNodeNotFound))
}

func TestGraph_FindPath_SkipsDanglingEdges(t *testing.T) {
	ctx := context.Background()
	g := traverseFixture(t, "path-dangling")

	// Detaching c leaves its edges dangling; the only remaining route
	// to d is gone.
	require.NoError(t, g.DeleteNode(ctx, "c", store.DeleteKeepConnected))

	path, err := g.FindPath(ctx, "a", "d", 10)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestGraph_FindConnectedNodes_Depth(t *testing.T) {
	ctx := context.Background()
	g := traverseFixture(t, "connected-depth")

	// One hop from a, in either direction.
	nodes, err := g.FindConnectedNodes(ctx, "a", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, resultIDs(nodes))

	nodes, err = g.FindConnectedNodes(ctx, "a", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "d"}, resultIDs(nodes))
}

func TestGraph_FindConnectedNodes_Undirected(t *testing.T) {
	g := traverseFixture(t, "connected-undirected")

	// d only has an inbound edge, which still connects it.
	nodes, err := g.FindConnectedNodes(context.Background(), "d", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, resultIDs(nodes))
}

func TestGraph_FindConnectedNodes_ExcludesStart(t *testing.T) {
	g := traverseFixture(t, "connected-no-start")

	nodes, err := g.FindConnectedNodes(context.Background(), "a", 3)
	require.NoError(t, err)
	assert.NotContains(t, resultIDs(nodes), "a")
}

func TestGraph_FindConnectedNodes_MissingStart(t *testing.T) {
	g := traverseFixture(t, "connected-missing")

	_, err := g.FindConnectedNodes(context.Background(), "ghost", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNodeNotFound))
}
