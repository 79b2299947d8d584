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
)

func TestGraph_EdgeRoundTrip(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t, "edge-roundtrip")

	addNode(t, g, "a", "note", "A", nil)
	addNode(t, g, "b", "note", "B", nil)

	id := addEdge(t, g, "e1", "a", "b", "references", map[string]any{"weight": float64(2)})
	assert.Equal(t, "e1", id)

	got, err := g.GetEdge(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, got.SourceID)
	require.NotNil(t, got.TargetID)
	assert.Equal(t, "a", *got.SourceID)
	assert.Equal(t, "b", *got.TargetID)
	assert.Equal(t, "references", got.Type)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, map[string]any{"weight": float64(2)}, got.Properties)
}

func TestGraph_AddEdge_MissingEndpoint(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t, "edge-missing-endpoint")

	addNode(t, g, "a", "note", "A", nil)

	_, err := g.AddEdge(ctx, &store.Edge{
		SourceID: strPtr("a"), TargetID: strPtr("ghost"), Type: "references",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNodeNotFound))

	// Nothing was written.
	edges, err := g.GetEdges(ctx)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestGraph_GetEdge_NotFound(t *testing.T) {
	_, err := newTestGraph(t, "edge-notfound").GetEdge(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrEdgeNotFound))
}

func TestGraph_UpdateEdge_Repoint(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t, "edge-repoint")

	addNode(t, g, "a", "note", "A", nil)
	addNode(t, g, "b", "note", "B", nil)
	addNode(t, g, "c", "note", "C", nil)
	addEdge(t, g, "e1", "a", "b", "references", nil)

	err := g.UpdateEdge(ctx, "e1", store.EdgeUpdate{TargetID: strPtr("c")})
	require.NoError(t, err)

	got, err := g.GetEdge(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "a", *got.SourceID)
	assert.Equal(t, "c", *got.TargetID)
}

func TestGraph_UpdateEdge_RepointToMissingNode(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t, "edge-repoint-missing")

	addNode(t, g, "a", "note", "A", nil)
	addNode(t, g, "b", "note", "B", nil)
	addEdge(t, g, "e1", "a", "b", "references", nil)

	err := g.UpdateEdge(ctx, "e1", store.EdgeUpdate{TargetID: strPtr("ghost")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNodeNotFound))

	// The edge is unchanged.
	got, err := g.GetEdge(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "b", *got.TargetID)
}

func TestGraph_UpdateEdge_ReplacesPropertySet(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t, "edge-props-replace")

	addNode(t, g, "a", "note", "A", nil)
	addNode(t, g, "b", "note", "B", nil)
	addEdge(t, g, "e1", "a", "b", "references", map[string]any{"weight": float64(1), "note": "old"})

	err := g.UpdateEdge(ctx, "e1", store.EdgeUpdate{
		Properties: map[string]any{"weight": float64(5)},
	})
	require.NoError(t, err)

	got, err := g.GetEdge(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"weight": float64(5)}, got.Properties)
}

func TestGraph_DeleteEdge(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t, "edge-delete")

	addNode(t, g, "a", "note", "A", nil)
	addNode(t, g, "b", "note", "B", nil)
	addEdge(t, g, "e1", "a", "b", "references", map[string]any{"weight": float64(1)})

	err := g.DeleteEdge(ctx, "e1")
	require.NoError(t, err)

	_, err = g.GetEdge(ctx, "e1")
	assert.True(t, errors.Is(err, store.ErrEdgeNotFound))

	// Endpoints survive an edge delete.
	_, err = g.GetNode(ctx, "a")
	assert.NoError(t, err)
	_, err = g.GetNode(ctx, "b")
	assert.NoError(t, err)
}

func TestGraph_DeleteEdge_NotFound(t *testing.T) {
	err := newTestGraph(t, "edge-delete-nf").DeleteEdge(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrEdgeNotFound))
}
