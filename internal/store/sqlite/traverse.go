// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package sqlite

import (
	"context"
	"sort"

	"github.com/lorekeep/lorekeep/internal/store"
	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

const defaultTraversalDepth = 10

// FindPath runs a breadth-first search for the shortest directed path
// from startID to endID and returns its edges in traversal order. An
// empty slice means no path exists within maxDepth hops. Both endpoints
// must exist.
func (g *Graph) FindPath(ctx context.Context, startID, endID string, maxDepth int) ([]*store.Edge, error) {
	if err := g.checkOpen(); err != nil {
		return nil, err
	}
	if err := nodeExists(ctx, g.db, startID); err != nil {
		return nil, err
	}
	if err := nodeExists(ctx, g.db, endID); err != nil {
		return nil, err
	}
	if startID == endID {
		return []*store.Edge{}, nil
	}
	if maxDepth <= 0 {
		maxDepth = defaultTraversalDepth
	}

	edges, err := g.allEdges(ctx)
	if err != nil {
		return nil, err
	}

	// Directed adjacency; dangling edges cannot be walked.
	adjacency := make(map[string][]*store.Edge)
	for _, e := range edges {
		if e.SourceID == nil || e.TargetID == nil {
			continue
		}
		adjacency[*e.SourceID] = append(adjacency[*e.SourceID], e)
	}

	parent := map[string]*store.Edge{startID: nil}
	frontier := []string{startID}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			for _, e := range adjacency[id] {
				to := *e.TargetID
				if _, seen := parent[to]; seen {
					continue
				}
				parent[to] = e
				if to == endID {
					return tracePath(parent, startID, endID), nil
				}
				next = append(next, to)
			}
		}
		frontier = next
	}

	return []*store.Edge{}, nil
}

// FindConnectedNodes returns every node reachable from startID within
// the given number of hops, ignoring edge direction. The start node
// itself is excluded.
func (g *Graph) FindConnectedNodes(ctx context.Context, startID string, depth int) ([]*store.Node, error) {
	if err := g.checkOpen(); err != nil {
		return nil, err
	}
	if err := nodeExists(ctx, g.db, startID); err != nil {
		return nil, err
	}
	if depth <= 0 {
		depth = 1
	}

	edges, err := g.allEdges(ctx)
	if err != nil {
		return nil, err
	}

	adjacency := make(map[string][]string)
	for _, e := range edges {
		if e.SourceID == nil || e.TargetID == nil {
			continue
		}
		adjacency[*e.SourceID] = append(adjacency[*e.SourceID], *e.TargetID)
		adjacency[*e.TargetID] = append(adjacency[*e.TargetID], *e.SourceID)
	}

	visited := map[string]bool{startID: true}
	frontier := []string{startID}
	var found []string
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			for _, neighbor := range adjacency[id] {
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				next = append(next, neighbor)
			}
		}
		// Deterministic order within each ring.
		sort.Strings(next)
		found = append(found, next...)
		frontier = next
	}

	nodes := make([]*store.Node, 0, len(found))
	for _, id := range found {
		n, err := getNode(ctx, g.db, id)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// allEdges loads the full edge set once so traversal walks in memory
// instead of issuing a query per hop.
func (g *Graph) allEdges(ctx context.Context) ([]*store.Edge, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT id, source_id, target_id, type, created_at FROM relationships`)
	if err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "loading edges for traversal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var edges []*store.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "scanning edge for traversal: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "iterating edges for traversal: %w", err)
	}
	return edges, nil
}

// tracePath walks the BFS parent map backwards from endID and reverses
// the collected edges into start-to-end order.
func tracePath(parent map[string]*store.Edge, startID, endID string) []*store.Edge {
	var reversed []*store.Edge
	for at := endID; at != startID; {
		e := parent[at]
		reversed = append(reversed, e)
		at = *e.SourceID
	}
	path := make([]*store.Edge, len(reversed))
	for i, e := range reversed {
		path[len(reversed)-1-i] = e
	}
	return path
}
