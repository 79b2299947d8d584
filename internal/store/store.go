// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package store

import "context"

// GraphStore is the full capability surface of the graph engine: CRUD,
// structured search, traversal, and bulk snapshot I/O over one embedded
// database handle. Implementations serialize all multi-statement writes
// through a single FIFO transaction lane.
type GraphStore interface {
	// AddNode inserts a node, assigning an id when none is supplied, and
	// returns the id.
	AddNode(ctx context.Context, node *Node) (string, error)
	GetNode(ctx context.Context, id string) (*Node, error)
	GetNodes(ctx context.Context) ([]*Node, error)
	UpdateNode(ctx context.Context, id string, update NodeUpdate) error
	// DeleteNode removes a node under the given policy: cascade also
	// removes touching edges, keep-connected nulls their endpoints.
	DeleteNode(ctx context.Context, id string, mode DeleteMode) error

	// AddEdge inserts an edge after validating that both endpoints
	// resolve to live nodes, and returns the id.
	AddEdge(ctx context.Context, edge *Edge) (string, error)
	GetEdge(ctx context.Context, id string) (*Edge, error)
	GetEdges(ctx context.Context) ([]*Edge, error)
	UpdateEdge(ctx context.Context, id string, update EdgeUpdate) error
	DeleteEdge(ctx context.Context, id string) error

	SearchNodes(ctx context.Context, criteria NodeCriteria) (*NodeSearchResult, error)
	SearchEdges(ctx context.Context, criteria EdgeCriteria) (*EdgeSearchResult, error)
	FullTextSearch(ctx context.Context, query string, opts FullTextOptions) (*NodeSearchResult, error)

	// FindPath returns the edge sequence of a shortest directed path
	// from start to end within maxDepth hops, or an empty slice when
	// unreachable. Among equal-length paths the first discovered under
	// storage enumeration order wins.
	FindPath(ctx context.Context, startID, endID string, maxDepth int) ([]*Edge, error)
	// FindConnectedNodes returns every distinct node within depth
	// undirected hops of start, excluding start itself.
	FindConnectedNodes(ctx context.Context, startID string, depth int) ([]*Node, error)

	Export(ctx context.Context, opts ExportOptions) (*Snapshot, error)
	// ImportJSON reconciles snapshot JSON into the store under one
	// transaction. It never returns an error: every failure, from
	// malformed JSON to a rolled-back batch, is reported through the
	// result.
	ImportJSON(ctx context.Context, data []byte, mode ImportMode) *ImportResult

	Stats(ctx context.Context) (*GraphStats, error)
	// Clear empties all graph tables in child-before-parent order.
	Clear(ctx context.Context) error
	Close() error
}
