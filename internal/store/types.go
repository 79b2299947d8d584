// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package store

import "time"

// Node is a graph entity: a concept card on the canvas.
type Node struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Edge is a typed directed relationship between two nodes. Endpoints are
// pointers because a keep-connected delete nulls them while preserving
// the edge row.
type Edge struct {
	ID         string         `json:"id"`
	SourceID   *string        `json:"source_id"`
	TargetID   *string        `json:"target_id"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NodeUpdate is a partial node mutation. Nil fields are left untouched.
// A non-nil Properties map replaces the stored property set wholesale —
// it is never merged with existing keys.
type NodeUpdate struct {
	Type       *string
	Label      *string
	Properties map[string]any
}

// EdgeUpdate is a partial edge mutation. Nil fields are left untouched.
// Supplying an endpoint re-points the edge and is re-validated against
// live nodes; endpoints can only become null through a keep-connected
// node delete, never through an update.
type EdgeUpdate struct {
	SourceID   *string
	TargetID   *string
	Type       *string
	Properties map[string]any
}

// DeleteMode selects what happens to edges touching a deleted node.
type DeleteMode string

const (
	// DeleteKeepConnected preserves touching edges, nulling the endpoint
	// that referenced the deleted node. This is the default policy.
	DeleteKeepConnected DeleteMode = "keep_connected"

	// DeleteCascade removes every edge touching the deleted node along
	// with its properties.
	DeleteCascade DeleteMode = "cascade"
)

// ImportMode selects the snapshot reconciliation strategy.
type ImportMode string

const (
	// ImportReplace empties the store before inserting the snapshot.
	ImportReplace ImportMode = "replace"

	// ImportMerge updates records whose ids already exist and inserts
	// the rest.
	ImportMerge ImportMode = "merge"
)

// NodeSearchResult carries one page of node matches plus the unpaginated
// total for the same criteria.
type NodeSearchResult struct {
	Results    []*Node `json:"results"`
	TotalCount int     `json:"total_count"`
}

// EdgeSearchResult carries one page of edge matches plus the unpaginated
// total for the same criteria.
type EdgeSearchResult struct {
	Results    []*Edge `json:"results"`
	TotalCount int     `json:"total_count"`
}

// FullTextOptions scopes a full-text search.
type FullTextOptions struct {
	// Types restricts matches to the given node types when non-empty.
	Types []string
	// IncludeProperties extends matching from label into property values.
	IncludeProperties bool
	Limit             int
	Offset            int
}

// ImportResult reports the outcome of a snapshot import. Success is true
// only when Errors is empty; a failed import never raises, it reports.
type ImportResult struct {
	Success       bool     `json:"success"`
	NodesImported int      `json:"nodes_imported"`
	EdgesImported int      `json:"edges_imported"`
	Errors        []string `json:"errors"`
}

// ImportValidation reports structural validation of snapshot JSON
// without touching the store.
type ImportValidation struct {
	Valid     bool     `json:"valid"`
	Version   string   `json:"version,omitempty"`
	NodeCount int      `json:"node_count"`
	EdgeCount int      `json:"edge_count"`
	Errors    []string `json:"errors"`
}

// ExportOptions controls snapshot serialization.
type ExportOptions struct {
	// IncludeMetadata adds the version/created_at metadata block.
	IncludeMetadata bool
}

// GraphStats summarizes store contents for status surfaces.
type GraphStats struct {
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`
}
