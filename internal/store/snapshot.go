// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// SnapshotVersion is the version written into exported metadata.
const SnapshotVersion = "1.0"

// Snapshot is the persisted export format. The field names are a stable
// contract consumed by the presentation layer and other app instances.
type Snapshot struct {
	Metadata *SnapshotMetadata `json:"metadata,omitempty"`
	Data     SnapshotData      `json:"data"`
}

// SnapshotMetadata is the optional version block of a snapshot.
type SnapshotMetadata struct {
	Version   string `json:"version"`
	CreatedAt string `json:"created_at"`
}

// SnapshotData holds the full node and edge sets with their property maps.
type SnapshotData struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// NewSnapshotMetadata stamps a metadata block for an export.
func NewSnapshotMetadata(now time.Time) *SnapshotMetadata {
	return &SnapshotMetadata{
		Version:   SnapshotVersion,
		CreatedAt: now.UTC().Format(time.RFC3339Nano),
	}
}

// rawSnapshot distinguishes absent sections from empty ones during
// validation, which a direct unmarshal into Snapshot cannot.
type rawSnapshot struct {
	Metadata *SnapshotMetadata `json:"metadata"`
	Data     *struct {
		Nodes json.RawMessage `json:"nodes"`
		Edges json.RawMessage `json:"edges"`
	} `json:"data"`
}

// ParseSnapshot decodes snapshot JSON, requiring the data section with
// both arrays present.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if raw.Data == nil {
		return nil, fmt.Errorf("missing data section")
	}
	if raw.Data.Nodes == nil {
		return nil, fmt.Errorf("data.nodes is missing")
	}
	if raw.Data.Edges == nil {
		return nil, fmt.Errorf("data.edges is missing")
	}

	snap := &Snapshot{Metadata: raw.Metadata}
	if err := json.Unmarshal(raw.Data.Nodes, &snap.Data.Nodes); err != nil {
		return nil, fmt.Errorf("data.nodes is not an array of nodes: %w", err)
	}
	if err := json.Unmarshal(raw.Data.Edges, &snap.Data.Edges); err != nil {
		return nil, fmt.Errorf("data.edges is not an array of edges: %w", err)
	}
	return snap, nil
}

// ValidateSnapshot structurally checks snapshot JSON without touching
// any store. Malformed input yields a result, never a panic or error.
func ValidateSnapshot(data []byte) *ImportValidation {
	v := &ImportValidation{Errors: []string{}}

	snap, err := ParseSnapshot(data)
	if err != nil {
		v.Errors = append(v.Errors, err.Error())
		return v
	}

	if snap.Metadata != nil {
		v.Version = snap.Metadata.Version
	}
	v.NodeCount = len(snap.Data.Nodes)
	v.EdgeCount = len(snap.Data.Edges)

	for i, n := range snap.Data.Nodes {
		if n == nil {
			v.Errors = append(v.Errors, fmt.Sprintf("node %d: null entry", i))
			continue
		}
		if n.Type == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("node %d (%s): missing type", i, n.ID))
		}
		if n.Label == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("node %d (%s): missing label", i, n.ID))
		}
	}

	for i, e := range snap.Data.Edges {
		if e == nil {
			v.Errors = append(v.Errors, fmt.Sprintf("edge %d: null entry", i))
			continue
		}
		if e.SourceID == nil || *e.SourceID == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("edge %d (%s): missing source_id", i, e.ID))
		}
		if e.TargetID == nil || *e.TargetID == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("edge %d (%s): missing target_id", i, e.ID))
		}
		if e.Type == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("edge %d (%s): missing type", i, e.ID))
		}
	}

	v.Valid = len(v.Errors) == 0
	return v
}
