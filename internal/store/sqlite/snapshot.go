// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lorekeep/lorekeep/internal/store"
	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

// Export serializes the full graph into a snapshot. Metadata is
// attached only on request so round-trips through older consumers stay
// byte-compatible.
func (g *Graph) Export(ctx context.Context, opts store.ExportOptions) (*store.Snapshot, error) {
	if err := g.checkOpen(); err != nil {
		return nil, err
	}

	nodes, err := g.GetNodes(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := g.GetEdges(ctx)
	if err != nil {
		return nil, err
	}

	snap := &store.Snapshot{Data: store.SnapshotData{Nodes: nodes, Edges: edges}}
	if opts.IncludeMetadata {
		snap.Metadata = store.NewSnapshotMetadata(time.Now())
	}
	return snap, nil
}

// ImportJSON reconciles a snapshot into the store inside one queued
// transaction. Per-record problems are collected and the record
// skipped; only a storage-level failure rolls the whole batch back.
// The result always tells the full story, so no error is returned.
func (g *Graph) ImportJSON(ctx context.Context, data []byte, mode store.ImportMode) *store.ImportResult {
	result := &store.ImportResult{Errors: []string{}}

	if err := g.checkOpen(); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	snap, err := store.ParseSnapshot(data)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if mode == "" {
		mode = store.ImportReplace
	}
	if mode != store.ImportReplace && mode != store.ImportMerge {
		result.Errors = append(result.Errors, fmt.Sprintf("unknown import mode %q", mode))
		return result
	}

	err = g.queue.do(ctx, func(txCtx context.Context, tx *sql.Tx) error {
		if mode == store.ImportReplace {
			if err := clearAll(txCtx, tx); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		for i, n := range snap.Data.Nodes {
			if issue := checkSnapshotNode(i, n); issue != "" {
				result.Errors = append(result.Errors, issue)
				continue
			}
			if err := g.importNode(txCtx, tx, n, mode, now); err != nil {
				return err
			}
			result.NodesImported++
		}

		// The live id set is read back after the node phase so edge
		// gating sees both imported and, under merge, pre-existing nodes.
		live, err := liveNodeIDs(txCtx, tx)
		if err != nil {
			return err
		}

		for i, e := range snap.Data.Edges {
			if issue := checkSnapshotEdge(i, e); issue != "" {
				result.Errors = append(result.Errors, issue)
				continue
			}
			if !live[*e.SourceID] {
				result.Errors = append(result.Errors,
					fmt.Sprintf("edge %s references missing source node %s", e.ID, *e.SourceID))
				continue
			}
			if !live[*e.TargetID] {
				result.Errors = append(result.Errors,
					fmt.Sprintf("edge %s references missing target node %s", e.ID, *e.TargetID))
				continue
			}
			if err := g.importEdge(txCtx, tx, e, mode, now); err != nil {
				return err
			}
			result.EdgesImported++
		}
		return nil
	})
	if err != nil {
		// Rolled back; nothing from this batch survived.
		return &store.ImportResult{
			Errors: append(result.Errors, err.Error()),
		}
	}

	result.Success = len(result.Errors) == 0
	return result
}

func checkSnapshotNode(i int, n *store.Node) string {
	switch {
	case n == nil:
		return fmt.Sprintf("node %d: null entry", i)
	case n.Type == "":
		return fmt.Sprintf("node %d (%s): missing type", i, n.ID)
	case n.Label == "":
		return fmt.Sprintf("node %d (%s): missing label", i, n.ID)
	}
	return ""
}

func checkSnapshotEdge(i int, e *store.Edge) string {
	switch {
	case e == nil:
		return fmt.Sprintf("edge %d: null entry", i)
	case e.SourceID == nil || *e.SourceID == "":
		return fmt.Sprintf("edge %d (%s): missing source_id", i, e.ID)
	case e.TargetID == nil || *e.TargetID == "":
		return fmt.Sprintf("edge %d (%s): missing target_id", i, e.ID)
	case e.Type == "":
		return fmt.Sprintf("edge %d (%s): missing type", i, e.ID)
	}
	return ""
}

// importNode writes one snapshot node, preserving its id and timestamps
// where supplied. Under merge an existing id becomes an in-place update.
func (g *Graph) importNode(ctx context.Context, tx *sql.Tx, n *store.Node, mode store.ImportMode, now time.Time) error {
	id := n.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := n.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	if mode == store.ImportMerge {
		err := nodeExists(ctx, tx, id)
		switch {
		case err == nil:
			if _, err := tx.ExecContext(ctx,
				`UPDATE nodes SET type = ?, label = ?, updated_at = ? WHERE id = ?`,
				n.Type, n.Label, formatTime(updatedAt), id,
			); err != nil {
				return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "updating imported node %s: %w", id, err)
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM node_properties WHERE node_id = ?`, id,
			); err != nil {
				return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "clearing imported node %s properties: %w", id, err)
			}
			return insertProperties(ctx, tx, "node_properties", "node_id", id, n.Properties)
		case !errors.Is(err, store.ErrNodeNotFound):
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO nodes (id, type, label, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, n.Type, n.Label, formatTime(createdAt), formatTime(updatedAt),
	); err != nil {
		return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "inserting imported node %s: %w", id, err)
	}
	return insertProperties(ctx, tx, "node_properties", "node_id", id, n.Properties)
}

func (g *Graph) importEdge(ctx context.Context, tx *sql.Tx, e *store.Edge, mode store.ImportMode, now time.Time) error {
	id := e.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	if mode == store.ImportMerge {
		err := edgeExists(ctx, tx, id)
		switch {
		case err == nil:
			if _, err := tx.ExecContext(ctx,
				`UPDATE relationships SET source_id = ?, target_id = ?, type = ? WHERE id = ?`,
				*e.SourceID, *e.TargetID, e.Type, id,
			); err != nil {
				return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "updating imported edge %s: %w", id, err)
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM relationship_properties WHERE relationship_id = ?`, id,
			); err != nil {
				return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "clearing imported edge %s properties: %w", id, err)
			}
			return insertProperties(ctx, tx, "relationship_properties", "relationship_id", id, e.Properties)
		case !errors.Is(err, store.ErrEdgeNotFound):
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO relationships (id, source_id, target_id, type, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, *e.SourceID, *e.TargetID, e.Type, formatTime(createdAt),
	); err != nil {
		return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "inserting imported edge %s: %w", id, err)
	}
	return insertProperties(ctx, tx, "relationship_properties", "relationship_id", id, e.Properties)
}

func liveNodeIDs(ctx context.Context, tx *sql.Tx) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM nodes`)
	if err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "listing node ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "scanning node id: %w", err)
		}
		ids[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "iterating node ids: %w", err)
	}
	return ids, nil
}
