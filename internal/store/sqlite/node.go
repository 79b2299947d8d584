// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lorekeep/lorekeep/internal/store"
	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

// AddNode inserts a node and its property rows in one transaction,
// assigning an id and timestamps when absent, and returns the id.
func (g *Graph) AddNode(ctx context.Context, node *store.Node) (string, error) {
	if err := g.checkOpen(); err != nil {
		return "", err
	}

	id := node.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()

	err := g.queue.do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		const q = `INSERT INTO nodes (id, type, label, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, q, id, node.Type, node.Label, formatTime(now), formatTime(now)); err != nil {
			return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "inserting node %s: %w", id, err)
		}
		return insertProperties(ctx, tx, "node_properties", "node_id", id, node.Properties)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetNode reconstructs one node with its decoded property map.
func (g *Graph) GetNode(ctx context.Context, id string) (*store.Node, error) {
	if err := g.checkOpen(); err != nil {
		return nil, err
	}
	return getNode(ctx, g.db, id)
}

func getNode(ctx context.Context, q dbtx, id string) (*store.Node, error) {
	const query = `SELECT id, type, label, created_at, updated_at FROM nodes WHERE id = ?`

	var n store.Node
	var createdAt, updatedAt string
	err := q.QueryRowContext(ctx, query, id).Scan(&n.ID, &n.Type, &n.Label, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lkerr.Errorf(lkerr.CodeGraphNodeNotFound, "node %s: %w", id, store.ErrNodeNotFound)
	}
	if err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "getting node %s: %w", id, err)
	}
	n.CreatedAt = parseTime(createdAt)
	n.UpdatedAt = parseTime(updatedAt)

	props, err := loadProperties(ctx, q, "node_properties", "node_id", id)
	if err != nil {
		return nil, err
	}
	n.Properties = props
	return &n, nil
}

// GetNodes returns every node ordered by creation time.
func (g *Graph) GetNodes(ctx context.Context) ([]*store.Node, error) {
	if err := g.checkOpen(); err != nil {
		return nil, err
	}

	const q = `SELECT id, type, label, created_at, updated_at FROM nodes ORDER BY created_at ASC, id ASC`
	rows, err := g.db.QueryContext(ctx, q)
	if err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "listing nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var nodes []*store.Node
	for rows.Next() {
		var n store.Node
		var createdAt, updatedAt string
		if err := rows.Scan(&n.ID, &n.Type, &n.Label, &createdAt, &updatedAt); err != nil {
			return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "scanning node row: %w", err)
		}
		n.CreatedAt = parseTime(createdAt)
		n.UpdatedAt = parseTime(updatedAt)
		nodes = append(nodes, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "iterating node rows: %w", err)
	}

	for _, n := range nodes {
		props, err := loadProperties(ctx, g.db, "node_properties", "node_id", n.ID)
		if err != nil {
			return nil, err
		}
		n.Properties = props
	}
	return nodes, nil
}

// UpdateNode rewrites only the supplied fields and bumps updated_at. A
// supplied property map replaces the stored set wholesale: existing rows
// are deleted and the new set inserted.
func (g *Graph) UpdateNode(ctx context.Context, id string, update store.NodeUpdate) error {
	if err := g.checkOpen(); err != nil {
		return err
	}

	return g.queue.do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := nodeExists(ctx, tx, id); err != nil {
			return err
		}

		sets := []string{"updated_at = ?"}
		args := []any{formatTime(time.Now().UTC())}
		if update.Type != nil {
			sets = append(sets, "type = ?")
			args = append(args, *update.Type)
		}
		if update.Label != nil {
			sets = append(sets, "label = ?")
			args = append(args, *update.Label)
		}
		args = append(args, id)

		if _, err := tx.ExecContext(ctx,
			`UPDATE nodes SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
		); err != nil {
			return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "updating node %s: %w", id, err)
		}

		if update.Properties != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM node_properties WHERE node_id = ?`, id); err != nil {
				return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "clearing properties for node %s: %w", id, err)
			}
			if err := insertProperties(ctx, tx, "node_properties", "node_id", id, update.Properties); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteNode removes a node under the given policy. Cascade removes
// every touching edge with its properties; keep-connected (the default)
// preserves touching edges with the endpoint nulled. Both policies drop
// the node's property rows with the node.
func (g *Graph) DeleteNode(ctx context.Context, id string, mode store.DeleteMode) error {
	if err := g.checkOpen(); err != nil {
		return err
	}

	if mode == "" {
		mode = store.DeleteKeepConnected
	}
	if mode != store.DeleteKeepConnected && mode != store.DeleteCascade {
		return lkerr.Errorf(lkerr.CodeGraphInputInvalid, "unknown delete mode %q: %w", mode, store.ErrInvalidInput)
	}

	return g.queue.do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := nodeExists(ctx, tx, id); err != nil {
			return err
		}

		switch mode {
		case store.DeleteCascade:
			if _, err := tx.ExecContext(ctx, `DELETE FROM relationship_properties WHERE relationship_id IN
				(SELECT id FROM relationships WHERE source_id = ? OR target_id = ?)`, id, id); err != nil {
				return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "deleting edge properties for node %s: %w", id, err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM relationships WHERE source_id = ? OR target_id = ?`, id, id); err != nil {
				return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "deleting edges for node %s: %w", id, err)
			}
		case store.DeleteKeepConnected:
			// Endpoints must be nulled before the node row goes away or
			// the foreign keys reject the delete.
			if _, err := tx.ExecContext(ctx, `UPDATE relationships SET source_id = NULL WHERE source_id = ?`, id); err != nil {
				return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "detaching edge sources for node %s: %w", id, err)
			}
			if _, err := tx.ExecContext(ctx, `UPDATE relationships SET target_id = NULL WHERE target_id = ?`, id); err != nil {
				return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "detaching edge targets for node %s: %w", id, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM node_properties WHERE node_id = ?`, id); err != nil {
			return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "deleting properties for node %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id); err != nil {
			return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "deleting node %s: %w", id, err)
		}
		return nil
	})
}

// nodeExists raises the node-not-found kind directly; every other
// failure is a database failure.
func nodeExists(ctx context.Context, q dbtx, id string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM nodes WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return lkerr.Errorf(lkerr.CodeGraphNodeNotFound, "node %s: %w", id, store.ErrNodeNotFound)
	}
	if err != nil {
		return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "checking node %s: %w", id, err)
	}
	return nil
}
