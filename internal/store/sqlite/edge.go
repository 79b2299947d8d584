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

// AddEdge inserts an edge and its property rows in one transaction.
// Non-null endpoints must resolve to live nodes at write time.
func (g *Graph) AddEdge(ctx context.Context, edge *store.Edge) (string, error) {
	if err := g.checkOpen(); err != nil {
		return "", err
	}

	id := edge.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()

	err := g.queue.do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := endpointsExist(ctx, tx, edge.SourceID, edge.TargetID); err != nil {
			return err
		}

		const q = `INSERT INTO relationships (id, source_id, target_id, type, created_at) VALUES (?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, q, id, nullable(edge.SourceID), nullable(edge.TargetID), edge.Type, formatTime(now)); err != nil {
			return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "inserting edge %s: %w", id, err)
		}
		return insertProperties(ctx, tx, "relationship_properties", "relationship_id", id, edge.Properties)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetEdge reconstructs one edge with its decoded property map.
func (g *Graph) GetEdge(ctx context.Context, id string) (*store.Edge, error) {
	if err := g.checkOpen(); err != nil {
		return nil, err
	}
	return getEdge(ctx, g.db, id)
}

func getEdge(ctx context.Context, q dbtx, id string) (*store.Edge, error) {
	const query = `SELECT id, source_id, target_id, type, created_at FROM relationships WHERE id = ?`

	e, err := scanEdgeRow(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lkerr.Errorf(lkerr.CodeGraphEdgeNotFound, "edge %s: %w", id, store.ErrEdgeNotFound)
	}
	if err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "getting edge %s: %w", id, err)
	}

	props, err := loadProperties(ctx, q, "relationship_properties", "relationship_id", id)
	if err != nil {
		return nil, err
	}
	e.Properties = props
	return e, nil
}

// GetEdges returns every edge ordered by creation time.
func (g *Graph) GetEdges(ctx context.Context) ([]*store.Edge, error) {
	if err := g.checkOpen(); err != nil {
		return nil, err
	}

	const q = `SELECT id, source_id, target_id, type, created_at FROM relationships ORDER BY created_at ASC, id ASC`
	rows, err := g.db.QueryContext(ctx, q)
	if err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "listing edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var edges []*store.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "scanning edge row: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "iterating edge rows: %w", err)
	}

	for _, e := range edges {
		props, err := loadProperties(ctx, g.db, "relationship_properties", "relationship_id", e.ID)
		if err != nil {
			return nil, err
		}
		e.Properties = props
	}
	return edges, nil
}

// UpdateEdge rewrites only the supplied fields. Newly supplied endpoints
// are re-validated against live nodes; a supplied property map replaces
// the stored set wholesale.
func (g *Graph) UpdateEdge(ctx context.Context, id string, update store.EdgeUpdate) error {
	if err := g.checkOpen(); err != nil {
		return err
	}

	return g.queue.do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := edgeExists(ctx, tx, id); err != nil {
			return err
		}
		if err := endpointsExist(ctx, tx, update.SourceID, update.TargetID); err != nil {
			return err
		}

		var sets []string
		var args []any
		if update.SourceID != nil {
			sets = append(sets, "source_id = ?")
			args = append(args, *update.SourceID)
		}
		if update.TargetID != nil {
			sets = append(sets, "target_id = ?")
			args = append(args, *update.TargetID)
		}
		if update.Type != nil {
			sets = append(sets, "type = ?")
			args = append(args, *update.Type)
		}
		if len(sets) > 0 {
			args = append(args, id)
			if _, err := tx.ExecContext(ctx,
				`UPDATE relationships SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
			); err != nil {
				return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "updating edge %s: %w", id, err)
			}
		}

		if update.Properties != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM relationship_properties WHERE relationship_id = ?`, id); err != nil {
				return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "clearing properties for edge %s: %w", id, err)
			}
			if err := insertProperties(ctx, tx, "relationship_properties", "relationship_id", id, update.Properties); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteEdge removes an edge and its property rows.
func (g *Graph) DeleteEdge(ctx context.Context, id string) error {
	if err := g.checkOpen(); err != nil {
		return err
	}

	return g.queue.do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := edgeExists(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM relationship_properties WHERE relationship_id = ?`, id); err != nil {
			return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "deleting properties for edge %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM relationships WHERE id = ?`, id); err != nil {
			return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "deleting edge %s: %w", id, err)
		}
		return nil
	})
}

func edgeExists(ctx context.Context, q dbtx, id string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM relationships WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return lkerr.Errorf(lkerr.CodeGraphEdgeNotFound, "edge %s: %w", id, store.ErrEdgeNotFound)
	}
	if err != nil {
		return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "checking edge %s: %w", id, err)
	}
	return nil
}

// endpointsExist validates that each non-nil endpoint resolves to a live
// node, raising the node-not-found kind for the missing one.
func endpointsExist(ctx context.Context, q dbtx, sourceID, targetID *string) error {
	if sourceID != nil {
		if err := nodeExists(ctx, q, *sourceID); err != nil {
			return err
		}
	}
	if targetID != nil {
		if err := nodeExists(ctx, q, *targetID); err != nil {
			return err
		}
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEdge(s rowScanner) (*store.Edge, error) {
	var e store.Edge
	var source, target sql.NullString
	var createdAt string
	if err := s.Scan(&e.ID, &source, &target, &e.Type, &createdAt); err != nil {
		return nil, err
	}
	if source.Valid {
		e.SourceID = &source.String
	}
	if target.Valid {
		e.TargetID = &target.String
	}
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

func scanEdgeRow(row *sql.Row) (*store.Edge, error) {
	return scanEdge(row)
}

// nullable maps a nil endpoint to SQL NULL.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
