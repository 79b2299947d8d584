// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lorekeep/lorekeep/internal/store"
	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

// Compile-time interface check.
var _ store.GraphStore = (*Graph)(nil)

// Graph implements store.GraphStore backed by a single SQLite database.
// All multi-statement writes are serialized through one FIFO transaction
// queue; single-statement reads go straight to the pool (WAL readers do
// not block the writer lane).
type Graph struct {
	db     *sql.DB
	queue  *txQueue
	logger *slog.Logger
	closed atomic.Bool
}

// New opens (or creates) a SQLite database at dbPath and initialises the
// nodes, node_properties, relationships, and relationship_properties
// tables.
func New(dbPath string) (*Graph, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphConnectionFailure, "opening graph db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, lkerr.Errorf(lkerr.CodeGraphConnectionFailure, "pinging graph db: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, lkerr.Errorf(lkerr.CodeGraphConnectionFailure, "migrating graph db: %w", err)
	}

	logger := slog.Default()
	g := &Graph{
		db:     db,
		logger: logger,
	}
	g.queue = newTxQueue(db, logger, g.flushWAL)
	return g, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS nodes (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL DEFAULT '',
	label      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type);

CREATE TABLE IF NOT EXISTS node_properties (
	node_id TEXT NOT NULL,
	key     TEXT NOT NULL,
	value   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (node_id, key),
	FOREIGN KEY (node_id) REFERENCES nodes(id)
);

CREATE TABLE IF NOT EXISTS relationships (
	id         TEXT PRIMARY KEY,
	source_id  TEXT REFERENCES nodes(id),
	target_id  TEXT REFERENCES nodes(id),
	type       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_relationships_type   ON relationships(type);
CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_id);
CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_id);

CREATE TABLE IF NOT EXISTS relationship_properties (
	relationship_id TEXT NOT NULL,
	key             TEXT NOT NULL,
	value           TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (relationship_id, key),
	FOREIGN KEY (relationship_id) REFERENCES relationships(id)
);
`
	_, err := db.Exec(ddl)
	return err
}

// OnFlushError registers an observer for post-commit flush failures.
// Flush failures never fail the already-committed transaction, but they
// can leave in-memory and on-disk state diverging, so they are surfaced
// here in addition to being logged.
func (g *Graph) OnFlushError(fn func(error)) {
	g.queue.onFlushError(fn)
}

// flushWAL is the per-commit persistence flush: a passive WAL
// checkpoint moving committed pages into the main database file.
func (g *Graph) flushWAL() error {
	_, err := g.db.Exec(`PRAGMA wal_checkpoint(PASSIVE)`)
	return err
}

// checkOpen fails fast when the handle has been closed. Lifecycle is
// owned by the session layer above; the store never reopens itself.
func (g *Graph) checkOpen() error {
	if g.closed.Load() {
		return lkerr.Errorf(lkerr.CodeGraphNotInitialized, "graph store: %w", store.ErrNotInitialized)
	}
	return nil
}

// Close drains the transaction queue and closes the database. Further
// operations fail with a not-initialized error.
func (g *Graph) Close() error {
	if g.closed.Swap(true) {
		return nil
	}
	g.queue.close()
	if err := g.db.Close(); err != nil {
		return lkerr.Errorf(lkerr.CodeGraphConnectionFailure, "closing graph db: %w", err)
	}
	return nil
}

// Clear empties all four tables in child-before-parent order inside one
// queued transaction.
func (g *Graph) Clear(ctx context.Context) error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	return g.queue.do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return clearAll(ctx, tx)
	})
}

func clearAll(ctx context.Context, tx *sql.Tx) error {
	for _, q := range []string{
		`DELETE FROM relationship_properties`,
		`DELETE FROM relationships`,
		`DELETE FROM node_properties`,
		`DELETE FROM nodes`,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "clearing graph: %w", err)
		}
	}
	return nil
}

// Stats returns node and edge counts.
func (g *Graph) Stats(ctx context.Context) (*store.GraphStats, error) {
	if err := g.checkOpen(); err != nil {
		return nil, err
	}

	var stats store.GraphStats
	if err := g.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&stats.NodeCount); err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "counting nodes: %w", err)
	}
	if err := g.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM relationships`).Scan(&stats.EdgeCount); err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "counting edges: %w", err)
	}
	return &stats, nil
}

// dbtx abstracts *sql.DB and *sql.Tx so property helpers work on both
// sides of the queue.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// encodeProperty serialises a property value to its stored JSON form.
func encodeProperty(key string, value any) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", lkerr.Errorf(lkerr.CodeGraphInputInvalid, "marshalling property %s: %w", key, err)
	}
	return string(b), nil
}

// decodeProperty decodes a stored value as JSON, falling back to the raw
// string when the stored text predates JSON serialization or is corrupt.
func decodeProperty(raw string) any {
	var val any
	if err := json.Unmarshal([]byte(raw), &val); err != nil {
		return raw
	}
	return val
}

// loadProperties reads the property map for one owner row from the given
// EAV table.
func loadProperties(ctx context.Context, q dbtx, table, ownerCol, ownerID string) (map[string]any, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT key, value FROM `+table+` WHERE `+ownerCol+` = ? ORDER BY key`, ownerID)
	if err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "loading properties for %s: %w", ownerID, err)
	}
	defer func() { _ = rows.Close() }()

	props := make(map[string]any)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "scanning property row: %w", err)
		}
		props[key] = decodeProperty(value)
	}
	if err := rows.Err(); err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "iterating property rows: %w", err)
	}
	return props, nil
}

// insertProperties writes one row per property key for an owner.
func insertProperties(ctx context.Context, q dbtx, table, ownerCol, ownerID string, props map[string]any) error {
	for key, value := range props {
		encoded, err := encodeProperty(key, value)
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO `+table+` (`+ownerCol+`, key, value) VALUES (?, ?, ?)`,
			ownerID, key, encoded,
		); err != nil {
			return lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "inserting property %s for %s: %w", key, ownerID, err)
		}
	}
	return nil
}

// formatTime serialises a time.Time to RFC3339 with nanosecond precision.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime deserialises a time string stored in the database.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
