// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package session owns the graph store handle lifecycle. Multiple
// consumers (the HTTP server, CLI commands) share one handle through
// reference counting: the store opens on the first Acquire and closes
// on the last Release, never implicitly in between.
package session

import (
	"log/slog"
	"sync"

	"github.com/lorekeep/lorekeep/internal/store"
	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

// Manager hands out a shared store handle by reference count.
type Manager struct {
	cfg    *store.StorageConfig
	dbPath string
	logger *slog.Logger

	mu   sync.Mutex
	refs int
	gs   store.GraphStore
}

// NewManager prepares a manager; nothing is opened until Acquire.
func NewManager(cfg *store.StorageConfig, dbPath string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{cfg: cfg, dbPath: dbPath, logger: logger}
}

// Acquire returns the shared store, opening it on the first reference.
// Every successful Acquire must be paired with one Release.
func (m *Manager) Acquire() (store.GraphStore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.refs == 0 {
		gs, err := store.NewGraphStore(m.cfg, m.dbPath)
		if err != nil {
			return nil, lkerr.Errorf(lkerr.CodeSessionOpenFailure, "opening graph store at %s: %w", m.dbPath, err)
		}
		m.gs = gs
		m.logger.Debug("graph store opened", "path", m.dbPath)
	}
	m.refs++
	return m.gs, nil
}

// Release drops one reference and closes the store when none remain.
func (m *Manager) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.refs == 0 {
		return lkerr.New(lkerr.CodeSessionClosed, "release without matching acquire")
	}
	m.refs--
	if m.refs > 0 {
		return nil
	}

	gs := m.gs
	m.gs = nil
	m.logger.Debug("graph store closed", "path", m.dbPath)
	if err := gs.Close(); err != nil {
		return lkerr.Wrapf(err, lkerr.CodeSessionClosed, "closing graph store at %s", m.dbPath)
	}
	return nil
}

// Refs reports the current reference count, for status surfaces.
func (m *Manager) Refs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refs
}
