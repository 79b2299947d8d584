// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package store

import (
	"sync"

	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

// defaultDatabase is the graph database file name within the data directory.
const defaultDatabase = "graph.db"

// GraphStoreFactory creates a graph store given a database file path.
type GraphStoreFactory func(dbPath string) (GraphStore, error)

var (
	factories   = map[string]GraphStoreFactory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a factory function for a named storage backend.
// Backend packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, factory GraphStoreFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// resolveBackend returns the effective backend name, defaulting to "sqlite".
func resolveBackend(cfg *StorageConfig) string {
	if cfg == nil || cfg.Backend == "" {
		return "sqlite"
	}
	return cfg.Backend
}

// DatabaseName returns the effective database file name for a config.
func DatabaseName(cfg *StorageConfig) string {
	if cfg == nil || cfg.Database == "" {
		return defaultDatabase
	}
	return cfg.Database
}

// NewGraphStore creates the graph store for the configured backend.
func NewGraphStore(cfg *StorageConfig, dbPath string) (GraphStore, error) {
	backend := resolveBackend(cfg)

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, lkerr.Errorf(lkerr.CodeStoreBackendUnsupported, "unsupported storage backend: %q", backend)
	}

	return factory(dbPath)
}
