// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorekeep/lorekeep/internal/session"
	"github.com/lorekeep/lorekeep/internal/store"
	_ "github.com/lorekeep/lorekeep/internal/store/sqlite"
)

func newTestManager(t *testing.T) *session.Manager {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "session.db")
	return session.NewManager(&store.StorageConfig{Backend: "sqlite"}, dbPath, nil)
}

func TestManager_AcquireOpensOnce(t *testing.T) {
	m := newTestManager(t)

	gs1, err := m.Acquire()
	require.NoError(t, err)
	gs2, err := m.Acquire()
	require.NoError(t, err)

	// Both references see the same handle.
	assert.Same(t, gs1, gs2)
	assert.Equal(t, 2, m.Refs())

	require.NoError(t, m.Release())
	require.NoError(t, m.Release())
	assert.Equal(t, 0, m.Refs())
}

func TestManager_ClosesOnLastRelease(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	gs, err := m.Acquire()
	require.NoError(t, err)
	_, err = m.Acquire()
	require.NoError(t, err)

	// First release keeps the store alive for the other holder.
	require.NoError(t, m.Release())
	_, err = gs.GetNodes(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Release())
	_, err = gs.GetNodes(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotInitialized))
}

func TestManager_ReacquireAfterClose(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	gs, err := m.Acquire()
	require.NoError(t, err)
	_, err = gs.AddNode(ctx, &store.Node{ID: "a", Type: "note", Label: "A"})
	require.NoError(t, err)
	require.NoError(t, m.Release())

	// A new acquire opens a fresh handle over the same database.
	gs2, err := m.Acquire()
	require.NoError(t, err)
	defer func() { _ = m.Release() }()

	got, err := gs2.GetNode(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Label)
}

func TestManager_ReleaseWithoutAcquire(t *testing.T) {
	m := newTestManager(t)
	require.Error(t, m.Release())
}

func TestManager_UnsupportedBackend(t *testing.T) {
	m := session.NewManager(&store.StorageConfig{Backend: "postgres"},
		filepath.Join(t.TempDir(), "x.db"), nil)

	_, err := m.Acquire()
	require.Error(t, err)
	assert.Equal(t, 0, m.Refs())
}
