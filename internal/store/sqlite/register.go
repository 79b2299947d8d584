// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package sqlite

import "github.com/lorekeep/lorekeep/internal/store"

func init() {
	store.RegisterBackend("sqlite", func(dbPath string) (store.GraphStore, error) {
		return New(dbPath)
	})
}
