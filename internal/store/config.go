// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package store

// StorageConfig controls which backend the store factory uses.
type StorageConfig struct {
	Backend  string // "sqlite" is the only supported backend for now.
	Database string // Database file name within the data directory; empty uses the default.
}
