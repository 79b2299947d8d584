// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package store

import "errors"

// Sentinel errors for store operations.
// These errors can be checked using errors.Is() for classification;
// the wrapping layers additionally attach machine-readable codes.
var (
	// ErrNodeNotFound indicates the requested node does not exist.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound indicates the requested edge does not exist.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrNotInitialized indicates the store handle is closed or was
	// never opened. Operations fail fast rather than touching a dead
	// connection.
	ErrNotInitialized = errors.New("database not initialized")

	// ErrInvalidInput indicates the input parameters are invalid or malformed.
	ErrInvalidInput = errors.New("invalid input")
)
