// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

func TestNew_CarriesCodeAndFields(t *testing.T) {
	err := lkerr.New(lkerr.CodeGraphNodeNotFound, "node missing", lkerr.FieldNodeID("n-1"))
	require.Error(t, err)

	assert.Equal(t, lkerr.CodeGraphNodeNotFound, lkerr.CodeOf(err))
	assert.Equal(t, "n-1", lkerr.FieldsOf(err)["node_id"])
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.NoError(t, lkerr.Wrap(nil, lkerr.CodeGraphDatabaseFailure, "ignored"))
	assert.NoError(t, lkerr.Wrapf(nil, lkerr.CodeGraphDatabaseFailure, "ignored %d", 1))
	assert.NoError(t, lkerr.With(nil, lkerr.Field("k", "v")))
}

func TestWrapf_PreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := lkerr.Wrapf(cause, lkerr.CodeGraphDatabaseFailure, "inserting node")

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, lkerr.CodeGraphDatabaseFailure, lkerr.CodeOf(err))
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"node not found", lkerr.New(lkerr.CodeGraphNodeNotFound, "x"), lkerr.IsNotFound, true},
		{"edge not found", lkerr.New(lkerr.CodeGraphEdgeNotFound, "x"), lkerr.IsNotFound, true},
		{"database failure is not not-found", lkerr.New(lkerr.CodeGraphDatabaseFailure, "x"), lkerr.IsNotFound, false},
		{"import invalid", lkerr.New(lkerr.CodeGraphImportInvalid, "x"), lkerr.IsInvalidInput, true},
		{"config invalid value", lkerr.New(lkerr.CodeConfigValidateInvalidValue, "x"), lkerr.IsInvalidInput, true},
		{"transaction failure", lkerr.New(lkerr.CodeGraphTransactionFailure, "x"), lkerr.IsTransactionFailure, true},
		{"not initialized", lkerr.New(lkerr.CodeGraphNotInitialized, "x"), lkerr.IsNotInitialized, true},
		{"session closed counts as uninitialized", lkerr.New(lkerr.CodeSessionClosed, "x"), lkerr.IsNotInitialized, true},
		{"plain error has no code", stderrors.New("plain"), lkerr.IsNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, lkerr.HTTPStatus(lkerr.New(lkerr.CodeGraphNodeNotFound, "x")))
	assert.Equal(t, http.StatusBadRequest, lkerr.HTTPStatus(lkerr.New(lkerr.CodeGraphInputInvalid, "x")))
	assert.Equal(t, http.StatusServiceUnavailable, lkerr.HTTPStatus(lkerr.New(lkerr.CodeGraphNotInitialized, "x")))
	assert.Equal(t, http.StatusInternalServerError, lkerr.HTTPStatus(lkerr.New(lkerr.CodeGraphDatabaseFailure, "x")))
	assert.Equal(t, http.StatusInternalServerError, lkerr.HTTPStatus(stderrors.New("plain")))
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, lkerr.Code(""), lkerr.CodeOf(stderrors.New("plain")))
	assert.Equal(t, lkerr.Code(""), lkerr.CodeOf(nil))
}
