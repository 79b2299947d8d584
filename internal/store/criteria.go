// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package store

import "time"

// FilterOp is a property filter operator. The set is fixed; translators
// skip operators they do not recognize rather than failing the query.
type FilterOp string

const (
	FilterOpEquals         FilterOp = "eq"
	FilterOpNotEquals      FilterOp = "neq"
	FilterOpContains       FilterOp = "contains"
	FilterOpStartsWith     FilterOp = "starts_with"
	FilterOpEndsWith       FilterOp = "ends_with"
	FilterOpGreaterThan    FilterOp = "gt"
	FilterOpGreaterOrEqual FilterOp = "gte"
	FilterOpLessThan       FilterOp = "lt"
	FilterOpLessOrEqual    FilterOp = "lte"
	FilterOpIn             FilterOp = "in"
	FilterOpNotIn          FilterOp = "not_in"
	FilterOpExists         FilterOp = "exists"
	FilterOpNotExists      FilterOp = "not_exists"
)

// PropertyFilter constrains one property key. Value carries the operand
// for single-value operators; Values carries the list for in/not_in.
// Exists/not_exists ignore both.
type PropertyFilter struct {
	Key    string   `json:"key"`
	Op     FilterOp `json:"op"`
	Value  any      `json:"value,omitempty"`
	Values []any    `json:"values,omitempty"`
}

// SortDirection orders search results.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sort names an entity column and direction. Fields outside the
// translator's whitelist fall back to the default ordering.
type Sort struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// NodeCriteria is the structured, serializable search input for nodes.
// Zero-valued fields contribute no conditions.
type NodeCriteria struct {
	IDs           []string         `json:"ids,omitempty"`
	Types         []string         `json:"types,omitempty"`
	Labels        []string         `json:"labels,omitempty"`
	LabelContains string           `json:"label_contains,omitempty"`
	Properties    []PropertyFilter `json:"properties,omitempty"`
	CreatedAfter  time.Time        `json:"created_after,omitempty"`
	CreatedBefore time.Time        `json:"created_before,omitempty"`
	UpdatedAfter  time.Time        `json:"updated_after,omitempty"`
	UpdatedBefore time.Time        `json:"updated_before,omitempty"`
	Sort          *Sort            `json:"sort,omitempty"`
	Limit         int              `json:"limit,omitempty"`
	Offset        int              `json:"offset,omitempty"`
}

// EndpointCriteria constrains one endpoint of an edge search. It is
// translated as a join against the nodes table, each endpoint
// contributing its own label/type conditions.
type EndpointCriteria struct {
	IDs           []string `json:"ids,omitempty"`
	Types         []string `json:"types,omitempty"`
	Labels        []string `json:"labels,omitempty"`
	LabelContains string   `json:"label_contains,omitempty"`
}

// EdgeCriteria is the structured, serializable search input for edges.
type EdgeCriteria struct {
	IDs           []string          `json:"ids,omitempty"`
	Types         []string          `json:"types,omitempty"`
	TypeContains  string            `json:"type_contains,omitempty"`
	SourceIDs     []string          `json:"source_ids,omitempty"`
	TargetIDs     []string          `json:"target_ids,omitempty"`
	Source        *EndpointCriteria `json:"source,omitempty"`
	Target        *EndpointCriteria `json:"target,omitempty"`
	Properties    []PropertyFilter  `json:"properties,omitempty"`
	CreatedAfter  time.Time         `json:"created_after,omitempty"`
	CreatedBefore time.Time         `json:"created_before,omitempty"`
	Sort          *Sort             `json:"sort,omitempty"`
	Limit         int               `json:"limit,omitempty"`
	Offset        int               `json:"offset,omitempty"`
}
