// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/lorekeep/lorekeep/internal/store"
	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

// nodeSortColumns whitelists sortable node fields. Fields outside the
// whitelist fall back to the default enumeration order.
var nodeSortColumns = map[string]string{
	"id":         "n.id",
	"type":       "n.type",
	"label":      "n.label",
	"created_at": "n.created_at",
	"updated_at": "n.updated_at",
}

var edgeSortColumns = map[string]string{
	"id":         "r.id",
	"type":       "r.type",
	"created_at": "r.created_at",
	"source_id":  "r.source_id",
	"target_id":  "r.target_id",
}

// SearchNodes translates the criteria into one filtered, sorted,
// paginated query plus a parallel count query over the same conditions.
// Values are always bound, never interpolated.
func (g *Graph) SearchNodes(ctx context.Context, criteria store.NodeCriteria) (*store.NodeSearchResult, error) {
	if err := g.checkOpen(); err != nil {
		return nil, err
	}

	conds, args := g.nodeConditions(ctx, criteria)
	where := whereClause(conds)

	var total int
	if err := g.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM nodes n`+where, args...,
	).Scan(&total); err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "counting node matches: %w", err)
	}

	var qb strings.Builder
	qb.WriteString(`SELECT n.id, n.type, n.label, n.created_at, n.updated_at FROM nodes n`)
	qb.WriteString(where)
	qb.WriteString(orderClause(criteria.Sort, nodeSortColumns, "n.created_at ASC, n.id ASC"))
	pageArgs := appendPaging(&qb, criteria.Limit, criteria.Offset)

	rows, err := g.db.QueryContext(ctx, qb.String(), append(args, pageArgs...)...)
	if err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "searching nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []*store.Node{}
	for rows.Next() {
		var n store.Node
		var createdAt, updatedAt string
		if err := rows.Scan(&n.ID, &n.Type, &n.Label, &createdAt, &updatedAt); err != nil {
			return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "scanning node match: %w", err)
		}
		n.CreatedAt = parseTime(createdAt)
		n.UpdatedAt = parseTime(updatedAt)
		results = append(results, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "iterating node matches: %w", err)
	}

	for _, n := range results {
		props, err := loadProperties(ctx, g.db, "node_properties", "node_id", n.ID)
		if err != nil {
			return nil, err
		}
		n.Properties = props
	}

	return &store.NodeSearchResult{Results: results, TotalCount: total}, nil
}

// SearchEdges mirrors SearchNodes; nested endpoint criteria are
// translated as joins against the nodes table, each endpoint
// contributing its own conditions.
func (g *Graph) SearchEdges(ctx context.Context, criteria store.EdgeCriteria) (*store.EdgeSearchResult, error) {
	if err := g.checkOpen(); err != nil {
		return nil, err
	}

	from, conds, args := g.edgeQueryParts(ctx, criteria)
	where := whereClause(conds)

	var total int
	if err := g.db.QueryRowContext(ctx,
		`SELECT COUNT(*)`+from+where, args...,
	).Scan(&total); err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "counting edge matches: %w", err)
	}

	var qb strings.Builder
	qb.WriteString(`SELECT r.id, r.source_id, r.target_id, r.type, r.created_at`)
	qb.WriteString(from)
	qb.WriteString(where)
	qb.WriteString(orderClause(criteria.Sort, edgeSortColumns, "r.created_at ASC, r.id ASC"))
	pageArgs := appendPaging(&qb, criteria.Limit, criteria.Offset)

	rows, err := g.db.QueryContext(ctx, qb.String(), append(args, pageArgs...)...)
	if err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "searching edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []*store.Edge{}
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "scanning edge match: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "iterating edge matches: %w", err)
	}

	for _, e := range results {
		props, err := loadProperties(ctx, g.db, "relationship_properties", "relationship_id", e.ID)
		if err != nil {
			return nil, err
		}
		e.Properties = props
	}

	return &store.EdgeSearchResult{Results: results, TotalCount: total}, nil
}

// FullTextSearch matches the query substring against node labels and,
// optionally, property values.
func (g *Graph) FullTextSearch(ctx context.Context, query string, opts store.FullTextOptions) (*store.NodeSearchResult, error) {
	if err := g.checkOpen(); err != nil {
		return nil, err
	}

	pattern := "%" + query + "%"
	match := []string{"n.label LIKE ?"}
	args := []any{pattern}
	if opts.IncludeProperties {
		match = append(match, `EXISTS (SELECT 1 FROM node_properties p WHERE p.node_id = n.id AND p.value LIKE ?)`)
		args = append(args, pattern)
	}

	conds := []string{"(" + strings.Join(match, " OR ") + ")"}
	if len(opts.Types) > 0 {
		conds = append(conds, "n.type IN ("+placeholders(len(opts.Types))+")")
		for _, t := range opts.Types {
			args = append(args, t)
		}
	}
	where := whereClause(conds)

	var total int
	if err := g.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM nodes n`+where, args...,
	).Scan(&total); err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "counting text matches: %w", err)
	}

	var qb strings.Builder
	qb.WriteString(`SELECT n.id, n.type, n.label, n.created_at, n.updated_at FROM nodes n`)
	qb.WriteString(where)
	qb.WriteString(` ORDER BY n.label ASC, n.id ASC`)
	pageArgs := appendPaging(&qb, opts.Limit, opts.Offset)

	rows, err := g.db.QueryContext(ctx, qb.String(), append(args, pageArgs...)...)
	if err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "searching text: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []*store.Node{}
	for rows.Next() {
		var n store.Node
		var createdAt, updatedAt string
		if err := rows.Scan(&n.ID, &n.Type, &n.Label, &createdAt, &updatedAt); err != nil {
			return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "scanning text match: %w", err)
		}
		n.CreatedAt = parseTime(createdAt)
		n.UpdatedAt = parseTime(updatedAt)
		results = append(results, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, lkerr.Errorf(lkerr.CodeGraphDatabaseFailure, "iterating text matches: %w", err)
	}

	for _, n := range results {
		props, err := loadProperties(ctx, g.db, "node_properties", "node_id", n.ID)
		if err != nil {
			return nil, err
		}
		n.Properties = props
	}

	return &store.NodeSearchResult{Results: results, TotalCount: total}, nil
}

// nodeConditions compiles node criteria into WHERE conditions against
// alias n.
func (g *Graph) nodeConditions(ctx context.Context, c store.NodeCriteria) ([]string, []any) {
	var conds []string
	var args []any

	if len(c.IDs) > 0 {
		conds = append(conds, "n.id IN ("+placeholders(len(c.IDs))+")")
		args = appendStrings(args, c.IDs)
	}
	if len(c.Types) > 0 {
		conds = append(conds, "n.type IN ("+placeholders(len(c.Types))+")")
		args = appendStrings(args, c.Types)
	}
	if len(c.Labels) > 0 {
		conds = append(conds, "n.label IN ("+placeholders(len(c.Labels))+")")
		args = appendStrings(args, c.Labels)
	}
	if c.LabelContains != "" {
		conds = append(conds, "n.label LIKE ?")
		args = append(args, "%"+c.LabelContains+"%")
	}
	if !c.CreatedAfter.IsZero() {
		conds = append(conds, "n.created_at >= ?")
		args = append(args, formatTime(c.CreatedAfter))
	}
	if !c.CreatedBefore.IsZero() {
		conds = append(conds, "n.created_at < ?")
		args = append(args, formatTime(c.CreatedBefore))
	}
	if !c.UpdatedAfter.IsZero() {
		conds = append(conds, "n.updated_at >= ?")
		args = append(args, formatTime(c.UpdatedAfter))
	}
	if !c.UpdatedBefore.IsZero() {
		conds = append(conds, "n.updated_at < ?")
		args = append(args, formatTime(c.UpdatedBefore))
	}

	for _, f := range c.Properties {
		cond, condArgs, ok := g.propertyCondition(ctx, f, "node_properties", "node_id", "n")
		if !ok {
			continue
		}
		conds = append(conds, cond)
		args = append(args, condArgs...)
	}
	return conds, args
}

// edgeQueryParts compiles edge criteria into the FROM clause (including
// endpoint joins), WHERE conditions, and bound args for alias r.
func (g *Graph) edgeQueryParts(ctx context.Context, c store.EdgeCriteria) (string, []string, []any) {
	from := ` FROM relationships r`
	var conds []string
	var args []any

	if c.Source != nil {
		from += ` JOIN nodes sn ON sn.id = r.source_id`
		conds, args = endpointConditions(conds, args, "sn", c.Source)
	}
	if c.Target != nil {
		from += ` JOIN nodes tn ON tn.id = r.target_id`
		conds, args = endpointConditions(conds, args, "tn", c.Target)
	}

	if len(c.IDs) > 0 {
		conds = append(conds, "r.id IN ("+placeholders(len(c.IDs))+")")
		args = appendStrings(args, c.IDs)
	}
	if len(c.Types) > 0 {
		conds = append(conds, "r.type IN ("+placeholders(len(c.Types))+")")
		args = appendStrings(args, c.Types)
	}
	if c.TypeContains != "" {
		conds = append(conds, "r.type LIKE ?")
		args = append(args, "%"+c.TypeContains+"%")
	}
	if len(c.SourceIDs) > 0 {
		conds = append(conds, "r.source_id IN ("+placeholders(len(c.SourceIDs))+")")
		args = appendStrings(args, c.SourceIDs)
	}
	if len(c.TargetIDs) > 0 {
		conds = append(conds, "r.target_id IN ("+placeholders(len(c.TargetIDs))+")")
		args = appendStrings(args, c.TargetIDs)
	}
	if !c.CreatedAfter.IsZero() {
		conds = append(conds, "r.created_at >= ?")
		args = append(args, formatTime(c.CreatedAfter))
	}
	if !c.CreatedBefore.IsZero() {
		conds = append(conds, "r.created_at < ?")
		args = append(args, formatTime(c.CreatedBefore))
	}

	for _, f := range c.Properties {
		cond, condArgs, ok := g.propertyCondition(ctx, f, "relationship_properties", "relationship_id", "r")
		if !ok {
			continue
		}
		conds = append(conds, cond)
		args = append(args, condArgs...)
	}
	return from, conds, args
}

func endpointConditions(conds []string, args []any, alias string, c *store.EndpointCriteria) ([]string, []any) {
	if len(c.IDs) > 0 {
		conds = append(conds, alias+".id IN ("+placeholders(len(c.IDs))+")")
		args = appendStrings(args, c.IDs)
	}
	if len(c.Types) > 0 {
		conds = append(conds, alias+".type IN ("+placeholders(len(c.Types))+")")
		args = appendStrings(args, c.Types)
	}
	if len(c.Labels) > 0 {
		conds = append(conds, alias+".label IN ("+placeholders(len(c.Labels))+")")
		args = appendStrings(args, c.Labels)
	}
	if c.LabelContains != "" {
		conds = append(conds, alias+".label LIKE ?")
		args = append(args, "%"+c.LabelContains+"%")
	}
	return conds, args
}

// propertyCondition compiles one property filter into a correlated
// EXISTS (or NOT EXISTS) subquery scoped to the owner and key.
// Value-bearing operators constrain the decoded JSON value; numeric
// comparisons cast before comparing. Unsupported operators are skipped,
// not rejected, but logged so caller typos stay observable.
func (g *Graph) propertyCondition(ctx context.Context, f store.PropertyFilter, table, ownerCol, alias string) (string, []any, bool) {
	sub := `SELECT 1 FROM ` + table + ` p WHERE p.` + ownerCol + ` = ` + alias + `.id AND p.key = ?`
	args := []any{f.Key}

	switch f.Op {
	case store.FilterOpEquals:
		sub += ` AND json_extract(p.value, '$') = ?`
		args = append(args, f.Value)
	case store.FilterOpNotEquals:
		sub += ` AND json_extract(p.value, '$') <> ?`
		args = append(args, f.Value)
	case store.FilterOpContains:
		sub += ` AND json_extract(p.value, '$') LIKE ?`
		args = append(args, "%"+fmt.Sprintf("%v", f.Value)+"%")
	case store.FilterOpStartsWith:
		sub += ` AND json_extract(p.value, '$') LIKE ?`
		args = append(args, fmt.Sprintf("%v", f.Value)+"%")
	case store.FilterOpEndsWith:
		sub += ` AND json_extract(p.value, '$') LIKE ?`
		args = append(args, "%"+fmt.Sprintf("%v", f.Value))
	case store.FilterOpGreaterThan:
		sub += ` AND CAST(json_extract(p.value, '$') AS REAL) > ?`
		args = append(args, f.Value)
	case store.FilterOpGreaterOrEqual:
		sub += ` AND CAST(json_extract(p.value, '$') AS REAL) >= ?`
		args = append(args, f.Value)
	case store.FilterOpLessThan:
		sub += ` AND CAST(json_extract(p.value, '$') AS REAL) < ?`
		args = append(args, f.Value)
	case store.FilterOpLessOrEqual:
		sub += ` AND CAST(json_extract(p.value, '$') AS REAL) <= ?`
		args = append(args, f.Value)
	case store.FilterOpIn:
		if len(f.Values) == 0 {
			return "", nil, false
		}
		sub += ` AND json_extract(p.value, '$') IN (` + placeholders(len(f.Values)) + `)`
		args = append(args, f.Values...)
	case store.FilterOpNotIn:
		if len(f.Values) == 0 {
			return "", nil, false
		}
		sub += ` AND json_extract(p.value, '$') NOT IN (` + placeholders(len(f.Values)) + `)`
		args = append(args, f.Values...)
	case store.FilterOpExists:
		// Key presence alone.
	case store.FilterOpNotExists:
		return `NOT EXISTS (` + sub + `)`, args, true
	default:
		g.logger.WarnContext(ctx, "skipping unsupported property filter operator",
			"key", f.Key, "op", string(f.Op))
		return "", nil, false
	}

	return `EXISTS (` + sub + `)`, args, true
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return ` WHERE ` + strings.Join(conds, " AND ")
}

func orderClause(sort *store.Sort, columns map[string]string, fallback string) string {
	if sort != nil {
		if col, ok := columns[sort.Field]; ok {
			dir := "ASC"
			if sort.Direction == store.SortDesc {
				dir = "DESC"
			}
			return ` ORDER BY ` + col + ` ` + dir
		}
	}
	return ` ORDER BY ` + fallback
}

// appendPaging writes LIMIT/OFFSET placeholders and returns their args.
// Pagination always happens in SQL, never by slicing results.
func appendPaging(qb *strings.Builder, limit, offset int) []any {
	switch {
	case limit > 0 && offset > 0:
		qb.WriteString(` LIMIT ? OFFSET ?`)
		return []any{limit, offset}
	case limit > 0:
		qb.WriteString(` LIMIT ?`)
		return []any{limit}
	case offset > 0:
		// SQLite requires a LIMIT before OFFSET; -1 means unbounded.
		qb.WriteString(` LIMIT -1 OFFSET ?`)
		return []any{offset}
	default:
		return nil
	}
}

func placeholders(n int) string {
	p := strings.Repeat("?,", n)
	return p[:len(p)-1]
}

func appendStrings(args []any, vals []string) []any {
	for _, v := range vals {
		args = append(args, v)
	}
	return args
}
