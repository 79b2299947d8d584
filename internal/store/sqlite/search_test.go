// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorekeep/lorekeep/internal/store"
	"github.com/lorekeep/lorekeep/internal/store/sqlite"
)

// searchFixture seeds a small note graph: three people, two projects,
// and typed edges between them.
func searchFixture(t *testing.T, name string) *sqlite.Graph {
	t.Helper()
	g := newTestGraph(t, name)

	addNode(t, g, "ana", "person", "Ana Torres", map[string]any{
		"team": "platform", "level": float64(5), "remote": true,
	})
	addNode(t, g, "bob", "person", "Bob Chen", map[string]any{
		"team": "product", "level": float64(3),
	})
	addNode(t, g, "cara", "person", "Cara Okafor", map[string]any{
		"team": "platform", "level": float64(4), "remote": false,
	})
	addNode(t, g, "atlas", "project", "Atlas migration", map[string]any{
		"status": "active",
	})
	addNode(t, g, "beacon", "project", "Beacon rewrite", map[string]any{
		"status": "paused",
	})

	addEdge(t, g, "r1", "ana", "atlas", "works_on", map[string]any{"hours": float64(20)})
	addEdge(t, g, "r2", "bob", "atlas", "works_on", map[string]any{"hours": float64(10)})
	addEdge(t, g, "r3", "cara", "beacon", "works_on", map[string]any{"hours": float64(30)})
	addEdge(t, g, "r4", "ana", "bob", "mentors", nil)
	return g
}

func resultIDs(nodes []*store.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func edgeIDs(edges []*store.Edge) []string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ID
	}
	return ids
}

func TestGraph_SearchNodes_ByType(t *testing.T) {
	g := searchFixture(t, "search-type")

	res, err := g.SearchNodes(context.Background(), store.NodeCriteria{Types: []string{"project"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)
	assert.ElementsMatch(t, []string{"atlas", "beacon"}, resultIDs(res.Results))
}

func TestGraph_SearchNodes_LabelContains(t *testing.T) {
	g := searchFixture(t, "search-label")

	res, err := g.SearchNodes(context.Background(), store.NodeCriteria{LabelContains: "migration"})
	require.NoError(t, err)
	assert.Equal(t, []string{"atlas"}, resultIDs(res.Results))
}

func TestGraph_SearchNodes_PropertyFilters(t *testing.T) {
	ctx := context.Background()
	g := searchFixture(t, "search-props")

	tests := []struct {
		name   string
		filter store.PropertyFilter
		want   []string
	}{
		{
			name:   "string equals",
			filter: store.PropertyFilter{Key: "team", Op: store.FilterOpEquals, Value: "platform"},
			want:   []string{"ana", "cara"},
		},
		{
			name:   "bool equals",
			filter: store.PropertyFilter{Key: "remote", Op: store.FilterOpEquals, Value: true},
			want:   []string{"ana"},
		},
		{
			name:   "numeric greater than",
			filter: store.PropertyFilter{Key: "level", Op: store.FilterOpGreaterThan, Value: float64(3)},
			want:   []string{"ana", "cara"},
		},
		{
			name:   "numeric range",
			filter: store.PropertyFilter{Key: "level", Op: store.FilterOpLessOrEqual, Value: float64(4)},
			want:   []string{"bob", "cara"},
		},
		{
			name:   "contains",
			filter: store.PropertyFilter{Key: "team", Op: store.FilterOpContains, Value: "form"},
			want:   []string{"ana", "cara"},
		},
		{
			name:   "in list",
			filter: store.PropertyFilter{Key: "status", Op: store.FilterOpIn, Values: []any{"active", "archived"}},
			want:   []string{"atlas"},
		},
		{
			name:   "exists",
			filter: store.PropertyFilter{Key: "remote", Op: store.FilterOpExists},
			want:   []string{"ana", "cara"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := g.SearchNodes(ctx, store.NodeCriteria{
				Properties: []store.PropertyFilter{tt.filter},
			})
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, resultIDs(res.Results))
		})
	}
}

func TestGraph_SearchNodes_NotExists(t *testing.T) {
	g := searchFixture(t, "search-notexists")

	res, err := g.SearchNodes(context.Background(), store.NodeCriteria{
		Types:      []string{"person"},
		Properties: []store.PropertyFilter{{Key: "remote", Op: store.FilterOpNotExists}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, resultIDs(res.Results))
}

func TestGraph_SearchNodes_UnknownOperatorIsSkipped(t *testing.T) {
	g := searchFixture(t, "search-badop")

	// An unrecognized operator contributes no condition; the rest of the
	// criteria still apply.
	res, err := g.SearchNodes(context.Background(), store.NodeCriteria{
		Types:      []string{"person"},
		Properties: []store.PropertyFilter{{Key: "team", Op: store.FilterOp("regex"), Value: ".*"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalCount)
}

func TestGraph_SearchNodes_SortAndPaging(t *testing.T) {
	ctx := context.Background()
	g := searchFixture(t, "search-paging")

	res, err := g.SearchNodes(ctx, store.NodeCriteria{
		Types: []string{"person"},
		Sort:  &store.Sort{Field: "label", Direction: store.SortDesc},
		Limit: 2,
	})
	require.NoError(t, err)
	// TotalCount ignores pagination.
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, []string{"cara", "bob"}, resultIDs(res.Results))

	res, err = g.SearchNodes(ctx, store.NodeCriteria{
		Types:  []string{"person"},
		Sort:   &store.Sort{Field: "label", Direction: store.SortDesc},
		Limit:  2,
		Offset: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, []string{"ana"}, resultIDs(res.Results))
}

func TestGraph_SearchNodes_UnknownSortFieldFallsBack(t *testing.T) {
	g := searchFixture(t, "search-badsort")

	res, err := g.SearchNodes(context.Background(), store.NodeCriteria{
		Types: []string{"person"},
		Sort:  &store.Sort{Field: "label; DROP TABLE nodes", Direction: store.SortAsc},
	})
	require.NoError(t, err)
	// Default enumeration order, and the table is still there.
	assert.Equal(t, []string{"ana", "bob", "cara"}, resultIDs(res.Results))
}

func TestGraph_SearchNodes_ResultsIncludeProperties(t *testing.T) {
	g := searchFixture(t, "search-node-props-loaded")

	res, err := g.SearchNodes(context.Background(), store.NodeCriteria{IDs: []string{"ana"}})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, map[string]any{
		"team": "platform", "level": float64(5), "remote": true,
	}, res.Results[0].Properties)
}

func TestGraph_SearchEdges_ByType(t *testing.T) {
	g := searchFixture(t, "search-edge-type")

	res, err := g.SearchEdges(context.Background(), store.EdgeCriteria{Types: []string{"works_on"}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalCount)
	assert.ElementsMatch(t, []string{"r1", "r2", "r3"}, edgeIDs(res.Results))
}

func TestGraph_SearchEdges_BySourceID(t *testing.T) {
	g := searchFixture(t, "search-edge-source")

	res, err := g.SearchEdges(context.Background(), store.EdgeCriteria{SourceIDs: []string{"ana"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"r1", "r4"}, edgeIDs(res.Results))
}

func TestGraph_SearchEdges_EndpointCriteria(t *testing.T) {
	g := searchFixture(t, "search-edge-endpoint")

	// Edges from platform people into projects.
	res, err := g.SearchEdges(context.Background(), store.EdgeCriteria{
		Source: &store.EndpointCriteria{Types: []string{"person"}, LabelContains: "a"},
		Target: &store.EndpointCriteria{Types: []string{"project"}},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"r1", "r3"}, edgeIDs(res.Results))
}

func TestGraph_SearchEdges_PropertyFilter(t *testing.T) {
	g := searchFixture(t, "search-edge-props")

	res, err := g.SearchEdges(context.Background(), store.EdgeCriteria{
		Properties: []store.PropertyFilter{
			{Key: "hours", Op: store.FilterOpGreaterOrEqual, Value: float64(20)},
		},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"r1", "r3"}, edgeIDs(res.Results))
}

func TestGraph_FullTextSearch(t *testing.T) {
	ctx := context.Background()
	g := searchFixture(t, "search-fulltext")

	res, err := g.FullTextSearch(ctx, "rewrite", store.FullTextOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"beacon"}, resultIDs(res.Results))

	// Property values are only searched on request.
	res, err = g.FullTextSearch(ctx, "paused", store.FullTextOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Results)

	res, err = g.FullTextSearch(ctx, "paused", store.FullTextOptions{IncludeProperties: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"beacon"}, resultIDs(res.Results))
}

func TestGraph_FullTextSearch_TypeScope(t *testing.T) {
	g := searchFixture(t, "search-fulltext-types")

	// "a" matches labels in both types; the scope narrows it.
	res, err := g.FullTextSearch(context.Background(), "a", store.FullTextOptions{
		Types: []string{"project"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"atlas", "beacon"}, resultIDs(res.Results))
}
