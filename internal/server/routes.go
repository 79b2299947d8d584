// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lorekeep/lorekeep/internal/store"
	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

func (s *Server) registerRoutes() {
	// Node endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "create-node",
		Method:      http.MethodPost,
		Path:        "/api/v1/nodes",
		Summary:     "Create a node",
		Tags:        []string{"nodes"},
	}, s.handleCreateNode)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-nodes",
		Method:      http.MethodGet,
		Path:        "/api/v1/nodes",
		Summary:     "List all nodes",
		Tags:        []string{"nodes"},
	}, s.handleListNodes)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-node",
		Method:      http.MethodGet,
		Path:        "/api/v1/nodes/{id}",
		Summary:     "Get a node",
		Tags:        []string{"nodes"},
	}, s.handleGetNode)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-node",
		Method:      http.MethodPatch,
		Path:        "/api/v1/nodes/{id}",
		Summary:     "Update a node",
		Tags:        []string{"nodes"},
	}, s.handleUpdateNode)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-node",
		Method:      http.MethodDelete,
		Path:        "/api/v1/nodes/{id}",
		Summary:     "Delete a node",
		Tags:        []string{"nodes"},
	}, s.handleDeleteNode)

	huma.Register(s.api, huma.Operation{
		OperationID: "connected-nodes",
		Method:      http.MethodGet,
		Path:        "/api/v1/nodes/{id}/connected",
		Summary:     "List nodes connected within a hop distance",
		Tags:        []string{"traversal"},
	}, s.handleConnectedNodes)

	// Edge endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "create-edge",
		Method:      http.MethodPost,
		Path:        "/api/v1/edges",
		Summary:     "Create an edge",
		Tags:        []string{"edges"},
	}, s.handleCreateEdge)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-edges",
		Method:      http.MethodGet,
		Path:        "/api/v1/edges",
		Summary:     "List all edges",
		Tags:        []string{"edges"},
	}, s.handleListEdges)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-edge",
		Method:      http.MethodGet,
		Path:        "/api/v1/edges/{id}",
		Summary:     "Get an edge",
		Tags:        []string{"edges"},
	}, s.handleGetEdge)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-edge",
		Method:      http.MethodPatch,
		Path:        "/api/v1/edges/{id}",
		Summary:     "Update an edge",
		Tags:        []string{"edges"},
	}, s.handleUpdateEdge)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-edge",
		Method:      http.MethodDelete,
		Path:        "/api/v1/edges/{id}",
		Summary:     "Delete an edge",
		Tags:        []string{"edges"},
	}, s.handleDeleteEdge)

	// Search endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "search-nodes",
		Method:      http.MethodPost,
		Path:        "/api/v1/nodes/search",
		Summary:     "Search nodes by criteria",
		Tags:        []string{"search"},
	}, s.handleSearchNodes)

	huma.Register(s.api, huma.Operation{
		OperationID: "search-edges",
		Method:      http.MethodPost,
		Path:        "/api/v1/edges/search",
		Summary:     "Search edges by criteria",
		Tags:        []string{"search"},
	}, s.handleSearchEdges)

	huma.Register(s.api, huma.Operation{
		OperationID: "full-text-search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Full-text search over nodes",
		Tags:        []string{"search"},
	}, s.handleFullTextSearch)

	// Traversal
	huma.Register(s.api, huma.Operation{
		OperationID: "find-path",
		Method:      http.MethodGet,
		Path:        "/api/v1/path",
		Summary:     "Find a shortest directed path between two nodes",
		Tags:        []string{"traversal"},
	}, s.handleFindPath)

	// Snapshot endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "export-snapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshot",
		Summary:     "Export the graph as a snapshot",
		Tags:        []string{"snapshot"},
	}, s.handleExport)

	huma.Register(s.api, huma.Operation{
		OperationID: "import-snapshot",
		Method:      http.MethodPost,
		Path:        "/api/v1/snapshot",
		Summary:     "Import a snapshot",
		Tags:        []string{"snapshot"},
		// The handler parses RawBody itself; without this, huma
		// validates the JSON against the generated binary-string
		// schema and rejects every object body with a 422.
		SkipValidateBody: true,
	}, s.handleImport)

	huma.Register(s.api, huma.Operation{
		OperationID: "validate-snapshot",
		Method:      http.MethodPost,
		Path:        "/api/v1/snapshot/validate",
		Summary:     "Validate snapshot JSON without importing",
		Tags:        []string{"snapshot"},
		// Same as import-snapshot: the handler owns parsing of RawBody.
		SkipValidateBody: true,
	}, s.handleValidate)

	// System
	huma.Register(s.api, huma.Operation{
		OperationID: "graph-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Graph statistics",
		Tags:        []string{"system"},
	}, s.handleStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "clear-graph",
		Method:      http.MethodDelete,
		Path:        "/api/v1/graph",
		Summary:     "Delete every node and edge",
		Tags:        []string{"system"},
	}, s.handleClear)
}

// --- Request/Response types for huma ---

type createNodeInput struct {
	Body struct {
		ID         string         `json:"id,omitempty" doc:"Optional client-assigned id"`
		Type       string         `json:"type" minLength:"1" doc:"Node type"`
		Label      string         `json:"label" doc:"Display label"`
		Properties map[string]any `json:"properties,omitempty" doc:"Property map"`
	}
}
type nodeOutput struct {
	Body store.Node
}

type listNodesOutput struct {
	Body struct {
		Nodes []*store.Node `json:"nodes"`
	}
}

type idInput struct {
	ID string `path:"id"`
}

type updateNodeInput struct {
	ID   string `path:"id"`
	Body struct {
		Type       *string        `json:"type,omitempty"`
		Label      *string        `json:"label,omitempty"`
		Properties map[string]any `json:"properties,omitempty" doc:"Replaces the whole property set when present"`
	}
}

type deleteNodeInput struct {
	ID   string `path:"id"`
	Mode string `query:"mode" enum:"keep_connected,cascade" doc:"Edge policy, default keep_connected"`
}
type statusOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

type connectedNodesInput struct {
	ID    string `path:"id"`
	Depth int    `query:"depth" minimum:"0" doc:"Hop distance, default 1"`
}

type createEdgeInput struct {
	Body struct {
		ID         string         `json:"id,omitempty"`
		SourceID   string         `json:"source_id" minLength:"1"`
		TargetID   string         `json:"target_id" minLength:"1"`
		Type       string         `json:"type" minLength:"1"`
		Properties map[string]any `json:"properties,omitempty"`
	}
}
type edgeOutput struct {
	Body store.Edge
}

type listEdgesOutput struct {
	Body struct {
		Edges []*store.Edge `json:"edges"`
	}
}

type updateEdgeInput struct {
	ID   string `path:"id"`
	Body struct {
		SourceID   *string        `json:"source_id,omitempty"`
		TargetID   *string        `json:"target_id,omitempty"`
		Type       *string        `json:"type,omitempty"`
		Properties map[string]any `json:"properties,omitempty"`
	}
}

type searchNodesInput struct {
	Body store.NodeCriteria
}
type searchNodesOutput struct {
	Body store.NodeSearchResult
}

type searchEdgesInput struct {
	Body store.EdgeCriteria
}
type searchEdgesOutput struct {
	Body store.EdgeSearchResult
}

type fullTextInput struct {
	Query             string   `query:"q" minLength:"1" doc:"Substring to match"`
	Types             []string `query:"types" doc:"Restrict to node types"`
	IncludeProperties bool     `query:"include_properties" doc:"Also match property values"`
	Limit             int      `query:"limit" minimum:"0"`
	Offset            int      `query:"offset" minimum:"0"`
}

type findPathInput struct {
	From     string `query:"from" minLength:"1"`
	To       string `query:"to" minLength:"1"`
	MaxDepth int    `query:"max_depth" minimum:"0" doc:"Hop bound, default 10"`
}
type findPathOutput struct {
	Body struct {
		Path  []*store.Edge `json:"path"`
		Found bool          `json:"found"`
	}
}

type exportInput struct {
	Metadata bool `query:"metadata" doc:"Include the version metadata block"`
}
type exportOutput struct {
	Body store.Snapshot
}

type importInput struct {
	Mode    string `query:"mode" enum:"replace,merge" doc:"Reconciliation mode, default replace"`
	RawBody []byte `contentType:"application/json"`
}
type importOutput struct {
	Body store.ImportResult
}

type validateInput struct {
	RawBody []byte `contentType:"application/json"`
}
type validateOutput struct {
	Body store.ImportValidation
}

type statsOutput struct {
	Body store.GraphStats
}

// --- Handlers ---

// mapError converts engine errors to huma status errors using the code
// taxonomy.
func mapError(err error, msg string) error {
	switch lkerr.HTTPStatus(err) {
	case http.StatusNotFound:
		return huma.Error404NotFound(msg, err)
	case http.StatusBadRequest:
		return huma.Error400BadRequest(msg, err)
	case http.StatusServiceUnavailable:
		return huma.Error503ServiceUnavailable(msg, err)
	default:
		return huma.Error500InternalServerError(msg, err)
	}
}

func (s *Server) handleCreateNode(ctx context.Context, input *createNodeInput) (*nodeOutput, error) {
	id, err := s.gs.AddNode(ctx, &store.Node{
		ID:         input.Body.ID,
		Type:       input.Body.Type,
		Label:      input.Body.Label,
		Properties: input.Body.Properties,
	})
	if err != nil {
		return nil, mapError(err, "creating node")
	}
	node, err := s.gs.GetNode(ctx, id)
	if err != nil {
		return nil, mapError(err, "reading created node")
	}
	return &nodeOutput{Body: *node}, nil
}

func (s *Server) handleListNodes(ctx context.Context, _ *struct{}) (*listNodesOutput, error) {
	nodes, err := s.gs.GetNodes(ctx)
	if err != nil {
		return nil, mapError(err, "listing nodes")
	}
	out := &listNodesOutput{}
	out.Body.Nodes = nodes
	return out, nil
}

func (s *Server) handleGetNode(ctx context.Context, input *idInput) (*nodeOutput, error) {
	node, err := s.gs.GetNode(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("node %q", input.ID))
	}
	return &nodeOutput{Body: *node}, nil
}

func (s *Server) handleUpdateNode(ctx context.Context, input *updateNodeInput) (*nodeOutput, error) {
	err := s.gs.UpdateNode(ctx, input.ID, store.NodeUpdate{
		Type:       input.Body.Type,
		Label:      input.Body.Label,
		Properties: input.Body.Properties,
	})
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("updating node %q", input.ID))
	}
	node, err := s.gs.GetNode(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, "reading updated node")
	}
	return &nodeOutput{Body: *node}, nil
}

func (s *Server) handleDeleteNode(ctx context.Context, input *deleteNodeInput) (*statusOutput, error) {
	if err := s.gs.DeleteNode(ctx, input.ID, store.DeleteMode(input.Mode)); err != nil {
		return nil, mapError(err, fmt.Sprintf("deleting node %q", input.ID))
	}
	out := &statusOutput{}
	out.Body.Status = "deleted"
	return out, nil
}

func (s *Server) handleConnectedNodes(ctx context.Context, input *connectedNodesInput) (*listNodesOutput, error) {
	nodes, err := s.gs.FindConnectedNodes(ctx, input.ID, input.Depth)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("connected nodes of %q", input.ID))
	}
	out := &listNodesOutput{}
	out.Body.Nodes = nodes
	return out, nil
}

func (s *Server) handleCreateEdge(ctx context.Context, input *createEdgeInput) (*edgeOutput, error) {
	id, err := s.gs.AddEdge(ctx, &store.Edge{
		ID:         input.Body.ID,
		SourceID:   &input.Body.SourceID,
		TargetID:   &input.Body.TargetID,
		Type:       input.Body.Type,
		Properties: input.Body.Properties,
	})
	if err != nil {
		return nil, mapError(err, "creating edge")
	}
	edge, err := s.gs.GetEdge(ctx, id)
	if err != nil {
		return nil, mapError(err, "reading created edge")
	}
	return &edgeOutput{Body: *edge}, nil
}

func (s *Server) handleListEdges(ctx context.Context, _ *struct{}) (*listEdgesOutput, error) {
	edges, err := s.gs.GetEdges(ctx)
	if err != nil {
		return nil, mapError(err, "listing edges")
	}
	out := &listEdgesOutput{}
	out.Body.Edges = edges
	return out, nil
}

func (s *Server) handleGetEdge(ctx context.Context, input *idInput) (*edgeOutput, error) {
	edge, err := s.gs.GetEdge(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("edge %q", input.ID))
	}
	return &edgeOutput{Body: *edge}, nil
}

func (s *Server) handleUpdateEdge(ctx context.Context, input *updateEdgeInput) (*edgeOutput, error) {
	err := s.gs.UpdateEdge(ctx, input.ID, store.EdgeUpdate{
		SourceID:   input.Body.SourceID,
		TargetID:   input.Body.TargetID,
		Type:       input.Body.Type,
		Properties: input.Body.Properties,
	})
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("updating edge %q", input.ID))
	}
	edge, err := s.gs.GetEdge(ctx, input.ID)
	if err != nil {
		return nil, mapError(err, "reading updated edge")
	}
	return &edgeOutput{Body: *edge}, nil
}

func (s *Server) handleDeleteEdge(ctx context.Context, input *idInput) (*statusOutput, error) {
	if err := s.gs.DeleteEdge(ctx, input.ID); err != nil {
		return nil, mapError(err, fmt.Sprintf("deleting edge %q", input.ID))
	}
	out := &statusOutput{}
	out.Body.Status = "deleted"
	return out, nil
}

func (s *Server) handleSearchNodes(ctx context.Context, input *searchNodesInput) (*searchNodesOutput, error) {
	res, err := s.gs.SearchNodes(ctx, input.Body)
	if err != nil {
		return nil, mapError(err, "searching nodes")
	}
	return &searchNodesOutput{Body: *res}, nil
}

func (s *Server) handleSearchEdges(ctx context.Context, input *searchEdgesInput) (*searchEdgesOutput, error) {
	res, err := s.gs.SearchEdges(ctx, input.Body)
	if err != nil {
		return nil, mapError(err, "searching edges")
	}
	return &searchEdgesOutput{Body: *res}, nil
}

func (s *Server) handleFullTextSearch(ctx context.Context, input *fullTextInput) (*searchNodesOutput, error) {
	res, err := s.gs.FullTextSearch(ctx, input.Query, store.FullTextOptions{
		Types:             input.Types,
		IncludeProperties: input.IncludeProperties,
		Limit:             input.Limit,
		Offset:            input.Offset,
	})
	if err != nil {
		return nil, mapError(err, "searching text")
	}
	return &searchNodesOutput{Body: *res}, nil
}

func (s *Server) handleFindPath(ctx context.Context, input *findPathInput) (*findPathOutput, error) {
	path, err := s.gs.FindPath(ctx, input.From, input.To, input.MaxDepth)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("path %q -> %q", input.From, input.To))
	}
	out := &findPathOutput{}
	out.Body.Path = path
	out.Body.Found = len(path) > 0 || input.From == input.To
	return out, nil
}

func (s *Server) handleExport(ctx context.Context, input *exportInput) (*exportOutput, error) {
	snap, err := s.gs.Export(ctx, store.ExportOptions{IncludeMetadata: input.Metadata})
	if err != nil {
		return nil, mapError(err, "exporting snapshot")
	}
	return &exportOutput{Body: *snap}, nil
}

func (s *Server) handleImport(ctx context.Context, input *importInput) (*importOutput, error) {
	result := s.gs.ImportJSON(ctx, input.RawBody, store.ImportMode(input.Mode))
	return &importOutput{Body: *result}, nil
}

func (s *Server) handleValidate(_ context.Context, input *validateInput) (*validateOutput, error) {
	return &validateOutput{Body: *store.ValidateSnapshot(input.RawBody)}, nil
}

func (s *Server) handleStats(ctx context.Context, _ *struct{}) (*statsOutput, error) {
	stats, err := s.gs.Stats(ctx)
	if err != nil {
		return nil, mapError(err, "reading stats")
	}
	return &statsOutput{Body: *stats}, nil
}

func (s *Server) handleClear(ctx context.Context, _ *struct{}) (*statusOutput, error) {
	if err := s.gs.Clear(ctx); err != nil {
		return nil, mapError(err, "clearing graph")
	}
	out := &statusOutput{}
	out.Body.Status = "cleared"
	return out, nil
}
