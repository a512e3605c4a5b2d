package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

const uriScheme = "atlus://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "graphs",
		Name:        "graphs",
		Description: "Graphs of the configured owner",
		MIMEType:    "application/json",
	}, s.handleGraphsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "graphs/{graphId}/nodes",
		Name:        "graph-nodes",
		Description: "Notes of a graph in creation order",
		MIMEType:    "application/json",
	}, s.handleGraphNodesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "nodes/{nodeId}",
		Name:        "node-markdown",
		Description: "Markdown body of a note",
		MIMEType:    "text/markdown",
	}, s.handleNodeResource)
}

func (s *Server) handleGraphsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	graphs, err := s.ports.Graph.ListGraphs(ctx, s.ports.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("listing graphs: %w", err)
	}

	type graphInfo struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Badge string `json:"badge"`
	}
	infos := make([]graphInfo, len(graphs))
	for i, g := range graphs {
		infos[i] = graphInfo{ID: g.ID, Name: g.Name, Badge: string(g.Badge)}
	}
	return jsonResource(req.Params.URI, infos)
}

func (s *Server) handleGraphNodesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	graphID := extractGraphID(req.Params.URI)
	if graphID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	view, err := s.ports.Graph.View(ctx, graphID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("loading graph: %w", err)
	}
	return jsonResource(req.Params.URI, nodeOutputs(view.Nodes))
}

func (s *Server) handleNodeResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	nodeID := extractNodeID(req.Params.URI)
	if nodeID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	node, err := s.ports.Node.GetNode(ctx, nodeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("loading node: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     NodeMarkdown(node),
		}},
	}, nil
}

// NodeMarkdown renders a node as a markdown document: the title as a
// heading, then the edited body or, failing that, the summary.
func NodeMarkdown(n *domain.Node) string {
	body := n.StructuredContent
	if strings.TrimSpace(body) == "" {
		body = n.Summary
	}
	if strings.HasPrefix(strings.TrimSpace(body), "# ") {
		return body
	}
	return "# " + n.Title + "\n\n" + body
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractGraphID extracts the graph ID from atlus://graphs/{graphId}/nodes.
func extractGraphID(uri string) string {
	rest, ok := strings.CutPrefix(uri, uriScheme+"graphs/")
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, "/nodes")
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}

// extractNodeID extracts the node ID from atlus://nodes/{nodeId}.
func extractNodeID(uri string) string {
	id, ok := strings.CutPrefix(uri, uriScheme+"nodes/")
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
