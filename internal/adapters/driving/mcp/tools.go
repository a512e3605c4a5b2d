package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

// IngestTextInput is the input schema for the ingest_text tool.
type IngestTextInput struct {
	GraphID  string `json:"graph_id" jsonschema:"the graph that receives the new nodes"`
	Filename string `json:"filename,omitempty" jsonschema:"name of the document, its extension selects the format (default pasted.txt)"`
	Text     string `json:"text" jsonschema:"the document text"`
}

// IngestTextOutput is the output schema for the ingest_text tool.
type IngestTextOutput struct {
	NodesCreated int      `json:"nodes_created"`
	LinksCreated int      `json:"links_created"`
	NodeIDs      []string `json:"node_ids"`
	Errors       []string `json:"errors"`
}

// SearchNodesInput is the input schema for the search_nodes tool.
type SearchNodesInput struct {
	Query string `json:"query" jsonschema:"text to look for in node titles, summaries and source text"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default 20, at most 50)"`
}

// SearchNodesOutput is the output schema for the search_nodes tool.
type SearchNodesOutput struct {
	Results []NodeOutput `json:"results"`
	Count   int          `json:"count"`
}

// RelatedNodesInput is the input schema for the related_nodes tool.
type RelatedNodesInput struct {
	NodeID string `json:"node_id" jsonschema:"the node whose neighbours are listed"`
}

// RelatedNodesOutput is the output schema for the related_nodes tool.
type RelatedNodesOutput struct {
	Related []RelatedOutput `json:"related"`
}

// RelatedOutput is one neighbour of a node.
type RelatedOutput struct {
	NodeOutput
	Source string `json:"source"`
}

// GraphViewInput is the input schema for the graph_view tool.
type GraphViewInput struct {
	GraphID string `json:"graph_id,omitempty" jsonschema:"the graph to render, all graphs when empty"`
}

// GraphViewOutput is the output schema for the graph_view tool.
type GraphViewOutput struct {
	Name  string             `json:"name"`
	Nodes []NodeOutput       `json:"nodes"`
	Edges []domain.GraphEdge `json:"edges"`
}

// NodeOutput is the compact node shape returned by tools.
type NodeOutput struct {
	ID      string   `json:"id"`
	GraphID string   `json:"graph_id"`
	Title   string   `json:"title"`
	Summary string   `json:"summary,omitempty"`
	Tags    []string `json:"tags"`
	Type    string   `json:"node_type"`
}

const defaultIngestFilename = "pasted.txt"

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_text",
		Description: "Turn a document into linked notes of a graph",
	}, s.handleIngestText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_nodes",
		Description: "Find notes whose text contains a phrase",
	}, s.handleSearchNodes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "related_nodes",
		Description: "List the notes linked or similar to a note",
	}, s.handleRelatedNodes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "graph_view",
		Description: "Return the notes and edges of a graph",
	}, s.handleGraphView)
}

func (s *Server) handleIngestText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestTextInput,
) (*mcp.CallToolResult, IngestTextOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, IngestTextOutput{}, errors.New("text is required")
	}
	name := input.Filename
	if strings.TrimSpace(name) == "" {
		name = defaultIngestFilename
	}

	result, err := s.ports.Ingestion.Ingest(ctx, domain.IngestRequest{
		GraphID: input.GraphID,
		Files:   []domain.IngestFile{{Name: name, Content: []byte(input.Text)}},
	})
	if err != nil {
		return nil, IngestTextOutput{}, err
	}
	return nil, IngestTextOutput{
		NodesCreated: result.NodesCreated,
		LinksCreated: result.LinksCreated,
		NodeIDs:      result.NodeIDs,
		Errors:       result.Errors,
	}, nil
}

func (s *Server) handleSearchNodes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchNodesInput,
) (*mcp.CallToolResult, SearchNodesOutput, error) {
	nodes, err := s.ports.Node.Search(ctx, s.ports.OwnerID, input.Query, input.Limit)
	if err != nil {
		return nil, SearchNodesOutput{}, err
	}
	return nil, SearchNodesOutput{Results: nodeOutputs(nodes), Count: len(nodes)}, nil
}

func (s *Server) handleRelatedNodes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RelatedNodesInput,
) (*mcp.CallToolResult, RelatedNodesOutput, error) {
	related, err := s.ports.Node.Related(ctx, input.NodeID)
	if err != nil {
		return nil, RelatedNodesOutput{}, err
	}
	out := RelatedNodesOutput{Related: make([]RelatedOutput, len(related))}
	for i, r := range related {
		out.Related[i] = RelatedOutput{NodeOutput: toNodeOutput(r.Node), Source: r.Source}
	}
	return nil, out, nil
}

func (s *Server) handleGraphView(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GraphViewInput,
) (*mcp.CallToolResult, GraphViewOutput, error) {
	var view *domain.GraphView
	var err error
	if input.GraphID == "" {
		view, err = s.ports.Graph.GlobalView(ctx, s.ports.OwnerID)
	} else {
		view, err = s.ports.Graph.View(ctx, input.GraphID)
	}
	if err != nil {
		return nil, GraphViewOutput{}, err
	}
	return nil, GraphViewOutput{
		Name:  view.Graph.Name,
		Nodes: nodeOutputs(view.Nodes),
		Edges: view.Edges,
	}, nil
}

func nodeOutputs(nodes []domain.Node) []NodeOutput {
	out := make([]NodeOutput, len(nodes))
	for i, n := range nodes {
		out[i] = toNodeOutput(n)
	}
	return out
}

func toNodeOutput(n domain.Node) NodeOutput {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return NodeOutput{
		ID:      n.ID,
		GraphID: n.GraphID,
		Title:   n.Title,
		Summary: n.Summary,
		Tags:    tags,
		Type:    string(n.NodeType),
	}
}
