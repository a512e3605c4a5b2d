package domain

// GraphEdge is an edge as presented to readers of a graph.
type GraphEdge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	EdgeType EdgeType `json:"edge_type"`
	Weight   *float64 `json:"weight,omitempty"`
}

// GraphView is a graph with its nodes and merged edges.
type GraphView struct {
	Graph Graph
	Nodes []Node
	Edges []GraphEdge
}

// MergeEdges combines explicit relationships with the related_node_ids
// cache of each node, keeping one edge per ordered (source, target) pair.
// Relationship rows take precedence since they carry type and weight.
// Edges pointing outside the node set are dropped.
func MergeEdges(nodes []Node, rels []Relationship) []GraphEdge {
	known := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		known[n.ID] = struct{}{}
	}

	type pair struct{ source, target string }
	seen := make(map[pair]struct{})
	edges := make([]GraphEdge, 0, len(rels))

	add := func(e GraphEdge) {
		if e.Source == e.Target {
			return
		}
		if _, ok := known[e.Source]; !ok {
			return
		}
		if _, ok := known[e.Target]; !ok {
			return
		}
		k := pair{e.Source, e.Target}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		edges = append(edges, e)
	}

	for _, r := range rels {
		edgeType := r.EdgeType
		if edgeType == "" {
			edgeType = EdgeTypeRelated
		}
		add(GraphEdge{Source: r.SourceNodeID, Target: r.TargetNodeID, EdgeType: edgeType, Weight: r.Weight})
	}
	for _, n := range nodes {
		for _, target := range n.RelatedNodeIDs {
			add(GraphEdge{Source: n.ID, Target: target, EdgeType: EdgeTypeRelated})
		}
	}
	return edges
}

// MergeRelated returns the IDs adjacent to nodeID in either direction,
// from relationships and the node's own cache, in first-seen order.
func MergeRelated(nodeID string, cached []string, outgoing, incoming []Relationship) []string {
	seen := map[string]struct{}{nodeID: {}}
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, r := range outgoing {
		add(r.TargetNodeID)
	}
	for _, r := range incoming {
		add(r.SourceNodeID)
	}
	for _, id := range cached {
		add(id)
	}
	return ids
}
