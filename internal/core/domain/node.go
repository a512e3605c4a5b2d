package domain

import (
	"strings"
	"time"
)

// NodeType identifies how a node came to exist.
type NodeType string

// Available node types.
const (
	// NodeTypeNote is a note written by the user.
	NodeTypeNote NodeType = "note"

	// NodeTypeGenerated is produced from a document chunk.
	NodeTypeGenerated NodeType = "generated"

	// NodeTypeHandwritten is produced from OCR markdown as a single node.
	NodeTypeHandwritten NodeType = "handwritten"

	// NodeTypeSeed is one of the welcome nodes of a new graph.
	NodeTypeSeed NodeType = "seed"
)

// Field caps applied when building nodes.
const (
	MaxTitleLength        = 512
	MaxSectionTitleLength = 500
	MaxRawTextLength      = 10000
	MaxEmbeddingText      = 8000
	MaxEmbeddingConcepts  = 10
	MaxMetadataTags       = 15
)

// Node is a persisted knowledge-graph vertex.
type Node struct {
	// ID is the unique identifier, shared with the vector record.
	ID string

	// GraphID is the owning graph.
	GraphID string

	// SourceFileID links to the SourceFile the node came from, if any.
	SourceFileID string

	Title   string
	Summary string

	// RawText is the source content the node was generated from.
	RawText string

	// StructuredContent is the markdown body shown when editing the node.
	StructuredContent string

	SectionTitle  string
	Concepts      []string
	RelatedTopics []string
	Tags          []string
	NodeType      NodeType

	// EmbeddingID correlates the node with its vector record.
	// It equals ID for every node that has been indexed.
	EmbeddingID string

	// RelatedNodeIDs is the denormalised adjacency cache written by the linker.
	RelatedNodeIDs []string

	// Metadata holds free-form attributes (source reference, tags).
	Metadata map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EdgeType labels a relationship.
type EdgeType string

// Available edge types.
const (
	// EdgeTypeSimilar is written by the similarity linker.
	EdgeTypeSimilar EdgeType = "similar"

	// EdgeTypeRelated is the default for edges without an explicit type.
	EdgeTypeRelated EdgeType = "related"

	// EdgeTypeManual is created by a user.
	EdgeTypeManual EdgeType = "manual"
)

// Relationship is an explicit directed edge. At most one exists per
// ordered (SourceNodeID, TargetNodeID) pair.
type Relationship struct {
	ID           string
	GraphID      string
	SourceNodeID string
	TargetNodeID string
	EdgeType     EdgeType

	// Weight is the similarity score for linker edges. Nil when unknown.
	Weight *float64

	CreatedAt time.Time
}

// Link is one similarity-derived neighbour of a node.
type Link struct {
	TargetID string
	Score    float64
}

// LinkIDs returns the target IDs of links in order.
func LinkIDs(links []Link) []string {
	ids := make([]string, len(links))
	for i, l := range links {
		ids[i] = l.TargetID
	}
	return ids
}

// NodeContent is the structured output of node generation.
type NodeContent struct {
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	Concepts      []string `json:"concepts"`
	RelatedTopics []string `json:"related_topics"`
}

// NodePayload is a generated node before it is assigned an identity.
type NodePayload struct {
	NodeContent

	// SectionTitle is the chunk's section, empty when none was detected.
	SectionTitle string

	// RawText is the source content, capped at MaxRawTextLength for chunks.
	RawText string

	// SourceReference is the SourceFile ID the payload came from, if any.
	SourceReference string

	// NodeType is the type the persisted node will carry.
	NodeType NodeType

	// Tags become the node's tags. When nil the concepts are used.
	Tags []string
}

// EmbeddingText builds the text embedded for a payload: title, summary,
// and up to the first ten concepts, capped at MaxEmbeddingText characters.
func (p NodePayload) EmbeddingText() string {
	concepts := p.Concepts
	if len(concepts) > MaxEmbeddingConcepts {
		concepts = concepts[:MaxEmbeddingConcepts]
	}
	text := p.Title + "\n" + p.Summary + "\n" + strings.Join(concepts, " ")
	return Truncate(text, MaxEmbeddingText)
}

// VectorMetadata builds the scalar metadata stored with the payload's vector.
func (p NodePayload) VectorMetadata(graphID, nodeID string) map[string]any {
	tags := p.Concepts
	if len(tags) > MaxMetadataTags {
		tags = tags[:MaxMetadataTags]
	}
	return map[string]any{
		"graph_id":         graphID,
		"node_id":          nodeID,
		"section_title":    Truncate(p.SectionTitle, MaxSectionTitleLength),
		"tags":             strings.Join(tags, ","),
		"source_reference": p.SourceReference,
	}
}

// Chunk is a bounded span of source text produced by the chunker.
// It is transient and never persisted.
type Chunk struct {
	// Text is the chunk content. Never empty.
	Text string

	// SectionTitle is the detected section header, empty when none applies.
	SectionTitle string

	// Position is the ordinal position within the source text.
	Position int
}
