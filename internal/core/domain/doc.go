// Package domain defines the core business entities for Atlus.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Graph: A named container of nodes (a "brain"), also the vector namespace
//   - Node: A persisted knowledge-graph vertex generated from a chunk or note
//   - Relationship: An explicit directed edge between two nodes
//   - Chunk: A transient span of source text tagged with its section title
//   - VectorRecord: A node's embedding plus scalar metadata
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
