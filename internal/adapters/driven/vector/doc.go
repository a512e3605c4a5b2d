// Package vector holds the VectorIndex backends.
//
//   - qdrant: live index in a single Qdrant collection, namespaced by graph_id
//   - memory: brute-force cosine similarity, for tests and single-process use
//   - nop: degraded mode, upserts are dropped and queries return nothing
package vector
