// Package services holds the Atlus core: ingestion (ingest.go), similarity
// linking (linker.go), graph lifecycle and views (graph.go, seed.go) and
// note reads, edits and search (node.go).
package services
