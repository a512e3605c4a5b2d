// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Capability Strategies
//
// Every external capability has a live and a degraded implementation,
// chosen once at construction time:
//
//   - NodeGenerator: LLM-backed generator, or the deterministic local generator
//   - EmbeddingService: OpenAI/Ollama, or zero vectors of a fixed dimension
//   - VectorIndex: Qdrant or in-memory, or the no-op index
//
// Core services never check availability at runtime; they call whichever
// strategy they were given.
//
// # Persistence
//
//   - GraphStore, SourceFileStore, NodeStore, RelationshipStore: relational state
//   - AdjacencyStore: the single write path for similarity links
//   - ConfigStore, PromptStore: user configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
