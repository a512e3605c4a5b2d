// Package generators holds the NodeGenerator strategies.
//
//   - llm: asks a chat model for title, summary, concepts and related topics
//   - local: derives title and summary from the text itself, offline
//
// The application picks one at startup depending on whether an LLM
// provider is configured.
package generators
