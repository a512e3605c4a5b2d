// Package driving defines the use cases the CLI, the MCP server and the
// terminal browser call into: graph lifecycle, note reads and edits, and
// ingestion.
//
// internal/core/services implements every interface here.
package driving
