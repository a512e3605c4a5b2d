// Package sqlite opens the SQLite backend of the relational store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Queries are shared with the Postgres backend through the
// sqlstore package; this package owns the file location, connection
// pragmas and schema.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files.
//
// # Data Location
//
// By default, the database is stored at ~/.atlus/data/atlus.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. The database runs in WAL mode
// with a busy timeout so concurrent ingests wait instead of failing.
package sqlite
