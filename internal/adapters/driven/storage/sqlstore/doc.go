// Package sqlstore implements the relational store ports over
// database/sql. The SQLite and PostgreSQL backends open a *sql.DB, run
// their own embedded migrations and hand the handle to this package;
// queries are written with ? placeholders and rebound per dialect.
//
// # Adjacency
//
// Similarity links have two representations: the related_node_ids column
// on nodes and the relationships table. Both are written only through
// Adjacency(mode).ReplaceLinks:
//
//   - list: rewrites related_node_ids
//   - edges: rewrites the node's "similar" relationships and
//     related_node_ids in one transaction
package sqlstore
