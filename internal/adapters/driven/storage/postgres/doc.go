// Package postgres opens the Postgres backend of the relational store.
//
// Connections are pooled by pgxpool and exposed through database/sql so the
// queries in sqlstore serve both backends. Select it with
// storage.backend = "postgres" and a storage.dsn connection string.
package postgres
