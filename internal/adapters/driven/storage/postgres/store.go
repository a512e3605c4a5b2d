package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/atlus-labs/atlus/internal/adapters/driven/storage/postgres/migrations"
	"github.com/atlus-labs/atlus/internal/adapters/driven/storage/sqlstore"
)

// Store is the Postgres-backed relational store.
type Store struct {
	*sqlstore.Store
	pool *pgxpool.Pool
}

// Open connects to dsn, verifies the connection and applies pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: dsn is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: connecting: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	if err := sqlstore.Migrate(ctx, db, sqlstore.Postgres, migrations.FS); err != nil {
		db.Close()
		pool.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	return &Store{
		Store: sqlstore.New(db, sqlstore.Postgres),
		pool:  pool,
	}, nil
}

// Close closes the database handle and the pool behind it.
func (s *Store) Close() error {
	err := s.Store.Close()
	s.pool.Close()
	return err
}
