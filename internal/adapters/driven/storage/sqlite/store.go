package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/atlus-labs/atlus/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/atlus-labs/atlus/internal/adapters/driven/storage/sqlstore"
)

// FileName is the database file created inside the data directory.
const FileName = "atlus.db"

// Store is the SQLite-backed relational store.
type Store struct {
	*sqlstore.Store
	path string
}

// Open creates or opens the database in dataDir and applies pending
// migrations. If dataDir is empty, defaults to ~/.atlus/data.
func Open(ctx context.Context, dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".atlus", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, FileName)
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlstore.Migrate(ctx, db, sqlstore.SQLite, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{
		Store: sqlstore.New(db, sqlstore.SQLite),
		path:  dbPath,
	}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// dsn applies the pragmas on every pooled connection.
func dsn(path string) string {
	return "file:" + path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)"
}
