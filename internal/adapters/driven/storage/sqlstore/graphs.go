package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

// SaveGraph stores or updates a graph.
func (s *Store) SaveGraph(ctx context.Context, g *domain.Graph) error {
	_, err := s.exec(ctx, s.db, `
		INSERT INTO graphs (id, name, badge, owner_id, seeded, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			badge = excluded.badge,
			owner_id = excluded.owner_id,
			seeded = excluded.seeded,
			updated_at = excluded.updated_at
	`, g.ID, g.Name, string(g.Badge), g.OwnerID, g.Seeded, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving graph: %w", err)
	}
	return nil
}

// GetGraph retrieves a graph by ID.
func (s *Store) GetGraph(ctx context.Context, id string) (*domain.Graph, error) {
	row := s.queryRow(ctx, `
		SELECT id, name, badge, owner_id, seeded, created_at, updated_at
		FROM graphs WHERE id = ?
	`, id)

	g, err := scanGraph(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return g, err
}

// ListGraphs returns the graphs of an owner, newest first.
func (s *Store) ListGraphs(ctx context.Context, ownerID string) ([]domain.Graph, error) {
	rows, err := s.query(ctx, `
		SELECT id, name, badge, owner_id, seeded, created_at, updated_at
		FROM graphs WHERE owner_id = ?
		ORDER BY created_at DESC, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying graphs: %w", err)
	}
	defer rows.Close()

	graphs := []domain.Graph{}
	for rows.Next() {
		g, err := scanGraph(rows)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating graphs: %w", err)
	}
	return graphs, nil
}

// DeleteGraph removes a graph with its relationships, nodes and source
// files in one transaction.
func (s *Store) DeleteGraph(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, q := range []string{
		"DELETE FROM relationships WHERE graph_id = ?",
		"DELETE FROM nodes WHERE graph_id = ?",
		"DELETE FROM source_files WHERE graph_id = ?",
	} {
		if _, err := s.exec(ctx, tx, q, id); err != nil {
			return fmt.Errorf("deleting graph contents: %w", err)
		}
	}

	res, err := s.exec(ctx, tx, "DELETE FROM graphs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting graph: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SaveSourceFile stores a source file record.
func (s *Store) SaveSourceFile(ctx context.Context, f *domain.SourceFile) error {
	_, err := s.exec(ctx, s.db, `
		INSERT INTO source_files (id, graph_id, filename, file_type, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			file_type = excluded.file_type
	`, f.ID, f.GraphID, f.Filename, string(f.FileType), f.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving source file: %w", err)
	}
	return nil
}

// DeleteSourceFile removes a source file record.
func (s *Store) DeleteSourceFile(ctx context.Context, id string) error {
	if _, err := s.exec(ctx, s.db, "DELETE FROM source_files WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting source file: %w", err)
	}
	return nil
}

// ListSourceFiles returns a graph's source files, oldest first.
func (s *Store) ListSourceFiles(ctx context.Context, graphID string) ([]domain.SourceFile, error) {
	rows, err := s.query(ctx, `
		SELECT id, graph_id, filename, file_type, created_at
		FROM source_files WHERE graph_id = ?
		ORDER BY created_at, id
	`, graphID)
	if err != nil {
		return nil, fmt.Errorf("querying source files: %w", err)
	}
	defer rows.Close()

	files := []domain.SourceFile{}
	for rows.Next() {
		var f domain.SourceFile
		var fileType string
		var createdAt sql.NullTime
		if err := rows.Scan(&f.ID, &f.GraphID, &f.Filename, &fileType, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning source file: %w", err)
		}
		f.FileType = domain.FileType(fileType)
		f.CreatedAt = createdAt.Time
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source files: %w", err)
	}
	return files, nil
}

func scanGraph(row scanner) (*domain.Graph, error) {
	var g domain.Graph
	var badge string
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&g.ID, &g.Name, &badge, &g.OwnerID, &g.Seeded, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning graph: %w", err)
	}
	g.Badge = domain.Badge(badge)
	g.CreatedAt = createdAt.Time
	g.UpdatedAt = updatedAt.Time
	return &g, nil
}
