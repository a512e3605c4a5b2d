package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

const nodeColumns = `id, graph_id, source_file_id, title, summary, raw_text, structured_content,
	section_title, concepts, related_topics, tags, node_type, embedding_id,
	related_node_ids, metadata, created_at, updated_at`

// SaveNodes stores or updates nodes in a single transaction. New nodes
// are numbered in slice order so ListNodes returns them in creation order.
func (s *Store) SaveNodes(ctx context.Context, nodes []domain.Node) error {
	if len(nodes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, s.dialect.Rebind(`
		INSERT INTO nodes (`+nodeColumns+`, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, `+s.dialect.nextSeq()+`)
		ON CONFLICT(id) DO UPDATE SET
			source_file_id = excluded.source_file_id,
			title = excluded.title,
			summary = excluded.summary,
			raw_text = excluded.raw_text,
			structured_content = excluded.structured_content,
			section_title = excluded.section_title,
			concepts = excluded.concepts,
			related_topics = excluded.related_topics,
			tags = excluded.tags,
			node_type = excluded.node_type,
			embedding_id = excluded.embedding_id,
			related_node_ids = excluded.related_node_ids,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`))
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range nodes {
		args, err := nodeArgs(&nodes[i])
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("saving node %s: %w", nodes[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetNode retrieves a node by ID.
func (s *Store) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	row := s.queryRow(ctx, "SELECT "+nodeColumns+" FROM nodes WHERE id = ?", id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return n, err
}

// GetNodes retrieves the nodes with the given IDs in the order given.
// Unknown IDs are skipped.
func (s *Store) GetNodes(ctx context.Context, ids []string) ([]domain.Node, error) {
	if len(ids) == 0 {
		return []domain.Node{}, nil
	}

	found, err := s.listNodes(ctx,
		"SELECT "+nodeColumns+" FROM nodes WHERE id IN ("+placeholders(len(ids))+")",
		anyArgs(ids)...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Node, len(found))
	for _, n := range found {
		byID[n.ID] = n
	}
	out := make([]domain.Node, 0, len(found))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			out = append(out, n)
			delete(byID, id)
		}
	}
	return out, nil
}

// ListNodes returns every node of a graph in creation order.
func (s *Store) ListNodes(ctx context.Context, graphID string) ([]domain.Node, error) {
	return s.listNodes(ctx, "SELECT "+nodeColumns+" FROM nodes WHERE graph_id = ? ORDER BY seq", graphID)
}

// DeleteNodes removes nodes and every relationship touching them.
func (s *Store) DeleteNodes(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	in := placeholders(len(ids))
	args := anyArgs(ids)
	if _, err := s.exec(ctx, tx,
		"DELETE FROM relationships WHERE source_node_id IN ("+in+") OR target_node_id IN ("+in+")",
		append(append([]any{}, args...), args...)...); err != nil {
		return fmt.Errorf("deleting relationships: %w", err)
	}
	if _, err := s.exec(ctx, tx, "DELETE FROM nodes WHERE id IN ("+in+")", args...); err != nil {
		return fmt.Errorf("deleting nodes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SearchNodes matches query case-insensitively against title, summary
// and raw text of nodes in the given graphs, newest first.
func (s *Store) SearchNodes(ctx context.Context, graphIDs []string, query string, limit int) ([]domain.Node, error) {
	query = strings.TrimSpace(query)
	if len(graphIDs) == 0 || query == "" {
		return []domain.Node{}, nil
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	args := anyArgs(graphIDs)
	args = append(args, pattern, pattern, pattern, limit)

	return s.listNodes(ctx, `
		SELECT `+nodeColumns+` FROM nodes
		WHERE graph_id IN (`+placeholders(len(graphIDs))+`)
		AND (LOWER(title) LIKE ? ESCAPE '\' OR LOWER(summary) LIKE ? ESCAPE '\' OR LOWER(raw_text) LIKE ? ESCAPE '\')
		ORDER BY seq DESC
		LIMIT ?
	`, args...)
}

func (s *Store) listNodes(ctx context.Context, query string, args ...any) ([]domain.Node, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	nodes := []domain.Node{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}
	return nodes, nil
}

func nodeArgs(n *domain.Node) ([]any, error) {
	concepts, err := marshalStrings(n.Concepts)
	if err != nil {
		return nil, fmt.Errorf("marshalling concepts: %w", err)
	}
	topics, err := marshalStrings(n.RelatedTopics)
	if err != nil {
		return nil, fmt.Errorf("marshalling related topics: %w", err)
	}
	tags, err := marshalStrings(n.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshalling tags: %w", err)
	}
	related, err := marshalStrings(n.RelatedNodeIDs)
	if err != nil {
		return nil, fmt.Errorf("marshalling related node ids: %w", err)
	}
	metadata := n.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshalling metadata: %w", err)
	}

	return []any{
		n.ID, n.GraphID, nullString(n.SourceFileID), n.Title, n.Summary, n.RawText,
		n.StructuredContent, n.SectionTitle, concepts, topics, tags, string(n.NodeType),
		n.EmbeddingID, related, string(metadataJSON), n.CreatedAt, n.UpdatedAt,
	}, nil
}

func scanNode(row scanner) (*domain.Node, error) {
	var n domain.Node
	var sourceFileID sql.NullString
	var concepts, topics, tags, related, metadata, nodeType string
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(&n.ID, &n.GraphID, &sourceFileID, &n.Title, &n.Summary, &n.RawText,
		&n.StructuredContent, &n.SectionTitle, &concepts, &topics, &tags, &nodeType,
		&n.EmbeddingID, &related, &metadata, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning node: %w", err)
	}

	var err error
	if n.Concepts, err = unmarshalStrings(concepts); err != nil {
		return nil, fmt.Errorf("unmarshalling concepts: %w", err)
	}
	if n.RelatedTopics, err = unmarshalStrings(topics); err != nil {
		return nil, fmt.Errorf("unmarshalling related topics: %w", err)
	}
	if n.Tags, err = unmarshalStrings(tags); err != nil {
		return nil, fmt.Errorf("unmarshalling tags: %w", err)
	}
	if n.RelatedNodeIDs, err = unmarshalStrings(related); err != nil {
		return nil, fmt.Errorf("unmarshalling related node ids: %w", err)
	}
	n.Metadata = map[string]any{}
	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &n.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
	}

	n.SourceFileID = sourceFileID.String
	n.NodeType = domain.NodeType(nodeType)
	n.CreatedAt = createdAt.Time
	n.UpdatedAt = updatedAt.Time
	return &n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
