package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

const relationshipColumns = "id, graph_id, source_node_id, target_node_id, edge_type, weight, created_at"

// SaveRelationship inserts or replaces the edge for its (source, target) pair.
func (s *Store) SaveRelationship(ctx context.Context, rel *domain.Relationship) error {
	_, err := s.exec(ctx, s.db, `
		INSERT INTO relationships (`+relationshipColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_node_id, target_node_id) DO UPDATE SET
			edge_type = excluded.edge_type,
			weight = excluded.weight
	`, rel.ID, rel.GraphID, rel.SourceNodeID, rel.TargetNodeID, string(rel.EdgeType),
		nullFloat(rel.Weight), rel.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving relationship: %w", err)
	}
	return nil
}

// ListRelationships returns every edge of the graph.
func (s *Store) ListRelationships(ctx context.Context, graphID string) ([]domain.Relationship, error) {
	return s.listRelationships(ctx,
		"SELECT "+relationshipColumns+" FROM relationships WHERE graph_id = ? ORDER BY created_at, id", graphID)
}

// NodeRelationships returns a node's outgoing and incoming edges.
func (s *Store) NodeRelationships(ctx context.Context, nodeID string) (outgoing, incoming []domain.Relationship, err error) {
	outgoing, err = s.listRelationships(ctx,
		"SELECT "+relationshipColumns+" FROM relationships WHERE source_node_id = ? ORDER BY created_at, id", nodeID)
	if err != nil {
		return nil, nil, err
	}
	incoming, err = s.listRelationships(ctx,
		"SELECT "+relationshipColumns+" FROM relationships WHERE target_node_id = ? ORDER BY created_at, id", nodeID)
	if err != nil {
		return nil, nil, err
	}
	return outgoing, incoming, nil
}

func (s *Store) listRelationships(ctx context.Context, query string, args ...any) ([]domain.Relationship, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	rels := []domain.Relationship{}
	for rows.Next() {
		var r domain.Relationship
		var edgeType string
		var weight sql.NullFloat64
		var createdAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.GraphID, &r.SourceNodeID, &r.TargetNodeID,
			&edgeType, &weight, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		r.EdgeType = domain.EdgeType(edgeType)
		if weight.Valid {
			w := weight.Float64
			r.Weight = &w
		}
		r.CreatedAt = createdAt.Time
		rels = append(rels, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relationships: %w", err)
	}
	return rels, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
