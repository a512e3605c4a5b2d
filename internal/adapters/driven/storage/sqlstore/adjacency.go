package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
)

var (
	_ driven.AdjacencyStore = (*listAdjacency)(nil)
	_ driven.AdjacencyStore = (*edgeAdjacency)(nil)
)

// listAdjacency writes links to related_node_ids only.
type listAdjacency struct {
	store *Store
}

func (a *listAdjacency) Mode() domain.AdjacencyMode { return domain.AdjacencyList }

func (a *listAdjacency) ReplaceLinks(ctx context.Context, nodeID string, links []domain.Link) ([]domain.Link, error) {
	return a.store.replaceLinks(ctx, nodeID, links, false)
}

// edgeAdjacency writes "similar" relationships and related_node_ids together.
type edgeAdjacency struct {
	store *Store
}

func (a *edgeAdjacency) Mode() domain.AdjacencyMode { return domain.AdjacencyEdges }

func (a *edgeAdjacency) ReplaceLinks(ctx context.Context, nodeID string, links []domain.Link) ([]domain.Link, error) {
	return a.store.replaceLinks(ctx, nodeID, links, true)
}

func (s *Store) replaceLinks(ctx context.Context, nodeID string, links []domain.Link, edges bool) ([]domain.Link, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var graphID string
	row := tx.QueryRowContext(ctx, s.dialect.Rebind("SELECT graph_id FROM nodes WHERE id = ?"), nodeID)
	if err := row.Scan(&graphID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("loading node: %w", err)
	}

	kept, err := s.existingTargets(ctx, tx, graphID, nodeID, links)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if edges {
		if _, err := s.exec(ctx, tx,
			"DELETE FROM relationships WHERE source_node_id = ? AND edge_type = ?",
			nodeID, string(domain.EdgeTypeSimilar)); err != nil {
			return nil, fmt.Errorf("clearing similarity edges: %w", err)
		}
		for _, l := range kept {
			weight := l.Score
			// Existing edges of another type are left as they are.
			if _, err := s.exec(ctx, tx, `
				INSERT INTO relationships (`+relationshipColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(source_node_id, target_node_id) DO NOTHING
			`, uuid.NewString(), graphID, nodeID, l.TargetID, string(domain.EdgeTypeSimilar),
				nullFloat(&weight), now); err != nil {
				return nil, fmt.Errorf("saving similarity edge: %w", err)
			}
		}
	}

	related, err := marshalStrings(domain.LinkIDs(kept))
	if err != nil {
		return nil, fmt.Errorf("marshalling related node ids: %w", err)
	}
	if _, err := s.exec(ctx, tx,
		"UPDATE nodes SET related_node_ids = ?, updated_at = ? WHERE id = ?",
		related, now, nodeID); err != nil {
		return nil, fmt.Errorf("updating related node ids: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return kept, nil
}

// existingTargets drops links to the node itself, to duplicates, and to
// IDs that are not nodes of the graph.
func (s *Store) existingTargets(ctx context.Context, q execer, graphID, nodeID string, links []domain.Link) ([]domain.Link, error) {
	kept := []domain.Link{}
	if len(links) == 0 {
		return kept, nil
	}

	ids := domain.LinkIDs(links)
	args := append([]any{graphID}, anyArgs(ids)...)
	rows, err := q.QueryContext(ctx, s.dialect.Rebind(
		"SELECT id FROM nodes WHERE graph_id = ? AND id IN ("+placeholders(len(ids))+")"), args...)
	if err != nil {
		return nil, fmt.Errorf("checking link targets: %w", err)
	}
	defer rows.Close()

	exists := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning link target: %w", err)
		}
		exists[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating link targets: %w", err)
	}

	for _, l := range links {
		if l.TargetID == nodeID || !exists[l.TargetID] {
			continue
		}
		exists[l.TargetID] = false
		kept = append(kept, l)
	}
	return kept, nil
}
