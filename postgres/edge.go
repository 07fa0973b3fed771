package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/workflow"
)

// AddEdge inserts a single edge between two existing nodes.
// Returns the generated edge ID, ErrNodeNotFound if an endpoint is missing,
// or ErrDuplicateEdge if the nodes are already connected.
func (s *PGStore) AddEdge(ctx context.Context, edge *workflow.Edge) (int64, error) {
	err := s.db.QueryRow(ctx,
		`INSERT INTO workflow_edges (from_node_id, to_node_id, branch) VALUES ($1, $2, $3) RETURNING id`,
		edge.FromNodeID, edge.ToNodeID, edge.Branch,
	).Scan(&edge.ID)
	if err != nil {
		return 0, edgeError("insert edge", err)
	}

	return edge.ID, nil
}

// GetEdge fetches a single edge by its ID.
// Returns nil, nil if not found.
func (s *PGStore) GetEdge(ctx context.Context, edgeID int64) (*workflow.Edge, error) {
	var e workflow.Edge
	err := s.db.QueryRow(ctx,
		`SELECT id, from_node_id, to_node_id, branch FROM workflow_edges WHERE id = $1`, edgeID,
	).Scan(&e.ID, &e.FromNodeID, &e.ToNodeID, &e.Branch)

	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("workflow: get edge: %w", err)
	}

	return &e, nil
}

// UpdateEdge updates an existing edge's endpoints and branch.
// Returns ErrEdgeNotFound if the edge doesn't exist.
func (s *PGStore) UpdateEdge(ctx context.Context, edge *workflow.Edge) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE workflow_edges SET from_node_id = $1, to_node_id = $2, branch = $3 WHERE id = $4`,
		edge.FromNodeID, edge.ToNodeID, edge.Branch, edge.ID,
	)
	if err != nil {
		return edgeError("update edge", err)
	}
	if ct.RowsAffected() == 0 {
		return workflow.ErrEdgeNotFound
	}
	return nil
}

// DeleteEdge deletes an edge by its ID.
// No error if the edge doesn't exist.
func (s *PGStore) DeleteEdge(ctx context.Context, edgeID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM workflow_edges WHERE id = $1`, edgeID)
	if err != nil {
		return fmt.Errorf("workflow: delete edge: %w", err)
	}
	return nil
}

// ListEdges returns all edges leaving the nodes of a workflow, ordered by ID.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListEdges(ctx context.Context, workflowID int64) ([]workflow.Edge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT e.id, e.from_node_id, e.to_node_id, e.branch
		 FROM workflow_edges e
		 JOIN workflow_nodes n ON n.id = e.from_node_id
		 WHERE n.workflow_id = $1
		 ORDER BY e.id`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("workflow: list edges: %w", err)
	}
	defer rows.Close()

	edges := []workflow.Edge{}
	for rows.Next() {
		var e workflow.Edge
		if err := rows.Scan(&e.ID, &e.FromNodeID, &e.ToNodeID, &e.Branch); err != nil {
			return nil, fmt.Errorf("workflow: scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workflow: rows edges: %w", err)
	}

	return edges, nil
}

// edgeError translates constraint violations on workflow_edges.
func edgeError(op string, err error) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		return workflow.ErrDuplicateEdge
	case codeForeignKeyViolation:
		return workflow.ErrNodeNotFound
	}
	return fmt.Errorf("workflow: %s: %w", op, err)
}
