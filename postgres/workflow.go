package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/workflow"
)

// CreateWorkflow saves a workflow with its nodes and edges in one transaction.
// Edge refs (FromNodeRef/ToNodeRef) are resolved to the generated node IDs.
// Returns the workflow with all IDs filled in.
func (s *PGStore) CreateWorkflow(ctx context.Context, w *workflow.Workflow) (*workflow.Workflow, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("workflow: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx,
		`INSERT INTO workflows (name, status) VALUES ($1, $2) RETURNING id`,
		w.Name, w.Status,
	).Scan(&w.ID); err != nil {
		return nil, fmt.Errorf("workflow: insert workflow: %w", err)
	}

	// Insert nodes and build ref → ID mapping.
	refs := make(map[string]int64)
	for i := range w.Nodes {
		n := &w.Nodes[i]
		n.WorkflowID = w.ID
		if err := tx.QueryRow(ctx,
			`INSERT INTO workflow_nodes (workflow_id, name, kind, status, message, condition)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			w.ID, n.Name, n.Kind, n.Status, n.Message, n.Condition,
		).Scan(&n.ID); err != nil {
			return nil, fmt.Errorf("workflow: insert node %q: %w", n.Name, err)
		}
		if n.Ref != "" {
			refs[n.Ref] = n.ID
		}
	}

	if err := workflow.ResolveRefs(w.Edges, refs); err != nil {
		return nil, err
	}

	for i := range w.Edges {
		e := &w.Edges[i]
		if err := tx.QueryRow(ctx,
			`INSERT INTO workflow_edges (from_node_id, to_node_id, branch) VALUES ($1, $2, $3) RETURNING id`,
			e.FromNodeID, e.ToNodeID, e.Branch,
		).Scan(&e.ID); err != nil {
			return nil, edgeError("insert edge", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("workflow: commit: %w", err)
	}

	w.ClearRefs()
	return w, nil
}

// GetWorkflow retrieves a workflow with its nodes and edges.
// Returns nil, nil if not found.
func (s *PGStore) GetWorkflow(ctx context.Context, workflowID int64) (*workflow.Workflow, error) {
	w := &workflow.Workflow{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, status FROM workflows WHERE id = $1`, workflowID,
	).Scan(&w.ID, &w.Name, &w.Status)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("workflow: get workflow: %w", err)
	}

	if w.Nodes, err = s.ListNodes(ctx, workflowID); err != nil {
		return nil, err
	}
	if w.Edges, err = s.ListEdges(ctx, workflowID); err != nil {
		return nil, err
	}
	return w, nil
}

// UpdateWorkflow updates a workflow's name and status.
// Returns ErrWorkflowNotFound if the workflow doesn't exist.
func (s *PGStore) UpdateWorkflow(ctx context.Context, w *workflow.Workflow) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE workflows SET name = $1, status = $2 WHERE id = $3`,
		w.Name, w.Status, w.ID,
	)
	if err != nil {
		return fmt.Errorf("workflow: update workflow: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return workflow.ErrWorkflowNotFound
	}
	return nil
}

// DeleteWorkflow removes a workflow; its nodes and edges are cascade-deleted by the DB.
// No error if the workflow doesn't exist.
func (s *PGStore) DeleteWorkflow(ctx context.Context, workflowID int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, workflowID); err != nil {
		return fmt.Errorf("workflow: delete workflow: %w", err)
	}
	return nil
}

// ListWorkflows returns all workflows without their nodes and edges, ordered by ID.
func (s *PGStore) ListWorkflows(ctx context.Context) ([]workflow.Workflow, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, status FROM workflows ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("workflow: list workflows: %w", err)
	}
	defer rows.Close()

	workflows := []workflow.Workflow{}
	for rows.Next() {
		var w workflow.Workflow
		if err := rows.Scan(&w.ID, &w.Name, &w.Status); err != nil {
			return nil, fmt.Errorf("workflow: scan workflow: %w", err)
		}
		workflows = append(workflows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workflow: rows workflows: %w", err)
	}

	return workflows, nil
}
