package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/workflow"
)

const nodeColumns = `id, workflow_id, name, kind, status, message, condition`

// AddNode inserts a single node into a workflow.
// Returns the generated node ID, or ErrWorkflowNotFound if the workflow doesn't exist.
func (s *PGStore) AddNode(ctx context.Context, workflowID int64, node *workflow.Node) (int64, error) {
	err := s.db.QueryRow(ctx,
		`INSERT INTO workflow_nodes (workflow_id, name, kind, status, message, condition)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		workflowID, node.Name, node.Kind, node.Status, node.Message, node.Condition,
	).Scan(&node.ID)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return 0, workflow.ErrWorkflowNotFound
		}
		return 0, fmt.Errorf("workflow: insert node: %w", err)
	}

	node.WorkflowID = workflowID
	return node.ID, nil
}

// GetNode fetches a single node by its ID.
// Returns nil, nil if not found.
func (s *PGStore) GetNode(ctx context.Context, nodeID int64) (*workflow.Node, error) {
	var n workflow.Node
	err := s.db.QueryRow(ctx,
		`SELECT `+nodeColumns+` FROM workflow_nodes WHERE id = $1`, nodeID,
	).Scan(&n.ID, &n.WorkflowID, &n.Name, &n.Kind, &n.Status, &n.Message, &n.Condition)

	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("workflow: get node: %w", err)
	}

	return &n, nil
}

// UpdateNode updates the name, kind and attributes of an existing node.
// Returns ErrNodeNotFound if the node doesn't exist.
func (s *PGStore) UpdateNode(ctx context.Context, node *workflow.Node) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE workflow_nodes SET name = $1, kind = $2, status = $3, message = $4, condition = $5 WHERE id = $6`,
		node.Name, node.Kind, node.Status, node.Message, node.Condition, node.ID,
	)
	if err != nil {
		return fmt.Errorf("workflow: update node: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return workflow.ErrNodeNotFound
	}
	return nil
}

// DeleteNode deletes a node by its ID. Associated edges are cascade-deleted
// by the DB and the owning workflow is marked StatusNoNecessaryNode.
// No error if the node doesn't exist.
func (s *PGStore) DeleteNode(ctx context.Context, nodeID int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("workflow: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var workflowID int64
	err = tx.QueryRow(ctx,
		`DELETE FROM workflow_nodes WHERE id = $1 RETURNING workflow_id`, nodeID,
	).Scan(&workflowID)
	if err != nil {
		if isNoRows(err) {
			return nil
		}
		return fmt.Errorf("workflow: delete node: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE workflows SET status = $1 WHERE id = $2`,
		workflow.StatusNoNecessaryNode, workflowID,
	); err != nil {
		return fmt.Errorf("workflow: mark workflow: %w", err)
	}

	return tx.Commit(ctx)
}

// ListNodes returns all nodes for a workflow, ordered by ID.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListNodes(ctx context.Context, workflowID int64) ([]workflow.Node, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+nodeColumns+` FROM workflow_nodes WHERE workflow_id = $1 ORDER BY id`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("workflow: list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []workflow.Node{}
	for rows.Next() {
		var n workflow.Node
		if err := rows.Scan(&n.ID, &n.WorkflowID, &n.Name, &n.Kind, &n.Status, &n.Message, &n.Condition); err != nil {
			return nil, fmt.Errorf("workflow: scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workflow: rows nodes: %w", err)
	}

	return nodes, nil
}
