package workflow

import (
	"context"
	"errors"
)

var (
	ErrWorkflowNotFound = errors.New("workflow: workflow not found")
	ErrNodeNotFound     = errors.New("workflow: node not found")
	ErrEdgeNotFound     = errors.New("workflow: edge not found")
	ErrDuplicateEdge    = errors.New("workflow: edge already exists")
	ErrUnknownRef       = errors.New("workflow: unknown node ref")
)

// Store defines the contract for persisting and retrieving workflows.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Workflows (CreateWorkflow inserts nodes and edges in bulk)
	CreateWorkflow(ctx context.Context, w *Workflow) (*Workflow, error)
	GetWorkflow(ctx context.Context, workflowID int64) (*Workflow, error)
	UpdateWorkflow(ctx context.Context, w *Workflow) error
	DeleteWorkflow(ctx context.Context, workflowID int64) error
	ListWorkflows(ctx context.Context) ([]Workflow, error)

	// Nodes
	AddNode(ctx context.Context, workflowID int64, node *Node) (int64, error)
	GetNode(ctx context.Context, nodeID int64) (*Node, error)
	UpdateNode(ctx context.Context, node *Node) error
	DeleteNode(ctx context.Context, nodeID int64) error
	ListNodes(ctx context.Context, workflowID int64) ([]Node, error)

	// Edges
	AddEdge(ctx context.Context, edge *Edge) (int64, error)
	GetEdge(ctx context.Context, edgeID int64) (*Edge, error)
	UpdateEdge(ctx context.Context, edge *Edge) error
	DeleteEdge(ctx context.Context, edgeID int64) error
	ListEdges(ctx context.Context, workflowID int64) ([]Edge, error)
}
