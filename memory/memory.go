// Package memory implements workflow.Store in process memory.
//
// It follows the semantics of the postgres store: generated ids increase
// monotonically, lists are ordered by id, deleting a workflow cascades to its
// nodes and edges, and deleting a node cascades to its edges and marks the
// workflow StatusNoNecessaryNode.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/meikuraledutech/workflow"
)

// Store is a concurrency-safe in-memory workflow.Store.
type Store struct {
	mu sync.RWMutex

	lastID    int64
	workflows map[int64]workflow.Workflow
	nodes     map[int64]workflow.Node
	edges     map[int64]workflow.Edge
}

// New creates an empty Store.
func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

var _ workflow.Store = (*Store)(nil)

func (s *Store) reset() {
	s.workflows = make(map[int64]workflow.Workflow)
	s.nodes = make(map[int64]workflow.Node)
	s.edges = make(map[int64]workflow.Edge)
}

func (s *Store) nextID() int64 {
	s.lastID++
	return s.lastID
}

// CreateSchema is a no-op; the store needs no schema.
func (s *Store) CreateSchema(ctx context.Context) error {
	return ctx.Err()
}

// DropSchema discards all stored data.
func (s *Store) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	return ctx.Err()
}

// CreateWorkflow saves a workflow with its nodes and edges atomically.
func (s *Store) CreateWorkflow(ctx context.Context, w *workflow.Workflow) (*workflow.Workflow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Work on copies so a failure leaves both the store and w untouched.
	nodes := slices.Clone(w.Nodes)
	edges := slices.Clone(w.Edges)
	lastID := s.lastID

	id := s.nextID()
	refs := make(map[string]int64)
	added := make(map[int64]workflow.Node, len(nodes))
	for i := range nodes {
		nodes[i].ID = s.nextID()
		nodes[i].WorkflowID = id
		if nodes[i].Ref != "" {
			refs[nodes[i].Ref] = nodes[i].ID
		}
		added[nodes[i].ID] = nodes[i]
	}

	if err := workflow.ResolveRefs(edges, refs); err != nil {
		s.lastID = lastID
		return nil, err
	}

	seen := make(map[[2]int64]bool, len(edges))
	for i := range edges {
		e := &edges[i]
		if _, ok := added[e.FromNodeID]; !ok {
			if _, ok := s.nodes[e.FromNodeID]; !ok {
				s.lastID = lastID
				return nil, workflow.ErrNodeNotFound
			}
		}
		if _, ok := added[e.ToNodeID]; !ok {
			if _, ok := s.nodes[e.ToNodeID]; !ok {
				s.lastID = lastID
				return nil, workflow.ErrNodeNotFound
			}
		}
		key := [2]int64{e.FromNodeID, e.ToNodeID}
		if seen[key] {
			s.lastID = lastID
			return nil, workflow.ErrDuplicateEdge
		}
		seen[key] = true
		e.ID = s.nextID()
	}

	s.workflows[id] = workflow.Workflow{ID: id, Name: w.Name, Status: w.Status}
	for _, n := range nodes {
		n.Ref = ""
		s.nodes[n.ID] = n
	}
	for _, e := range edges {
		e.FromNodeRef, e.ToNodeRef = "", ""
		s.edges[e.ID] = e
	}

	w.ID = id
	w.Nodes = nodes
	w.Edges = edges
	w.ClearRefs()
	return w, nil
}

// GetWorkflow returns the workflow with its nodes and edges, or nil, nil.
func (s *Store) GetWorkflow(ctx context.Context, workflowID int64) (*workflow.Workflow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.workflows[workflowID]
	if !ok {
		return nil, nil
	}
	w.Nodes = s.listNodes(workflowID)
	w.Edges = s.listEdges(workflowID)
	return &w, nil
}

// UpdateWorkflow updates name and status.
func (s *Store) UpdateWorkflow(ctx context.Context, w *workflow.Workflow) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.workflows[w.ID]
	if !ok {
		return workflow.ErrWorkflowNotFound
	}
	cur.Name, cur.Status = w.Name, w.Status
	s.workflows[w.ID] = cur
	return nil
}

// DeleteWorkflow removes a workflow with its nodes and edges.
func (s *Store) DeleteWorkflow(ctx context.Context, workflowID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.workflows, workflowID)
	for id, n := range s.nodes {
		if n.WorkflowID == workflowID {
			s.deleteNode(id)
		}
	}
	return nil
}

// ListWorkflows returns all workflows without nodes and edges.
func (s *Store) ListWorkflows(ctx context.Context) ([]workflow.Workflow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []workflow.Workflow{}
	for _, id := range slices.Sorted(maps.Keys(s.workflows)) {
		out = append(out, s.workflows[id])
	}
	return out, nil
}

// AddNode inserts a node into an existing workflow.
func (s *Store) AddNode(ctx context.Context, workflowID int64, node *workflow.Node) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workflows[workflowID]; !ok {
		return 0, workflow.ErrWorkflowNotFound
	}

	node.ID = s.nextID()
	node.WorkflowID = workflowID
	stored := *node
	stored.Ref = ""
	s.nodes[node.ID] = stored
	return node.ID, nil
}

// GetNode returns a node, or nil, nil.
func (s *Store) GetNode(ctx context.Context, nodeID int64) (*workflow.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[nodeID]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

// UpdateNode replaces a node's name, kind and attributes.
func (s *Store) UpdateNode(ctx context.Context, node *workflow.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.nodes[node.ID]
	if !ok {
		return workflow.ErrNodeNotFound
	}
	cur.Name, cur.Kind = node.Name, node.Kind
	cur.Status, cur.Message, cur.Condition = node.Status, node.Message, node.Condition
	s.nodes[node.ID] = cur
	return nil
}

// DeleteNode removes a node and its edges and marks the workflow.
func (s *Store) DeleteNode(ctx context.Context, nodeID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[nodeID]
	if !ok {
		return nil
	}
	s.deleteNode(nodeID)

	if w, ok := s.workflows[n.WorkflowID]; ok {
		w.Status = workflow.StatusNoNecessaryNode
		s.workflows[n.WorkflowID] = w
	}
	return nil
}

// ListNodes returns the nodes of a workflow ordered by id.
func (s *Store) ListNodes(ctx context.Context, workflowID int64) ([]workflow.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listNodes(workflowID), nil
}

// AddEdge inserts an edge between two existing nodes.
func (s *Store) AddEdge(ctx context.Context, edge *workflow.Edge) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkEdge(edge); err != nil {
		return 0, err
	}

	edge.ID = s.nextID()
	stored := *edge
	stored.FromNodeRef, stored.ToNodeRef = "", ""
	s.edges[edge.ID] = stored
	return edge.ID, nil
}

// GetEdge returns an edge, or nil, nil.
func (s *Store) GetEdge(ctx context.Context, edgeID int64) (*workflow.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.edges[edgeID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// UpdateEdge replaces an edge's endpoints and branch.
func (s *Store) UpdateEdge(ctx context.Context, edge *workflow.Edge) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.edges[edge.ID]
	if !ok {
		return workflow.ErrEdgeNotFound
	}
	if err := s.checkEdge(edge); err != nil {
		return err
	}
	cur.FromNodeID, cur.ToNodeID, cur.Branch = edge.FromNodeID, edge.ToNodeID, edge.Branch
	s.edges[edge.ID] = cur
	return nil
}

// DeleteEdge removes an edge.
func (s *Store) DeleteEdge(ctx context.Context, edgeID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.edges, edgeID)
	return nil
}

// ListEdges returns the edges leaving the nodes of a workflow ordered by id.
func (s *Store) ListEdges(ctx context.Context, workflowID int64) ([]workflow.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listEdges(workflowID), nil
}

// checkEdge enforces the foreign keys and the (from, to) uniqueness of edge.
// The edge's own id is ignored so updates may keep their endpoints.
func (s *Store) checkEdge(edge *workflow.Edge) error {
	if _, ok := s.nodes[edge.FromNodeID]; !ok {
		return workflow.ErrNodeNotFound
	}
	if _, ok := s.nodes[edge.ToNodeID]; !ok {
		return workflow.ErrNodeNotFound
	}
	for id, e := range s.edges {
		if id != edge.ID && e.FromNodeID == edge.FromNodeID && e.ToNodeID == edge.ToNodeID {
			return workflow.ErrDuplicateEdge
		}
	}
	return nil
}

func (s *Store) deleteNode(nodeID int64) {
	delete(s.nodes, nodeID)
	for id, e := range s.edges {
		if e.FromNodeID == nodeID || e.ToNodeID == nodeID {
			delete(s.edges, id)
		}
	}
}

func (s *Store) listNodes(workflowID int64) []workflow.Node {
	out := []workflow.Node{}
	for _, id := range slices.Sorted(maps.Keys(s.nodes)) {
		if n := s.nodes[id]; n.WorkflowID == workflowID {
			out = append(out, n)
		}
	}
	return out
}

func (s *Store) listEdges(workflowID int64) []workflow.Edge {
	out := []workflow.Edge{}
	for _, id := range slices.Sorted(maps.Keys(s.edges)) {
		e := s.edges[id]
		if s.nodes[e.FromNodeID].WorkflowID == workflowID {
			out = append(out, e)
		}
	}
	return out
}
