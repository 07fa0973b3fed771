package workflow

import "fmt"

// StatusNoNecessaryNode is set on a workflow when one of its nodes is deleted.
const StatusNoNecessaryNode = "NoNecessaryNode"

// Workflow is a named process together with the nodes and edges that make up its graph.
type Workflow struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Nodes  []Node `json:"nodes,omitempty"`
	Edges  []Edge `json:"edges,omitempty"`
}

// Node is a persisted workflow step.
// Only the attributes belonging to Kind are set; the rest stay nil.
// Ref is a temporary key used only during CreateWorkflow for edge wiring; it is never persisted.
type Node struct {
	ID         int64   `json:"id,omitempty"`
	Ref        string  `json:"ref,omitempty"`
	WorkflowID int64   `json:"workflow_id,omitempty"`
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	Status     *string `json:"status,omitempty"`
	Message    *string `json:"message,omitempty"`
	Condition  *string `json:"condition,omitempty"`
}

// Edge is a persisted directed connection between two nodes of the same workflow.
// Branch is "Yes" or "No" on edges leaving a condition node and empty otherwise.
// FromNodeRef / ToNodeRef are temporary keys used only during CreateWorkflow; they are never persisted.
type Edge struct {
	ID          int64  `json:"id,omitempty"`
	FromNodeID  int64  `json:"from_node_id,omitempty"`
	ToNodeID    int64  `json:"to_node_id,omitempty"`
	FromNodeRef string `json:"from_node_ref,omitempty"`
	ToNodeRef   string `json:"to_node_ref,omitempty"`
	Branch      string `json:"branch,omitempty"`
}

// ResolveRefs rewrites edge refs to the ids of the nodes carrying them.
// Edges without refs keep their ids.
func ResolveRefs(edges []Edge, refs map[string]int64) error {
	for i := range edges {
		e := &edges[i]
		if e.FromNodeRef != "" {
			id, ok := refs[e.FromNodeRef]
			if !ok {
				return fmt.Errorf("%w: from_node_ref %q", ErrUnknownRef, e.FromNodeRef)
			}
			e.FromNodeID = id
		}
		if e.ToNodeRef != "" {
			id, ok := refs[e.ToNodeRef]
			if !ok {
				return fmt.Errorf("%w: to_node_ref %q", ErrUnknownRef, e.ToNodeRef)
			}
			e.ToNodeID = id
		}
	}
	return nil
}

// ClearRefs drops the temporary refs once ids are assigned.
func (w *Workflow) ClearRefs() {
	for i := range w.Nodes {
		w.Nodes[i].Ref = ""
	}
	for i := range w.Edges {
		w.Edges[i].FromNodeRef = ""
		w.Edges[i].ToNodeRef = ""
	}
}
