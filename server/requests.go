package main

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/condition"
	"github.com/meikuraledutech/workflow/graph"
)

var errInvalidRequest = errors.New("invalid request")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidRequest, fmt.Sprintf(format, args...))
}

type workflowRequest struct {
	Name   string        `json:"name"`
	Status string        `json:"status"`
	Nodes  []nodeRequest `json:"nodes"`
	Edges  []edgeRequest `json:"edges"`
}

type nodeRequest struct {
	Ref       string  `json:"ref"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Status    *string `json:"status"`
	Message   *string `json:"message"`
	Condition *string `json:"condition"`
}

type edgeRequest struct {
	FromNodeID  int64  `json:"from_node_id"`
	ToNodeID    int64  `json:"to_node_id"`
	FromNodeRef string `json:"from_node_ref"`
	ToNodeRef   string `json:"to_node_ref"`
	Branch      string `json:"branch"`
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// toWorkflow validates the request. Name and status must be alphanumeric.
func (r workflowRequest) toWorkflow() (*workflow.Workflow, error) {
	w := &workflow.Workflow{
		Name:   strings.TrimSpace(r.Name),
		Status: strings.TrimSpace(r.Status),
	}
	if !isAlphanumeric(w.Name) {
		return nil, invalid("name should contain only alphanumeric characters")
	}
	if !isAlphanumeric(w.Status) {
		return nil, invalid("status should contain only alphanumeric characters")
	}

	for i, nr := range r.Nodes {
		n, err := nr.toNode()
		if err != nil {
			return nil, fmt.Errorf("nodes[%d]: %w", i, err)
		}
		w.Nodes = append(w.Nodes, *n)
	}
	for i, er := range r.Edges {
		e, err := er.toEdge()
		if err != nil {
			return nil, fmt.Errorf("edges[%d]: %w", i, err)
		}
		w.Edges = append(w.Edges, *e)
	}
	return w, nil
}

// toNode validates the request against the attribute schema of its kind and
// checks condition expressions compile.
func (r nodeRequest) toNode() (*workflow.Node, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, invalid("name cannot be empty")
	}
	kind, err := graph.ParseKind(r.Kind)
	if err != nil {
		return nil, invalid("%v", err)
	}

	attrs := graph.Attributes{Status: r.Status, Message: r.Message, Condition: r.Condition}
	if err := graph.CheckAttributes(kind, attrs); err != nil {
		return nil, invalid("%v", err)
	}
	if r.Condition != nil {
		if err := condition.Check(*r.Condition); err != nil {
			return nil, invalid("%v", err)
		}
	}

	return &workflow.Node{
		Ref:       r.Ref,
		Name:      name,
		Kind:      string(kind),
		Status:    r.Status,
		Message:   r.Message,
		Condition: r.Condition,
	}, nil
}

// toEdge validates endpoints and normalizes the branch label.
func (r edgeRequest) toEdge() (*workflow.Edge, error) {
	if r.FromNodeRef == "" && r.FromNodeID <= 0 {
		return nil, invalid("from_node_id must be a positive integer")
	}
	if r.ToNodeRef == "" && r.ToNodeID <= 0 {
		return nil, invalid("to_node_id must be a positive integer")
	}
	branch, err := graph.ParseBranch(r.Branch)
	if err != nil {
		return nil, invalid("%v", err)
	}

	return &workflow.Edge{
		FromNodeID:  r.FromNodeID,
		ToNodeID:    r.ToNodeID,
		FromNodeRef: r.FromNodeRef,
		ToNodeRef:   r.ToNodeRef,
		Branch:      string(branch),
	}, nil
}
