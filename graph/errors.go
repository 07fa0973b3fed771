package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error checking via errors.Is().
var (
	// ErrNodeCreation covers attribute schema mismatches at insertion and
	// structural validation failures.
	ErrNodeCreation = errors.New("node creation error")

	// ErrEdgeCreation indicates an edge that references a missing node or
	// carries an unknown branch label.
	ErrEdgeCreation = errors.New("edge creation error")

	// ErrCycle indicates that no topological order exists.
	ErrCycle = errors.New("cycle detected")

	// ErrConditionEvaluation indicates a condition expression that could not
	// be evaluated. It is recovered during execution and never aborts a run.
	ErrConditionEvaluation = errors.New("condition evaluation error")
)

// NodeCreationError reports a rejected node or a violated structural rule.
type NodeCreationError struct {
	NodeID int64
	Rule   string
}

func (e *NodeCreationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: node %d: %s", ErrNodeCreation.Error(), e.NodeID, e.Rule)
}

func (e *NodeCreationError) Unwrap() error { return ErrNodeCreation }

// EdgeCreationError reports a rejected edge.
type EdgeCreationError struct {
	From int64
	To   int64
	Msg  string
}

func (e *EdgeCreationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: edge %d -> %d: %s", ErrEdgeCreation.Error(), e.From, e.To, e.Msg)
}

func (e *EdgeCreationError) Unwrap() error { return ErrEdgeCreation }

// CycleError reports the nodes left unordered once every acyclic part of the
// graph has been sorted.
type CycleError struct {
	Remaining []int64
}

func (e *CycleError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: nodes %v are on or behind a cycle", ErrCycle.Error(), e.Remaining)
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// ConditionError reports a condition node whose expression failed to evaluate.
type ConditionError struct {
	NodeID    int64
	Condition string
	Err       error
}

func (e *ConditionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: node %d: %v", ErrConditionEvaluation.Error(), e.NodeID, e.Err)
}

func (e *ConditionError) Unwrap() []error { return []error{ErrConditionEvaluation, e.Err} }
