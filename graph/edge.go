package graph

import (
	"fmt"
	"strings"
)

// DefaultWeight is the weight every edge starts with.
const DefaultWeight = 2

// Branch labels an edge leaving a condition node with the outcome that selects it.
type Branch string

const (
	BranchNone Branch = ""
	BranchYes  Branch = "Yes"
	BranchNo   Branch = "No"
)

// ParseBranch normalizes a branch label. Matching is case-insensitive and
// surrounding whitespace is ignored; the empty string means no label.
func ParseBranch(s string) (Branch, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return BranchNone, nil
	case "yes":
		return BranchYes, nil
	case "no":
		return BranchNo, nil
	}
	return BranchNone, fmt.Errorf("unknown branch label %q", s)
}

// BranchFor returns the label selected by a condition outcome.
func BranchFor(outcome bool) Branch {
	if outcome {
		return BranchYes
	}
	return BranchNo
}

// Edge is a directed connection between two nodes.
// Weight is the execution trace: it drops by one when the edge's branch is taken.
type Edge struct {
	From   int64
	To     int64
	Branch Branch
	Weight int

	initial int
}

// Taken reports whether execution selected this edge.
func (e Edge) Taken() bool {
	return e.Weight < e.initial
}

type edgeKey struct {
	from, to int64
}
