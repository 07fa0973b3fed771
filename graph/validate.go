package graph

import "slices"

// Validate checks every node against the degree rules of its kind and
// returns a NodeCreationError for the first violation, visiting nodes in
// ascending id order. It never modifies the graph. An empty graph is valid.
//
//	StartNode:     exactly one outgoing edge, no incoming edges
//	MessageNode:   exactly one outgoing edge
//	ConditionNode: exactly two outgoing edges, each labelled, at least one incoming edge
//	EndNode:       at least one incoming edge, no outgoing edges
func (g *Graph) Validate() error {
	ids := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		if rule := g.violation(g.nodes[id]); rule != "" {
			return &NodeCreationError{NodeID: id, Rule: rule}
		}
	}
	return nil
}

// violation returns the first rule n breaks, or "".
func (g *Graph) violation(n *Node) string {
	outgoing := len(g.out[n.ID])
	incoming := len(g.in[n.ID])

	switch n.Kind {
	case KindStart:
		if outgoing != 1 {
			return "start node must have exactly one outgoing edge"
		}
		if incoming != 0 {
			return "start node cannot have incoming edges"
		}
	case KindMessage:
		if outgoing != 1 {
			return "message node must have exactly one outgoing edge"
		}
	case KindCondition:
		if outgoing != 2 {
			return "condition node must have exactly two outgoing edges"
		}
		if incoming == 0 {
			return "condition node must have at least one incoming edge"
		}
		for _, to := range g.out[n.ID] {
			if g.edges[edgeKey{n.ID, to}].Branch == BranchNone {
				return "edges leaving a condition node must have a branch label"
			}
		}
	case KindEnd:
		if incoming == 0 {
			return "end node must have at least one incoming edge"
		}
		if outgoing != 0 {
			return "end node cannot have outgoing edges"
		}
	}
	return ""
}
