package graph

import (
	"slices"

	"github.com/meikuraledutech/workflow/condition"
)

// Result records one execution pass.
type Result struct {
	// Order is the topological order the nodes were visited in.
	Order []int64
	// Decisions maps each successfully evaluated condition node to its outcome.
	Decisions map[int64]bool
	// Failures lists the condition nodes whose expression could not be evaluated.
	Failures []*ConditionError
}

// TopologicalOrder returns the node ids ordered so that every edge points
// forward. Among nodes that are ready at the same time the lowest id comes
// first. It fails with a CycleError when the graph is not acyclic.
func (g *Graph) TopologicalOrder() ([]int64, error) {
	indegree := make(map[int64]int, len(g.nodes))
	ready := make([]int64, 0)
	for id := range g.nodes {
		indegree[id] = len(g.in[id])
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	slices.Sort(ready)

	order := make([]int64, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, to := range g.out[id] {
			indegree[to]--
			if indegree[to] == 0 {
				i, _ := slices.BinarySearch(ready, to)
				ready = slices.Insert(ready, i, to)
			}
		}
	}

	if len(order) != len(g.nodes) {
		remaining := make([]int64, 0, len(g.nodes)-len(order))
		for id, deg := range indegree {
			if deg > 0 {
				remaining = append(remaining, id)
			}
		}
		slices.Sort(remaining)
		return nil, &CycleError{Remaining: remaining}
	}
	return order, nil
}

// Execute orders the graph topologically, validates it and resolves every
// condition node in that order.
//
// A condition node is evaluated with prev_message_id bound to the source of
// its most recently inserted incoming edge. The outgoing edge whose branch
// matches the outcome has its weight decremented; the other is left alone.
// Evaluation failures are logged and recorded in Result.Failures and do not
// stop the pass. Cycle and validation errors are returned before any weight
// is touched.
func (g *Graph) Execute() (*Result, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	res := &Result{Order: order, Decisions: make(map[int64]bool)}
	for _, id := range order {
		n := g.nodes[id]
		if n.Kind == KindCondition {
			g.resolve(n, res)
			continue
		}
		if g.decidedBy(id, res) {
			g.logger.Debug("node reached after condition",
				"node_id", id,
				"node_kind", string(n.Kind),
			)
		}
	}
	return res, nil
}

// resolve evaluates a condition node and marks the selected branch.
func (g *Graph) resolve(n *Node, res *Result) {
	preds := g.in[n.ID]
	if len(preds) == 0 {
		return
	}
	scope := condition.Scope{PrevMessageID: preds[len(preds)-1]}

	outcome, err := g.evaluator.Evaluate(n.Condition(), scope)
	if err != nil {
		cerr := &ConditionError{NodeID: n.ID, Condition: n.Condition(), Err: err}
		res.Failures = append(res.Failures, cerr)
		g.logger.Error("condition evaluation failed",
			"node_id", n.ID,
			"condition", n.Condition(),
			"error", err,
		)
		return
	}

	res.Decisions[n.ID] = outcome
	selected := BranchFor(outcome)
	for _, to := range g.out[n.ID] {
		if e := g.edges[edgeKey{n.ID, to}]; e.Branch == selected {
			e.Weight--
		}
	}
}

// decidedBy reports whether id has incoming edges and every one of them
// leaves a condition node that has already been decided.
func (g *Graph) decidedBy(id int64, res *Result) bool {
	preds := g.in[id]
	if len(preds) == 0 {
		return false
	}
	for _, from := range preds {
		if _, ok := res.Decisions[from]; !ok {
			return false
		}
	}
	return true
}
