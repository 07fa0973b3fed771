// Package graph builds, validates and executes workflow graphs.
//
// A Graph holds typed nodes keyed by the ids the store assigned and directed
// edges keyed by their endpoints. Construction rejects malformed nodes and
// dangling edges immediately; Validate checks the per-kind degree rules;
// Execute walks the nodes in topological order and resolves every condition
// node, marking the selected outgoing edge by decrementing its weight.
//
// A Graph is not safe for concurrent mutation. Use one instance per request.
package graph

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"

	"github.com/meikuraledutech/workflow/condition"
)

// Evaluator evaluates a condition expression against a node's scope.
type Evaluator interface {
	Evaluate(expression string, scope condition.Scope) (bool, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(expression string, scope condition.Scope) (bool, error)

// Evaluate calls f(expression, scope).
func (f EvaluatorFunc) Evaluate(expression string, scope condition.Scope) (bool, error) {
	return f(expression, scope)
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used during execution.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithEvaluator replaces the condition evaluator.
func WithEvaluator(ev Evaluator) Option {
	return func(g *Graph) {
		if ev != nil {
			g.evaluator = ev
		}
	}
}

// Graph is an in-memory workflow graph.
type Graph struct {
	nodes map[int64]*Node
	edges map[edgeKey]*Edge

	// Adjacency in edge insertion order.
	out map[int64][]int64
	in  map[int64][]int64

	logger    *slog.Logger
	evaluator Evaluator
}

// New creates an empty Graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes:     make(map[int64]*Node),
		edges:     make(map[edgeKey]*Edge),
		out:       make(map[int64][]int64),
		in:        make(map[int64][]int64),
		logger:    slog.Default(),
		evaluator: condition.NewEngine(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddNode inserts a node. It fails with a NodeCreationError when the name is
// blank, the id is already taken, or attrs does not exactly match the
// attribute schema of kind.
func (g *Graph) AddNode(id int64, name string, kind Kind, attrs Attributes) error {
	if strings.TrimSpace(name) == "" {
		return &NodeCreationError{NodeID: id, Rule: "name must not be empty"}
	}
	if _, ok := g.nodes[id]; ok {
		return &NodeCreationError{NodeID: id, Rule: "duplicate node id"}
	}
	if err := CheckAttributes(kind, attrs); err != nil {
		return &NodeCreationError{NodeID: id, Rule: err.Error()}
	}

	g.nodes[id] = &Node{ID: id, Name: name, Kind: kind, Attributes: attrs}
	return nil
}

// AddEdge inserts an edge with DefaultWeight. See AddWeightedEdge.
func (g *Graph) AddEdge(from, to int64, branch string) error {
	return g.AddWeightedEdge(from, to, branch, DefaultWeight)
}

// AddWeightedEdge inserts or overwrites the edge from -> to. Both endpoints
// must already be in the graph and branch must be empty, "yes" or "no" in
// any letter case; otherwise it fails with an EdgeCreationError.
func (g *Graph) AddWeightedEdge(from, to int64, branch string, weight int) error {
	if _, ok := g.nodes[from]; !ok {
		return &EdgeCreationError{From: from, To: to, Msg: "source node does not exist"}
	}
	if _, ok := g.nodes[to]; !ok {
		return &EdgeCreationError{From: from, To: to, Msg: "target node does not exist"}
	}
	label, err := ParseBranch(branch)
	if err != nil {
		return &EdgeCreationError{From: from, To: to, Msg: err.Error()}
	}

	key := edgeKey{from, to}
	if _, ok := g.edges[key]; !ok {
		g.out[from] = append(g.out[from], to)
		g.in[to] = append(g.in[to], from)
	}
	g.edges[key] = &Edge{From: from, To: to, Branch: label, Weight: weight, initial: weight}
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id int64) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns copies of all nodes ordered by id.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, *n)
	}
	slices.SortFunc(nodes, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })
	return nodes
}

// Edge returns a copy of the edge from -> to.
func (g *Graph) Edge(from, to int64) (Edge, bool) {
	e, ok := g.edges[edgeKey{from, to}]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// Edges returns copies of all edges ordered by source, then target.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, *e)
	}
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
	return edges
}

// OutEdges returns the edges leaving id in insertion order.
func (g *Graph) OutEdges(id int64) []Edge {
	edges := make([]Edge, 0, len(g.out[id]))
	for _, to := range g.out[id] {
		edges = append(edges, *g.edges[edgeKey{id, to}])
	}
	return edges
}

// InEdges returns the edges entering id in insertion order.
func (g *Graph) InEdges(id int64) []Edge {
	edges := make([]Edge, 0, len(g.in[id]))
	for _, from := range g.in[id] {
		edges = append(edges, *g.edges[edgeKey{from, id}])
	}
	return edges
}
