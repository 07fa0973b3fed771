// Package assembly turns persisted workflows into executable graphs.
package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/graph"
)

// Loader fetches a workflow with its nodes and edges.
// It returns nil, nil when the workflow does not exist.
type Loader interface {
	GetWorkflow(ctx context.Context, workflowID int64) (*workflow.Workflow, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, workflowID int64) (*workflow.Workflow, error)

// GetWorkflow calls f(ctx, workflowID).
func (f LoaderFunc) GetWorkflow(ctx context.Context, workflowID int64) (*workflow.Workflow, error) {
	return f(ctx, workflowID)
}

// Build constructs a graph from w's nodes and edges and validates it.
// Nodes are inserted before edges, both in record order. The first
// construction or validation error is returned and no graph is produced.
func Build(w *workflow.Workflow, opts ...graph.Option) (*graph.Graph, error) {
	g := graph.New(opts...)

	for _, n := range w.Nodes {
		kind, err := graph.ParseKind(n.Kind)
		if err != nil {
			return nil, &graph.NodeCreationError{NodeID: n.ID, Rule: err.Error()}
		}
		attrs := graph.Attributes{Status: n.Status, Message: n.Message, Condition: n.Condition}
		if err := g.AddNode(n.ID, n.Name, kind, attrs); err != nil {
			return nil, err
		}
	}
	for _, e := range w.Edges {
		if err := g.AddEdge(e.FromNodeID, e.ToNodeID, e.Branch); err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Run is one execution of a workflow.
type Run struct {
	ID         string
	WorkflowID int64
	Graph      *graph.Graph
	Result     *graph.Result
	Started    time.Time
	Duration   time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger. It is also handed to every graph.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGraphOptions appends options applied to every graph the service builds.
func WithGraphOptions(opts ...graph.Option) Option {
	return func(s *Service) {
		s.graphOpts = append(s.graphOpts, opts...)
	}
}

// Service loads workflows and drives validation and execution.
type Service struct {
	loader    Loader
	logger    *slog.Logger
	graphOpts []graph.Option
}

// New creates a Service reading workflows from loader.
func New(loader Loader, opts ...Option) *Service {
	s := &Service{loader: loader, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the workflow and builds a validated graph from it.
// It returns workflow.ErrWorkflowNotFound when the loader finds nothing.
func (s *Service) Load(ctx context.Context, workflowID int64) (*graph.Graph, error) {
	w, err := s.loader.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("assembly: load workflow %d: %w", workflowID, err)
	}
	if w == nil {
		return nil, workflow.ErrWorkflowNotFound
	}

	return Build(w, s.options(s.logger.With(slog.Int64("workflow_id", workflowID)))...)
}

// Run loads, validates and executes the workflow.
func (s *Service) Run(ctx context.Context, workflowID int64) (*Run, error) {
	run := &Run{ID: uuid.NewString(), WorkflowID: workflowID, Started: time.Now()}
	logger := s.logger.With(
		slog.Int64("workflow_id", workflowID),
		slog.String("run_id", run.ID),
	)

	w, err := s.loader.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("assembly: load workflow %d: %w", workflowID, err)
	}
	if w == nil {
		return nil, workflow.ErrWorkflowNotFound
	}

	g, err := Build(w, s.options(logger)...)
	if err != nil {
		logger.InfoContext(ctx, "workflow rejected", slog.String("error", err.Error()))
		return nil, err
	}

	res, err := g.Execute()
	if err != nil {
		logger.InfoContext(ctx, "workflow execution refused", slog.String("error", err.Error()))
		return nil, err
	}

	run.Graph = g
	run.Result = res
	run.Duration = time.Since(run.Started)

	logger.InfoContext(ctx, "workflow executed",
		slog.Int("nodes", g.Len()),
		slog.Int("decisions", len(res.Decisions)),
		slog.Int("failures", len(res.Failures)),
		slog.Duration("duration", run.Duration),
	)
	return run, nil
}

// options returns the graph options for one build; the logger comes first so
// explicit WithGraphOptions can override it.
func (s *Service) options(logger *slog.Logger) []graph.Option {
	opts := make([]graph.Option, 0, len(s.graphOpts)+1)
	opts = append(opts, graph.WithLogger(logger))
	return append(opts, s.graphOpts...)
}
