package assembly

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func sampleWorkflow(cond string) *workflow.Workflow {
	return &workflow.Workflow{
		ID:     42,
		Name:   "onboarding",
		Status: "draft",
		Nodes: []workflow.Node{
			{ID: 1, Name: "Start", Kind: "StartNode"},
			{ID: 2, Name: "Message 1", Kind: "MessageNode", Status: ptr("OPEN"), Message: ptr("some")},
			{ID: 3, Name: "Condition", Kind: "ConditionNode", Condition: ptr(cond)},
			{ID: 4, Name: "End", Kind: "EndNode"},
			{ID: 5, Name: "End2", Kind: "EndNode"},
		},
		Edges: []workflow.Edge{
			{ID: 1, FromNodeID: 1, ToNodeID: 2},
			{ID: 2, FromNodeID: 2, ToNodeID: 3},
			{ID: 3, FromNodeID: 3, ToNodeID: 4, Branch: "yes"},
			{ID: 4, FromNodeID: 3, ToNodeID: 5, Branch: "no"},
		},
	}
}

func staticLoader(w *workflow.Workflow) Loader {
	return LoaderFunc(func(_ context.Context, id int64) (*workflow.Workflow, error) {
		if w == nil || w.ID != id {
			return nil, nil
		}
		return w, nil
	})
}

func TestBuild(t *testing.T) {
	g, err := Build(sampleWorkflow("True"))
	require.NoError(t, err)
	assert.Equal(t, 5, g.Len())

	e, ok := g.Edge(3, 4)
	require.True(t, ok)
	assert.Equal(t, graph.BranchYes, e.Branch)
}

func TestBuild_UnknownKind(t *testing.T) {
	w := sampleWorkflow("True")
	w.Nodes[0].Kind = "BaseNode"

	_, err := Build(w)
	var nerr *graph.NodeCreationError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, int64(1), nerr.NodeID)
}

func TestBuild_AttributeMismatch(t *testing.T) {
	w := sampleWorkflow("True")
	w.Nodes[1].Message = nil

	_, err := Build(w)
	require.ErrorIs(t, err, graph.ErrNodeCreation)
}

func TestBuild_DanglingEdge(t *testing.T) {
	w := sampleWorkflow("True")
	w.Edges = append(w.Edges, workflow.Edge{FromNodeID: 5, ToNodeID: 99})

	_, err := Build(w)
	require.ErrorIs(t, err, graph.ErrEdgeCreation)
}

func TestBuild_Invalid(t *testing.T) {
	w := sampleWorkflow("True")
	w.Edges = w.Edges[:2]

	_, err := Build(w)
	require.ErrorIs(t, err, graph.ErrNodeCreation)
}

func TestService_Load(t *testing.T) {
	s := New(staticLoader(sampleWorkflow("True")))

	g, err := s.Load(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 5, g.Len())

	_, err = s.Load(context.Background(), 7)
	require.ErrorIs(t, err, workflow.ErrWorkflowNotFound)
}

func TestService_LoaderError(t *testing.T) {
	boom := errors.New("connection refused")
	s := New(LoaderFunc(func(context.Context, int64) (*workflow.Workflow, error) {
		return nil, boom
	}))

	_, err := s.Run(context.Background(), 1)
	require.ErrorIs(t, err, boom)
}

func TestService_Run(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	s := New(staticLoader(sampleWorkflow("prev_message_id == 2")), WithLogger(logger))

	run, err := s.Run(context.Background(), 42)
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, int64(42), run.WorkflowID)
	assert.Equal(t, map[int64]bool{3: true}, run.Result.Decisions)

	yes, _ := run.Graph.Edge(3, 4)
	no, _ := run.Graph.Edge(3, 5)
	assert.True(t, yes.Taken())
	assert.False(t, no.Taken())

	assert.Contains(t, logs.String(), "workflow executed")
	assert.Contains(t, logs.String(), "run_id="+run.ID)
}

func TestService_RunIDsAreUnique(t *testing.T) {
	s := New(staticLoader(sampleWorkflow("True")))

	a, err := s.Run(context.Background(), 42)
	require.NoError(t, err)
	b, err := s.Run(context.Background(), 42)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestService_RunRejectsInvalid(t *testing.T) {
	w := sampleWorkflow("True")
	w.Edges = w.Edges[:3]
	s := New(staticLoader(w))

	run, err := s.Run(context.Background(), 42)
	assert.Nil(t, run)
	require.ErrorIs(t, err, graph.ErrNodeCreation)
}

func TestService_RunRecoversConditionFailure(t *testing.T) {
	s := New(staticLoader(sampleWorkflow("missing > 0")),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	run, err := s.Run(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, run.Result.Failures, 1)
	assert.Empty(t, run.Result.Decisions)
}
