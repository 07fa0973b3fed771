package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/meikuraledutech/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func onboarding() *workflow.Workflow {
	return &workflow.Workflow{
		Name:   "onboarding",
		Status: "draft",
		Nodes: []workflow.Node{
			{Ref: "start", Name: "Start", Kind: "StartNode"},
			{Ref: "msg", Name: "Welcome", Kind: "MessageNode", Status: ptr("OPEN"), Message: ptr("hello")},
			{Ref: "cond", Name: "Check", Kind: "ConditionNode", Condition: ptr("prev_message_id > 0")},
			{Ref: "yes", Name: "Done", Kind: "EndNode"},
			{Ref: "no", Name: "Abort", Kind: "EndNode"},
		},
		Edges: []workflow.Edge{
			{FromNodeRef: "start", ToNodeRef: "msg"},
			{FromNodeRef: "msg", ToNodeRef: "cond"},
			{FromNodeRef: "cond", ToNodeRef: "yes", Branch: "Yes"},
			{FromNodeRef: "cond", ToNodeRef: "no", Branch: "No"},
		},
	}
}

func TestCreateWorkflow(t *testing.T) {
	ctx := context.Background()
	s := New()

	w, err := s.CreateWorkflow(ctx, onboarding())
	require.NoError(t, err)
	require.NotZero(t, w.ID)

	for _, n := range w.Nodes {
		assert.NotZero(t, n.ID)
		assert.Equal(t, w.ID, n.WorkflowID)
		assert.Empty(t, n.Ref)
	}
	assert.Equal(t, w.Nodes[0].ID, w.Edges[0].FromNodeID)
	assert.Equal(t, w.Nodes[1].ID, w.Edges[0].ToNodeID)
	assert.Empty(t, w.Edges[0].FromNodeRef)

	got, err := s.GetWorkflow(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w, got)
}

func TestCreateWorkflow_UnknownRef(t *testing.T) {
	ctx := context.Background()
	s := New()

	w := onboarding()
	w.Edges[0].ToNodeRef = "missing"

	_, err := s.CreateWorkflow(ctx, w)
	require.ErrorIs(t, err, workflow.ErrUnknownRef)

	all, err := s.ListWorkflows(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateWorkflow_DuplicateEdge(t *testing.T) {
	w := onboarding()
	w.Edges = append(w.Edges, workflow.Edge{FromNodeRef: "start", ToNodeRef: "msg"})

	_, err := New().CreateWorkflow(context.Background(), w)
	require.ErrorIs(t, err, workflow.ErrDuplicateEdge)
}

func TestGetWorkflow_Missing(t *testing.T) {
	w, err := New().GetWorkflow(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestUpdateWorkflow(t *testing.T) {
	ctx := context.Background()
	s := New()
	w, err := s.CreateWorkflow(ctx, onboarding())
	require.NoError(t, err)

	require.NoError(t, s.UpdateWorkflow(ctx, &workflow.Workflow{ID: w.ID, Name: "renamed", Status: "active"}))
	got, _ := s.GetWorkflow(ctx, w.ID)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, "active", got.Status)
	assert.Len(t, got.Nodes, 5)

	err = s.UpdateWorkflow(ctx, &workflow.Workflow{ID: 999})
	assert.ErrorIs(t, err, workflow.ErrWorkflowNotFound)
}

func TestDeleteWorkflow_Cascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	w, err := s.CreateWorkflow(ctx, onboarding())
	require.NoError(t, err)
	other, err := s.CreateWorkflow(ctx, onboarding())
	require.NoError(t, err)

	require.NoError(t, s.DeleteWorkflow(ctx, w.ID))
	require.NoError(t, s.DeleteWorkflow(ctx, w.ID))

	got, _ := s.GetWorkflow(ctx, w.ID)
	assert.Nil(t, got)
	n, _ := s.GetNode(ctx, w.Nodes[0].ID)
	assert.Nil(t, n)
	e, _ := s.GetEdge(ctx, w.Edges[0].ID)
	assert.Nil(t, e)

	kept, _ := s.GetWorkflow(ctx, other.ID)
	require.NotNil(t, kept)
	assert.Len(t, kept.Edges, 4)
}

func TestNodes(t *testing.T) {
	ctx := context.Background()
	s := New()
	w, err := s.CreateWorkflow(ctx, &workflow.Workflow{Name: "empty", Status: "draft"})
	require.NoError(t, err)

	node := &workflow.Node{Name: "Start", Kind: "StartNode"}
	id, err := s.AddNode(ctx, w.ID, node)
	require.NoError(t, err)
	assert.Equal(t, id, node.ID)

	_, err = s.AddNode(ctx, 999, &workflow.Node{Name: "x", Kind: "EndNode"})
	assert.ErrorIs(t, err, workflow.ErrWorkflowNotFound)

	require.NoError(t, s.UpdateNode(ctx, &workflow.Node{ID: id, Name: "Begin", Kind: "StartNode"}))
	got, err := s.GetNode(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Begin", got.Name)
	assert.Equal(t, w.ID, got.WorkflowID)

	assert.ErrorIs(t, s.UpdateNode(ctx, &workflow.Node{ID: 999}), workflow.ErrNodeNotFound)

	nodes, err := s.ListNodes(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)

	empty, err := s.ListNodes(ctx, 999)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestDeleteNode_MarksWorkflow(t *testing.T) {
	ctx := context.Background()
	s := New()
	w, err := s.CreateWorkflow(ctx, onboarding())
	require.NoError(t, err)

	require.NoError(t, s.DeleteNode(ctx, w.Nodes[1].ID))

	got, _ := s.GetWorkflow(ctx, w.ID)
	assert.Equal(t, workflow.StatusNoNecessaryNode, got.Status)
	assert.Len(t, got.Nodes, 4)
	assert.Len(t, got.Edges, 2, "edges touching the node are removed")

	require.NoError(t, s.DeleteNode(ctx, 999))
}

func TestEdges(t *testing.T) {
	ctx := context.Background()
	s := New()
	w, err := s.CreateWorkflow(ctx, onboarding())
	require.NoError(t, err)
	start, done := w.Nodes[0].ID, w.Nodes[3].ID

	_, err = s.AddEdge(ctx, &workflow.Edge{FromNodeID: start, ToNodeID: 999})
	assert.ErrorIs(t, err, workflow.ErrNodeNotFound)

	_, err = s.AddEdge(ctx, &workflow.Edge{FromNodeID: w.Nodes[0].ID, ToNodeID: w.Nodes[1].ID})
	assert.ErrorIs(t, err, workflow.ErrDuplicateEdge)

	edge := &workflow.Edge{FromNodeID: start, ToNodeID: done}
	id, err := s.AddEdge(ctx, edge)
	require.NoError(t, err)

	edge.Branch = "Yes"
	require.NoError(t, s.UpdateEdge(ctx, edge))
	got, err := s.GetEdge(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Yes", got.Branch)

	assert.ErrorIs(t, s.UpdateEdge(ctx, &workflow.Edge{ID: 999}), workflow.ErrEdgeNotFound)

	dup := *got
	dup.ToNodeID = w.Nodes[1].ID
	assert.ErrorIs(t, s.UpdateEdge(ctx, &dup), workflow.ErrDuplicateEdge)

	edges, err := s.ListEdges(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, edges, 5)

	require.NoError(t, s.DeleteEdge(ctx, id))
	gone, _ := s.GetEdge(ctx, id)
	assert.Nil(t, gone)
}

func TestDropSchema(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.CreateWorkflow(ctx, onboarding())
	require.NoError(t, err)

	require.NoError(t, s.DropSchema(ctx))
	all, _ := s.ListWorkflows(ctx)
	assert.Empty(t, all)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().GetWorkflow(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := s.CreateWorkflow(ctx, onboarding())
			if assert.NoError(t, err) {
				_, err = s.GetWorkflow(ctx, w.ID)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	all, err := s.ListWorkflows(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}
