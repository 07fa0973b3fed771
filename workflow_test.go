package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRefs(t *testing.T) {
	edges := []Edge{
		{FromNodeRef: "a", ToNodeRef: "b"},
		{FromNodeID: 7, ToNodeRef: "a"},
	}

	require.NoError(t, ResolveRefs(edges, map[string]int64{"a": 1, "b": 2}))
	assert.Equal(t, int64(1), edges[0].FromNodeID)
	assert.Equal(t, int64(2), edges[0].ToNodeID)
	assert.Equal(t, int64(7), edges[1].FromNodeID)
	assert.Equal(t, int64(1), edges[1].ToNodeID)
}

func TestResolveRefs_Unknown(t *testing.T) {
	err := ResolveRefs([]Edge{{FromNodeRef: "a", ToNodeRef: "zz"}}, map[string]int64{"a": 1})
	require.ErrorIs(t, err, ErrUnknownRef)
	assert.Contains(t, err.Error(), `"zz"`)
}

func TestClearRefs(t *testing.T) {
	w := &Workflow{
		Nodes: []Node{{Ref: "a"}},
		Edges: []Edge{{FromNodeRef: "a", ToNodeRef: "a"}},
	}
	w.ClearRefs()

	assert.Empty(t, w.Nodes[0].Ref)
	assert.Empty(t, w.Edges[0].FromNodeRef)
	assert.Empty(t, w.Edges[0].ToNodeRef)
}
