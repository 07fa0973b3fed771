package render

import (
	"context"
	"testing"

	"github.com/meikuraledutech/workflow/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executedGraph(t *testing.T) *graph.Graph {
	t.Helper()

	g := graph.New()
	require.NoError(t, g.AddNode(1, "Start", graph.KindStart, graph.Attributes{}))
	require.NoError(t, g.AddNode(2, "Message 1", graph.KindMessage, graph.MessageAttributes("OPEN", "some")))
	require.NoError(t, g.AddNode(3, "Condition", graph.KindCondition, graph.ConditionAttributes("True")))
	require.NoError(t, g.AddNode(4, "End", graph.KindEnd, graph.Attributes{}))
	require.NoError(t, g.AddNode(5, "End2", graph.KindEnd, graph.Attributes{}))
	require.NoError(t, g.AddEdge(1, 2, ""))
	require.NoError(t, g.AddEdge(2, 3, ""))
	require.NoError(t, g.AddEdge(3, 4, "Yes"))
	require.NoError(t, g.AddEdge(3, 5, "No"))

	_, err := g.Execute()
	require.NoError(t, err)
	return g
}

func TestDrawPNG(t *testing.T) {
	png, err := Draw(context.Background(), executedGraph(t), PNG)
	require.NoError(t, err)
	require.True(t, len(png) > 8, "PNG should be larger than header")

	// PNG magic bytes.
	assert.Equal(t, byte(0x89), png[0])
	assert.Equal(t, byte('P'), png[1])
	assert.Equal(t, byte('N'), png[2])
	assert.Equal(t, byte('G'), png[3])
}

func TestDrawSVG(t *testing.T) {
	svg, err := Draw(context.Background(), executedGraph(t), SVG)
	require.NoError(t, err)

	out := string(svg)
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "Condition")
	assert.Contains(t, out, ">Yes<")
	assert.Contains(t, out, takenColor)
}

func TestDrawEmpty(t *testing.T) {
	svg, err := Draw(context.Background(), graph.New(), SVG)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)

	f, err = ParseFormat("SVG")
	require.NoError(t, err)
	assert.Equal(t, SVG, f)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	_, err = ParseFormat("gif")
	assert.Error(t, err)
}
