// Package render draws workflow graphs with graphviz.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/meikuraledutech/workflow/graph"
)

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat returns the Format named by s; the empty string means PNG.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", PNG:
		return PNG, nil
	case SVG:
		return SVG, nil
	}
	return "", fmt.Errorf("render: unsupported format %q", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

const takenColor = "#2d6a2d"

// Draw renders g in the given format. Edges selected by execution are drawn
// bold in green.
func Draw(ctx context.Context, g *graph.Graph, format Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("render: create graphviz: %w", err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.DOT)

	out, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("render: create graph: %w", err)
	}
	defer out.Close()

	out.SetRankDir(cgraph.TBRank)

	gvNodes := make(map[int64]*cgraph.Node, g.Len())
	for _, n := range g.Nodes() {
		gvNode, err := out.CreateNodeByName(strconv.FormatInt(n.ID, 10))
		if err != nil {
			return nil, fmt.Errorf("render: create node %d: %w", n.ID, err)
		}
		gvNode.SetLabel(n.Name)
		applyNodeStyle(gvNode, n.Kind)
		gvNodes[n.ID] = gvNode
	}

	for _, e := range g.Edges() {
		gvEdge, err := out.CreateEdgeByName("", gvNodes[e.From], gvNodes[e.To])
		if err != nil {
			return nil, fmt.Errorf("render: create edge %d -> %d: %w", e.From, e.To, err)
		}
		if e.Branch != graph.BranchNone {
			gvEdge.SetLabel(string(e.Branch))
		}
		if e.Taken() {
			gvEdge.SetColor(takenColor)
			gvEdge.SetStyle(cgraph.BoldEdgeStyle)
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, out, graphviz.Format(format), &buf); err != nil {
		return nil, fmt.Errorf("render: render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// applyNodeStyle sets the graphviz shape for a node kind.
func applyNodeStyle(gvNode *cgraph.Node, kind graph.Kind) {
	switch kind {
	case graph.KindStart:
		gvNode.SetShape(cgraph.CircleShape)
	case graph.KindEnd:
		gvNode.SetShape(cgraph.DoubleCircleShape)
	case graph.KindMessage:
		gvNode.SetShape(cgraph.BoxShape)
	case graph.KindCondition:
		gvNode.SetShape(cgraph.DiamondShape)
	}
}
