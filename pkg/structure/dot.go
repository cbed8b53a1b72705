// Package structure renders the shape of a value tree as a node-link
// diagram. It complements the treemap view: instead of proportional areas
// it shows the nesting itself, with one box per node and edges from each
// branch to its children.
//
// ToDOT produces Graphviz DOT text; RenderSVG and RenderPNG rasterize it
// through the embedded Graphviz engine.
package structure

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/mosaiclabs/mosaic/pkg/tree"
)

// ToDOT converts a value tree to Graphviz DOT format. Leaves are labeled
// "label (weight)"; branches show their reduced value. Child order in the
// DOT output follows input order.
func ToDOT(t tree.Tree) string {
	var buf bytes.Buffer
	buf.WriteString("digraph tree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	next := 0
	writeNode(&buf, t, &next)

	buf.WriteString("}\n")
	return buf.String()
}

// writeNode emits the node's declaration and its edges, returning the
// node's DOT identifier.
func writeNode(buf *bytes.Buffer, t tree.Tree, next *int) string {
	id := "n" + strconv.Itoa(*next)
	*next++

	switch n := t.(type) {
	case *tree.Leaf:
		fmt.Fprintf(buf, "  %s [label=%q];\n", id, fmt.Sprintf("%s (%s)", n.Label, formatWeight(n.Weight)))
	case *tree.Branch:
		fmt.Fprintf(buf, "  %s [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n",
			id, formatWeight(n.Total()))
		for _, c := range n.Children {
			childID := writeNode(buf, c, next)
			fmt.Fprintf(buf, "  %s -> %s;\n", id, childID)
		}
	}
	return id
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
