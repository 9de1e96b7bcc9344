package topology

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts a graph and its layering to Graphviz DOT format. Vertices
// of the same layer share a rank so the drawing reads as stacked rings from
// nose to tail; unreached vertices are drawn in red and the far-end vertex
// is double-circled. A nil layering draws the bare graph.
func ToDOT(g *Graph, l *Layering) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=10, width=0.3];\n")
	buf.WriteString("\n")

	if l != nil {
		for d, layer := range l.Layers {
			fmt.Fprintf(&buf, "  subgraph layer_%d {\n    rank=same;\n", d)
			for _, v := range layer {
				fmt.Fprintf(&buf, "    v%d [%s];\n", v, vertexAttrs(v, d, l))
			}
			buf.WriteString("  }\n")
		}
		for _, v := range l.Unreached {
			fmt.Fprintf(&buf, "  v%d [label=\"%d\", fillcolor=\"#f4c7c3\"];\n", v, v)
		}
	} else {
		for v := 0; v < g.Len(); v++ {
			fmt.Fprintf(&buf, "  v%d [label=\"%d\"];\n", v, v)
		}
	}

	buf.WriteString("\n")
	for v := 0; v < g.Len(); v++ {
		for _, u := range g.Neighbors(v) {
			if u > v {
				fmt.Fprintf(&buf, "  v%d -- v%d;\n", v, u)
			}
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func vertexAttrs(v, d int, l *Layering) string {
	attrs := fmt.Sprintf("label=\"%d\\nd=%d\"", v, d)
	switch v {
	case l.Root:
		attrs += ", fillcolor=\"#c6e5d9\""
	case l.Far:
		attrs += ", shape=doublecircle, fillcolor=\"#c6e5d9\""
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
