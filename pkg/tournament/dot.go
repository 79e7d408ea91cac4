package tournament

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// DOTOptions controls ToDOT output.
type DOTOptions struct {
	// Labels names the vertices; missing entries fall back to the index.
	Labels []string
	// Order, when set, pins vertices left-to-right in this sequence and
	// highlights edges between consecutive entries.
	Order []int
	// Weights prints edge weights as labels.
	Weights bool
}

// ToDOT renders the graph in Graphviz DOT format.
func (g *Digraph) ToDOT(opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph T {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [color=\"#555555\"];\n\n")

	for v := 0; v < g.n; v++ {
		fmt.Fprintf(&buf, "  n%d [label=%q];\n", v, label(opts.Labels, v))
	}

	chain := make(map[[2]int]bool)
	for i := 0; i+1 < len(opts.Order); i++ {
		chain[[2]int{opts.Order[i], opts.Order[i+1]}] = true
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		var attrs []string
		if opts.Weights {
			attrs = append(attrs, fmt.Sprintf("label=%q", strconv.Itoa(e.Weight)))
		}
		if chain[[2]int{e.From, e.To}] {
			attrs = append(attrs, "color=\"#d33682\"", "penwidth=2")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  n%d -> n%d [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(labels []string, v int) string {
	if v < len(labels) && labels[v] != "" {
		return labels[v]
	}
	return strconv.Itoa(v)
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
