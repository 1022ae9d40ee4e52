// Package render exports a displayed mind-map graph to Graphviz DOT and SVG.
//
// Nodes are pinned to their canvas positions, so the picture matches what the
// browser shows rather than what a Graphviz layout engine would choose.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/ritzau/mindmap/pkg/model"
)

// pointsPerInch converts canvas units (treated as points) to Graphviz inches
const pointsPerInch = 72.0

const (
	defaultNodeSize = 64.0
	defaultColor    = "#64748b"
)

// Options configures DOT export
type Options struct {
	// Title is written as the graph label when non-empty
	Title string
	// ShowIDs appends the node ID below the label
	ShowIDs bool
}

// ToDOT converts a displayed graph to Graphviz DOT format.
// Canvas y grows downwards, so it is negated for Graphviz.
func ToDOT(g *model.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph mindmap {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, fontsize=10, fontcolor=white];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	if len(g.Edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n model.DisplayNode, opts Options) []string {
	label := n.Data.Label
	if opts.ShowIDs {
		label += "\n" + n.ID
	}

	size := n.Data.Size
	if size <= 0 {
		size = defaultNodeSize
	}

	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%s,%s!\"", inches(n.Position.X), inches(-n.Position.Y)),
		fmt.Sprintf("width=%s", inches(size)),
		fmt.Sprintf("fillcolor=%q", dotColor(n.Data.Color)),
	}
	if n.Expandable() && !n.Data.IsExpanded {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

func edgeAttrs(e model.DisplayEdge) []string {
	attrs := []string{fmt.Sprintf("color=%q", dotColor(e.Style.Stroke))}
	if e.Style.StrokeWidth > 0 {
		attrs = append(attrs, fmt.Sprintf("penwidth=%g", e.Style.StrokeWidth))
	}
	if e.Animated {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

func inches(v float64) string {
	return fmt.Sprintf("%.3f", v/pointsPerInch)
}

// dotColor keeps colors Graphviz understands and maps CSS expressions
// such as hsl(var(--primary)) to a neutral default
func dotColor(c string) string {
	if strings.HasPrefix(c, "#") {
		return c
	}
	if c != "" && !strings.ContainsAny(c, "() ") {
		return c
	}
	return defaultColor
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// The neato engine honours the pinned node positions.
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

	gv.SetLayout(graphviz.NEATO)

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// Export renders g in the requested format: "dot" or "svg"
func Export(ctx context.Context, g *model.Graph, format string, opts Options) ([]byte, error) {
	dot := ToDOT(g, opts)
	switch format {
	case "dot":
		return []byte(dot), nil
	case "svg":
		return RenderSVG(ctx, dot)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
