package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ritzau/mindmap/pkg/dataset"
	"github.com/ritzau/mindmap/pkg/model"
)

// PrintTree prints the dataset template as an indented tree with colors
func PrintTree(w io.Writer, ds *dataset.Dataset) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	faint := color.New(color.Faint)

	// Header
	bold.Fprintf(w, "Mind map: %s\n", ds.Name)
	bold.Fprintln(w, strings.Repeat("=", len(ds.Name)+10))
	if ds.Description != "" {
		fmt.Fprintln(w, ds.Description)
	}
	if src := ds.Source(); src != "" {
		faint.Fprintf(w, "Source: %s\n", src)
	}
	fmt.Fprintln(w)

	printSpec(w, ds.Root, "", true, true, cyan, faint)
	fmt.Fprintln(w)

	stats := ds.Index().Stats()
	color.New(color.FgGreen).Fprintf(w, "Summary: %d nodes, %d leaves, depth %d\n", stats.Nodes, stats.Leaves, stats.Depth)
}

func printSpec(w io.Writer, spec model.ChildSpec, prefix string, last, root bool, branch, faint *color.Color) {
	line := prefix
	childPrefix := prefix
	if !root {
		if last {
			line += "└── "
			childPrefix += "    "
		} else {
			line += "├── "
			childPrefix += "│   "
		}
	}

	fmt.Fprint(w, line)
	if spec.HasChildren() {
		branch.Fprint(w, spec.Label)
	} else {
		fmt.Fprint(w, spec.Label)
	}
	faint.Fprintf(w, " (%s)", spec.ID)
	if spec.Icon != "" {
		faint.Fprintf(w, " [%s]", spec.Icon)
	}
	fmt.Fprintln(w)

	for i, c := range spec.Children {
		printSpec(w, c, childPrefix, i == len(spec.Children)-1, false, branch, faint)
	}
}

// PrintGraph prints the displayed nodes and edges of a session
func PrintGraph(w io.Writer, g *model.Graph) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	faint := color.New(color.Faint)

	bold.Fprintf(w, "Nodes (%d):\n", len(g.Nodes))
	for _, n := range g.Nodes {
		state := "leaf"
		stateColor := faint
		if n.Expandable() {
			if n.Data.IsExpanded {
				state, stateColor = "expanded", green
			} else {
				state, stateColor = "collapsed", yellow
			}
		}
		fmt.Fprintf(w, "  %-16s %-24s (%g, %g) ", n.ID, n.Data.Label, n.Position.X, n.Position.Y)
		stateColor.Fprintln(w, state)
	}

	bold.Fprintf(w, "Edges (%d):\n", len(g.Edges))
	for _, e := range g.Edges {
		fmt.Fprintf(w, "  %s -> %s\n", e.Source, e.Target)
	}
}
