package render

import (
	"context"
	"strings"
	"testing"

	"github.com/ritzau/mindmap/pkg/model"
)

func testGraph() *model.Graph {
	root := model.NewDisplayNode(model.ChildSpec{
		ID:       "root",
		Label:    "Root",
		Children: []model.ChildSpec{{ID: "a", Label: "A"}},
	}, model.Position{X: 144, Y: 72})
	root.Data.IsExpanded = true

	child := model.NewDisplayNode(model.ChildSpec{ID: "a", Label: "A", Color: "#ff0000"}, model.Position{X: 144, Y: 216})

	return &model.Graph{
		Nodes: []model.DisplayNode{root, child},
		Edges: []model.DisplayEdge{{
			ID:       model.EdgeID("root", "a"),
			Source:   "root",
			Target:   "a",
			Animated: true,
			Style:    model.EdgeStyle{Stroke: "hsl(var(--primary))", StrokeWidth: 2},
		}},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testGraph(), Options{Title: "Sample"})

	for _, want := range []string{
		"digraph mindmap {",
		`label="Sample"`,
		`"root" [label="Root", pos="2.000,-1.000!"`,
		`"a" [label="A", pos="2.000,-3.000!"`,
		`fillcolor="#ff0000"`,
		`"root" -> "a" [color="#64748b", penwidth=2, style=dashed];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q\n%s", want, dot)
		}
	}

	if strings.Contains(dot, "var(--primary)") {
		t.Error("CSS color leaked into DOT")
	}
}

func TestToDOTMarksCollapsedNodes(t *testing.T) {
	g := testGraph()
	g.Nodes[0].Data.IsExpanded = false

	dot := ToDOT(g, Options{})
	if !strings.Contains(dot, "peripheries=2") {
		t.Errorf("collapsed expandable node not marked:\n%s", dot)
	}
}

func TestToDOTShowIDs(t *testing.T) {
	dot := ToDOT(testGraph(), Options{ShowIDs: true})
	if !strings.Contains(dot, `label="Root\nroot"`) {
		t.Errorf("ID not in label:\n%s", dot)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	if _, err := Export(context.Background(), testGraph(), "png", Options{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestExportDOT(t *testing.T) {
	out, err := Export(context.Background(), model.NewGraph(), "dot", Options{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if string(out) != "digraph mindmap {\n  bgcolor=\"transparent\";\n  splines=true;\n  node [shape=circle, style=filled, fixedsize=true, fontsize=10, fontcolor=white];\n\n}\n" {
		t.Errorf("unexpected empty graph DOT:\n%s", out)
	}
}
