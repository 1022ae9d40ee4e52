package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ritzau/mindmap/pkg/dataset"
	"github.com/ritzau/mindmap/pkg/model"
)

func init() {
	color.NoColor = true
}

func TestPrintTree(t *testing.T) {
	ds, err := dataset.Load(dataset.DefaultRef)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	PrintTree(&buf, ds)
	out := buf.String()

	for _, want := range []string{
		"Mind map: sample",
		"(root)",
		"├── ",
		"└── ",
		"(grandchild-1-2)",
		"Summary: 7 nodes, 4 leaves, depth 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestPrintGraph(t *testing.T) {
	root := model.NewDisplayNode(model.ChildSpec{
		ID:       "root",
		Label:    "Root",
		Children: []model.ChildSpec{{ID: "a", Label: "A"}},
	}, model.Position{X: 400, Y: 100})
	root.Data.IsExpanded = true
	leaf := model.NewDisplayNode(model.ChildSpec{ID: "a", Label: "A"}, model.Position{X: 400, Y: 300})

	var buf bytes.Buffer
	PrintGraph(&buf, &model.Graph{
		Nodes: []model.DisplayNode{root, leaf},
		Edges: []model.DisplayEdge{{ID: "root-a", Source: "root", Target: "a"}},
	})
	out := buf.String()

	for _, want := range []string{"Nodes (2):", "expanded", "leaf", "(400, 300)", "Edges (1):", "root -> a"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}
