package expand

import (
	"reflect"
	"sort"
	"testing"

	"github.com/ritzau/mindmap/pkg/canvas"
	"github.com/ritzau/mindmap/pkg/layout"
	"github.com/ritzau/mindmap/pkg/model"
)

func sampleChildren() []model.ChildSpec {
	return []model.ChildSpec{
		{
			ID:    "child-1",
			Label: "Child 1",
			Children: []model.ChildSpec{
				{ID: "grandchild-1-1", Label: "Grandchild 1.1"},
				{ID: "grandchild-1-2", Label: "Grandchild 1.2"},
			},
		},
		{
			ID:       "child-2",
			Label:    "Child 2",
			Children: []model.ChildSpec{{ID: "grandchild-2-1", Label: "Grandchild 2.1"}},
		},
		{ID: "child-3", Label: "Child 3"},
	}
}

func newSampleStore(children []model.ChildSpec) *canvas.Store {
	root := model.NewDisplayNode(model.ChildSpec{
		ID:       "root",
		Label:    "Main Node",
		Children: children,
	}, model.Position{X: 400, Y: 100})
	return canvas.New([]model.DisplayNode{root}, nil)
}

func newController(t *testing.T, preset string) *Controller {
	t.Helper()
	cfg, err := layout.Preset(preset)
	if err != nil {
		t.Fatalf("Preset(%q): %v", preset, err)
	}
	return NewController(cfg)
}

func sortedNodeIDs(s *canvas.Store) []string {
	ids := s.Graph().NodeIDs()
	sort.Strings(ids)
	return ids
}

func sortedEdgeIDs(s *canvas.Store) []string {
	ids := s.Graph().EdgeIDs()
	sort.Strings(ids)
	return ids
}

func TestExpandAddsOneNodeAndEdgePerChild(t *testing.T) {
	store := newSampleStore(sampleChildren())
	ctrl := newController(t, "fanout")

	delta, changed := ctrl.Click(store, "root")
	if !changed {
		t.Fatal("click on root reported no change")
	}
	if delta.Action != ActionExpand {
		t.Errorf("action = %q, want %q", delta.Action, ActionExpand)
	}

	nodes := store.Nodes()
	if len(nodes) != 4 {
		t.Fatalf("expected 4 nodes after expand, got %d", len(nodes))
	}
	edges := store.Edges()
	if len(edges) != 3 {
		t.Fatalf("expected 3 edges after expand, got %d", len(edges))
	}

	wantIDs := []string{"root", "child-1", "child-2", "child-3"}
	if got := store.Graph().NodeIDs(); !reflect.DeepEqual(got, wantIDs) {
		t.Errorf("node order = %v, want %v", got, wantIDs)
	}
	for i, e := range edges {
		want := "root-" + wantIDs[i+1]
		if e.ID != want || e.Source != "root" || e.Target != wantIDs[i+1] {
			t.Errorf("edge %d = %+v, want id %s", i, e, want)
		}
	}

	root, _ := store.Node("root")
	if !root.Data.IsExpanded {
		t.Error("root should be expanded")
	}
	for _, n := range nodes[1:] {
		if n.Data.IsExpanded {
			t.Errorf("new node %s should start collapsed", n.ID)
		}
	}

	child1, _ := store.Node("child-1")
	if len(child1.Data.Children) != 2 {
		t.Errorf("child-1 should carry its 2 nested children, got %d", len(child1.Data.Children))
	}
}

func TestExpandThenCollapseRestoresGraph(t *testing.T) {
	store := newSampleStore(sampleChildren())
	ctrl := newController(t, "fanout")

	ctrl.Click(store, "root")
	ctrl.Click(store, "child-1")

	beforeNodes := store.Nodes()
	beforeEdges := sortedEdgeIDs(store)
	beforeIDs := sortedNodeIDs(store)

	if _, changed := ctrl.Click(store, "child-2"); !changed {
		t.Fatal("expand child-2 reported no change")
	}
	delta, changed := ctrl.Click(store, "child-2")
	if !changed || delta.Action != ActionCollapse {
		t.Fatalf("collapse child-2: changed=%v action=%q", changed, delta.Action)
	}

	if got := sortedNodeIDs(store); !reflect.DeepEqual(got, beforeIDs) {
		t.Errorf("node ids = %v, want %v", got, beforeIDs)
	}
	if got := sortedEdgeIDs(store); !reflect.DeepEqual(got, beforeEdges) {
		t.Errorf("edge ids = %v, want %v", got, beforeEdges)
	}
	for _, before := range beforeNodes {
		after, ok := store.Node(before.ID)
		if !ok {
			t.Fatalf("node %s missing", before.ID)
		}
		if after.Position != before.Position {
			t.Errorf("node %s moved from %+v to %+v", before.ID, before.Position, after.Position)
		}
	}
}

func TestCollapseRemovesAllDescendants(t *testing.T) {
	store := newSampleStore(sampleChildren())
	ctrl := newController(t, "fanout")

	ctrl.Click(store, "root")
	ctrl.Click(store, "child-1")
	if n := len(store.Nodes()); n != 6 {
		t.Fatalf("expected 6 nodes with child-1 expanded, got %d", n)
	}

	delta, changed := ctrl.Click(store, "root")
	if !changed {
		t.Fatal("collapse root reported no change")
	}

	if got := store.Graph().NodeIDs(); !reflect.DeepEqual(got, []string{"root"}) {
		t.Errorf("nodes after collapse = %v, want [root]", got)
	}
	if n := len(store.Edges()); n != 0 {
		t.Errorf("expected no edges after collapse, got %d", n)
	}
	if len(delta.RemovedNodes) != 5 || len(delta.RemovedEdges) != 5 {
		t.Errorf("delta removed %d nodes and %d edges, want 5 and 5", len(delta.RemovedNodes), len(delta.RemovedEdges))
	}
	root, _ := store.Node("root")
	if root.Data.IsExpanded {
		t.Error("root should be collapsed")
	}
}

func TestCollapseReachesArbitraryDepth(t *testing.T) {
	deep := []model.ChildSpec{{
		ID: "l1", Label: "L1",
		Children: []model.ChildSpec{{
			ID: "l2", Label: "L2",
			Children: []model.ChildSpec{{
				ID: "l3", Label: "L3",
				Children: []model.ChildSpec{{ID: "l4", Label: "L4"}},
			}},
		}},
	}}
	store := newSampleStore(deep)
	ctrl := newController(t, "fanout")

	for _, id := range []string{"root", "l1", "l2", "l3"} {
		if _, changed := ctrl.Click(store, id); !changed {
			t.Fatalf("expand %s reported no change", id)
		}
	}
	if n := len(store.Nodes()); n != 5 {
		t.Fatalf("expected 5 nodes, got %d", n)
	}

	ctrl.Click(store, "root")
	if got := store.Graph().NodeIDs(); !reflect.DeepEqual(got, []string{"root"}) {
		t.Errorf("nodes after collapse = %v, want [root]", got)
	}
	if n := len(store.Edges()); n != 0 {
		t.Errorf("expected no edges, got %d", n)
	}
}

func TestClickLeafIsNoop(t *testing.T) {
	store := newSampleStore(sampleChildren())
	ctrl := newController(t, "fanout")
	ctrl.Click(store, "root")

	before := store.Graph()
	delta, changed := ctrl.Click(store, "child-3")
	if changed {
		t.Error("clicking a leaf reported a change")
	}
	if !reflect.DeepEqual(delta, Delta{}) {
		t.Errorf("leaf click returned delta %+v", delta)
	}
	if !reflect.DeepEqual(before, store.Graph()) {
		t.Error("clicking a leaf modified the graph")
	}
}

func TestClickUnknownNodeIsNoop(t *testing.T) {
	store := newSampleStore(sampleChildren())
	ctrl := newController(t, "fanout")

	before := store.Graph()
	if _, changed := ctrl.Click(store, "grandchild-1-1"); changed {
		t.Error("clicking a hidden node reported a change")
	}
	if !reflect.DeepEqual(before, store.Graph()) {
		t.Error("clicking a hidden node modified the graph")
	}
}

func TestExpandHonorsExplicitOffsets(t *testing.T) {
	children := []model.ChildSpec{
		{ID: "n", Label: "North", Offset: &model.Position{X: 0, Y: -200}},
		{ID: "e", Label: "East", Offset: &model.Position{X: 250, Y: 0}},
		{ID: "s", Label: "South", Offset: &model.Position{X: 0, Y: 200}},
		{ID: "w", Label: "West", Offset: &model.Position{X: -250, Y: 0}},
	}
	store := newSampleStore(children)
	ctrl := newController(t, "radial")

	ctrl.Click(store, "root")

	root, _ := store.Node("root")
	for _, spec := range children {
		node, ok := store.Node(spec.ID)
		if !ok {
			t.Fatalf("node %s missing", spec.ID)
		}
		want := root.Position.Add(*spec.Offset)
		if node.Position != want {
			t.Errorf("node %s at %+v, want %+v", spec.ID, node.Position, want)
		}
	}
}

func TestExpandCentersChildrenWithoutOffsets(t *testing.T) {
	store := newSampleStore(sampleChildren())
	ctrl := newController(t, "fanout")
	ctrl.Click(store, "root")

	root, _ := store.Node("root")
	c1, _ := store.Node("child-1")
	c2, _ := store.Node("child-2")
	c3, _ := store.Node("child-3")

	if c2.Position.X != root.Position.X {
		t.Errorf("middle child x = %g, want %g", c2.Position.X, root.Position.X)
	}
	if root.Position.X-c1.Position.X != c3.Position.X-root.Position.X {
		t.Errorf("children not symmetric: %g %g %g", c1.Position.X, c2.Position.X, c3.Position.X)
	}
	for _, c := range []model.DisplayNode{c1, c2, c3} {
		if c.Position.Y != root.Position.Y+200 {
			t.Errorf("child %s y = %g, want %g", c.ID, c.Position.Y, root.Position.Y+200)
		}
	}

	// A single child sits directly under its parent
	ctrl.Click(store, "child-2")
	gc, _ := store.Node("grandchild-2-1")
	if gc.Position.X != c2.Position.X {
		t.Errorf("single grandchild x = %g, want %g", gc.Position.X, c2.Position.X)
	}
}

func TestReexpandIgnoresDrags(t *testing.T) {
	store := newSampleStore(sampleChildren())
	ctrl := newController(t, "fanout")

	ctrl.Click(store, "root")
	first := store.Nodes()

	store.ApplyNodeChanges([]canvas.NodeChange{{
		Type:     canvas.ChangePosition,
		ID:       "child-1",
		Position: &model.Position{X: -1000, Y: -1000},
	}})

	ctrl.Click(store, "root")
	ctrl.Click(store, "root")

	second := store.Nodes()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-expansion differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestExpandFollowsParentPosition(t *testing.T) {
	store := newSampleStore(sampleChildren())
	ctrl := newController(t, "fanout")

	store.ApplyNodeChanges([]canvas.NodeChange{{
		Type:     canvas.ChangePosition,
		ID:       "root",
		Position: &model.Position{X: 0, Y: 0},
	}})
	ctrl.Click(store, "root")

	c2, _ := store.Node("child-2")
	if c2.Position != (model.Position{X: 0, Y: 200}) {
		t.Errorf("child-2 at %+v, want {0 200}", c2.Position)
	}
}

func TestDescendants(t *testing.T) {
	got := Descendants(sampleChildren())
	want := []string{"child-1", "grandchild-1-1", "grandchild-1-2", "child-2", "grandchild-2-1", "child-3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Descendants = %v, want %v", got, want)
	}

	if got := Descendants(nil); len(got) != 0 {
		t.Errorf("Descendants(nil) = %v", got)
	}
}
