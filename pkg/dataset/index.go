package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/ritzau/mindmap/pkg/model"
)

// Stats summarizes the shape of a hierarchy
type Stats struct {
	Nodes  int `json:"nodes"`
	Leaves int `json:"leaves"`
	Depth  int `json:"depth"` // Levels below the root
}

// Index maps template IDs to their place in the hierarchy
type Index struct {
	graph   *simple.DirectedGraph
	rootID  string
	ids     map[string]int64 // template ID -> gonum node ID
	names   map[int64]string // gonum node ID -> template ID
	parents map[string]string
}

// NewIndex walks the template rooted at root and indexes every node.
// IDs must be non-empty and unique across the whole tree.
func NewIndex(root model.ChildSpec) (*Index, error) {
	ix := &Index{
		graph:   simple.NewDirectedGraph(),
		rootID:  root.ID,
		ids:     make(map[string]int64),
		names:   make(map[int64]string),
		parents: make(map[string]string),
	}

	type entry struct {
		spec   model.ChildSpec
		parent string
	}
	stack := []entry{{spec: root}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := ix.add(e.spec, e.parent); err != nil {
			return nil, err
		}
		for i := len(e.spec.Children) - 1; i >= 0; i-- {
			stack = append(stack, entry{spec: e.spec.Children[i], parent: e.spec.ID})
		}
	}

	return ix, nil
}

func (ix *Index) add(spec model.ChildSpec, parent string) error {
	if spec.ID == "" {
		if parent == "" {
			return ErrEmptyID
		}
		return fmt.Errorf("child of %q: %w", parent, ErrEmptyID)
	}
	if spec.Label == "" {
		return fmt.Errorf("node %q has no label", spec.ID)
	}
	if _, exists := ix.ids[spec.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, spec.ID)
	}

	id := int64(len(ix.ids))
	ix.graph.AddNode(simple.Node(id))
	ix.ids[spec.ID] = id
	ix.names[id] = spec.ID

	if parent != "" {
		ix.parents[spec.ID] = parent
		from := ix.graph.Node(ix.ids[parent])
		ix.graph.SetEdge(ix.graph.NewEdge(from, simple.Node(id)))
	}
	return nil
}

// Len returns the number of indexed nodes
func (ix *Index) Len() int {
	return len(ix.ids)
}

// Has reports whether id exists anywhere in the hierarchy
func (ix *Index) Has(id string) bool {
	_, ok := ix.ids[id]
	return ok
}

// Parent returns the template parent of id; the root has none
func (ix *Index) Parent(id string) (string, bool) {
	parent, ok := ix.parents[id]
	return parent, ok
}

// Ancestors returns the chain from the root down to, but excluding, id
func (ix *Index) Ancestors(id string) []string {
	var chain []string
	for cur, ok := ix.Parent(id); ok; cur, ok = ix.Parent(cur) {
		chain = append([]string{cur}, chain...)
	}
	return chain
}

// Stats counts nodes and leaves and measures the depth with a breadth-first walk
func (ix *Index) Stats() Stats {
	stats := Stats{Nodes: ix.Len()}
	root, ok := ix.ids[ix.rootID]
	if !ok {
		return stats
	}

	var bf traverse.BreadthFirst
	bf.Walk(ix.graph, simple.Node(root), func(n graph.Node, depth int) bool {
		if depth > stats.Depth {
			stats.Depth = depth
		}
		if ix.graph.From(n.ID()).Len() == 0 {
			stats.Leaves++
		}
		return false
	})

	return stats
}
