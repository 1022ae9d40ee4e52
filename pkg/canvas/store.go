package canvas

import (
	"github.com/ritzau/mindmap/pkg/model"
)

// ChangeType names an incremental change sent by the canvas
type ChangeType string

const (
	ChangePosition ChangeType = "position"
	ChangeSelect   ChangeType = "select"
	ChangeRemove   ChangeType = "remove"
	ChangeAdd      ChangeType = "add"
	ChangeReplace  ChangeType = "replace"
)

// NodeChange is one incremental node update (drag, selection, add, remove)
type NodeChange struct {
	Type     ChangeType         `json:"type"`
	ID       string             `json:"id,omitempty"`
	Position *model.Position    `json:"position,omitempty"` // For position changes
	Dragging *bool              `json:"dragging,omitempty"` // For position changes
	Selected *bool              `json:"selected,omitempty"` // For select changes
	Item     *model.DisplayNode `json:"item,omitempty"`     // For add and replace changes
}

// EdgeChange is one incremental edge update
type EdgeChange struct {
	Type     ChangeType         `json:"type"`
	ID       string             `json:"id,omitempty"`
	Selected *bool              `json:"selected,omitempty"`
	Item     *model.DisplayEdge `json:"item,omitempty"`
}

// Transition is the complete effect of one expand or collapse.
// Store.Apply installs it in a single step.
type Transition struct {
	RemoveNodes map[string]bool     // Node IDs to drop
	RemoveEdges map[string]bool     // Edge IDs to drop
	SetExpanded map[string]bool     // Node ID -> new isExpanded value
	AddNodes    []model.DisplayNode // Appended after surviving nodes, in order
	AddEdges    []model.DisplayEdge // Appended after surviving edges, in order
}

// Store holds the displayed nodes and edges.
//
// Store does no locking and no validation: duplicate IDs are kept as given.
// Callers serialize access (see session.Session).
type Store struct {
	nodes []model.DisplayNode
	edges []model.DisplayEdge
}

// New creates a store seeded with the given nodes and edges
func New(nodes []model.DisplayNode, edges []model.DisplayEdge) *Store {
	s := &Store{
		nodes: make([]model.DisplayNode, 0, len(nodes)),
		edges: make([]model.DisplayEdge, 0, len(edges)),
	}
	for _, n := range nodes {
		s.nodes = append(s.nodes, n.Clone())
	}
	s.edges = append(s.edges, edges...)
	return s
}

// Nodes returns a copy of the displayed nodes in order
func (s *Store) Nodes() []model.DisplayNode {
	out := make([]model.DisplayNode, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.Clone()
	}
	return out
}

// Edges returns a copy of the displayed edges in order
func (s *Store) Edges() []model.DisplayEdge {
	out := make([]model.DisplayEdge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Graph returns a copy of the full displayed graph
func (s *Store) Graph() *model.Graph {
	return &model.Graph{
		Nodes: s.Nodes(),
		Edges: s.Edges(),
	}
}

// Node looks up a displayed node by ID
func (s *Store) Node(id string) (model.DisplayNode, bool) {
	for _, n := range s.nodes {
		if n.ID == id {
			return n.Clone(), true
		}
	}
	return model.DisplayNode{}, false
}


// ApplyNodeChanges applies canvas node changes in order.
// Unaffected nodes keep their relative order; added nodes are appended.
func (s *Store) ApplyNodeChanges(changes []NodeChange) {
	if len(changes) == 0 {
		return
	}

	next := make([]model.DisplayNode, len(s.nodes))
	copy(next, s.nodes)

	for _, c := range changes {
		switch c.Type {
		case ChangeAdd:
			if c.Item != nil {
				next = append(next, c.Item.Clone())
			}
		case ChangeRemove:
			next = removeNode(next, c.ID)
		default:
			for i := range next {
				if next[i].ID != c.ID {
					continue
				}
				next[i] = applyNodeChange(next[i], c)
			}
		}
	}

	s.nodes = next
}

func applyNodeChange(n model.DisplayNode, c NodeChange) model.DisplayNode {
	switch c.Type {
	case ChangePosition:
		if c.Position != nil {
			n.Position = *c.Position
		}
		if c.Dragging != nil {
			n.Dragging = *c.Dragging
		}
	case ChangeSelect:
		if c.Selected != nil {
			n.Selected = *c.Selected
		}
	case ChangeReplace:
		if c.Item != nil {
			n = c.Item.Clone()
		}
	}
	return n
}

func removeNode(nodes []model.DisplayNode, id string) []model.DisplayNode {
	out := nodes[:0]
	for _, n := range nodes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

// ApplyEdgeChanges applies canvas edge changes in order
func (s *Store) ApplyEdgeChanges(changes []EdgeChange) {
	if len(changes) == 0 {
		return
	}

	next := make([]model.DisplayEdge, len(s.edges))
	copy(next, s.edges)

	for _, c := range changes {
		switch c.Type {
		case ChangeAdd:
			if c.Item != nil {
				next = append(next, *c.Item)
			}
		case ChangeRemove:
			out := next[:0]
			for _, e := range next {
				if e.ID != c.ID {
					out = append(out, e)
				}
			}
			next = out
		case ChangeSelect:
			for i := range next {
				if next[i].ID == c.ID && c.Selected != nil {
					next[i].Selected = *c.Selected
				}
			}
		case ChangeReplace:
			for i := range next {
				if next[i].ID == c.ID && c.Item != nil {
					next[i] = *c.Item
				}
			}
		}
	}

	s.edges = next
}

// Apply installs a transition. Both collections are rebuilt first and swapped
// together, so no caller can observe an edge without its endpoint.
func (s *Store) Apply(t Transition) {
	nodes := make([]model.DisplayNode, 0, len(s.nodes)+len(t.AddNodes))
	for _, n := range s.nodes {
		if t.RemoveNodes[n.ID] {
			continue
		}
		if expanded, ok := t.SetExpanded[n.ID]; ok {
			n.Data.IsExpanded = expanded
		}
		nodes = append(nodes, n)
	}
	for _, n := range t.AddNodes {
		nodes = append(nodes, n.Clone())
	}

	edges := make([]model.DisplayEdge, 0, len(s.edges)+len(t.AddEdges))
	for _, e := range s.edges {
		if t.RemoveEdges[e.ID] {
			continue
		}
		edges = append(edges, e)
	}
	edges = append(edges, t.AddEdges...)

	s.nodes = nodes
	s.edges = edges
}
