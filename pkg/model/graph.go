package model

// Graph is an ordered node/edge collection in the shape the canvas expects.
// Slice order is the canvas z-order.
type Graph struct {
	Nodes []DisplayNode `json:"nodes"`
	Edges []DisplayEdge `json:"edges"`
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]DisplayNode, 0),
		Edges: make([]DisplayEdge, 0),
	}
}

// FindNode returns the node with the given ID and whether it exists.
func (g *Graph) FindNode(id string) (DisplayNode, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return DisplayNode{}, false
}

// NodeIDs returns node IDs in display order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// EdgeIDs returns edge IDs in display order.
func (g *Graph) EdgeIDs() []string {
	ids := make([]string, len(g.Edges))
	for i, e := range g.Edges {
		ids[i] = e.ID
	}
	return ids
}
