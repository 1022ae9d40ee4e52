package expand

import (
	"github.com/ritzau/mindmap/pkg/canvas"
	"github.com/ritzau/mindmap/pkg/layout"
	"github.com/ritzau/mindmap/pkg/logging"
	"github.com/ritzau/mindmap/pkg/model"
)

// Action is what a click did to the clicked node
type Action string

const (
	ActionNone     Action = ""
	ActionExpand   Action = "expanded"
	ActionCollapse Action = "collapsed"
)

// Delta describes the graph change produced by one click
type Delta struct {
	NodeID       string              `json:"nodeId"`
	Action       Action              `json:"action"`
	AddedNodes   []model.DisplayNode `json:"addedNodes,omitempty"`
	AddedEdges   []model.DisplayEdge `json:"addedEdges,omitempty"`
	RemovedNodes []string            `json:"removedNodes,omitempty"`
	RemovedEdges []string            `json:"removedEdges,omitempty"`
}

// Controller toggles nodes between expanded and collapsed
type Controller struct {
	layout layout.Config
}

// NewController creates a controller that lays children out with cfg
func NewController(cfg layout.Config) *Controller {
	return &Controller{layout: cfg}
}

// Layout returns the layout configuration in use
func (c *Controller) Layout() layout.Config {
	return c.layout
}

// Click toggles the node with the given ID.
//
// Clicking an unknown node or a node without children changes nothing and
// returns false.
func (c *Controller) Click(store *canvas.Store, nodeID string) (Delta, bool) {
	node, ok := store.Node(nodeID)
	if !ok {
		logging.Debug("click ignored, node not displayed", "node", nodeID)
		return Delta{}, false
	}
	if !node.Expandable() {
		logging.Debug("click ignored, node has no children", "node", nodeID)
		return Delta{}, false
	}

	var delta Delta
	var t canvas.Transition
	if node.Data.IsExpanded {
		delta, t = c.collapse(store, node)
	} else {
		delta, t = c.expand(node)
	}
	store.Apply(t)

	logging.Debug("node toggled",
		"node", nodeID,
		"action", string(delta.Action),
		"added", len(delta.AddedNodes),
		"removed", len(delta.RemovedNodes),
	)
	return delta, true
}

func (c *Controller) collapse(store *canvas.Store, node model.DisplayNode) (Delta, canvas.Transition) {
	hidden := make(map[string]bool)
	for _, id := range Descendants(node.Data.Children) {
		hidden[id] = true
	}

	delta := Delta{NodeID: node.ID, Action: ActionCollapse}
	t := canvas.Transition{
		RemoveNodes: make(map[string]bool),
		RemoveEdges: make(map[string]bool),
		SetExpanded: map[string]bool{node.ID: false},
	}

	for _, n := range store.Nodes() {
		if hidden[n.ID] {
			t.RemoveNodes[n.ID] = true
			delta.RemovedNodes = append(delta.RemovedNodes, n.ID)
		}
	}
	for _, e := range store.Edges() {
		if hidden[e.Target] {
			t.RemoveEdges[e.ID] = true
			delta.RemovedEdges = append(delta.RemovedEdges, e.ID)
		}
	}

	return delta, t
}

func (c *Controller) expand(node model.DisplayNode) (Delta, canvas.Transition) {
	children := node.Data.Children
	n := len(children)

	delta := Delta{
		NodeID:     node.ID,
		Action:     ActionExpand,
		AddedNodes: make([]model.DisplayNode, 0, n),
		AddedEdges: make([]model.DisplayEdge, 0, n),
	}
	for i, child := range children {
		pos := c.layout.ChildPosition(node.Position, i, n, child)
		delta.AddedNodes = append(delta.AddedNodes, model.NewDisplayNode(child, pos))
		delta.AddedEdges = append(delta.AddedEdges, c.layout.NewEdge(node.ID, child))
	}

	t := canvas.Transition{
		SetExpanded: map[string]bool{node.ID: true},
		AddNodes:    delta.AddedNodes,
		AddEdges:    delta.AddedEdges,
	}
	return delta, t
}

// Descendants returns the IDs of every spec reachable through the given
// templates, in depth-first pre-order.
func Descendants(children []model.ChildSpec) []string {
	var ids []string

	stack := make([]model.ChildSpec, 0, len(children))
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, children[i])
	}

	for len(stack) > 0 {
		spec := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		ids = append(ids, spec.ID)
		for i := len(spec.Children) - 1; i >= 0; i-- {
			stack = append(stack, spec.Children[i])
		}
	}

	return ids
}
