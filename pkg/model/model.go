package model

// NodeType is the canvas node type used for every mind-map node
const NodeType = "circle"

// Position is a point on the canvas
type Position struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Add returns p translated by o
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

// ChildSpec describes a node that can be revealed by expanding its parent.
// It is template data: nothing in the running graph mutates it.
type ChildSpec struct {
	ID       string      `json:"id" toml:"id"`
	Label    string      `json:"label" toml:"label"`
	Icon     string      `json:"icon,omitempty" toml:"icon"`         // Icon name, interpreted by the canvas
	Size     float64     `json:"size,omitempty" toml:"size"`         // Diameter in canvas units (0 = canvas default)
	Color    string      `json:"color,omitempty" toml:"color"`       // CSS color for the node and its incoming edge
	Offset   *Position   `json:"offset,omitempty" toml:"offset"`     // Position relative to the parent (optional)
	Children []ChildSpec `json:"children,omitempty" toml:"children"` // Nested template (optional)
}

// HasChildren reports whether the spec can be expanded
func (c *ChildSpec) HasChildren() bool {
	return len(c.Children) > 0
}

// Clone returns a deep copy of the spec
func (c ChildSpec) Clone() ChildSpec {
	if c.Offset != nil {
		offset := *c.Offset
		c.Offset = &offset
	}
	c.Children = CloneSpecs(c.Children)
	return c
}

// CloneSpecs deep-copies a slice of specs, preserving nil
func CloneSpecs(specs []ChildSpec) []ChildSpec {
	if specs == nil {
		return nil
	}
	out := make([]ChildSpec, len(specs))
	for i, s := range specs {
		out[i] = s.Clone()
	}
	return out
}

// NodeData is the per-node payload handed to the canvas
type NodeData struct {
	Label      string      `json:"label"`
	Icon       string      `json:"icon,omitempty"`
	Size       float64     `json:"size,omitempty"`
	Color      string      `json:"color,omitempty"`
	IsExpanded bool        `json:"isExpanded"`
	Children   []ChildSpec `json:"children,omitempty"`
}

// DisplayNode is a node currently rendered on the canvas
type DisplayNode struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
	Selected bool     `json:"selected,omitempty"`
	Dragging bool     `json:"dragging,omitempty"`
}

// Expandable reports whether clicking the node toggles anything
func (n *DisplayNode) Expandable() bool {
	return len(n.Data.Children) > 0
}

// Clone returns a copy that shares no template memory with n
func (n DisplayNode) Clone() DisplayNode {
	n.Data.Children = CloneSpecs(n.Data.Children)
	return n
}

// NewDisplayNode creates a collapsed node from a template entry
func NewDisplayNode(spec ChildSpec, pos Position) DisplayNode {
	return DisplayNode{
		ID:       spec.ID,
		Type:     NodeType,
		Position: pos,
		Data: NodeData{
			Label:      spec.Label,
			Icon:       spec.Icon,
			Size:       spec.Size,
			Color:      spec.Color,
			IsExpanded: false,
			Children:   CloneSpecs(spec.Children),
		},
	}
}

// EdgeStyle is the inline stroke style of an edge
type EdgeStyle struct {
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// DisplayEdge connects an expanded node to one of its revealed children
type DisplayEdge struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Target   string    `json:"target"`
	Type     string    `json:"type,omitempty"` // Canvas edge type (e.g., "smoothstep", "default")
	Animated bool      `json:"animated,omitempty"`
	Style    EdgeStyle `json:"style"`
	Selected bool      `json:"selected,omitempty"`
}

// EdgeID returns the stable id of the edge from parent to child
func EdgeID(parentID, childID string) string {
	return parentID + "-" + childID
}
