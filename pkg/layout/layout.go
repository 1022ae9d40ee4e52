package layout

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ritzau/mindmap/pkg/model"
)

// ErrUnknownPreset is returned by Preset for names that are not registered
var ErrUnknownPreset = errors.New("unknown layout preset")

// Direction is the side of the parent that children are placed on
type Direction string

const (
	DirectionDown Direction = "down"
	DirectionUp   Direction = "up"
)

// EdgeConfig controls how edges to revealed children are styled
type EdgeConfig struct {
	Type          string  `json:"type"`          // Canvas edge type (e.g., "smoothstep", "default")
	Animated      bool    `json:"animated"`      // Dashed flowing animation on the canvas
	Stroke        string  `json:"stroke"`        // Default stroke color
	StrokeWidth   float64 `json:"strokeWidth"`   // Stroke width in canvas units
	UseChildColor bool    `json:"useChildColor"` // Use the child's declared color as stroke when set
}

// Config is the layout configuration shared by every expand operation
type Config struct {
	Name           string     `json:"name"`
	Spacing        float64    `json:"spacing"`        // Horizontal distance between siblings
	VerticalOffset float64    `json:"verticalOffset"` // Distance between parent and child rows
	Direction      Direction  `json:"direction"`
	HonorOffsets   bool       `json:"honorOffsets"` // Use explicit per-child offsets when present
	Edge           EdgeConfig `json:"edge"`
}

var presets = map[string]Config{
	// Evenly spaced fan-out below the parent with animated step edges
	"fanout": {
		Name:           "fanout",
		Spacing:        200,
		VerticalOffset: 200,
		Direction:      DirectionDown,
		HonorOffsets:   false,
		Edge: EdgeConfig{
			Type:        "smoothstep",
			Animated:    true,
			Stroke:      "hsl(var(--primary))",
			StrokeWidth: 2,
		},
	},
	// Hand-placed radial layout, edges take the color of the node they lead to
	"radial": {
		Name:           "radial",
		Spacing:        220,
		VerticalOffset: 180,
		Direction:      DirectionDown,
		HonorOffsets:   true,
		Edge: EdgeConfig{
			Type:          "default",
			Animated:      false,
			Stroke:        "#64748b",
			StrokeWidth:   2.5,
			UseChildColor: true,
		},
	},
}

// DefaultPreset is used when no preset is configured
const DefaultPreset = "fanout"

// Preset returns a copy of the named layout configuration
func Preset(name string) (Config, error) {
	if name == "" {
		name = DefaultPreset
	}
	cfg, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownPreset, name, PresetNames())
	}
	return cfg, nil
}

// PresetNames lists registered presets in sorted order
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the configuration can position children
func (c Config) Validate() error {
	if c.Spacing <= 0 {
		return fmt.Errorf("spacing must be positive, got %g", c.Spacing)
	}
	if c.VerticalOffset < 0 {
		return fmt.Errorf("vertical offset must not be negative, got %g", c.VerticalOffset)
	}
	switch c.Direction {
	case DirectionDown, DirectionUp:
	default:
		return fmt.Errorf("unknown direction %q (want %q or %q)", c.Direction, DirectionDown, DirectionUp)
	}
	return nil
}

// ChildPosition computes where the i-th of n children of a parent at parent goes.
//
// An explicit offset wins when HonorOffsets is set; otherwise children are spread
// on a horizontal row centered on the parent's x, one VerticalOffset away.
func (c Config) ChildPosition(parent model.Position, i, n int, spec model.ChildSpec) model.Position {
	if c.HonorOffsets && spec.Offset != nil {
		return parent.Add(*spec.Offset)
	}

	startX := parent.X - float64(n-1)*c.Spacing/2
	dy := c.VerticalOffset
	if c.Direction == DirectionUp {
		dy = -dy
	}
	return model.Position{
		X: startX + float64(i)*c.Spacing,
		Y: parent.Y + dy,
	}
}

// NewEdge builds the edge revealing child under parentID
func (c Config) NewEdge(parentID string, child model.ChildSpec) model.DisplayEdge {
	stroke := c.Edge.Stroke
	if c.Edge.UseChildColor && child.Color != "" {
		stroke = child.Color
	}
	return model.DisplayEdge{
		ID:       model.EdgeID(parentID, child.ID),
		Source:   parentID,
		Target:   child.ID,
		Type:     c.Edge.Type,
		Animated: c.Edge.Animated,
		Style: model.EdgeStyle{
			Stroke:      stroke,
			StrokeWidth: c.Edge.StrokeWidth,
		},
	}
}
