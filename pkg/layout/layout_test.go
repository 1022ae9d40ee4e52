package layout

import (
	"errors"
	"testing"

	"github.com/ritzau/mindmap/pkg/model"
)

func TestPresetDefaults(t *testing.T) {
	cfg, err := Preset("")
	if err != nil {
		t.Fatalf("Preset(\"\") failed: %v", err)
	}
	if cfg.Name != DefaultPreset {
		t.Errorf("expected default preset %q, got %q", DefaultPreset, cfg.Name)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default preset does not validate: %v", err)
	}

	for _, name := range PresetNames() {
		cfg, err := Preset(name)
		if err != nil {
			t.Fatalf("Preset(%q) failed: %v", name, err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %q does not validate: %v", name, err)
		}
	}
}

func TestPresetUnknown(t *testing.T) {
	_, err := Preset("spiral")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg, _ := Preset("fanout")

	bad := cfg
	bad.Spacing = 0
	if bad.Validate() == nil {
		t.Error("zero spacing should not validate")
	}

	bad = cfg
	bad.Direction = "sideways"
	if bad.Validate() == nil {
		t.Error("unknown direction should not validate")
	}

	bad = cfg
	bad.VerticalOffset = -1
	if bad.Validate() == nil {
		t.Error("negative vertical offset should not validate")
	}
}

func TestChildPositionSingleChildIsCentered(t *testing.T) {
	cfg, _ := Preset("fanout")
	parent := model.Position{X: 400, Y: 100}

	pos := cfg.ChildPosition(parent, 0, 1, model.ChildSpec{ID: "only"})
	if pos.X != 400 {
		t.Errorf("single child x = %g, want 400", pos.X)
	}
	if pos.Y != 300 {
		t.Errorf("single child y = %g, want 300", pos.Y)
	}
}

func TestChildPositionThreeChildrenSymmetric(t *testing.T) {
	cfg, _ := Preset("fanout")
	parent := model.Position{X: 400, Y: 100}

	want := []float64{200, 400, 600}
	for i, x := range want {
		pos := cfg.ChildPosition(parent, i, 3, model.ChildSpec{})
		if pos.X != x {
			t.Errorf("child %d x = %g, want %g", i, pos.X, x)
		}
		if pos.Y != 300 {
			t.Errorf("child %d y = %g, want 300", i, pos.Y)
		}
	}
}

func TestChildPositionDirectionUp(t *testing.T) {
	cfg, _ := Preset("fanout")
	cfg.Direction = DirectionUp

	pos := cfg.ChildPosition(model.Position{X: 0, Y: 0}, 0, 1, model.ChildSpec{})
	if pos.Y != -200 {
		t.Errorf("y = %g, want -200", pos.Y)
	}
}

func TestChildPositionOffsets(t *testing.T) {
	parent := model.Position{X: 400, Y: 100}
	spec := model.ChildSpec{ID: "c", Offset: &model.Position{X: -250, Y: 120}}

	radial, _ := Preset("radial")
	pos := radial.ChildPosition(parent, 2, 5, spec)
	if pos != (model.Position{X: 150, Y: 220}) {
		t.Errorf("offset position = %+v, want {150 220}", pos)
	}

	// The fan-out preset ignores offsets entirely
	fanout, _ := Preset("fanout")
	pos = fanout.ChildPosition(parent, 0, 1, spec)
	if pos != (model.Position{X: 400, Y: 300}) {
		t.Errorf("fanout ignored-offset position = %+v, want {400 300}", pos)
	}
}

func TestNewEdgeStyle(t *testing.T) {
	fanout, _ := Preset("fanout")
	edge := fanout.NewEdge("root", model.ChildSpec{ID: "child-1", Color: "#ff0000"})

	if edge.ID != "root-child-1" || edge.Source != "root" || edge.Target != "child-1" {
		t.Errorf("unexpected edge identity: %+v", edge)
	}
	if edge.Style.Stroke != "hsl(var(--primary))" {
		t.Errorf("fanout stroke = %q, child color should be ignored", edge.Style.Stroke)
	}
	if !edge.Animated || edge.Type != "smoothstep" {
		t.Errorf("fanout edge should be an animated smoothstep, got %+v", edge)
	}

	radial, _ := Preset("radial")
	edge = radial.NewEdge("root", model.ChildSpec{ID: "child-1", Color: "#ff0000"})
	if edge.Style.Stroke != "#ff0000" {
		t.Errorf("radial stroke = %q, want child color", edge.Style.Stroke)
	}

	edge = radial.NewEdge("root", model.ChildSpec{ID: "child-2"})
	if edge.Style.Stroke != radial.Edge.Stroke {
		t.Errorf("radial stroke without child color = %q, want %q", edge.Style.Stroke, radial.Edge.Stroke)
	}
}
