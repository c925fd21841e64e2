package camera

import (
	"math"
	"testing"

	"github.com/ungerik/go3d/float64/vec3"
)

func TestNew(t *testing.T) {
	cam := New(80, 40)

	if cam.Distance != DefaultDistance {
		t.Errorf("expected distance %v, got %v", DefaultDistance, cam.Distance)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
	if cam.Aspect() != 2 {
		t.Errorf("expected aspect 2, got %f", cam.Aspect())
	}
}

func TestFactorAtOriginPlane(t *testing.T) {
	cam := New(80, 40)
	if f := cam.Factor(0); f != 1 {
		t.Errorf("Factor(0) = %v, want exactly 1", f)
	}
	if f := cam.Factor(5); f != 0.5 {
		t.Errorf("Factor(5) = %v, want 0.5", f)
	}
}

func TestProject(t *testing.T) {
	cam := New(80, 40)

	p := cam.Project(vec3.T{1, 1, 0})
	if p[0] != 2 || p[1] != 1 || p[2] != 0 {
		t.Errorf("Project(1,1,0) = %v, want (2,1,0)", p)
	}

	// Depth passes through untouched
	p = cam.Project(vec3.T{1, 1, 5})
	if p[2] != 5 {
		t.Errorf("z = %v, want 5", p[2])
	}
	if math.Abs(p[1]-0.5) > 1e-12 {
		t.Errorf("y = %v, want 0.5", p[1])
	}
}

func TestToPixelCentered(t *testing.T) {
	cam := New(80, 40)

	x, y := cam.ToPixel(vec3.T{})
	if x != 40 || y != 20 {
		t.Errorf("origin maps to (%v, %v), want (40, 20)", x, y)
	}

	// Unit Y lands on the top edge for the shorter axis
	_, y = cam.ToPixel(vec3.T{0, 1, 0})
	if y != 0 {
		t.Errorf("y=1 maps to row %v, want 0", y)
	}
}

func TestPixelRoundtrip(t *testing.T) {
	cam := New(80, 40)
	cam.SetZoom(1.5)

	testCases := []struct{ x, y float64 }{
		{40, 20},
		{3, 7},
		{79, 39},
	}
	for _, tc := range testCases {
		px, py := cam.FromPixel(tc.x, tc.y)
		x, y := cam.ToPixel(vec3.T{px, py, 0})
		if math.Abs(x-tc.x) > 1e-9 || math.Abs(y-tc.y) > 1e-9 {
			t.Errorf("roundtrip failed: (%v,%v) -> (%v,%v) -> (%v,%v)", tc.x, tc.y, px, py, x, y)
		}
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(80, 40)

	if !cam.IsVisible(-5, -5, 1, 1) {
		t.Error("box overlapping top-left corner should be visible")
	}
	if cam.IsVisible(-10, -10, -1, -1) {
		t.Error("box above-left of viewport should not be visible")
	}
	if cam.IsVisible(80, 0, 90, 10) {
		t.Error("box right of viewport should not be visible")
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(80, 40)
	cam.ZoomBy(100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("zoom = %v, want clamped to %v", cam.Zoom, cam.MaxZoom)
	}
	cam.Reset()
	if cam.Zoom != 1 {
		t.Errorf("zoom after reset = %v, want 1", cam.Zoom)
	}
}
