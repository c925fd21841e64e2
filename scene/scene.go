package scene

import (
	"cmp"
	"slices"

	"github.com/ungerik/go3d/float64/vec3"

	"github.com/pthm-cable/retroterm/camera"
	"github.com/pthm-cable/retroterm/screen"
)

// FrameStats describes the last rendered frame.
type FrameStats struct {
	Objects   int
	Triangles int
	Painted   int
}

// Scene renders meshes back to front onto a borrowed screen buffer. There is no
// depth buffer: objects are ordered by the Z of their position and faces within
// an object are drawn in list order.
type Scene struct {
	buf        screen.Buffer
	background Background
	camera     *camera.Camera
	objects    []*Mesh

	// Foreground is the colour of every filled cell.
	Foreground screen.Color

	stats FrameStats

	// per-frame scratch
	order     []*Mesh
	projected []Point2
}

// New creates a scene drawing into buf.
func New(buf screen.Buffer, bg Background) *Scene {
	w, h := buf.Size()
	fg, _ := bg.Colors()
	return &Scene{
		buf:        buf,
		background: bg,
		camera:     camera.New(float64(w), float64(h)),
		Foreground: fg,
	}
}

// Add appends a mesh to the scene.
func (s *Scene) Add(m *Mesh) {
	s.objects = append(s.objects, m)
}

// Remove drops a mesh from the scene. It reports whether the mesh was present.
func (s *Scene) Remove(m *Mesh) bool {
	i := slices.Index(s.objects, m)
	if i < 0 {
		return false
	}
	s.objects = slices.Delete(s.objects, i, i+1)
	return true
}

// Objects returns the meshes in insertion order.
func (s *Scene) Objects() []*Mesh {
	return s.objects
}

// Camera returns the scene camera.
func (s *Scene) Camera() *camera.Camera {
	return s.camera
}

// SetBackground replaces the background strategy.
func (s *Scene) SetBackground(bg Background) {
	s.background = bg
}

// Stats returns the counters of the last Render call.
func (s *Scene) Stats() FrameStats {
	return s.stats
}

// DrawOrder returns the objects sorted far to near (descending position Z).
// Ties keep insertion order.
func (s *Scene) DrawOrder() []*Mesh {
	s.order = append(s.order[:0], s.objects...)
	slices.SortStableFunc(s.order, func(a, b *Mesh) int {
		return cmp.Compare(b.Position[2], a.Position[2])
	})
	return s.order
}

// Render draws one frame at time t.
func (s *Scene) Render(t float64) {
	w, h := s.buf.Size()
	s.camera.Resize(float64(w), float64(h))
	s.stats = FrameStats{}

	if s.background != nil {
		s.background.Clear(s.buf, t)
	}

	for _, m := range s.DrawOrder() {
		s.stats.Objects++

		s.projected = s.projected[:0]
		for v := range m.TransformedVertices() {
			x, y := s.camera.ToPixel(s.camera.Project(v))
			s.projected = append(s.projected, Point2{X: x, Y: y})
		}

		for _, f := range m.Faces {
			s.stats.Triangles++
			s.stats.Painted += FillTriangle(s.buf, s.projected[f.A], s.projected[f.B], s.projected[f.C], f.Material.Glyph, s.Foreground)
		}
	}
}

// ProjectVertex maps a world-space point to cell coordinates.
func (s *Scene) ProjectVertex(v vec3.T) Point2 {
	x, y := s.camera.ToPixel(s.camera.Project(v))
	return Point2{X: x, Y: y}
}
