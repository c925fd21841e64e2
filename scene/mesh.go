// Package scene holds the software 3D pipeline: meshes, backgrounds and the
// renderer that rasterises triangles onto a character grid.
package scene

import (
	"fmt"
	"iter"
	"math"

	"github.com/ungerik/go3d/float64/vec3"

	"github.com/pthm-cable/retroterm/screen"
)

// Material is the per-face appearance. Only Glyph is used when compositing;
// the colours are carried for callers that want per-face tinting.
type Material struct {
	Glyph rune
	Fg    screen.Color
	Bg    screen.Color
}

// Face is a triangle over three vertex indices of its owning mesh.
type Face struct {
	A, B, C  int
	Material Material
}

// Mesh is a renderable triangle mesh with a transform.
type Mesh struct {
	Name     string
	Vertices []vec3.T
	Faces    []Face

	Position vec3.T
	Rotation vec3.T // Euler angles in radians, applied X then Y then Z
	Scale    float64
}

// NewMesh creates a mesh and checks every face index. An out-of-range index is a
// construction bug and panics.
func NewMesh(name string, vertices []vec3.T, faces []Face) *Mesh {
	for i, f := range faces {
		for _, idx := range [3]int{f.A, f.B, f.C} {
			if idx < 0 || idx >= len(vertices) {
				panic(fmt.Sprintf("scene: mesh %q face %d index %d out of range [0,%d)", name, i, idx, len(vertices)))
			}
		}
	}
	return &Mesh{
		Name:     name,
		Vertices: vertices,
		Faces:    faces,
		Scale:    1,
	}
}

// Rotate rotates v about X, then Y, then Z.
func Rotate(v, r vec3.T) vec3.T {
	x, y, z := v[0], v[1], v[2]

	if r[0] != 0 {
		sin, cos := math.Sincos(r[0])
		y, z = y*cos-z*sin, y*sin+z*cos
	}
	if r[1] != 0 {
		sin, cos := math.Sincos(r[1])
		x, z = x*cos+z*sin, -x*sin+z*cos
	}
	if r[2] != 0 {
		sin, cos := math.Sincos(r[2])
		x, y = x*cos-y*sin, x*sin+y*cos
	}
	return vec3.T{x, y, z}
}

// Transform maps a local vertex to world space: rotate, scale, translate.
func (m *Mesh) Transform(v vec3.T) vec3.T {
	w := Rotate(v, m.Rotation)
	w = w.Scaled(m.Scale)
	return w.Added(&m.Position)
}

// TransformedVertices yields world-space vertices in index order. The sequence
// reads the transform when iterated, so it can be ranged again after the
// transform changes.
func (m *Mesh) TransformedVertices() iter.Seq[vec3.T] {
	return func(yield func(vec3.T) bool) {
		for _, v := range m.Vertices {
			if !yield(m.Transform(v)) {
				return
			}
		}
	}
}

// Centroid returns the mean of three points.
func Centroid(a, b, c vec3.T) vec3.T {
	return vec3.T{
		(a[0] + b[0] + c[0]) / 3,
		(a[1] + b[1] + c[1]) / 3,
		(a[2] + b[2] + c[2]) / 3,
	}
}

// requireMaterials panics when a shape is given too few materials.
func requireMaterials(shape string, mats []Material, n int) {
	if len(mats) < n {
		panic(fmt.Sprintf("scene: %s needs %d materials, got %d", shape, n, len(mats)))
	}
}

// windOutward orders a face so that the rasterizer's inside test passes when
// its outward side (away from center) faces the camera.
func windOutward(verts []vec3.T, f Face, center vec3.T) Face {
	a, b, c := verts[f.A], verts[f.B], verts[f.C]
	ab := vec3.Sub(&b, &a)
	ac := vec3.Sub(&c, &a)
	n := vec3.Cross(&ab, &ac)
	mid := Centroid(a, b, c)
	out := vec3.Sub(&mid, &center)
	if vec3.Dot(&n, &out) > 0 {
		f.B, f.C = f.C, f.B
	}
	return f
}
