package scene

import (
	"math"

	"github.com/ungerik/go3d/float64/vec3"
)

// CubeMaterials is the number of materials a cube needs (one per side).
const CubeMaterials = 6

// HexPrismMaterials is the number of materials a hexagonal prism needs
// (top cap, bottom cap, six side panels).
const HexPrismMaterials = 8

// cubeSides lists each side as four corner indices around the quad.
var cubeSides = [CubeMaterials][4]int{
	{0, 1, 3, 2}, // -z (front)
	{4, 6, 7, 5}, // +z (back)
	{0, 4, 5, 1}, // -y (bottom)
	{2, 3, 7, 6}, // +y (top)
	{0, 2, 6, 4}, // -x (left)
	{1, 5, 7, 3}, // +x (right)
}

// NewCube creates a cube with corners at (±r, ±r, ±r).
func NewCube(r float64, mats []Material) *Mesh {
	m := NewBox(2*r, 2*r, 2*r, mats)
	m.Name = "cube"
	return m
}

// NewBox creates a box centred at the origin. mats supplies one material per
// side in the order front, back, bottom, top, left, right.
func NewBox(width, height, depth float64, mats []Material) *Mesh {
	requireMaterials("box", mats, CubeMaterials)

	hx, hy, hz := width/2, height/2, depth/2
	verts := make([]vec3.T, 0, 8)
	// index bits: 1 = +x, 2 = +y, 4 = +z
	for i := 0; i < 8; i++ {
		v := vec3.T{-hx, -hy, -hz}
		if i&1 != 0 {
			v[0] = hx
		}
		if i&2 != 0 {
			v[1] = hy
		}
		if i&4 != 0 {
			v[2] = hz
		}
		verts = append(verts, v)
	}

	faces := make([]Face, 0, 12)
	for side, q := range cubeSides {
		mat := mats[side]
		faces = append(faces,
			windOutward(verts, Face{A: q[0], B: q[1], C: q[2], Material: mat}, vec3.Zero),
			windOutward(verts, Face{A: q[0], B: q[2], C: q[3], Material: mat}, vec3.Zero),
		)
	}
	return NewMesh("box", verts, faces)
}

// NewHexPrism creates a hexagonal prism of the given circumradius and height,
// standing along Y. Vertex 0 is the top centre, 1 the bottom centre, 2..7 the
// top ring and 8..13 the bottom ring. Each cap is a 6-triangle fan and each
// side two triangles, 24 faces in all.
func NewHexPrism(radius, height float64, mats []Material) *Mesh {
	requireMaterials("hex prism", mats, HexPrismMaterials)

	const sides = 6
	hy := height / 2
	verts := make([]vec3.T, 0, 2+2*sides)
	verts = append(verts, vec3.T{0, hy, 0}, vec3.T{0, -hy, 0})
	for ring := 0; ring < 2; ring++ {
		y := hy
		if ring == 1 {
			y = -hy
		}
		for i := 0; i < sides; i++ {
			a := float64(i) * 2 * math.Pi / sides
			verts = append(verts, vec3.T{radius * math.Cos(a), y, radius * math.Sin(a)})
		}
	}

	top := func(i int) int { return 2 + i%sides }
	bottom := func(i int) int { return 2 + sides + i%sides }

	faces := make([]Face, 0, 4*sides)
	for i := 0; i < sides; i++ {
		faces = append(faces, windOutward(verts, Face{A: 0, B: top(i), C: top(i + 1), Material: mats[0]}, vec3.Zero))
	}
	for i := 0; i < sides; i++ {
		faces = append(faces, windOutward(verts, Face{A: 1, B: bottom(i), C: bottom(i + 1), Material: mats[1]}, vec3.Zero))
	}
	for i := 0; i < sides; i++ {
		mat := mats[2+i%(HexPrismMaterials-2)]
		faces = append(faces,
			windOutward(verts, Face{A: top(i), B: bottom(i), C: bottom(i + 1), Material: mat}, vec3.Zero),
			windOutward(verts, Face{A: top(i), B: bottom(i + 1), C: top(i + 1), Material: mat}, vec3.Zero),
		)
	}
	return NewMesh("hexprism", verts, faces)
}

// GlyphMaterials builds one material per glyph with shared colours.
func GlyphMaterials(glyphs string) []Material {
	mats := make([]Material, 0, len(glyphs))
	for _, g := range glyphs {
		mats = append(mats, Material{Glyph: g})
	}
	return mats
}
