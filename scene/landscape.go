package scene

import (
	"math"

	"github.com/ojrac/opensimplex-go"
	"github.com/ungerik/go3d/float64/vec3"
)

// HeightFunc returns the height of a grid point at time t. Only X and Z of p
// are meaningful.
type HeightFunc func(t float64, p vec3.T) float64

// MaterialFunc picks the material of a face from its centroid.
type MaterialFunc func(centroid vec3.T) Material

// Landscape is a planar grid mesh whose heights and face materials are
// recomputed on every Update.
type Landscape struct {
	*Mesh

	GridSize int
	Spacing  float64
	Height   HeightFunc
	Material MaterialFunc
}

// NewLandscape creates a gridSize x gridSize grid of vertices in the XZ plane,
// centred on the origin, with two triangles per cell. Faces are wound to be
// visible from above.
func NewLandscape(gridSize int, spacing float64, height HeightFunc, material MaterialFunc) *Landscape {
	if gridSize < 2 {
		gridSize = 2
	}
	offset := float64(gridSize-1) / 2
	verts := make([]vec3.T, 0, gridSize*gridSize)
	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			verts = append(verts, vec3.T{
				(float64(col) - offset) * spacing,
				0,
				(float64(row) - offset) * spacing,
			})
		}
	}

	cells := gridSize - 1
	faces := make([]Face, 0, 2*cells*cells)
	for row := 0; row < cells; row++ {
		for col := 0; col < cells; col++ {
			p00 := row*gridSize + col
			p01 := p00 + 1
			p10 := p00 + gridSize
			p11 := p10 + 1
			faces = append(faces,
				Face{A: p00, B: p01, C: p10},
				Face{A: p01, B: p11, C: p10},
			)
		}
	}

	return &Landscape{
		Mesh:     NewMesh("landscape", verts, faces),
		GridSize: gridSize,
		Spacing:  spacing,
		Height:   height,
		Material: material,
	}
}

// Update re-evaluates every vertex height and then every face material.
func (l *Landscape) Update(t float64) {
	if l.Height != nil {
		for i := range l.Vertices {
			v := &l.Vertices[i]
			v[1] = l.Height(t, vec3.T{v[0], 0, v[2]})
		}
	}
	if l.Material != nil {
		for i := range l.Faces {
			f := &l.Faces[i]
			f.Material = l.Material(Centroid(l.Vertices[f.A], l.Vertices[f.B], l.Vertices[f.C]))
		}
	}
}

// FlatHeight keeps the landscape at y=0.
func FlatHeight(float64, vec3.T) float64 {
	return 0
}

// WaveHeight returns a travelling sine swell.
func WaveHeight(amplitude, frequency, speed float64) HeightFunc {
	return func(t float64, p vec3.T) float64 {
		return amplitude * math.Sin(p[0]*frequency+t*speed) * math.Cos(p[2]*frequency+t*speed*0.7)
	}
}

// NoiseHeight returns animated simplex terrain.
func NoiseHeight(seed int64, amplitude, frequency, speed float64) HeightFunc {
	noise := opensimplex.New(seed)
	return func(t float64, p vec3.T) float64 {
		return amplitude * noise.Eval3(p[0]*frequency, p[2]*frequency, t*speed)
	}
}

// HeightRamp maps centroid height to a glyph, lowest first. Heights outside
// [low, high] clamp to the end glyphs.
func HeightRamp(glyphs string, low, high float64) MaterialFunc {
	ramp := []rune(glyphs)
	if len(ramp) == 0 {
		ramp = []rune{'#'}
	}
	return func(c vec3.T) Material {
		span := high - low
		if span <= 0 {
			return Material{Glyph: ramp[0]}
		}
		f := (c[1] - low) / span
		i := int(f * float64(len(ramp)))
		if i < 0 {
			i = 0
		}
		if i >= len(ramp) {
			i = len(ramp) - 1
		}
		return Material{Glyph: ramp[i]}
	}
}
