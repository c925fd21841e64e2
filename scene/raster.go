package scene

import (
	"math"

	"github.com/pthm-cable/retroterm/screen"
)

// Point2 is a position in cell space.
type Point2 struct {
	X, Y float64
}

// edge returns the 2D cross product of (b-a) and (p-a). With Y growing down,
// a point is on the inner side of a visible face's edge when this is <= 0.
func edge(a, b, p Point2) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// FillTriangle paints every cell whose centre lies inside triangle abc with
// glyph in colour fg, leaving the background untouched. It returns the number
// of cells painted. Triangles wound the other way, degenerate triangles and
// triangles entirely off screen paint nothing.
func FillTriangle(buf screen.Buffer, a, b, c Point2, glyph rune, fg screen.Color) int {
	if edge(a, b, c) == 0 {
		return 0
	}

	for _, p := range [...]Point2{a, b, c} {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			return 0
		}
	}

	w, h := buf.Size()
	minX, maxX := cellSpan(math.Min(a.X, math.Min(b.X, c.X)), math.Max(a.X, math.Max(b.X, c.X)), w)
	minY, maxY := cellSpan(math.Min(a.Y, math.Min(b.Y, c.Y)), math.Max(a.Y, math.Max(b.Y, c.Y)), h)

	painted := 0
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := Point2{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			if edge(a, b, p) <= 0 && edge(b, c, p) <= 0 && edge(c, a, p) <= 0 {
				buf.SetCell(x, y, glyph, fg, screen.Keep)
				painted++
			}
		}
	}
	return painted
}

// cellSpan clamps the coordinate range [lo, hi] to cell indices 0..n-1 before
// converting, so huge or infinite coordinates never overflow int. An empty
// span has first > last.
func cellSpan(lo, hi float64, n int) (first, last int) {
	lo = math.Min(math.Max(math.Floor(lo), 0), float64(n))
	hi = math.Max(math.Min(math.Ceil(hi), float64(n-1)), -1)
	return int(lo), int(hi)
}
