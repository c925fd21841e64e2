package scene

import (
	"math"
	"testing"

	"github.com/ungerik/go3d/float64/vec3"

	"github.com/pthm-cable/retroterm/screen"
)

// countingBuffer records how many cells were written.
type countingBuffer struct {
	*screen.Grid
	writes int
}

func (c *countingBuffer) SetCell(x, y int, glyph rune, fg, bg screen.Color) {
	c.writes++
	c.Grid.SetCell(x, y, glyph, fg, bg)
}

func TestFillTriangleOutside(t *testing.T) {
	buf := &countingBuffer{Grid: screen.NewGrid(20, 10)}

	a := Point2{X: 30, Y: 20}
	b := Point2{X: 40, Y: 20}
	c := Point2{X: 40, Y: 12}
	// Try both windings
	if n := FillTriangle(buf, a, b, c, '#', screen.Keep); n != 0 {
		t.Errorf("painted %d cells, want 0", n)
	}
	if n := FillTriangle(buf, a, c, b, '#', screen.Keep); n != 0 {
		t.Errorf("painted %d cells, want 0", n)
	}
	if buf.writes != 0 {
		t.Errorf("buffer saw %d writes, want 0", buf.writes)
	}
}

func TestFillTriangleDegenerate(t *testing.T) {
	buf := &countingBuffer{Grid: screen.NewGrid(20, 10)}

	a := Point2{X: 1, Y: 1}
	b := Point2{X: 10, Y: 5}
	c := Point2{X: 19, Y: 9}
	if n := FillTriangle(buf, a, b, c, '#', screen.Keep); n != 0 {
		t.Errorf("painted %d cells for collinear points, want 0", n)
	}
	if n := FillTriangle(buf, a, a, a, '#', screen.Keep); n != 0 {
		t.Errorf("painted %d cells for a point, want 0", n)
	}
}

func TestFillTriangleWinding(t *testing.T) {
	// Counter-clockwise on screen (Y down): top-left, bottom-left, top-right
	a := Point2{X: 0, Y: 0}
	b := Point2{X: 0, Y: 10}
	c := Point2{X: 10, Y: 0}

	buf := screen.NewGrid(20, 20)
	n := FillTriangle(buf, a, b, c, '#', screen.RGB(1, 2, 3))
	// Cells with x+y <= 9 have centres inside: 10+9+...+1
	if n != 55 {
		t.Errorf("painted %d cells, want 55", n)
	}
	if n == 0 {
		t.Fatal("visible triangle painted nothing")
	}
	if got := buf.At(1, 1).Glyph; got != '#' {
		t.Errorf("cell (1,1) = %q, want '#'", got)
	}
	if got := buf.At(9, 9).Glyph; got == '#' {
		t.Error("cell (9,9) lies outside the triangle but was painted")
	}

	back := screen.NewGrid(20, 20)
	if n := FillTriangle(back, a, c, b, '#', screen.Keep); n != 0 {
		t.Errorf("reversed winding painted %d cells, want 0", n)
	}
}

func TestFillTriangleKeepsBackground(t *testing.T) {
	buf := screen.NewGrid(4, 4)
	bg := screen.RGB(9, 9, 9)
	buf.Fill(' ', screen.Keep, bg)

	FillTriangle(buf, Point2{0, 0}, Point2{0, 4}, Point2{4, 0}, '*', screen.RGB(200, 0, 0))
	c := buf.At(0, 0)
	if c.Glyph != '*' || c.Bg != bg {
		t.Errorf("cell = %+v, want '*' over existing background", c)
	}
}

func TestFillTriangleClamps(t *testing.T) {
	buf := &countingBuffer{Grid: screen.NewGrid(10, 10)}

	// Huge triangle covering the whole screen
	n := FillTriangle(buf, Point2{-100, -100}, Point2{-100, 300}, Point2{300, -100}, '#', screen.Keep)
	if n != 100 {
		t.Errorf("painted %d cells, want 100", n)
	}
	if buf.writes != 100 {
		t.Errorf("writes = %d, want 100", buf.writes)
	}
}

func TestFillTriangleHugeCoordinates(t *testing.T) {
	buf := &countingBuffer{Grid: screen.NewGrid(10, 10)}

	// Far beyond int range once floored
	const l = 1e19
	n := FillTriangle(buf, Point2{-l, -l}, Point2{-l, 3 * l}, Point2{3 * l, -l}, '#', screen.Keep)
	if n != 100 {
		t.Errorf("painted %d cells, want 100", n)
	}

	off := &countingBuffer{Grid: screen.NewGrid(10, 10)}
	if n := FillTriangle(off, Point2{l, l}, Point2{l, 3 * l}, Point2{3 * l, l}, '#', screen.Keep); n != 0 {
		t.Errorf("off-screen triangle painted %d cells, want 0", n)
	}
	if off.writes != 0 {
		t.Errorf("writes = %d, want 0", off.writes)
	}
}

func TestFillTriangleNaN(t *testing.T) {
	buf := &countingBuffer{Grid: screen.NewGrid(10, 10)}

	nan := math.NaN()
	if n := FillTriangle(buf, Point2{0, 0}, Point2{nan, 10}, Point2{10, 0}, '#', screen.Keep); n != 0 {
		t.Errorf("painted %d cells, want 0", n)
	}
	if n := FillTriangle(buf, Point2{math.Inf(-1), 0}, Point2{0, 10}, Point2{10, 0}, '#', screen.Keep); n < 0 || n > 100 {
		t.Errorf("painted %d cells with an infinite vertex", n)
	}
	if buf.writes > 100 {
		t.Errorf("writes = %d, want at most 100", buf.writes)
	}
}

func TestChequeredPattern(t *testing.T) {
	c := NewChequered(screen.RGB(255, 255, 255), screen.RGB(0, 0, 0))
	c.SpeedX, c.SpeedY, c.WiggleAmp = 0, 0, 0

	tests := []struct {
		x, y int
		want bool
	}{
		{0, 0, false},
		{8, 0, true},
		{0, 4, true},
		{8, 4, false},
		{7, 3, false},
	}
	for _, tt := range tests {
		if got := c.On(tt.x, tt.y, 0); got != tt.want {
			t.Errorf("On(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestChequeredDeterministic(t *testing.T) {
	c := NewChequered(screen.RGB(255, 255, 255), screen.RGB(0, 0, 0))
	a := screen.NewGrid(32, 16)
	b := screen.NewGrid(32, 16)

	c.Clear(a, 1.7)
	c.Clear(b, 1.7)
	a.Each(func(x, y int, cell screen.Cell) {
		if b.At(x, y) != cell {
			t.Fatalf("cell (%d,%d) differs between identical clears", x, y)
		}
	})

	// Time moves the pattern
	c.Clear(b, 4.2)
	differs := false
	a.Each(func(x, y int, cell screen.Cell) {
		if b.At(x, y) != cell {
			differs = true
		}
	})
	if !differs {
		t.Error("pattern did not change over time")
	}
}

func TestSolidClear(t *testing.T) {
	bg := screen.RGB(1, 1, 1)
	buf := screen.NewGrid(5, 3)
	buf.Fill('x', screen.Keep, screen.Keep)

	Solid{Base{Foreground: screen.RGB(2, 2, 2), Background: bg}}.Clear(buf, 0)
	buf.Each(func(x, y int, c screen.Cell) {
		if c.Glyph != ' ' || c.Bg != bg {
			t.Errorf("cell (%d,%d) = %+v, want blank on background", x, y, c)
		}
	})
}

func TestDrawOrder(t *testing.T) {
	buf := screen.NewGrid(10, 10)
	s := New(buf, Solid{})

	near := NewMesh("near", nil, nil)
	far := NewMesh("far", nil, nil)
	tieA := NewMesh("tieA", nil, nil)
	tieB := NewMesh("tieB", nil, nil)
	near.Position = vec3.T{0, 0, -1}
	far.Position = vec3.T{0, 0, 3}
	tieA.Position = vec3.T{0, 0, 1}
	tieB.Position = vec3.T{0, 0, 1}

	s.Add(near)
	s.Add(tieA)
	s.Add(far)
	s.Add(tieB)

	order := s.DrawOrder()
	want := []string{"far", "tieA", "tieB", "near"}
	for i, m := range order {
		if m.Name != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, m.Name, want[i])
		}
	}

	// Insertion order is unchanged
	if s.Objects()[0] != near {
		t.Error("DrawOrder reordered the scene's object list")
	}
}

func TestRenderCubeFrontFace(t *testing.T) {
	buf := screen.NewGrid(40, 20)
	s := New(buf, Solid{Base{Foreground: screen.RGB(0, 255, 0), Background: screen.RGB(0, 0, 0)}})
	cube := NewCube(0.5, GlyphMaterials("FBbtlr"))
	s.Add(cube)

	s.Render(0)

	if got := buf.At(20, 10).Glyph; got != 'F' {
		t.Errorf("centre cell = %q, want front face 'F'", got)
	}
	if got := buf.At(20, 10).Fg; got != s.Foreground {
		t.Errorf("centre cell fg = %v, want scene foreground", got)
	}
	if got := buf.At(0, 0).Glyph; got != ' ' {
		t.Errorf("corner cell = %q, want background", got)
	}

	// Only the two front triangles face the camera
	counts := make(map[rune]int)
	buf.Each(func(x, y int, c screen.Cell) {
		counts[c.Glyph]++
	})
	for _, g := range "Bbtlr" {
		if counts[g] != 0 {
			t.Errorf("hidden side %q painted %d cells", g, counts[g])
		}
	}

	st := s.Stats()
	if st.Objects != 1 || st.Triangles != 12 || st.Painted == 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestRenderPainterOrder(t *testing.T) {
	buf := screen.NewGrid(40, 20)
	s := New(buf, Solid{})

	near := NewCube(0.3, GlyphMaterials("NNNNNN"))
	far := NewCube(0.6, GlyphMaterials("FFFFFF"))
	far.Position = vec3.T{0, 0, 2}

	// Added near first; the far cube must still be drawn first
	s.Add(near)
	s.Add(far)
	s.Render(0)

	if got := buf.At(20, 10).Glyph; got != 'N' {
		t.Errorf("centre cell = %q, want near cube 'N'", got)
	}
}

func BenchmarkRender(b *testing.B) {
	buf := screen.NewGrid(120, 40)
	s := New(buf, NewChequered(screen.RGB(200, 200, 200), screen.RGB(10, 10, 30)))
	l := NewLandscape(16, 0.4, WaveHeight(0.3, 1.2, 1), HeightRamp(".:-=+*#", -0.3, 0.3))
	l.Rotation = vec3.T{-0.5, 0, 0}
	l.Position = vec3.T{0, -0.8, 1}
	s.Add(l.Mesh)
	s.Add(NewCube(0.5, GlyphMaterials("abcdef")))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tm := float64(i) * 0.016
		l.Update(tm)
		s.Render(tm)
	}
}
