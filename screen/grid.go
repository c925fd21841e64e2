package screen

// Grid is an in-memory Buffer. Views copy it to a real surface once per frame.
type Grid struct {
	w, h  int
	cells []Cell
}

// NewGrid creates a grid of blank cells.
func NewGrid(w, h int) *Grid {
	g := &Grid{}
	g.Resize(w, h)
	return g
}

// Resize reallocates the grid, discarding its contents.
func (g *Grid) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	g.w, g.h = w, h
	g.cells = make([]Cell, w*h)
	g.Fill(' ', Keep, Keep)
}

// Size implements Buffer.
func (g *Grid) Size() (int, int) {
	return g.w, g.h
}

// SetCell implements Buffer. Writes outside the grid are dropped.
func (g *Grid) SetCell(x, y int, glyph rune, fg, bg Color) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	c := &g.cells[y*g.w+x]
	c.Glyph = glyph
	if fg != Keep {
		c.Fg = fg
	}
	if bg != Keep {
		c.Bg = bg
	}
}

// At returns the cell at (x, y). Out-of-range reads return a zero Cell.
func (g *Grid) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return Cell{}
	}
	return g.cells[y*g.w+x]
}

// Fill sets every cell.
func (g *Grid) Fill(glyph rune, fg, bg Color) {
	for i := range g.cells {
		g.cells[i] = Cell{Glyph: glyph, Fg: fg, Bg: bg}
	}
}

// WriteString writes s starting at (x, y), clipped to the row.
func (g *Grid) WriteString(x, y int, s string, fg, bg Color) {
	for _, r := range s {
		if x >= g.w {
			return
		}
		g.SetCell(x, y, r, fg, bg)
		x++
	}
}

// Each calls fn for every cell in row-major order.
func (g *Grid) Each(fn func(x, y int, c Cell)) {
	for y := 0; y < g.h; y++ {
		row := g.cells[y*g.w : (y+1)*g.w]
		for x, c := range row {
			fn(x, y, c)
		}
	}
}
