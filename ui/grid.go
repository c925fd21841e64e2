package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/retroterm/screen"
)

// GridPainter draws a character grid as coloured cells with one glyph each.
type GridPainter struct {
	CellW, CellH int32
	// Fg and Bg replace colours that have no RGB value.
	Fg, Bg rl.Color
}

// NewGridPainter creates a painter with the given cell size and fallback
// colours.
func NewGridPainter(cellW, cellH int, fg, bg screen.Color) GridPainter {
	return GridPainter{
		CellW: int32(cellW),
		CellH: int32(cellH),
		Fg:    CellColor(fg, rl.Green),
		Bg:    CellColor(bg, rl.Black),
	}
}

// Size returns the pixel size of g.
func (p GridPainter) Size(g *screen.Grid) (int32, int32) {
	cols, rows := g.Size()
	return int32(cols) * p.CellW, int32(rows) * p.CellH
}

// Draw paints g with its top-left corner at (x, y). It must be called
// between BeginDrawing and EndDrawing, or inside a texture mode.
func (p GridPainter) Draw(g *screen.Grid, x, y int32) {
	fontSize := p.CellH - 2
	g.Each(func(cx, cy int, c screen.Cell) {
		px, py := x+int32(cx)*p.CellW, y+int32(cy)*p.CellH
		rl.DrawRectangle(px, py, p.CellW, p.CellH, CellColor(c.Bg, p.Bg))
		if c.Glyph != ' ' && c.Glyph != 0 {
			rl.DrawText(string(c.Glyph), px+1, py+1, fontSize, CellColor(c.Fg, p.Fg))
		}
	})
}
