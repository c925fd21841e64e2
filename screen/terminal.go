package screen

import "github.com/gdamore/tcell/v2"

// Terminal adapts a tcell.Screen to Buffer.
type Terminal struct {
	scr tcell.Screen
}

// NewTerminal wraps an initialised tcell screen.
func NewTerminal(scr tcell.Screen) *Terminal {
	return &Terminal{scr: scr}
}

// Screen returns the wrapped tcell screen.
func (t *Terminal) Screen() tcell.Screen {
	return t.scr
}

// Size implements Buffer.
func (t *Terminal) Size() (int, int) {
	return t.scr.Size()
}

// SetCell implements Buffer. Keep colours are taken from the cell's current style.
func (t *Terminal) SetCell(x, y int, glyph rune, fg, bg Color) {
	_, _, style, _ := t.scr.GetContent(x, y)
	if fg != Keep {
		style = style.Foreground(fg)
	}
	if bg != Keep {
		style = style.Background(bg)
	}
	t.scr.SetContent(x, y, glyph, nil, style)
}

// Blit copies a grid onto the terminal, clipped to the smaller of the two.
func (t *Terminal) Blit(g *Grid) {
	w, h := t.scr.Size()
	g.Each(func(x, y int, c Cell) {
		if x >= w || y >= h {
			return
		}
		style := tcell.StyleDefault.Foreground(c.Fg).Background(c.Bg)
		t.scr.SetContent(x, y, c.Glyph, nil, style)
	})
}

// Show flushes pending cells to the terminal.
func (t *Terminal) Show() {
	t.scr.Show()
}
