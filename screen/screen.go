// Package screen provides the character-cell surface that the renderer and the
// status overlays draw into.
package screen

import "github.com/gdamore/tcell/v2"

// Color is a terminal cell colour.
type Color = tcell.Color

// Keep passed as a foreground or background leaves that colour unchanged.
const Keep Color = tcell.ColorDefault

// Buffer is a writable grid of character cells.
// Callers are expected to clamp coordinates before writing.
type Buffer interface {
	Size() (w, h int)
	SetCell(x, y int, glyph rune, fg, bg Color)
}

// Cell is a single character cell.
type Cell struct {
	Glyph rune
	Fg    Color
	Bg    Color
}

// RGB builds a colour from 8-bit channels.
func RGB(r, g, b uint8) Color {
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Lerp blends from a to b by t in [0, 1].
// Non-RGB colours are returned unblended (a below 0.5, b otherwise).
func Lerp(a, b Color, t float64) Color {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	if !a.Valid() || !b.Valid() || a == Keep || b == Keep {
		if t < 0.5 {
			return a
		}
		return b
	}
	ar, ag, ab := a.RGB()
	br, bg, bb := b.RGB()
	mix := func(x, y int32) int32 {
		return x + int32(float64(y-x)*t)
	}
	return tcell.NewRGBColor(mix(ar, br), mix(ag, bg), mix(ab, bb))
}
