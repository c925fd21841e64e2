package scene

import (
	"math"

	"github.com/pthm-cable/retroterm/screen"
)

// Background paints every cell of the screen before objects are drawn.
type Background interface {
	Clear(buf screen.Buffer, t float64)
	Colors() (fg, bg screen.Color)
}

// Base holds the two base colours shared by all backgrounds.
type Base struct {
	Foreground screen.Color
	Background screen.Color
}

// Colors implements part of Background.
func (b Base) Colors() (fg, bg screen.Color) {
	return b.Foreground, b.Background
}

// Lerp blends from the background colour (t=0) to the foreground colour (t=1).
func (b Base) Lerp(t float64) screen.Color {
	return screen.Lerp(b.Background, b.Foreground, t)
}

// Solid fills the screen with the background colour.
type Solid struct {
	Base
}

// Clear implements Background.
func (s Solid) Clear(buf screen.Buffer, _ float64) {
	w, h := buf.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf.SetCell(x, y, ' ', s.Foreground, s.Background)
		}
	}
}

// Chequered animates a two-tone tile pattern. A horizontal phase (with a sine
// wiggle per row) and a vertical phase each produce an on/off grid; the XOR of
// the two selects the tile tone.
type Chequered struct {
	Base

	TileW, TileH float64 // tile size in cells
	SpeedX       float64 // horizontal phase drift (tiles per second)
	SpeedY       float64 // vertical phase drift (tiles per second)
	WiggleAmp    float64 // sine wiggle amplitude (tiles)
	WiggleFreq   float64 // sine wiggle frequency (radians per second)

	// Tint is how far lit tiles move from the background toward the foreground.
	Tint float64
}

// NewChequered returns a chequered background with the default motion.
func NewChequered(fg, bg screen.Color) *Chequered {
	return &Chequered{
		Base:       Base{Foreground: fg, Background: bg},
		TileW:      8,
		TileH:      4,
		SpeedX:     0.5,
		SpeedY:     0.25,
		WiggleAmp:  0.35,
		WiggleFreq: 1.5,
		Tint:       0.2,
	}
}

// On reports whether the tile covering (x, y) is lit at time t.
func (c *Chequered) On(x, y int, t float64) bool {
	tw, th := c.TileW, c.TileH
	if tw <= 0 {
		tw = 1
	}
	if th <= 0 {
		th = 1
	}
	hPhase := float64(x)/tw + t*c.SpeedX + math.Sin(t*c.WiggleFreq+float64(y)/th)*c.WiggleAmp
	vPhase := float64(y)/th + t*c.SpeedY
	a := int(math.Floor(hPhase)) & 1
	b := int(math.Floor(vPhase)) & 1
	return a^b == 1
}

// Clear implements Background.
func (c *Chequered) Clear(buf screen.Buffer, t float64) {
	lit := c.Lerp(c.Tint)
	w, h := buf.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bg := c.Background
			if c.On(x, y, t) {
				bg = lit
			}
			buf.SetCell(x, y, ' ', c.Foreground, bg)
		}
	}
}
