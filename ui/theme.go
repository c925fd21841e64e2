// Package ui presents the character grid in a desktop window using raylib,
// with a raygui status panel beside it.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/retroterm/screen"
)

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 10, G: 18, B: 12, A: 240},
		PanelBorder:    rl.Color{R: 40, G: 90, B: 50, A: 255},
		SectionHeader:  rl.Color{R: 51, G: 255, B: 102, A: 255},
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		BarBg:          rl.Color{R: 30, G: 40, B: 30, A: 255},
		BarFill:        rl.Color{R: 60, G: 200, B: 90, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     80,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}

// CellColor converts a grid colour to raylib, using fallback for colours
// without an RGB value.
func CellColor(c screen.Color, fallback rl.Color) rl.Color {
	if !c.Valid() || c == screen.Keep {
		return fallback
	}
	r, g, b := c.RGB()
	return rl.Color{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}
