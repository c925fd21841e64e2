package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer draws panel widgets in the theme's style.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel fills a bordered panel.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws an underlined title and returns the next line's Y.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	t := r.Theme
	rl.DrawText(title, x, y, t.HeaderFontSize, t.SectionHeader)
	underline := y + t.HeaderFontSize + 1
	rl.DrawLine(x, underline, x+rl.MeasureText(title, t.HeaderFontSize), underline, t.PanelBorder)
	return y + t.LineHeight + 4
}

// DrawLabelValue draws "label: value" and returns the next line's Y.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	t := r.Theme
	rl.DrawText(label+":", x, y, t.FontSize, t.LabelColor)
	rl.DrawText(value, x+t.LabelWidth, y, t.FontSize, t.ValueColor)
	return y + t.LineHeight
}

// barSegments is how many cells a bar is split into, like a terminal meter.
const barSegments = 20

// DrawBar draws a segmented meter for value within [0, limit] followed by
// the value, and returns the next line's Y.
func (r *Renderer) DrawBar(x, y int32, label string, value, limit float64, width int32) int32 {
	t := r.Theme
	lit := 0
	if limit > 0 {
		lit = int(clamp01(value/limit)*barSegments + 0.5)
	}

	barX := x + t.LabelWidth
	barWidth := width - t.LabelWidth - 50
	seg := barWidth / barSegments

	rl.DrawText(label+":", x, y, t.FontSize, t.LabelColor)
	for i := int32(0); i < barSegments; i++ {
		c := t.BarBg
		if int(i) < lit {
			c = t.BarFill
		}
		rl.DrawRectangle(barX+i*seg, y+2, seg-1, t.BarHeight, c)
	}
	rl.DrawText(fmt.Sprintf("%.1f", value), barX+seg*barSegments+5, y, t.FontSize, t.ValueColor)

	return y + t.LineHeight + 2
}

// DrawSparkline plots values left to right, scaled between their minimum
// and maximum, and returns the Y below it.
func (r *Renderer) DrawSparkline(x, y, width, height int32, values []float64) int32 {
	t := r.Theme
	rl.DrawRectangle(x, y, width, height, t.BarBg)
	if len(values) < 2 {
		return y + height + 4
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	point := func(i int) rl.Vector2 {
		fy := 0.5
		if span > 0 {
			fy = (values[i] - lo) / span
		}
		return rl.Vector2{
			X: float32(x) + float32(i)*float32(width-1)/float32(len(values)-1),
			Y: float32(y+height-1) - float32(fy)*float32(height-2),
		}
	}
	for i := 1; i < len(values); i++ {
		rl.DrawLineV(point(i-1), point(i), t.BarFill)
	}
	return y + height + 4
}

func clamp01(v float64) float64 {
	return min(1, max(0, v))
}
