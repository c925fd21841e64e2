package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/retroterm/app"
	"github.com/pthm-cable/retroterm/trainer"
)

// HUDData holds everything the trainer panel shows.
type HUDData struct {
	Mode          app.Mode
	FPS           int32
	Report        trainer.Report
	HasReport     bool
	Champion      trainer.Champion
	HasChampion   bool
	Phase         trainer.Phase
	MaxPopulation int
	// Network is set while the champion plays a live match.
	Network NetworkView
}

// historyLen is how many generations the best-ever sparkline shows.
const historyLen = 120

// HUD renders the trainer panel beside the grid.
type HUD struct {
	renderer *Renderer
	x, y     int32
	width    int32

	history []float64
	lastGen int
}

// NewHUD creates a panel at (x, y).
func NewHUD(x, y, width int32) *HUD {
	return &HUD{renderer: NewRenderer(), x: x, y: y, width: width, lastGen: -1}
}

// observe appends the best-ever rating once per generation.
func (h *HUD) observe(rep trainer.Report) {
	if rep.Generation == h.lastGen {
		return
	}
	h.lastGen = rep.Generation
	h.history = append(h.history, rep.BestEver)
	if len(h.history) > historyLen {
		h.history = h.history[len(h.history)-historyLen:]
	}
}

// SetPosition updates the panel position.
func (h *HUD) SetPosition(x, y int32) {
	h.x = x
	h.y = y
}

// Draw renders the panel and reports whether the mode button was pressed.
func (h *HUD) Draw(data HUDData, height int32) (toggle bool) {
	r := h.renderer
	pad := r.Theme.Padding
	x := h.x + pad
	w := h.width - 2*pad

	r.DrawPanel(h.x, h.y, h.width, height)
	y := r.DrawSectionHeader(x, h.y+pad, "Trainer")

	y = r.DrawLabelValue(x, y, "Mode", data.Mode.String())
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))
	y = r.DrawLabelValue(x, y, "Phase", data.Phase.String())
	y += 6

	if data.HasReport {
		rep := data.Report
		y = r.DrawLabelValue(x, y, "Generation", fmt.Sprintf("%d", rep.Generation))
		y = r.DrawBar(x, y, "Population", float64(rep.Population), float64(data.MaxPopulation), w)
		y = r.DrawBar(x, y, "Best", rep.Best, rep.BestEver, w)
		y = r.DrawBar(x, y, "Mean", rep.Mean, rep.BestEver, w)
		y = r.DrawLabelValue(x, y, "Stagnation", fmt.Sprintf("%d", rep.Stagnation))
		y = r.DrawLabelValue(x, y, "Step", fmt.Sprintf("%d ms", rep.ElapsedMS))
		h.observe(rep)
		y = r.DrawSparkline(x, y+2, w, 28, h.history)
	} else {
		y = r.DrawLabelValue(x, y, "Generation", "-")
	}
	y += 6

	y = r.DrawSectionHeader(x, y, "Champion")
	if data.HasChampion {
		y = r.DrawLabelValue(x, y, "Rating", fmt.Sprintf("%.2f", data.Champion.Rating))
		y = r.DrawLabelValue(x, y, "Found", fmt.Sprintf("gen %d", data.Champion.Generation))
		for _, k := range []string{"hits", "points_for", "points_against"} {
			if v, ok := data.Champion.Stats[k]; ok {
				y = r.DrawLabelValue(x, y, k, fmt.Sprintf("%.0f", v))
			}
		}
	} else {
		y = r.DrawLabelValue(x, y, "Rating", "-")
	}
	y += 10

	label := "Watch champion"
	if data.Mode == app.ModePong {
		label = "Show scene"
	}
	toggle = gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(w), Height: 30}, label)
	y += 40

	if data.Network.Net != nil && height-y > 120 {
		y = r.DrawSectionHeader(x, y, "Network")
		DrawNetworkDiagram(x, y, w, h.y+height-y-pad, data.Network)
	}
	return toggle
}
